package modelgraph

// UnknownPolicy controls how input keys that match no declared field are
// handled during transform.
type UnknownPolicy int

const (
	UnknownIgnore UnknownPolicy = iota // Drop unknown keys silently.
	UnknownStrict                      // Reject unknown keys with an error.
)

// Config carries per-class settings. It is read during serialization,
// transform, and relationship resolution and never mutated by the engine.
type Config struct {
	// Graph names the class graph this class belongs to. Classes can only
	// link to classes registered in the same Registry.
	Graph string
	// CamelizeJSON renders snake_case field names as camelCase JSON keys and
	// accepts camelCase keys on input. Defaults to true.
	CamelizeJSON bool
	// Unknown selects the unknown-key policy for untrusted input.
	Unknown UnknownPolicy
	// ValidateAllFields makes Validate collect every violation by default
	// instead of stopping at the first.
	ValidateAllFields bool
}

// DefaultConfig returns the config applied to classes that do not override
// any setting.
func DefaultConfig() Config {
	return Config{Graph: "default", CamelizeJSON: true}
}
