package modelgraph

// phase is the traversal role a lookup entry was recorded under.
type phase uint8

const (
	phaseValidate phase = iota
	phaseToJSON
)

type lookupKey struct {
	obj *Instance
	ph  phase
}

// LookupMap is the per-traversal visited set. It is keyed by object identity
// and traversal role so that no instance is validated or serialized twice
// within one top-level call, which is what makes cyclic object graphs safe to
// walk. Transform never revisits: nested maps always construct fresh
// instances and already-built instances pass through without recursion. A
// fresh map is created per top-level operation and discarded on return.
type LookupMap struct {
	marks map[lookupKey]any
}

func newLookupMap() *LookupMap {
	return &LookupMap{marks: map[lookupKey]any{}}
}

// mark records obj as visited for the given role, storing the (possibly still
// in-progress) result so later encounters can reuse it.
func (m *LookupMap) mark(obj *Instance, ph phase, result any) {
	m.marks[lookupKey{obj: obj, ph: ph}] = result
}

// fetch reports whether obj was already visited for the given role, returning
// the stored result.
func (m *LookupMap) fetch(obj *Instance, ph phase) (any, bool) {
	v, ok := m.marks[lookupKey{obj: obj, ph: ph}]
	return v, ok
}
