package modelgraph

import "fmt"

// FieldKind is the declared value kind of a field.
type FieldKind uint8

const (
	KindAny FieldKind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindDatetime
	KindList
	KindMap
	KindInstance
)

func (k FieldKind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindDatetime:
		return "datetime"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// FieldStorage is how a field is stored: a plain value, or one side of a
// persisted relationship.
type FieldStorage uint8

const (
	StoragePlain      FieldStorage = iota
	StorageLocalKey                // This side holds the key (link-to).
	StorageForeignKey              // The other side holds the key (linked-by).
)

// Access is the accessor-mark bitmask controlling which public entry points
// may set or expose a field.
type Access uint8

const (
	AccessReadOnly  Access = 1 << iota // Set ignores the field; Update still writes it.
	AccessWriteOnce                    // Set writes only while the current value is absent.
	AccessWriteOnly                    // ToJSON omits the field unless asked not to.

	// AccessInternal marks a field that untrusted input can never set and
	// serialization never exposes.
	AccessInternal = AccessReadOnly | AccessWriteOnly
)

// FieldDescriptor is the static, class-level description of one field. It is
// immutable after class registration.
type FieldDescriptor struct {
	Name     string
	Kind     FieldKind
	ItemKind FieldKind // element kind for KindList / KindMap
	RefClass string    // target class name for instance(-element) fields
	Storage  FieldStorage
	LinkedBy string // inverse field name on RefClass, ForeignKey side only
	Access   Access
	Required bool
	Default  any
	Rules    []Rule
}

// IsRef reports whether the field models one side of a relationship.
func (d *FieldDescriptor) IsRef() bool { return d.Storage != StoragePlain }

// ClassDescriptor is the per-class field descriptor table. Descriptors are
// built once (usually through the dsl package), registered into a Registry,
// and queried read-only by the engine.
type ClassDescriptor struct {
	name     string
	config   Config
	fields   []*FieldDescriptor
	byName   map[string]*FieldDescriptor
	observer CollectionObserver
	registry *Registry // set by Registry.Register
}

// NewClass builds a class descriptor from ordered field descriptors. Field
// declaration order is preserved; it drives traversal and error ordering.
func NewClass(name string, cfg Config, fields ...*FieldDescriptor) (*ClassDescriptor, error) {
	if name == "" {
		return nil, fmt.Errorf("modelgraph: class name must not be empty")
	}
	byName := make(map[string]*FieldDescriptor, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("modelgraph: class %s has a field with no name", name)
		}
		if _, dup := byName[f.Name]; dup {
			return nil, fmt.Errorf("modelgraph: class %s declares field %s twice", name, f.Name)
		}
		if f.Storage == StorageForeignKey && f.LinkedBy == "" {
			return nil, fmt.Errorf("modelgraph: class %s field %s is linked-by but names no inverse field", name, f.Name)
		}
		if f.IsRef() && f.RefClass == "" {
			return nil, fmt.Errorf("modelgraph: class %s field %s is a link but references no class", name, f.Name)
		}
		byName[f.Name] = f
	}
	return &ClassDescriptor{name: name, config: cfg, fields: fields, byName: byName}, nil
}

// MustClass is like NewClass but panics on error.
func MustClass(name string, cfg Config, fields ...*FieldDescriptor) *ClassDescriptor {
	cd, err := NewClass(name, cfg, fields...)
	if err != nil {
		panic(err)
	}
	return cd
}

// Name returns the class name.
func (cd *ClassDescriptor) Name() string { return cd.name }

// Config returns the class configuration.
func (cd *ClassDescriptor) Config() Config { return cd.config }

// Fields returns the descriptors in declaration order. The returned slice
// must not be mutated.
func (cd *ClassDescriptor) Fields() []*FieldDescriptor { return cd.fields }

// Field looks up a descriptor by field name.
func (cd *ClassDescriptor) Field(name string) (*FieldDescriptor, bool) {
	d, ok := cd.byName[name]
	return d, ok
}

// SetObserver installs the collection-observer extension point for instances
// of this class. The default (nil) observer is a no-op.
func (cd *ClassDescriptor) SetObserver(obs CollectionObserver) { cd.observer = obs }

// jsonKey renders the JSON key a field is exposed under.
func (cd *ClassDescriptor) jsonKey(d *FieldDescriptor) string {
	if cd.config.CamelizeJSON {
		return camelize(d.Name)
	}
	return d.Name
}
