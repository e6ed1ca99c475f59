package modelgraph

import "fmt"

// classField addresses one side of a relationship inside a class graph.
type classField struct {
	class string
	field string
}

// Registry is a named class graph: the set of classes that may link to each
// other, plus the inverse-field index used by relationship synchronization.
// The index is built from the registered descriptors and queried read-only at
// traversal time; it is never inferred per assignment.
type Registry struct {
	name    string
	classes map[string]*ClassDescriptor
	inverse map[classField]classField
	dirty   bool
}

// NewRegistry creates an empty class graph named "default".
func NewRegistry() *Registry {
	return &Registry{
		name:    "default",
		classes: map[string]*ClassDescriptor{},
		inverse: map[classField]classField{},
	}
}

// NewNamedRegistry creates an empty class graph with the given name.
func NewNamedRegistry(name string) *Registry {
	r := NewRegistry()
	r.name = name
	return r
}

// Name returns the graph name.
func (r *Registry) Name() string { return r.name }

// Register adds a class to the graph. Registering two classes under the same
// name is an error. The inverse-field index is rebuilt lazily on the next
// relationship lookup.
func (r *Registry) Register(cd *ClassDescriptor) error {
	if cd == nil {
		return fmt.Errorf("modelgraph: cannot register a nil class")
	}
	if _, dup := r.classes[cd.name]; dup {
		return fmt.Errorf("modelgraph: class %s is already registered in graph %s", cd.name, r.name)
	}
	r.classes[cd.name] = cd
	cd.registry = r
	r.dirty = true
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(cd *ClassDescriptor) *ClassDescriptor {
	if err := r.Register(cd); err != nil {
		panic(err)
	}
	return cd
}

// Class looks up a registered class by name.
func (r *Registry) Class(name string) (*ClassDescriptor, bool) {
	cd, ok := r.classes[name]
	return cd, ok
}

// InverseOf resolves the field on the linked class that forms the other side
// of the relationship declared by (className, fieldName). It returns nil when
// the relationship is unidirectional.
func (r *Registry) InverseOf(className, fieldName string) *FieldDescriptor {
	if r.dirty {
		r.buildInverse()
	}
	other, ok := r.inverse[classField{class: className, field: fieldName}]
	if !ok {
		return nil
	}
	cd, ok := r.classes[other.class]
	if !ok {
		return nil
	}
	d, _ := cd.Field(other.field)
	return d
}

// buildInverse pairs every linked-by field with the field it names on the
// target class, and every link-to field with the unique linked-by field that
// points back at it.
func (r *Registry) buildInverse() {
	idx := make(map[classField]classField)
	for cname, cd := range r.classes {
		for _, d := range cd.fields {
			if d.Storage != StorageForeignKey {
				continue
			}
			target, ok := r.classes[d.RefClass]
			if !ok {
				continue
			}
			paired, ok := target.Field(d.LinkedBy)
			if !ok || paired.Storage != StorageLocalKey {
				continue
			}
			idx[classField{cname, d.Name}] = classField{d.RefClass, paired.Name}
			idx[classField{d.RefClass, paired.Name}] = classField{cname, d.Name}
		}
	}
	r.inverse = idx
	r.dirty = false
}
