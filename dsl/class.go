package dsl

import (
	"fmt"

	modelgraph "github.com/modelgraph/modelgraph"
)

type classField struct {
	name string
	spec *FieldSpec
}

// ClassBuilder accumulates a class declaration: named fields in declaration
// order plus the class config.
type ClassBuilder struct {
	name     string
	cfg      modelgraph.Config
	fields   []classField
	observer modelgraph.CollectionObserver
}

// Class creates a new class builder with the default config.
func Class(name string) *ClassBuilder {
	return &ClassBuilder{name: name, cfg: modelgraph.DefaultConfig()}
}

// Field declares a field. Declaration order drives traversal and error
// ordering.
func (b *ClassBuilder) Field(name string, spec *FieldSpec) *ClassBuilder {
	b.fields = append(b.fields, classField{name: name, spec: spec})
	return b
}

// Config replaces the class config.
func (b *ClassBuilder) Config(cfg modelgraph.Config) *ClassBuilder {
	b.cfg = cfg
	return b
}

// Observe installs the collection-observer extension point for instances of
// this class.
func (b *ClassBuilder) Observe(obs modelgraph.CollectionObserver) *ClassBuilder {
	b.observer = obs
	return b
}

// Build validates the declaration and returns a class descriptor.
func (b *ClassBuilder) Build() (*modelgraph.ClassDescriptor, error) {
	descs := make([]*modelgraph.FieldDescriptor, 0, len(b.fields))
	for _, f := range b.fields {
		if f.spec == nil {
			return nil, fmt.Errorf("dsl: class %s field %s has no spec", b.name, f.name)
		}
		d, err := f.spec.descriptor(f.name)
		if err != nil {
			return nil, fmt.Errorf("dsl: class %s: %w", b.name, err)
		}
		descs = append(descs, d)
	}
	cd, err := modelgraph.NewClass(b.name, b.cfg, descs...)
	if err != nil {
		return nil, err
	}
	if b.observer != nil {
		cd.SetObserver(b.observer)
	}
	return cd, nil
}

// Register builds the class and registers it into the class graph.
func (b *ClassBuilder) Register(r *modelgraph.Registry) (*modelgraph.ClassDescriptor, error) {
	cd, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := r.Register(cd); err != nil {
		return nil, err
	}
	return cd, nil
}

// MustRegister is like Register but panics on error.
func (b *ClassBuilder) MustRegister(r *modelgraph.Registry) *modelgraph.ClassDescriptor {
	cd, err := b.Register(r)
	if err != nil {
		panic(err)
	}
	return cd
}
