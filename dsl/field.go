// Package dsl provides the declarative builders used to describe classes and
// fields for a modelgraph class graph.
package dsl

import (
	"fmt"

	modelgraph "github.com/modelgraph/modelgraph"
)

// FieldSpec accumulates the declaration of one field. Specs are chained
// fluently and materialized into descriptors at class build time; declaration
// errors are deferred and reported by Build.
type FieldSpec struct {
	kind     modelgraph.FieldKind
	itemKind modelgraph.FieldKind
	refClass string
	storage  modelgraph.FieldStorage
	linkedBy string
	access   modelgraph.Access
	required bool
	def      any
	rules    []modelgraph.Rule
	err      error
}

// Str declares a string field.
func Str() *FieldSpec { return &FieldSpec{kind: modelgraph.KindString} }

// Int declares an integer field.
func Int() *FieldSpec { return &FieldSpec{kind: modelgraph.KindInt} }

// Float declares a float field.
func Float() *FieldSpec { return &FieldSpec{kind: modelgraph.KindFloat} }

// Bool declares a boolean field.
func Bool() *FieldSpec { return &FieldSpec{kind: modelgraph.KindBool} }

// Datetime declares an RFC3339 datetime field.
func Datetime() *FieldSpec { return &FieldSpec{kind: modelgraph.KindDatetime} }

// Any declares an untyped field.
func Any() *FieldSpec { return &FieldSpec{kind: modelgraph.KindAny} }

// InstanceOf declares a nested-instance field of the named class.
func InstanceOf(class string) *FieldSpec {
	return &FieldSpec{kind: modelgraph.KindInstance, refClass: class}
}

// ListOf declares an ordered-list field whose elements follow elem. Container
// elements cannot themselves be containers.
func ListOf(elem *FieldSpec) *FieldSpec {
	return containerOf(modelgraph.KindList, elem)
}

// MapOf declares a keyed-map field whose values follow elem.
func MapOf(elem *FieldSpec) *FieldSpec {
	return containerOf(modelgraph.KindMap, elem)
}

func containerOf(kind modelgraph.FieldKind, elem *FieldSpec) *FieldSpec {
	s := &FieldSpec{kind: kind}
	if elem == nil {
		s.itemKind = modelgraph.KindAny
		return s
	}
	if elem.kind == modelgraph.KindList || elem.kind == modelgraph.KindMap {
		s.err = fmt.Errorf("dsl: container elements cannot be containers")
		return s
	}
	s.itemKind = elem.kind
	s.refClass = elem.refClass
	s.rules = elem.rules
	if elem.err != nil {
		s.err = elem.err
	}
	return s
}

// Required marks the field as required.
func (s *FieldSpec) Required() *FieldSpec {
	s.required = true
	return s
}

// ReadOnly marks the field as untouchable by Set; Update still writes it.
func (s *FieldSpec) ReadOnly() *FieldSpec {
	s.access |= modelgraph.AccessReadOnly
	return s
}

// WriteOnce lets Set write the field only while its current value is absent.
func (s *FieldSpec) WriteOnce() *FieldSpec {
	s.access |= modelgraph.AccessWriteOnce
	return s
}

// WriteOnly hides the field from ToJSON output.
func (s *FieldSpec) WriteOnly() *FieldSpec {
	s.access |= modelgraph.AccessWriteOnly
	return s
}

// Internal combines ReadOnly and WriteOnly: untrusted input can never set the
// field and serialization never exposes it.
func (s *FieldSpec) Internal() *FieldSpec {
	s.access |= modelgraph.AccessInternal
	return s
}

// Default sets the value assigned when construction input omits the field.
func (s *FieldSpec) Default(v any) *FieldSpec {
	s.def = v
	return s
}

// MinLength constrains strings and lists to at least n elements.
func (s *FieldSpec) MinLength(n int) *FieldSpec {
	s.rules = append(s.rules, modelgraph.MinLengthRule(n))
	return s
}

// MaxLength constrains strings and lists to at most n elements.
func (s *FieldSpec) MaxLength(n int) *FieldSpec {
	s.rules = append(s.rules, modelgraph.MaxLengthRule(n))
	return s
}

// Range constrains numbers to [min, max].
func (s *FieldSpec) Range(min, max float64) *FieldSpec {
	s.rules = append(s.rules, modelgraph.RangeRule(&min, &max))
	return s
}

// Min constrains numbers to at least min.
func (s *FieldSpec) Min(min float64) *FieldSpec {
	s.rules = append(s.rules, modelgraph.RangeRule(&min, nil))
	return s
}

// Max constrains numbers to at most max.
func (s *FieldSpec) Max(max float64) *FieldSpec {
	s.rules = append(s.rules, modelgraph.RangeRule(nil, &max))
	return s
}

// Enum constrains strings to the allowed set.
func (s *FieldSpec) Enum(values ...string) *FieldSpec {
	s.rules = append(s.rules, modelgraph.EnumRule(values...))
	return s
}

// Match constrains strings to the regular expression pattern.
func (s *FieldSpec) Match(pattern string) *FieldSpec {
	r, err := modelgraph.MatchRule(pattern)
	if err != nil {
		s.err = err
		return s
	}
	s.rules = append(s.rules, r)
	return s
}

// Rule appends a custom rule to the field's chain.
func (s *FieldSpec) Rule(r modelgraph.Rule) *FieldSpec {
	if r != nil {
		s.rules = append(s.rules, r)
	}
	return s
}

// LinkTo marks this side of a relationship as holding the key.
func (s *FieldSpec) LinkTo() *FieldSpec {
	s.storage = modelgraph.StorageLocalKey
	return s
}

// LinkedBy marks the other side as holding the key, naming the inverse field
// on the linked class.
func (s *FieldSpec) LinkedBy(field string) *FieldSpec {
	s.storage = modelgraph.StorageForeignKey
	s.linkedBy = field
	return s
}

// descriptor materializes the spec.
func (s *FieldSpec) descriptor(name string) (*modelgraph.FieldDescriptor, error) {
	if s.err != nil {
		return nil, fmt.Errorf("dsl: field %s: %w", name, s.err)
	}
	if s.storage != modelgraph.StoragePlain {
		linked := s.kind == modelgraph.KindInstance ||
			((s.kind == modelgraph.KindList || s.kind == modelgraph.KindMap) && s.itemKind == modelgraph.KindInstance)
		if !linked {
			return nil, fmt.Errorf("dsl: field %s: only instance fields can be linked", name)
		}
	}
	return &modelgraph.FieldDescriptor{
		Name:     name,
		Kind:     s.kind,
		ItemKind: s.itemKind,
		RefClass: s.refClass,
		Storage:  s.storage,
		LinkedBy: s.linkedBy,
		Access:   s.access,
		Required: s.required,
		Default:  s.def,
		Rules:    s.rules,
	}, nil
}
