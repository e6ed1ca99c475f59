// Package yamldef loads class definitions for a modelgraph class graph from a
// YAML document, so schemas can live next to deployment manifests instead of
// Go code.
package yamldef

import (
	"fmt"

	modelgraph "github.com/modelgraph/modelgraph"
	"github.com/modelgraph/modelgraph/dsl"
	"gopkg.in/yaml.v3"
)

type document struct {
	Graph   string     `yaml:"graph"`
	Classes []classDef `yaml:"classes"`
}

type classDef struct {
	Name              string     `yaml:"name"`
	CamelizeJSON      *bool      `yaml:"camelizeJSON"`
	Unknown           string     `yaml:"unknown"`
	ValidateAllFields bool       `yaml:"validateAllFields"`
	Fields            []fieldDef `yaml:"fields"`
}

type fieldDef struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	Of        string   `yaml:"of"`    // element type for list/map
	Class     string   `yaml:"class"` // target class for instance fields
	LinkTo    bool     `yaml:"linkTo"`
	LinkedBy  string   `yaml:"linkedBy"`
	Access    []string `yaml:"access"`
	Required  bool     `yaml:"required"`
	Default   any      `yaml:"default"`
	MinLength *int     `yaml:"minLength"`
	MaxLength *int     `yaml:"maxLength"`
	Min       *float64 `yaml:"min"`
	Max       *float64 `yaml:"max"`
	Enum      []string `yaml:"enum"`
	Match     string   `yaml:"match"`
}

// Load parses a YAML class-graph document and registers every class it
// declares into r. The document's graph name, when present, must match the
// registry's.
func Load(r *modelgraph.Registry, data []byte) error {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("yamldef: %w", err)
	}
	if doc.Graph != "" && doc.Graph != r.Name() {
		return fmt.Errorf("yamldef: document targets graph %q, registry is %q", doc.Graph, r.Name())
	}
	for _, c := range doc.Classes {
		b := dsl.Class(c.Name)
		cfg := modelgraph.DefaultConfig()
		cfg.Graph = r.Name()
		if c.CamelizeJSON != nil {
			cfg.CamelizeJSON = *c.CamelizeJSON
		}
		switch c.Unknown {
		case "", "ignore":
		case "strict":
			cfg.Unknown = modelgraph.UnknownStrict
		default:
			return fmt.Errorf("yamldef: class %s: unknown policy %q", c.Name, c.Unknown)
		}
		cfg.ValidateAllFields = c.ValidateAllFields
		b.Config(cfg)
		for _, f := range c.Fields {
			spec, err := fieldSpec(c.Name, f)
			if err != nil {
				return err
			}
			b.Field(f.Name, spec)
		}
		if _, err := b.Register(r); err != nil {
			return fmt.Errorf("yamldef: %w", err)
		}
	}
	return nil
}

func fieldSpec(class string, f fieldDef) (*dsl.FieldSpec, error) {
	spec, err := baseSpec(class, f)
	if err != nil {
		return nil, err
	}
	if f.LinkTo {
		spec.LinkTo()
	}
	if f.LinkedBy != "" {
		spec.LinkedBy(f.LinkedBy)
	}
	for _, a := range f.Access {
		switch a {
		case "readonly":
			spec.ReadOnly()
		case "writeonce":
			spec.WriteOnce()
		case "writeonly":
			spec.WriteOnly()
		case "internal":
			spec.Internal()
		default:
			return nil, fmt.Errorf("yamldef: class %s field %s: unknown access mark %q", class, f.Name, a)
		}
	}
	if f.Required {
		spec.Required()
	}
	if f.Default != nil {
		spec.Default(f.Default)
	}
	if f.MinLength != nil {
		spec.MinLength(*f.MinLength)
	}
	if f.MaxLength != nil {
		spec.MaxLength(*f.MaxLength)
	}
	if f.Min != nil && f.Max != nil {
		spec.Range(*f.Min, *f.Max)
	} else if f.Min != nil {
		spec.Min(*f.Min)
	} else if f.Max != nil {
		spec.Max(*f.Max)
	}
	if len(f.Enum) > 0 {
		spec.Enum(f.Enum...)
	}
	if f.Match != "" {
		spec.Match(f.Match)
	}
	return spec, nil
}

func baseSpec(class string, f fieldDef) (*dsl.FieldSpec, error) {
	switch f.Type {
	case "list", "map":
		elem, err := elemSpec(class, f)
		if err != nil {
			return nil, err
		}
		if f.Type == "list" {
			return dsl.ListOf(elem), nil
		}
		return dsl.MapOf(elem), nil
	case "instance":
		if f.Class == "" {
			return nil, fmt.Errorf("yamldef: class %s field %s: instance field names no class", class, f.Name)
		}
		return dsl.InstanceOf(f.Class), nil
	default:
		return scalarSpec(class, f.Name, f.Type)
	}
}

func elemSpec(class string, f fieldDef) (*dsl.FieldSpec, error) {
	if f.Of == "instance" {
		if f.Class == "" {
			return nil, fmt.Errorf("yamldef: class %s field %s: instance elements name no class", class, f.Name)
		}
		return dsl.InstanceOf(f.Class), nil
	}
	if f.Of == "" {
		return dsl.Any(), nil
	}
	return scalarSpec(class, f.Name, f.Of)
}

func scalarSpec(class, field, typ string) (*dsl.FieldSpec, error) {
	switch typ {
	case "string":
		return dsl.Str(), nil
	case "int":
		return dsl.Int(), nil
	case "float":
		return dsl.Float(), nil
	case "bool":
		return dsl.Bool(), nil
	case "datetime":
		return dsl.Datetime(), nil
	case "", "any":
		return dsl.Any(), nil
	default:
		return nil, fmt.Errorf("yamldef: class %s field %s: unknown type %q", class, field, typ)
	}
}
