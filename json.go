package modelgraph

import (
	gojson "github.com/goccy/go-json"
)

// ParseJSON decodes a JSON object body and constructs an instance from it,
// with the same semantics as New. This is the entry point for web request
// bodies.
func (cd *ClassDescriptor) ParseJSON(data []byte) (*Instance, error) {
	var input map[string]any
	if err := gojson.Unmarshal(data, &input); err != nil {
		return nil, ValidationError{{
			Keypath: "",
			Code:    CodeInvalidFormat,
			Message: "invalid JSON body",
			Cause:   err,
		}}
	}
	return cd.New(input)
}

// MarshalJSON serializes the instance through a ToJSON traversal, honoring
// writeonly marks and cycle-cutting linked objects.
func (i *Instance) MarshalJSON() ([]byte, error) {
	m, err := i.ToJSON(false)
	if err != nil {
		return nil, err
	}
	return gojson.Marshal(m)
}
