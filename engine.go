package modelgraph

import "sort"

// instanceOf dispatches one traversal operation over an object of a declared
// class, recursing into nested instances, owned collections, and scalars.
type instanceOf struct {
	class *ClassDescriptor
}

// ---- transform ----

// transform populates tc.Dest from the keyed input in tc.Value, in field
// declaration order. Accessor marks filter untrusted input silently; unknown
// keys follow the class config policy.
func (e instanceOf) transform(tc *Context) error {
	dest := tc.Dest
	input, ok := tc.Value.(map[string]any)
	if !ok {
		if tc.Value == nil {
			input = map[string]any{}
		} else {
			return ValidationError{tc.fieldError(CodeInvalidType, map[string]any{"expected": "object"})}
		}
	}

	var ve ValidationError
	consumed := make(map[string]struct{}, len(input))
	for _, d := range e.class.fields {
		key, present, raw := lookupInput(e.class, d, input)
		if present {
			consumed[key] = struct{}{}
		}
		ftc := tc.atField(d, raw)
		if !present {
			if tc.FillBlanks && d.Default != nil && dest.values[d.Name] == nil {
				dv, errs := transformValue(ftc, d, d.Default)
				if len(errs) > 0 {
					ve = AppendErrors(ve, errs...)
					if !tc.AllFields {
						return ve
					}
					continue
				}
				dest.setField(d, dv)
			}
			continue
		}
		// accessor marks: untrusted input never writes readonly or internal
		// fields; writeonce fields only while the current value is absent
		if d.Access&AccessReadOnly != 0 {
			continue
		}
		if d.Access&AccessWriteOnce != 0 && dest.values[d.Name] != nil {
			continue
		}
		out, errs := transformValue(ftc, d, raw)
		if len(errs) > 0 {
			ve = AppendErrors(ve, errs...)
			if !tc.AllFields {
				return ve
			}
			continue
		}
		dest.setField(d, out)
	}

	if tc.ConfigOwner.Unknown == UnknownStrict {
		unk := make([]string, 0, len(input))
		for k := range input {
			if _, ok := consumed[k]; !ok {
				unk = append(unk, k)
			}
		}
		sort.Strings(unk)
		for _, k := range unk {
			ktc := tc.atKey(dest, k, input[k])
			ve = AppendErrors(ve, ktc.fieldError(CodeUnknownKey, map[string]any{"key": k}))
			if !tc.AllFields {
				return ve
			}
		}
	}
	if len(ve) > 0 {
		return ve
	}
	return nil
}

// lookupInput finds the input entry for a field, trying the rendered JSON key
// first and the declared name second.
func lookupInput(cd *ClassDescriptor, d *FieldDescriptor, input map[string]any) (string, bool, any) {
	jk := cd.jsonKey(d)
	if v, ok := input[jk]; ok {
		return jk, true, v
	}
	if jk != d.Name {
		if v, ok := input[d.Name]; ok {
			return d.Name, true, v
		}
	}
	return "", false, nil
}

// transformValue coerces one field value, recursing through containers and
// nested instances. tc is already positioned at the field.
func transformValue(tc *Context, d *FieldDescriptor, raw any) (any, ValidationError) {
	if raw == nil {
		return nil, nil
	}
	switch d.Kind {
	case KindList:
		items, ok := rawListItems(raw)
		if !ok {
			return nil, ValidationError{tc.fieldError(CodeInvalidType, map[string]any{"expected": "list"})}
		}
		out := make([]any, 0, len(items))
		var ve ValidationError
		for idx, el := range items {
			etc := tc.atIndex(raw, idx, el)
			v2, errs := transformElem(etc, d, el)
			if len(errs) > 0 {
				ve = AppendErrors(ve, errs...)
				if !tc.AllFields {
					return nil, ve
				}
				continue
			}
			out = append(out, v2)
		}
		if len(ve) > 0 {
			return nil, ve
		}
		return out, nil
	case KindMap:
		keys, entries, ok := rawMapEntries(raw)
		if !ok {
			return nil, ValidationError{tc.fieldError(CodeInvalidType, map[string]any{"expected": "map"})}
		}
		out := make(map[string]any, len(keys))
		var ve ValidationError
		for _, k := range keys {
			etc := tc.atKey(raw, k, entries[k])
			v2, errs := transformElem(etc, d, entries[k])
			if len(errs) > 0 {
				ve = AppendErrors(ve, errs...)
				if !tc.AllFields {
					return nil, ve
				}
				continue
			}
			out[k] = v2
		}
		if len(ve) > 0 {
			return nil, ve
		}
		return out, nil
	case KindInstance:
		return transformInstance(tc, d, raw)
	default:
		return transformScalar(tc, d.Kind, raw, d.Rules)
	}
}

// transformElem coerces one container element. tc is positioned at the
// element.
func transformElem(tc *Context, d *FieldDescriptor, el any) (any, ValidationError) {
	if el == nil {
		return nil, nil
	}
	if d.ItemKind == KindInstance {
		return transformInstance(tc, d, el)
	}
	return transformScalar(tc, d.ItemKind, el, nil)
}

// transformInstance accepts an already-built instance of the declared class,
// or constructs one from a nested keyed map.
func transformInstance(tc *Context, d *FieldDescriptor, raw any) (any, ValidationError) {
	switch t := raw.(type) {
	case *Instance:
		if t.class.name != d.RefClass {
			return nil, ValidationError{tc.fieldError(CodeInvalidType, map[string]any{"expected": d.RefClass, "got": t.class.name})}
		}
		return t, nil
	case map[string]any:
		reg := tc.Owner.class.registry
		if reg == nil {
			return nil, ValidationError{tc.fieldError(CodeUnknownClass, map[string]any{"class": d.RefClass})}
		}
		rc, ok := reg.Class(d.RefClass)
		if !ok {
			return nil, ValidationError{tc.fieldError(CodeUnknownClass, map[string]any{"class": d.RefClass})}
		}
		child := newShell(rc)
		ctc := tc.atInstance(child).withDest(child, true)
		ctc.Value = t
		if err := (instanceOf{class: rc}).transform(ctc); err != nil {
			if ve, ok := AsValidation(err); ok {
				return nil, ve
			}
			return nil, asFieldErrors(tc, err)
		}
		return child, nil
	default:
		return nil, ValidationError{tc.fieldError(CodeInvalidType, map[string]any{"expected": "object"})}
	}
}

// transformScalar coerces a scalar and runs the field's transform rules.
func transformScalar(tc *Context, kind FieldKind, v any, rules []Rule) (any, ValidationError) {
	out, ve := coerceScalar(tc, kind, v)
	if len(ve) > 0 {
		return nil, ve
	}
	for _, r := range rules {
		var err error
		out, err = r.Transform(tc, out)
		if err != nil {
			return nil, asFieldErrors(tc, err)
		}
	}
	return out, nil
}

// ---- validate ----

// validate walks the instance's declared fields in declaration order,
// aggregating keypath-keyed errors. Already-visited instances are skipped,
// which both breaks cycles and keeps one object from reporting twice.
func (e instanceOf) validate(tc *Context) error {
	obj := tc.Owner
	if _, seen := tc.Lookup.fetch(obj, phaseValidate); seen {
		return nil
	}
	tc.Lookup.mark(obj, phaseValidate, nil)

	var ve ValidationError
	for _, d := range e.class.fields {
		v := obj.values[d.Name]
		ftc := tc.atField(d, v)
		errs := validateValue(ftc, d, v)
		if len(errs) > 0 {
			ve = AppendErrors(ve, errs...)
			if !tc.AllFields {
				return ve
			}
		}
	}
	if len(ve) > 0 {
		return ve
	}
	return nil
}

// validateValue checks one field value. tc is positioned at the field.
func validateValue(tc *Context, d *FieldDescriptor, v any) ValidationError {
	if v == nil {
		if d.Required {
			return ValidationError{tc.fieldError(CodeRequired, nil)}
		}
		return nil
	}
	switch d.Kind {
	case KindList:
		items, ok := rawListItems(v)
		if !ok {
			return ValidationError{tc.fieldError(CodeInvalidType, map[string]any{"expected": "list"})}
		}
		ve := runValidateRules(tc, d.Rules, v, nil)
		if len(ve) > 0 && !tc.AllFields {
			return ve
		}
		for idx, el := range items {
			etc := tc.atIndex(v, idx, el)
			errs := validateElem(etc, d, el)
			if len(errs) > 0 {
				ve = AppendErrors(ve, errs...)
				if !tc.AllFields {
					return ve
				}
			}
		}
		return ve
	case KindMap:
		keys, entries, ok := rawMapEntries(v)
		if !ok {
			return ValidationError{tc.fieldError(CodeInvalidType, map[string]any{"expected": "map"})}
		}
		ve := runValidateRules(tc, d.Rules, v, nil)
		if len(ve) > 0 && !tc.AllFields {
			return ve
		}
		for _, k := range keys {
			etc := tc.atKey(v, k, entries[k])
			errs := validateElem(etc, d, entries[k])
			if len(errs) > 0 {
				ve = AppendErrors(ve, errs...)
				if !tc.AllFields {
					return ve
				}
			}
		}
		return ve
	case KindInstance:
		return validateInstance(tc, d, v)
	default:
		if !scalarKindOK(d.Kind, v) {
			return ValidationError{tc.fieldError(CodeInvalidType, map[string]any{"expected": d.Kind.String()})}
		}
		return runValidateRules(tc, d.Rules, v, nil)
	}
}

// validateElem checks one container element. tc is positioned at the element.
func validateElem(tc *Context, d *FieldDescriptor, el any) ValidationError {
	if el == nil {
		return nil
	}
	if d.ItemKind == KindInstance {
		return validateInstance(tc, d, el)
	}
	if !scalarKindOK(d.ItemKind, el) {
		return ValidationError{tc.fieldError(CodeInvalidType, map[string]any{"expected": d.ItemKind.String()})}
	}
	return nil
}

// validateInstance recurses into a nested instance.
func validateInstance(tc *Context, d *FieldDescriptor, v any) ValidationError {
	obj, ok := v.(*Instance)
	if !ok {
		return ValidationError{tc.fieldError(CodeInvalidType, map[string]any{"expected": d.RefClass})}
	}
	if obj.class.name != d.RefClass {
		return ValidationError{tc.fieldError(CodeInvalidType, map[string]any{"expected": d.RefClass, "got": obj.class.name})}
	}
	err := instanceOf{class: obj.class}.validate(tc.atInstance(obj))
	if err == nil {
		return nil
	}
	if ve, ok := AsValidation(err); ok {
		return ve
	}
	return asFieldErrors(tc, err)
}

// runValidateRules runs the field's validate rules, honoring fail-fast.
func runValidateRules(tc *Context, rules []Rule, v any, ve ValidationError) ValidationError {
	for _, r := range rules {
		if err := r.Validate(tc, v); err != nil {
			ve = AppendErrors(ve, asFieldErrors(tc, err)...)
			if !tc.AllFields {
				return ve
			}
		}
	}
	return ve
}

// ---- serialize ----

// tojson projects the instance into a plain serializable map. An instance
// reached a second time within the same call is cycle-cut: a completed result
// is reused, an in-progress one serializes as null.
func (e instanceOf) tojson(tc *Context) (map[string]any, error) {
	obj := tc.Owner
	if res, seen := tc.Lookup.fetch(obj, phaseToJSON); seen {
		if m, ok := res.(map[string]any); ok {
			return m, nil
		}
		return nil, nil
	}
	tc.Lookup.mark(obj, phaseToJSON, nil)

	out := make(map[string]any, len(e.class.fields))
	for _, d := range e.class.fields {
		if d.Access&AccessWriteOnly != 0 && !tc.IgnoreWriteonly {
			continue
		}
		ftc := tc.atField(d, obj.values[d.Name])
		jv, err := jsonValue(ftc, d, obj.values[d.Name])
		if err != nil {
			return nil, err
		}
		out[e.class.jsonKey(d)] = jv
	}
	tc.Lookup.mark(obj, phaseToJSON, out)
	return out, nil
}

// jsonValue projects one field value. tc is positioned at the field.
func jsonValue(tc *Context, d *FieldDescriptor, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch d.Kind {
	case KindList:
		items, ok := rawListItems(v)
		if !ok {
			return nil, nil
		}
		out := make([]any, 0, len(items))
		for idx, el := range items {
			etc := tc.atIndex(v, idx, el)
			jv, err := jsonElem(etc, d, el)
			if err != nil {
				return nil, err
			}
			out = append(out, jv)
		}
		return out, nil
	case KindMap:
		keys, entries, ok := rawMapEntries(v)
		if !ok {
			return nil, nil
		}
		out := make(map[string]any, len(keys))
		for _, k := range keys {
			etc := tc.atKey(v, k, entries[k])
			jv, err := jsonElem(etc, d, entries[k])
			if err != nil {
				return nil, err
			}
			out[k] = jv
		}
		return out, nil
	case KindInstance:
		return jsonInstance(tc, v)
	default:
		out := scalarToJSON(d.Kind, v)
		for _, r := range d.Rules {
			var err error
			out, err = r.ToJSON(tc, out)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}

// jsonElem projects one container element. tc is positioned at the element.
func jsonElem(tc *Context, d *FieldDescriptor, el any) (any, error) {
	if el == nil {
		return nil, nil
	}
	if d.ItemKind == KindInstance {
		return jsonInstance(tc, el)
	}
	return scalarToJSON(d.ItemKind, el), nil
}

func jsonInstance(tc *Context, v any) (any, error) {
	obj, ok := v.(*Instance)
	if !ok {
		return nil, nil
	}
	m, err := instanceOf{class: obj.class}.tojson(tc.atInstance(obj))
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	return m, nil
}

// ---- container views ----

// rawListItems exposes the elements of an owned or raw list.
func rawListItems(v any) ([]any, bool) {
	switch t := v.(type) {
	case *OwnedList:
		return t.items, true
	case []any:
		return t, true
	default:
		return nil, false
	}
}

// rawMapEntries exposes the keys (insertion order for owned maps, sorted for
// raw maps) and entries of an owned or raw map.
func rawMapEntries(v any) ([]string, map[string]any, bool) {
	switch t := v.(type) {
	case *OwnedMap:
		return t.keys, t.items, true
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys, t, true
	default:
		return nil, nil, false
	}
}
