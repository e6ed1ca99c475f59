package modelgraph

import "sort"

// Instance is an object of a declared class. Every declared field exists from
// construction on; nil is the absent marker. All field assignment funnels
// through SetField, which wraps containers into owned variants and keeps
// paired relationship fields consistent.
type Instance struct {
	class    *ClassDescriptor
	values   map[string]any
	isNew    bool
	modified map[string]struct{}
}

// newShell allocates an instance with every declared field set to the absent
// marker.
func newShell(cd *ClassDescriptor) *Instance {
	obj := &Instance{
		class:    cd,
		values:   make(map[string]any, len(cd.fields)),
		isNew:    true,
		modified: map[string]struct{}{},
	}
	for _, d := range cd.fields {
		obj.values[d.Name] = nil
	}
	return obj
}

// New constructs an instance from untrusted keyed input. Every declared field
// is initialized to absent, then a transform pass with fill-blanks semantics
// coerces the input and assigns defaults for missing fields. Accessor marks
// are honored; no explicit validation pass runs (call Validate for that).
func (cd *ClassDescriptor) New(input map[string]any) (*Instance, error) {
	obj := newShell(cd)
	if err := obj.applyInput(input, true); err != nil {
		return nil, err
	}
	return obj, nil
}

// MustNew is like New but panics on error.
func (cd *ClassDescriptor) MustNew(input map[string]any) *Instance {
	obj, err := cd.New(input)
	if err != nil {
		panic(err)
	}
	return obj
}

// Class returns the descriptor table this instance was declared by.
func (i *Instance) Class() *ClassDescriptor { return i.class }

// Get returns the stored value of a declared field.
func (i *Instance) Get(name string) (any, bool) {
	v, ok := i.values[name]
	return v, ok
}

// MustGet is like Get but panics on an undeclared field name.
func (i *Instance) MustGet(name string) any {
	v, ok := i.values[name]
	if !ok {
		panic(&KeyMismatchError{Class: i.class.name, Keys: []string{name}})
	}
	return v
}

// Set batch-assigns from untrusted input and returns the instance for
// chaining. Fields absent from the input are untouched. Accessor marks are
// honored: readonly and internal fields present in the input are silently
// ignored, and writeonce fields are accepted only while their current value
// is absent. Assignment is optimistic: fields preceding a failing field stay
// assigned (documented compatibility behavior).
func (i *Instance) Set(input map[string]any) (*Instance, error) {
	return i, i.applyInput(input, false)
}

// Update batch-assigns trusted, already-normalized values, bypassing accessor
// marks, coercion, and validation. It returns a KeyMismatchError naming every
// key that is not a declared field; no field is mutated in that case.
func (i *Instance) Update(values map[string]any) (*Instance, error) {
	var unknown []string
	for k := range values {
		if _, ok := i.class.byName[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return i, &KeyMismatchError{Class: i.class.name, Keys: unknown}
	}
	for _, d := range i.class.fields {
		if v, ok := values[d.Name]; ok {
			i.setField(d, v)
		}
	}
	return i, nil
}

// SetField assigns one field through the interception point: containers are
// wrapped into owned variants and relationship fields are synchronized. The
// value is stored verbatim otherwise; no coercion or validation runs.
func (i *Instance) SetField(name string, value any) error {
	d, ok := i.class.byName[name]
	if !ok {
		return &KeyMismatchError{Class: i.class.name, Keys: []string{name}}
	}
	i.setField(d, value)
	return nil
}

// Validate runs a validation-only traversal from a fresh root context. With
// allFields true it collects every violation before returning; with false it
// stops at the first violation in depth-first, declaration order. When no
// argument is given the class config decides.
func (i *Instance) Validate(allFields ...bool) error {
	all := i.class.config.ValidateAllFields
	if len(allFields) > 0 {
		all = allFields[len(allFields)-1]
	}
	return instanceOf{class: i.class}.validate(rootContext(i, all))
}

// IsValid reports validity without surfacing the validation error.
func (i *Instance) IsValid() bool {
	err := i.Validate(false)
	if err == nil {
		return true
	}
	_, isValidation := AsValidation(err)
	return !isValidation
}

// ToJSON runs a serialize traversal into a plain map. Writeonly-marked fields
// (internal ones included) are omitted unless ignoreWriteonly is true. Linked
// objects already serialized within the same call are cycle-cut to null.
func (i *Instance) ToJSON(ignoreWriteonly bool) (map[string]any, error) {
	tc := rootContext(i, true)
	tc.IgnoreWriteonly = ignoreWriteonly
	return instanceOf{class: i.class}.tojson(tc)
}

// IsNew reports whether this instance was constructed in this process and
// never marked persisted.
func (i *Instance) IsNew() bool { return i.isNew }

// IsModified reports whether any field changed since the instance was marked
// persisted. New instances are never considered modified.
func (i *Instance) IsModified() bool { return len(i.modified) > 0 }

// ModifiedFields returns the sorted keypaths modified since the instance was
// marked persisted.
func (i *Instance) ModifiedFields() []string {
	out := make([]string, 0, len(i.modified))
	for k := range i.modified {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarkPersisted clears the new flag and the modification record, turning on
// modification tracking for subsequent assignments.
func (i *Instance) MarkPersisted() {
	i.isNew = false
	i.modified = map[string]struct{}{}
}

// applyInput seeds a transform traversal over keyed input with this instance
// as the destination.
func (i *Instance) applyInput(input map[string]any, fillBlanks bool) error {
	tc := rootContext(i, true).withDest(i, fillBlanks)
	tc.Value = input
	return instanceOf{class: i.class}.transform(tc)
}

// setField is the single enforcement point for owned semantics: wrap, store,
// then synchronize the relationship one hop. Reassigning a relationship field
// does not clear the stale back-link on the previous value; relationships are
// additive until explicitly cleared.
func (i *Instance) setField(d *FieldDescriptor, value any) {
	value = wrapValue(i, d.Name, value)
	i.storeValue(d.Name, value)
	if d.IsRef() {
		i.linkField(d, value)
	}
}

// storeValue writes a field without relationship synchronization and records
// the modification when tracking is on.
func (i *Instance) storeValue(name string, v any) {
	i.values[name] = v
	i.trackModified(name)
}

func (i *Instance) trackModified(keypath string) {
	if !i.isNew {
		i.modified[keypath] = struct{}{}
	}
}

// linkField synchronizes the inverse side for every instance carried by the
// assigned value.
func (i *Instance) linkField(d *FieldDescriptor, value any) {
	switch t := value.(type) {
	case *Instance:
		i.linkOne(d, t)
	case *OwnedList:
		for _, el := range t.items {
			if obj, ok := el.(*Instance); ok {
				i.linkOne(d, obj)
			}
		}
	}
}

// linkOne performs the best-effort, one-hop synchronization of a single link:
// single-valued inverses are pointed back at this instance, multi-valued
// inverses gain this instance exactly once.
func (i *Instance) linkOne(d *FieldDescriptor, item *Instance) {
	if item == nil || i.class.registry == nil {
		return
	}
	inv := i.class.registry.InverseOf(i.class.name, d.Name)
	if inv == nil {
		return
	}
	switch inv.Kind {
	case KindInstance:
		if cur, _ := item.values[inv.Name].(*Instance); cur != i {
			// re-entrant; terminates because the forward side is stored first
			item.setField(inv, i)
		}
	case KindList:
		cur, ok := item.values[inv.Name].(*OwnedList)
		if !ok {
			nl := newOwnedList(item, inv.Name)
			nl.appendRaw(i)
			item.storeValue(inv.Name, nl)
		} else if !cur.Contains(i) {
			cur.Append(i)
		}
	}
}

// ---- owned-collection notifications ----

// listDidAdd links appended instances on relationship list fields, records
// the modification, and dispatches to the class observer.
func (i *Instance) listDidAdd(l *OwnedList, index int, v any) {
	name := initialKeypath(l.keypath)
	if d, ok := i.class.Field(name); ok && d.IsRef() && l.keypath == name {
		if obj, isInst := v.(*Instance); isInst {
			i.linkOne(d, obj)
		}
	}
	i.trackModified(l.keypath)
	if obs := i.class.observer; obs != nil {
		obs.ListDidAdd(i, l, index, v)
	}
}

func (i *Instance) listDidRemove(l *OwnedList, v any) {
	i.trackModified(l.keypath)
	if obs := i.class.observer; obs != nil {
		obs.ListDidRemove(i, l, v)
	}
}

func (i *Instance) listDidSort(l *OwnedList) {
	i.trackModified(l.keypath)
	if obs := i.class.observer; obs != nil {
		obs.ListDidSort(i, l)
	}
}

func (i *Instance) mapDidSet(m *OwnedMap, key string, v any) {
	i.trackModified(m.keypath)
	if obs := i.class.observer; obs != nil {
		obs.MapDidSet(i, m, key, v)
	}
}

func (i *Instance) mapDidDelete(m *OwnedMap, v any) {
	i.trackModified(m.keypath)
	if obs := i.class.observer; obs != nil {
		obs.MapDidDelete(i, m, v)
	}
}
