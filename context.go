package modelgraph

import "github.com/modelgraph/modelgraph/i18n"

// Context carries traversal state through one recursive transform, validate,
// or serialize pass. A context is immutable once constructed; each descent
// produces a child context with advanced keypaths and parent references while
// sharing the same root and lookup map.
type Context struct {
	// Value is the value currently being processed.
	Value any

	// Keypaths from the traversal root, the owning instance, and the
	// immediate parent.
	KeypathRoot   string
	KeypathOwner  string
	KeypathParent string

	// Root is the instance the top-level operation started at. Owner is the
	// nearest enclosing instance. Parent is the immediate enclosing value
	// (instance or owned collection).
	Root   *Instance
	Owner  *Instance
	Parent any

	ConfigRoot  Config
	ConfigOwner Config

	// Desc is the active field descriptor; nil at the traversal root.
	Desc *FieldDescriptor

	// AllFields selects collect-all (true) over fail-fast (false) error
	// behavior.
	AllFields bool

	// Dest is the instance a transform pass populates. FillBlanks makes the
	// pass assign defaults for fields absent from the input.
	Dest       *Instance
	FillBlanks bool

	// IgnoreWriteonly exposes writeonly-marked fields during serialization.
	IgnoreWriteonly bool

	// Lookup is the shared per-traversal visited set.
	Lookup *LookupMap
}

// rootContext seeds a traversal at obj.
func rootContext(obj *Instance, allFields bool) *Context {
	cfg := obj.class.config
	return &Context{
		Value:       obj,
		Root:        obj,
		Owner:       obj,
		Parent:      obj,
		ConfigRoot:  cfg,
		ConfigOwner: cfg,
		AllFields:   allFields,
		Lookup:      newLookupMap(),
	}
}

// atField descends into a declared field of the owning instance.
func (tc *Context) atField(d *FieldDescriptor, v any) *Context {
	child := *tc
	child.Value = v
	child.Desc = d
	child.KeypathRoot = concatKeypath(tc.KeypathRoot, d.Name)
	child.KeypathOwner = concatKeypath(tc.KeypathOwner, d.Name)
	child.KeypathParent = d.Name
	child.Parent = tc.Owner
	return &child
}

// atIndex descends into a list element.
func (tc *Context) atIndex(list any, i int, v any) *Context {
	child := *tc
	child.Value = v
	child.KeypathRoot = concatKeypath(tc.KeypathRoot, i)
	child.KeypathOwner = concatKeypath(tc.KeypathOwner, i)
	child.KeypathParent = concatKeypath("", i)
	child.Parent = list
	return &child
}

// atKey descends into a map entry.
func (tc *Context) atKey(m any, k string, v any) *Context {
	child := *tc
	child.Value = v
	child.KeypathRoot = concatKeypath(tc.KeypathRoot, k)
	child.KeypathOwner = concatKeypath(tc.KeypathOwner, k)
	child.KeypathParent = k
	child.Parent = m
	return &child
}

// atInstance descends into a nested instance, which becomes the new owner.
// The keypath from the root keeps accumulating; the owner keypath restarts.
func (tc *Context) atInstance(obj *Instance) *Context {
	child := *tc
	child.Value = obj
	child.Owner = obj
	child.Parent = obj
	child.ConfigOwner = obj.class.config
	child.KeypathOwner = ""
	child.KeypathParent = ""
	child.Desc = nil
	child.Dest = nil
	return &child
}

// withDest returns a transform context populating dest.
func (tc *Context) withDest(dest *Instance, fillBlanks bool) *Context {
	child := *tc
	child.Dest = dest
	child.FillBlanks = fillBlanks
	return &child
}

// fieldError builds a FieldError at this context's keypath with a localized
// message.
func (tc *Context) fieldError(code string, params map[string]any) FieldError {
	data := make(map[string]string, len(params))
	for k, v := range params {
		data[k] = stringify(v)
	}
	return FieldError{
		Keypath: tc.KeypathRoot,
		Code:    code,
		Message: i18n.T(code, data),
		Params:  params,
	}
}
