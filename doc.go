// Package modelgraph turns plain keyed input (for example web request
// bodies) into validated, typed object graphs and back into serializable
// form, while keeping bidirectional relationships between linked objects
// consistent automatically.
//
// It provides:
//
// - Class descriptors with typed fields, storage kinds, and accessor marks
// - Instances with Set/Update/Validate/IsValid/ToJSON over a class graph
// - Owned lists and maps that know their owner and report their mutations
// - Cycle-safe transform/validate/serialize traversals with keypath errors
//
// Design policy:
// - Keep the traversal engine and error model in the root package.
// - Place declarative class builders under dsl/ and YAML loading under
//   yamldef/; localized messages live in i18n/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	user := dsl.Class("User").
//		Field("name", dsl.Str().Required()).
//		Field("posts", dsl.ListOf(dsl.InstanceOf("Post")).LinkedBy("author")).
//		MustRegister(reg)
//
//	u, err := user.New(map[string]any{"name": "Anna"})
//	err = u.Validate()
//	out, err := u.ToJSON(false)
package modelgraph
