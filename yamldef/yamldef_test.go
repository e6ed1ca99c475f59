package yamldef_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	modelgraph "github.com/modelgraph/modelgraph"
	"github.com/modelgraph/modelgraph/yamldef"
)

const blogYAML = `
graph: default
classes:
  - name: User
    fields:
      - name: name
        type: string
        required: true
        minLength: 1
        maxLength: 50
      - name: age
        type: int
        min: 0
        max: 150
      - name: role
        type: string
        enum: [admin, member]
        default: member
      - name: password
        type: string
        access: [writeonly]
      - name: posts
        type: list
        of: instance
        class: Post
        linkedBy: author
  - name: Post
    fields:
      - name: title
        type: string
        required: true
      - name: author
        type: instance
        class: User
        linkTo: true
`

func TestLoad_BuildsWorkingGraph(t *testing.T) {
	reg := modelgraph.NewRegistry()
	require.NoError(t, yamldef.Load(reg, []byte(blogYAML)))

	user, ok := reg.Class("User")
	require.True(t, ok)
	post, ok := reg.Class("Post")
	require.True(t, ok)

	u, err := user.New(map[string]any{"name": "Anna"})
	require.NoError(t, err)
	assert.Equal(t, "member", u.MustGet("role"))

	p, err := post.New(map[string]any{"title": "hello"})
	require.NoError(t, err)
	require.NoError(t, p.SetField("author", u))

	posts, okList := u.MustGet("posts").(*modelgraph.OwnedList)
	require.True(t, okList)
	assert.True(t, posts.Contains(p))
}

func TestLoad_AppliesRules(t *testing.T) {
	reg := modelgraph.NewRegistry()
	require.NoError(t, yamldef.Load(reg, []byte(blogYAML)))
	user, _ := reg.Class("User")

	u := user.MustNew(map[string]any{"name": "Anna"})
	_, err := u.Update(map[string]any{"age": int64(999), "role": "owner"})
	require.NoError(t, err)

	verr := u.Validate(true)
	ve, ok := modelgraph.AsValidation(verr)
	require.True(t, ok)
	require.Len(t, ve, 2)
	assert.Equal(t, modelgraph.CodeTooBig, ve[0].Code)
	assert.Equal(t, modelgraph.CodeInvalidEnum, ve[1].Code)
}

func TestLoad_ClassConfig(t *testing.T) {
	doc := `
classes:
  - name: Strict
    unknown: strict
    camelizeJSON: false
    validateAllFields: true
    fields:
      - name: name
        type: string
`
	reg := modelgraph.NewRegistry()
	require.NoError(t, yamldef.Load(reg, []byte(doc)))
	cd, ok := reg.Class("Strict")
	require.True(t, ok)

	cfg := cd.Config()
	assert.Equal(t, modelgraph.UnknownStrict, cfg.Unknown)
	assert.False(t, cfg.CamelizeJSON)
	assert.True(t, cfg.ValidateAllFields)

	_, err := cd.New(map[string]any{"name": "ok", "extra": 1})
	require.Error(t, err)
}

func TestLoad_GraphNameMismatch(t *testing.T) {
	reg := modelgraph.NewRegistry()
	err := yamldef.Load(reg, []byte("graph: other\nclasses: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targets graph")
}

func TestLoad_RejectsUnknownType(t *testing.T) {
	doc := `
classes:
  - name: Bad
    fields:
      - name: x
        type: decimal
`
	reg := modelgraph.NewRegistry()
	err := yamldef.Load(reg, []byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown type "decimal"`)
}

func TestLoad_RejectsUnknownAccessMark(t *testing.T) {
	doc := `
classes:
  - name: Bad
    fields:
      - name: x
        type: string
        access: [hidden]
`
	reg := modelgraph.NewRegistry()
	err := yamldef.Load(reg, []byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown access mark "hidden"`)
}

func TestLoad_RejectsInvalidYAML(t *testing.T) {
	reg := modelgraph.NewRegistry()
	require.Error(t, yamldef.Load(reg, []byte("classes: [")))
}
