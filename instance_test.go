package modelgraph_test

import (
	"testing"

	modelgraph "github.com/modelgraph/modelgraph"
	"github.com/modelgraph/modelgraph/dsl"
)

// newBlogGraph builds the User/Post fixture graph used across the core tests.
func newBlogGraph(t *testing.T) (*modelgraph.Registry, *modelgraph.ClassDescriptor, *modelgraph.ClassDescriptor) {
	t.Helper()
	reg := modelgraph.NewRegistry()
	user := dsl.Class("User").
		Field("name", dsl.Str().Required().MinLength(1).MaxLength(50)).
		Field("age", dsl.Int().Range(0, 150)).
		Field("role", dsl.Str().Enum("admin", "member").Default("member")).
		Field("api_key", dsl.Str().ReadOnly()).
		Field("invite_code", dsl.Str().WriteOnce()).
		Field("password", dsl.Str().WriteOnly()).
		Field("posts", dsl.ListOf(dsl.InstanceOf("Post")).LinkedBy("author")).
		MustRegister(reg)
	post := dsl.Class("Post").
		Field("title", dsl.Str().Required()).
		Field("author", dsl.InstanceOf("User").LinkTo()).
		MustRegister(reg)
	return reg, user, post
}

func TestNew_InitializesEveryDeclaredField(t *testing.T) {
	_, user, _ := newBlogGraph(t)
	u, err := user.New(map[string]any{"name": "Anna"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, d := range user.Fields() {
		if _, ok := u.Get(d.Name); !ok {
			t.Fatalf("field %s missing after construction", d.Name)
		}
	}
	if v := u.MustGet("age"); v != nil {
		t.Fatalf("expected absent age, got %v", v)
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	_, user, _ := newBlogGraph(t)
	u, err := user.New(map[string]any{"name": "Anna"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := u.MustGet("role"); got != "member" {
		t.Fatalf("expected default role member, got %v", got)
	}
}

func TestSet_DoesNotFillBlanks(t *testing.T) {
	_, user, _ := newBlogGraph(t)
	u := user.MustNew(map[string]any{"name": "Anna", "age": 30})
	if _, err := u.Set(map[string]any{"name": "Bea"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := u.MustGet("age"); got != int64(30) {
		t.Fatalf("age should be untouched, got %v", got)
	}
	if got := u.MustGet("name"); got != "Bea" {
		t.Fatalf("name should be updated, got %v", got)
	}
}

func TestSet_IgnoresReadonlyFields(t *testing.T) {
	_, user, _ := newBlogGraph(t)
	u := user.MustNew(map[string]any{"name": "Anna"})
	if _, err := u.Update(map[string]any{"api_key": "secret"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := u.Set(map[string]any{"api_key": "forged"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := u.MustGet("api_key"); got != "secret" {
		t.Fatalf("readonly field should keep its value, got %v", got)
	}
}

func TestSet_WriteOnceAcceptsOnlyWhileAbsent(t *testing.T) {
	_, user, _ := newBlogGraph(t)
	u := user.MustNew(map[string]any{"name": "Anna"})
	if _, err := u.Set(map[string]any{"invite_code": "abc"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := u.MustGet("invite_code"); got != "abc" {
		t.Fatalf("writeonce should accept the first value, got %v", got)
	}
	if _, err := u.Set(map[string]any{"invite_code": "xyz"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := u.MustGet("invite_code"); got != "abc" {
		t.Fatalf("writeonce should reject later values, got %v", got)
	}
}

func TestUpdate_RejectsUnknownKeysListingAll(t *testing.T) {
	_, user, _ := newBlogGraph(t)
	u := user.MustNew(map[string]any{"name": "Anna"})
	_, err := u.Update(map[string]any{"zzz": 1, "aaa": 2, "name": "Bea"})
	if err == nil {
		t.Fatalf("expected KeyMismatchError")
	}
	km, ok := err.(*modelgraph.KeyMismatchError)
	if !ok {
		t.Fatalf("expected KeyMismatchError, got %T", err)
	}
	if len(km.Keys) != 2 || km.Keys[0] != "aaa" || km.Keys[1] != "zzz" {
		t.Fatalf("expected both offending keys, got %v", km.Keys)
	}
	if got := km.Error(); got != "'aaa', 'zzz' not allowed in User." {
		t.Fatalf("unexpected message: %q", got)
	}
	// all-or-nothing: the valid key must not have been applied
	if got := u.MustGet("name"); got != "Anna" {
		t.Fatalf("Update must not partially apply, got name=%v", got)
	}
}

func TestUpdate_BypassesCoercionAndMarks(t *testing.T) {
	_, user, _ := newBlogGraph(t)
	u := user.MustNew(map[string]any{"name": "Anna"})
	if _, err := u.Update(map[string]any{"age": "not-a-number", "api_key": "k"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := u.MustGet("age"); got != "not-a-number" {
		t.Fatalf("Update should store values verbatim, got %v", got)
	}
	if got := u.MustGet("api_key"); got != "k" {
		t.Fatalf("Update should bypass accessor marks, got %v", got)
	}
	// the garbage value is still caught by an explicit validation pass
	if u.IsValid() {
		t.Fatalf("expected instance to be invalid after verbatim update")
	}
}

func TestIsValid_NeverSurfacesTheError(t *testing.T) {
	_, user, _ := newBlogGraph(t)
	u := user.MustNew(map[string]any{})
	if u.IsValid() {
		t.Fatalf("missing required name should be invalid")
	}
	if _, err := u.Set(map[string]any{"name": "Anna"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !u.IsValid() {
		t.Fatalf("expected valid instance")
	}
}

func TestSet_ReturnsSelfForChaining(t *testing.T) {
	_, user, _ := newBlogGraph(t)
	u := user.MustNew(map[string]any{"name": "Anna"})
	u2, err := u.Set(map[string]any{"name": "Bea"})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if u2 != u {
		t.Fatalf("Set must return the receiver")
	}
}

func TestModificationTracking(t *testing.T) {
	_, user, _ := newBlogGraph(t)
	u := user.MustNew(map[string]any{"name": "Anna"})
	if !u.IsNew() || u.IsModified() {
		t.Fatalf("fresh instance must be new and unmodified")
	}
	u.MarkPersisted()
	if u.IsNew() {
		t.Fatalf("persisted instance must not be new")
	}
	if _, err := u.Set(map[string]any{"name": "Bea", "age": 31}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got := u.ModifiedFields()
	if len(got) != 2 || got[0] != "age" || got[1] != "name" {
		t.Fatalf("unexpected modified fields: %v", got)
	}
}
