package modelgraph_test

import (
	"testing"

	modelgraph "github.com/modelgraph/modelgraph"
	"github.com/modelgraph/modelgraph/dsl"
)

// newCoupleGraph declares a one-to-one pairing between Person.passport and
// Passport.owner.
func newCoupleGraph(t *testing.T) (*modelgraph.ClassDescriptor, *modelgraph.ClassDescriptor) {
	t.Helper()
	reg := modelgraph.NewRegistry()
	person := dsl.Class("Person").
		Field("name", dsl.Str().Required()).
		Field("passport", dsl.InstanceOf("Passport").LinkTo()).
		MustRegister(reg)
	passport := dsl.Class("Passport").
		Field("number", dsl.Str().Required()).
		Field("owner", dsl.InstanceOf("Person").LinkedBy("passport")).
		MustRegister(reg)
	return person, passport
}

func TestLink_OneToOneSymmetry(t *testing.T) {
	person, passport := newCoupleGraph(t)
	p := person.MustNew(map[string]any{"name": "Anna"})
	pp := passport.MustNew(map[string]any{"number": "X-1"})
	if err := p.SetField("passport", pp); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if got := pp.MustGet("owner"); got != any(p) {
		t.Fatalf("expected inverse side to point back, got %v", got)
	}
}

func TestLink_OneToManySymmetryAndOrder(t *testing.T) {
	_, user, post := newBlogGraph(t)
	u := user.MustNew(map[string]any{"name": "Anna"})
	p1 := post.MustNew(map[string]any{"title": "one"})
	p2 := post.MustNew(map[string]any{"title": "two"})

	if err := p1.SetField("author", u); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	posts, _ := u.Get("posts")
	list, ok := posts.(*modelgraph.OwnedList)
	if !ok {
		t.Fatalf("expected owned list on inverse side, got %T", posts)
	}
	if list.Len() != 1 || list.At(0) != any(p1) {
		t.Fatalf("expected [p1], got %v", list.Values())
	}

	if err := p2.SetField("author", u); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if list.Len() != 2 || list.At(0) != any(p1) || list.At(1) != any(p2) {
		t.Fatalf("expected order-preserving [p1, p2], got %v", list.Values())
	}
}

func TestLink_IdempotentResync(t *testing.T) {
	_, user, post := newBlogGraph(t)
	u := user.MustNew(map[string]any{"name": "Anna"})
	p := post.MustNew(map[string]any{"title": "one"})

	if err := p.SetField("author", u); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if err := p.SetField("author", u); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	list := u.MustGet("posts").(*modelgraph.OwnedList)
	if list.Len() != 1 {
		t.Fatalf("expected exactly one back-link, got %d", list.Len())
	}
}

func TestLink_AppendSideSynchronizes(t *testing.T) {
	_, user, post := newBlogGraph(t)
	u := user.MustNew(map[string]any{"name": "Anna"})
	p := post.MustNew(map[string]any{"title": "one"})

	if err := u.SetField("posts", []any{p}); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if got := p.MustGet("author"); got != any(u) {
		t.Fatalf("assigning the list should link each element, got %v", got)
	}

	p2 := post.MustNew(map[string]any{"title": "two"})
	u.MustGet("posts").(*modelgraph.OwnedList).Append(p2)
	if got := p2.MustGet("author"); got != any(u) {
		t.Fatalf("appending to the owned list should link, got %v", got)
	}
}

func TestLink_ReassignmentKeepsStaleBackLink(t *testing.T) {
	// Relationships are additive: moving a post to a new author does not
	// clear the previous author's back-link.
	_, user, post := newBlogGraph(t)
	u1 := user.MustNew(map[string]any{"name": "Anna"})
	u2 := user.MustNew(map[string]any{"name": "Bea"})
	p := post.MustNew(map[string]any{"title": "one"})

	if err := p.SetField("author", u1); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if err := p.SetField("author", u2); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if got := p.MustGet("author"); got != any(u2) {
		t.Fatalf("forward link should follow the new value")
	}
	if list := u2.MustGet("posts").(*modelgraph.OwnedList); !list.Contains(p) {
		t.Fatalf("new inverse side should contain the post")
	}
	if list := u1.MustGet("posts").(*modelgraph.OwnedList); !list.Contains(p) {
		t.Fatalf("stale back-link is preserved by design of the sync pass")
	}
}

func TestLink_UnidirectionalFieldSyncsNothing(t *testing.T) {
	reg := modelgraph.NewRegistry()
	note := dsl.Class("Note").
		Field("body", dsl.Str()).
		MustRegister(reg)
	tag := dsl.Class("Tag").
		Field("label", dsl.Str()).
		Field("note", dsl.InstanceOf("Note").LinkTo()).
		MustRegister(reg)

	n := note.MustNew(map[string]any{"body": "hi"})
	tg := tag.MustNew(map[string]any{"label": "todo"})
	if err := tg.SetField("note", n); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if got := tg.MustGet("note"); got != any(n) {
		t.Fatalf("forward link should be stored")
	}
	if got := n.MustGet("body"); got != "hi" {
		t.Fatalf("unrelated fields must be untouched")
	}
}

func TestLink_ConstructionLinksNestedInstances(t *testing.T) {
	_, user, _ := newBlogGraph(t)
	u, err := user.New(map[string]any{
		"name":  "Anna",
		"posts": []any{map[string]any{"title": "hello"}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	list := u.MustGet("posts").(*modelgraph.OwnedList)
	if list.Len() != 1 {
		t.Fatalf("expected one nested post")
	}
	p := list.At(0).(*modelgraph.Instance)
	if got := p.MustGet("author"); got != any(u) {
		t.Fatalf("nested construction should link back to the owner, got %v", got)
	}
}
