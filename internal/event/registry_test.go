package event

import (
	"testing"

	"github.com/google/uuid"
)

func newTestEntry(id ID, tag TypeTag) *entry {
	return newEntry(id, tag, wildcardListener{fn: func(ID, any) {}})
}

func TestRegistry_AddAndMatch(t *testing.T) {
	r := NewRegistry()

	intTag := TagOf[int]()
	strTag := TagOf[string]()

	a := newTestEntry(1, intTag)
	b := newTestEntry(1, intTag)
	c := newTestEntry(1, strTag)
	w := newTestEntry(1, Wildcard)
	other := newTestEntry(2, intTag)
	for _, e := range []*entry{a, b, c, w, other} {
		r.Add(e)
	}

	tests := []struct {
		name string
		id   ID
		tag  TypeTag
		want []*entry
	}{
		{"int", 1, intTag, []*entry{a, b, w}},
		{"string", 1, strTag, []*entry{c, w}},
		{"unregistered type", 1, TagOf[float64](), []*entry{w}},
		{"wildcard tag", 1, Wildcard, []*entry{w}},
		{"other event", 2, intTag, []*entry{other}},
		{"unknown event", 3, intTag, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Match(tt.id, tt.tag)
			if len(got) != len(tt.want) {
				t.Fatalf("Match() returned %d entries, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d mismatch", i)
				}
			}
		})
	}
}

func TestRegistry_MatchReturnsCopy(t *testing.T) {
	r := NewRegistry()
	tag := TagOf[int]()
	a := newTestEntry(1, tag)
	r.Add(a)

	snapshot := r.Match(1, tag)
	r.Add(newTestEntry(1, tag))
	r.Remove(1, tag, a.token)

	if len(snapshot) != 1 || snapshot[0] != a {
		t.Error("snapshot changed after registry mutation")
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	tag := TagOf[int]()

	a := newTestEntry(1, tag)
	b := newTestEntry(1, tag)
	r.Add(a)
	r.Add(b)

	if r.Remove(2, tag, a.token) {
		t.Error("Remove() with wrong event succeeded")
	}
	if r.Remove(1, TagOf[string](), a.token) {
		t.Error("Remove() with wrong tag succeeded")
	}
	if r.Remove(1, tag, uuid.New()) {
		t.Error("Remove() with unknown token succeeded")
	}
	if !r.Remove(1, tag, a.token) {
		t.Fatal("Remove() failed for registered entry")
	}
	if r.Remove(1, tag, a.token) {
		t.Error("second Remove() succeeded")
	}

	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
	got := r.Match(1, tag)
	if len(got) != 1 || got[0] != b {
		t.Error("remaining entry is not b")
	}
}

func TestRegistry_RemoveLastCleansBuckets(t *testing.T) {
	r := NewRegistry()
	tag := TagOf[int]()
	a := newTestEntry(5, tag)
	r.Add(a)
	r.Remove(5, tag, a.token)

	if len(r.buckets) != 0 {
		t.Errorf("buckets = %v, want empty", r.buckets)
	}
	if r.CountBucket(5, tag) != 0 {
		t.Errorf("CountBucket() = %d, want 0", r.CountBucket(5, tag))
	}
}

func TestRegistry_RemoveReleasesEntry(t *testing.T) {
	r := NewRegistry()
	tag := TagOf[int]()
	a := newTestEntry(1, tag)
	b := newTestEntry(1, tag)
	r.Add(a)
	r.Add(b)

	backing := r.buckets[1][tag]
	r.Remove(1, tag, a.token)

	if backing[len(backing)-1] != nil {
		t.Error("removed entry still referenced by the bucket's backing array")
	}
	if got := r.buckets[1][tag]; len(got) != 1 || got[0] != b {
		t.Error("remaining entry is not b")
	}
}

func TestRegistry_Counts(t *testing.T) {
	r := NewRegistry()
	r.Add(newTestEntry(1, TagOf[int]()))
	r.Add(newTestEntry(1, Wildcard))
	r.Add(newTestEntry(2, TagOf[int]()))

	if r.Count() != 3 {
		t.Errorf("Count() = %d, want 3", r.Count())
	}
	if r.CountEvent(1) != 2 {
		t.Errorf("CountEvent(1) = %d, want 2", r.CountEvent(1))
	}
	if r.CountBucket(1, Wildcard) != 1 {
		t.Errorf("CountBucket(1, Wildcard) = %d, want 1", r.CountBucket(1, Wildcard))
	}

	r.Clear()
	if r.Count() != 0 || r.CountEvent(1) != 0 {
		t.Error("registry not empty after Clear()")
	}
}

func TestTypeTag(t *testing.T) {
	type local struct{ A int }

	tests := []struct {
		name     string
		tag      TypeTag
		str      string
		wildcard bool
	}{
		{"wildcard", Wildcard, "*", true},
		{"int", TagOf[int](), "int", false},
		{"pointer", TagOf[*int](), "*int", false},
		{"any", TagOf[any](), "interface {}", false},
		{"value int", tagOfValue(3), "int", false},
		{"value nil", tagOfValue(nil), "*", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tag.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
			if got := tt.tag.IsWildcard(); got != tt.wildcard {
				t.Errorf("IsWildcard() = %v, want %v", got, tt.wildcard)
			}
		})
	}

	if TagOf[local]() != TagOf[local]() {
		t.Error("TagOf is not stable for the same type")
	}
	if TagOf[int]() == TagOf[int32]() {
		t.Error("distinct types share a tag")
	}
	if tagOfValue(local{}) != TagOf[local]() {
		t.Error("dynamic and static tags differ for the same type")
	}
}
