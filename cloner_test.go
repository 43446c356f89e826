package rrb

import "testing"

type record struct {
	tag   string
	attrs map[string]int
}

func (r *record) Clone() *record {
	if r == nil {
		return nil
	}
	clone := &record{tag: r.tag, attrs: make(map[string]int, len(r.attrs))}
	for k, v := range r.attrs {
		clone.attrs[k] = v
	}
	return clone
}

func TestCloneValUsesClonerWhenImplemented(t *testing.T) {
	t.Parallel()

	in := &record{tag: "x", attrs: map[string]int{"a": 1}}
	out := cloneVal(in)

	if out == in {
		t.Fatal("expected a distinct clone, got the same pointer")
	}
	out.attrs["a"] = 2
	if in.attrs["a"] != 1 {
		t.Fatal("mutating the clone leaked back into the original")
	}
}

func TestCloneValPassesThroughNonCloner(t *testing.T) {
	t.Parallel()

	if got := cloneVal(42); got != 42 {
		t.Fatalf("cloneVal(42)=%d", got)
	}
}

func TestUpdateClonesValueWhenShared(t *testing.T) {
	t.Parallel()

	tr := New[*record]()
	tr = tr.PushBack(&record{tag: "a", attrs: map[string]int{"n": 1}})

	updated := tr.Update(0, func(r *record) *record {
		clone := cloneVal(r)
		clone.attrs["n"] = 2
		return clone
	})

	if tr.Get(0).attrs["n"] != 1 {
		t.Fatalf("receiver mutated: %v", tr.Get(0).attrs)
	}
	if updated.Get(0).attrs["n"] != 2 {
		t.Fatalf("updated.Get(0)=%v", updated.Get(0).attrs)
	}
}
