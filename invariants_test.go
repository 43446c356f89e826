package rrb

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestPropertyGetAfterPushBackMatchesAppendOrder checks, for an arbitrary
// sequence of PushBacks, that every index reads back the value it was
// pushed with.
func TestPropertyGetAfterPushBackMatchesAppendOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		values := rapid.SliceOfN(rapid.Int(), 0, 2000).Draw(rt, "values")

		tr := New[int]()
		for _, v := range values {
			tr = tr.PushBack(v)
		}

		require.Equal(rt, len(values), tr.Size())
		for i, v := range values {
			require.Equal(rt, v, tr.Get(i), "index %d", i)
		}
		require.NoError(rt, tr.CheckInvariants())
	})
}

// TestPropertyUpdateIsLocal checks that Update changes exactly the
// targeted index and leaves every other index, and the receiver,
// unaffected.
func TestPropertyUpdateIsLocal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 2000).Draw(rt, "n")
		idx := rapid.IntRange(0, n-1).Draw(rt, "idx")

		tr := New[int]()
		for i := range n {
			tr = tr.PushBack(i)
		}

		updated := tr.Update(idx, func(v int) int { return v + 1000 })

		require.Equal(rt, idx, tr.Get(idx))
		require.Equal(rt, idx+1000, updated.Get(idx))
		for i := range n {
			if i == idx {
				continue
			}
			require.Equal(rt, tr.Get(i), updated.Get(i), "index %d", i)
		}
		require.NoError(rt, updated.CheckInvariants())
	})
}

// TestPropertyTakeDropComplementEachOther checks that for any split point,
// Take(n).Concat(Drop(n)) reproduces the original sequence.
func TestPropertyTakeDropComplementEachOther(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 2000).Draw(rt, "n")
		split := rapid.IntRange(0, n).Draw(rt, "split")

		tr := New[int]()
		for i := range n {
			tr = tr.PushBack(i)
		}

		reassembled := tr.Take(split).Concat(tr.Drop(split))

		require.Equal(rt, tr.Size(), reassembled.Size())
		for i := range n {
			require.Equal(rt, tr.Get(i), reassembled.Get(i), "index %d", i)
		}
		require.NoError(rt, reassembled.CheckInvariants())
	})
}

// TestPropertyConcatPreservesOrder checks that concatenating two
// independently built sequences produces the simple concatenation of
// their elements, for arbitrary sizes on both sides.
func TestPropertyConcatPreservesOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		left := rapid.SliceOfN(rapid.Int(), 0, 1500).Draw(rt, "left")
		right := rapid.SliceOfN(rapid.Int(), 0, 1500).Draw(rt, "right")

		lt := New[int]()
		for _, v := range left {
			lt = lt.PushBack(v)
		}
		rtree := New[int]()
		for _, v := range right {
			rtree = rtree.PushBack(v)
		}

		merged := lt.Concat(rtree)
		require.Equal(rt, len(left)+len(right), merged.Size())
		for i, v := range left {
			require.Equal(rt, v, merged.Get(i))
		}
		for i, v := range right {
			require.Equal(rt, v, merged.Get(len(left)+i))
		}
		require.NoError(rt, merged.CheckInvariants())
	})
}

// TestPropertyTransientMatchesPersistentEquivalent checks that building a
// sequence through an Editor produces the same observable result as the
// equivalent chain of persistent operations.
func TestPropertyTransientMatchesPersistentEquivalent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		values := rapid.SliceOfN(rapid.Int(), 0, 2000).Draw(rt, "values")

		persistent := New[int]()
		for _, v := range values {
			persistent = persistent.PushBack(v)
		}

		ed := New[int]().Transient()
		ed.PushBackAll(values...)
		transient := ed.Persistent()

		require.Equal(rt, persistent.Size(), transient.Size())
		for i := range values {
			require.Equal(rt, persistent.Get(i), transient.Get(i), "index %d", i)
		}
		require.NoError(rt, transient.CheckInvariants())
	})
}

// TestPropertyRandomOpSequenceMatchesReferenceSlice composes arbitrary
// sequences of PushBack, Take, Drop, Concat and Update against a plain
// []int reference, checking agreement and structural invariants after
// every step. Unlike the single-shape property tests above, this one
// lets Concat and Take/Drop feed back into further PushBacks, the
// combination that produces a full-width relaxed node reachable by a
// later push_tail — the gap a push_tail that blindly trusts "relaxed is
// never full" falls through.
func TestPropertyRandomOpSequenceMatchesReferenceSlice(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		numOps := rapid.IntRange(20, 80).Draw(rt, "numOps")

		tr := New[int]()
		var ref []int

		for step := range numOps {
			switch rapid.IntRange(0, 4).Draw(rt, "op") {
			case 0: // PushBack
				v := rapid.Int().Draw(rt, "value")
				tr = tr.PushBack(v)
				ref = append(ref, v)
			case 1: // Take
				n := rapid.IntRange(0, len(ref)).Draw(rt, "take")
				tr = tr.Take(n)
				ref = ref[:n]
			case 2: // Drop
				n := rapid.IntRange(0, len(ref)).Draw(rt, "drop")
				tr = tr.Drop(n)
				ref = ref[n:]
			case 3: // Concat with a freshly built second sequence
				m := rapid.IntRange(0, 2000).Draw(rt, "concatSize")
				other := New[int]()
				otherRef := make([]int, m)
				for i := range m {
					v := rapid.Int().Draw(rt, "concatValue")
					other = other.PushBack(v)
					otherRef[i] = v
				}
				tr = tr.Concat(other)
				ref = append(ref, otherRef...)
			case 4: // Update
				if len(ref) == 0 {
					continue
				}
				idx := rapid.IntRange(0, len(ref)-1).Draw(rt, "updateIdx")
				delta := rapid.IntRange(-1000, 1000).Draw(rt, "delta")
				tr = tr.Update(idx, func(v int) int { return v + delta })
				ref[idx] += delta
			}

			if tr.Size() != len(ref) {
				t.Fatalf("step %d: size=%d, want %d", step, tr.Size(), len(ref))
			}
			require.NoError(rt, tr.CheckInvariants(), "step %d", step)
		}

		for i, want := range ref {
			require.Equal(rt, want, tr.Get(i), "final index %d", i)
		}
	})
}

// TestPropertyTransientTakeDropConcatMatchesPersistent checks that the
// Editor's TransientTake/TransientDrop/TransientConcat reproduce whatever
// the equivalent persistent Take/Drop/Concat chain produces.
func TestPropertyTransientTakeDropConcatMatchesPersistent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 1500).Draw(rt, "n")
		m := rapid.IntRange(0, 1500).Draw(rt, "m")
		take := rapid.IntRange(0, n).Draw(rt, "take")
		drop := rapid.IntRange(0, take).Draw(rt, "drop")

		left := New[int]()
		for i := range n {
			left = left.PushBack(i)
		}
		right := New[int]()
		for i := range m {
			right = right.PushBack(1_000_000 + i)
		}

		persistent := left.Take(take).Drop(drop).Concat(right)

		ed := left.Transient()
		ed.TransientTake(take)
		ed.TransientDrop(drop)
		ed.TransientConcat(right)
		transient := ed.Persistent()

		require.Equal(rt, persistent.Size(), transient.Size())
		for i := 0; i < persistent.Size(); i++ {
			require.Equal(rt, persistent.Get(i), transient.Get(i), "index %d", i)
		}
		require.NoError(rt, transient.CheckInvariants())
	})
}

// TestScenarioBuildSliceConcatRoundTrip is a literal end-to-end scenario:
// build a sequence, update a stretch in its middle, slice it in two
// places, and re-concatenate, checking the whole pipeline reconstructs
// consistent data at every step.
func TestScenarioBuildSliceConcatRoundTrip(t *testing.T) {
	const n = 12_345
	tr := New[int]()
	for i := range n {
		tr = tr.PushBack(i)
	}
	require.NoError(t, tr.CheckInvariants())

	for i := 5000; i < 5100; i++ {
		tr = tr.Update(i, func(v int) int { return -v })
	}

	head := tr.Take(6000)
	tail := tr.Drop(6000)
	rebuilt := head.Concat(tail)

	require.Equal(t, n, rebuilt.Size())
	for i := range n {
		want := i
		if i >= 5000 && i < 5100 {
			want = -i
		}
		require.Equal(t, want, rebuilt.Get(i), "index %d", i)
	}
	require.NoError(t, rebuilt.CheckInvariants())
}
