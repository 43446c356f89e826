// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package rrb

// Concat returns a new Tree containing the receiver's elements followed
// by other's. Both operands remain valid and unchanged. The receiver's
// tail is folded into its tree body so the two bodies can be merged at
// a common shift; other's tail is kept as-is and becomes the result's
// tail, preserving amortized O(1) future PushBacks. When other holds
// only a tail (no tree body), its values are instead appended one by
// one with PushBack, so the receiver's partial tail is never folded into
// the body.
func (t *Tree[V]) Concat(other *Tree[V]) *Tree[V] {
	if t.size == 0 {
		return other.retain()
	}
	if other.size == 0 {
		return t.retain()
	}
	if other.root == nil {
		r := t.retain()
		for _, v := range other.tail {
			r = r.PushBack(cloneVal(v))
		}
		return r
	}

	leftRoot, leftShift := t.root, t.shift
	leftBodySize := t.tailOffset()
	if len(t.tail) > 0 {
		leftRoot, leftShift = pushTail(leftRoot, leftShift, t.tail, t.pool)
		leftBodySize = t.size
	} else {
		leftRoot = leftRoot.inc()
	}

	mergedRoot, mergedShift := concatTrees(leftRoot, leftShift, leftBodySize, other.root, other.shift, other.tailOffset(), t.pool)

	return &Tree[V]{
		size:  t.size + other.size,
		shift: mergedShift,
		root:  mergedRoot,
		tail:  cloneValues(other.tail),
		pool:  t.pool,
	}
}

// packLeaves splits combined boundary leaf values into one or two fresh
// leaves of at most branch elements each, the base case of a concat
// merge. values is consumed as-is (the caller is responsible for
// cloning any values that are still reachable from an existing node).
func packLeaves[V any](values []V, owner *token, pool *nodePool[V]) ([]*node[V], []int) {
	if len(values) <= branch {
		return []*node[V]{newLeaf(values, owner, pool)}, []int{len(values)}
	}
	first := newLeaf(values[:branch:branch], owner, pool)
	second := newLeaf(values[branch:], owner, pool)
	return []*node[V]{first, second}, []int{branch, len(values) - branch}
}

// packChildren groups entries into destination relaxed nodes of at most
// branch children each, in order, without splitting an entry across two
// groups. This is the one deliberate departure from the reference
// shuffle pass, which can split a child's own contents to land exactly
// on a target count; not splitting costs at most one extra destination
// node per merge but keeps the same ceil(len(entries)/branch) bound and
// avoids ever having to reach back inside an already-built child.
func packChildren[V any](entries []*node[V], entrySizes []int, owner *token, pool *nodePool[V]) ([]*node[V], []int) {
	var outNodes []*node[V]
	var outSizes []int
	for start := 0; start < len(entries); start += branch {
		end := start + branch
		if end > len(entries) {
			end = len(entries)
		}
		group := append([]*node[V](nil), entries[start:end]...)
		cum := make([]int, len(group))
		total := 0
		for i, s := range entrySizes[start:end] {
			total += s
			cum[i] = total
		}
		outNodes = append(outNodes, newRelaxed(group, cum, owner, pool))
		outSizes = append(outSizes, total)
	}
	return outNodes, outSizes
}

// mergeBoundary is the recursive core of a concat merge: it combines
// left's rightmost path with right's leftmost path at shift, returning
// the 1 to 3 replacement nodes that sit at shift (never wrapped in a new
// parent; concatSameShift decides whether the caller needs an extra
// level). Grounded on the reference implementation's
// concat_merger/concat_rebalance_plan (operations.hpp): the two boundary
// children are merged one level down first, then the merge result is
// spliced between the untouched left and right siblings and repacked
// into as-full-as-possible destination nodes.
func mergeBoundary[V any](left, right *node[V], shift uint, owner *token, pool *nodePool[V]) ([]*node[V], []int) {
	if shift == 0 {
		combined := cloneValues(left.values)
		combined = cloneValuesInto(combined, right.values)
		return packLeaves(combined, owner, pool)
	}

	lastLeft := len(left.children) - 1
	centerNodes, centerSizes := mergeBoundary(left.children[lastLeft], right.children[0], shift-bits, owner, pool)

	leftSizes := left.childSizes(shift)
	rightSizes := right.childSizes(shift)

	leftRest := left.children[:lastLeft]
	rightRest := right.children[1:]
	for _, c := range leftRest {
		c.inc()
	}
	for _, c := range rightRest {
		c.inc()
	}

	entries := make([]*node[V], 0, len(leftRest)+len(centerNodes)+len(rightRest))
	sizes := make([]int, 0, cap(entries))
	entries = append(entries, leftRest...)
	sizes = append(sizes, leftSizes[:lastLeft]...)
	entries = append(entries, centerNodes...)
	sizes = append(sizes, centerSizes...)
	entries = append(entries, rightRest...)
	sizes = append(sizes, rightSizes[1:]...)

	return packChildren(entries, sizes, owner, pool)
}

// concatSameShift merges two same-shift, tail-less bodies, collapsing to
// the merge result directly when it fits in a single node and growing
// by exactly one level (never more, regardless of how many prior
// concats produced left or right) when it doesn't. This mirrors
// concat_center_pos's realize()/too_many() collapse-or-wrap decision and
// is what keeps repeated self-concats at O(log n) height instead of
// growing a level per call.
func concatSameShift[V any](left, right *node[V], shift uint, owner *token, pool *nodePool[V]) (*node[V], uint) {
	nodes, sizes := mergeBoundary(left, right, shift, owner, pool)
	if len(nodes) == 1 {
		return nodes[0], shift
	}
	cum := make([]int, len(sizes))
	total := 0
	for i, s := range sizes {
		total += s
		cum[i] = total
	}
	return newRelaxed(nodes, cum, owner, pool), shift + bits
}

// concatTrees merges two tail-less tree bodies into one. Shift
// mismatches (one body structurally taller than the other) are resolved
// by wrapping the shorter body in single-child relaxed nodes recording
// its true size, an isolated simplification versus the reference's
// shift-alignment-by-descent; once both sides sit at the same shift the
// real boundary merge and greedy repack (packChildren) in concatSameShift
// runs exactly as it would for a same-shift pair, so the common case (repeated
// self-concat) gets full rebalancing.
func concatTrees[V any](leftRoot *node[V], leftShift uint, leftSize int, rightRoot *node[V], rightShift uint, rightSize int, pool *nodePool[V]) (*node[V], uint) {
	if leftRoot == nil {
		return rightRoot.inc(), rightShift
	}
	if rightRoot == nil {
		return leftRoot, leftShift
	}

	rightRoot.inc()
	for leftShift < rightShift {
		leftRoot = newRelaxed([]*node[V]{leftRoot}, []int{leftSize}, nil, pool)
		leftShift += bits
	}
	for rightShift < leftShift {
		rightRoot = newRelaxed([]*node[V]{rightRoot}, []int{rightSize}, nil, pool)
		rightShift += bits
	}

	return concatSameShift(leftRoot, rightRoot, leftShift, nil, pool)
}
