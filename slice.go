// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package rrb

import "github.com/relaxedradix/rrb/internal/memory"

// Take returns a new Tree holding the first n elements. It panics if n
// is out of [0, Size()].
func (t *Tree[V]) Take(n int) *Tree[V] {
	outOfRangeInclusive(n, t.size)
	switch {
	case n == t.size:
		return t.retain()
	case n == 0:
		return &Tree[V]{pool: t.pool}
	}
	off := t.tailOffset()
	if n > off {
		newTail := cloneValues(t.tail[:n-off])
		return &Tree[V]{size: n, shift: t.shift, root: t.root.inc(), tail: newTail, pool: t.pool}
	}
	newRoot, newShift, newTail := sliceRight(t.root, t.shift, n, t.pool)
	return &Tree[V]{size: n, shift: newShift, root: newRoot, tail: newTail, pool: t.pool}
}

// sliceRight keeps the first limit elements of the subtree rooted at n,
// returning the (possibly nil) new root/shift for the retained body and
// the trailing values that become the new tail, collapsing any wrapper
// level left with a single child.
func sliceRight[V any](n *node[V], shift uint, limit int, pool *nodePool[V]) (*node[V], uint, []V) {
	if shift == 0 {
		return nil, 0, cloneValues(n.values[:limit])
	}
	slot, residual := n.indexInNode(shift, limit-1)
	childRoot, childShift, tailVals := sliceRight(n.children[slot], shift-bits, residual+1, pool)
	if slot == 0 {
		return childRoot, childShift, tailVals
	}

	m := pool.get()
	m.kind = kindRelaxed
	m.children = append(m.children[:0], n.children[:slot]...)
	for _, c := range m.children {
		c.inc()
	}
	sizes := make([]int, slot)
	for i := range sizes {
		if n.kind == kindRelaxed {
			sizes[i] = n.sizes[i]
		} else {
			sizes[i] = (i + 1) << shift
		}
	}
	if childRoot != nil {
		// A child that collapsed a level comes back shorter than its
		// siblings; re-wrap it to this node's child height.
		for childShift+bits < shift {
			childRoot = newRelaxed([]*node[V]{childRoot}, []int{childRoot.count(childShift)}, nil, pool)
			childShift += bits
		}
		m.children = append(m.children, childRoot)
		sizes = append(sizes, sizes[len(sizes)-1]+childRoot.count(childShift))
	}
	m.sizes = sizes
	m.refs = memory.New(policyOf(pool), 1)
	return m, shift, tailVals
}

// sliceRightMut is Take's transient twin: it keeps the first limit
// elements of the subtree rooted at n, mutating in place any node owner
// already exclusively holds instead of cloning it. Unlike sliceRight it
// must release, itself, every child it discards. The collapsing case
// returns a rescued descendant of n upward without n itself surviving;
// when n is mutable it releases its discarded children and then drops
// its own child list, so the parent's dec of n (the parent releases a
// child whose returned pointer changed) does not reach the rescued
// descendant or the already released children a second time.
func sliceRightMut[V any](n *node[V], shift uint, limit int, pool *nodePool[V], owner *token) (*node[V], uint, []V) {
	if shift == 0 {
		return nil, 0, cloneValues(n.values[:limit])
	}
	slot, residual := n.indexInNode(shift, limit-1)
	childRoot, childShift, tailVals := sliceRightMut(n.children[slot], shift-bits, residual+1, pool, owner)

	mutate := n.canMutate(owner)

	if slot == 0 {
		if mutate {
			if childRoot != n.children[0] {
				n.children[0].dec(pool)
			}
			for _, c := range n.children[1:] {
				c.dec(pool)
			}
			n.children = nil
		}
		return childRoot, childShift, tailVals
	}

	var m *node[V]
	if mutate {
		for _, c := range n.children[slot+1:] {
			c.dec(pool)
		}
		if childRoot != n.children[slot] {
			n.children[slot].dec(pool)
		}
		m = n
	} else {
		m = n.cloneInner(pool, owner)
		m.children[slot].dec(pool) // cloneInner's inc is undone; childRoot replaces it below
	}
	m.children = m.children[:slot]

	sizes := make([]int, slot)
	for i := range sizes {
		if n.kind == kindRelaxed {
			sizes[i] = n.sizes[i]
		} else {
			sizes[i] = (i + 1) << shift
		}
	}
	if childRoot != nil {
		// Re-wrap a child that collapsed a level, as in sliceRight.
		for childShift+bits < shift {
			childRoot = newRelaxed([]*node[V]{childRoot}, []int{childRoot.count(childShift)}, owner, pool)
			childShift += bits
		}
		m.children = append(m.children, childRoot)
		base := 0
		if len(sizes) > 0 {
			base = sizes[len(sizes)-1]
		}
		sizes = append(sizes, base+childRoot.count(childShift))
	}
	m.kind = kindRelaxed
	m.sizes = sizes
	m.owner = owner
	return m, shift, tailVals
}

// Drop returns a new Tree with the first n elements removed. It panics
// if n is out of [0, Size()].
func (t *Tree[V]) Drop(n int) *Tree[V] {
	outOfRangeInclusive(n, t.size)
	switch {
	case n == 0:
		return t.retain()
	case n == t.size:
		return &Tree[V]{pool: t.pool}
	}
	off := t.tailOffset()
	if n >= off {
		newTail := cloneValues(t.tail[n-off:])
		return &Tree[V]{size: t.size - n, tail: newTail, pool: t.pool}
	}
	newRoot, newShift := sliceLeft(t.root, t.shift, n, t.pool)
	return &Tree[V]{
		size:  t.size - n,
		shift: newShift,
		root:  newRoot,
		tail:  cloneValues(t.tail),
		pool:  t.pool,
	}
}

// sliceLeft drops the first n elements of the subtree rooted at n (sic,
// "drop" count), returning the new root/shift, collapsing any wrapper
// level left with a single child.
func sliceLeft[V any](n *node[V], shift uint, drop int, pool *nodePool[V]) (*node[V], uint) {
	if shift == 0 {
		return newLeaf(cloneValues(n.values[drop:]), nil, pool), 0
	}
	slot, residual := n.indexInNode(shift, drop)
	childRoot, childShift := sliceLeft(n.children[slot], shift-bits, residual, pool)
	rest := n.children[slot+1:]
	if len(rest) == 0 {
		return childRoot, childShift
	}
	// A child that collapsed a level comes back shorter than the kept
	// siblings in rest; re-wrap it to this node's child height.
	for childShift+bits < shift {
		childRoot = newRelaxed([]*node[V]{childRoot}, []int{childRoot.count(childShift)}, nil, pool)
		childShift += bits
	}

	m := pool.get()
	m.kind = kindRelaxed
	m.children = append(m.children[:0], childRoot)
	for _, c := range rest {
		c.inc()
		m.children = append(m.children, c)
	}
	sizes := make([]int, len(m.children))
	sizes[0] = childRoot.count(childShift)
	for i := 1; i < len(sizes); i++ {
		sizes[i] = sizes[i-1] + m.children[i].count(shift-bits)
	}
	m.sizes = sizes
	m.refs = memory.New(policyOf(pool), 1)
	return m, shift
}

// sliceLeftMut is Drop's transient twin, symmetric to sliceRightMut:
// nodes owner already exclusively holds are mutated in place, and every
// discarded child is released by the level that discards it rather than
// by a generic caller-side rule.
func sliceLeftMut[V any](n *node[V], shift uint, drop int, pool *nodePool[V], owner *token) (*node[V], uint) {
	if shift == 0 {
		if n.canMutate(owner) {
			n.values = append(n.values[:0], n.values[drop:]...)
			return n, 0
		}
		return newLeaf(cloneValues(n.values[drop:]), owner, pool), 0
	}
	slot, residual := n.indexInNode(shift, drop)
	childRoot, childShift := sliceLeftMut(n.children[slot], shift-bits, residual, pool, owner)

	mutate := n.canMutate(owner)
	rest := n.children[slot+1:]

	if len(rest) == 0 {
		if mutate {
			if childRoot != n.children[slot] {
				n.children[slot].dec(pool)
			}
			for _, c := range n.children[:slot] {
				c.dec(pool)
			}
			n.children = nil
		}
		return childRoot, childShift
	}
	// Re-wrap a child that collapsed a level, as in sliceLeft.
	for childShift+bits < shift {
		childRoot = newRelaxed([]*node[V]{childRoot}, []int{childRoot.count(childShift)}, owner, pool)
		childShift += bits
	}

	var m *node[V]
	if mutate {
		for _, c := range n.children[:slot] {
			c.dec(pool)
		}
		if childRoot != n.children[slot] {
			n.children[slot].dec(pool)
		}
		m = n
		m.children = append(m.children[:0], childRoot)
		m.children = append(m.children, rest...)
	} else {
		m = pool.get()
		m.refs = memory.New(policyOf(pool), 1)
		m.children = append(m.children[:0], childRoot)
		for _, c := range rest {
			c.inc()
			m.children = append(m.children, c)
		}
	}

	sizes := make([]int, len(m.children))
	sizes[0] = childRoot.count(childShift)
	for i := 1; i < len(sizes); i++ {
		sizes[i] = sizes[i-1] + m.children[i].count(shift-bits)
	}
	m.kind = kindRelaxed
	m.sizes = sizes
	m.owner = owner
	return m, shift
}
