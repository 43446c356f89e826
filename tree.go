// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package rrb implements a persistent, immutable indexed sequence backed
// by a Relaxed Radix-Balanced Tree (RRB-Tree): Get/Update are O(log n),
// PushBack is amortized O(1) via a small tail buffer, and Take, Drop and
// Concat are O(log n) thanks to structural sharing between the original
// and result values. Every operation returns a new Tree; the receiver is
// left untouched and remains valid to use.
//
// For bulk construction, Transient returns an Editor that mutates nodes
// in place under a private edit token until Persistent freezes it back
// into a sharable Tree.
package rrb

import "github.com/relaxedradix/rrb/internal/memory"

// Tree is a persistent sequence of values of type V.
//
// The zero Tree is not valid; use New to obtain an empty one.
type Tree[V any] struct {
	size  int
	shift uint // 0 when root is nil or a leaf
	root  *node[V]
	tail  []V
	pool  *nodePool[V]
}

// New returns an empty Tree[V] using the default, non-atomic refcount
// discipline.
func New[V any]() *Tree[V] {
	return &Tree[V]{pool: newNodePool[V]()}
}

// NewWithPolicy returns an empty Tree[V] whose node refcounts are
// maintained under p. Use memory.Shared for a Tree that will be frozen
// and handed to multiple goroutines as a read-only snapshot; plain
// Go-level persistence across one goroutine needs nothing stronger than
// memory.Default, the policy New builds with.
func NewWithPolicy[V any](p memory.Policy) *Tree[V] {
	return &Tree[V]{pool: newNodePoolWithPolicy[V](p)}
}

// Size returns the number of elements in t.
func (t *Tree[V]) Size() int { return t.size }

func (t *Tree[V]) tailOffset() int { return t.size - len(t.tail) }

// retain returns a shallow copy of t that shares its root and tail,
// bumping the root's refcount since it is now reachable from two Trees.
func (t *Tree[V]) retain() *Tree[V] {
	return &Tree[V]{
		size:  t.size,
		shift: t.shift,
		root:  t.root.inc(),
		tail:  t.tail,
		pool:  t.pool,
	}
}

// Get returns the value at idx. It panics if idx is out of [0, Size()).
func (t *Tree[V]) Get(idx int) V {
	outOfRange(idx, t.size)
	off := t.tailOffset()
	if idx >= off {
		return t.tail[idx-off]
	}
	n, shift := t.root, t.shift
	for shift > 0 {
		slot, residual := n.indexInNode(shift, idx)
		n = n.children[slot]
		idx = residual
		shift -= bits
	}
	return n.values[idx]
}

// Update returns a new Tree with the value at idx replaced by fn(old).
// Only the spine from the root to idx is copied; every untouched subtree
// is shared with the receiver. It panics if idx is out of range.
func (t *Tree[V]) Update(idx int, fn func(V) V) *Tree[V] {
	outOfRange(idx, t.size)
	off := t.tailOffset()
	if idx >= off {
		newTail := cloneValues(t.tail)
		newTail[idx-off] = fn(newTail[idx-off])
		return &Tree[V]{size: t.size, shift: t.shift, root: t.root.inc(), tail: newTail, pool: t.pool}
	}
	newRoot := updateSpine(t.root, t.shift, idx, fn, t.pool)
	return &Tree[V]{size: t.size, shift: t.shift, root: newRoot, tail: t.tail, pool: t.pool}
}

func updateSpine[V any](n *node[V], shift uint, idx int, fn func(V) V, pool *nodePool[V]) *node[V] {
	if shift == 0 {
		m := n.cloneLeaf(pool, nil)
		m.values[idx] = fn(m.values[idx])
		return m
	}
	slot, residual := n.indexInNode(shift, idx)
	m := n.cloneInner(pool, nil)
	old := m.children[slot]
	m.children[slot] = updateSpine(old, shift-bits, residual, fn, pool)
	old.dec(pool)
	return m
}

// PushBack returns a new Tree with v appended. Amortized O(1): the value
// lands in a small tail buffer that is only folded into the tree body
// once it fills up.
func (t *Tree[V]) PushBack(v V) *Tree[V] {
	if len(t.tail) < branch {
		newTail := append(cloneValues(t.tail), v)
		return &Tree[V]{size: t.size + 1, shift: t.shift, root: t.root.inc(), tail: newTail, pool: t.pool}
	}
	newRoot, newShift := pushTail(t.root, t.shift, t.tail, t.pool)
	return &Tree[V]{size: t.size + 1, shift: newShift, root: newRoot, tail: []V{v}, pool: t.pool}
}

// pushTail folds a full tail buffer into the tree body, returning the
// new root and its shift. If root has no room left at shift (every
// slot taken, whether or not the last slot's subtree is itself packed
// tight), a new root one level taller is built with the old root and a
// freshly grown path as its two children, exactly as spec.md's "return
// null, build a higher root" push_tail fallback requires. A new root
// built over an old root that is not fully packed (a partial leaf, or a
// relaxed node) is relaxed, with an explicit size table.
func pushTail[V any](root *node[V], shift uint, tail []V, pool *nodePool[V]) (*node[V], uint) {
	leaf := newLeaf(cloneValues(tail), nil, pool)
	if root == nil {
		return leaf, 0
	}
	if shift == 0 {
		if len(root.values) < branch {
			return newRelaxed([]*node[V]{root.inc(), leaf}, []int{len(root.values), len(root.values) + len(leaf.values)}, nil, pool), bits
		}
		return newRegular([]*node[V]{root.inc(), leaf}, nil, pool), bits
	}
	if !root.isFull(shift) {
		if m, ok := pushTailInto(root, shift, leaf, pool); ok {
			return m, shift
		}
	}
	path := newPath(leaf, shift, pool)
	if !root.isFull(shift) {
		sz := root.count(shift)
		return newRelaxed([]*node[V]{root.inc(), path}, []int{sz, sz + len(leaf.values)}, nil, pool), shift + bits
	}
	return newRegular([]*node[V]{root.inc(), path}, nil, pool), shift + bits
}

// newPath builds a left-leaning chain of single-child regular nodes from
// shift down to the leaf, used when push_tail must start a brand new
// branch because every existing one is already full.
func newPath[V any](leaf *node[V], shift uint, pool *nodePool[V]) *node[V] {
	if shift == bits {
		return newRegular([]*node[V]{leaf}, nil, pool)
	}
	return newRegular([]*node[V]{newPath(leaf, shift-bits, pool)}, nil, pool)
}

// pushTailInto tries to fold leaf into n's subtree without growing n's
// own height. It reports ok=false when n has no spare child slot at
// this level (regular or relaxed, full or not), so the caller can fall
// back to wrapping in a new sibling path one level up instead of
// overrunning n's branch-wide slot bound.
func pushTailInto[V any](n *node[V], shift uint, leaf *node[V], pool *nodePool[V]) (*node[V], bool) {
	if shift == bits {
		if len(n.children) == branch {
			return nil, false
		}
		m := n.cloneInner(pool, nil)
		m.children = append(m.children, leaf)
		if m.kind == kindRelaxed {
			last := m.sizes[len(m.sizes)-1]
			m.sizes = append(m.sizes, last+len(leaf.values))
		}
		return m, true
	}
	last := len(n.children) - 1
	if !n.children[last].isFull(shift - bits) {
		if newLast, ok := pushTailInto(n.children[last], shift-bits, leaf, pool); ok {
			m := n.cloneInner(pool, nil)
			old := m.children[last]
			m.children[last] = newLast
			old.dec(pool)
			if m.kind == kindRelaxed {
				m.sizes[len(m.sizes)-1] += len(leaf.values)
			}
			return m, true
		}
	}
	if len(n.children) == branch {
		return nil, false
	}
	m := n.cloneInner(pool, nil)
	m.children = append(m.children, newPath(leaf, shift-bits, pool))
	if m.kind == kindRelaxed {
		lastSize := m.sizes[len(m.sizes)-1]
		m.sizes = append(m.sizes, lastSize+len(leaf.values))
	}
	return m, true
}

// ChunkAt returns the backing leaf slice that holds idx, along with the
// absolute index range [first, last) it covers. Callers that want to
// scan large ranges can walk chunk by chunk instead of calling Get once
// per index.
func (t *Tree[V]) ChunkAt(idx int) (chunk []V, first, last int) {
	outOfRange(idx, t.size)
	off := t.tailOffset()
	if idx >= off {
		return t.tail, off, t.size
	}
	n, shift := t.root, t.shift
	base := 0
	for shift > 0 {
		slot, residual := n.indexInNode(shift, idx)
		base += idx - residual
		n = n.children[slot]
		idx = residual
		shift -= bits
	}
	return n.values, base, base + len(n.values)
}
