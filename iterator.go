// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package rrb

// ForEachChunk walks t's backing leaf chunks in order, calling fn once
// per chunk with the chunk's values and the absolute index of its first
// element. It stops early if fn returns false.
func (t *Tree[V]) ForEachChunk(fn func(first int, chunk []V) bool) {
	if t.root != nil {
		if !forEachChunk(t.root, t.shift, 0, fn) {
			return
		}
	}
	if len(t.tail) > 0 {
		fn(t.tailOffset(), t.tail)
	}
}

func forEachChunk[V any](n *node[V], shift uint, base int, fn func(int, []V) bool) bool {
	if shift == 0 {
		return fn(base, n.values)
	}
	off := base
	for _, c := range n.children {
		sz := c.count(shift - bits)
		if !forEachChunk(c, shift-bits, off, fn) {
			return false
		}
		off += sz
	}
	return true
}

// All returns a Go 1.23 range-over-func iterator over (index, value)
// pairs in order, for use as `for i, v := range t.All() { ... }`.
func (t *Tree[V]) All() func(yield func(int, V) bool) {
	return func(yield func(int, V) bool) {
		t.ForEachChunk(func(first int, chunk []V) bool {
			for i, v := range chunk {
				if !yield(first+i, v) {
					return false
				}
			}
			return true
		})
	}
}
