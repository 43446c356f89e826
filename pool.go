// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package rrb

import (
	"sync"
	"sync/atomic"

	"github.com/relaxedradix/rrb/internal/memory"
)

// nodePool is a type-safe wrapper around sync.Pool, specialized for
// managing *node[V] instances. It efficiently reuses node memory and
// tracks statistics on allocations and active use for debugging and
// performance tuning, adapted directly from bart's pool[V].
type nodePool[V any] struct {
	sync.Pool

	policy memory.Policy // refcount discipline handed to every node born from this pool

	totalAllocated atomic.Int64 // total number of *node[V] ever allocated
	currentLive    atomic.Int64 // number of nodes currently checked out

	// fail, when non-nil, is consulted before every allocation and lets
	// tests exercise the allocator-failure paths required of a Tree.
	fail func() bool
}

// newNodePool creates and returns a new pool for *node[V] instances,
// using the default (non-atomic) refcount policy.
func newNodePool[V any]() *nodePool[V] {
	return newNodePoolWithPolicy[V](memory.Default)
}

// newNodePoolWithPolicy creates a new pool whose nodes maintain their
// refcounts under policy p.
func newNodePoolWithPolicy[V any](p memory.Policy) *nodePool[V] {
	pool := &nodePool[V]{policy: p}
	pool.New = func() any {
		pool.totalAllocated.Add(1)
		return new(node[V])
	}
	return pool
}

// get retrieves a *node[V] from the pool, or creates a new one if needed.
// If p is nil, a new node is returned without tracking. If p carries a
// fault injector and it trips, get panics with errAllocFailed so callers
// higher up the stack (Update's value-fn boundary aside) can recover it
// into a plain error.
func (p *nodePool[V]) get() *node[V] {
	if p == nil {
		return new(node[V])
	}
	if p.fail != nil && p.fail() {
		panic(errAllocFailed)
	}
	p.currentLive.Add(1)
	return p.Pool.Get().(*node[V])
}

// put returns a *node[V] back to the pool for potential reuse. The node
// is reset before storage; if p is nil the node is simply discarded.
func (p *nodePool[V]) put(n *node[V]) {
	if p == nil {
		return
	}
	p.currentLive.Add(-1)
	n.reset()
	p.Pool.Put(n)
}

// stats returns the number of currently live (checked-out) nodes and the
// total number of *node[V] objects ever allocated by this pool.
func (p *nodePool[V]) stats() (live, total int64) {
	if p == nil {
		return 0, 0
	}
	return p.currentLive.Load(), p.totalAllocated.Load()
}
