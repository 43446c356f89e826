// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package rrb

import "github.com/relaxedradix/rrb/internal/fault"

// NewFaulty returns an empty Tree whose node pool consults inj before
// every node it hands out (copy-on-write clones and slice results);
// nodes built directly by newLeaf, newRegular and newRelaxed do not go
// through the pool and never consult inj. When inj trips, the mutating method in
// progress panics with errAllocFailed, which TryPushBack, TryUpdate and
// friends below recover into a plain error instead of letting it escape.
// It exists to let tests exercise recovery under allocation failure
// without threading a fault hook through every constructor.
func NewFaulty[V any](inj *fault.Injector) *Tree[V] {
	p := newNodePool[V]()
	if inj != nil {
		p.fail = inj.Trip
	}
	return &Tree[V]{pool: p}
}

// TryPushBack behaves like PushBack but recovers an allocation failure
// from a fault-injecting pool into a returned error instead of a panic.
func (t *Tree[V]) TryPushBack(v V) (result *Tree[V], err error) {
	defer recoverAlloc(&err)
	return t.PushBack(v), nil
}

// TryUpdate behaves like Update but recovers an allocation failure from
// a fault-injecting pool into a returned error instead of a panic.
func (t *Tree[V]) TryUpdate(idx int, fn func(V) V) (result *Tree[V], err error) {
	defer recoverAlloc(&err)
	return t.Update(idx, fn), nil
}

// TryConcat behaves like Concat but recovers an allocation failure from
// a fault-injecting pool into a returned error instead of a panic.
func (t *Tree[V]) TryConcat(other *Tree[V]) (result *Tree[V], err error) {
	defer recoverAlloc(&err)
	return t.Concat(other), nil
}
