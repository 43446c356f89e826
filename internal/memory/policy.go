// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package memory provides the allocator/refcount collaborator a Tree or
// Editor is built against: a Policy selects whether node refcounts are
// maintained with atomic operations (safe when a frozen value is handed
// to multiple goroutines as a read-only snapshot) or plain arithmetic
// (cheaper, for the common single-goroutine-owns-this-value case).
package memory

import "sync/atomic"

// Policy selects the refcount discipline a node pool uses. The zero
// Policy is Default: plain, non-atomic refcounts.
type Policy struct {
	// Atomic selects atomic.Int32-backed refcounts, required when values
	// built under this policy are read concurrently from more than one
	// goroutine. Plain (non-atomic) refcounts are faster but unsafe to
	// share across goroutines without external synchronization.
	Atomic bool
}

// Default is the discipline used by New: plain refcounts, appropriate
// when a Tree and the Editors built from it stay on one goroutine.
var Default = Policy{Atomic: false}

// Shared is the discipline for Trees that will be frozen and handed to
// multiple goroutines as persistent, read-only snapshots; concurrent
// Get/ForEachChunk calls from different goroutines still only read, but
// retain/dec calls racing from Clone-like call sites on other goroutines
// need atomic refcounts to stay correct.
var Shared = Policy{Atomic: true}

// Refcount is a node's reference count under a selected Policy. Its zero
// value is a plain, zero-valued counter; use New for a counter seeded at
// a starting count (every fresh node starts at 1).
type Refcount struct {
	atomic bool
	n      atomic.Int32
}

// New returns a Refcount under policy p, initialized to count.
func New(p Policy, count int32) Refcount {
	r := Refcount{atomic: p.Atomic}
	r.n.Store(count)
	return r
}

// Inc increments the count by one.
func (r *Refcount) Inc() {
	if r.atomic {
		r.n.Add(1)
		return
	}
	r.n.Store(r.n.Load() + 1)
}

// Dec decrements the count by one and returns the result.
func (r *Refcount) Dec() int32 {
	if r.atomic {
		return r.n.Add(-1)
	}
	v := r.n.Load() - 1
	r.n.Store(v)
	return v
}

// Load returns the current count.
func (r *Refcount) Load() int32 { return r.n.Load() }

// Set overwrites the count, e.g. when a pooled node is reset or reused.
func (r *Refcount) Set(v int32) { r.n.Store(v) }
