// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package rrb provides a persistent, immutable indexed sequence backed
// by a Relaxed Radix-Balanced Tree (RRB-Tree).
//
// A Tree[V] supports Get and Update in O(log n), amortized O(1)
// PushBack, and O(log n) Take, Drop and Concat, all via structural
// sharing: every operation returns a new Tree while leaving its receiver
// untouched and still usable. For workloads that build up a Tree through
// many consecutive appends or updates, Transient returns an Editor that
// mutates nodes in place under a private edit token, converting back to
// a sharable Tree with Persistent in O(1).
package rrb
