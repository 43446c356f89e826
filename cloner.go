// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package rrb

// Cloner is an interface that enables deep cloning of values of type V.
// If a value implements Cloner[V], Tree and Editor methods that copy a
// value into a freshly allocated node (Update, PushBack, and the COW
// paths of Take/Drop/Concat) use its Clone method instead of a plain
// assignment.
type Cloner[V any] interface {
	Clone() V
}

// cloneVal returns a deep clone of val via its Clone method when val
// implements Cloner[V]; otherwise val is returned unchanged.
func cloneVal[V any](val V) V {
	c, ok := any(val).(Cloner[V])
	if !ok {
		return val
	}
	return c.Clone()
}

// cloneValuesInto maps cloneVal over src, appending the results onto dst.
// Every copy-on-write path that duplicates values already stored in a
// node (as opposed to a freshly pushed value supplied by the caller)
// routes through this so a Cloner[V] implementation sees every split.
func cloneValuesInto[V any](dst, src []V) []V {
	for _, v := range src {
		dst = append(dst, cloneVal(v))
	}
	return dst
}

// cloneValues is cloneValuesInto against a fresh backing slice.
func cloneValues[V any](src []V) []V {
	return cloneValuesInto(make([]V, 0, len(src)), src)
}
