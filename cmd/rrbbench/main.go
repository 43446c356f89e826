// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/relaxedradix/rrb"
)

var prng = rand.New(rand.NewPCG(42, 42))

func main() {
	t := rrb.New[int]()

	start := time.Now()
	for i := range 1_000_000 {
		t = t.PushBack(i)
	}
	fmt.Printf("push_back x 1e6: %v (size=%d)\n", time.Since(start), t.Size())

	start = time.Now()
	for range 200_000 {
		idx := prng.IntN(t.Size())
		_ = t.Get(idx)
	}
	fmt.Printf("get x 2e5: %v\n", time.Since(start))

	start = time.Now()
	for range 50_000 {
		idx := prng.IntN(t.Size())
		t = t.Update(idx, func(v int) int { return v + 1 })
	}
	fmt.Printf("update x 5e4: %v\n", time.Since(start))

	start = time.Now()
	half := t.Take(t.Size() / 2)
	rest := t.Drop(t.Size() / 2)
	merged := half.Concat(rest)
	fmt.Printf("take+drop+concat: %v (merged size=%d)\n", time.Since(start), merged.Size())

	if err := merged.CheckInvariants(); err != nil {
		fmt.Println("invariant check failed:", err)
	}
}
