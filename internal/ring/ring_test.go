// SPDX-License-Identifier: MIT
package ring

import (
	"sync"
	"testing"
)

func TestCapacityRounding(t *testing.T) {
	tests := []struct {
		requested int
		want      int
	}{
		{-10, 1},
		{0, 1},
		{1, 1},
		{4, 4},
		{5, 8},
		{1000, 1024},
	}
	for _, tt := range tests {
		b := New[int](tt.requested)
		if got := b.Capacity(); got != tt.want {
			t.Errorf("New(%d).Capacity() = %d, want %d", tt.requested, got, tt.want)
		}
	}
}

func TestFIFO(t *testing.T) {
	b := New[int](4)
	for _, v := range []int{1, 2, 3, 4} {
		if !b.TryPush(v) {
			t.Fatalf("TryPush(%d) failed unexpectedly", v)
		}
	}
	if b.TryPush(5) {
		t.Fatal("TryPush should fail once full")
	}

	var out int
	for _, want := range []int{1, 2} {
		if !b.TryPop(&out) || out != want {
			t.Fatalf("TryPop = %d, %v; want %d, true", out, true, want)
		}
	}

	for _, v := range []int{10, 11} {
		if !b.TryPush(v) {
			t.Fatalf("TryPush(%d) failed unexpectedly", v)
		}
	}

	got := make([]int, 4)
	n := b.TryPopSlice(got)
	if n != 4 {
		t.Fatalf("TryPopSlice returned %d, want 4", n)
	}
	want := []int{3, 4, 10, 11}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("popped[%d] = %d, want %d", i, got[i], w)
		}
	}
}

func TestConservation(t *testing.T) {
	b := New[int](8)
	for i := 0; i < 5; i++ {
		b.TryPush(i)
	}
	if b.Size()+b.Available() != b.Capacity() {
		t.Errorf("size+available = %d, want capacity %d", b.Size()+b.Available(), b.Capacity())
	}
}

func TestFullness(t *testing.T) {
	b := New[int](4)
	for i := 0; i < 4; i++ {
		if !b.TryPush(i) {
			t.Fatalf("TryPush(%d) should have succeeded", i)
		}
	}
	if b.Size() != b.Capacity() {
		t.Fatalf("expected buffer full")
	}
	if b.TryPush(99) {
		t.Error("TryPush should fail when full")
	}
}

func TestEmptiness(t *testing.T) {
	b := New[int](4)
	var out int
	if b.TryPop(&out) {
		t.Error("TryPop should fail on empty buffer")
	}
	b.TryPush(1)
	if !b.TryPop(&out) {
		t.Error("TryPop should succeed after a push")
	}
	if b.TryPop(&out) {
		t.Error("TryPop should fail once drained again")
	}
}

func TestPeekDiscardEquivalence(t *testing.T) {
	a := New[int](8)
	b := New[int](8)
	for i := 0; i < 6; i++ {
		a.TryPush(i)
		b.TryPush(i)
	}

	peeked := make([]int, 4)
	n := a.Peek(peeked)
	if n != 4 {
		t.Fatalf("Peek returned %d, want 4", n)
	}
	discarded := a.Discard(4)
	if discarded != 4 {
		t.Fatalf("Discard returned %d, want 4", discarded)
	}

	popped := make([]int, 4)
	m := b.TryPopSlice(popped)
	if m != 4 {
		t.Fatalf("TryPopSlice returned %d, want 4", m)
	}

	for i := range peeked {
		if peeked[i] != popped[i] {
			t.Errorf("peeked[%d]=%d != popped[%d]=%d", i, peeked[i], i, popped[i])
		}
	}
	if a.Size() != b.Size() {
		t.Errorf("post-op sizes differ: %d vs %d", a.Size(), b.Size())
	}
}

func TestOverwrite(t *testing.T) {
	b := New[int](4)
	for i := 0; i < 4; i++ {
		b.TryPush(i)
	}
	for _, v := range []int{100, 101, 102} {
		b.PushOverwrite(v)
	}

	got := make([]int, 4)
	n := b.TryPopSlice(got)
	if n != 4 {
		t.Fatalf("TryPopSlice returned %d, want 4", n)
	}
	want := []int{3, 100, 101, 102}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("got[%d] = %d, want %d", i, got[i], w)
		}
	}
}

func TestConcurrentFIFOStress(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	const total = 200_000
	b := New[int](256)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		i := 0
		for i < total {
			if b.TryPush(i) {
				i++
			}
		}
	}()

	results := make([]int, 0, total)
	go func() {
		defer wg.Done()
		var v int
		for len(results) < total {
			if b.TryPop(&v) {
				results = append(results, v)
			}
		}
	}()

	wg.Wait()

	for i, v := range results {
		if v != i {
			t.Fatalf("out-of-order or dropped item at index %d: got %d", i, v)
		}
	}
}

func TestZeroAllocHotPath(t *testing.T) {
	b := New[float32](1024)
	values := make([]float32, 256)
	out := make([]float32, 256)

	b.TryPushSlice(values)
	b.TryPopSlice(out)

	allocs := testing.AllocsPerRun(100, func() {
		b.TryPushSlice(values)
		b.Peek(out)
		b.Discard(len(out))
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations in ring buffer hot path, got %.1f", allocs)
	}
}
