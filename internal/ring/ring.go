// SPDX-License-Identifier: MIT
/*
Package ring implements a lock-free single-producer, single-consumer ring
buffer used to bridge a real-time audio callback (the producer) and the
visualization loop that drains it (the consumer).

Thread Safety:
  - writePos is written only by the producer, readPos only by the consumer.
  - Producer path: relaxed load of its own writePos, acquire load of
    readPos, then a release store of writePos after the data is written.
  - Consumer path: relaxed load of its own readPos, acquire load of
    writePos, then a release store of readPos after the data is read.
  - Size/Available/Capacity are safe from any goroutine; they observe a
    value that was momentarily true.

The counters are 64-bit and monotonically increasing. Occupancy is always
writePos-readPos using unsigned wraparound arithmetic, so the buffer is
correct across a counter wrap (impossible to reach in practice at any
realistic sample rate within a process lifetime, but the arithmetic does
not depend on that).
*/
package ring

import (
	"sync/atomic"

	"spectra/pkg/bitint"
)

// cacheLinePad separates hot counters onto their own cache lines to avoid
// false sharing between the producer and consumer.
type cacheLinePad [56]byte

// Buffer is a fixed-capacity SPSC queue of trivially copyable values.
type Buffer[T any] struct {
	writePos atomic.Uint64
	_        cacheLinePad
	readPos  atomic.Uint64
	_        cacheLinePad

	storage []T
	mask    uint64
}

// New creates a Buffer whose capacity is the smallest power of two >=
// max(minCapacity, 1).
func New[T any](minCapacity int) *Buffer[T] {
	capacity := bitint.NextPowerOfTwo(minCapacity)
	return &Buffer[T]{
		storage: make([]T, capacity),
		mask:    uint64(capacity - 1),
	}
}

// Capacity returns the fixed storage capacity.
func (b *Buffer[T]) Capacity() int {
	return len(b.storage)
}

// Size returns the number of items currently queued. Safe from any goroutine.
func (b *Buffer[T]) Size() int {
	w := b.writePos.Load()
	r := b.readPos.Load()
	return int(w - r)
}

// Available returns the free capacity. Safe from any goroutine.
func (b *Buffer[T]) Available() int {
	return b.Capacity() - b.Size()
}

// TryPush writes a single value. Producer-only. Returns false if full.
func (b *Buffer[T]) TryPush(v T) bool {
	w := b.writePos.Load()
	r := b.readPos.Load()
	if w-r == uint64(len(b.storage)) {
		return false
	}
	b.storage[w&b.mask] = v
	b.writePos.Store(w + 1)
	return true
}

// TryPushSlice writes the prefix of values that fits and returns the count
// written. Producer-only. Never blocks, never writes more than free space.
func (b *Buffer[T]) TryPushSlice(values []T) int {
	w := b.writePos.Load()
	r := b.readPos.Load()

	free := uint64(len(b.storage)) - (w - r)
	n := uint64(len(values))
	if n > free {
		n = free
	}
	if n == 0 {
		return 0
	}

	b.copyIn(w, values[:n])
	b.writePos.Store(w + n)
	return int(n)
}

// PushOverwrite always writes a value. If the buffer was already full, the
// oldest element is discarded by advancing readPos. Producer-only: it races
// with a concurrent consumer and must not be called while a consumer may be
// reading — the same discipline TryPushSlice does not require, since that
// path never touches readPos.
func (b *Buffer[T]) PushOverwrite(v T) {
	w := b.writePos.Load()
	r := b.readPos.Load()
	if w-r == uint64(len(b.storage)) {
		b.readPos.Store(r + 1)
	}
	b.storage[w&b.mask] = v
	b.writePos.Store(w + 1)
}

// TryPop reads a single value into out. Consumer-only. Returns false if empty.
func (b *Buffer[T]) TryPop(out *T) bool {
	r := b.readPos.Load()
	w := b.writePos.Load()
	if w-r == 0 {
		return false
	}
	*out = b.storage[r&b.mask]
	b.readPos.Store(r + 1)
	return true
}

// TryPopSlice reads the prefix of available values into out and returns the
// count read. Consumer-only.
func (b *Buffer[T]) TryPopSlice(out []T) int {
	n := b.Peek(out)
	if n > 0 {
		b.readPos.Store(b.readPos.Load() + uint64(n))
	}
	return n
}

// Peek copies up to len(out) available values without consuming them.
// Consumer-only.
func (b *Buffer[T]) Peek(out []T) int {
	r := b.readPos.Load()
	w := b.writePos.Load()

	available := w - r
	n := uint64(len(out))
	if n > available {
		n = available
	}
	if n == 0 {
		return 0
	}

	b.copyOut(r, out[:n])
	return int(n)
}

// Discard advances readPos by min(n, available) and returns the count
// discarded. Consumer-only.
func (b *Buffer[T]) Discard(n int) int {
	r := b.readPos.Load()
	w := b.writePos.Load()

	available := int(w - r)
	if n > available {
		n = available
	}
	if n <= 0 {
		return 0
	}

	b.readPos.Store(r + uint64(n))
	return n
}

// Clear discards all queued values. Consumer-only.
func (b *Buffer[T]) Clear() {
	w := b.writePos.Load()
	b.readPos.Store(w)
}

func (b *Buffer[T]) copyIn(writeFrom uint64, values []T) {
	pos := writeFrom & b.mask
	firstRun := uint64(len(b.storage)) - pos
	if firstRun >= uint64(len(values)) {
		copy(b.storage[pos:], values)
		return
	}
	copy(b.storage[pos:], values[:firstRun])
	copy(b.storage[:uint64(len(values))-firstRun], values[firstRun:])
}

func (b *Buffer[T]) copyOut(readFrom uint64, out []T) {
	pos := readFrom & b.mask
	firstRun := uint64(len(b.storage)) - pos
	if firstRun >= uint64(len(out)) {
		copy(out, b.storage[pos:])
		return
	}
	copy(out, b.storage[pos:])
	copy(out[firstRun:], b.storage[:uint64(len(out))-firstRun])
}
