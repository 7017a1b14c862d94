// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package ringbuf implements a fixed-capacity lossy ring buffer.
//
// This is not a queue with queue semantics; it only guarantees consistency
// of the length. A writer can lap a concurrent reader, which then simply
// observes the newer elements. It is meant to back sampling reservoirs.
package ringbuf

import "sync/atomic"

// Buffer is a lock-free circular buffer of capacity N. Once full, each
// push silently displaces the oldest element.
type Buffer[T any] struct {
	data []atomic.Pointer[T]
	tail atomic.Uint64
	size atomic.Uint64
}

// New returns a buffer with the given capacity. Capacity must be at
// least 2.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 2 {
		panic("ringbuf: capacity must be at least 2")
	}
	return &Buffer[T]{data: make([]atomic.Pointer[T], capacity)}
}

// Push stores v, displacing the oldest element when the buffer is full.
func (b *Buffer[T]) Push(v T) {
	n := uint64(len(b.data))
	w := b.tail.Add(1)
	b.data[(w-1)%n].Store(&v)

	if w > n {
		w = n
	}
	for {
		size := b.size.Load()
		if w <= size || size >= n {
			return
		}
		if b.size.CompareAndSwap(size, w) {
			return
		}
	}
}

// Len returns the number of resident elements, at most the capacity.
func (b *Buffer[T]) Len() int {
	return int(b.size.Load())
}

// Cap returns the buffer capacity.
func (b *Buffer[T]) Cap() int {
	return len(b.data)
}

// Snapshot copies the resident elements in logical oldest-to-newest order
// as of a single read of the buffer indices. Pushes racing with the copy
// may be observed out of order; the buffer samples, it does not queue.
func (b *Buffer[T]) Snapshot() []T {
	n := uint64(len(b.data))
	size := b.size.Load()
	if size > n {
		size = n
	}
	start := uint64(0)
	if size >= n {
		start = b.tail.Load() % n
	}
	out := make([]T, 0, size)
	for i := uint64(0); i < size; i++ {
		p := b.data[(start+i)%n].Load()
		if p == nil {
			continue
		}
		out = append(out, *p)
	}
	return out
}
