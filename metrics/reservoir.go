// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/open-instrumentation/gometrics/internal/ringbuf"
)

// Reservoir is a bounded-memory sampler of an update stream suitable for
// approximate quantile queries.
type Reservoir interface {
	// Update records one value.
	Update(v Value)

	// ReservoirSnapshot returns a sorted sample of the resident values.
	ReservoirSnapshot() *ReservoirSnapshot

	// TypeName identifies the reservoir shape; it participates in the
	// type name of the histogram or timer that owns the reservoir.
	TypeName() string
}

// reservoirSeed folds a high-resolution clock reading down to a non-zero
// 32-bit seed.
func reservoirSeed() int64 {
	seed := time.Now().UnixNano()
	seed = (seed & 0xffffffff) ^ (seed >> 32)
	if seed == 0 {
		seed = 1
	}
	return seed
}

// UniformReservoir keeps a random sample of the stream: the first K
// updates fill the sample, and each later update draws an index in [0, K]
// and replaces that slot when the index is below K. The update count used
// for the draw saturates at K, so every later update lands with
// probability K/(K+1) rather than the classical K/n.
type UniformReservoir struct {
	mu    sync.Mutex
	rng   *rand.Rand
	elems []Value
	count int64
}

// NewUniformReservoir returns a uniform reservoir holding up to size
// samples.
func NewUniformReservoir(size int) *UniformReservoir {
	if size < 1 {
		panic("metrics: uniform reservoir size must be positive")
	}
	return &UniformReservoir{
		rng:   rand.New(rand.NewSource(reservoirSeed())),
		elems: make([]Value, 0, size),
	}
}

// Update records v, possibly displacing a random resident sample.
func (r *UniformReservoir) Update(v Value) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.elems) < cap(r.elems) {
		r.elems = append(r.elems, v)
		r.count++
		return
	}

	// saturate the index draw so count cannot overflow
	r.count = int64(cap(r.elems))
	if i := r.rng.Intn(cap(r.elems) + 1); i < cap(r.elems) {
		r.elems[i] = v
	}
}

// ReservoirSnapshot implements Reservoir.
func (r *UniformReservoir) ReservoirSnapshot() *ReservoirSnapshot {
	r.mu.Lock()
	values := make([]Value, len(r.elems))
	copy(values, r.elems)
	r.mu.Unlock()
	return NewReservoirSnapshot(values)
}

// TypeName implements Reservoir.
func (r *UniformReservoir) TypeName() string {
	return "uniform[" + strconv.Itoa(cap(r.elems)) + "]"
}

// SimpleReservoir keeps the most recent K values in a lossy ring buffer.
type SimpleReservoir struct {
	data *ringbuf.Buffer[Value]
}

// NewSimpleReservoir returns a reservoir of the size most recent values.
func NewSimpleReservoir(size int) *SimpleReservoir {
	return &SimpleReservoir{data: ringbuf.New[Value](size)}
}

// Update records v, displacing the oldest resident value when full.
func (r *SimpleReservoir) Update(v Value) {
	r.data.Push(v)
}

// ReservoirSnapshot implements Reservoir.
func (r *SimpleReservoir) ReservoirSnapshot() *ReservoirSnapshot {
	return NewReservoirSnapshot(r.data.Snapshot())
}

// TypeName implements Reservoir.
func (r *SimpleReservoir) TypeName() string {
	return "simple[" + strconv.Itoa(r.data.Cap()) + "]"
}

type timedValue struct {
	at    time.Time
	value Value
}

// SlidingWindowReservoir keeps up to K of the most recent values and
// excludes anything older than the window from its snapshots.
type SlidingWindowReservoir struct {
	clock  Clock
	window time.Duration
	data   *ringbuf.Buffer[timedValue]
}

// NewSlidingWindowReservoir returns a reservoir of up to size values
// observed within window of the snapshot instant.
func NewSlidingWindowReservoir(size int, window time.Duration) *SlidingWindowReservoir {
	return NewSlidingWindowReservoirWithClock(size, window, SteadyClock)
}

// NewSlidingWindowReservoirWithClock is NewSlidingWindowReservoir with a
// caller-supplied clock.
func NewSlidingWindowReservoirWithClock(size int, window time.Duration, clock Clock) *SlidingWindowReservoir {
	return &SlidingWindowReservoir{
		clock:  clock,
		window: window,
		data:   ringbuf.New[timedValue](size),
	}
}

// Update records v stamped with the current clock reading.
func (r *SlidingWindowReservoir) Update(v Value) {
	r.data.Push(timedValue{at: r.clock(), value: v})
}

// ReservoirSnapshot implements Reservoir, keeping only values younger than
// the window.
func (r *SlidingWindowReservoir) ReservoirSnapshot() *ReservoirSnapshot {
	horizon := r.clock().Add(-r.window)
	resident := r.data.Snapshot()
	values := make([]Value, 0, len(resident))
	for _, tv := range resident {
		if tv.at.Before(horizon) {
			continue
		}
		values = append(values, tv.value)
	}
	return NewReservoirSnapshot(values)
}

// TypeName implements Reservoir.
func (r *SlidingWindowReservoir) TypeName() string {
	return "sliding[" + strconv.Itoa(r.data.Cap()) + ";" + r.window.String() + "]"
}
