// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"math"
	"sync/atomic"
	"time"
)

// EWMA is an interval-bucketed exponentially weighted moving average. Marks
// accumulate into a pending bucket; once a full interval elapses the bucket
// folds into the rate with decay constant
//
//	alpha = 1 - exp(-interval / (2*window))
//
// Mark and Rate are lock-free: state advances lazily on access and a
// compare-and-swap of the pending bucket is the linearization point of a
// successful tick. Clock readings older than the last tick are dropped.
type EWMA struct {
	clock    Clock
	epoch    time.Time
	window   int64 // nanoseconds
	interval int64 // nanoseconds
	alpha    float64

	rate    atomicFloat64
	pending atomicFloat64
	last    atomic.Int64 // nanoseconds since epoch
	ticked  atomic.Bool

	windowPeriod   Period
	intervalPeriod Period
}

// NewEWMA returns an EWMA decaying over window and ticking every interval.
// The window should be at least as large as the interval.
func NewEWMA(window, interval Period) *EWMA {
	return NewEWMAWithClock(window, interval, SteadyClock)
}

// NewEWMAWithClock is NewEWMA with a caller-supplied clock.
func NewEWMAWithClock(window, interval Period, clock Clock) *EWMA {
	if interval <= 0 {
		panic("metrics: ewma interval must be positive")
	}
	return &EWMA{
		clock:          clock,
		epoch:          clock(),
		window:         int64(window.Duration()),
		interval:       int64(interval.Duration()),
		alpha:          1 - math.Exp(float64(interval)*-1/(float64(window)*2)),
		windowPeriod:   window,
		intervalPeriod: interval,
	}
}

// Window returns the decay window.
func (e *EWMA) Window() Period {
	return e.windowPeriod
}

// Interval returns the tick interval.
func (e *EWMA) Interval() Period {
	return e.intervalPeriod
}

// Mark records amount. The call never blocks; at worst it retries a
// bounded number of CAS operations while racing another tick.
func (e *EWMA) Mark(amount float64) {
	now := e.now()

	// our clock went backwards
	if now < e.last.Load() {
		return
	}

	e.tick(now, true)
	e.pending.Add(amount)
}

// Rate returns the instantaneous rate, advancing the decay state up to the
// current clock reading.
func (e *EWMA) Rate() float64 {
	return e.tick(e.now(), true)
}

// RateOnly computes the rate without publishing state, leaving the next
// writer to fold the elapsed intervals in.
func (e *EWMA) RateOnly() float64 {
	return e.tick(e.now(), false)
}

// TypeName implements Metric.
func (e *EWMA) TypeName() string {
	return ewmaName(e.windowPeriod, e.intervalPeriod)
}

// Snapshot returns an average snapshot of the current rate.
func (e *EWMA) Snapshot() Snapshot {
	return NewAverageSnapshot(FloatValue(e.Rate()))
}

func (e *EWMA) now() int64 {
	return int64(e.clock().Sub(e.epoch))
}

// tick advances the average to at. With write set, the caller attempts to
// publish the advanced state; otherwise the result is a read-only
// recomputation.
func (e *EWMA) tick(at int64, write bool) float64 {
	last := e.last.Load()
	pending := e.pending.Load()
	nrate := e.rate.Load()

	if at < last {
		return nrate
	}

	// Cold start: nothing has ever been folded in. Before the first full
	// interval the pending bucket doubles as the provisional rate. The
	// thread that wins the ticked flag publishes it as the initial rate.
	if nrate == 0 && !e.ticked.Load() {
		if at-last < e.interval {
			return pending
		}
		if !write {
			return pending
		}
		if e.ticked.CompareAndSwap(false, true) {
			if !e.pending.CompareAndSwap(pending, 0) {
				// someone else ticked from under us
				return pending
			}
			if e.rate.CompareAndSwap(nrate, pending) {
				e.last.Store(at)
			}
			return pending
		}
	}

	// Fold the pending bucket into the rate.
	rate := nrate + e.alpha*(pending-nrate)

	// Catch up on missed intervals by averaging in zeros.
	missed := (at-last)/e.interval - 1
	if missed > 0 {
		if e.window > e.interval && at-last > e.window {
			perWindow := e.window / e.interval
			missedWindows := missed / perWindow
			rate = coarseDecay(rate, missedWindows)
			missed -= missedWindows * perWindow
		}

		// Staged per-interval decay rather than a closed-form power so
		// results reproduce exactly across revisions.
		for i := int64(0); i < missed; i++ {
			rate = rate + e.alpha*(-rate)
		}
	}

	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		rate = 0
	}

	// make sure that last didn't catch up with us
	if !write || at-last < e.interval {
		return rate
	}

	if !e.pending.CompareAndSwap(pending, 0) {
		// someone else already ticked or added a pending value
		return rate
	}

	e.rate.Store(rate)
	if e.last.Load() < at {
		e.last.Store(at)
	}
	return rate
}

// coarseDecay applies the whole-window catch-up rate^(1/m²) used when a
// gap spans one or more full windows. Formulated with Exp/Log rather than
// math.Pow so the result is reproducible across platforms; test oracles
// stay ±epsilon, not bit-exact. Degenerate inputs fall out as NaN or Inf
// and are collapsed to zero by the caller.
func coarseDecay(rate float64, missedWindows int64) float64 {
	m := float64(missedWindows * missedWindows)
	switch {
	case rate == 0:
		return 0
	case rate < 0:
		return math.NaN()
	case m == 0:
		// exponent 1/m diverges: everything below one collapses,
		// everything above one blows up (and is zeroed by the caller).
		switch {
		case rate < 1:
			return 0
		case rate > 1:
			return math.Inf(1)
		}
		return 1
	}
	return math.Exp(math.Log(rate) / m)
}
