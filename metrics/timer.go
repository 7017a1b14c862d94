// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import "time"

// Timer tracks how long operations take: a histogram of durations plus a
// meter over the same updates.
type Timer struct {
	clock     Clock
	histogram *Histogram
	meter     *Meter
}

// NewTimer returns a timer whose rate meter ticks every interval over the
// given windows and whose duration samples land in reservoir. The
// reservoir is owned by the timer afterwards.
func NewTimer(interval Period, reservoir Reservoir, windows ...Period) *Timer {
	return NewTimerWithClock(interval, reservoir, SteadyClock, windows...)
}

// NewTimerWithClock is NewTimer with a caller-supplied clock.
func NewTimerWithClock(interval Period, reservoir Reservoir, clock Clock, windows ...Period) *Timer {
	return &Timer{
		clock:     clock,
		histogram: NewHistogram(reservoir),
		meter:     NewMeterWithClock(interval, clock, windows...),
	}
}

// Update records one operation that took d.
func (t *Timer) Update(d time.Duration) {
	t.histogram.Update(DurationValue(d))
	t.meter.Mark(1)
}

// Time measures fn from invocation to return and records the elapsed time
// when fn succeeds. Failed runs are not recorded, so error paths do not
// skew the latency distribution.
func (t *Timer) Time(fn func() error) error {
	start := t.clock()
	err := fn()
	if err != nil {
		return err
	}
	t.Update(t.clock().Sub(start))
	return nil
}

// Start returns a function that records the elapsed time when called. It
// suits deferred one-line timing:
//
//	defer timer.Start()()
func (t *Timer) Start() func() {
	start := t.clock()
	return func() {
		t.Update(t.clock().Sub(start))
	}
}

// Count returns the all-time number of recorded operations.
func (t *Timer) Count() uint64 {
	return t.histogram.Count()
}

// Mean returns the lifetime mean rate of recorded operations.
func (t *Timer) Mean() float64 {
	return t.meter.Mean()
}

// Rate returns the recorded-operation rate for window.
func (t *Timer) Rate(window Period) (MeterRate, bool) {
	return t.meter.Rate(window)
}

// TypeName implements Metric. Interval, reservoir shape and the canonical
// window set all participate.
func (t *Timer) TypeName() string {
	return timerName(t.meter.interval, t.histogram.reservoir.TypeName(), t.meter.windows)
}

// Snapshot returns the duration histogram and rate meter snapshots merged
// into one timer snapshot.
func (t *Timer) Snapshot() Snapshot {
	h := t.histogram.Snapshot().(*HistogramSnapshot)
	m := t.meter.Snapshot().(*MeterSnapshot)
	return NewTimerSnapshot(h, m)
}
