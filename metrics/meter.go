// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"strings"
	"sync/atomic"
	"time"
)

// MeterRate pairs a tracked window with its measured rate.
type MeterRate struct {
	Window time.Duration
	Rate   float64
}

// Meter fans a single mark out to one EWMA per tracked window, all sharing
// one tick interval, and tracks the lifetime mean throughput. The window
// set is sorted and deduplicated on construction, so meters built from the
// same windows in any order are the same registered type.
type Meter struct {
	clock    Clock
	epoch    time.Time
	interval Period
	windows  []Period
	rates    []*EWMA

	total   atomic.Int64
	started atomic.Bool
	start   atomic.Int64 // nanoseconds since epoch, valid once started
}

// NewMeter returns a meter ticking every interval over the given windows.
func NewMeter(interval Period, windows ...Period) *Meter {
	return NewMeterWithClock(interval, SteadyClock, windows...)
}

// NewMeterWithClock is NewMeter with a caller-supplied clock.
func NewMeterWithClock(interval Period, clock Clock, windows ...Period) *Meter {
	ws := canonicalWindows(windows)
	m := &Meter{
		clock:    clock,
		epoch:    clock(),
		interval: interval,
		windows:  ws,
		rates:    make([]*EWMA, len(ws)),
	}
	for i, w := range ws {
		m.rates[i] = NewEWMAWithClock(w, interval, clock)
	}
	return m
}

// Mark records n occurrences in every tracked window.
func (m *Meter) Mark(n int64) {
	// imperfect under a racing first mark, but close enough
	if !m.started.Load() && m.started.CompareAndSwap(false, true) {
		m.start.Store(int64(m.clock().Sub(m.epoch)))
	}

	for _, e := range m.rates {
		e.Mark(float64(n))
	}
	m.total.Add(n)
}

// Mean returns the lifetime mean in marks per interval. Before the first
// interval has elapsed the raw total is reported instead.
func (m *Meter) Mean() float64 {
	total := float64(m.total.Load())
	units := float64(1)
	if m.started.Load() {
		since := int64(m.clock().Sub(m.epoch)) - m.start.Load()
		if since < int64(m.interval.Duration()) {
			return total
		}
		units = float64(since) / float64(m.interval.Duration())
	}
	if units == 0 {
		return total
	}
	return total / units
}

// Count returns the lifetime number of marks.
func (m *Meter) Count() int64 {
	return m.total.Load()
}

// Rate returns the rate for window. The second return is false when the
// window is not tracked by this meter.
func (m *Meter) Rate(window Period) (MeterRate, bool) {
	for i, w := range m.windows {
		if w == window {
			return MeterRate{Window: w.Duration(), Rate: m.rates[i].Rate()}, true
		}
	}
	return MeterRate{}, false
}

// EachRate calls fn for every tracked window in ascending order.
func (m *Meter) EachRate(fn func(MeterRate)) {
	for i, w := range m.windows {
		fn(MeterRate{Window: w.Duration(), Rate: m.rates[i].Rate()})
	}
}

// Windows returns the canonical window set.
func (m *Meter) Windows() []Period {
	return m.windows
}

// Interval returns the tick interval.
func (m *Meter) Interval() Period {
	return m.interval
}

// TypeName implements Metric. The canonical window set participates so
// that meters over different windows are distinct registered types.
func (m *Meter) TypeName() string {
	return meterName(m.interval, m.windows)
}

// Snapshot returns the meter's mean and per-window rates.
func (m *Meter) Snapshot() Snapshot {
	rates := make(map[time.Duration]Value, len(m.windows))
	m.EachRate(func(r MeterRate) {
		rates[r.Window] = FloatValue(r.Rate)
	})
	return NewMeterSnapshot(FloatValue(m.Mean()), rates)
}

func formatWindows(ws []Period) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.String()
	}
	return strings.Join(parts, "|")
}
