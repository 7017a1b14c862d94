// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"math"
	"testing"
	"time"
)

func TestMeterFanOut(t *testing.T) {
	clk := newManualClock()
	m := NewMeterWithClock(Seconds(1), clk.Clock, Seconds(10), Minutes(1))

	m.Mark(7)
	for i := 0; i < 60; i++ {
		clk.Advance(time.Second)
		m.Mark(7)
	}

	r10, ok := m.Rate(Seconds(10))
	if !ok {
		t.Fatalf("Expected the 10s window to be tracked")
	}
	r60, ok := m.Rate(Minutes(1))
	if !ok {
		t.Fatalf("Expected the 1m window to be tracked")
	}

	// Each window's EWMA observes the same marks with its own decay.
	if math.Abs(r10.Rate-7) > 0.1 {
		t.Fatalf("Expected 10s rate near 7 but got %v", r10.Rate)
	}
	if math.Abs(r60.Rate-7) > 1.0 {
		t.Fatalf("Expected 1m rate near 7 but got %v", r60.Rate)
	}
}

func TestMeterUnknownWindow(t *testing.T) {
	m := NewMeter(Seconds(1), Minutes(1))
	if _, ok := m.Rate(Minutes(5)); ok {
		t.Fatalf("Expected an untracked window to report ok=false")
	}
}

func TestMeterWindowsCanonicalized(t *testing.T) {
	a := NewMeter(Seconds(1), Minutes(5), Minutes(1), Minutes(5))
	b := NewMeter(Seconds(1), Minutes(1), Minutes(5))

	if a.TypeName() != b.TypeName() {
		t.Fatalf("Expected window order not to matter: %v vs %v", a.TypeName(), b.TypeName())
	}
	if len(a.Windows()) != 2 {
		t.Fatalf("Expected duplicate windows to collapse, got %v", a.Windows())
	}
}

func TestMeterMeanBeforeFirstInterval(t *testing.T) {
	clk := newManualClock()
	m := NewMeterWithClock(Seconds(1), clk.Clock, Minutes(1))

	m.Mark(5)
	m.Mark(5)

	// No interval has elapsed: the raw total is reported.
	if mean := m.Mean(); mean != 10 {
		t.Fatalf("Expected raw total of 10 before the first interval but got %v", mean)
	}
}

func TestMeterMean(t *testing.T) {
	clk := newManualClock()
	m := NewMeterWithClock(Seconds(1), clk.Clock, Minutes(1))

	m.Mark(2)
	for i := 0; i < 10; i++ {
		clk.Advance(time.Second)
		m.Mark(2)
	}

	// 22 marks over 10 elapsed intervals.
	if mean := m.Mean(); math.Abs(mean-2.2) > 0.01 {
		t.Fatalf("Expected mean of 2.2 but got %v", mean)
	}
}

func TestMeterSnapshotShape(t *testing.T) {
	clk := newManualClock()
	m := NewMeterWithClock(Seconds(1), clk.Clock, Seconds(10), Minutes(1))
	m.Mark(3)
	clk.Advance(time.Second)
	m.Mark(3)

	s, ok := m.Snapshot().(*MeterSnapshot)
	if !ok {
		t.Fatalf("Expected a meter snapshot")
	}
	if len(s.Rates()) != 2 {
		t.Fatalf("Expected one rate per window, got %v", s.Rates())
	}
	if _, ok := s.Rate(10 * time.Second); !ok {
		t.Fatalf("Expected a 10s rate in the snapshot")
	}
}
