// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"math"
	"testing"
	"time"
)

func TestReservoirSnapshotQuantiles(t *testing.T) {
	s := NewReservoirSnapshot([]Value{
		IntValue(45), IntValue(10), IntValue(40), IntValue(15), IntValue(30),
	})

	if got := s.Min().Int64(); got != 10 {
		t.Fatalf("Expected min 10 but got %v", got)
	}
	if got := s.Max().Int64(); got != 45 {
		t.Fatalf("Expected max 45 but got %v", got)
	}
	if got := s.Quantile(0.99).Float64(); got != 45 {
		t.Fatalf("Expected P99 of 45 but got %v", got)
	}
	if got := s.Quantile(0.6).Float64(); math.Abs(got-35) > 1.5 {
		t.Fatalf("Expected P60 near 35 but got %v", got)
	}
	if got := s.Mean().Float64(); math.Abs(got-28) > 1e-9 {
		t.Fatalf("Expected mean 28 but got %v", got)
	}
}

func TestQuantileMonotonicity(t *testing.T) {
	s := NewReservoirSnapshot([]Value{
		IntValue(3), IntValue(1), IntValue(4), IntValue(1), IntValue(5),
		IntValue(9), IntValue(2), IntValue(6),
	})

	prev := math.Inf(-1)
	for q := 0.0; q <= 1.0; q += 0.01 {
		v := s.Quantile(q).Float64()
		if v < prev {
			t.Fatalf("Quantile not monotonic at q=%v: %v < %v", q, v, prev)
		}
		prev = v
	}
}

func TestAverageSnapshotMergeLaw(t *testing.T) {
	merge := func(av float64, as uint64, bv float64, bs uint64) *AverageSnapshot {
		a := &AverageSnapshot{value: FloatValue(av), samples: as}
		b := &AverageSnapshot{value: FloatValue(bv), samples: bs}
		a.Merge(b)
		return a
	}

	got := merge(10, 3, 20, 1)
	want := (10.0*3 + 20.0*1) / 4
	if math.Abs(got.Value().Float64()-want) > 1e-9 {
		t.Fatalf("Expected weighted mean %v but got %v", want, got.Value())
	}
	if got.Samples() != 4 {
		t.Fatalf("Expected 4 samples but got %v", got.Samples())
	}

	// commutative
	ab := merge(10, 3, 20, 1)
	ba := merge(20, 1, 10, 3)
	if math.Abs(ab.Value().Float64()-ba.Value().Float64()) > 1e-9 {
		t.Fatalf("Expected commutative merge: %v vs %v", ab.Value(), ba.Value())
	}

	// associative
	abc := merge(10, 3, 20, 1)
	abc.Merge(&AverageSnapshot{value: FloatValue(5), samples: 2})
	bc := &AverageSnapshot{value: FloatValue(20), samples: 1}
	bc.Merge(&AverageSnapshot{value: FloatValue(5), samples: 2})
	acc := &AverageSnapshot{value: FloatValue(10), samples: 3}
	acc.Merge(bc)
	if math.Abs(abc.Value().Float64()-acc.Value().Float64()) > 1e-9 {
		t.Fatalf("Expected associative merge: %v vs %v", abc.Value(), acc.Value())
	}
}

func TestCumulativeSnapshotMerge(t *testing.T) {
	a := NewCumulativeSnapshot(IntValue(10))
	a.Merge(NewCumulativeSnapshot(IntValue(32)))
	if got := a.Value().Int64(); got != 42 {
		t.Fatalf("Expected 42 but got %v", got)
	}
}

func TestMeterSnapshotMerge(t *testing.T) {
	a := NewMeterSnapshot(FloatValue(10), map[time.Duration]Value{
		time.Minute: FloatValue(4),
	})
	b := NewMeterSnapshot(FloatValue(20), map[time.Duration]Value{
		time.Minute:     FloatValue(8),
		5 * time.Minute: FloatValue(1),
	})
	a.Merge(b)

	if got := a.Value().Float64(); math.Abs(got-15) > 1e-9 {
		t.Fatalf("Expected merged mean 15 but got %v", got)
	}
	rate, ok := a.Rate(time.Minute)
	if !ok || math.Abs(rate.Float64()-6) > 1e-9 {
		t.Fatalf("Expected merged 1m rate of 6 but got %v", rate)
	}
	if _, ok := a.Rate(5 * time.Minute); ok {
		t.Fatalf("Expected windows absent on one side to stay absent")
	}
}

func TestHistogramSnapshotMerge(t *testing.T) {
	a := NewHistogramSnapshot(NewReservoirSnapshot([]Value{
		IntValue(10), IntValue(20), IntValue(30),
	}), 3)
	b := NewHistogramSnapshot(NewReservoirSnapshot([]Value{
		IntValue(15), IntValue(20), IntValue(25), IntValue(35),
	}), 4)
	a.Merge(b)

	if a.Count() != 7 {
		t.Fatalf("Expected summed count of 7 but got %v", a.Count())
	}
	if a.Size() > 4 {
		t.Fatalf("Expected merged sample set capped at max(count) = 4 but got %v", a.Size())
	}
	prev := math.Inf(-1)
	for _, v := range a.Values() {
		if v.Float64() < prev {
			t.Fatalf("Merged values not sorted: %v", a.Values())
		}
		prev = v.Float64()
	}
}

func TestTimerSnapshotMerge(t *testing.T) {
	mkTimer := func(vals []int64, count uint64, mean float64, rate float64) *TimerSnapshot {
		values := make([]Value, len(vals))
		for i, v := range vals {
			values[i] = DurationValue(time.Duration(v) * time.Microsecond)
		}
		h := NewHistogramSnapshot(NewReservoirSnapshot(values), count)
		m := NewMeterSnapshot(FloatValue(mean), map[time.Duration]Value{
			time.Minute: FloatValue(rate),
		})
		return NewTimerSnapshot(h, m)
	}

	a := mkTimer([]int64{10, 20}, 2, 4, 2)
	b := mkTimer([]int64{30, 40}, 2, 8, 6)
	a.Merge(b)

	if a.Count() != 4 {
		t.Fatalf("Expected merged count 4 but got %v", a.Count())
	}
	if got := a.RateMeter().Value().Float64(); math.Abs(got-6) > 1e-9 {
		t.Fatalf("Expected merged mean rate 6 but got %v", got)
	}
}

func TestSnapshotRepeatability(t *testing.T) {
	h := NewHistogram(NewSimpleReservoir(8))
	for i := 0; i < 6; i++ {
		h.UpdateInt64(int64(i))
	}

	s1 := h.Snapshot().(*HistogramSnapshot)
	s2 := h.Snapshot().(*HistogramSnapshot)
	if s1.Mean().Float64() != s2.Mean().Float64() {
		t.Fatalf("Expected identical back-to-back snapshots: %v vs %v", s1.Mean(), s2.Mean())
	}
	if s1.Count() > s2.Count() {
		t.Fatalf("Expected count to be non-decreasing: %v then %v", s1.Count(), s2.Count())
	}
}
