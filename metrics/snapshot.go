// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"math"
	"sort"
	"time"
)

// Snapshot is an immutable point-in-time view of one metric's derived
// statistics. Snapshots of the same kind merge; the registry's aggregation
// relies on every tagged permutation under one path producing the same
// snapshot kind.
type Snapshot interface {
	// Accept dispatches to the visitor method for the snapshot's kind.
	Accept(v Visitor)

	// Merge folds other into the receiver. Other must be the same kind;
	// the registry guarantees this for aggregation, and a mismatch is a
	// library invariant violation that panics.
	Merge(other Snapshot)
}

// Visitor reacts to the sealed snapshot variants.
type Visitor interface {
	VisitCumulative(*CumulativeSnapshot)
	VisitAverage(*AverageSnapshot)
	VisitMeter(*MeterSnapshot)
	VisitHistogram(*HistogramSnapshot)
	VisitTimer(*TimerSnapshot)
}

// CumulativeSnapshot is a single value that merges by summation, produced
// by counters and sum-aggregated gauges.
type CumulativeSnapshot struct {
	value Value
}

// NewCumulativeSnapshot returns a cumulative snapshot of value.
func NewCumulativeSnapshot(value Value) *CumulativeSnapshot {
	return &CumulativeSnapshot{value: value}
}

// Value returns the value in the snapshot.
func (s *CumulativeSnapshot) Value() Value {
	return s.value
}

// Accept implements Snapshot.
func (s *CumulativeSnapshot) Accept(v Visitor) {
	v.VisitCumulative(s)
}

// Merge adds the other cumulative value.
func (s *CumulativeSnapshot) Merge(other Snapshot) {
	o := other.(*CumulativeSnapshot)
	s.value = s.value.Add(o.value)
}

// AverageSnapshot is a single value that merges as a sample-weighted mean,
// produced by EWMAs and average-aggregated gauges.
type AverageSnapshot struct {
	value   Value
	samples uint64
}

// NewAverageSnapshot returns an average snapshot holding one sample.
func NewAverageSnapshot(value Value) *AverageSnapshot {
	return &AverageSnapshot{value: value, samples: 1}
}

// Value returns the value in the snapshot.
func (s *AverageSnapshot) Value() Value {
	return s.value
}

// Samples returns the number of samples folded into the value.
func (s *AverageSnapshot) Samples() uint64 {
	return s.samples
}

// Accept implements Snapshot.
func (s *AverageSnapshot) Accept(v Visitor) {
	v.VisitAverage(s)
}

// Merge combines the two values as a weighted mean and sums the sample
// counts. The law is commutative and associative.
func (s *AverageSnapshot) Merge(other Snapshot) {
	o := other.(*AverageSnapshot)
	s.mergeAverage(o.value, o.samples)
}

func (s *AverageSnapshot) mergeAverage(value Value, samples uint64) {
	sa := float64(s.samples)
	sb := float64(samples)
	total := sa + sb
	s.value = s.value.Mul(FloatValue(sa / total)).Add(value.Mul(FloatValue(sb / total)))
	s.samples += samples
}

// MeterSnapshot is an average mean rate together with the per-window rates
// of a meter.
type MeterSnapshot struct {
	AverageSnapshot
	rates map[time.Duration]Value
}

// NewMeterSnapshot returns a meter snapshot with the given lifetime mean
// and window rates. The rates map is owned by the snapshot afterwards.
func NewMeterSnapshot(mean Value, rates map[time.Duration]Value) *MeterSnapshot {
	return &MeterSnapshot{
		AverageSnapshot: AverageSnapshot{value: mean, samples: 1},
		rates:           rates,
	}
}

// Rates returns the window-to-rate map. The map is owned by the snapshot
// and must not be modified.
func (s *MeterSnapshot) Rates() map[time.Duration]Value {
	return s.rates
}

// Rate returns the rate tracked for window.
func (s *MeterSnapshot) Rate(window time.Duration) (Value, bool) {
	v, ok := s.rates[window]
	return v, ok
}

// Accept implements Snapshot.
func (s *MeterSnapshot) Accept(v Visitor) {
	v.VisitMeter(s)
}

// Merge averages each window rate shared by both snapshots by sample count
// and then merges the means.
func (s *MeterSnapshot) Merge(other Snapshot) {
	o := other.(*MeterSnapshot)
	sa := float64(s.samples)
	sb := float64(o.samples)
	total := sa + sb
	for w, rate := range s.rates {
		orate, ok := o.rates[w]
		if !ok {
			continue
		}
		s.rates[w] = rate.Mul(FloatValue(sa / total)).Add(orate.Mul(FloatValue(sb / total)))
	}
	s.AverageSnapshot.Merge(&o.AverageSnapshot)
}

// ReservoirSnapshot holds an ascending-sorted sample of values from which
// quantiles, means, minimums and maximums can be read.
type ReservoirSnapshot struct {
	values []Value
}

// NewReservoirSnapshot sorts values and wraps them. The slice is owned by
// the snapshot afterwards.
func NewReservoirSnapshot(values []Value) *ReservoirSnapshot {
	sort.Slice(values, func(i, j int) bool {
		return values[i].Compare(values[j]) < 0
	})
	return &ReservoirSnapshot{values: values}
}

// Size returns the number of samples in the snapshot.
func (s *ReservoirSnapshot) Size() int {
	return len(s.values)
}

// Values returns the sorted samples. The slice is owned by the snapshot
// and must not be modified.
func (s *ReservoirSnapshot) Values() []Value {
	return s.values
}

// Min returns the smallest sample, or the int64 minimum sentinel when the
// snapshot is empty.
func (s *ReservoirSnapshot) Min() Value {
	if len(s.values) == 0 {
		return IntValue(math.MinInt64)
	}
	return s.values[0]
}

// Max returns the largest sample, or the int64 maximum sentinel when the
// snapshot is empty.
func (s *ReservoirSnapshot) Max() Value {
	if len(s.values) == 0 {
		return IntValue(math.MaxInt64)
	}
	return s.values[len(s.values)-1]
}

// Quantile returns the value at q in [0, 1], linearly interpolated on the
// rank position q·(N+1).
func (s *ReservoirSnapshot) Quantile(q float64) Value {
	n := len(s.values)
	if n < 1 {
		return IntValue(0)
	}

	pos := q * float64(n+1)
	idx := int(pos)

	if idx < 1 {
		return s.Min()
	}
	if idx >= n {
		return s.Max()
	}

	lo := s.values[idx-1]
	delta := s.values[idx].Float64() - lo.Float64()
	return lo.Add(FloatValue((pos - float64(idx)) * delta))
}

// Mean returns the arithmetic mean of the samples, folded with a
// numerically stable online combination.
func (s *ReservoirSnapshot) Mean() Value {
	total := FloatValue(0)
	for i, v := range s.values {
		vs := float64(i) + 1
		total = total.Mul(FloatValue(float64(i) / vs)).Add(v.Mul(FloatValue(1 / vs)))
	}
	return total
}

// HistogramSnapshot is a reservoir snapshot plus the all-time update count.
type HistogramSnapshot struct {
	ReservoirSnapshot
	count uint64
}

// NewHistogramSnapshot wraps a reservoir snapshot with the update count.
func NewHistogramSnapshot(r *ReservoirSnapshot, count uint64) *HistogramSnapshot {
	return &HistogramSnapshot{ReservoirSnapshot: *r, count: count}
}

// Count returns the all-time number of updates.
func (s *HistogramSnapshot) Count() uint64 {
	return s.count
}

// Accept implements Snapshot.
func (s *HistogramSnapshot) Accept(v Visitor) {
	v.VisitHistogram(s)
}

// Merge interleaves the two sorted sample sets, skipping values already
// covered by the running maximum, capped at the larger of the two counts;
// the counts themselves sum.
func (s *HistogramSnapshot) Merge(other Snapshot) {
	o := other.(*HistogramSnapshot)
	limit := max(s.count, o.count)
	s.values = interleave(s.values, o.values, int(limit))
	s.count += o.count
}

// interleave walks the two sorted slices alternately, taking the next
// value strictly above everything taken so far, up to limit values. The
// result is sorted.
func interleave(a, b []Value, limit int) []Value {
	out := make([]Value, 0, min(limit, len(a)+len(b)))
	i, j := 0, 0
	for len(out) < limit && (i < len(a) || j < len(b)) {
		if len(out) > 0 {
			cur := out[len(out)-1]
			for i < len(a) && a[i].Compare(cur) <= 0 {
				i++
			}
			for j < len(b) && b[j].Compare(cur) <= 0 {
				j++
			}
		}
		switch {
		case i >= len(a) && j >= len(b):
			return out
		case i >= len(a):
			out = append(out, b[j])
			j++
		case j >= len(b):
			out = append(out, a[i])
			i++
		case a[i].Compare(b[j]) <= 0:
			out = append(out, a[i])
			i++
		default:
			out = append(out, b[j])
			j++
		}
	}
	return out
}

// TimerSnapshot is a histogram snapshot of durations together with the
// meter snapshot of update rates.
type TimerSnapshot struct {
	HistogramSnapshot
	meter MeterSnapshot
}

// NewTimerSnapshot combines a histogram snapshot and a meter snapshot.
func NewTimerSnapshot(h *HistogramSnapshot, m *MeterSnapshot) *TimerSnapshot {
	return &TimerSnapshot{HistogramSnapshot: *h, meter: *m}
}

// RateMeter returns the rates associated with the timer.
func (s *TimerSnapshot) RateMeter() *MeterSnapshot {
	return &s.meter
}

// Accept implements Snapshot.
func (s *TimerSnapshot) Accept(v Visitor) {
	v.VisitTimer(s)
}

// Merge merges component-wise.
func (s *TimerSnapshot) Merge(other Snapshot) {
	o := other.(*TimerSnapshot)
	s.HistogramSnapshot.Merge(&o.HistogramSnapshot)
	s.meter.Merge(&o.meter)
}
