// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import "sync/atomic"

// GaugeAggregation selects how the tagged permutations of one gauge path
// combine when aggregated.
type GaugeAggregation uint8

const (
	// AggregateAverage merges permutations as a sample-weighted mean.
	AggregateAverage GaugeAggregation = iota
	// AggregateSum merges permutations by summation.
	AggregateSum
)

func (a GaugeAggregation) String() string {
	if a == AggregateSum {
		return "sum"
	}
	return "avg"
}

// Gauge reports a point-in-time reading supplied by a provider function.
// Use NewSettableGauge for a gauge that owns its value, or close the
// provider over a pointer to sample an externally owned location.
type Gauge struct {
	agg GaugeAggregation
	get func() Value
}

// NewGauge returns a gauge backed by the provider function. The provider
// is invoked on every Get and Snapshot and must be safe for concurrent
// use.
func NewGauge(agg GaugeAggregation, provider func() Value) *Gauge {
	return &Gauge{agg: agg, get: provider}
}

// Get returns the current reading.
func (g *Gauge) Get() Value {
	return g.get()
}

// Aggregation returns the gauge's aggregation mode.
func (g *Gauge) Aggregation() GaugeAggregation {
	return g.agg
}

// TypeName implements Metric. The aggregation mode participates in the
// name because it decides the snapshot kind.
func (g *Gauge) TypeName() string {
	return gaugeName("func", g.agg)
}

// Snapshot returns a cumulative snapshot for sum gauges and an average
// snapshot otherwise.
func (g *Gauge) Snapshot() Snapshot {
	if g.agg == AggregateSum {
		return NewCumulativeSnapshot(g.get())
	}
	return NewAverageSnapshot(g.get())
}

// SettableGauge is a gauge that owns its reading; Snapshot reports the
// last Set value.
type SettableGauge struct {
	Gauge
	value atomic.Pointer[Value]
}

// NewSettableGauge returns a gauge holding initial.
func NewSettableGauge(agg GaugeAggregation, initial Value) *SettableGauge {
	g := &SettableGauge{}
	g.value.Store(&initial)
	g.agg = agg
	g.get = func() Value { return *g.value.Load() }
	return g
}

// Set replaces the gauge reading.
func (g *SettableGauge) Set(v Value) {
	g.value.Store(&v)
}

// TypeName implements Metric.
func (g *SettableGauge) TypeName() string {
	return gaugeName("settable", g.agg)
}
