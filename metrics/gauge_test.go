// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"sync/atomic"
	"testing"
)

func TestFunctionGauge(t *testing.T) {
	var source atomic.Int64
	g := NewGauge(AggregateAverage, func() Value {
		return IntValue(source.Load())
	})

	source.Store(12)
	if got := g.Get().Int64(); got != 12 {
		t.Fatalf("Expected 12 but got %v", got)
	}
	source.Store(30)
	if got := g.Get().Int64(); got != 30 {
		t.Fatalf("Expected the provider to be re-read, got %v", got)
	}
}

func TestGaugeSnapshotKindFollowsAggregation(t *testing.T) {
	avg := NewGauge(AggregateAverage, func() Value { return IntValue(1) })
	if _, ok := avg.Snapshot().(*AverageSnapshot); !ok {
		t.Fatalf("Expected an average snapshot")
	}

	sum := NewGauge(AggregateSum, func() Value { return IntValue(1) })
	if _, ok := sum.Snapshot().(*CumulativeSnapshot); !ok {
		t.Fatalf("Expected a cumulative snapshot")
	}
}

func TestPointerBackedGauge(t *testing.T) {
	var inflight atomic.Int64
	g := NewGauge(AggregateSum, func() Value { return IntValue(inflight.Load()) })

	inflight.Add(3)
	if got := g.Get().Int64(); got != 3 {
		t.Fatalf("Expected the dereferenced value 3 but got %v", got)
	}
}

func TestSettableGaugeTypeNames(t *testing.T) {
	s := NewSettableGauge(AggregateAverage, IntValue(0))
	f := NewGauge(AggregateAverage, func() Value { return IntValue(0) })
	if s.TypeName() == f.TypeName() {
		t.Fatalf("Expected settable and provider gauges to be distinct types")
	}
}
