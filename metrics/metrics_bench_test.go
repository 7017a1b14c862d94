// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics_test

import (
	"testing"

	"github.com/open-instrumentation/gometrics/metrics"
)

func BenchmarkCounterIncr(b *testing.B) {
	c := metrics.NewCounter(0)
	for b.Loop() {
		c.Incr(1)
	}
}

func BenchmarkCounterIncrParallel(b *testing.B) {
	c := metrics.NewCounter(0)
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c.Incr(1)
		}
	})
}

func BenchmarkEWMAMark(b *testing.B) {
	e := metrics.NewEWMA(metrics.Seconds(10), metrics.Seconds(1))
	for b.Loop() {
		e.Mark(1)
	}
}

func BenchmarkEWMAMarkParallel(b *testing.B) {
	e := metrics.NewEWMA(metrics.Seconds(10), metrics.Seconds(1))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			e.Mark(1)
		}
	})
}

func BenchmarkMeterMark(b *testing.B) {
	m := metrics.NewMeter(metrics.Seconds(1), metrics.Minutes(1), metrics.Minutes(5), metrics.Minutes(15))
	for b.Loop() {
		m.Mark(1)
	}
}

func BenchmarkHistogramUpdate(b *testing.B) {
	h := metrics.NewHistogram(metrics.NewUniformReservoir(1024))
	for b.Loop() {
		h.UpdateInt64(int64(h.Count()))
	}
}

func BenchmarkHistogramSnapshot(b *testing.B) {
	h := metrics.NewHistogram(metrics.NewUniformReservoir(1024))
	for i := int64(0); i < 2048; i++ {
		h.UpdateInt64(i)
	}
	for b.Loop() {
		s := h.Snapshot().(*metrics.HistogramSnapshot)
		if s.Count() == 0 {
			b.Fatal("empty snapshot")
		}
	}
}

func BenchmarkRegistryCounterLookup(b *testing.B) {
	r := metrics.New()
	path := metrics.NewPath("bench", "requests")
	tags := metrics.Tags{"host": metrics.StringValue("a")}
	if _, err := r.Counter(path, 0, tags); err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		c, err := r.Counter(path, 0, tags)
		if err != nil {
			b.Fatal(err)
		}
		c.Incr(1)
	}
}
