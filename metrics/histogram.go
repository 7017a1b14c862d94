// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import "sync/atomic"

// Histogram samples an update stream through a reservoir and tracks the
// all-time update count.
type Histogram struct {
	reservoir Reservoir
	count     atomic.Uint64
}

// NewHistogram returns a histogram backed by reservoir; the reservoir is
// owned by the histogram afterwards.
func NewHistogram(reservoir Reservoir) *Histogram {
	return &Histogram{reservoir: reservoir}
}

// Update records v.
func (h *Histogram) Update(v Value) {
	h.count.Add(1)
	h.reservoir.Update(v)
}

// UpdateInt64 records an integer value.
func (h *Histogram) UpdateInt64(v int64) {
	h.Update(IntValue(v))
}

// Count returns the all-time number of updates, which can exceed the
// number of resident samples.
func (h *Histogram) Count() uint64 {
	return h.count.Load()
}

// TypeName implements Metric. The reservoir shape participates so that
// histograms over different reservoirs are distinct registered types.
func (h *Histogram) TypeName() string {
	return histogramName(h.reservoir.TypeName())
}

// Snapshot returns the sorted resident samples plus the update count.
func (h *Histogram) Snapshot() Snapshot {
	return NewHistogramSnapshot(h.reservoir.ReservoirSnapshot(), h.Count())
}
