// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import "sync/atomic"

// Metric is implemented by every live metric instance held in the
// registry.
type Metric interface {
	// TypeName identifies the metric's shape, including any
	// parameterization that affects snapshot compatibility. Registering a
	// metric under a path whose existing type name differs is an error.
	TypeName() string

	// Snapshot produces an immutable view of the metric's current state.
	Snapshot() Snapshot
}

// Counter counts values with a lock-free atomic.
type Counter struct {
	value atomic.Int64
}

// NewCounter returns a counter starting at initial.
func NewCounter(initial int64) *Counter {
	c := &Counter{}
	c.value.Store(initial)
	return c
}

// Incr adds by (which may be negative) and returns the new value.
func (c *Counter) Incr(by int64) int64 {
	return c.value.Add(by)
}

// Inc increments the counter by one.
func (c *Counter) Inc() int64 {
	return c.Incr(1)
}

// Dec decrements the counter by one.
func (c *Counter) Dec() int64 {
	return c.Incr(-1)
}

// Set replaces the counter value.
func (c *Counter) Set(v int64) {
	c.value.Store(v)
}

// Count returns the current value.
func (c *Counter) Count() int64 {
	return c.value.Load()
}

// TypeName implements Metric.
func (c *Counter) TypeName() string {
	return "counter"
}

// Snapshot returns a cumulative snapshot of the current value.
func (c *Counter) Snapshot() Snapshot {
	return NewCumulativeSnapshot(IntValue(c.Count()))
}
