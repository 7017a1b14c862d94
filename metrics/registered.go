// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"sync"

	"github.com/open-instrumentation/gometrics/util"
)

// RegisteredMetric is the per-path container in the registry. The path
// identifies the metric's metadata; the container holds one live instance
// per tag set and the per-metric publisher data. Publishers reach metrics
// through it: they can visit each tagged permutation or aggregate them
// into one snapshot.
type RegisteredMetric struct {
	typeName string

	mu       sync.Mutex
	children *util.HashMap[Tags, Metric]

	datamu sync.Mutex
	data   map[string]any
}

func newRegisteredMetric(typeName string) *RegisteredMetric {
	return &RegisteredMetric{
		typeName: typeName,
		children: util.NewHashMap[Tags, Metric](Tags.Equal, Tags.Hash),
		data:     map[string]any{},
	}
}

// Type returns the registered metric type name.
func (rm *RegisteredMetric) Type() string {
	return rm.typeName
}

// child returns the live instance for tags, invoking build on first
// access. The builder's result is stored; on a hit the builder is
// discarded.
func (rm *RegisteredMetric) child(tags Tags, build func() Metric) Metric {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if m, ok := rm.children.Get(tags); ok {
		return m
	}
	m := build()
	rm.children.Put(tags.clone(), m)
	return m
}

// addExisting stores m for tags unless a prior instance already holds the
// slot. It reports whether m was stored.
func (rm *RegisteredMetric) addExisting(tags Tags, m Metric) bool {
	added := false
	rm.child(tags, func() Metric {
		added = true
		return m
	})
	return added
}

// Visit calls fn with the tags and a fresh snapshot of every live
// permutation. The metric's own lock is held across the calls, so fn must
// not register metrics or re-enter the registry.
func (rm *RegisteredMetric) Visit(fn func(Tags, Snapshot)) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.children.Iter(func(tags Tags, m Metric) bool {
		fn(tags, m.Snapshot())
		return false
	})
}

// Aggregate merges the snapshots of all permutations into one and hands it
// to fn. The lock is released before fn runs.
func (rm *RegisteredMetric) Aggregate(fn func(Snapshot)) {
	rm.mu.Lock()
	var result Snapshot
	rm.children.Iter(func(_ Tags, m Metric) bool {
		s := m.Snapshot()
		if result == nil {
			result = s
		} else {
			result.Merge(s)
		}
		return false
	})
	rm.mu.Unlock()

	if result != nil {
		fn(result)
	}
}

// Each calls fn with every live permutation. The metric's lock is held
// across the calls.
func (rm *RegisteredMetric) Each(fn func(Tags, Metric)) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.children.Iter(func(tags Tags, m Metric) bool {
		fn(tags, m)
		return false
	})
}

// Data returns the publisher data stored under key, invoking build to
// create it on first access. Publishers use it to attach state to a
// metric; publish option overrides live here as well.
func (rm *RegisteredMetric) Data(key string, build func() any) any {
	rm.datamu.Lock()
	defer rm.datamu.Unlock()

	if d, ok := rm.data[key]; ok {
		return d
	}
	d := build()
	rm.data[key] = d
	return d
}

// PublishOptions returns the per-metric publish option override, if any.
func (rm *RegisteredMetric) PublishOptions() (*PublishOptions, bool) {
	d, ok := rm.TryData(publishOptionsKey)
	if !ok {
		return nil, false
	}
	return d.(*PublishOptions), true
}

// TryData returns the publisher data stored under key, if any.
func (rm *RegisteredMetric) TryData(key string) (any, bool) {
	rm.datamu.Lock()
	defer rm.datamu.Unlock()

	d, ok := rm.data[key]
	return d, ok
}

func (rm *RegisteredMetric) setData(key string, d any) {
	rm.datamu.Lock()
	defer rm.datamu.Unlock()
	rm.data[key] = d
}
