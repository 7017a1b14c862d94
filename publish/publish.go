// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package publish provides the facade publishers build on: registry
// traversal, effective publish option resolution and publisher-local
// state. Concrete encodings live in subpackages; the facade is oblivious
// to them.
package publish

import (
	"strings"

	"github.com/open-instrumentation/gometrics/metrics"
)

// Publisher walks a registry and resolves per-metric publishing concerns.
// It borrows the registry without owning it.
type Publisher struct {
	registry *metrics.Registry
}

// New returns a publisher over registry.
func New(registry *metrics.Registry) *Publisher {
	return &Publisher{registry: registry}
}

// Registry returns the registry the publisher traverses.
func (p *Publisher) Registry() *metrics.Registry {
	return p.registry
}

// EffectiveOptions resolves the publish options for a registered metric:
// the per-metric override when present, else the repository-wide options,
// else the static defaults.
func (p *Publisher) EffectiveOptions(rm *metrics.RegisteredMetric) *metrics.PublishOptions {
	if rm != nil {
		if opts, ok := rm.PublishOptions(); ok {
			return opts
		}
	}
	return p.registry.PublishOptions()
}

// VisitAll runs handler on every registered metric.
func (p *Publisher) VisitAll(handler func(metrics.Path, *metrics.RegisteredMetric)) {
	p.registry.VisitRegisteredMetrics(handler)
}

// VisitOne runs handler on the metric registered at path, silently doing
// nothing when the path is absent.
func (p *Publisher) VisitOne(path metrics.Path, handler func(*metrics.RegisteredMetric)) {
	rm := p.registry.Metric(path)
	if rm == nil {
		return
	}
	handler(rm)
}

// Data returns publisher-local state attached to the registry under key,
// creating it with build on first access.
func (p *Publisher) Data(key string, build func() any) any {
	return p.registry.Data(key, build)
}

// MetricData returns publisher-local state attached to one registered
// metric under key, creating it with build on first access.
func (p *Publisher) MetricData(rm *metrics.RegisteredMetric, key string, build func() any) any {
	return rm.Data(key, build)
}

// TypeName returns the short metric type for backend output: the
// registered type name stripped of its parameterization, e.g. "counter",
// "ewma", "histogram", "meter", "timer" or "gauge".
func TypeName(rm *metrics.RegisteredMetric) string {
	name := rm.Type()
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}
