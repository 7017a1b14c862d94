// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"fmt"
	"sync"

	"github.com/open-instrumentation/gometrics/logging"
	"github.com/open-instrumentation/gometrics/util"
)

// publishOptionsKey keys the PublishOptions record in the publisher data
// tables.
const publishOptionsKey = "publish_options"

// TypeMismatchError reports a registry action performed with the wrong
// metric type for an already registered path.
type TypeMismatchError struct {
	// Existing is the type name already registered at the path.
	Existing string
	// Desired is the type name the caller asked for.
	Desired string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("existing registered metric type %q does not match desired type %q", e.Existing, e.Desired)
}

// Registry stores registered metrics by path and hands out shared live
// instances per tag set. Registered metrics live for the lifetime of the
// registry; they are never removed.
type Registry struct {
	mu      sync.Mutex
	metrics *util.HashMap[Path, *RegisteredMetric]

	datamu sync.Mutex
	data   map[string]any

	logger logging.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger routes the registry's (cold path) logging to logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		metrics: util.NewHashMap[Path, *RegisteredMetric](Path.Equal, Path.Hash),
		data:    map[string]any{},
		logger:  logging.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// getOrAdd returns the registered metric for path, creating the slot on
// first registration and failing when the existing slot holds a different
// type.
func (r *Registry) getOrAdd(path Path, typeName string) (*RegisteredMetric, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rm, ok := r.metrics.Get(path); ok {
		if rm.Type() != typeName {
			return nil, &TypeMismatchError{Existing: rm.Type(), Desired: typeName}
		}
		return rm, nil
	}

	rm := newRegisteredMetric(typeName)
	r.metrics.Put(path, rm)
	r.logger.Debug("Registered metric %v of type %v.", path, typeName)
	return rm, nil
}

// Metric returns the registered metric at path, or nil when the path is
// not registered.
func (r *Registry) Metric(path Path) *RegisteredMetric {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, _ := r.metrics.Get(path)
	return rm
}

// VisitRegisteredMetrics runs handler on every registered metric under the
// registry's path-map lock. The handler may call Visit or Aggregate on the
// registered metric (each takes the metric's own lock) but must not
// re-enter the registry.
func (r *Registry) VisitRegisteredMetrics(handler func(Path, *RegisteredMetric)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.metrics.Iter(func(path Path, rm *RegisteredMetric) bool {
		handler(path, rm)
		return false
	})
}

// Counter returns the counter registered at path with tags, creating it
// with the initial value on first access. The initial value is ignored
// when the counter already exists.
func (r *Registry) Counter(path Path, initial int64, tags Tags) (*Counter, error) {
	rm, err := r.getOrAdd(path, "counter")
	if err != nil {
		return nil, err
	}
	m := rm.child(tags, func() Metric { return NewCounter(initial) })
	c, ok := m.(*Counter)
	if !ok {
		return nil, &TypeMismatchError{Existing: m.TypeName(), Desired: "counter"}
	}
	return c, nil
}

// EWMA returns the moving average registered at path with tags. Window and
// interval participate in the registered type, so re-registering with
// different parameters is a type mismatch.
func (r *Registry) EWMA(path Path, window, interval Period, tags Tags) (*EWMA, error) {
	name := ewmaName(window, interval)
	rm, err := r.getOrAdd(path, name)
	if err != nil {
		return nil, err
	}
	m := rm.child(tags, func() Metric { return NewEWMA(window, interval) })
	e, ok := m.(*EWMA)
	if !ok {
		return nil, &TypeMismatchError{Existing: m.TypeName(), Desired: name}
	}
	return e, nil
}

// Gauge returns the provider-backed gauge registered at path with tags.
// The provider is only used when this call creates the instance.
func (r *Registry) Gauge(path Path, agg GaugeAggregation, provider func() Value, tags Tags) (*Gauge, error) {
	name := gaugeName("func", agg)
	rm, err := r.getOrAdd(path, name)
	if err != nil {
		return nil, err
	}
	m := rm.child(tags, func() Metric { return NewGauge(agg, provider) })
	g, ok := m.(*Gauge)
	if !ok {
		return nil, &TypeMismatchError{Existing: m.TypeName(), Desired: name}
	}
	return g, nil
}

// SettableGauge returns the owned-value gauge registered at path with
// tags. The initial value is ignored when the gauge already exists.
func (r *Registry) SettableGauge(path Path, agg GaugeAggregation, initial Value, tags Tags) (*SettableGauge, error) {
	name := gaugeName("settable", agg)
	rm, err := r.getOrAdd(path, name)
	if err != nil {
		return nil, err
	}
	m := rm.child(tags, func() Metric { return NewSettableGauge(agg, initial) })
	g, ok := m.(*SettableGauge)
	if !ok {
		return nil, &TypeMismatchError{Existing: m.TypeName(), Desired: name}
	}
	return g, nil
}

// Histogram returns the histogram registered at path with tags. The
// reservoir is consumed when this call creates the instance and discarded
// otherwise; its shape participates in the registered type.
func (r *Registry) Histogram(path Path, reservoir Reservoir, tags Tags) (*Histogram, error) {
	name := histogramName(reservoir.TypeName())
	rm, err := r.getOrAdd(path, name)
	if err != nil {
		return nil, err
	}
	m := rm.child(tags, func() Metric { return NewHistogram(reservoir) })
	h, ok := m.(*Histogram)
	if !ok {
		return nil, &TypeMismatchError{Existing: m.TypeName(), Desired: name}
	}
	return h, nil
}

// Meter returns the meter registered at path with tags. The window set is
// canonicalized, so the same windows in any order alias; a different set
// is a type mismatch.
func (r *Registry) Meter(path Path, interval Period, tags Tags, windows ...Period) (*Meter, error) {
	name := meterName(interval, canonicalWindows(windows))
	rm, err := r.getOrAdd(path, name)
	if err != nil {
		return nil, err
	}
	m := rm.child(tags, func() Metric { return NewMeter(interval, windows...) })
	mt, ok := m.(*Meter)
	if !ok {
		return nil, &TypeMismatchError{Existing: m.TypeName(), Desired: name}
	}
	return mt, nil
}

// Timer returns the timer registered at path with tags. Interval,
// reservoir shape and the canonical window set all participate in the
// registered type.
func (r *Registry) Timer(path Path, interval Period, reservoir Reservoir, tags Tags, windows ...Period) (*Timer, error) {
	name := timerName(interval, reservoir.TypeName(), canonicalWindows(windows))
	rm, err := r.getOrAdd(path, name)
	if err != nil {
		return nil, err
	}
	m := rm.child(tags, func() Metric { return NewTimer(interval, reservoir, windows...) })
	t, ok := m.(*Timer)
	if !ok {
		return nil, &TypeMismatchError{Existing: m.TypeName(), Desired: name}
	}
	return t, nil
}

// RegisterExisting attaches an already-constructed metric at path with
// tags. It reports whether the metric was stored; false means a prior
// instance already held the slot. Registering against a path of a
// different type fails.
func (r *Registry) RegisterExisting(path Path, m Metric, tags Tags) (bool, error) {
	if m == nil {
		return false, nil
	}
	rm, err := r.getOrAdd(path, m.TypeName())
	if err != nil {
		return false, err
	}
	return rm.addExisting(tags, m), nil
}

// PublishOptions returns the repository-wide publish options, or the
// static defaults when none are set.
func (r *Registry) PublishOptions() *PublishOptions {
	if o, ok := r.TryData(publishOptionsKey); ok {
		return o.(*PublishOptions)
	}
	return DefaultPublishOptions()
}

// SetPublishOptions replaces the repository-wide publish options.
func (r *Registry) SetPublishOptions(opts *PublishOptions) {
	r.datamu.Lock()
	defer r.datamu.Unlock()
	r.data[publishOptionsKey] = opts
}

// SetMetricPublishOptions overrides the publish options for the metric at
// path. When the path is not registered, the call does nothing.
func (r *Registry) SetMetricPublishOptions(path Path, opts *PublishOptions) {
	rm := r.Metric(path)
	if rm == nil {
		return
	}
	rm.setData(publishOptionsKey, opts)
}

// MetricPublishOptions returns the per-metric publish option override at
// path, if any.
func (r *Registry) MetricPublishOptions(path Path) (*PublishOptions, bool) {
	rm := r.Metric(path)
	if rm == nil {
		return nil, false
	}
	o, ok := rm.TryData(publishOptionsKey)
	if !ok {
		return nil, false
	}
	return o.(*PublishOptions), true
}

// Data returns the registry-wide publisher data under key, invoking build
// to create it on first access.
func (r *Registry) Data(key string, build func() any) any {
	r.datamu.Lock()
	defer r.datamu.Unlock()

	if d, ok := r.data[key]; ok {
		return d
	}
	d := build()
	r.data[key] = d
	return d
}

// TryData returns the registry-wide publisher data under key, if any.
func (r *Registry) TryData(key string) (any, bool) {
	r.datamu.Lock()
	defer r.datamu.Unlock()

	d, ok := r.data[key]
	return d, ok
}

// Type name builders shared by the metric kinds and the registry's
// create-or-fetch lookups.

func ewmaName(window, interval Period) string {
	return "ewma[" + window.String() + "|" + interval.String() + "]"
}

func gaugeName(kind string, agg GaugeAggregation) string {
	return "gauge[" + kind + ";" + agg.String() + "]"
}

func histogramName(reservoir string) string {
	return "histogram[" + reservoir + "]"
}

func meterName(interval Period, windows []Period) string {
	return "meter[" + interval.String() + ";" + formatWindows(windows) + "]"
}

func timerName(interval Period, reservoir string, windows []Period) string {
	return "timer[" + interval.String() + ";" + reservoir + ";" + formatWindows(windows) + "]"
}
