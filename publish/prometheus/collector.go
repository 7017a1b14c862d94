// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/open-instrumentation/gometrics/metrics"
	"github.com/open-instrumentation/gometrics/publish"
)

// Collector bridges a registry into a prometheus/client_golang registry so
// the standard promhttp handler can serve it. It is an unchecked
// collector: descriptors are derived from the live registry at collect
// time.
type Collector struct {
	publisher *publish.Publisher
}

// NewCollector returns a collector over registry.
func NewCollector(registry *metrics.Registry) *Collector {
	return &Collector{publisher: publish.New(registry)}
}

// Describe implements prometheus.Collector. Sending no descriptors marks
// the collector unchecked, which fits a registry whose metric set grows at
// runtime.
func (c *Collector) Describe(chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.publisher.VisitAll(func(path metrics.Path, rm *metrics.RegisteredMetric) {
		if path.Len() == 0 {
			return
		}
		name := formatName(path)
		help := path.Join("/")
		options := c.publisher.EffectiveOptions(rm)
		rm.Visit(func(tags metrics.Tags, snapshot metrics.Snapshot) {
			snapshot.Accept(&collectVisitor{
				ch:      ch,
				name:    name,
				help:    help,
				labels:  constLabels(tags),
				options: options,
			})
		})
	})
}

type collectVisitor struct {
	ch      chan<- prometheus.Metric
	name    string
	help    string
	labels  prometheus.Labels
	options *metrics.PublishOptions
}

func (v *collectVisitor) desc(name string, extra prometheus.Labels) *prometheus.Desc {
	labels := make(prometheus.Labels, len(v.labels)+len(extra))
	for k, lv := range v.labels {
		labels[k] = lv
	}
	for k, lv := range extra {
		labels[k] = lv
	}
	return prometheus.NewDesc(name, v.help, nil, labels)
}

// VisitCumulative implements metrics.Visitor.
func (v *collectVisitor) VisitCumulative(s *metrics.CumulativeSnapshot) {
	v.ch <- prometheus.MustNewConstMetric(v.desc(v.name, nil),
		prometheus.UntypedValue, v.options.Value.Apply(s.Value()).Float64())
}

// VisitAverage implements metrics.Visitor.
func (v *collectVisitor) VisitAverage(s *metrics.AverageSnapshot) {
	v.ch <- prometheus.MustNewConstMetric(v.desc(v.name, nil),
		prometheus.GaugeValue, v.options.Value.Apply(s.Value()).Float64())
}

// VisitMeter implements metrics.Visitor.
func (v *collectVisitor) VisitMeter(s *metrics.MeterSnapshot) {
	opts := v.options.Meter
	if opts.IncludeMean {
		v.ch <- prometheus.MustNewConstMetric(
			v.desc(v.name, prometheus.Labels{"window": "mean"}),
			prometheus.GaugeValue, opts.Apply(s.Value()).Float64())
	}
	for window, rate := range s.Rates() {
		v.ch <- prometheus.MustNewConstMetric(
			v.desc(v.name, prometheus.Labels{"window": formatWindow(window)}),
			prometheus.GaugeValue, opts.Apply(rate).Float64())
	}
}

// VisitHistogram implements metrics.Visitor.
func (v *collectVisitor) VisitHistogram(s *metrics.HistogramSnapshot) {
	opts := v.options.Histogram
	quantiles := make(map[float64]float64)
	for _, q := range opts.QuantilesOrDefault() {
		quantiles[q/100] = opts.Apply(s.Quantile(q / 100)).Float64()
	}
	sum := s.Mean().Float64() * float64(s.Count())
	v.ch <- prometheus.MustNewConstSummary(v.desc(v.name, nil),
		s.Count(), sum, quantiles)
}

// VisitTimer implements metrics.Visitor. Durations export in
// microseconds.
func (v *collectVisitor) VisitTimer(s *metrics.TimerSnapshot) {
	opts := v.options.Timer
	quantiles := make(map[float64]float64)
	for _, q := range opts.QuantilesOrDefault() {
		quantiles[q/100] = opts.Apply(asMicroseconds(s.Quantile(q / 100))).Float64()
	}
	sum := float64(asMicroseconds(s.Mean()).Int64()) * float64(s.Count())
	v.ch <- prometheus.MustNewConstSummary(v.desc(v.name, nil),
		s.Count(), sum, quantiles)

	if !opts.IncludeRates {
		return
	}
	rates := s.RateMeter()
	if opts.IncludeMean {
		v.ch <- prometheus.MustNewConstMetric(
			v.desc(v.name+":rates", prometheus.Labels{"window": "mean"}),
			prometheus.GaugeValue, opts.Apply(rates.Value()).Float64())
	}
	for window, rate := range rates.Rates() {
		v.ch <- prometheus.MustNewConstMetric(
			v.desc(v.name+":rates", prometheus.Labels{"window": formatWindow(window)}),
			prometheus.GaugeValue, opts.Apply(rate).Float64())
	}
}

func constLabels(tags metrics.Tags) prometheus.Labels {
	labels := make(prometheus.Labels, len(tags))
	for k, v := range tags {
		labels[sanitizeLabel(k)] = v.String()
	}
	return labels
}

func sanitizeLabel(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out[i] = c
		default:
			out[i] = '_'
		}
	}
	if len(out) > 0 && out[0] >= '0' && out[0] <= '9' {
		return "_" + string(out)
	}
	return string(out)
}
