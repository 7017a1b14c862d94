// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"fmt"
	"sort"
)

// ValueOptions control how plain metric values are published.
type ValueOptions struct {
	// Scale, when set, multiplies published values.
	Scale *float64
}

// Apply scales v when a scale factor is configured.
func (o ValueOptions) Apply(v Value) Value {
	if o.Scale == nil {
		return v
	}
	return v.Mul(FloatValue(*o.Scale))
}

// ScaleBy returns a scale factor for option literals.
func ScaleBy(f float64) *float64 {
	return &f
}

// MeterOptions control how meters are published.
type MeterOptions struct {
	ValueOptions

	// IncludeMean selects whether the lifetime mean is published.
	IncludeMean bool
}

// HistogramOptions control how histograms are published.
type HistogramOptions struct {
	ValueOptions

	// Quantiles lists the percentiles to publish, each in [0, 100].
	Quantiles []float64

	// IncludeCount selects whether the all-time count is published.
	IncludeCount bool
}

// TimerOptions control how timers are published: the histogram options for
// the duration distribution plus the meter options for the rates.
type TimerOptions struct {
	HistogramOptions

	// IncludeMean selects whether the rate block publishes the mean.
	IncludeMean bool

	// IncludeRates selects whether the rate block is published at all.
	IncludeRates bool
}

// PublishOptions bundle the per-kind publish options for a repository or a
// single metric.
type PublishOptions struct {
	Value     ValueOptions
	Meter     MeterOptions
	Histogram HistogramOptions
	Timer     TimerOptions
}

// DefaultQuantiles returns the quantiles published when none are
// configured.
func DefaultQuantiles() []float64 {
	return []float64{50, 90, 99}
}

// DefaultPublishOptions returns the options used when neither the metric
// nor the repository configures any.
func DefaultPublishOptions() *PublishOptions {
	return &PublishOptions{
		Meter: MeterOptions{IncludeMean: true},
		Histogram: HistogramOptions{
			Quantiles:    DefaultQuantiles(),
			IncludeCount: true,
		},
		Timer: TimerOptions{
			HistogramOptions: HistogramOptions{
				Quantiles:    DefaultQuantiles(),
				IncludeCount: true,
			},
			IncludeMean:  true,
			IncludeRates: true,
		},
	}
}

// NewQuantiles validates, sorts and deduplicates a quantile set. Values
// outside [0, 100] are rejected.
func NewQuantiles(qs ...float64) ([]float64, error) {
	out := make([]float64, 0, len(qs))
	for _, q := range qs {
		if q < 0 || q > 100 {
			return nil, fmt.Errorf("quantile %v out of range [0, 100]", q)
		}
		out = append(out, q)
	}
	sort.Float64s(out)
	n := 0
	for i, q := range out {
		if i > 0 && q == out[n-1] {
			continue
		}
		out[n] = q
		n++
	}
	return out[:n], nil
}

// QuantilesOrDefault returns the configured quantiles, or the default set
// when none are configured.
func (o HistogramOptions) QuantilesOrDefault() []float64 {
	if len(o.Quantiles) == 0 {
		return DefaultQuantiles()
	}
	return o.Quantiles
}
