// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewQuantilesValidates(t *testing.T) {
	if _, err := NewQuantiles(50, 101); err == nil {
		t.Fatalf("Expected a quantile above 100 to be rejected")
	}
	if _, err := NewQuantiles(-1); err == nil {
		t.Fatalf("Expected a negative quantile to be rejected")
	}
}

func TestNewQuantilesCanonicalizes(t *testing.T) {
	qs, err := NewQuantiles(99, 50, 90, 50)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff([]float64{50, 90, 99}, qs); diff != "" {
		t.Fatalf("Unexpected quantiles (-want +got):\n%s", diff)
	}
}

func TestDefaultPublishOptions(t *testing.T) {
	opts := DefaultPublishOptions()
	if diff := cmp.Diff([]float64{50, 90, 99}, opts.Histogram.Quantiles); diff != "" {
		t.Fatalf("Unexpected default quantiles (-want +got):\n%s", diff)
	}
	if !opts.Meter.IncludeMean || !opts.Histogram.IncludeCount || !opts.Timer.IncludeRates {
		t.Fatalf("Unexpected defaults: %+v", opts)
	}
	if opts.Value.Scale != nil {
		t.Fatalf("Expected no default scale factor")
	}
}

func TestValueOptionsScale(t *testing.T) {
	var o ValueOptions
	if got := o.Apply(IntValue(10)).Int64(); got != 10 {
		t.Fatalf("Expected unscaled value but got %v", got)
	}

	o.Scale = ScaleBy(0.5)
	if got := o.Apply(IntValue(10)).Float64(); got != 5 {
		t.Fatalf("Expected scaled value 5 but got %v", got)
	}
}

func TestQuantilesOrDefault(t *testing.T) {
	var o HistogramOptions
	if diff := cmp.Diff(DefaultQuantiles(), o.QuantilesOrDefault()); diff != "" {
		t.Fatalf("Unexpected fallback quantiles (-want +got):\n%s", diff)
	}
	o.Quantiles = []float64{75}
	if diff := cmp.Diff([]float64{75}, o.QuantilesOrDefault()); diff != "" {
		t.Fatalf("Unexpected quantiles (-want +got):\n%s", diff)
	}
}
