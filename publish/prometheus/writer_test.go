// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package prometheus

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/open-instrumentation/gometrics/metrics"
)

func TestWriteCounter(t *testing.T) {
	r := metrics.New()
	c, err := r.Counter(metrics.NewPath("http", "requests"), 0, metrics.Tags{
		"host": metrics.StringValue("web-1"),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	c.Incr(5)

	var buf bytes.Buffer
	if err := NewPublisher(r).Write(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "# TYPE http:requests untyped\n") {
		t.Fatalf("Expected an untyped header, got:\n%s", out)
	}
	if !strings.Contains(out, `http:requests{host="web-1"} 5`) {
		t.Fatalf("Expected the counter line, got:\n%s", out)
	}
}

func TestWriteNameSanitization(t *testing.T) {
	r := metrics.New()
	if _, err := r.Counter(metrics.NewPath("2xx", "rate-limit"), 0, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := NewPublisher(r).Write(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "_2xx:rate_limit{") {
		t.Fatalf("Expected sanitized identifier, got:\n%s", buf.String())
	}
}

func TestWriteTagValueEscaping(t *testing.T) {
	r := metrics.New()
	if _, err := r.Counter(metrics.NewPath("c"), 0, metrics.Tags{
		"label": metrics.StringValue(`say "hi"`),
	}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := NewPublisher(r).Write(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `label="say \"hi\""`) {
		t.Fatalf("Expected escaped quotes, got:\n%s", buf.String())
	}
}

func TestWriteHistogram(t *testing.T) {
	r := metrics.New()
	h, err := r.Histogram(metrics.NewPath("latency"), metrics.NewSimpleReservoir(8), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i := int64(1); i <= 8; i++ {
		h.UpdateInt64(i * 10)
	}

	var buf bytes.Buffer
	if err := NewPublisher(r).Write(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "# TYPE latency summary\n") {
		t.Fatalf("Expected a summary header, got:\n%s", out)
	}
	if !strings.Contains(out, "latency_count{} 8\n") {
		t.Fatalf("Expected the count line, got:\n%s", out)
	}
	for _, q := range []string{"0.5", "0.9", "0.99"} {
		if !strings.Contains(out, `latency{quantile="`+q+`"`) {
			t.Fatalf("Expected a quantile %v line, got:\n%s", q, out)
		}
	}
}

func TestWriteHistogramCountGated(t *testing.T) {
	r := metrics.New()
	if _, err := r.Histogram(metrics.NewPath("latency"), metrics.NewSimpleReservoir(8), nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	opts := metrics.DefaultPublishOptions()
	opts.Histogram.IncludeCount = false
	r.SetPublishOptions(opts)

	var buf bytes.Buffer
	if err := NewPublisher(r).Write(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "latency_count") {
		t.Fatalf("Expected the count line to be gated off, got:\n%s", buf.String())
	}
}

func TestWriteMeterWindows(t *testing.T) {
	r := metrics.New()
	m, err := r.Meter(metrics.NewPath("rate"), metrics.Seconds(1), nil, metrics.Minutes(1), metrics.Minutes(5))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	m.Mark(3)

	var buf bytes.Buffer
	if err := NewPublisher(r).Write(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, `rate{window="mean"}`) {
		t.Fatalf("Expected the mean line, got:\n%s", out)
	}
	if !strings.Contains(out, `rate{window="1min"}`) || !strings.Contains(out, `rate{window="5min"}`) {
		t.Fatalf("Expected one line per window, got:\n%s", out)
	}
}

func TestWriteTimer(t *testing.T) {
	r := metrics.New()
	tm, err := r.Timer(metrics.NewPath("op", "duration"), metrics.Seconds(1),
		metrics.NewSimpleReservoir(8), nil, metrics.Minutes(1))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, us := range []int64{10, 20, 40, 80} {
		tm.Update(time.Duration(us) * time.Microsecond)
	}

	var buf bytes.Buffer
	if err := NewPublisher(r).Write(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "# HELP op:duration op/duration in microseconds\n") {
		t.Fatalf("Expected the help header, got:\n%s", out)
	}
	if !strings.Contains(out, "op:duration_count{} 4\n") {
		t.Fatalf("Expected the count line, got:\n%s", out)
	}
	if !strings.Contains(out, "op:duration_mean{}") {
		t.Fatalf("Expected the mean line, got:\n%s", out)
	}
	if !strings.Contains(out, `op:duration:rates{window="mean"}`) {
		t.Fatalf("Expected the rate block, got:\n%s", out)
	}
	if !strings.Contains(out, `op:duration:rates{window="1min"}`) {
		t.Fatalf("Expected the per-window rate line, got:\n%s", out)
	}
}

func TestWriteScaleFactor(t *testing.T) {
	r := metrics.New()
	c, err := r.Counter(metrics.NewPath("bytes"), 0, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	c.Incr(1000)

	opts := metrics.DefaultPublishOptions()
	opts.Value.Scale = metrics.ScaleBy(0.001)
	r.SetPublishOptions(opts)

	var buf bytes.Buffer
	if err := NewPublisher(r).Write(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "bytes{} 1\n") {
		t.Fatalf("Expected the scaled value, got:\n%s", buf.String())
	}
}

func TestWriteOneAbsentPath(t *testing.T) {
	r := metrics.New()
	var buf bytes.Buffer
	if err := NewPublisher(r).WriteOne(&buf, metrics.NewPath("absent")); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("Expected no output for an absent path, got:\n%s", buf.String())
	}
}

func TestWriteHeaderOncePerMetric(t *testing.T) {
	r := metrics.New()
	for _, host := range []string{"a", "b"} {
		if _, err := r.Counter(metrics.NewPath("requests"), 0, metrics.Tags{
			"host": metrics.StringValue(host),
		}); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := NewPublisher(r).Write(&buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := strings.Count(buf.String(), "# TYPE requests untyped"); got != 1 {
		t.Fatalf("Expected exactly one header but got %v:\n%s", got, buf.String())
	}
}
