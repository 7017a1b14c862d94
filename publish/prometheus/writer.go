// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package prometheus publishes registry snapshots in the Prometheus text
// exposition format, and bridges the registry into a
// prometheus/client_golang registry for promhttp serving.
package prometheus

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/open-instrumentation/gometrics/internal/lifo"
	"github.com/open-instrumentation/gometrics/metrics"
	"github.com/open-instrumentation/gometrics/publish"
)

// Publisher renders every registered metric as Prometheus text lines.
type Publisher struct {
	*publish.Publisher
}

// NewPublisher returns a text publisher over registry.
func NewPublisher(registry *metrics.Registry) *Publisher {
	return &Publisher{Publisher: publish.New(registry)}
}

// buffers recycles render buffers across Write calls.
var buffers lifo.Stack[*bytes.Buffer]

func getBuffer() *bytes.Buffer {
	if b, ok := buffers.Pop(); ok {
		b.Reset()
		return b
	}
	return &bytes.Buffer{}
}

func putBuffer(b *bytes.Buffer) {
	buffers.Push(b)
}

// Write renders all registered metrics to w.
func (p *Publisher) Write(w io.Writer) error {
	buf := getBuffer()
	defer putBuffer(buf)

	p.VisitAll(func(path metrics.Path, rm *metrics.RegisteredMetric) {
		if path.Len() == 0 {
			return
		}
		options := p.EffectiveOptions(rm)
		header := false
		rm.Visit(func(tags metrics.Tags, snapshot metrics.Snapshot) {
			snapshot.Accept(&snapshotWriter{
				buf:     buf,
				path:    path,
				tags:    tags,
				options: options,
				header:  &header,
			})
		})
	})

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteOne renders the metric registered at path, silently writing
// nothing when the path is absent.
func (p *Publisher) WriteOne(w io.Writer, path metrics.Path) error {
	buf := getBuffer()
	defer putBuffer(buf)

	p.VisitOne(path, func(rm *metrics.RegisteredMetric) {
		options := p.EffectiveOptions(rm)
		header := false
		rm.Visit(func(tags metrics.Tags, snapshot metrics.Snapshot) {
			snapshot.Accept(&snapshotWriter{
				buf:     buf,
				path:    path,
				tags:    tags,
				options: options,
				header:  &header,
			})
		})
	})

	_, err := w.Write(buf.Bytes())
	return err
}

// snapshotWriter emits the textual representation of one (tags, snapshot)
// pair. The header flag makes the writer emit the metric header exactly
// once per registered metric.
type snapshotWriter struct {
	buf     *bytes.Buffer
	path    metrics.Path
	tags    metrics.Tags
	options *metrics.PublishOptions
	header  *bool
}

func (sw *snapshotWriter) writeHeader(format string, a ...any) {
	if *sw.header {
		return
	}
	*sw.header = true
	fmt.Fprintf(sw.buf, format, a...)
}

// VisitCumulative implements metrics.Visitor. Counters publish as untyped
// rather than counter since counters can go negative.
func (sw *snapshotWriter) VisitCumulative(s *metrics.CumulativeSnapshot) {
	sw.writeHeader("# TYPE %s untyped\n", formatName(sw.path))
	fmt.Fprintf(sw.buf, "%s{%s} %s\n", formatName(sw.path), formatTags(sw.tags), sw.options.Value.Apply(s.Value()))
}

// VisitAverage implements metrics.Visitor.
func (sw *snapshotWriter) VisitAverage(s *metrics.AverageSnapshot) {
	sw.writeHeader("# TYPE %s gauge\n", formatName(sw.path))
	fmt.Fprintf(sw.buf, "%s{%s} %s\n", formatName(sw.path), formatTags(sw.tags), sw.options.Value.Apply(s.Value()))
}

// VisitMeter implements metrics.Visitor.
func (sw *snapshotWriter) VisitMeter(s *metrics.MeterSnapshot) {
	sw.writeHeader("# TYPE %s gauge\n", formatName(sw.path))

	comma := ""
	if len(sw.tags) > 0 {
		comma = ","
	}
	if sw.options.Meter.IncludeMean {
		fmt.Fprintf(sw.buf, "%s{window=\"mean\"%s%s} %s\n",
			formatName(sw.path), comma, formatTags(sw.tags), sw.options.Meter.Apply(s.Value()))
	}
	for _, window := range sortedWindows(s.Rates()) {
		rate := s.Rates()[window]
		fmt.Fprintf(sw.buf, "%s{window=%q%s%s} %s\n",
			formatName(sw.path), formatWindow(window), comma, formatTags(sw.tags), sw.options.Meter.Apply(rate))
	}
}

// VisitHistogram implements metrics.Visitor.
func (sw *snapshotWriter) VisitHistogram(s *metrics.HistogramSnapshot) {
	sw.writeHeader("# TYPE %s summary\n", formatName(sw.path))

	comma := ""
	if len(sw.tags) > 0 {
		comma = ","
	}
	opts := sw.options.Histogram
	if opts.IncludeCount {
		fmt.Fprintf(sw.buf, "%s_count{%s} %s\n",
			formatName(sw.path), formatTags(sw.tags), opts.Apply(metrics.IntValue(int64(s.Count()))))
	}
	for _, q := range opts.QuantilesOrDefault() {
		fmt.Fprintf(sw.buf, "%s{quantile=\"%s\"%s%s} %s\n",
			formatName(sw.path), formatQuantile(q), comma, formatTags(sw.tags), opts.Apply(s.Quantile(q/100)))
	}
}

// VisitTimer implements metrics.Visitor. Durations publish in
// microseconds.
func (sw *snapshotWriter) VisitTimer(s *metrics.TimerSnapshot) {
	name := formatName(sw.path)
	sw.writeHeader("# HELP %s %s in microseconds\n# TYPE %s summary\n",
		name, sw.path.Join("/"), name)

	comma := ""
	if len(sw.tags) > 0 {
		comma = ","
	}
	opts := sw.options.Timer
	if opts.IncludeCount {
		fmt.Fprintf(sw.buf, "%s_count{%s} %s\n",
			name, formatTags(sw.tags), opts.Apply(metrics.IntValue(int64(s.Count()))))
	}
	fmt.Fprintf(sw.buf, "%s_mean{%s} %s\n",
		name, formatTags(sw.tags), opts.Apply(asMicroseconds(s.Mean())))
	for _, q := range opts.QuantilesOrDefault() {
		fmt.Fprintf(sw.buf, "%s{quantile=\"%s\"%s%s} %s\n",
			name, formatQuantile(q), comma, formatTags(sw.tags), opts.Apply(asMicroseconds(s.Quantile(q/100))))
	}

	if !opts.IncludeRates {
		return
	}
	rates := s.RateMeter()
	if opts.IncludeMean {
		fmt.Fprintf(sw.buf, "%s:rates{window=\"mean\"%s%s} %s\n",
			name, comma, formatTags(sw.tags), opts.Apply(rates.Value()))
	}
	for _, window := range sortedWindows(rates.Rates()) {
		rate := rates.Rates()[window]
		fmt.Fprintf(sw.buf, "%s:rates{window=%q%s%s} %s\n",
			name, formatWindow(window), comma, formatTags(sw.tags), opts.Apply(rate))
	}
}

// asMicroseconds converts a nanosecond-based sample to whole microseconds.
func asMicroseconds(v metrics.Value) metrics.Value {
	return metrics.IntValue(v.Duration().Microseconds())
}

func formatQuantile(q float64) string {
	return strconv.FormatFloat(q/100, 'g', -1, 64)
}

// formatNameElement maps every non-alphanumeric byte to an underscore.
func formatNameElement(buf *bytes.Buffer, element string) {
	for i := 0; i < len(element); i++ {
		c := element[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			buf.WriteByte(c)
		default:
			buf.WriteByte('_')
		}
	}
}

// formatName renders a metric path as a Prometheus identifier: sanitized
// elements joined with ':', with a leading underscore when the first
// element starts with a digit.
func formatName(path metrics.Path) string {
	var buf bytes.Buffer
	for i, element := range path.Elements() {
		if i == 0 {
			if len(element) > 0 && element[0] >= '0' && element[0] <= '9' {
				buf.WriteByte('_')
			}
		} else {
			buf.WriteByte(':')
		}
		formatNameElement(&buf, element)
	}
	return buf.String()
}

// formatTags renders a tag set as sorted key="value" pairs with quotes in
// values escaped.
func formatTags(tags metrics.Tags) string {
	if len(tags) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for i, k := range keys {
		if i > 0 {
			buf.WriteString(", ")
		}
		formatNameElement(&buf, k)
		buf.WriteString("=\"")
		v := tags[k].String()
		for j := 0; j < len(v); j++ {
			if v[j] == '"' {
				buf.WriteString("\\\"")
			} else {
				buf.WriteByte(v[j])
			}
		}
		buf.WriteByte('"')
	}
	return buf.String()
}

// formatWindow renders a duration in its largest fitting unit.
func formatWindow(d time.Duration) string {
	switch {
	case d >= time.Hour:
		return strconv.FormatInt(int64(d/time.Hour), 10) + "hr"
	case d >= time.Minute:
		return strconv.FormatInt(int64(d/time.Minute), 10) + "min"
	case d >= time.Second:
		return strconv.FormatInt(int64(d/time.Second), 10) + "sec"
	case d >= time.Millisecond:
		return strconv.FormatInt(int64(d/time.Millisecond), 10) + "msec"
	case d >= time.Microsecond:
		return strconv.FormatInt(int64(d/time.Microsecond), 10) + "usec"
	}
	return strconv.FormatInt(int64(d), 10) + "nsec"
}

func sortedWindows(rates map[time.Duration]metrics.Value) []time.Duration {
	windows := make([]time.Duration, 0, len(rates))
	for w := range rates {
		windows = append(windows, w)
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i] < windows[j] })
	return windows
}
