package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Tags is an unordered set of string-keyed dimensions on a metric.
type Tags map[string]string

// Sink receives engine metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: recording is best-effort and must not panic; failures are
//   swallowed and must never affect call outcome.
type Sink interface {
	// IncrementCounter adds one to the named counter.
	IncrementCounter(ctx context.Context, name string, tags Tags)

	// RecordHistogram records a value into the named histogram.
	RecordHistogram(ctx context.Context, name string, value float64, tags Tags)

	// SetGauge sets the named gauge.
	SetGauge(ctx context.Context, name string, value float64, tags Tags)

	// RecordSummary records a value into the named summary.
	RecordSummary(ctx context.Context, name string, value float64, tags Tags)
}

// NoopSink discards every metric. Zero overhead when telemetry is disabled.
type NoopSink struct{}

// NewNoopSink creates a sink that discards everything.
func NewNoopSink() *NoopSink { return &NoopSink{} }

func (*NoopSink) IncrementCounter(context.Context, string, Tags)         {}
func (*NoopSink) RecordHistogram(context.Context, string, float64, Tags) {}
func (*NoopSink) SetGauge(context.Context, string, float64, Tags)        {}
func (*NoopSink) RecordSummary(context.Context, string, float64, Tags)   {}

// OTelSink records metrics through an OpenTelemetry meter. Instruments are
// created on first use and cached by name. Summaries are recorded as
// histograms; the OTel API has no native summary instrument.
type OTelSink struct {
	meter metric.Meter

	mu         sync.Mutex
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
	gauges     map[string]metric.Float64Gauge
}

// NewOTelSink creates a sink backed by the given meter.
func NewOTelSink(meter metric.Meter) *OTelSink {
	return &OTelSink{
		meter:      meter,
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
		gauges:     make(map[string]metric.Float64Gauge),
	}
}

// IncrementCounter adds one to the named counter.
func (s *OTelSink) IncrementCounter(ctx context.Context, name string, tags Tags) {
	s.mu.Lock()
	counter, ok := s.counters[name]
	if !ok {
		var err error
		counter, err = s.meter.Int64Counter(name)
		if err != nil {
			s.mu.Unlock()
			return
		}
		s.counters[name] = counter
	}
	s.mu.Unlock()

	counter.Add(ctx, 1, metric.WithAttributes(tagAttrs(tags)...))
}

// RecordHistogram records a value into the named histogram.
func (s *OTelSink) RecordHistogram(ctx context.Context, name string, value float64, tags Tags) {
	h, ok := s.histogram(name)
	if !ok {
		return
	}
	h.Record(ctx, value, metric.WithAttributes(tagAttrs(tags)...))
}

// SetGauge sets the named gauge.
func (s *OTelSink) SetGauge(ctx context.Context, name string, value float64, tags Tags) {
	s.mu.Lock()
	gauge, ok := s.gauges[name]
	if !ok {
		var err error
		gauge, err = s.meter.Float64Gauge(name)
		if err != nil {
			s.mu.Unlock()
			return
		}
		s.gauges[name] = gauge
	}
	s.mu.Unlock()

	gauge.Record(ctx, value, metric.WithAttributes(tagAttrs(tags)...))
}

// RecordSummary records a value into the named summary.
func (s *OTelSink) RecordSummary(ctx context.Context, name string, value float64, tags Tags) {
	h, ok := s.histogram(name)
	if !ok {
		return
	}
	h.Record(ctx, value, metric.WithAttributes(tagAttrs(tags)...))
}

func (s *OTelSink) histogram(name string) (metric.Float64Histogram, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.histograms[name]
	if !ok {
		var err error
		h, err = s.meter.Float64Histogram(name)
		if err != nil {
			return nil, false
		}
		s.histograms[name] = h
	}
	return h, true
}

func tagAttrs(tags Tags) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(tags))
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}

// Ensure both sinks implement Sink
var (
	_ Sink = (*NoopSink)(nil)
	_ Sink = (*OTelSink)(nil)
)
