package telemetry

import (
	"context"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"
)

func TestNoopSink(t *testing.T) {
	sink := NewNoopSink()
	ctx := context.Background()

	// Must be inert under any call pattern.
	sink.IncrementCounter(ctx, "x", nil)
	sink.RecordHistogram(ctx, "x", 1.5, Tags{"a": "b"})
	sink.SetGauge(ctx, "x", 2, nil)
	sink.RecordSummary(ctx, "x", 3, nil)
}

func TestOTelSink(t *testing.T) {
	sink := NewOTelSink(noop.NewMeterProvider().Meter("test"))
	ctx := context.Background()

	sink.IncrementCounter(ctx, "trialops.invocations", Tags{"service_type": "svc"})
	sink.IncrementCounter(ctx, "trialops.invocations", Tags{"service_type": "svc"})
	sink.RecordHistogram(ctx, "trialops.invocation.duration_ms", 12.5, nil)
	sink.SetGauge(ctx, "trialops.active", 1, nil)
	sink.RecordSummary(ctx, "trialops.latency", 5, Tags{"trial": "ml"})

	// Instruments are cached by name.
	if len(sink.counters) != 1 {
		t.Errorf("len(counters) = %d, want 1", len(sink.counters))
	}
	if len(sink.histograms) != 2 {
		t.Errorf("len(histograms) = %d, want 2 (histogram + summary)", len(sink.histograms))
	}
	if len(sink.gauges) != 1 {
		t.Errorf("len(gauges) = %d, want 1", len(sink.gauges))
	}
}

func TestOTelSink_Concurrent(t *testing.T) {
	sink := NewOTelSink(noop.NewMeterProvider().Meter("test"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sink.IncrementCounter(context.Background(), "shared.counter", Tags{"n": "1"})
				sink.RecordHistogram(context.Background(), "shared.hist", float64(j), nil)
			}
		}()
	}
	wg.Wait()

	if len(sink.counters) != 1 {
		t.Errorf("len(counters) = %d, want 1", len(sink.counters))
	}
}

func TestProviderConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"minimal", Config{ServiceName: "svc"}, false},
		{"missing service name", Config{}, true},
		{"bad tracing exporter", Config{
			ServiceName: "svc",
			Tracing:     TracingConfig{Enabled: true, Exporter: "carrier-pigeon"},
		}, true},
		{"prometheus tracing rejected", Config{
			ServiceName: "svc",
			Tracing:     TracingConfig{Enabled: true, Exporter: "prometheus"},
		}, true},
		{"bad sample pct", Config{
			ServiceName: "svc",
			Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.5},
		}, true},
		{"bad metrics exporter", Config{
			ServiceName: "svc",
			Metrics:     MetricsConfig{Enabled: true, Exporter: "carrier-pigeon"},
		}, true},
		{"valid full", Config{
			ServiceName: "svc",
			Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 0.5},
			Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
			Logging:     LoggingConfig{Enabled: true, Level: "debug"},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
