package decorate

import (
	"context"
	"time"

	"github.com/jonwraymond/trialops/telemetry"
)

// MetricAttemptDuration is the histogram fed by the Benchmark decorator.
const MetricAttemptDuration = "trialops.attempt.duration_ms"

// Benchmark returns a factory for a decorator that times each attempt and
// records the duration into the sink, tagged by trial key and outcome.
func Benchmark(sink telemetry.Sink) Factory {
	if sink == nil {
		sink = telemetry.NewNoopSink()
	}
	return func() Decorator {
		return &benchmarkDecorator{sink: sink}
	}
}

type benchmarkDecorator struct {
	sink telemetry.Sink
}

func (d *benchmarkDecorator) Invoke(ctx context.Context, inv *Invocation, next Handler) (any, error) {
	start := time.Now()
	result, err := next(ctx, inv)
	elapsed := float64(time.Since(start).Milliseconds())

	// An expired context means the call already moved on without this
	// attempt; its duration must not reach the sink after the fact.
	if ctx.Err() != nil {
		return result, err
	}

	tags := telemetry.Tags{
		"service_type": inv.ServiceType,
		"method":       inv.Method,
		"trial":        inv.TrialKey,
		"success":      "true",
	}
	if err != nil {
		tags["success"] = "false"
	}
	d.sink.RecordHistogram(ctx, MetricAttemptDuration, elapsed, tags)

	return result, err
}
