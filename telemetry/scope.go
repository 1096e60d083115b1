package telemetry

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Metric names emitted by invocation scopes.
const (
	MetricInvocations = "trialops.invocations"
	MetricErrors      = "trialops.invocation.errors"
	MetricDurationMS  = "trialops.invocation.duration_ms"
	MetricFallbacks   = "trialops.fallbacks"
	MetricVariants    = "trialops.variants"
)

// RecorderConfig configures a Recorder. Any nil member is replaced by a
// no-op implementation.
type RecorderConfig struct {
	Metrics Sink
	Audit   AuditSink
	Logger  Logger
	Tracer  trace.Tracer
}

// Recorder fans invocation telemetry out to metrics, audit, logs and
// traces. A single Recorder serves all registrations.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: sink failures and panics are swallowed; telemetry never
//   affects call outcome.
type Recorder struct {
	metrics Sink
	audit   AuditSink
	logger  Logger
	tracer  trace.Tracer
}

// NewRecorder creates a recorder, substituting no-op implementations for
// any nil config member.
func NewRecorder(cfg RecorderConfig) *Recorder {
	if cfg.Metrics == nil {
		cfg.Metrics = NewNoopSink()
	}
	if cfg.Audit == nil {
		cfg.Audit = NewCompositeAuditSink()
	}
	if cfg.Logger == nil {
		cfg.Logger = NewNoopLogger()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = tracenoop.NewTracerProvider().Tracer("noop")
	}
	return &Recorder{
		metrics: cfg.Metrics,
		audit:   cfg.Audit,
		logger:  cfg.Logger,
		tracer:  cfg.Tracer,
	}
}

// StartInvocation opens a telemetry scope around one routed call. The
// returned context carries the invocation span.
func (r *Recorder) StartInvocation(ctx context.Context, serviceType, method, selectorName, preferredKey string, candidates []string) (context.Context, *Scope) {
	s := &Scope{
		recorder:     r,
		serviceType:  serviceType,
		method:       method,
		selectorName: selectorName,
		preferredKey: preferredKey,
		candidates:   candidates,
		start:        time.Now(),
	}

	// The scope is returned no matter what the tracer or audit sink do;
	// each risky call recovers on its own so a panic cannot leave the
	// caller with a nil scope.
	func() {
		defer swallow()
		ctx, s.span = r.tracer.Start(ctx, serviceType+"."+method,
			trace.WithAttributes(
				attribute.String("experiment.service_type", serviceType),
				attribute.String("experiment.method", method),
				attribute.String("experiment.selector", selectorName),
				attribute.String("experiment.preferred_key", preferredKey),
				attribute.StringSlice("experiment.candidates", candidates),
			))
	}()

	func() {
		defer swallow()
		event := NewEvent(serviceType, EventStarted)
		event.Detail = map[string]string{
			"method":     method,
			"preferred":  preferredKey,
			"candidates": strings.Join(candidates, ","),
		}
		_ = r.audit.Record(ctx, event)
	}()

	return ctx, s
}

// Scope is the per-invocation telemetry handle. All methods are safe to
// call after Close; they become no-ops.
type Scope struct {
	recorder     *Recorder
	serviceType  string
	method       string
	selectorName string
	preferredKey string
	candidates   []string
	span         trace.Span
	start        time.Time

	mu     sync.Mutex
	closed bool
}

// RecordVariant notes which trial variant selection produced and why.
func (s *Scope) RecordVariant(ctx context.Context, variant, source string) {
	if s.done() {
		return
	}
	defer swallow()

	s.recorder.metrics.IncrementCounter(ctx, MetricVariants, Tags{
		"service_type": s.serviceType,
		"variant":      variant,
		"source":       source,
	})
	if s.span != nil {
		s.span.AddEvent("variant-selected", trace.WithAttributes(
			attribute.String("variant", variant),
			attribute.String("source", source),
		))
	}

	event := NewEvent(s.serviceType, EventVariantSelected)
	event.Detail = map[string]string{"variant": variant, "source": source}
	_ = s.recorder.audit.Record(ctx, event)
}

// RecordFallback notes that a non-preferred candidate served the call.
func (s *Scope) RecordFallback(ctx context.Context, usedKey string) {
	if s.done() {
		return
	}
	defer swallow()

	s.recorder.metrics.IncrementCounter(ctx, MetricFallbacks, Tags{
		"service_type": s.serviceType,
		"used_key":     usedKey,
	})
	if s.span != nil {
		s.span.AddEvent("fallback-used", trace.WithAttributes(
			attribute.String("used_key", usedKey),
		))
	}
	s.recorder.logger.WithExperiment(s.serviceType).Warn(ctx, "fallback candidate used",
		Field{Key: "method", Value: s.method},
		Field{Key: "preferred", Value: s.preferredKey},
		Field{Key: "used", Value: usedKey},
	)

	event := NewEvent(s.serviceType, EventFallbackUsed)
	event.Detail = map[string]string{"used_key": usedKey}
	_ = s.recorder.audit.Record(ctx, event)
}

// RecordSuccess notes a successful invocation.
func (s *Scope) RecordSuccess(ctx context.Context) {
	if s.done() {
		return
	}
	defer swallow()

	s.recordOutcome(ctx, "")
	if s.span != nil {
		s.span.SetStatus(codes.Ok, "")
	}
	_ = s.recorder.audit.Record(ctx, NewEvent(s.serviceType, EventSucceeded))
}

// RecordFailure notes that the invocation failed after exhausting its
// candidates (or surfacing under the Throw policy).
func (s *Scope) RecordFailure(ctx context.Context, err error) {
	if s.done() {
		return
	}
	defer swallow()

	s.recordOutcome(ctx, err.Error())
	s.recorder.metrics.IncrementCounter(ctx, MetricErrors, Tags{
		"service_type": s.serviceType,
		"method":       s.method,
	})
	if s.span != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.recorder.logger.WithExperiment(s.serviceType).Error(ctx, "invocation failed",
		Field{Key: "method", Value: s.method},
		Field{Key: "error", Value: err.Error()},
	)

	event := NewEvent(s.serviceType, EventFailed)
	event.Detail = map[string]string{"error": err.Error()}
	_ = s.recorder.audit.Record(ctx, event)
}

// Close ends the scope. Idempotent; later Record calls are no-ops.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	defer swallow()
	if s.span != nil {
		s.span.End()
	}
}

func (s *Scope) done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Scope) recordOutcome(ctx context.Context, errMsg string) {
	tags := Tags{
		"service_type": s.serviceType,
		"method":       s.method,
		"success":      "true",
	}
	if errMsg != "" {
		tags["success"] = "false"
	}
	s.recorder.metrics.IncrementCounter(ctx, MetricInvocations, tags)
	s.recorder.metrics.RecordHistogram(ctx, MetricDurationMS,
		float64(time.Since(s.start).Milliseconds()), tags)
}

// swallow drops panics from misbehaving sinks. Telemetry must never fail
// the call it observes.
func swallow() {
	_ = recover()
}
