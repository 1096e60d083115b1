package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// countingSink counts calls per metric name.
type countingSink struct {
	NoopSink

	mu     sync.Mutex
	counts map[string]int
}

func newCountingSink() *countingSink {
	return &countingSink{counts: make(map[string]int)}
}

func (s *countingSink) IncrementCounter(ctx context.Context, name string, tags Tags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[name]++
}

func (s *countingSink) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[name]
}

func startTestScope(t *testing.T) (*countingSink, *MemoryAuditSink, context.Context, *Scope) {
	t.Helper()
	sink := newCountingSink()
	audit := NewMemoryAuditSink()
	recorder := NewRecorder(RecorderConfig{Metrics: sink, Audit: audit})
	ctx, scope := recorder.StartInvocation(context.Background(),
		"search.Ranker", "Rank", "search.ranker", "ml", []string{"ml", "control"})
	return sink, audit, ctx, scope
}

func TestScope_SuccessPath(t *testing.T) {
	sink, audit, ctx, scope := startTestScope(t)
	defer scope.Close()

	scope.RecordVariant(ctx, "ml", "sticky")
	scope.RecordSuccess(ctx)

	if got := sink.count(MetricVariants); got != 1 {
		t.Errorf("variant count = %d, want 1", got)
	}
	if got := sink.count(MetricInvocations); got != 1 {
		t.Errorf("invocation count = %d, want 1", got)
	}
	if got := sink.count(MetricErrors); got != 0 {
		t.Errorf("error count = %d, want 0", got)
	}

	types := eventTypes(audit)
	want := []EventType{EventStarted, EventVariantSelected, EventSucceeded}
	if len(types) != len(want) {
		t.Fatalf("audit events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, types[i], want[i])
		}
	}
}

func TestScope_FailureAndFallback(t *testing.T) {
	sink, audit, ctx, scope := startTestScope(t)
	defer scope.Close()

	scope.RecordFallback(ctx, "control")
	scope.RecordFailure(ctx, errors.New("all candidates failed"))

	if got := sink.count(MetricFallbacks); got != 1 {
		t.Errorf("fallback count = %d, want 1", got)
	}
	if got := sink.count(MetricErrors); got != 1 {
		t.Errorf("error count = %d, want 1", got)
	}

	types := eventTypes(audit)
	want := []EventType{EventStarted, EventFallbackUsed, EventFailed}
	if len(types) != len(want) {
		t.Fatalf("audit events = %v, want %v", types, want)
	}
}

func TestScope_CloseIdempotent(t *testing.T) {
	sink, _, ctx, scope := startTestScope(t)

	scope.Close()
	scope.Close()
	scope.Close()

	// Record after close is a no-op.
	scope.RecordSuccess(ctx)
	if got := sink.count(MetricInvocations); got != 0 {
		t.Errorf("invocation count after close = %d, want 0", got)
	}
}

// panickingSink blows up on every call; the scope must swallow it.
type panickingSink struct{ NoopSink }

func (panickingSink) IncrementCounter(ctx context.Context, name string, tags Tags) {
	panic("sink exploded")
}

func TestScope_SwallowsSinkPanics(t *testing.T) {
	recorder := NewRecorder(RecorderConfig{Metrics: &panickingSink{}})
	ctx, scope := recorder.StartInvocation(context.Background(), "svc", "Do", "svc", "a", []string{"a"})
	defer scope.Close()

	// Must not panic.
	scope.RecordVariant(ctx, "a", "default")
	scope.RecordSuccess(ctx)
}

// panickingAuditSink blows up on every Record call.
type panickingAuditSink struct{}

func (panickingAuditSink) Record(ctx context.Context, event Event) error {
	panic("audit sink misbehaving")
}

func TestStartInvocation_SurvivesAuditPanic(t *testing.T) {
	recorder := NewRecorder(RecorderConfig{Audit: panickingAuditSink{}})

	ctx, scope := recorder.StartInvocation(context.Background(), "svc", "Do", "svc", "a", []string{"a"})
	if scope == nil {
		t.Fatal("StartInvocation() scope = nil, want usable scope despite sink panic")
	}
	if ctx == nil {
		t.Fatal("StartInvocation() ctx = nil")
	}

	// The scope stays usable and every later event is swallowed too.
	scope.RecordVariant(ctx, "a", "default")
	scope.RecordSuccess(ctx)
	scope.Close()
}

func TestRecorder_NilDefaults(t *testing.T) {
	recorder := NewRecorder(RecorderConfig{})
	ctx, scope := recorder.StartInvocation(context.Background(), "svc", "Do", "svc", "a", []string{"a"})
	defer scope.Close()

	scope.RecordVariant(ctx, "a", "default")
	scope.RecordFailure(ctx, errors.New("x"))
}

func eventTypes(sink *MemoryAuditSink) []EventType {
	events := sink.Events()
	types := make([]EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}
