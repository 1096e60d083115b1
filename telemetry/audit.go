package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// EventType classifies an audit event.
type EventType string

const (
	// EventStarted marks the beginning of a routed invocation.
	EventStarted EventType = "started"
	// EventVariantSelected marks the selection of a preferred trial.
	EventVariantSelected EventType = "variant-selected"
	// EventFallbackUsed marks a fallback to a non-preferred candidate.
	EventFallbackUsed EventType = "fallback-used"
	// EventSucceeded marks a successful invocation.
	EventSucceeded EventType = "succeeded"
	// EventFailed marks an invocation that exhausted its candidates.
	EventFailed EventType = "failed"
)

// Event is one audit record of experiment activity.
type Event struct {
	ID         string
	Experiment string
	Type       EventType
	Timestamp  time.Time
	Detail     map[string]string
}

// NewEvent creates an event with a fresh id and the current time.
func NewEvent(experiment string, eventType EventType) Event {
	return Event{
		ID:         uuid.NewString(),
		Experiment: experiment,
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
	}
}

// AuditSink persists audit events.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Record must honor cancellation/deadlines.
// - Errors: the engine swallows Record errors; they never affect calls.
type AuditSink interface {
	Record(ctx context.Context, event Event) error
}

// CompositeAuditSink fans an event out to zero or more child sinks.
type CompositeAuditSink struct {
	sinks []AuditSink
}

// NewCompositeAuditSink creates a composite over the given children. An
// empty child list is legal; Record then does nothing.
func NewCompositeAuditSink(sinks ...AuditSink) *CompositeAuditSink {
	return &CompositeAuditSink{sinks: sinks}
}

// Record delivers the event to every child in parallel, honoring
// cancellation. The first child error is returned after all children
// finish.
func (c *CompositeAuditSink) Record(ctx context.Context, event Event) error {
	if len(c.sinks) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, sink := range c.sinks {
		g.Go(func() (err error) {
			// A panic here would escape the goroutine and take the
			// process down; surface it as this child's error instead.
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("telemetry: audit sink panic: %v", r)
				}
			}()
			return sink.Record(ctx, event)
		})
	}
	return g.Wait()
}

// MemoryAuditSink keeps events in memory, primarily for tests and local
// inspection.
type MemoryAuditSink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryAuditSink creates an empty in-memory sink.
func NewMemoryAuditSink() *MemoryAuditSink {
	return &MemoryAuditSink{}
}

// Record appends the event.
func (m *MemoryAuditSink) Record(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of all recorded events in arrival order.
func (m *MemoryAuditSink) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Ensure sinks implement AuditSink
var (
	_ AuditSink = (*CompositeAuditSink)(nil)
	_ AuditSink = (*MemoryAuditSink)(nil)
)
