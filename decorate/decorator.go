package decorate

import "context"

// Invocation describes one candidate attempt: the service type and method
// being called, the trial key under attempt, and the ordered arguments.
// It passes unchanged through the whole pipeline; decorators may read it
// but must not mutate it.
type Invocation struct {
	ServiceType string
	Method      string
	TrialKey    string
	Args        []any
}

// Handler is a continuation in the pipeline: either the next decorator or
// the terminal implementation call.
type Handler func(ctx context.Context, inv *Invocation) (any, error)

// Decorator wraps a continuation with cross-cutting behavior. It must
// propagate errors from next unless altering the outcome is its explicit,
// documented contract.
type Decorator interface {
	Invoke(ctx context.Context, inv *Invocation, next Handler) (any, error)
}

// Func adapts a plain function to the Decorator interface.
type Func func(ctx context.Context, inv *Invocation, next Handler) (any, error)

// Invoke calls f.
func (f Func) Invoke(ctx context.Context, inv *Invocation, next Handler) (any, error) {
	return f(ctx, inv, next)
}

// Factory produces a fresh decorator instance for one call. Factories run
// once per call, so decorators may hold per-call state.
type Factory func() Decorator

// Chain composes factories around a terminal handler. Composition is
// onion-nested: the first factory's decorator sees the call first and its
// unwind logic runs last. An empty factory list returns the terminal
// handler unchanged.
func Chain(factories []Factory, terminal Handler) Handler {
	h := terminal
	for i := len(factories) - 1; i >= 0; i-- {
		d := factories[i]()
		next := h
		h = func(ctx context.Context, inv *Invocation) (any, error) {
			return d.Invoke(ctx, inv, next)
		}
	}
	return h
}
