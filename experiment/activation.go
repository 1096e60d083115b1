package experiment

import (
	"context"
	"time"
)

// Evaluator decides whether a registration is currently live.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: predicate errors and panics fail closed (not active); activation
//   must never itself fail a call.
type Evaluator struct {
	// Now supplies the current time. Default: time.Now.
	Now func() time.Time
}

// NewEvaluator creates an evaluator using the real clock.
func NewEvaluator() *Evaluator {
	return &Evaluator{Now: time.Now}
}

// Active reports whether reg is live: inside its time window and, if a
// predicate is configured, the predicate holds.
func (e *Evaluator) Active(ctx context.Context, reg *Registration) bool {
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}

	start, end := reg.Window()
	if !start.IsZero() && now.Before(start) {
		return false
	}
	if !end.IsZero() && now.After(end) {
		return false
	}

	pred := reg.ActivationPredicate()
	if pred == nil {
		return true
	}
	return evalPredicate(ctx, pred)
}

func evalPredicate(ctx context.Context, pred Predicate) (active bool) {
	defer func() {
		if recover() != nil {
			active = false
		}
	}()
	ok, err := pred(ctx)
	if err != nil {
		return false
	}
	return ok
}
