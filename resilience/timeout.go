package resilience

import (
	"context"
	"errors"
	"time"
)

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum duration for one candidate attempt.
	// Default: 30 seconds
	Timeout time.Duration
}

// Timeout races a candidate attempt against a deadline. A result arriving
// after expiry is discarded; it never reaches the caller or telemetry.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	// Apply defaults
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Timeout{config: config}
}

type attemptResult struct {
	value any
	err   error
}

// Execute runs the operation with a deadline. On expiry it returns
// ErrTimeout; the abandoned operation keeps the cancelled context and its
// eventual result is dropped.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) (any, error)) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	// Buffered so the abandoned goroutine never blocks.
	done := make(chan attemptResult, 1)

	go func() {
		value, err := op(ctx)
		done <- attemptResult{value: value, err: err}
	}()

	select {
	case res := <-done:
		// A cooperative operation may return the deadline error itself
		// before the expiry branch is observed.
		if errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return res.value, res.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	}
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}

// ExecuteWithTimeout is a convenience function to run an operation with a
// deadline.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) (any, error)) (any, error) {
	t := NewTimeout(TimeoutConfig{Timeout: timeout})
	return t.Execute(ctx, op)
}
