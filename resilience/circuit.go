package resilience

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is blocking all requests.
	StateOpen
	// StateHalfOpen means the circuit is testing if the service recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// FailureRatio is the failure fraction over the sampling window at
	// which the circuit opens. Range (0, 1].
	// Default: 0.5
	FailureRatio float64

	// SamplingWindow is how far back outcomes count toward the ratio.
	// Default: 30 seconds
	SamplingWindow time.Duration

	// MinimumThroughput is the least number of outcomes inside the window
	// before the ratio is consulted. The circuit never opens on fewer.
	// Default: 10
	MinimumThroughput int

	// BreakDuration is how long the circuit stays open before probing.
	// Default: 30 seconds
	BreakDuration time.Duration

	// HalfOpenMaxProbes is the max probe requests in half-open state.
	// Default: 1
	HalfOpenMaxProbes int

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to State)

	// IsFailure determines if an error should count as a failure.
	// Default: all non-nil errors are failures.
	IsFailure func(err error) bool

	// Clock supplies the current time. Default: time.Now.
	Clock func() time.Time
}

// CircuitBreaker opens after the failure ratio over a sliding sampling
// window crosses the configured threshold with minimum throughput. One
// breaker guards one registration; all trials share it.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu         sync.Mutex
	state      State
	outcomes   []outcome // ordered by time, pruned to the window
	openedAt   time.Time
	probeCount int
}

type outcome struct {
	at      time.Time
	failure bool
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	// Apply defaults
	if config.FailureRatio <= 0 || config.FailureRatio > 1 {
		config.FailureRatio = 0.5
	}
	if config.SamplingWindow <= 0 {
		config.SamplingWindow = 30 * time.Second
	}
	if config.MinimumThroughput <= 0 {
		config.MinimumThroughput = 10
	}
	if config.BreakDuration <= 0 {
		config.BreakDuration = 30 * time.Second
	}
	if config.HalfOpenMaxProbes <= 0 {
		config.HalfOpenMaxProbes = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs the operation through the circuit breaker. While the
// circuit is open it returns ErrCircuitOpen without invoking op.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := op(ctx)
	cb.afterRequest(err)
	return err
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// Reset resets the circuit breaker to closed state and clears the window.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.state
	cb.state = StateClosed
	cb.outcomes = nil
	cb.probeCount = 0

	if oldState != StateClosed && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, StateClosed)
	}
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentStateLocked() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.probeCount >= cb.config.HalfOpenMaxProbes {
			return ErrCircuitOpen
		}
		cb.probeCount++
	}

	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.config.Clock()
	isFailure := cb.config.IsFailure(err)
	oldState := cb.state

	switch cb.state {
	case StateClosed:
		cb.outcomes = append(cb.outcomes, outcome{at: now, failure: isFailure})
		cb.pruneLocked(now)

		total, failures := cb.countLocked()
		if total >= cb.config.MinimumThroughput &&
			float64(failures)/float64(total) >= cb.config.FailureRatio {
			cb.state = StateOpen
			cb.openedAt = now
		}

	case StateHalfOpen:
		if isFailure {
			// Failed probe, back to open for another break period
			cb.state = StateOpen
			cb.openedAt = now
		} else {
			cb.state = StateClosed
			cb.outcomes = nil
			cb.probeCount = 0
		}
	}

	if oldState != cb.state && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(oldState, cb.state)
	}
}

func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == StateOpen && cb.config.Clock().Sub(cb.openedAt) >= cb.config.BreakDuration {
		cb.state = StateHalfOpen
		cb.probeCount = 0
		if cb.config.OnStateChange != nil {
			cb.config.OnStateChange(StateOpen, StateHalfOpen)
		}
	}
	return cb.state
}

func (cb *CircuitBreaker) pruneLocked(now time.Time) {
	cutoff := now.Add(-cb.config.SamplingWindow)
	idx := 0
	for idx < len(cb.outcomes) && cb.outcomes[idx].at.Before(cutoff) {
		idx++
	}
	if idx > 0 {
		cb.outcomes = append(cb.outcomes[:0], cb.outcomes[idx:]...)
	}
}

func (cb *CircuitBreaker) countLocked() (total, failures int) {
	for _, o := range cb.outcomes {
		total++
		if o.failure {
			failures++
		}
	}
	return total, failures
}

// Metrics returns current circuit breaker statistics.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	total, failures := cb.countLocked()
	return CircuitBreakerMetrics{
		State:    cb.currentStateLocked(),
		Samples:  total,
		Failures: failures,
		OpenedAt: cb.openedAt,
	}
}

// CircuitBreakerMetrics contains circuit breaker statistics.
type CircuitBreakerMetrics struct {
	State    State
	Samples  int
	Failures int
	OpenedAt time.Time
}
