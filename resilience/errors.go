package resilience

import "errors"

// Sentinel errors for resilience wrappers. Each is a distinct, catchable
// kind; callers match with errors.Is.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrTimeout is returned when a candidate attempt exceeds its deadline.
	ErrTimeout = errors.New("resilience: attempt timed out")

	// ErrExperimentDisabled is returned when the kill switch disables the
	// whole experiment.
	ErrExperimentDisabled = errors.New("resilience: experiment disabled by kill switch")

	// ErrTrialDisabled is returned when the kill switch disables one trial.
	ErrTrialDisabled = errors.New("resilience: trial disabled by kill switch")
)
