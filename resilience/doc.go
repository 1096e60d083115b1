// Package resilience provides the wrappers guarding each candidate attempt.
//
// The router applies the wrappers in a fixed order around every candidate:
// kill switch, circuit breaker, timeout, then the decorator pipeline and
// the implementation call.
//
//   - Kill Switch: an out-of-band override. Disabling a whole experiment
//     is a hard stop before any candidate runs; disabling one trial key
//     makes that candidate count as failed without being invoked.
//
//   - Circuit Breaker: opens when the failure ratio over a sliding
//     sampling window crosses a threshold with minimum throughput, so a
//     handful of early failures cannot trip it. One breaker guards one
//     registration.
//
//   - Timeout: races the attempt against a deadline and discards results
//     that arrive after expiry.
//
// # Usage
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    FailureRatio:      0.5,
//	    SamplingWindow:    time.Minute,
//	    MinimumThroughput: 20,
//	    BreakDuration:     30 * time.Second,
//	})
//
//	err := cb.Execute(ctx, func(ctx context.Context) error {
//	    return attemptCandidate(ctx)
//	})
//
//	ks := resilience.NewKillSwitch()
//	ks.DisableTrial("search.Ranker", "ml")
package resilience
