// Package decorate implements the per-call middleware pipeline wrapped
// around each candidate attempt.
//
// Decorators are produced by factories so each call gets fresh instances,
// and compose onion-style: the first registered decorator's "before" logic
// runs first and its "after" logic runs last.
//
//	handler := decorate.Chain([]decorate.Factory{
//	    decorate.Logging(logger),
//	    decorate.Benchmark(sink),
//	}, terminal)
//
//	result, err := handler(ctx, &decorate.Invocation{
//	    ServiceType: "search.Ranker",
//	    Method:      "Rank",
//	    TrialKey:    "ml",
//	})
//
// An empty chain is legal and invokes the terminal handler directly. A
// decorator must propagate errors from its continuation unless altering
// the outcome is its explicit contract.
//
// A timed-out attempt keeps running in the background with an expired
// context; the call it belonged to has already moved on. Decorators that
// emit telemetry must check ctx.Err() after the continuation returns and
// stay silent when it is non-nil, as the stock Logging and Benchmark
// decorators do.
package decorate
