// Package route ties the routing engine together: per call it evaluates
// activation, selects a preferred trial, expands it into a candidate
// cascade under the error policy, and attempts candidates in order behind
// the kill switch, circuit breaker, timeout and decorator pipeline.
//
// # Usage
//
//	reg := experiment.NewBuilder("search.Ranker").
//	    Trial("control", route.ImplementationFunc(control)).
//	    Trial("ml", route.ImplementationFunc(ml)).
//	    Default("control").
//	    SelectBy(experiment.ModeSticky, "search.ranker").
//	    OnError(experiment.RedirectDefault()).
//	    MustBuild()
//
//	resolver, _ := route.NewMapResolver(reg)
//	router, _ := route.NewRouter(route.RouterConfig{Resolver: resolver})
//
//	result, err := router.Call(ctx, reg, "Rank", query)
//
// The first successful candidate wins. When the cascade is exhausted the
// last failure surfaces; under the Throw policy the preferred trial's
// failure surfaces immediately. Distinct error kinds let callers tell a
// disabled experiment (resilience.ErrExperimentDisabled), an open circuit
// (resilience.ErrCircuitOpen) and a timeout (resilience.ErrTimeout) apart
// from the implementation's own errors.
package route
