// Package experiment defines the registration model for trial routing.
//
// A Registration describes one experiment: the set of named trial
// implementations for a service type, the default trial, the selection
// mode used to pick a preferred trial per call, the error policy that
// expands that preference into an ordered fallback cascade, and optional
// activation bounds and resilience settings.
//
// # Building registrations
//
// Registrations are assembled with a Builder and frozen by Build:
//
//	reg, err := experiment.NewBuilder("search.Ranker").
//	    Trial("control", controlImpl).
//	    Trial("ml", mlImpl).
//	    Default("control").
//	    SelectBy(experiment.ModeSticky, "search.ranker").
//	    OnError(experiment.RedirectDefault()).
//	    Build()
//
// Build catches per-registration defects (missing default, duplicate
// keys). Cross-registration defects, including error policies that
// reference unknown fallback trials, are caught by DetectConflicts over
// the whole set before any call is served.
//
// # Activation
//
// An Evaluator decides whether a registration is live from its time
// window and optional predicate. Predicate failures are treated as "not
// active"; activation never fails a call.
//
// # Cascades
//
// BuildCandidates expands a preferred trial key into the ordered
// candidate list the router attempts. The list always starts with the
// preferred key and never repeats a key.
package experiment
