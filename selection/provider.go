package selection

import (
	"context"
	"strings"
)

// Context is the per-call input to trial selection, constructed fresh for
// each routed call and immutable once built.
type Context struct {
	// ServiceType is the experiment's service type.
	ServiceType string

	// SelectorName is the name queried against the selection backend.
	SelectorName string

	// DefaultKey is the trial used when selection yields no preference.
	DefaultKey string

	// TrialKeys are all registered trial keys, sorted.
	TrialKeys []string

	// Identity is the caller identity for sticky routing; may be empty,
	// in which case providers fall back to IdentityFromContext.
	Identity string
}

// Provider picks a preferred trial key for one call.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: SelectTrialKey may block on a remote backend and must honor
//   cancellation/deadlines.
// - Errors: an empty key or an error both mean "no preference"; the router
//   uses the default key before any cascade is built.
type Provider interface {
	// SelectTrialKey returns the preferred trial key, or "" for no
	// preference.
	SelectTrialKey(ctx context.Context, sel *Context) (string, error)

	// DefaultSelectorName derives the backend name to query for a service
	// type when the registration does not name one.
	DefaultSelectorName(serviceType string, nc NamingConvention) string
}

// NamingConvention formats a service type into a selector name.
type NamingConvention func(serviceType string) string

// DottedNaming is the default convention: the lower-cased service type.
// "search.Ranker" becomes "search.ranker".
func DottedNaming(serviceType string) string {
	return strings.ToLower(serviceType)
}

func selectorName(serviceType string, nc NamingConvention) string {
	if nc == nil {
		nc = DottedNaming
	}
	return nc(serviceType)
}
