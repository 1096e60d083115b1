package experiment

import (
	"context"
	"sort"
	"time"

	"github.com/jonwraymond/trialops/decorate"
	"github.com/jonwraymond/trialops/resilience"
	"github.com/jonwraymond/trialops/telemetry"
)

// SelectionMode identifies the strategy used to pick a preferred trial key.
type SelectionMode int

const (
	// ModeFlag selects between the "true" and "false" trials from a
	// boolean flag source.
	ModeFlag SelectionMode = iota
	// ModeValue reads the preferred trial key from a value source.
	ModeValue
	// ModeSticky assigns a stable trial per caller identity.
	ModeSticky
	// ModeCustom delegates to a provider registered under a mode identifier.
	ModeCustom
)

// String returns the string representation of the mode.
func (m SelectionMode) String() string {
	switch m {
	case ModeFlag:
		return "flag"
	case ModeValue:
		return "value"
	case ModeSticky:
		return "sticky"
	case ModeCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// PolicyKind identifies an error-policy expansion rule.
type PolicyKind int

const (
	// PolicyThrow surfaces the preferred trial's failure with no fallback.
	PolicyThrow PolicyKind = iota
	// PolicyRedirectDefault falls back to the default trial.
	PolicyRedirectDefault
	// PolicyRedirectAny falls back to every other trial in lexical order.
	PolicyRedirectAny
	// PolicyRedirectSpecific falls back to one named trial.
	PolicyRedirectSpecific
	// PolicyRedirectOrdered falls back through a caller-specified sequence.
	PolicyRedirectOrdered
)

// ErrorPolicy is the rule for expanding a preferred key into an ordered
// fallback cascade. Construct values with Throw, RedirectDefault,
// RedirectAny, RedirectSpecific or RedirectOrdered.
type ErrorPolicy struct {
	Kind        PolicyKind
	FallbackKey string
	OrderedKeys []string
}

// Throw returns a policy that surfaces failures without fallback.
func Throw() ErrorPolicy { return ErrorPolicy{Kind: PolicyThrow} }

// RedirectDefault returns a policy that falls back to the default trial.
func RedirectDefault() ErrorPolicy { return ErrorPolicy{Kind: PolicyRedirectDefault} }

// RedirectAny returns a policy that falls back to all other trials,
// sorted lexicographically.
func RedirectAny() ErrorPolicy { return ErrorPolicy{Kind: PolicyRedirectAny} }

// RedirectSpecific returns a policy that falls back to the named trial.
func RedirectSpecific(fallbackKey string) ErrorPolicy {
	return ErrorPolicy{Kind: PolicyRedirectSpecific, FallbackKey: fallbackKey}
}

// RedirectOrdered returns a policy that falls back through keys in order.
func RedirectOrdered(keys ...string) ErrorPolicy {
	ordered := make([]string, len(keys))
	copy(ordered, keys)
	return ErrorPolicy{Kind: PolicyRedirectOrdered, OrderedKeys: ordered}
}

// TimeoutAction selects the behavior when a candidate attempt exceeds the
// configured timeout.
type TimeoutAction int

const (
	// TimeoutError raises a timeout error handled like any other attempt
	// failure, subject to the error policy.
	TimeoutError TimeoutAction = iota
	// TimeoutFallbackDefault short-circuits to the default trial's
	// implementation, bypassing remaining candidates.
	TimeoutFallbackDefault
)

// OpenAction selects the behavior when the circuit breaker is open.
type OpenAction int

const (
	// OpenFail treats the blocked candidate as failed and continues the
	// cascade.
	OpenFail OpenAction = iota
	// OpenError surfaces the circuit-open error to the caller immediately.
	OpenError
)

// Predicate gates activation beyond the time window. A returned error
// (or panic) is treated as "not active", never propagated.
type Predicate func(ctx context.Context) (bool, error)

// TrialDescriptor describes one named candidate implementation. Ref is an
// opaque handle for the implementation resolver; the engine never
// interprets it.
type TrialDescriptor struct {
	Key string
	Ref any
}

// Registration is the immutable description of one experiment: its trials,
// selection strategy, error policy and resilience settings. Values are
// constructed by a Builder, which validates and freezes them.
//
// Contract:
// - Concurrency: safe for concurrent use; all accessors are read-only.
// - Ownership: accessors returning slices return copies.
type Registration struct {
	serviceType    string
	trials         map[string]TrialDescriptor
	trialKeys      []string // sorted
	defaultKey     string
	mode           SelectionMode
	selectorName   string
	modeIdentifier string
	policy         ErrorPolicy
	startTime      time.Time
	endTime        time.Time
	predicate      Predicate
	timeout        time.Duration
	timeoutAction  TimeoutAction
	openAction     OpenAction
	breaker        *resilience.CircuitBreaker
	killSwitch     *resilience.KillSwitch
	metrics        telemetry.Sink
	decorators     []decorate.Factory
}

// ServiceType returns the service type this registration routes.
func (r *Registration) ServiceType() string { return r.serviceType }

// DefaultKey returns the default trial key.
func (r *Registration) DefaultKey() string { return r.defaultKey }

// TrialKeys returns all trial keys in sorted order.
func (r *Registration) TrialKeys() []string {
	keys := make([]string, len(r.trialKeys))
	copy(keys, r.trialKeys)
	return keys
}

// HasTrial reports whether key names a registered trial.
func (r *Registration) HasTrial(key string) bool {
	_, ok := r.trials[key]
	return ok
}

// Descriptor returns the descriptor for key, if registered.
func (r *Registration) Descriptor(key string) (TrialDescriptor, bool) {
	d, ok := r.trials[key]
	return d, ok
}

// Mode returns the selection mode.
func (r *Registration) Mode() SelectionMode { return r.mode }

// SelectorName returns the name used to query the selection backend.
func (r *Registration) SelectorName() string { return r.selectorName }

// ModeIdentifier returns the custom-mode identifier, if any.
func (r *Registration) ModeIdentifier() string { return r.modeIdentifier }

// Policy returns the error policy.
func (r *Registration) Policy() ErrorPolicy {
	p := r.policy
	if p.OrderedKeys != nil {
		p.OrderedKeys = append([]string(nil), p.OrderedKeys...)
	}
	return p
}

// Window returns the activation window. Zero times mean unbounded.
func (r *Registration) Window() (start, end time.Time) { return r.startTime, r.endTime }

// ActivationPredicate returns the activation predicate, or nil.
func (r *Registration) ActivationPredicate() Predicate { return r.predicate }

// Timeout returns the per-attempt timeout; zero disables it.
func (r *Registration) Timeout() time.Duration { return r.timeout }

// TimeoutAction returns the configured timeout behavior.
func (r *Registration) TimeoutAction() TimeoutAction { return r.timeoutAction }

// OpenAction returns the configured circuit-open behavior.
func (r *Registration) OpenAction() OpenAction { return r.openAction }

// Breaker returns the registration's circuit breaker, or nil. The breaker
// is created once at Build time and shared by all calls.
func (r *Registration) Breaker() *resilience.CircuitBreaker { return r.breaker }

// KillSwitch returns the registration's kill switch, or nil.
func (r *Registration) KillSwitch() *resilience.KillSwitch { return r.killSwitch }

// Metrics returns the registration's metrics sink, never nil.
func (r *Registration) Metrics() telemetry.Sink { return r.metrics }

// Decorators returns the ordered decorator factories.
func (r *Registration) Decorators() []decorate.Factory {
	factories := make([]decorate.Factory, len(r.decorators))
	copy(factories, r.decorators)
	return factories
}

func sortedKeys(trials map[string]TrialDescriptor) []string {
	keys := make([]string, 0, len(trials))
	for k := range trials {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
