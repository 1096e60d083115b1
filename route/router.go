package route

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/trialops/decorate"
	"github.com/jonwraymond/trialops/experiment"
	"github.com/jonwraymond/trialops/resilience"
	"github.com/jonwraymond/trialops/selection"
	"github.com/jonwraymond/trialops/telemetry"
)

// RouterConfig configures the invocation router.
type RouterConfig struct {
	// Resolver maps (service type, trial key) pairs to implementations.
	// Required.
	Resolver Resolver

	// Flags backs the boolean-flag selection mode. Optional; without it
	// flag-mode registrations always use their default trial.
	Flags selection.FlagSource

	// Values backs the configuration-value selection mode. Optional.
	Values selection.ValueSource

	// Custom is the registry for custom-mode providers.
	// Default: selection.DefaultRegistry
	Custom *selection.Registry

	// Recorder receives invocation telemetry.
	// Default: a recorder wired to no-op sinks.
	Recorder *telemetry.Recorder

	// Evaluator decides activation.
	// Default: an evaluator on the real clock.
	Evaluator *experiment.Evaluator

	// Naming derives selector names when a registration has none.
	// Default: selection.DottedNaming
	Naming selection.NamingConvention
}

// Router routes each call through activation, selection, cascade
// expansion and resilience-wrapped candidate attempts.
//
// Contract:
// - Concurrency: safe for concurrent use; per-call state is never shared.
// - Context: cancellation propagates into the running candidate.
type Router struct {
	resolver  Resolver
	flag      *selection.FlagProvider
	value     *selection.ValueProvider
	sticky    *selection.StickyProvider
	custom    *selection.Registry
	recorder  *telemetry.Recorder
	evaluator *experiment.Evaluator
	naming    selection.NamingConvention
}

// NewRouter creates a router.
func NewRouter(cfg RouterConfig) (*Router, error) {
	if cfg.Resolver == nil {
		return nil, ErrNoResolver
	}
	// Apply defaults
	if cfg.Custom == nil {
		cfg.Custom = selection.DefaultRegistry
	}
	if cfg.Recorder == nil {
		cfg.Recorder = telemetry.NewRecorder(telemetry.RecorderConfig{})
	}
	if cfg.Evaluator == nil {
		cfg.Evaluator = experiment.NewEvaluator()
	}
	if cfg.Naming == nil {
		cfg.Naming = selection.DottedNaming
	}

	return &Router{
		resolver:  cfg.Resolver,
		flag:      selection.NewFlagProvider(cfg.Flags),
		value:     selection.NewValueProvider(cfg.Values),
		sticky:    selection.NewStickyProvider(),
		custom:    cfg.Custom,
		recorder:  cfg.Recorder,
		evaluator: cfg.Evaluator,
		naming:    cfg.Naming,
	}, nil
}

// Call routes one invocation of method with args through the registration.
//
// An inactive registration resolves and invokes the default implementation
// directly with no selection, cascade or experiment telemetry. Otherwise
// candidates are attempted in cascade order; the first success wins and an
// exhausted cascade surfaces the last failure.
func (r *Router) Call(ctx context.Context, reg *experiment.Registration, method string, args ...any) (any, error) {
	if !r.evaluator.Active(ctx, reg) {
		return r.invokeDirect(ctx, reg, reg.DefaultKey(), method, args)
	}

	serviceType := reg.ServiceType()
	ks := reg.KillSwitch()
	if ks != nil && ks.ExperimentDisabled(serviceType) {
		return nil, fmt.Errorf("%w: %s", resilience.ErrExperimentDisabled, serviceType)
	}

	selectorName, preferred, source := r.selectPreferred(ctx, reg)
	candidates := experiment.BuildCandidates(preferred, reg)

	ctx, scope := r.recorder.StartInvocation(ctx, serviceType, method, selectorName, preferred, candidates)
	defer scope.Close()
	scope.RecordVariant(ctx, preferred, source)

	throw := reg.Policy().Kind == experiment.PolicyThrow

	var lastErr error
	for i, key := range candidates {
		result, err := r.attempt(ctx, reg, key, method, args)
		if err == nil {
			if i > 0 {
				scope.RecordFallback(ctx, key)
			}
			scope.RecordSuccess(ctx)
			return result, nil
		}
		lastErr = err

		if errors.Is(err, resilience.ErrTimeout) && reg.TimeoutAction() == experiment.TimeoutFallbackDefault {
			// Timeout action wins over the error policy: go straight to
			// the default implementation, skipping remaining candidates.
			result, derr := r.invokeDirect(ctx, reg, reg.DefaultKey(), method, args)
			if derr == nil {
				scope.RecordFallback(ctx, reg.DefaultKey())
				scope.RecordSuccess(ctx)
				return result, nil
			}
			lastErr = derr
			break
		}

		if errors.Is(err, resilience.ErrCircuitOpen) && reg.OpenAction() == experiment.OpenError {
			scope.RecordFailure(ctx, err)
			return nil, err
		}

		if throw {
			break
		}
	}

	scope.RecordFailure(ctx, lastErr)
	return nil, lastErr
}

// selectPreferred resolves the preferred trial key. Provider errors and
// empty results uniformly mean the default key becomes the preferred key,
// before any cascade is built.
func (r *Router) selectPreferred(ctx context.Context, reg *experiment.Registration) (selectorName, key, source string) {
	provider := r.provider(reg)
	if provider == nil {
		return reg.SelectorName(), reg.DefaultKey(), "default"
	}

	selectorName = reg.SelectorName()
	if selectorName == "" {
		selectorName = provider.DefaultSelectorName(reg.ServiceType(), r.naming)
	}

	sel := &selection.Context{
		ServiceType:  reg.ServiceType(),
		SelectorName: selectorName,
		DefaultKey:   reg.DefaultKey(),
		TrialKeys:    reg.TrialKeys(),
	}

	preferred, err := provider.SelectTrialKey(ctx, sel)
	if err != nil || preferred == "" {
		return selectorName, reg.DefaultKey(), "default"
	}
	return selectorName, preferred, reg.Mode().String()
}

func (r *Router) provider(reg *experiment.Registration) selection.Provider {
	switch reg.Mode() {
	case experiment.ModeFlag:
		return r.flag
	case experiment.ModeValue:
		return r.value
	case experiment.ModeSticky:
		return r.sticky
	case experiment.ModeCustom:
		p, ok := r.custom.Lookup(reg.ModeIdentifier())
		if !ok {
			return nil
		}
		return p
	default:
		return nil
	}
}

// attempt runs one candidate through the fixed wrapper order: kill switch,
// circuit breaker, timeout, decorator pipeline, implementation call.
func (r *Router) attempt(ctx context.Context, reg *experiment.Registration, key, method string, args []any) (any, error) {
	serviceType := reg.ServiceType()

	if ks := reg.KillSwitch(); ks != nil && ks.TrialDisabled(serviceType, key) {
		// Counts as a failed candidate without being invoked.
		return nil, fmt.Errorf("%w: %s/%s", resilience.ErrTrialDisabled, serviceType, key)
	}

	attempt := func(ctx context.Context) (any, error) {
		return r.invokeCandidate(ctx, reg, key, method, args)
	}

	if timeout := reg.Timeout(); timeout > 0 {
		inner := attempt
		attempt = func(ctx context.Context) (any, error) {
			return resilience.ExecuteWithTimeout(ctx, timeout, inner)
		}
	}

	if cb := reg.Breaker(); cb != nil {
		var result any
		err := cb.Execute(ctx, func(ctx context.Context) error {
			var attemptErr error
			result, attemptErr = attempt(ctx)
			return attemptErr
		})
		return result, err
	}

	return attempt(ctx)
}

// invokeCandidate resolves the candidate and runs it through the
// registration's decorator pipeline, built fresh for this call. A key
// without a registered trial resolves to the default implementation; a
// stale externally-configured key must never hard-fail resolution.
func (r *Router) invokeCandidate(ctx context.Context, reg *experiment.Registration, key, method string, args []any) (any, error) {
	resolveKey := key
	if !reg.HasTrial(key) {
		resolveKey = reg.DefaultKey()
	}

	impl, err := r.resolver.Resolve(ctx, reg.ServiceType(), resolveKey)
	if err != nil {
		return nil, err
	}

	terminal := func(ctx context.Context, inv *decorate.Invocation) (any, error) {
		return impl.Invoke(ctx, inv.Method, inv.Args)
	}
	handler := decorate.Chain(reg.Decorators(), terminal)

	return handler(ctx, &decorate.Invocation{
		ServiceType: reg.ServiceType(),
		Method:      method,
		TrialKey:    key,
		Args:        args,
	})
}

// invokeDirect resolves and invokes one trial with no experiment
// machinery. Used for inactive registrations and timeout fallback.
func (r *Router) invokeDirect(ctx context.Context, reg *experiment.Registration, key, method string, args []any) (any, error) {
	impl, err := r.resolver.Resolve(ctx, reg.ServiceType(), key)
	if err != nil {
		return nil, err
	}
	return impl.Invoke(ctx, method, args)
}
