package experiment

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/trialops/decorate"
	"github.com/jonwraymond/trialops/resilience"
	"github.com/jonwraymond/trialops/telemetry"
)

// Builder assembles a Registration. Methods may be chained; Build validates
// the accumulated state and returns a frozen Registration. A Builder is not
// safe for concurrent use and must not be reused after Build.
type Builder struct {
	reg        Registration
	breakerCfg *resilience.CircuitBreakerConfig
	errs       []error
}

// NewBuilder starts a registration for the given service type.
func NewBuilder(serviceType string) *Builder {
	b := &Builder{}
	b.reg.serviceType = serviceType
	b.reg.trials = make(map[string]TrialDescriptor)
	b.reg.policy = Throw()
	b.reg.metrics = telemetry.NewNoopSink()
	return b
}

// Trial registers a candidate implementation under key. Ref is the opaque
// handle handed to the implementation resolver.
func (b *Builder) Trial(key string, ref any) *Builder {
	if _, exists := b.reg.trials[key]; exists {
		b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrDuplicateTrialKey, key))
		return b
	}
	b.reg.trials[key] = TrialDescriptor{Key: key, Ref: ref}
	return b
}

// Default names the trial used when selection yields no preference.
func (b *Builder) Default(key string) *Builder {
	b.reg.defaultKey = key
	return b
}

// SelectBy sets the selection mode and the selector name queried against
// the backing store. For ModeCustom, modeIdentifier picks the registered
// provider.
func (b *Builder) SelectBy(mode SelectionMode, selectorName string, modeIdentifier ...string) *Builder {
	b.reg.mode = mode
	b.reg.selectorName = selectorName
	if len(modeIdentifier) > 0 {
		b.reg.modeIdentifier = modeIdentifier[0]
	}
	return b
}

// OnError sets the error policy. Default: Throw.
func (b *Builder) OnError(policy ErrorPolicy) *Builder {
	b.reg.policy = policy
	return b
}

// Window bounds the experiment's activation in time. A zero start or end
// leaves that side unbounded.
func (b *Builder) Window(start, end time.Time) *Builder {
	b.reg.startTime = start
	b.reg.endTime = end
	return b
}

// When gates activation on a predicate evaluated per call.
func (b *Builder) When(pred Predicate) *Builder {
	b.reg.predicate = pred
	return b
}

// Timeout bounds each candidate attempt. Zero disables the wrapper.
func (b *Builder) Timeout(d time.Duration, action TimeoutAction) *Builder {
	b.reg.timeout = d
	b.reg.timeoutAction = action
	return b
}

// Breaker adds a circuit breaker shared by all calls through this
// registration. The breaker is created at Build time and lives as long as
// the registration.
func (b *Builder) Breaker(cfg resilience.CircuitBreakerConfig, action OpenAction) *Builder {
	b.breakerCfg = &cfg
	b.reg.openAction = action
	return b
}

// KillSwitch attaches an externally controlled kill switch.
func (b *Builder) KillSwitch(ks *resilience.KillSwitch) *Builder {
	b.reg.killSwitch = ks
	return b
}

// Metrics sets the metrics sink. Default: a no-op sink.
func (b *Builder) Metrics(sink telemetry.Sink) *Builder {
	if sink != nil {
		b.reg.metrics = sink
	}
	return b
}

// Decorate appends decorator factories. Decorators wrap each candidate
// attempt in registration order.
func (b *Builder) Decorate(factories ...decorate.Factory) *Builder {
	b.reg.decorators = append(b.reg.decorators, factories...)
	return b
}

// Build validates the accumulated state and returns a frozen Registration.
// Fallback keys referenced by the error policy are deliberately not checked
// here; DetectConflicts validates those across the whole registration set.
func (b *Builder) Build() (*Registration, error) {
	if b.reg.serviceType == "" {
		b.errs = append(b.errs, ErrNoServiceType)
	}
	if len(b.reg.trials) == 0 {
		b.errs = append(b.errs, ErrNoTrials)
	} else if _, ok := b.reg.trials[b.reg.defaultKey]; !ok {
		b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrUnknownDefaultKey, b.reg.defaultKey))
	}
	if !b.reg.startTime.IsZero() && !b.reg.endTime.IsZero() && b.reg.endTime.Before(b.reg.startTime) {
		b.errs = append(b.errs, ErrInvalidWindow)
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	reg := b.reg
	reg.trials = make(map[string]TrialDescriptor, len(b.reg.trials))
	for k, d := range b.reg.trials {
		reg.trials[k] = d
	}
	reg.trialKeys = sortedKeys(reg.trials)
	reg.decorators = append([]decorate.Factory(nil), b.reg.decorators...)
	if b.breakerCfg != nil {
		reg.breaker = resilience.NewCircuitBreaker(*b.breakerCfg)
	}
	if reg.policy.OrderedKeys != nil {
		reg.policy.OrderedKeys = append([]string(nil), b.reg.policy.OrderedKeys...)
	}
	return &reg, nil
}

// MustBuild is like Build but panics on validation failure. Intended for
// registrations assembled from constants at startup.
func (b *Builder) MustBuild() *Registration {
	reg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return reg
}
