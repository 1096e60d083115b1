package route

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/trialops/experiment"
)

// Sentinel errors for implementation resolution.
var (
	// ErrUnresolvable is returned when no implementation exists for a
	// (service type, trial key) pair.
	ErrUnresolvable = errors.New("route: no implementation for trial key")

	// ErrNoResolver is returned when a router is built without a resolver.
	ErrNoResolver = errors.New("route: resolver is required")
)

// Implementation is the callable form of one resolved trial instance.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Invoke must honor cancellation/deadlines.
type Implementation interface {
	Invoke(ctx context.Context, method string, args []any) (any, error)
}

// ImplementationFunc adapts a function to the Implementation interface.
type ImplementationFunc func(ctx context.Context, method string, args []any) (any, error)

// Invoke calls f.
func (f ImplementationFunc) Invoke(ctx context.Context, method string, args []any) (any, error) {
	return f(ctx, method, args)
}

// Resolver maps a (service type, trial key) pair to a callable
// implementation. Resolution fails loudly on unknown pairs; the router's
// stale-key safety net substitutes the default key before resolving, so a
// resolver never needs to guess.
type Resolver interface {
	Resolve(ctx context.Context, serviceType, trialKey string) (Implementation, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, serviceType, trialKey string) (Implementation, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, serviceType, trialKey string) (Implementation, error) {
	return f(ctx, serviceType, trialKey)
}

type implRef struct {
	serviceType string
	trialKey    string
}

// MapResolver resolves implementations from registration trial
// descriptors, so the engine is usable without external wiring. Each
// descriptor Ref must be an Implementation (ImplementationFunc works).
type MapResolver struct {
	impls map[implRef]Implementation
}

// NewMapResolver builds a resolver from the given registrations.
func NewMapResolver(regs ...*experiment.Registration) (*MapResolver, error) {
	impls := make(map[implRef]Implementation)
	for _, reg := range regs {
		for _, key := range reg.TrialKeys() {
			desc, _ := reg.Descriptor(key)
			impl, ok := desc.Ref.(Implementation)
			if !ok {
				return nil, fmt.Errorf("route: trial %s/%s descriptor is %T, not an Implementation",
					reg.ServiceType(), key, desc.Ref)
			}
			impls[implRef{reg.ServiceType(), key}] = impl
		}
	}
	return &MapResolver{impls: impls}, nil
}

// Resolve returns the implementation registered for the pair.
func (r *MapResolver) Resolve(ctx context.Context, serviceType, trialKey string) (Implementation, error) {
	impl, ok := r.impls[implRef{serviceType, trialKey}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnresolvable, serviceType, trialKey)
	}
	return impl, nil
}

var (
	_ Resolver = (*MapResolver)(nil)
	_ Resolver = (ResolverFunc)(nil)
)
