package selection

import "context"

// Trial keys produced by the boolean-flag strategy.
const (
	FlagTrueKey  = "true"
	FlagFalseKey = "false"
)

// FlagSource is the external on/off backend queried by FlagProvider.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Enabled must honor cancellation/deadlines.
type FlagSource interface {
	Enabled(ctx context.Context, name string) (bool, error)
}

// FlagSourceFunc adapts a function to the FlagSource interface.
type FlagSourceFunc func(ctx context.Context, name string) (bool, error)

// Enabled calls f.
func (f FlagSourceFunc) Enabled(ctx context.Context, name string) (bool, error) {
	return f(ctx, name)
}

// FlagProvider maps a boolean flag to the fixed trial keys "true" and
// "false".
type FlagProvider struct {
	source FlagSource
}

// NewFlagProvider creates a provider over the given flag source.
func NewFlagProvider(source FlagSource) *FlagProvider {
	return &FlagProvider{source: source}
}

// SelectTrialKey queries the flag and returns "true" or "false". Source
// errors surface as "no preference".
func (p *FlagProvider) SelectTrialKey(ctx context.Context, sel *Context) (string, error) {
	if p.source == nil {
		return "", nil
	}
	on, err := p.source.Enabled(ctx, sel.SelectorName)
	if err != nil {
		return "", err
	}
	if on {
		return FlagTrueKey, nil
	}
	return FlagFalseKey, nil
}

// DefaultSelectorName derives "<convention>.enabled" for a service type.
func (p *FlagProvider) DefaultSelectorName(serviceType string, nc NamingConvention) string {
	return selectorName(serviceType, nc) + ".enabled"
}

var _ Provider = (*FlagProvider)(nil)
