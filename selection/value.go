package selection

import "context"

// ValueSource is the external configuration backend queried by
// ValueProvider. A missing name must yield "" with no error.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Value must honor cancellation/deadlines.
type ValueSource interface {
	Value(ctx context.Context, name string) (string, error)
}

// ValueSourceFunc adapts a function to the ValueSource interface.
type ValueSourceFunc func(ctx context.Context, name string) (string, error)

// Value calls f.
func (f ValueSourceFunc) Value(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

// MapValueSource is a fixed in-memory value source, primarily for tests
// and static configuration.
type MapValueSource map[string]string

// Value returns the mapped value; missing names yield "".
func (m MapValueSource) Value(ctx context.Context, name string) (string, error) {
	return m[name], nil
}

// ValueProvider reads the preferred trial key as a string from a
// configuration backend. An empty or missing value means no preference.
type ValueProvider struct {
	source ValueSource
}

// NewValueProvider creates a provider over the given value source.
func NewValueProvider(source ValueSource) *ValueProvider {
	return &ValueProvider{source: source}
}

// SelectTrialKey reads the configured value by selector name.
func (p *ValueProvider) SelectTrialKey(ctx context.Context, sel *Context) (string, error) {
	if p.source == nil {
		return "", nil
	}
	return p.source.Value(ctx, sel.SelectorName)
}

// DefaultSelectorName derives "<convention>.trial" for a service type.
func (p *ValueProvider) DefaultSelectorName(serviceType string, nc NamingConvention) string {
	return selectorName(serviceType, nc) + ".trial"
}

var (
	_ Provider    = (*ValueProvider)(nil)
	_ ValueSource = (MapValueSource)(nil)
)
