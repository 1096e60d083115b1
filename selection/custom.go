package selection

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps custom mode identifiers to selection providers. The
// router consults it for registrations using the custom selection mode;
// an unregistered identifier means the default trial is used.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider under a mode identifier.
func (r *Registry) Register(identifier string, provider Provider) error {
	if strings.TrimSpace(identifier) == "" || provider == nil {
		return ErrInvalidRegistration
	}
	identifier = strings.TrimSpace(identifier)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[identifier]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, identifier)
	}
	r.providers[identifier] = provider
	return nil
}

// Lookup returns the provider for a mode identifier.
func (r *Registry) Lookup(identifier string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[strings.TrimSpace(identifier)]
	return p, ok
}

// List returns registered mode identifiers, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global registry for custom selection providers.
var DefaultRegistry = NewRegistry()
