package selection

import (
	"context"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// identitySeparator keeps "ab"+"c" and "a"+"bc" from hashing identically
// and isolates assignments between experiments sharing an identity.
const identitySeparator = "\x01"

// StickyRouter deterministically assigns a trial to a caller identity.
// The assignment is stable across calls and processes: it depends only on
// the identity, the experiment name and the (sorted) key set.
type StickyRouter struct{}

// NewStickyRouter creates a sticky router.
func NewStickyRouter() *StickyRouter {
	return &StickyRouter{}
}

// SelectTrial returns the trial assigned to identity for the named
// experiment. Zero keys is a configuration defect and fails loudly; a
// single key is returned without hashing.
func (r *StickyRouter) SelectTrial(identity, experimentName string, trialKeys []string) (string, error) {
	switch len(trialKeys) {
	case 0:
		return "", fmt.Errorf("%w: experiment %q", ErrNoTrialKeys, experimentName)
	case 1:
		return trialKeys[0], nil
	}

	// Sort a copy so the assignment is independent of map iteration order.
	keys := make([]string, len(trialKeys))
	copy(keys, trialKeys)
	sort.Strings(keys)

	sum := xxhash.Sum64String(identity + identitySeparator + experimentName)
	return keys[sum%uint64(len(keys))], nil
}

// StickyProvider selects trials through a StickyRouter using the caller
// identity from the selection context, or from the call context when the
// selection context has none.
type StickyProvider struct {
	router *StickyRouter
}

// NewStickyProvider creates a sticky selection provider.
func NewStickyProvider() *StickyProvider {
	return &StickyProvider{router: NewStickyRouter()}
}

// SelectTrialKey assigns a trial to the caller identity. Without an
// identity there is nothing to stick to, so it reports no preference.
func (p *StickyProvider) SelectTrialKey(ctx context.Context, sel *Context) (string, error) {
	identity := sel.Identity
	if identity == "" {
		identity, _ = IdentityFromContext(ctx)
	}
	if identity == "" {
		return "", nil
	}

	experiment := sel.SelectorName
	if experiment == "" {
		experiment = sel.ServiceType
	}
	return p.router.SelectTrial(identity, experiment, sel.TrialKeys)
}

// DefaultSelectorName derives the convention name for a service type.
func (p *StickyProvider) DefaultSelectorName(serviceType string, nc NamingConvention) string {
	return selectorName(serviceType, nc)
}

var _ Provider = (*StickyProvider)(nil)
