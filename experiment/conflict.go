package experiment

import (
	"errors"
	"fmt"
)

// ConflictKind classifies a registration-set conflict.
type ConflictKind int

const (
	// ConflictInvalidFallbackKey means an error policy references a trial
	// key that is not registered.
	ConflictInvalidFallbackKey ConflictKind = iota
	// ConflictDuplicateServiceRegistration means two unbounded
	// registrations exist for the same service type.
	ConflictDuplicateServiceRegistration
	// ConflictOverlappingTimeWindows means two registrations for the same
	// service type have overlapping activation windows.
	ConflictOverlappingTimeWindows
)

// String returns the string representation of the kind.
func (k ConflictKind) String() string {
	switch k {
	case ConflictInvalidFallbackKey:
		return "invalid-fallback-key"
	case ConflictDuplicateServiceRegistration:
		return "duplicate-service-registration"
	case ConflictOverlappingTimeWindows:
		return "overlapping-time-windows"
	default:
		return "unknown"
	}
}

// Conflict describes one configuration defect found in a registration set.
type Conflict struct {
	Kind        ConflictKind
	ServiceType string
	Detail      string
}

// Error implements the error interface so conflicts can be aggregated.
func (c Conflict) Error() string {
	return fmt.Sprintf("experiment: %s conflict on %s: %s", c.Kind, c.ServiceType, c.Detail)
}

// DetectConflicts validates an entire registration set before it serves
// calls. Detection is exhaustive, not fail-fast: every conflict present is
// reported.
func DetectConflicts(regs []*Registration) []Conflict {
	var conflicts []Conflict

	for _, reg := range regs {
		conflicts = append(conflicts, fallbackConflicts(reg)...)
	}

	for i := 0; i < len(regs); i++ {
		for j := i + 1; j < len(regs); j++ {
			a, b := regs[i], regs[j]
			if a.serviceType != b.serviceType {
				continue
			}
			if c, ok := windowConflict(a, b); ok {
				conflicts = append(conflicts, c)
			}
		}
	}

	return conflicts
}

// ValidateRegistrations is the throwing form of DetectConflicts: it returns
// an aggregate error when any conflict exists, nil otherwise.
func ValidateRegistrations(regs []*Registration) error {
	conflicts := DetectConflicts(regs)
	if len(conflicts) == 0 {
		return nil
	}
	errs := make([]error, 0, len(conflicts)+1)
	errs = append(errs, ErrConflicts)
	for _, c := range conflicts {
		errs = append(errs, c)
	}
	return errors.Join(errs...)
}

func fallbackConflicts(reg *Registration) []Conflict {
	var conflicts []Conflict

	check := func(key string) {
		if !reg.HasTrial(key) {
			conflicts = append(conflicts, Conflict{
				Kind:        ConflictInvalidFallbackKey,
				ServiceType: reg.serviceType,
				Detail:      fmt.Sprintf("error policy references unknown trial %q", key),
			})
		}
	}

	switch reg.policy.Kind {
	case PolicyRedirectSpecific:
		check(reg.policy.FallbackKey)
	case PolicyRedirectOrdered:
		for _, k := range reg.policy.OrderedKeys {
			check(k)
		}
	}

	return conflicts
}

// windowConflict reports whether two registrations for the same service
// type collide in time. Non-overlapping windows are allowed.
func windowConflict(a, b *Registration) (Conflict, bool) {
	aBounded := !a.startTime.IsZero() || !a.endTime.IsZero()
	bBounded := !b.startTime.IsZero() || !b.endTime.IsZero()

	if !aBounded && !bBounded {
		return Conflict{
			Kind:        ConflictDuplicateServiceRegistration,
			ServiceType: a.serviceType,
			Detail:      "two registrations with no time bounds",
		}, true
	}

	if windowsOverlap(a, b) {
		return Conflict{
			Kind:        ConflictOverlappingTimeWindows,
			ServiceType: a.serviceType,
			Detail:      "activation windows overlap",
		}, true
	}

	return Conflict{}, false
}

func windowsOverlap(a, b *Registration) bool {
	// A zero start is unbounded past, a zero end unbounded future.
	if !a.endTime.IsZero() && !b.startTime.IsZero() && a.endTime.Before(b.startTime) {
		return false
	}
	if !b.endTime.IsZero() && !a.startTime.IsZero() && b.endTime.Before(a.startTime) {
		return false
	}
	return true
}
