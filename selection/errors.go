package selection

import "errors"

// Sentinel errors for trial selection.
var (
	// ErrNoTrialKeys is returned when sticky routing is asked to choose
	// from an empty key set. This is a configuration defect.
	ErrNoTrialKeys = errors.New("selection: no trial keys to select from")

	// ErrAlreadyRegistered is returned when a mode identifier is registered twice.
	ErrAlreadyRegistered = errors.New("selection: provider already registered")

	// ErrInvalidRegistration is returned for empty names or nil providers.
	ErrInvalidRegistration = errors.New("selection: invalid provider registration")
)
