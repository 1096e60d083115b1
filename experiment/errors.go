package experiment

import "errors"

// Sentinel errors for registration construction.
var (
	// ErrNoServiceType is returned when a builder has no service type.
	ErrNoServiceType = errors.New("experiment: service type is required")

	// ErrNoTrials is returned when a builder has no registered trials.
	ErrNoTrials = errors.New("experiment: at least one trial is required")

	// ErrUnknownDefaultKey is returned when the default key is not a trial.
	ErrUnknownDefaultKey = errors.New("experiment: default key is not a registered trial")

	// ErrDuplicateTrialKey is returned when a trial key is registered twice.
	ErrDuplicateTrialKey = errors.New("experiment: trial key registered twice")

	// ErrInvalidWindow is returned when the activation window ends before it starts.
	ErrInvalidWindow = errors.New("experiment: activation window ends before it starts")

	// ErrConflicts is returned by ValidateRegistrations when conflicts exist.
	ErrConflicts = errors.New("experiment: registration set has conflicts")
)
