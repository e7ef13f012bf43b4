package builder

import "errors"

var (
	// ErrConfigValidation is returned when a required configuration field
	// is missing or names a type that cannot be resolved.
	ErrConfigValidation = errors.New("configuration validation failed")
	// ErrNilFactory is returned when construction is attempted with a
	// factory that was never resolved.
	ErrNilFactory = errors.New("cannot construct from a nil factory")
)
