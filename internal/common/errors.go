// Package common contains shared constants and sentinel errors used across
// the Inclick client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors (caller bugs, surfaced immediately, never retried).
	ErrProfileIDRequired = errors.New("profile id is required")
	ErrStepOutOfRange    = errors.New("onboarding step out of range")
	ErrInvalidTheme      = errors.New("invalid theme preference")
)
