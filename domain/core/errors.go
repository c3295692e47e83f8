package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors abort the call
	ErrInputShape       = errors.New("input shape error")
	ErrMissingReference = errors.New("missing reference")
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Fitting errors
	ErrSingularDesign = errors.New("design matrix is rank deficient")
)

// Error constructors with context
func NewInputShapeError(what string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInputShape, what, reason)
}

func NewMissingReferenceError(kind string, name string) error {
	return fmt.Errorf("%w: %s %q not found", ErrMissingReference, kind, name)
}

func NewInsufficientDataError(what string, have, need int) error {
	return fmt.Errorf("%w: %s has %d, need at least %d", ErrInsufficientData, what, have, need)
}

// Error checking helpers
func IsInputShapeError(err error) bool {
	return errors.Is(err, ErrInputShape)
}

func IsMissingReferenceError(err error) bool {
	return errors.Is(err, ErrMissingReference)
}

func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}
