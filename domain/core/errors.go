package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrValidation covers malformed inputs: empty or mismatched arrays,
	// non-finite values, out-of-range probabilities, non-positive scales.
	ErrValidation = errors.New("validation failed")

	// ErrDegenerate covers well-formed but mathematically degenerate inputs
	// that need an explicit resolution instead of silent NaN propagation.
	ErrDegenerate = errors.New("degenerate input")

	// ErrNotFound is returned when a catalog lookup or repository query
	// finds nothing for the requested object.
	ErrNotFound = errors.New("resource not found")

	ErrVerdictNotFound = fmt.Errorf("%w: verdict", ErrNotFound)
	ErrObjectNotFound  = fmt.Errorf("%w: object", ErrNotFound)
)

// Error constructors with context
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, reason)
}

func NewDegenerateError(reason string) error {
	return fmt.Errorf("%w: %s", ErrDegenerate, reason)
}

func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, resource, id)
}

// Error checking helpers
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsDegenerateError(err error) bool {
	return errors.Is(err, ErrDegenerate)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
