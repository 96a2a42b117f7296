package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound           = errors.New("resource not found")
	ErrComparisonNotFound = fmt.Errorf("%w: comparison", ErrNotFound)

	// Sample precondition errors
	ErrEmptySample      = errors.New("sample is empty")
	ErrLengthMismatch   = errors.New("paired samples differ in length")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// IsNotFoundError checks for any not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsSampleError reports whether err is one of the sample precondition errors
func IsSampleError(err error) bool {
	return errors.Is(err, ErrEmptySample) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrInvalidParameter)
}
