// Package validation provides common validation utilities for the repermit library.
package validation

import (
	"math"

	rperrors "github.com/vnykmshr/repermit/pkg/common/errors"
)

// ValidatePositive validates that an integer value is positive (> 0).
// Returns a ValidationError if the value is not positive.
func ValidatePositive(module, field string, value int) error {
	if value <= 0 {
		return rperrors.NewValidationError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// ValidateNonNegative validates that a numeric value is non-negative (>= 0).
// NaN is rejected; comparisons against it are always false, so it would
// otherwise slip through. Returns a ValidationError if the value is
// negative or NaN.
func ValidateNonNegative(module, field string, value float64) error {
	if value < 0 || math.IsNaN(value) {
		return rperrors.NewValidationError(module, field, value, "cannot be negative").
			WithHint("use 0 or a positive value")
	}
	return nil
}

// ValidatePositiveFloat validates that a float64 value is positive (> 0).
// NaN is rejected; comparisons against it are always false, so it would
// otherwise slip through. Returns a ValidationError if the value is not
// positive or is NaN.
func ValidatePositiveFloat(module, field string, value float64) error {
	if value <= 0 || math.IsNaN(value) {
		return rperrors.NewValidationError(module, field, value, "must be positive").
			WithHint("value must be greater than 0")
	}
	return nil
}

// ValidateNotNil validates that an interface value is not nil.
// Returns a ValidationError if the value is nil.
func ValidateNotNil(module, field string, value interface{}) error {
	if value == nil {
		return rperrors.NewValidationError(module, field, nil, "cannot be nil").
			WithHint("provide a valid " + field)
	}
	return nil
}

// ValidateNotEmpty validates that a string value is not empty.
// Returns a ValidationError if the string is empty.
func ValidateNotEmpty(module, field string, value string) error {
	if value == "" {
		return rperrors.NewValidationError(module, field, value, "cannot be empty").
			WithHint("provide a non-empty " + field)
	}
	return nil
}
