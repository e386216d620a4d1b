package utils

import "fmt"

// ValidationError represents an error occurring during input validation.
type ValidationError struct {
	Message string
}

// Error returns the error message string.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError with a specific message.
func NewValidationError(message string) error {
	return &ValidationError{
		Message: message,
	}
}

// NewValidationErrorf creates a new ValidationError with a formatted message.
func NewValidationErrorf(format string, args ...interface{}) error {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
	}
}

// InsufficientDataError is returned when a series has fewer distinct days
// than the forecasting engine supports. Callers should treat it as a
// neutral empty state rather than a failure to retry.
type InsufficientDataError struct {
	Required int
	Actual   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d distinct days available, %d required", e.Actual, e.Required)
}

// NewInsufficientDataError creates an InsufficientDataError.
func NewInsufficientDataError(required, actual int) error {
	return &InsufficientDataError{Required: required, Actual: actual}
}

// NoViableModelError is returned when every candidate in the forecast
// ensemble failed to produce output for the supplied series.
type NoViableModelError struct {
	Reason string
}

func (e *NoViableModelError) Error() string {
	return fmt.Sprintf("no viable forecast model: %s", e.Reason)
}

// NewNoViableModelError creates a NoViableModelError.
func NewNoViableModelError(reason string) error {
	return &NoViableModelError{Reason: reason}
}
