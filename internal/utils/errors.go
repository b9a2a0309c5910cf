package utils

import "fmt"

// ExtractionError indicates that no usable trace could be recovered from an
// uploaded chart image. It is terminal for the request; the caller should ask
// the user for a clearer capture.
type ExtractionError struct {
	Message string
}

// Error returns the error message string.
func (e *ExtractionError) Error() string {
	return e.Message
}

// NewExtractionError creates a new ExtractionError with a specific message.
func NewExtractionError(message string) error {
	return &ExtractionError{Message: message}
}

// NewExtractionErrorf creates a new ExtractionError with a formatted message.
func NewExtractionErrorf(format string, args ...interface{}) error {
	return &ExtractionError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientBeatsError indicates that fewer than the minimum number of
// heartbeats were detected after both the primary and fallback detectors ran.
type InsufficientBeatsError struct {
	Found   int
	Minimum int
}

// Error returns the error message string.
func (e *InsufficientBeatsError) Error() string {
	return fmt.Sprintf("detected %d R peaks, need at least %d", e.Found, e.Minimum)
}

// NewInsufficientBeatsError creates a new InsufficientBeatsError.
func NewInsufficientBeatsError(found, minimum int) error {
	return &InsufficientBeatsError{Found: found, Minimum: minimum}
}

// InsufficientIntervalsError indicates that too few RR intervals survived
// artifact filtering for any HRV metric to be meaningful.
type InsufficientIntervalsError struct {
	Found   int
	Minimum int
}

// Error returns the error message string.
func (e *InsufficientIntervalsError) Error() string {
	return fmt.Sprintf("%d RR intervals after filtering, need at least %d", e.Found, e.Minimum)
}

// NewInsufficientIntervalsError creates a new InsufficientIntervalsError.
func NewInsufficientIntervalsError(found, minimum int) error {
	return &InsufficientIntervalsError{Found: found, Minimum: minimum}
}

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
	return &ValidationError{Message: message}
}

// NewValidationErrorf creates a new ValidationError with a formatted message.
func NewValidationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
