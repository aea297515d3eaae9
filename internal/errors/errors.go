package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates a graceful shutdown did not finish in time.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the process was interrupted (e.g., SIGINT).
)

// Sentinel error kinds. Every error returned by the Fibonacci engine matches
// exactly one of these through errors.Is, or neither when it is unexpected.
var (
	// ErrInvalidArgument classifies rejected inputs such as a negative index.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOverflow classifies results that do not fit in a signed 64-bit integer.
	ErrOverflow = errors.New("int64 overflow")
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// InvalidArgumentError reports an argument rejected by the engine or the
// service layer. Its message is returned verbatim so it can be shown to
// API clients.
type InvalidArgumentError struct {
	// Field names the rejected argument (e.g., "index").
	Field string
	// Message is the client-facing explanation.
	Message string
}

// Error returns the client-facing message.
func (e InvalidArgumentError) Error() string { return e.Message }

// Is reports whether target is ErrInvalidArgument.
func (e InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// NewInvalidArgument creates an InvalidArgumentError for the given field.
func NewInvalidArgument(field, format string, a ...any) error {
	return InvalidArgumentError{Field: field, Message: fmt.Sprintf(format, a...)}
}

// OverflowError reports that F(Index) exceeds the signed 64-bit range.
type OverflowError struct {
	// Index is the first sequence position whose value could not be represented.
	Index int
}

// Error returns a message naming the offending index.
func (e OverflowError) Error() string {
	return fmt.Sprintf("Fibonacci number too large for int64 at index %d", e.Index)
}

// Is reports whether target is ErrOverflow.
func (e OverflowError) Is(target error) bool { return target == ErrOverflow }

// CalculationError encapsulates a calculation error while preserving the
// original cause. This allows for structured error handling and inspection
// of what went wrong during the Fibonacci calculation.
type CalculationError struct {
	// Cause is the underlying error that triggered this calculation error.
	Cause error
}

// Error returns the error message from the underlying cause.
func (e CalculationError) Error() string { return e.Cause.Error() }

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e CalculationError) Unwrap() error { return e.Cause }

// TimeoutError represents an operation that exceeded its time budget. It
// captures the operation name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Returns nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsOverflow reports whether err is, or wraps, an overflow.
func IsOverflow(err error) bool { return errors.Is(err, ErrOverflow) }

// IsInvalidArgument reports whether err is, or wraps, a rejected argument.
func IsInvalidArgument(err error) bool { return errors.Is(err, ErrInvalidArgument) }
