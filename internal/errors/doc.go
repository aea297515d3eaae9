// Package apperrors defines structured application error types. It separates
// the error kinds the Fibonacci API reports to clients (invalid arguments and
// int64 overflow) from the operational ones (configuration, timeouts) and
// carries the underlying cause where there is one.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Typed errors match their sentinel kind through an Is method, so callers can
// classify with errors.Is(err, ErrOverflow) regardless of how deep the error
// was wrapped.
package apperrors
