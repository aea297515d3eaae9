// Package logging provides a unified logging interface for the Fibonacci API.
// It abstracts the underlying logging implementation, allowing the engine, the
// service layer and the HTTP server to log consistently. Production code uses
// the zerolog backend; Nop discards everything.
package logging
