// Package service implements the Fibonacci API operations independently of
// the HTTP transport: it validates arguments, calls the engine, and shapes
// every outcome, success or failure, into a response body plus an HTTP status.
package service
