// Package server exposes the Fibonacci service over HTTP.
//
// Routes:
//
//	GET /api/fibonacci/{index}          F(index)
//	GET /api/fibonacci/next/{index}     F(index+1)
//	GET /api/fibonacci/sequence         ?start=0&count=10
//	GET /health                         liveness, cache and runtime statistics
//	GET /metrics                        Prometheus exposition
//	GET /openapi.yaml                   API description
//
// Every request passes through panic recovery, request ID assignment,
// security headers with CORS, Prometheus instrumentation and access logging,
// in that order.
package server
