// Package middleware provides the HTTP middleware chain for the habits
// API: panic recovery, request logging, request id propagation, CORS,
// per-request timeouts, and Prometheus request metrics.
//
// Middleware compose in the standard wrapping style:
//
//	handler = RecoveryMiddleware(LoggingMiddleware(mux))
package middleware
