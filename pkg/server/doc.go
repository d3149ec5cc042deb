// Package server provides the HTTP server for the habits API.
//
// The server wires the habit route handlers, the telemetry endpoints
// (health, version, metrics), and the middleware chain onto a single
// net/http server configured from pkg/config. It owns the server
// lifecycle: Start blocks until the context is cancelled or the listener
// fails, and Shutdown drains in-flight requests within the configured
// timeout.
package server
