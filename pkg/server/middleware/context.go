package middleware

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// Context keys for storing values in request context. The request id is
// not here: it lives in the telemetry logging context so log records pick
// it up without a middleware import.
const (
	// StartTimeKey stores the request start time for latency calculation.
	StartTimeKey contextKey = "start_time"
)
