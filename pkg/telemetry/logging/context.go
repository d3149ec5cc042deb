package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// HabitIDKey is the context key for habit identifiers.
	HabitIDKey contextKey = "habit_id"

	// BackendKey is the context key for the storage backend name.
	BackendKey contextKey = "backend"

	// OperationKey is the context key for storage operation names.
	OperationKey contextKey = "operation"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithHabitID adds a habit identifier to the context.
func WithHabitID(ctx context.Context, habitID int64) context.Context {
	return context.WithValue(ctx, HabitIDKey, habitID)
}

// GetHabitID retrieves the habit identifier from the context.
// It returns 0 when no habit ID is present.
func GetHabitID(ctx context.Context) int64 {
	if habitID, ok := ctx.Value(HabitIDKey).(int64); ok {
		return habitID
	}
	return 0
}

// WithBackend adds a storage backend name to the context.
func WithBackend(ctx context.Context, backend string) context.Context {
	return context.WithValue(ctx, BackendKey, backend)
}

// GetBackend retrieves the storage backend name from the context.
func GetBackend(ctx context.Context) string {
	if backend, ok := ctx.Value(BackendKey).(string); ok {
		return backend
	}
	return ""
}

// WithOperation adds a storage operation name to the context.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, OperationKey, operation)
}

// GetOperation retrieves the storage operation name from the context.
func GetOperation(ctx context.Context) string {
	if operation, ok := ctx.Value(OperationKey).(string); ok {
		return operation
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}

	if habitID := GetHabitID(ctx); habitID != 0 {
		fields = append(fields, "habit_id", habitID)
	}

	if backend := GetBackend(ctx); backend != "" {
		fields = append(fields, "backend", backend)
	}

	if operation := GetOperation(ctx); operation != "" {
		fields = append(fields, "operation", operation)
	}

	return fields
}
