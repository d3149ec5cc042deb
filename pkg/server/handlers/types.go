package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/stats"
)

// HabitService is the service surface the HTTP handlers consume.
type HabitService interface {
	CreateHabit(ctx context.Context, n habit.NewHabit) (*habit.Habit, error)
	AddSubhabit(ctx context.Context, parentID int64, n habit.NewHabit) (*habit.Habit, error)
	GetHabit(ctx context.Context, id int64) (*habit.Habit, error)
	ListHabits(ctx context.Context) ([]*habit.Habit, error)
	UpdateHabit(ctx context.Context, id int64, u habit.HabitUpdate) (*habit.Habit, error)
	DeleteHabit(ctx context.Context, id int64) error
	RecordLog(ctx context.Context, habitID int64, n habit.NewLog) (*habit.LogEntry, error)
	ListLogs(ctx context.Context, habitID int64, from, to string) ([]*habit.LogEntry, error)
	Statistics(ctx context.Context, habitID int64, from, to string) (*stats.Result, error)
}

// ErrorResponse is the JSON envelope for all error replies.
type ErrorResponse struct {
	// Error contains the error details.
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains detailed error information.
type ErrorDetail struct {
	// Type categorizes the error.
	// Possible values: "invalid_request", "validation_error", "not_found",
	// "request_too_large", "server_error", "storage_unavailable",
	// "gateway_timeout".
	Type string `json:"type"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Status is the HTTP status code, repeated in the body so clients
	// parsing only the payload see it too.
	Status int `json:"status"`
}

// Error type constants used in the error envelope.
const (
	// ErrorTypeInvalidRequest indicates a malformed request (400).
	ErrorTypeInvalidRequest = "invalid_request"

	// ErrorTypeValidation indicates input that failed domain validation (400).
	ErrorTypeValidation = "validation_error"

	// ErrorTypeNotFound indicates a resource was not found (404).
	ErrorTypeNotFound = "not_found"

	// ErrorTypeRequestTooLarge indicates the request body is too large (413).
	ErrorTypeRequestTooLarge = "request_too_large"

	// ErrorTypeServerError indicates an internal server error (500).
	ErrorTypeServerError = "server_error"

	// ErrorTypeStorageUnavailable indicates the storage backend failed (503).
	ErrorTypeStorageUnavailable = "storage_unavailable"

	// ErrorTypeGatewayTimeout indicates the request deadline elapsed (504).
	ErrorTypeGatewayTimeout = "gateway_timeout"
)

// maxRequestBodySize is the maximum allowed request body size (1MB).
// Habit and log payloads are tiny; anything near this limit is abuse.
const maxRequestBodySize = 1 << 20

// NewErrorResponse creates an error envelope with the given details.
func NewErrorResponse(errType, message string, status int) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Type:    errType,
			Message: message,
			Status:  status,
		},
	}
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing to do but record it.
		slog.Error("failed to encode response", "error", err)
	}
}

// WriteErrorResponse writes an error envelope with the given details.
func WriteErrorResponse(w http.ResponseWriter, errType, message string, status int) {
	WriteJSON(w, status, NewErrorResponse(errType, message, status))
}

// WriteError translates a domain error into the envelope and status code
// the API contract defines: missing records map to 404, rejected input to
// 400, storage faults to 503, and anything unrecognized to 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *habit.ValidationError
	var storageErr *habit.StorageError

	switch {
	case errors.Is(err, habit.ErrNotFound):
		WriteErrorResponse(w, ErrorTypeNotFound, err.Error(), http.StatusNotFound)

	case errors.As(err, &validationErr):
		WriteErrorResponse(w, ErrorTypeValidation, validationErr.Error(), http.StatusBadRequest)

	case errors.As(err, &storageErr):
		slog.ErrorContext(r.Context(), "storage operation failed",
			"backend", storageErr.Backend,
			"operation", storageErr.Operation,
			"error", err,
		)
		WriteErrorResponse(w, ErrorTypeStorageUnavailable,
			"storage backend unavailable", http.StatusServiceUnavailable)

	default:
		slog.ErrorContext(r.Context(), "unhandled error in handler",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		WriteErrorResponse(w, ErrorTypeServerError,
			"an internal error occurred", http.StatusInternalServerError)
	}
}

// decodeJSON decodes the request body into v, enforcing the body size
// limit. Decode failures are written to w; the caller should return when
// an error comes back.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteErrorResponse(w, ErrorTypeRequestTooLarge,
				fmt.Sprintf("request body exceeds maximum size of %d bytes", maxBytesErr.Limit),
				http.StatusRequestEntityTooLarge)
			return err
		}

		WriteErrorResponse(w, ErrorTypeInvalidRequest,
			fmt.Sprintf("invalid JSON: %v", err), http.StatusBadRequest)
		return err
	}

	return nil
}

// pathID parses the {id} path segment. Parse failures are written to w;
// the caller should return when an error comes back.
func pathID(w http.ResponseWriter, r *http.Request) (int64, error) {
	raw := r.PathValue("id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		WriteErrorResponse(w, ErrorTypeInvalidRequest,
			fmt.Sprintf("invalid habit id %q: must be a positive integer", raw),
			http.StatusBadRequest)
		return 0, fmt.Errorf("invalid habit id %q", raw)
	}

	return id, nil
}

// dateRange reads the optional start and end query parameters. Values are
// validated by the service layer, not here.
func dateRange(r *http.Request) (string, string) {
	q := r.URL.Query()
	return q.Get("start"), q.Get("end")
}
