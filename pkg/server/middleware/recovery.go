package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Gradnos/dpAssignment2Api/pkg/server/handlers"
	"github.com/Gradnos/dpAssignment2Api/pkg/telemetry/logging"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a
// 500 error envelope. The panic is logged with its stack trace; internal
// details never reach the client.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				stack := debug.Stack()

				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", logging.GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(stack),
				)

				errResp := handlers.NewErrorResponse(
					handlers.ErrorTypeServerError,
					"an internal error occurred",
					http.StatusInternalServerError,
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(errResp)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
