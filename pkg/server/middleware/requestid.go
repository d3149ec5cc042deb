package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Gradnos/dpAssignment2Api/pkg/telemetry/logging"
)

// RequestIDHeader is the HTTP header for request ID propagation.
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware attaches a unique request ID to each request. A
// client-supplied X-Request-ID is honored so callers can correlate their
// own traces; otherwise a fresh UUID is generated. The id is stored in the
// logging context and echoed in the response header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
