package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/server/handlers"
)

// TimeoutMiddleware enforces a per-request deadline. The handler runs
// against a buffered writer; if it finishes in time the buffer is flushed
// as-is, otherwise the client receives a 504 error envelope and any late
// handler writes are discarded. Handlers observe the deadline through
// their request context.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{
				header: make(http.Header),
				code:   http.StatusOK,
			}

			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
				tw.flush(w)

			case <-ctx.Done():
				tw.markTimedOut()

				errResp := handlers.NewErrorResponse(
					handlers.ErrorTypeGatewayTimeout,
					"request timed out",
					http.StatusGatewayTimeout,
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusGatewayTimeout)
				_ = json.NewEncoder(w).Encode(errResp)
			}
		})
	}
}

// timeoutWriter buffers the handler's response so a timed-out request can
// be answered without racing the still-running handler goroutine.
type timeoutWriter struct {
	header http.Header

	mu          sync.Mutex
	buf         bytes.Buffer
	code        int
	wroteHeader bool
	timedOut    bool
}

// Header returns the buffered header map.
func (tw *timeoutWriter) Header() http.Header {
	return tw.header
}

// WriteHeader records the status code. Only the first call counts.
func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.wroteHeader || tw.timedOut {
		return
	}
	tw.wroteHeader = true
	tw.code = code
}

// Write appends to the buffered body.
func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.wroteHeader = true
	return tw.buf.Write(b)
}

// markTimedOut stops accepting handler writes.
func (tw *timeoutWriter) markTimedOut() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.timedOut = true
}

// flush copies the buffered response to the real writer. Called only
// after the handler goroutine has finished.
func (tw *timeoutWriter) flush(w http.ResponseWriter) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return
	}

	dst := w.Header()
	for k, v := range tw.header {
		dst[k] = v
	}
	w.WriteHeader(tw.code)
	_, _ = w.Write(tw.buf.Bytes())
}
