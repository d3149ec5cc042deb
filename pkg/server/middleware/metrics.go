package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/telemetry/metrics"
)

// MetricsMiddleware records request count, duration, response size, and
// the in-flight gauge on the collector. It must wrap the mux directly
// (innermost in the chain) so the matched route pattern is visible on the
// request after dispatch. Routes are labelled by registered pattern, not
// raw path, keeping metric cardinality bounded; requests matching no
// pattern share the "unmatched" label.
func MetricsMiddleware(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			collector.IncInFlight()
			defer collector.DecInFlight()

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			collector.RecordHTTPRequest(
				r.Method,
				routeLabel(r.Pattern),
				strconv.Itoa(rw.statusCode),
				time.Since(start),
				rw.bytesWritten,
			)
		})
	}
}

// routeLabel normalizes a mux pattern into a route label. Method-qualified
// patterns ("GET /habits/{id}") drop the method, which the metric carries
// in its own label.
func routeLabel(pattern string) string {
	if pattern == "" {
		return "unmatched"
	}
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		return pattern[i+1:]
	}
	return pattern
}
