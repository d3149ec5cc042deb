package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gradnos/dpAssignment2Api/pkg/config"
	"github.com/Gradnos/dpAssignment2Api/pkg/telemetry/metrics"
)

func newTestCollector() *metrics.Collector {
	cfg := &config.MetricsConfig{
		Enabled:                true,
		Namespace:              "habits",
		Subsystem:              "api",
		RequestDurationBuckets: []float64{0.1, 0.5, 1.0},
	}
	return metrics.NewCollector(cfg, nil)
}

// scrape returns the text exposition of everything the collector recorded.
func scrape(t *testing.T, collector *metrics.Collector) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("metrics scrape failed with status %d", w.Code)
	}
	return w.Body.String()
}

func TestMetricsMiddleware(t *testing.T) {
	t.Run("labels requests with the matched route pattern", func(t *testing.T) {
		collector := newTestCollector()

		mux := http.NewServeMux()
		mux.HandleFunc("GET /habits/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":42}`))
		})

		wrapped := MetricsMiddleware(collector)(mux)

		req := httptest.NewRequest(http.MethodGet, "/habits/42", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		exposition := scrape(t, collector)
		want := `habits_api_requests_total{method="GET",route="/habits/{id}",status="200"} 1`
		if !strings.Contains(exposition, want) {
			t.Errorf("exposition missing %q, got:\n%s", want, exposition)
		}
	})

	t.Run("counts repeated requests on the same series", func(t *testing.T) {
		collector := newTestCollector()

		mux := http.NewServeMux()
		mux.HandleFunc("POST /habits", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})

		wrapped := MetricsMiddleware(collector)(mux)

		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodPost, "/habits", nil)
			wrapped.ServeHTTP(httptest.NewRecorder(), req)
		}

		exposition := scrape(t, collector)
		want := `habits_api_requests_total{method="POST",route="/habits",status="201"} 3`
		if !strings.Contains(exposition, want) {
			t.Errorf("exposition missing %q, got:\n%s", want, exposition)
		}
	})

	t.Run("labels unmatched routes without path cardinality", func(t *testing.T) {
		collector := newTestCollector()

		mux := http.NewServeMux()
		mux.HandleFunc("GET /habits", func(w http.ResponseWriter, r *http.Request) {})

		wrapped := MetricsMiddleware(collector)(mux)

		req := httptest.NewRequest(http.MethodGet, "/no-such-path-12345", nil)
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		exposition := scrape(t, collector)
		want := `habits_api_requests_total{method="GET",route="unmatched",status="404"} 1`
		if !strings.Contains(exposition, want) {
			t.Errorf("exposition missing %q, got:\n%s", want, exposition)
		}
		if strings.Contains(exposition, "no-such-path-12345") {
			t.Error("raw request path must not appear as a label value")
		}
	})

	t.Run("tracks in-flight requests", func(t *testing.T) {
		collector := newTestCollector()

		entered := make(chan struct{})
		release := make(chan struct{})
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(entered)
			<-release
		})

		wrapped := MetricsMiddleware(collector)(handler)

		done := make(chan struct{})
		go func() {
			defer close(done)
			req := httptest.NewRequest(http.MethodGet, "/habits", nil)
			wrapped.ServeHTTP(httptest.NewRecorder(), req)
		}()

		<-entered
		if got := scrape(t, collector); !strings.Contains(got, "habits_api_requests_in_flight 1") {
			t.Errorf("expected in-flight gauge of 1 while handler runs, got:\n%s", got)
		}

		close(release)
		<-done

		if got := scrape(t, collector); !strings.Contains(got, "habits_api_requests_in_flight 0") {
			t.Errorf("expected in-flight gauge of 0 after handler returns, got:\n%s", got)
		}
	})

	t.Run("observes request duration histogram", func(t *testing.T) {
		collector := newTestCollector()

		mux := http.NewServeMux()
		mux.HandleFunc("GET /habits", func(w http.ResponseWriter, r *http.Request) {})

		wrapped := MetricsMiddleware(collector)(mux)

		req := httptest.NewRequest(http.MethodGet, "/habits", nil)
		wrapped.ServeHTTP(httptest.NewRecorder(), req)

		exposition := scrape(t, collector)
		want := `habits_api_request_duration_seconds_count{method="GET",route="/habits"} 1`
		if !strings.Contains(exposition, want) {
			t.Errorf("exposition missing %q, got:\n%s", want, exposition)
		}
	})
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{"empty pattern", "", "unmatched"},
		{"method and path", "GET /habits/{id}", "/habits/{id}"},
		{"method and root", "POST /habits", "/habits"},
		{"path only", "/metrics", "/metrics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := routeLabel(tt.pattern); got != tt.want {
				t.Errorf("routeLabel(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func BenchmarkMetricsMiddleware(b *testing.B) {
	collector := newTestCollector()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /habits", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	wrapped := MetricsMiddleware(collector)(mux)

	req := httptest.NewRequest(http.MethodGet, "/habits", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)
	}
}
