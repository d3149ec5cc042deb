package metrics

import (
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks metrics related to HTTP request handling.
//
// Metrics:
//   - habits_api_requests_total: Total request count by method, route, status
//   - habits_api_request_duration_seconds: Request duration histogram
//   - habits_api_response_size_bytes: Response body size histogram
//   - habits_api_requests_in_flight: Currently executing requests
type RequestMetrics struct {
	// Total request count
	requestsTotal *prometheus.CounterVec

	// Request duration histogram
	requestDuration *prometheus.HistogramVec

	// Response body size in bytes
	responseSize *prometheus.HistogramVec

	// Currently executing requests
	inFlight prometheus.Gauge
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled",
			},
			[]string{"method", "route", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"method", "route"},
		),

		responseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "response_size_bytes",
				Help:      "Size of HTTP response bodies in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 6), // 256B to 256KB
			},
			[]string{"method", "route"},
		),

		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being handled",
			},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.responseSize,
		rm.inFlight,
	)

	return rm
}

// RecordRequest records metrics for a handled request.
func (rm *RequestMetrics) RecordRequest(method, route, status string, duration time.Duration, responseBytes int) {
	rm.requestsTotal.WithLabelValues(method, route, status).Inc()
	rm.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())

	if responseBytes > 0 {
		rm.responseSize.WithLabelValues(method, route).Observe(float64(responseBytes))
	}
}

// IncInFlight increments the in-flight request gauge.
func (rm *RequestMetrics) IncInFlight() {
	rm.inFlight.Inc()
}

// DecInFlight decrements the in-flight request gauge.
func (rm *RequestMetrics) DecInFlight() {
	rm.inFlight.Dec()
}
