package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
//
// This handler exposes all registered metrics in the standard Prometheus
// exposition format. It should be mounted at the path specified in the
// MetricsConfig (typically "/metrics").
//
// Example:
//
//	collector := metrics.NewCollector(cfg, nil)
//	http.Handle("/metrics", collector.Handler())
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			// Enable OpenMetrics encoding (preferred over Prometheus text format)
			EnableOpenMetrics: true,

			// No handler timeout; the server's timeouts apply
			Timeout: 0,

			ErrorHandling: promhttp.ContinueOnError,
		},
	)
}

// HandlerWithOptions returns an HTTP handler with custom options.
//
// This allows more control over the handler behavior, such as setting a
// timeout for metric collection or limiting concurrent scrape requests.
//
// Example:
//
//	handler := collector.HandlerWithOptions(promhttp.HandlerOpts{
//		Timeout: 10 * time.Second,
//		MaxRequestsInFlight: 5,
//	})
//	http.Handle("/metrics", handler)
func (c *Collector) HandlerWithOptions(opts promhttp.HandlerOpts) http.Handler {
	return promhttp.HandlerFor(c.registry, opts)
}
