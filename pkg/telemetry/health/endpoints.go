package health

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// VersionInfo contains build and version information.
type VersionInfo struct {
	// Version is the semantic version (e.g., "0.1.0")
	Version string `json:"version"`

	// Commit is the git commit hash
	Commit string `json:"commit"`

	// BuildTime is when the binary was built
	BuildTime string `json:"build_time"`

	// GoVersion is the Go version used to build
	GoVersion string `json:"go_version"`
}

// LivenessHandler returns an HTTP handler for the liveness probe endpoint.
// It performs a simple check to verify the process is alive.
//
// Example response:
//
//	{
//	    "status": "ok",
//	    "timestamp": "2026-08-22T10:30:00Z"
//	}
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := c.CheckLiveness(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(status)
		}
	}
}

// ReadinessHandler returns an HTTP handler for the readiness probe endpoint.
// It performs all registered component health checks.
//
// Returns:
//   - 200 OK: System is ready to serve traffic
//   - 503 Service Unavailable: System is not ready (degraded)
//
// Example response (ready):
//
//	{
//	    "status": "ready",
//	    "checks": {
//	        "storage": {"status": "ok", "duration_ms": 0.4}
//	    },
//	    "timestamp": "2026-08-22T10:30:00Z"
//	}
//
// Example response (degraded):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "storage": {"status": "unhealthy", "message": "database is closed"}
//	    },
//	    "timestamp": "2026-08-22T10:30:00Z"
//	}
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := c.CheckReadiness(r.Context())

		w.Header().Set("Content-Type", "application/json")

		// Return 503 if not ready
		if status.Status == "degraded" || status.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(status)
		}
	}
}

// VersionHandler returns an HTTP handler for the version information endpoint.
// It returns build information including version, commit, and build time.
//
// Example response:
//
//	{
//	    "version": "0.1.0",
//	    "commit": "abc123def456",
//	    "build_time": "2026-08-22T00:00:00Z",
//	    "go_version": "go1.25.0"
//	}
func VersionHandler(version, commit, buildTime string) http.HandlerFunc {
	info := VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if r.Method != http.MethodHead {
			_ = json.NewEncoder(w).Encode(info)
		}
	}
}
