// Package health provides liveness, readiness, and version endpoints for the
// habits service.
//
// # Overview
//
// The health package implements the three operational endpoints the server
// exposes alongside the API:
//
//   - Liveness (/health/live): Reports that the process is running. Always
//     returns 200 while the server can accept connections.
//   - Readiness (/health/ready): Runs all registered component checks (the
//     storage backend ping, for instance) and returns 503 when any fails.
//   - Version (/version): Reports build information.
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("storage", store.Ping)
//
//	mux.HandleFunc("GET /health/live", checker.LivenessHandler())
//	mux.HandleFunc("GET /health/ready", checker.ReadinessHandler())
//	mux.HandleFunc("GET /version", health.VersionHandler("0.1.0", commit, buildTime))
//
// # Check Semantics
//
// Readiness checks run concurrently, each bounded by the configured check
// timeout. A check that returns an error or times out marks the system
// degraded, and the readiness endpoint responds 503 so load balancers stop
// routing traffic until the dependency recovers.
package health
