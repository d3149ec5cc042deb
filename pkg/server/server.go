package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/Gradnos/dpAssignment2Api/pkg/config"
	"github.com/Gradnos/dpAssignment2Api/pkg/server/handlers"
	"github.com/Gradnos/dpAssignment2Api/pkg/server/middleware"
	"github.com/Gradnos/dpAssignment2Api/pkg/telemetry/health"
	"github.com/Gradnos/dpAssignment2Api/pkg/telemetry/metrics"
)

// BuildInfo identifies the running binary on the version endpoint.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Server is the HTTP server for the habits API.
type Server struct {
	config    *config.Config
	service   handlers.HabitService
	checker   *health.Checker
	collector *metrics.Collector
	build     BuildInfo
	logger    *slog.Logger

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new API server. The health checker and metrics
// collector may be nil, in which case their endpoints are not served.
func NewServer(cfg *config.Config, svc handlers.HabitService, checker *health.Checker, collector *metrics.Collector, build BuildInfo) *Server {
	return &Server{
		config:    cfg,
		service:   svc,
		checker:   checker,
		collector: collector,
		build:     build,
		logger:    slog.Default().With("component", "server"),
	}
}

// Start starts the HTTP server and blocks until the context is cancelled
// or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	if s.config.Server.TLS.Enabled {
		tlsConfig, err := s.configureTLS()
		if err != nil {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			return fmt.Errorf("failed to configure TLS: %w", err)
		}
		s.httpServer.TLSConfig = tlsConfig
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"address", s.config.Server.ListenAddress,
			"backend", s.config.Storage.Backend,
			"tls_enabled", s.config.Server.TLS.Enabled,
		)

		var err error
		if s.config.Server.TLS.Enabled {
			err = s.httpServer.ListenAndServeTLS(
				s.config.Server.TLS.CertFile,
				s.config.Server.TLS.KeyFile,
			)
		} else {
			err = s.httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server, draining in-flight requests
// within the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	habitHandler := handlers.NewHabitHandler(s.service)
	logHandler := handlers.NewLogHandler(s.service)
	statsHandler := handlers.NewStatsHandler(s.service)

	mux.HandleFunc("POST /habits", habitHandler.Create)
	mux.HandleFunc("GET /habits", habitHandler.List)
	mux.HandleFunc("GET /habits/{id}", habitHandler.Get)
	mux.HandleFunc("PUT /habits/{id}", habitHandler.Update)
	mux.HandleFunc("DELETE /habits/{id}", habitHandler.Delete)
	mux.HandleFunc("POST /habits/{id}/subhabits", habitHandler.AddSubhabit)
	mux.HandleFunc("POST /habits/{id}/logs", logHandler.Record)
	mux.HandleFunc("GET /habits/{id}/logs", logHandler.List)
	mux.HandleFunc("GET /habits/{id}/stats", statsHandler.Get)

	s.registerTelemetryRoutes(mux)

	// The chain is built inside-out: metrics sits directly on the mux so
	// it sees matched route patterns, recovery sits outermost so a panic
	// anywhere below it still produces a response.
	var handler http.Handler = mux

	if s.collector != nil {
		handler = middleware.MetricsMiddleware(s.collector)(handler)
	}
	if s.config.Server.RequestTimeout > 0 {
		handler = middleware.TimeoutMiddleware(s.config.Server.RequestTimeout)(handler)
	}
	handler = middleware.CORSMiddleware(&s.config.Server.CORS)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// registerTelemetryRoutes mounts the health, version, and metrics
// endpoints on their configured paths.
func (s *Server) registerTelemetryRoutes(mux *http.ServeMux) {
	healthCfg := s.config.Telemetry.Health

	if healthCfg.Enabled && s.checker != nil {
		mux.Handle(healthCfg.LivenessPath, s.checker.LivenessHandler())
		if healthCfg.LivenessPath != "/health" {
			mux.Handle("/health", s.checker.LivenessHandler())
		}
		mux.Handle(healthCfg.ReadinessPath, s.checker.ReadinessHandler())
		mux.Handle(healthCfg.VersionPath, health.VersionHandler(
			s.build.Version, s.build.Commit, s.build.BuildTime))
	}

	if s.config.Telemetry.Metrics.Enabled && s.collector != nil {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.collector.Handler())
	}
}

// configureTLS builds the TLS listener configuration.
func (s *Server) configureTLS() (*tls.Config, error) {
	tlsCfg := s.config.Server.TLS

	if tlsCfg.CertFile == "" {
		return nil, fmt.Errorf("TLS cert file not specified")
	}
	if tlsCfg.KeyFile == "" {
		return nil, fmt.Errorf("TLS key file not specified")
	}

	if _, err := os.Stat(tlsCfg.CertFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS cert file not found: %s", tlsCfg.CertFile)
	}
	if _, err := os.Stat(tlsCfg.KeyFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS key file not found: %s", tlsCfg.KeyFile)
	}

	minVersion, err := tlsMinVersion(tlsCfg.MinVersion)
	if err != nil {
		return nil, err
	}

	return &tls.Config{MinVersion: minVersion}, nil
}

// tlsMinVersion maps the configured version string to the tls constant.
func tlsMinVersion(v string) (uint16, error) {
	switch v {
	case "", "1.3":
		return tls.VersionTLS13, nil
	case "1.2":
		return tls.VersionTLS12, nil
	default:
		return 0, fmt.Errorf("unsupported TLS min version %q", v)
	}
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler. Used by tests to exercise
// the full route and middleware stack without a listener.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
