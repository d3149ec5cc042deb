package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Gradnos/dpAssignment2Api/pkg/cli"
	"github.com/Gradnos/dpAssignment2Api/pkg/config"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/retention"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/service"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/storage"
	"github.com/Gradnos/dpAssignment2Api/pkg/server"
	"github.com/Gradnos/dpAssignment2Api/pkg/telemetry/health"
	"github.com/Gradnos/dpAssignment2Api/pkg/telemetry/logging"
	"github.com/Gradnos/dpAssignment2Api/pkg/telemetry/metrics"
	"github.com/spf13/cobra"
)

var runFlags struct {
	listenAddress string
	backend       string
	logLevel      string
	noWatch       bool
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the habits API server",
	Long: `Start the habits API server with the specified configuration.

The server listens on the configured address and serves the habits API
over the configured storage backend. Retention pruning runs on its cron
schedule when a retention period is configured.

Examples:
  # Start with default config
  habitd run

  # Start with custom config
  habitd run --config /etc/habitd/config.yaml

  # Override listen address
  habitd run --listen 0.0.0.0:8080

  # Force the SQLite backend
  habitd run --backend sqlite

  # Validate config without starting server
  habitd run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.backend, "backend", "", "override storage backend (memory, sqlite)")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.noWatch, "no-watch", false, "disable config file hot reload")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.MustGetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.backend != "" {
		cfg.Storage.Backend = runFlags.backend
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	// Initialize logging based on config
	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	// Open the storage backend. This fails fast on an unusable SQLite
	// path so a bad deployment dies at startup rather than on first write.
	store, err := openStore(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer store.Close()
	fmt.Printf("✓ Storage ready (%s backend)\n", cfg.Storage.Backend)

	// The collector is always created; recording is a no-op when metrics
	// are disabled and the endpoint is simply not mounted.
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	// Every storage operation goes through the instrumented wrapper so
	// backend latency and error rates show up on /metrics.
	instrumented := storage.Instrument(store, cfg.Storage.Backend, collector)

	svc := service.New(instrumented)

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("storage", store.Ping)

	// Context cancelled on SIGINT/SIGTERM drives the whole lifecycle.
	ctx := cli.SetupSignalHandler()

	// Retention pruning (if a retention period is configured)
	if cfg.Retention.Days > 0 {
		pruner := retention.NewPruner(instrumented, &retention.Config{
			RetentionDays:       cfg.Retention.Days,
			PruneSchedule:       cfg.Retention.PruneSchedule,
			ArchiveBeforeDelete: cfg.Retention.ArchiveBeforeDelete,
			ArchivePath:         cfg.Retention.ArchivePath,
		})
		pruner.SetRecorder(collector)

		if err := pruner.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer pruner.Stop()
			if next := pruner.NextPruning(); next != nil {
				slog.Debug("retention scheduler started", "next_pruning", next)
			}
			fmt.Printf("✓ Retention pruning scheduled (%d day retention)\n", cfg.Retention.Days)
		}
	}

	// Config hot reload
	if !runFlags.noWatch {
		startConfigWatcher(ctx, logger)
	}

	srv := server.NewServer(cfg, svc, checker, collector, server.BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Health.Enabled {
		fmt.Printf("✓ Health endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Health.LivenessPath)
	}
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until the context is cancelled (graceful shutdown) or
	// the listener fails.
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// openStore opens the configured storage backend.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case storage.BackendSQLite:
		return storage.NewSQLiteStore(&storage.SQLiteConfig{
			Path:               cfg.Storage.SQLite.Path,
			BusyTimeout:        cfg.Storage.SQLite.BusyTimeout,
			CheckpointInterval: cfg.Storage.SQLite.CheckpointInterval,
		})
	case storage.BackendMemory:
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (supported: memory, sqlite)", cfg.Storage.Backend)
	}
}

// startConfigWatcher hot-reloads the configuration file while the server
// runs. Reloadable settings (log level, CORS, retention, export) take
// effect immediately; anything else is logged as requiring a restart.
func startConfigWatcher(ctx context.Context, logger *logging.Logger) {
	if _, err := os.Stat(cfgFile); err != nil {
		slog.Debug("config watcher skipped, no config file", "path", cfgFile)
		return
	}

	watcher, err := config.NewWatcher(cfgFile)
	if err != nil {
		slog.Warn("config watcher disabled", "error", err)
		return
	}

	go func() {
		err := watcher.Watch(ctx, func(newCfg *config.Config) {
			old := config.GetConfig()

			if fields := config.RequiresRestart(old, newCfg); len(fields) > 0 {
				slog.Warn("configuration changes require a restart to take effect",
					"fields", fields,
				)
			}

			config.SetConfig(newCfg)

			if err := logger.SetLevel(newCfg.Telemetry.Logging.Level); err != nil {
				slog.Warn("invalid log level in reloaded config", "error", err)
			}
		})
		if err != nil {
			slog.Warn("config watcher stopped", "error", err)
		}
	}()
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Habitd v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("storage configured", "backend", cfg.Storage.Backend)

	if cfg.Retention.Days > 0 {
		slog.Debug("retention configured",
			"days", cfg.Retention.Days,
			"schedule", cfg.Retention.PruneSchedule,
		)
	}
}
