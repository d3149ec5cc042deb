// Package config provides configuration management for the habit service.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults. The service
// runs with no configuration file at all; every setting has a default and
// can be supplied through the environment.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file (optional) with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// Passing an empty path to LoadConfigWithEnvOverrides skips the file and
// builds the configuration from defaults plus the environment.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention HABITS_SECTION_FIELD.
// For example:
//
//   - HABITS_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - HABITS_STORAGE_BACKEND overrides storage.backend
//   - HABITS_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Two bare variable names are also recognized for compatibility with
// earlier deployments, and they are applied after the HABITS_* overrides:
//
//   - USE_SQLITE selects the storage backend ("true" = sqlite, "false" = memory)
//   - DB_PATH sets the SQLite database file path
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. HABITS_* environment variable overrides
//  4. USE_SQLITE / DB_PATH compatibility variables
//  5. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Server.ListenAddress)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation
// errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - storage.backend: invalid backend "postgres": must be 'memory' or 'sqlite'
//	  - retention.prune_schedule: invalid cron expression
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	server:
//	  listen_address: "127.0.0.1:8000"
//
//	storage:
//	  backend: "sqlite"
//	  sqlite:
//	    path: "habits.db"
//
//	retention:
//	  days: 90
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses
// read-write locks to allow concurrent reads while protecting against
// concurrent writes during reload operations.
package config
