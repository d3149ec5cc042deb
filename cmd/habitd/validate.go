package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/cli"
	"github.com/Gradnos/dpAssignment2Api/pkg/config"
	"github.com/spf13/cobra"
)

var validateFlags struct {
	checkStorage bool
	format       string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate the configuration file without starting the server.

The validate command loads the configuration file, applies defaults and
environment overrides, and reports any validation failures. With
--check-storage it also opens the configured backend and pings it, so a
bad SQLite path or unsupported backend name surfaces before deployment.

Examples:
  # Validate the default config file
  habitd validate

  # Validate a specific file
  habitd validate --config /etc/habitd/config.yaml

  # Also verify the storage backend opens
  habitd validate --check-storage

  # Machine-readable result
  habitd validate --format json`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.checkStorage, "check-storage", false, "open and ping the configured storage backend")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// validationResult is the machine-readable outcome of a validate run.
type validationResult struct {
	ConfigFile     string `json:"config_file"`
	Valid          bool   `json:"valid"`
	Error          string `json:"error,omitempty"`
	Backend        string `json:"backend,omitempty"`
	StorageChecked bool   `json:"storage_checked"`
	ListenAddress  string `json:"listen_address,omitempty"`
	RetentionDays  int    `json:"retention_days,omitempty"`
}

func validateConfig(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(validateFlags.format)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return cli.NewUsageError("--format", "csv is not supported for validate")
	}

	result := validationResult{ConfigFile: cfgFile}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		result.Error = err.Error()
		return writeValidationResult(format, result)
	}

	result.Valid = true
	result.Backend = cfg.Storage.Backend
	result.ListenAddress = cfg.Server.ListenAddress
	result.RetentionDays = cfg.Retention.Days

	if validateFlags.checkStorage {
		result.StorageChecked = true
		if err := pingStore(cfg); err != nil {
			result.Valid = false
			result.Error = err.Error()
		}
	}

	return writeValidationResult(format, result)
}

// pingStore opens the configured backend and pings it once.
func pingStore(cfg *config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return store.Ping(ctx)
}

func writeValidationResult(format cli.OutputFormat, result validationResult) error {
	if format == cli.FormatJSON {
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, result); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Println("✓ Configuration valid")
		fmt.Printf("  Listen address: %s\n", result.ListenAddress)
		fmt.Printf("  Storage backend: %s\n", result.Backend)
		if result.RetentionDays > 0 {
			fmt.Printf("  Retention: %d days\n", result.RetentionDays)
		} else {
			fmt.Println("  Retention: disabled")
		}
		if result.StorageChecked {
			fmt.Println("✓ Storage backend reachable")
		}
	} else {
		fmt.Printf("✗ Configuration invalid: %s\n", result.Error)
	}

	if !result.Valid {
		return cli.NewConfigError(result.ConfigFile, result.Error)
	}
	return nil
}
