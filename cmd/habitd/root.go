package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "habitd",
	Short: "Habitd - habit tracking service",
	Long: `Habitd is a habit tracking service exposing an HTTP API.

It stores habits, their sub-habits, and daily log entries, providing:
  - CRUD operations for habits and nested sub-habits
  - Daily logging for boolean and numeric habits
  - Streak and completion statistics
  - Interchangeable in-memory and SQLite storage backends
  - Scheduled retention pruning with optional archiving`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
