package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/cli"
	"github.com/Gradnos/dpAssignment2Api/pkg/config"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/retention"
	"github.com/spf13/cobra"
)

var pruneFlags struct {
	backend string
	days    int
	archive bool
	dryRun  bool
	format  string
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Prune expired log entries once",
	Long: `Run a single retention pruning pass against the configured backend.

Log entries older than the retention period are deleted, optionally
archiving them to a JSON file first. The running server prunes on its
cron schedule; this command is for manual or scripted runs.

Examples:
  # Prune using the configured retention period
  habitd prune

  # See what would be deleted without deleting
  habitd prune --dry-run

  # Override the retention period
  habitd prune --days 30

  # Archive before deleting
  habitd prune --archive`,
	RunE: pruneLogs,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().StringVar(&pruneFlags.backend, "backend", "", "override storage backend (memory, sqlite)")
	pruneCmd.Flags().IntVar(&pruneFlags.days, "days", 0, "override retention period in days")
	pruneCmd.Flags().BoolVar(&pruneFlags.archive, "archive", false, "archive logs before deleting")
	pruneCmd.Flags().BoolVar(&pruneFlags.dryRun, "dry-run", false, "count expired logs without deleting")
	pruneCmd.Flags().StringVar(&pruneFlags.format, "format", "text", "output format: text, json, csv")
}

// pruneResult is the outcome of a prune run in all output formats.
type pruneResult struct {
	Backend       string `json:"backend"`
	RetentionDays int    `json:"retention_days"`
	CutoffDate    string `json:"cutoff_date"`
	DryRun        bool   `json:"dry_run"`
	Deleted       int64  `json:"deleted"`
}

// Header implements cli.Tabular.
func (r pruneResult) Header() []string {
	return []string{"backend", "retention_days", "cutoff_date", "dry_run", "deleted"}
}

// Rows implements cli.Tabular.
func (r pruneResult) Rows() [][]string {
	return [][]string{{
		r.Backend,
		strconv.Itoa(r.RetentionDays),
		r.CutoffDate,
		strconv.FormatBool(r.DryRun),
		strconv.FormatInt(r.Deleted, 10),
	}}
}

func pruneLogs(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(pruneFlags.format)
	if err != nil {
		return err
	}

	// Load config to get backend and retention settings
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.MustGetConfig()

	if pruneFlags.backend != "" {
		cfg.Storage.Backend = pruneFlags.backend
	}

	retentionDays := cfg.Retention.Days
	if pruneFlags.days > 0 {
		retentionDays = pruneFlags.days
	}
	if retentionDays <= 0 {
		return cli.NewUsageError("--days",
			"no retention period configured; set retention.days or pass --days")
	}

	archive := cfg.Retention.ArchiveBeforeDelete || pruneFlags.archive

	store, err := openStore(cfg)
	if err != nil {
		return cli.NewCommandError("prune", err)
	}
	defer store.Close()

	pruner := retention.NewPruner(store, &retention.Config{
		RetentionDays:       retentionDays,
		PruneSchedule:       cfg.Retention.PruneSchedule,
		ArchiveBeforeDelete: archive,
		ArchivePath:         cfg.Retention.ArchivePath,
	})

	ctx := context.Background()

	var deleted int64
	if pruneFlags.dryRun {
		deleted, err = pruner.DryRun(ctx)
	} else {
		deleted, err = pruner.Prune(ctx)
	}
	if err != nil {
		return cli.NewCommandError("prune", err)
	}

	result := pruneResult{
		Backend:       cfg.Storage.Backend,
		RetentionDays: retentionDays,
		CutoffDate: time.Now().UTC().
			AddDate(0, 0, -retentionDays).Format(habit.DateFormat),
		DryRun:  pruneFlags.dryRun,
		Deleted: deleted,
	}

	switch format {
	case cli.FormatJSON, cli.FormatCSV:
		formatter := cli.NewFormatter(format)
		return formatter.FormatTo(os.Stdout, result)
	default:
		if result.DryRun {
			fmt.Printf("Would delete %d log entries dated before %s (%d day retention)\n",
				result.Deleted, result.CutoffDate, result.RetentionDays)
		} else {
			fmt.Printf("✓ Deleted %d log entries dated before %s (%d day retention)\n",
				result.Deleted, result.CutoffDate, result.RetentionDays)
		}
		return nil
	}
}
