package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/cli"
	"github.com/Gradnos/dpAssignment2Api/pkg/config"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/export"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/storage"
	"github.com/spf13/cobra"
)

var exportFlags struct {
	backend string
	habitID int64
	start   string
	end     string
	format  string
	output  string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export habits and logs",
	Long: `Export habits and their log entries from the configured storage backend.

Without --habit-id every habit is exported; with it only the named habit.
The --start and --end flags bound the exported logs by date (inclusive,
YYYY-MM-DD).

Formats:
  text - human-readable summary (default)
  json - array of habit snapshots with their logs
  csv  - one row per log entry, habits without logs get a single row

Examples:
  # Export everything to JSON
  habitd export --format json --output habits.json

  # Export one habit's logs for a month
  habitd export --habit-id 3 --start 2026-08-01 --end 2026-08-31 --format csv

  # Quick summary on stdout
  habitd export`,
	RunE: exportHabits,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFlags.backend, "backend", "", "override storage backend (memory, sqlite)")
	exportCmd.Flags().Int64Var(&exportFlags.habitID, "habit-id", 0, "export a single habit (0 = all)")
	exportCmd.Flags().StringVar(&exportFlags.start, "start", "", "earliest log date to include (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportFlags.end, "end", "", "latest log date to include (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportFlags.format, "format", "text", "output format: text, json, csv")
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "output file (default: stdout)")
}

func exportHabits(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(exportFlags.format)
	if err != nil {
		return err
	}

	if err := checkDateFlag("--start", exportFlags.start); err != nil {
		return err
	}
	if err := checkDateFlag("--end", exportFlags.end); err != nil {
		return err
	}

	// Load config to get backend settings
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.MustGetConfig()

	if exportFlags.backend != "" {
		cfg.Storage.Backend = exportFlags.backend
	}

	store, err := openStore(cfg)
	if err != nil {
		return cli.NewCommandError("export", err)
	}
	defer store.Close()

	ctx := context.Background()

	snapshots, err := collectSnapshots(ctx, store)
	if err != nil {
		return cli.NewCommandError("export", err)
	}

	var output *os.File
	if exportFlags.output != "" {
		output, err = os.Create(exportFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	switch format {
	case cli.FormatJSON:
		exporter := export.NewJSONExporter(cfg.Export.JSONPretty)
		if err := exporter.Export(ctx, snapshots, output); err != nil {
			return cli.NewCommandError("export", err)
		}
	case cli.FormatCSV:
		exporter := export.NewCSVExporter(cfg.Export.CSVIncludeHeader)
		if err := exporter.Export(ctx, snapshots, output); err != nil {
			return cli.NewCommandError("export", err)
		}
	default:
		return writeExportSummary(output, snapshots)
	}

	if exportFlags.output != "" {
		fmt.Printf("✓ Exported %d habits to %s\n", len(snapshots), exportFlags.output)
	}
	return nil
}

// collectSnapshots gathers the habits selected by the flags together with
// their logs in the requested date range.
func collectSnapshots(ctx context.Context, store storage.Store) ([]*export.Snapshot, error) {
	var habits []*habit.Habit

	if exportFlags.habitID > 0 {
		h, err := store.GetHabit(ctx, exportFlags.habitID)
		if err != nil {
			return nil, err
		}
		habits = []*habit.Habit{h}
	} else {
		all, err := store.ListHabits(ctx)
		if err != nil {
			return nil, err
		}
		habits = all
	}

	// Progress goes to stderr so it never mixes with exported data.
	var progress cli.ProgressReporter
	if len(habits) > 1 && exportFlags.output != "" {
		progress = cli.NewProgressReporter(nil)
		progress.Start(int64(len(habits)))
	}

	snapshots := make([]*export.Snapshot, 0, len(habits))
	for i, h := range habits {
		logs, err := store.ListLogs(ctx, h.ID, exportFlags.start, exportFlags.end)
		if err != nil {
			if progress != nil {
				progress.Error(err)
			}
			return nil, fmt.Errorf("failed to list logs for habit %d: %w", h.ID, err)
		}
		snapshots = append(snapshots, &export.Snapshot{Habit: h, Logs: logs})

		if progress != nil {
			progress.Update(int64(i + 1))
		}
	}

	if progress != nil {
		progress.Finish()
	}

	return snapshots, nil
}

// writeExportSummary prints a human-readable listing of the snapshots.
func writeExportSummary(output io.Writer, snapshots []*export.Snapshot) error {
	fmt.Fprintf(output, "Total habits: %d\n", len(snapshots))
	if exportFlags.start != "" || exportFlags.end != "" {
		fmt.Fprintf(output, "Date range: %s to %s\n",
			orAny(exportFlags.start), orAny(exportFlags.end))
	}
	fmt.Fprintln(output)

	if len(snapshots) == 0 {
		fmt.Fprintln(output, "No habits found.")
		return nil
	}

	for i, snapshot := range snapshots {
		h := snapshot.Habit

		fmt.Fprintf(output, "[%d] %s (%s)\n", h.ID, h.Name, h.Type)
		if h.Category != "" {
			fmt.Fprintf(output, "    Category: %s\n", h.Category)
		}
		if h.Goal != nil {
			fmt.Fprintf(output, "    Goal: %g\n", *h.Goal)
		}
		if h.ParentID != nil {
			fmt.Fprintf(output, "    Parent: %d\n", *h.ParentID)
		}
		fmt.Fprintf(output, "    Logs: %d\n", len(snapshot.Logs))

		// Show limited output for large result sets
		if i >= 9 && len(snapshots) > 10 {
			remaining := len(snapshots) - 10
			fmt.Fprintln(output)
			fmt.Fprintf(output, "... and %d more habits\n", remaining)
			fmt.Fprintln(output, "Use --format json or csv for the full export.")
			break
		}
	}

	return nil
}

func checkDateFlag(flag, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(habit.DateFormat, value); err != nil {
		return cli.NewUsageError(flag, fmt.Sprintf("%q must be formatted as YYYY-MM-DD", value))
	}
	return nil
}

func orAny(s string) string {
	if s == "" {
		return "(any)"
	}
	return s
}
