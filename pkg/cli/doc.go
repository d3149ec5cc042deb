/*
Package cli provides command-line interface utilities for the habits service.

The cli package includes output formatters, progress reporters, and common CLI
helpers used by the habitd command.

Output Formatting:

The cli package supports multiple output formats (text, JSON, CSV) for
displaying command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	result := PruneResult{...}
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

CSV output requires the result type to implement the Tabular interface.

Progress Reporting:

For long-running operations such as exporting large datasets, use the
progress reporter:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(totalRecords)
	for i, record := range records {
		// Export record
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
