// Package export serializes habits and their log entries to JSON and CSV.
//
// Both exporters consume Snapshot values, a habit bundled with the log
// entries selected for export. The retention pruner archives expiring logs
// through the JSON exporter; the habitd export command supports either
// format and writes to a file or stdout.
package export
