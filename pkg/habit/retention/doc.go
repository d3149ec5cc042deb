// Package retention enforces a log retention policy: entries older than a
// configured number of days are deleted on a cron schedule, optionally
// archived to a dated JSON file first.
//
// Habits themselves are never pruned, only their log entries. A retention
// period of zero disables pruning entirely.
package retention
