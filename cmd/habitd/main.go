// Habitd is a habit tracking service with an HTTP API.
//
// It stores habits, their sub-habits, and daily log entries, providing:
//   - CRUD operations for habits and nested sub-habits
//   - Daily logging for boolean and numeric habits
//   - Streak and completion statistics
//   - Interchangeable in-memory and SQLite storage backends
//   - Scheduled retention pruning with optional archiving
//
// Usage:
//
//	# Start server with default configuration
//	habitd run
//
//	# Start with custom configuration file
//	habitd run --config /path/to/config.yaml
//
//	# Show version information
//	habitd version
//
//	# Validate a configuration file
//	habitd validate --config config.yaml
//
//	# Export habits and logs
//	habitd export --format json --output habits.json
//
//	# Prune expired logs once
//	habitd prune --dry-run
package main

func main() {
	Execute()
}
