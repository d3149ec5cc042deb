// Package habit defines the core domain model for the habits service: the
// Habit and LogEntry records, the input types used to create and update
// them, and the error taxonomy shared by the storage backends, the service
// layer, and the HTTP handlers.
//
// # Habits
//
// A Habit is identified by a backend-assigned integer ID that never changes
// and is never reused. The only required attribute is a non-empty name;
// description, category, type, and goal are configuration. Habits may nest
// one level or more via ParentID, and SubhabitIDs is always derived from
// those links at read time so it cannot go stale.
//
// # Logs
//
// A LogEntry records one observation for a habit on a calendar day. Dates
// are plain "YYYY-MM-DD" strings (see DateFormat); Value is optional and
// defaults to 1 for boolean habits.
//
// # Errors
//
// Storage backends and the service report failures through three shapes:
//
//   - ErrNotFound (checked with errors.Is) for missing records
//   - ValidationError (checked with errors.As) for rejected input
//   - StorageError (checked with errors.As) for backend faults
//
// HTTP handlers translate these to 404, 400, and 503 respectively.
package habit
