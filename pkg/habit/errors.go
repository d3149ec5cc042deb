package habit

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a habit or log entry does not exist. Backends
// wrap it with the missing id; callers match it with errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError wraps ErrNotFound with the kind and id of the missing
// record so handlers can report which lookup failed.
func NotFoundError(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

// ValidationError reports input rejected before it reached storage.
type ValidationError struct {
	Field   string // Offending field name ("name", "goal", ...)
	Message string // Human-readable description
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ExportError represents an error during habit export.
type ExportError struct {
	Format      string // Export format ("json", "csv")
	RecordCount int    // Number of records being exported
	Cause       error  // Underlying error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [format=%s, record_count=%d]: %v", e.Format, e.RecordCount, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new ExportError.
func NewExportError(format string, recordCount int, cause error) *ExportError {
	return &ExportError{
		Format:      format,
		RecordCount: recordCount,
		Cause:       cause,
	}
}

// RetentionError represents an error during log retention enforcement.
type RetentionError struct {
	RetentionDays int   // Configured retention period
	Cause         error // Underlying error
}

// Error implements the error interface.
func (e *RetentionError) Error() string {
	return fmt.Sprintf("retention error [retention_days=%d]: %v", e.RetentionDays, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RetentionError) Unwrap() error {
	return e.Cause
}

// NewRetentionError creates a new RetentionError.
func NewRetentionError(retentionDays int, cause error) *RetentionError {
	return &RetentionError{
		RetentionDays: retentionDays,
		Cause:         cause,
	}
}

// StorageError represents a fault in the storage backend: an unreachable or
// corrupt database, a failed transaction, a locked file. It never wraps
// ErrNotFound; missing records are not faults.
type StorageError struct {
	Backend   string // Backend name ("sqlite", "memory")
	Operation string // Operation that failed ("create_habit", "list_logs", ...)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}
