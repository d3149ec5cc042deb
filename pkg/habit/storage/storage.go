package storage

import (
	"context"

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
)

// Backend names as they appear in configuration and error reports.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Store defines the interface for habit persistence.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// CreateHabit stores a new habit and returns it with a fresh id and
	// creation timestamp assigned. Ids are strictly increasing and never
	// reused. Input is assumed validated; see habit.NewHabit.Validate.
	CreateHabit(ctx context.Context, n habit.NewHabit) (*habit.Habit, error)

	// GetHabit retrieves a habit by id, with SubhabitIDs derived from
	// parent links. Returns habit.ErrNotFound (wrapped) when absent.
	GetHabit(ctx context.Context, id int64) (*habit.Habit, error)

	// ListHabits returns all habits in creation order (ascending id).
	// Returns an empty slice when the store is empty. Has no side
	// effects; consecutive calls return identical results.
	ListHabits(ctx context.Context) ([]*habit.Habit, error)

	// UpdateHabit merges the set fields of u into the habit and returns
	// the updated record. Id and creation timestamp never change.
	// Returns habit.ErrNotFound (wrapped) when absent.
	UpdateHabit(ctx context.Context, id int64, u habit.HabitUpdate) (*habit.Habit, error)

	// DeleteHabit removes a habit and its log entries. The two removals
	// are atomic. Returns habit.ErrNotFound (wrapped) when absent.
	DeleteHabit(ctx context.Context, id int64) error

	// CreateLog stores a new log entry and returns it with a fresh id
	// and creation timestamp assigned. Habit existence is checked by the
	// service layer, not here.
	CreateLog(ctx context.Context, n habit.NewLog) (*habit.LogEntry, error)

	// ListLogs returns a habit's log entries with dates in the inclusive
	// range [from, to], ordered by date then id. Empty bounds are
	// unbounded. Returns an empty slice when nothing matches.
	ListLogs(ctx context.Context, habitID int64, from, to string) ([]*habit.LogEntry, error)

	// DeleteLogsBefore removes all log entries dated strictly before the
	// cutoff and returns the number removed.
	DeleteLogsBefore(ctx context.Context, cutoff string) (int64, error)

	// Ping reports whether the store can serve requests.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	// The store must not be used after calling Close.
	Close() error
}

// Sentinel date bounds used to normalize open-ended log range queries.
const (
	minDate = "0000-01-01"
	maxDate = "9999-12-31"
)

// normalizeRange substitutes sentinel bounds for empty ones so a single
// fixed query shape serves bounded and unbounded ranges alike.
func normalizeRange(from, to string) (string, string) {
	if from == "" {
		from = minDate
	}
	if to == "" {
		to = maxDate
	}
	return from, to
}
