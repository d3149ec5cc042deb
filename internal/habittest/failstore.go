package habittest

import (
	"context"
	"errors"

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/storage"
)

// FailingStore is a storage.Store whose every operation fails with a fixed
// error. Tests use it to drive the unavailable-backend paths of the service
// and HTTP layers.
type FailingStore struct {
	Err error
}

var _ storage.Store = (*FailingStore)(nil)

// NewFailingStore returns a store that fails every operation with a
// storage fault.
func NewFailingStore() *FailingStore {
	return &FailingStore{
		Err: habit.NewStorageError("mock", "any", errors.New("store is down")),
	}
}

// CreateHabit fails with the configured error.
func (f *FailingStore) CreateHabit(ctx context.Context, n habit.NewHabit) (*habit.Habit, error) {
	return nil, f.Err
}

// GetHabit fails with the configured error.
func (f *FailingStore) GetHabit(ctx context.Context, id int64) (*habit.Habit, error) {
	return nil, f.Err
}

// ListHabits fails with the configured error.
func (f *FailingStore) ListHabits(ctx context.Context) ([]*habit.Habit, error) {
	return nil, f.Err
}

// UpdateHabit fails with the configured error.
func (f *FailingStore) UpdateHabit(ctx context.Context, id int64, u habit.HabitUpdate) (*habit.Habit, error) {
	return nil, f.Err
}

// DeleteHabit fails with the configured error.
func (f *FailingStore) DeleteHabit(ctx context.Context, id int64) error {
	return f.Err
}

// CreateLog fails with the configured error.
func (f *FailingStore) CreateLog(ctx context.Context, n habit.NewLog) (*habit.LogEntry, error) {
	return nil, f.Err
}

// ListLogs fails with the configured error.
func (f *FailingStore) ListLogs(ctx context.Context, habitID int64, from, to string) ([]*habit.LogEntry, error) {
	return nil, f.Err
}

// DeleteLogsBefore fails with the configured error.
func (f *FailingStore) DeleteLogsBefore(ctx context.Context, cutoff string) (int64, error) {
	return 0, f.Err
}

// Ping fails with the configured error.
func (f *FailingStore) Ping(ctx context.Context) error {
	return f.Err
}

// Close always succeeds.
func (f *FailingStore) Close() error {
	return nil
}
