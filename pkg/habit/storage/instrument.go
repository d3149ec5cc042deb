package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
)

// OperationRecorder receives timings for completed storage operations.
// The metrics collector implements this interface.
type OperationRecorder interface {
	RecordStorageOperation(backend, operation, status string, duration time.Duration)
}

// instrumentedStore wraps a Store and records every operation's duration
// and outcome through an OperationRecorder.
type instrumentedStore struct {
	store    Store
	backend  string
	recorder OperationRecorder
}

// Instrument wraps store so every operation is recorded against recorder
// under the given backend name. A nil recorder returns the store unwrapped.
func Instrument(store Store, backend string, recorder OperationRecorder) Store {
	if recorder == nil {
		return store
	}

	return &instrumentedStore{
		store:    store,
		backend:  backend,
		recorder: recorder,
	}
}

// record classifies the outcome and reports it to the recorder.
func (s *instrumentedStore) record(operation string, start time.Time, err error) {
	status := "success"
	switch {
	case errors.Is(err, habit.ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}

	s.recorder.RecordStorageOperation(s.backend, operation, status, time.Since(start))
}

func (s *instrumentedStore) CreateHabit(ctx context.Context, n habit.NewHabit) (*habit.Habit, error) {
	start := time.Now()
	h, err := s.store.CreateHabit(ctx, n)
	s.record("create_habit", start, err)
	return h, err
}

func (s *instrumentedStore) GetHabit(ctx context.Context, id int64) (*habit.Habit, error) {
	start := time.Now()
	h, err := s.store.GetHabit(ctx, id)
	s.record("get_habit", start, err)
	return h, err
}

func (s *instrumentedStore) ListHabits(ctx context.Context) ([]*habit.Habit, error) {
	start := time.Now()
	habits, err := s.store.ListHabits(ctx)
	s.record("list_habits", start, err)
	return habits, err
}

func (s *instrumentedStore) UpdateHabit(ctx context.Context, id int64, u habit.HabitUpdate) (*habit.Habit, error) {
	start := time.Now()
	h, err := s.store.UpdateHabit(ctx, id, u)
	s.record("update_habit", start, err)
	return h, err
}

func (s *instrumentedStore) DeleteHabit(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.store.DeleteHabit(ctx, id)
	s.record("delete_habit", start, err)
	return err
}

func (s *instrumentedStore) CreateLog(ctx context.Context, n habit.NewLog) (*habit.LogEntry, error) {
	start := time.Now()
	entry, err := s.store.CreateLog(ctx, n)
	s.record("create_log", start, err)
	return entry, err
}

func (s *instrumentedStore) ListLogs(ctx context.Context, habitID int64, from, to string) ([]*habit.LogEntry, error) {
	start := time.Now()
	entries, err := s.store.ListLogs(ctx, habitID, from, to)
	s.record("list_logs", start, err)
	return entries, err
}

func (s *instrumentedStore) DeleteLogsBefore(ctx context.Context, cutoff string) (int64, error) {
	start := time.Now()
	deleted, err := s.store.DeleteLogsBefore(ctx, cutoff)
	s.record("delete_logs_before", start, err)
	return deleted, err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.store.Ping(ctx)
	s.record("ping", start, err)
	return err
}

func (s *instrumentedStore) Close() error {
	return s.store.Close()
}
