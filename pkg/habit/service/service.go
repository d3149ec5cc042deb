package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/stats"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/storage"
)

// Service coordinates validation, persistence, and the cross-record rules
// of the habits domain. It is safe for concurrent use when the underlying
// store is.
type Service struct {
	store  storage.Store
	logger *slog.Logger

	// now is the clock used for statistics. Overridable in tests.
	now func() time.Time
}

// New creates a service on top of the provided store.
func New(store storage.Store) *Service {
	return &Service{
		store:  store,
		logger: slog.Default().With("component", "habit.service"),
		now:    time.Now,
	}
}

// CreateHabit validates and stores a new top-level habit.
func (s *Service) CreateHabit(ctx context.Context, n habit.NewHabit) (*habit.Habit, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	h, err := s.store.CreateHabit(ctx, n)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "habit created", "id", h.ID, "name", h.Name)
	return h, nil
}

// AddSubhabit validates and stores a habit nested under an existing parent.
func (s *Service) AddSubhabit(ctx context.Context, parentID int64, n habit.NewHabit) (*habit.Habit, error) {
	if _, err := s.store.GetHabit(ctx, parentID); err != nil {
		return nil, err
	}

	n.ParentID = &parentID
	if err := n.Validate(); err != nil {
		return nil, err
	}

	h, err := s.store.CreateHabit(ctx, n)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "subhabit created", "id", h.ID, "parent_id", parentID)
	return h, nil
}

// GetHabit retrieves a habit by id.
func (s *Service) GetHabit(ctx context.Context, id int64) (*habit.Habit, error) {
	return s.store.GetHabit(ctx, id)
}

// ListHabits returns all habits in creation order.
func (s *Service) ListHabits(ctx context.Context) ([]*habit.Habit, error) {
	return s.store.ListHabits(ctx)
}

// UpdateHabit validates and applies a partial update.
func (s *Service) UpdateHabit(ctx context.Context, id int64, u habit.HabitUpdate) (*habit.Habit, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpdateHabit(ctx, id, u)
}

// DeleteHabit removes a habit, its log entries, and recursively its
// sub-habits. Each habit is removed atomically; the cascade as a whole is
// sequential, so a failure partway leaves already-deleted sub-habits gone.
func (s *Service) DeleteHabit(ctx context.Context, id int64) error {
	h, err := s.store.GetHabit(ctx, id)
	if err != nil {
		return err
	}

	for _, childID := range h.SubhabitIDs {
		// A child deleted by a concurrent caller is already what we want.
		if err := s.DeleteHabit(ctx, childID); err != nil && !errors.Is(err, habit.ErrNotFound) {
			return err
		}
	}

	if err := s.store.DeleteHabit(ctx, id); err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "habit deleted", "id", id, "subhabits", len(h.SubhabitIDs))
	return nil
}

// RecordLog validates and stores a log entry for an existing habit.
// Boolean habits default a missing value to 1 (done).
func (s *Service) RecordLog(ctx context.Context, habitID int64, n habit.NewLog) (*habit.LogEntry, error) {
	h, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}

	n.HabitID = habitID
	if err := n.Validate(); err != nil {
		return nil, err
	}

	if n.Value == nil && h.Type == habit.TypeBoolean {
		done := 1.0
		n.Value = &done
	}

	return s.store.CreateLog(ctx, n)
}

// ListLogs returns an existing habit's log entries in the inclusive date
// range. Empty bounds are unbounded.
func (s *Service) ListLogs(ctx context.Context, habitID int64, from, to string) ([]*habit.LogEntry, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	if _, err := s.store.GetHabit(ctx, habitID); err != nil {
		return nil, err
	}

	return s.store.ListLogs(ctx, habitID, from, to)
}

// Statistics computes streaks, completions, and averages over an existing
// habit's logs in the inclusive date range.
func (s *Service) Statistics(ctx context.Context, habitID int64, from, to string) (*stats.Result, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	h, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}

	logs, err := s.store.ListLogs(ctx, habitID, from, to)
	if err != nil {
		return nil, err
	}

	return stats.ForType(h.Type).Calculate(h, logs, s.now().UTC()), nil
}

// validateRange rejects malformed date bounds before they reach storage.
func validateRange(from, to string) error {
	if from != "" {
		if _, err := time.Parse(habit.DateFormat, from); err != nil {
			return habit.NewValidationError("start", "start must be formatted as YYYY-MM-DD")
		}
	}
	if to != "" {
		if _, err := time.Parse(habit.DateFormat, to); err != nil {
			return habit.NewValidationError("end", "end must be formatted as YYYY-MM-DD")
		}
	}
	if from != "" && to != "" && from > to {
		return habit.NewValidationError("start", "start must not be after end")
	}
	return nil
}
