package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
)

// MemoryStore implements Store using in-memory maps.
// This is the default backend and provides fast access with no persistence.
// All data is lost when the process exits or the store is closed.
//
// MemoryStore is thread-safe using sync.RWMutex. Writers race at record
// granularity (two concurrent updates of the same habit land in some order,
// last write wins) but the maps themselves are never corrupted.
type MemoryStore struct {
	// habits maps habit id to the stored record.
	habits map[int64]*habit.Habit

	// logs maps log entry id to the stored record.
	logs map[int64]*habit.LogEntry

	// nextHabitID and nextLogID are monotonic counters. They only ever
	// grow, so deleted ids are never handed out again.
	nextHabitID int64
	nextLogID   int64

	// mu protects all fields above.
	mu sync.RWMutex

	// closed marks the store unusable after Close.
	closed bool
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		habits: make(map[int64]*habit.Habit),
		logs:   make(map[int64]*habit.LogEntry),
	}
}

// CreateHabit stores a new habit and returns it with a fresh id.
func (m *MemoryStore) CreateHabit(ctx context.Context, n habit.NewHabit) (*habit.Habit, error) {
	n.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, habit.NewStorageError(BackendMemory, "create_habit", errStoreClosed)
	}

	m.nextHabitID++
	h := &habit.Habit{
		ID:          m.nextHabitID,
		Name:        n.Name,
		Description: n.Description,
		Category:    n.Category,
		Type:        n.Type,
		CreatedAt:   time.Now().UTC(),
	}
	if n.Goal != nil {
		g := *n.Goal
		h.Goal = &g
	}
	if n.ParentID != nil {
		p := *n.ParentID
		h.ParentID = &p
	}

	m.habits[h.ID] = h

	out := h.Clone()
	out.SubhabitIDs = []int64{}
	return out, nil
}

// GetHabit retrieves a habit by id.
func (m *MemoryStore) GetHabit(ctx context.Context, id int64) (*habit.Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, habit.NewStorageError(BackendMemory, "get_habit", errStoreClosed)
	}

	h, ok := m.habits[id]
	if !ok {
		return nil, habit.NotFoundError("habit", id)
	}

	out := h.Clone()
	out.SubhabitIDs = m.subhabitIDsLocked(id)
	return out, nil
}

// ListHabits returns all habits in creation order.
func (m *MemoryStore) ListHabits(ctx context.Context) ([]*habit.Habit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, habit.NewStorageError(BackendMemory, "list_habits", errStoreClosed)
	}

	habits := make([]*habit.Habit, 0, len(m.habits))
	for _, h := range m.habits {
		out := h.Clone()
		out.SubhabitIDs = m.subhabitIDsLocked(h.ID)
		habits = append(habits, out)
	}

	// Ids are monotonic, so ascending id is creation order.
	sort.Slice(habits, func(i, j int) bool { return habits[i].ID < habits[j].ID })

	return habits, nil
}

// UpdateHabit merges the update into an existing habit.
func (m *MemoryStore) UpdateHabit(ctx context.Context, id int64, u habit.HabitUpdate) (*habit.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, habit.NewStorageError(BackendMemory, "update_habit", errStoreClosed)
	}

	h, ok := m.habits[id]
	if !ok {
		return nil, habit.NotFoundError("habit", id)
	}

	u.Apply(h)

	out := h.Clone()
	out.SubhabitIDs = m.subhabitIDsLocked(id)
	return out, nil
}

// DeleteHabit removes a habit and its log entries.
func (m *MemoryStore) DeleteHabit(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return habit.NewStorageError(BackendMemory, "delete_habit", errStoreClosed)
	}

	if _, ok := m.habits[id]; !ok {
		return habit.NotFoundError("habit", id)
	}

	delete(m.habits, id)
	for logID, entry := range m.logs {
		if entry.HabitID == id {
			delete(m.logs, logID)
		}
	}

	return nil
}

// CreateLog stores a new log entry.
func (m *MemoryStore) CreateLog(ctx context.Context, n habit.NewLog) (*habit.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, habit.NewStorageError(BackendMemory, "create_log", errStoreClosed)
	}

	m.nextLogID++
	entry := &habit.LogEntry{
		ID:        m.nextLogID,
		HabitID:   n.HabitID,
		Date:      n.Date,
		CreatedAt: time.Now().UTC(),
	}
	if n.Value != nil {
		v := *n.Value
		entry.Value = &v
	}

	m.logs[entry.ID] = entry

	return entry.Clone(), nil
}

// ListLogs returns a habit's log entries in the inclusive date range.
func (m *MemoryStore) ListLogs(ctx context.Context, habitID int64, from, to string) ([]*habit.LogEntry, error) {
	from, to = normalizeRange(from, to)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, habit.NewStorageError(BackendMemory, "list_logs", errStoreClosed)
	}

	entries := make([]*habit.LogEntry, 0)
	for _, entry := range m.logs {
		if entry.HabitID != habitID {
			continue
		}
		// DateFormat strings compare chronologically.
		if entry.Date < from || entry.Date > to {
			continue
		}
		entries = append(entries, entry.Clone())
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].ID < entries[j].ID
	})

	return entries, nil
}

// DeleteLogsBefore removes log entries dated strictly before the cutoff.
func (m *MemoryStore) DeleteLogsBefore(ctx context.Context, cutoff string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, habit.NewStorageError(BackendMemory, "delete_logs_before", errStoreClosed)
	}

	var deleted int64
	for id, entry := range m.logs {
		if entry.Date < cutoff {
			delete(m.logs, id)
			deleted++
		}
	}

	return deleted, nil
}

// Ping reports whether the store can serve requests.
func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return habit.NewStorageError(BackendMemory, "ping", errStoreClosed)
	}
	return nil
}

// Close marks the store closed and drops all data.
// Close is idempotent and safe to call multiple times.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.habits = make(map[int64]*habit.Habit)
	m.logs = make(map[int64]*habit.LogEntry)

	return nil
}

// Size returns the number of stored habits. Used by tests and health
// reporting.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.habits)
}

// subhabitIDsLocked collects the ids of habits whose parent is id, in
// creation order. Callers must hold at least a read lock.
func (m *MemoryStore) subhabitIDsLocked(id int64) []int64 {
	ids := make([]int64, 0)
	for _, h := range m.habits {
		if h.ParentID != nil && *h.ParentID == id {
			ids = append(ids, h.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

var errStoreClosed = fmt.Errorf("store is closed")
