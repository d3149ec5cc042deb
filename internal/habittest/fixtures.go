package habittest

import (
	"context"
	"testing"
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/storage"
)

// BooleanHabit returns a minimal valid boolean habit input.
func BooleanHabit(name string) habit.NewHabit {
	return habit.NewHabit{
		Name: name,
		Type: habit.TypeBoolean,
	}
}

// NumericHabit returns a numeric habit input with the given goal.
func NumericHabit(name string, goal float64) habit.NewHabit {
	return habit.NewHabit{
		Name: name,
		Type: habit.TypeNumeric,
		Goal: &goal,
	}
}

// Subhabit returns a habit input linked to the given parent.
func Subhabit(name string, parentID int64) habit.NewHabit {
	return habit.NewHabit{
		Name:     name,
		Type:     habit.TypeBoolean,
		ParentID: &parentID,
	}
}

// LogOn returns a log input for the habit on the given date.
func LogOn(habitID int64, date string, value float64) habit.NewLog {
	return habit.NewLog{
		HabitID: habitID,
		Date:    date,
		Value:   &value,
	}
}

// DaysAgo returns the date n days before today in log date format (UTC).
func DaysAgo(n int) string {
	return time.Now().UTC().AddDate(0, 0, -n).Format(habit.DateFormat)
}

// MustCreateHabit stores a habit and fails the test on error.
func MustCreateHabit(t *testing.T, store storage.Store, n habit.NewHabit) *habit.Habit {
	t.Helper()

	h, err := store.CreateHabit(context.Background(), n)
	if err != nil {
		t.Fatalf("CreateHabit(%q) failed: %v", n.Name, err)
	}
	return h
}

// MustCreateLog stores a log entry and fails the test on error.
func MustCreateLog(t *testing.T, store storage.Store, n habit.NewLog) *habit.LogEntry {
	t.Helper()

	entry, err := store.CreateLog(context.Background(), n)
	if err != nil {
		t.Fatalf("CreateLog(habit %d, %s) failed: %v", n.HabitID, n.Date, err)
	}
	return entry
}

// SeedDailyLogs records one completed log per day for the past days days,
// ending today. Useful for building a known streak.
func SeedDailyLogs(t *testing.T, store storage.Store, habitID int64, days int) {
	t.Helper()

	for i := 0; i < days; i++ {
		MustCreateLog(t, store, LogOn(habitID, DaysAgo(i), 1))
	}
}
