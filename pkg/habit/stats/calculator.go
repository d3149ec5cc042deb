package stats

import (
	"sort"
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
)

// Result holds the computed statistics for one habit.
type Result struct {
	HabitID          int64    `json:"habit_id"`
	CurrentStreak    int      `json:"current_streak"`     // Consecutive completed days ending today or yesterday
	LongestStreak    int      `json:"longest_streak"`     // Longest run of consecutive completed days
	TotalCompletions int      `json:"total_completions"`  // Distinct completed days
	CompletionRate   float64  `json:"completion_rate"`    // TotalCompletions / TotalDaysTracked, 0 when no logs
	AverageValue     *float64 `json:"average_value"`      // Mean of recorded values; numeric habits only
	TotalDaysTracked int      `json:"total_days_tracked"` // Number of log entries considered
}

// Calculator computes statistics for one habit type.
type Calculator interface {
	// Calculate summarizes the logs. The caller supplies today's date so
	// current-streak results are reproducible.
	Calculate(h *habit.Habit, logs []*habit.LogEntry, today time.Time) *Result
}

// ForType returns the calculator for a habit type. Unknown types fall back
// to boolean semantics.
func ForType(t habit.Type) Calculator {
	if t == habit.TypeNumeric {
		return numericCalculator{}
	}
	return booleanCalculator{}
}

// booleanCalculator counts a day as completed when any entry that day has
// a value of at least 1.
type booleanCalculator struct{}

func (booleanCalculator) Calculate(h *habit.Habit, logs []*habit.LogEntry, today time.Time) *Result {
	completed := completedDates(logs, func(v float64) bool { return v >= 1 })
	return buildResult(h, logs, completed, today, nil)
}

// numericCalculator counts a day as completed when any entry that day
// meets the goal, or records any positive value when no goal is set. It
// additionally reports the mean of all recorded values.
type numericCalculator struct{}

func (numericCalculator) Calculate(h *habit.Habit, logs []*habit.LogEntry, today time.Time) *Result {
	meetsGoal := func(v float64) bool {
		if h.Goal != nil {
			return v >= *h.Goal
		}
		return v > 0
	}
	completed := completedDates(logs, meetsGoal)
	return buildResult(h, logs, completed, today, averageValue(logs))
}

// buildResult assembles a Result from the shared pieces.
func buildResult(h *habit.Habit, logs []*habit.LogEntry, completed map[string]bool, today time.Time, avg *float64) *Result {
	rate := 0.0
	if len(logs) > 0 {
		rate = float64(len(completed)) / float64(len(logs))
	}

	return &Result{
		HabitID:          h.ID,
		CurrentStreak:    currentStreak(completed, today),
		LongestStreak:    longestStreak(completed),
		TotalCompletions: len(completed),
		CompletionRate:   rate,
		AverageValue:     avg,
		TotalDaysTracked: len(logs),
	}
}

// completedDates collects the distinct dates whose entries satisfy done.
// Entries without a value never complete a day.
func completedDates(logs []*habit.LogEntry, done func(float64) bool) map[string]bool {
	completed := make(map[string]bool)
	for _, entry := range logs {
		if entry.Value == nil {
			continue
		}
		if done(*entry.Value) {
			completed[entry.Date] = true
		}
	}
	return completed
}

// averageValue returns the mean of all recorded values, or nil when no
// entry has one.
func averageValue(logs []*habit.LogEntry) *float64 {
	var sum float64
	var count int
	for _, entry := range logs {
		if entry.Value == nil {
			continue
		}
		sum += *entry.Value
		count++
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

// currentStreak counts consecutive completed days backward from today.
// When today is not completed the count starts at yesterday, so a streak
// stays alive until the day is actually missed.
func currentStreak(completed map[string]bool, today time.Time) int {
	if len(completed) == 0 {
		return 0
	}

	day := today
	if !completed[day.Format(habit.DateFormat)] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for completed[day.Format(habit.DateFormat)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// longestStreak finds the longest run of consecutive completed days.
func longestStreak(completed map[string]bool) int {
	if len(completed) == 0 {
		return 0
	}

	days := make([]time.Time, 0, len(completed))
	for date := range completed {
		day, err := time.Parse(habit.DateFormat, date)
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 0, 0
	for i, day := range days {
		if i > 0 && day.Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
