package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Gradnos/dpAssignment2Api/pkg/config"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/export"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/storage"
)

// useTestConfig points the command globals at a fresh config backed by a
// SQLite database in a temp dir, and returns the database path. The config
// singleton is initialized once per process; SetConfig swaps the instance
// each call so tests stay independent of each other.
func useTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	cfgFile = writeConfigFile(t, "storage:\n  backend: memory\n")
	_ = config.Initialize(cfgFile)

	dbPath := filepath.Join(dir, "habits.db")
	cfg := config.NewDefault()
	cfg.Storage.Backend = storage.BackendSQLite
	cfg.Storage.SQLite.Path = dbPath
	config.SetConfig(cfg)

	return dbPath
}

// seedHabits writes sample habits and logs into the database at dbPath.
func seedHabits(t *testing.T, dbPath string, logDates []string) int64 {
	t.Helper()

	store, err := storage.NewSQLiteStore(&storage.SQLiteConfig{Path: dbPath})
	if err != nil {
		t.Fatalf("Failed to open seed store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	h, err := store.CreateHabit(ctx, habit.NewHabit{Name: "Meditate", Type: habit.TypeBoolean})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	goal := 5.0
	if _, err := store.CreateHabit(ctx, habit.NewHabit{Name: "Run", Type: habit.TypeNumeric, Goal: &goal}); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	one := 1.0
	for _, date := range logDates {
		if _, err := store.CreateLog(ctx, habit.NewLog{HabitID: h.ID, Date: date, Value: &one}); err != nil {
			t.Fatalf("CreateLog failed: %v", err)
		}
	}

	return h.ID
}

func resetExportFlags() {
	exportFlags.backend = ""
	exportFlags.habitID = 0
	exportFlags.start = ""
	exportFlags.end = ""
	exportFlags.format = "text"
	exportFlags.output = ""
}

func TestExportHabitsJSON(t *testing.T) {
	dbPath := useTestConfig(t)
	seedHabits(t, dbPath, []string{"2026-08-10", "2026-08-11"})

	outPath := filepath.Join(t.TempDir(), "habits.json")

	resetExportFlags()
	exportFlags.format = "json"
	exportFlags.output = outPath

	if err := exportHabits(nil, []string{}); err != nil {
		t.Fatalf("exportHabits() returned error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Failed to read export file: %v", err)
	}

	var snapshots []*export.Snapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		t.Fatalf("Export file is not valid JSON: %v", err)
	}

	if len(snapshots) != 2 {
		t.Fatalf("exported %d habits, want 2", len(snapshots))
	}
	if snapshots[0].Habit.Name != "Meditate" {
		t.Errorf("first habit = %q, want Meditate", snapshots[0].Habit.Name)
	}
	if len(snapshots[0].Logs) != 2 {
		t.Errorf("first habit has %d logs, want 2", len(snapshots[0].Logs))
	}
}

func TestExportHabitsSingleHabit(t *testing.T) {
	dbPath := useTestConfig(t)
	habitID := seedHabits(t, dbPath, []string{"2026-08-10"})

	outPath := filepath.Join(t.TempDir(), "habit.json")

	resetExportFlags()
	exportFlags.format = "json"
	exportFlags.output = outPath
	exportFlags.habitID = habitID

	if err := exportHabits(nil, []string{}); err != nil {
		t.Fatalf("exportHabits() returned error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Failed to read export file: %v", err)
	}

	var snapshots []*export.Snapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		t.Fatalf("Export file is not valid JSON: %v", err)
	}

	if len(snapshots) != 1 {
		t.Fatalf("exported %d habits, want 1", len(snapshots))
	}
	if snapshots[0].Habit.ID != habitID {
		t.Errorf("exported habit id = %d, want %d", snapshots[0].Habit.ID, habitID)
	}
}

func TestExportHabitsDateRange(t *testing.T) {
	dbPath := useTestConfig(t)
	habitID := seedHabits(t, dbPath, []string{"2026-08-01", "2026-08-15", "2026-08-30"})

	outPath := filepath.Join(t.TempDir(), "habit.json")

	resetExportFlags()
	exportFlags.format = "json"
	exportFlags.output = outPath
	exportFlags.habitID = habitID
	exportFlags.start = "2026-08-10"
	exportFlags.end = "2026-08-20"

	if err := exportHabits(nil, []string{}); err != nil {
		t.Fatalf("exportHabits() returned error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Failed to read export file: %v", err)
	}

	var snapshots []*export.Snapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		t.Fatalf("Export file is not valid JSON: %v", err)
	}

	if len(snapshots[0].Logs) != 1 {
		t.Fatalf("exported %d logs, want 1 inside the range", len(snapshots[0].Logs))
	}
	if snapshots[0].Logs[0].Date != "2026-08-15" {
		t.Errorf("exported log date = %q, want 2026-08-15", snapshots[0].Logs[0].Date)
	}
}

func TestExportHabitsCSV(t *testing.T) {
	dbPath := useTestConfig(t)
	seedHabits(t, dbPath, []string{"2026-08-10"})

	outPath := filepath.Join(t.TempDir(), "habits.csv")

	resetExportFlags()
	exportFlags.format = "csv"
	exportFlags.output = outPath

	if err := exportHabits(nil, []string{}); err != nil {
		t.Fatalf("exportHabits() returned error: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("Failed to read export file: %v", err)
	}

	content := string(data)
	if !strings.HasPrefix(content, "habit_id,habit_name") {
		t.Errorf("CSV export missing header row, got:\n%s", content)
	}
	if !strings.Contains(content, "Meditate") {
		t.Errorf("CSV export missing habit data, got:\n%s", content)
	}
}

func TestExportHabitsUnknownHabit(t *testing.T) {
	useTestConfig(t)

	resetExportFlags()
	exportFlags.format = "json"
	exportFlags.habitID = 999

	if err := exportHabits(nil, []string{}); err == nil {
		t.Error("exportHabits() with unknown habit id should return error")
	}
}

func TestExportHabitsInvalidDateFlag(t *testing.T) {
	useTestConfig(t)

	resetExportFlags()
	exportFlags.start = "not-a-date"

	if err := exportHabits(nil, []string{}); err == nil {
		t.Error("exportHabits() with malformed --start should return error")
	}
}

func TestCheckDateFlag(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"empty is allowed", "", false},
		{"valid date", "2026-08-22", false},
		{"wrong layout", "22-08-2026", true},
		{"not a date", "yesterday", true},
		{"impossible day", "2026-02-31", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkDateFlag("--start", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkDateFlag(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}
