package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/stats"
)

func TestStatsHandler_Get(t *testing.T) {
	svc := newTestService(t)
	habitHandler := NewHabitHandler(svc)
	logHandler := NewLogHandler(svc)
	statsHandler := NewStatsHandler(svc)

	w := doRequest(habitHandler.Create, http.MethodPost, "/habits", "",
		`{"name": "Meditate"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("fixture habit create failed: %d", w.Code)
	}

	// Two consecutive days ending today
	today := time.Now().UTC()
	for _, d := range []time.Time{today.AddDate(0, 0, -1), today} {
		w := doRequest(logHandler.Record, http.MethodPost, "/habits/1/logs", "1",
			`{"date": "`+d.Format(habit.DateFormat)+`"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("log create failed: %d %s", w.Code, w.Body.String())
		}
	}

	w = doRequest(statsHandler.Get, http.MethodGet, "/habits/1/stats", "1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body: %s)", w.Code, w.Body.String())
	}

	var result stats.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result.HabitID != 1 {
		t.Errorf("expected habit_id 1, got %d", result.HabitID)
	}
	if result.CurrentStreak != 2 {
		t.Errorf("expected current streak 2, got %d", result.CurrentStreak)
	}
	if result.TotalCompletions != 2 {
		t.Errorf("expected 2 completions, got %d", result.TotalCompletions)
	}
	if result.AverageValue != nil {
		t.Errorf("boolean habit should have no average value, got %v", *result.AverageValue)
	}
}

func TestStatsHandler_Get_NumericAverage(t *testing.T) {
	svc := newTestService(t)
	habitHandler := NewHabitHandler(svc)
	logHandler := NewLogHandler(svc)
	statsHandler := NewStatsHandler(svc)

	doRequest(habitHandler.Create, http.MethodPost, "/habits", "",
		`{"name": "Run", "type": "numeric", "goal": 5}`)
	doRequest(logHandler.Record, http.MethodPost, "/habits/1/logs", "1",
		`{"date": "2026-08-18", "value": 4}`)
	doRequest(logHandler.Record, http.MethodPost, "/habits/1/logs", "1",
		`{"date": "2026-08-19", "value": 6}`)

	w := doRequest(statsHandler.Get, http.MethodGet, "/habits/1/stats", "1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var result stats.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result.AverageValue == nil || *result.AverageValue != 5 {
		t.Errorf("expected average value 5, got %v", result.AverageValue)
	}
	// Only the 6 meets the goal of 5
	if result.TotalCompletions != 1 {
		t.Errorf("expected 1 completion, got %d", result.TotalCompletions)
	}
}

func TestStatsHandler_Get_NotFound(t *testing.T) {
	svc := newTestService(t)
	statsHandler := NewStatsHandler(svc)

	w := doRequest(statsHandler.Get, http.MethodGet, "/habits/5/stats", "5", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestStatsHandler_Get_InvalidRange(t *testing.T) {
	svc := newTestService(t)
	habitHandler := NewHabitHandler(svc)
	statsHandler := NewStatsHandler(svc)

	doRequest(habitHandler.Create, http.MethodPost, "/habits", "", `{"name": "Read"}`)

	w := doRequest(statsHandler.Get, http.MethodGet,
		"/habits/1/stats?start=2026-09-01&end=2026-08-01", "1", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}
