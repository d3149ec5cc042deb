package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
)

// LogHandler serves the per-habit log endpoints.
type LogHandler struct {
	service HabitService
	logger  *slog.Logger
}

// NewLogHandler creates a new log handler.
func NewLogHandler(svc HabitService) *LogHandler {
	return &LogHandler{
		service: svc,
		logger:  slog.Default().With("component", "server.handlers"),
	}
}

// Record handles POST /habits/{id}/logs. The habit id comes from the
// path; a habit_id in the body is ignored.
func (h *LogHandler) Record(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(w, r)
	if err != nil {
		return
	}

	var n habit.NewLog
	if err := decodeJSON(w, r, &n); err != nil {
		return
	}

	entry, err := h.service.RecordLog(r.Context(), id, n)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, entry)
}

// List handles GET /habits/{id}/logs with optional start and end date
// bounds (inclusive, YYYY-MM-DD).
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(w, r)
	if err != nil {
		return
	}

	start, end := dateRange(r)

	logs, err := h.service.ListLogs(r.Context(), id, start, end)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if logs == nil {
		logs = []*habit.LogEntry{}
	}
	WriteJSON(w, http.StatusOK, logs)
}
