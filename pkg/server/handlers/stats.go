package handlers

import (
	"log/slog"
	"net/http"
)

// StatsHandler serves the habit statistics endpoint.
type StatsHandler struct {
	service HabitService
	logger  *slog.Logger
}

// NewStatsHandler creates a new statistics handler.
func NewStatsHandler(svc HabitService) *StatsHandler {
	return &StatsHandler{
		service: svc,
		logger:  slog.Default().With("component", "server.handlers"),
	}
}

// Get handles GET /habits/{id}/stats with optional start and end date
// bounds (inclusive, YYYY-MM-DD).
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(w, r)
	if err != nil {
		return
	}

	start, end := dateRange(r)

	result, err := h.service.Statistics(r.Context(), id, start, end)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
