package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
)

// HabitHandler serves the habit collection and item endpoints.
type HabitHandler struct {
	service HabitService
	logger  *slog.Logger
}

// NewHabitHandler creates a new habit handler.
func NewHabitHandler(svc HabitService) *HabitHandler {
	return &HabitHandler{
		service: svc,
		logger:  slog.Default().With("component", "server.handlers"),
	}
}

// Create handles POST /habits.
func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var n habit.NewHabit
	if err := decodeJSON(w, r, &n); err != nil {
		return
	}

	created, err := h.service.CreateHabit(r.Context(), n)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}

// List handles GET /habits.
func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	habits, err := h.service.ListHabits(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if habits == nil {
		habits = []*habit.Habit{}
	}
	WriteJSON(w, http.StatusOK, habits)
}

// Get handles GET /habits/{id}.
func (h *HabitHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(w, r)
	if err != nil {
		return
	}

	found, err := h.service.GetHabit(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, found)
}

// Update handles PUT /habits/{id}. The body is a partial update; absent
// fields are left unchanged.
func (h *HabitHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(w, r)
	if err != nil {
		return
	}

	var u habit.HabitUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		return
	}

	updated, err := h.service.UpdateHabit(r.Context(), id, u)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /habits/{id}. Sub-habits and log entries go with
// the habit.
func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(w, r)
	if err != nil {
		return
	}

	if err := h.service.DeleteHabit(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddSubhabit handles POST /habits/{id}/subhabits.
func (h *HabitHandler) AddSubhabit(w http.ResponseWriter, r *http.Request) {
	parentID, err := pathID(w, r)
	if err != nil {
		return
	}

	var n habit.NewHabit
	if err := decodeJSON(w, r, &n); err != nil {
		return
	}

	created, err := h.service.AddSubhabit(r.Context(), parentID, n)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}
