package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/service"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/storage"
)

// newTestService builds a service over a fresh memory store.
func newTestService(t *testing.T) *service.Service {
	t.Helper()

	store := storage.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	return service.New(store)
}

// doRequest routes a request through the handler with the {id} path value
// set, the way the server mux would.
func doRequest(handler http.HandlerFunc, method, target, id string, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if id != "" {
		req.SetPathValue("id", id)
	}

	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

// decodeErrorResponse unmarshals an error envelope from the recorder.
func decodeErrorResponse(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var errResp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode error response: %v (body: %s)", err, w.Body.String())
	}
	return errResp
}

func TestHabitHandler_Create(t *testing.T) {
	h := NewHabitHandler(newTestService(t))

	w := doRequest(h.Create, http.MethodPost, "/habits", "",
		`{"name": "Drink Water", "type": "numeric", "goal": 2.0}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (body: %s)", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var created habit.Habit
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if created.ID != 1 {
		t.Errorf("expected id 1, got %d", created.ID)
	}
	if created.Name != "Drink Water" {
		t.Errorf("expected name %q, got %q", "Drink Water", created.Name)
	}
	if created.Type != habit.TypeNumeric {
		t.Errorf("expected type numeric, got %s", created.Type)
	}
	if created.Goal == nil || *created.Goal != 2.0 {
		t.Errorf("expected goal 2.0, got %v", created.Goal)
	}
}

func TestHabitHandler_Create_ValidationError(t *testing.T) {
	h := NewHabitHandler(newTestService(t))

	w := doRequest(h.Create, http.MethodPost, "/habits", "", `{"name": ""}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	errResp := decodeErrorResponse(t, w)
	if errResp.Error.Type != ErrorTypeValidation {
		t.Errorf("expected error type %s, got %s", ErrorTypeValidation, errResp.Error.Type)
	}
	if errResp.Error.Status != http.StatusBadRequest {
		t.Errorf("expected status field 400, got %d", errResp.Error.Status)
	}
}

func TestHabitHandler_Create_InvalidJSON(t *testing.T) {
	h := NewHabitHandler(newTestService(t))

	w := doRequest(h.Create, http.MethodPost, "/habits", "", `{"name": `)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	errResp := decodeErrorResponse(t, w)
	if errResp.Error.Type != ErrorTypeInvalidRequest {
		t.Errorf("expected error type %s, got %s", ErrorTypeInvalidRequest, errResp.Error.Type)
	}
}

func TestHabitHandler_Create_BodyTooLarge(t *testing.T) {
	h := NewHabitHandler(newTestService(t))

	var buf bytes.Buffer
	buf.WriteString(`{"name": "big", "description": "`)
	buf.Write(bytes.Repeat([]byte("x"), maxRequestBodySize+1))
	buf.WriteString(`"}`)

	w := doRequest(h.Create, http.MethodPost, "/habits", "", buf.String())

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", w.Code)
	}

	errResp := decodeErrorResponse(t, w)
	if errResp.Error.Type != ErrorTypeRequestTooLarge {
		t.Errorf("expected error type %s, got %s", ErrorTypeRequestTooLarge, errResp.Error.Type)
	}
}

func TestHabitHandler_List(t *testing.T) {
	svc := newTestService(t)
	h := NewHabitHandler(svc)

	// Empty store returns an empty array, not null
	w := doRequest(h.List, http.MethodGet, "/habits", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}

	doRequest(h.Create, http.MethodPost, "/habits", "", `{"name": "First"}`)
	doRequest(h.Create, http.MethodPost, "/habits", "", `{"name": "Second"}`)

	w = doRequest(h.List, http.MethodGet, "/habits", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var habits []*habit.Habit
	if err := json.Unmarshal(w.Body.Bytes(), &habits); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(habits) != 2 {
		t.Fatalf("expected 2 habits, got %d", len(habits))
	}
	if habits[0].ID != 1 || habits[1].ID != 2 {
		t.Errorf("expected ids [1 2] in creation order, got [%d %d]", habits[0].ID, habits[1].ID)
	}
}

func TestHabitHandler_Get(t *testing.T) {
	h := NewHabitHandler(newTestService(t))

	doRequest(h.Create, http.MethodPost, "/habits", "", `{"name": "Read"}`)

	w := doRequest(h.Get, http.MethodGet, "/habits/1", "1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var found habit.Habit
	if err := json.Unmarshal(w.Body.Bytes(), &found); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if found.Name != "Read" {
		t.Errorf("expected name Read, got %s", found.Name)
	}
}

func TestHabitHandler_Get_NotFound(t *testing.T) {
	h := NewHabitHandler(newTestService(t))

	w := doRequest(h.Get, http.MethodGet, "/habits/99", "99", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}

	errResp := decodeErrorResponse(t, w)
	if errResp.Error.Type != ErrorTypeNotFound {
		t.Errorf("expected error type %s, got %s", ErrorTypeNotFound, errResp.Error.Type)
	}
	if errResp.Error.Status != http.StatusNotFound {
		t.Errorf("expected status field 404, got %d", errResp.Error.Status)
	}
}

func TestHabitHandler_Get_InvalidID(t *testing.T) {
	h := NewHabitHandler(newTestService(t))

	tests := []string{"abc", "0", "-5", "1.5", ""}
	for _, id := range tests {
		w := doRequest(h.Get, http.MethodGet, "/habits/"+id, id, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("id %q: expected status 400, got %d", id, w.Code)
		}

		errResp := decodeErrorResponse(t, w)
		if errResp.Error.Type != ErrorTypeInvalidRequest {
			t.Errorf("id %q: expected error type %s, got %s", id, ErrorTypeInvalidRequest, errResp.Error.Type)
		}
	}
}

func TestHabitHandler_Update(t *testing.T) {
	h := NewHabitHandler(newTestService(t))

	doRequest(h.Create, http.MethodPost, "/habits", "",
		`{"name": "Drink Water", "category": "health"}`)

	w := doRequest(h.Update, http.MethodPut, "/habits/1", "1", `{"name": "Drink 2L Water"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body: %s)", w.Code, w.Body.String())
	}

	var updated habit.Habit
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if updated.ID != 1 {
		t.Errorf("expected id unchanged at 1, got %d", updated.ID)
	}
	if updated.Name != "Drink 2L Water" {
		t.Errorf("expected updated name, got %q", updated.Name)
	}
	// Fields absent from the body are left alone
	if updated.Category != "health" {
		t.Errorf("expected category preserved, got %q", updated.Category)
	}
}

func TestHabitHandler_Update_NotFound(t *testing.T) {
	h := NewHabitHandler(newTestService(t))

	w := doRequest(h.Update, http.MethodPut, "/habits/42", "42", `{"name": "Ghost"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestHabitHandler_Delete(t *testing.T) {
	h := NewHabitHandler(newTestService(t))

	doRequest(h.Create, http.MethodPost, "/habits", "", `{"name": "Short-lived"}`)

	w := doRequest(h.Delete, http.MethodDelete, "/habits/1", "1", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body for 204, got %s", w.Body.String())
	}

	w = doRequest(h.Get, http.MethodGet, "/habits/1", "1", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestHabitHandler_Delete_NotFound(t *testing.T) {
	h := NewHabitHandler(newTestService(t))

	w := doRequest(h.Delete, http.MethodDelete, "/habits/7", "7", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestHabitHandler_AddSubhabit(t *testing.T) {
	h := NewHabitHandler(newTestService(t))

	doRequest(h.Create, http.MethodPost, "/habits", "", `{"name": "Morning routine"}`)

	w := doRequest(h.AddSubhabit, http.MethodPost, "/habits/1/subhabits", "1",
		`{"name": "Stretch"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (body: %s)", w.Code, w.Body.String())
	}

	var child habit.Habit
	if err := json.Unmarshal(w.Body.Bytes(), &child); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if child.ParentID == nil || *child.ParentID != 1 {
		t.Errorf("expected parent_id 1, got %v", child.ParentID)
	}

	// Parent now lists the child
	w = doRequest(h.Get, http.MethodGet, "/habits/1", "1", "")
	var parent habit.Habit
	if err := json.Unmarshal(w.Body.Bytes(), &parent); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(parent.SubhabitIDs) != 1 || parent.SubhabitIDs[0] != child.ID {
		t.Errorf("expected subhabit_ids [%d], got %v", child.ID, parent.SubhabitIDs)
	}
}

func TestHabitHandler_AddSubhabit_ParentNotFound(t *testing.T) {
	h := NewHabitHandler(newTestService(t))

	w := doRequest(h.AddSubhabit, http.MethodPost, "/habits/9/subhabits", "9",
		`{"name": "Orphan"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}
