package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/config"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/service"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/storage"
	"github.com/Gradnos/dpAssignment2Api/pkg/server/handlers"
	"github.com/Gradnos/dpAssignment2Api/pkg/telemetry/health"
	"github.com/Gradnos/dpAssignment2Api/pkg/telemetry/metrics"
)

// newTestServer wires a full server over the memory backend and returns an
// httptest server running the complete route and middleware stack.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := config.NewDefault()

	store := storage.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	svc := service.New(store)

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("storage", store.Ping)

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	srv := NewServer(cfg, svc, checker, collector, BuildInfo{
		Version:   "test",
		Commit:    "abc1234",
		BuildTime: "2026-01-01T00:00:00Z",
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts
}

// doRequest sends a request to the test server and returns the response
// along with its fully read body.
func doRequest(t *testing.T, ts *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	_ = resp.Body.Close()

	return resp, respBody
}

func TestServer_HabitCRUDFlow(t *testing.T) {
	ts := newTestServer(t)

	// Create
	resp, body := doRequest(t, ts, http.MethodPost, "/habits",
		`{"name":"Meditate","description":"10 minutes","category":"health","type":"boolean"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %v, want %v: %s", resp.StatusCode, http.StatusCreated, body)
	}

	var created habit.Habit
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("Failed to decode created habit: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("created id = %v, want 1", created.ID)
	}

	// Get
	resp, body = doRequest(t, ts, http.MethodGet, "/habits/1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	var fetched habit.Habit
	if err := json.Unmarshal(body, &fetched); err != nil {
		t.Fatalf("Failed to decode habit: %v", err)
	}
	if fetched.Name != "Meditate" {
		t.Errorf("name = %q, want Meditate", fetched.Name)
	}

	// Update
	resp, body = doRequest(t, ts, http.MethodPut, "/habits/1", `{"name":"Meditate Daily"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %v, want %v: %s", resp.StatusCode, http.StatusOK, body)
	}

	var updated habit.Habit
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("Failed to decode updated habit: %v", err)
	}
	if updated.Name != "Meditate Daily" {
		t.Errorf("updated name = %q, want Meditate Daily", updated.Name)
	}
	if updated.Category != "health" {
		t.Errorf("category = %q, want health to survive a partial update", updated.Category)
	}

	// List
	resp, body = doRequest(t, ts, http.MethodGet, "/habits", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	var habits []*habit.Habit
	if err := json.Unmarshal(body, &habits); err != nil {
		t.Fatalf("Failed to decode habit list: %v", err)
	}
	if len(habits) != 1 {
		t.Errorf("list returned %d habits, want 1", len(habits))
	}

	// Delete
	resp, _ = doRequest(t, ts, http.MethodDelete, "/habits/1", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %v, want %v", resp.StatusCode, http.StatusNoContent)
	}

	// Get after delete
	resp, body = doRequest(t, ts, http.MethodGet, "/habits/1", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %v, want %v", resp.StatusCode, http.StatusNotFound)
	}

	var errResp handlers.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errResp.Error.Type != handlers.ErrorTypeNotFound {
		t.Errorf("error type = %v, want %v", errResp.Error.Type, handlers.ErrorTypeNotFound)
	}
}

func TestServer_SubhabitAndLogFlow(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doRequest(t, ts, http.MethodPost, "/habits",
		`{"name":"Exercise","type":"numeric","goal":30}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %v, want %v: %s", resp.StatusCode, http.StatusCreated, body)
	}

	resp, body = doRequest(t, ts, http.MethodPost, "/habits/1/subhabits",
		`{"name":"Stretch","type":"boolean"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add subhabit status = %v, want %v: %s", resp.StatusCode, http.StatusCreated, body)
	}

	var sub habit.Habit
	if err := json.Unmarshal(body, &sub); err != nil {
		t.Fatalf("Failed to decode subhabit: %v", err)
	}
	if sub.ParentID == nil || *sub.ParentID != 1 {
		t.Errorf("subhabit parent_id = %v, want 1", sub.ParentID)
	}

	resp, body = doRequest(t, ts, http.MethodGet, "/habits/1", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get parent status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	var parent habit.Habit
	if err := json.Unmarshal(body, &parent); err != nil {
		t.Fatalf("Failed to decode parent: %v", err)
	}
	if len(parent.SubhabitIDs) != 1 || parent.SubhabitIDs[0] != sub.ID {
		t.Errorf("parent subhabit_ids = %v, want [%d]", parent.SubhabitIDs, sub.ID)
	}

	// Record a log against the parent
	today := time.Now().UTC().Format(habit.DateFormat)
	resp, body = doRequest(t, ts, http.MethodPost, "/habits/1/logs",
		fmt.Sprintf(`{"date":%q,"value":45}`, today))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("record log status = %v, want %v: %s", resp.StatusCode, http.StatusCreated, body)
	}

	var entry habit.LogEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		t.Fatalf("Failed to decode log entry: %v", err)
	}
	if entry.HabitID != 1 {
		t.Errorf("log habit_id = %v, want 1", entry.HabitID)
	}
	if entry.Value == nil || *entry.Value != 45 {
		t.Errorf("log value = %v, want 45", entry.Value)
	}

	// List logs
	resp, body = doRequest(t, ts, http.MethodGet, "/habits/1/logs", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list logs status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	var logs []*habit.LogEntry
	if err := json.Unmarshal(body, &logs); err != nil {
		t.Fatalf("Failed to decode log list: %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("list returned %d logs, want 1", len(logs))
	}

	// Stats
	resp, body = doRequest(t, ts, http.MethodGet, "/habits/1/stats", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %v, want %v: %s", resp.StatusCode, http.StatusOK, body)
	}

	var stats struct {
		HabitID          int64 `json:"habit_id"`
		CurrentStreak    int   `json:"current_streak"`
		TotalCompletions int   `json:"total_completions"`
	}
	if err := json.Unmarshal(body, &stats); err != nil {
		t.Fatalf("Failed to decode stats: %v", err)
	}
	if stats.HabitID != 1 {
		t.Errorf("stats habit_id = %v, want 1", stats.HabitID)
	}
	if stats.TotalCompletions != 1 {
		t.Errorf("total_completions = %v, want 1 (45 >= goal 30)", stats.TotalCompletions)
	}
}

func TestServer_ValidationError(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doRequest(t, ts, http.MethodPost, "/habits", `{"name":"","type":"boolean"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %v, want %v: %s", resp.StatusCode, http.StatusBadRequest, body)
	}

	var errResp handlers.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errResp.Error.Type != handlers.ErrorTypeValidation {
		t.Errorf("error type = %v, want %v", errResp.Error.Type, handlers.ErrorTypeValidation)
	}
	if errResp.Error.Status != http.StatusBadRequest {
		t.Errorf("error status = %v, want %v", errResp.Error.Status, http.StatusBadRequest)
	}
}

func TestServer_HealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	t.Run("liveness", func(t *testing.T) {
		for _, path := range []string{"/health/live", "/health"} {
			resp, body := doRequest(t, ts, http.MethodGet, path, "")
			if resp.StatusCode != http.StatusOK {
				t.Errorf("GET %s status = %v, want %v", path, resp.StatusCode, http.StatusOK)
			}

			var status health.HealthStatus
			if err := json.Unmarshal(body, &status); err != nil {
				t.Fatalf("Failed to decode %s response: %v", path, err)
			}
			if status.Status != "ok" {
				t.Errorf("GET %s status field = %q, want ok", path, status.Status)
			}
		}
	})

	t.Run("readiness", func(t *testing.T) {
		resp, body := doRequest(t, ts, http.MethodGet, "/health/ready", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusOK)
		}

		var status health.HealthStatus
		if err := json.Unmarshal(body, &status); err != nil {
			t.Fatalf("Failed to decode readiness response: %v", err)
		}
		if status.Status != "ready" {
			t.Errorf("status = %q, want ready", status.Status)
		}
		if check, ok := status.Checks["storage"]; !ok || check.Status != "ok" {
			t.Errorf("storage check = %+v, want ok", status.Checks)
		}
	})

	t.Run("version", func(t *testing.T) {
		resp, body := doRequest(t, ts, http.MethodGet, "/version", "")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusOK)
		}

		var version map[string]string
		if err := json.Unmarshal(body, &version); err != nil {
			t.Fatalf("Failed to decode version response: %v", err)
		}
		if version["version"] != "test" {
			t.Errorf("version = %q, want test", version["version"])
		}
	})

	t.Run("rejects non-GET methods", func(t *testing.T) {
		resp, _ := doRequest(t, ts, http.MethodPost, "/health/live", "")
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("POST liveness status = %v, want %v", resp.StatusCode, http.StatusMethodNotAllowed)
		}
	})
}

func TestServer_MetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	// Generate some traffic first so counters exist.
	doRequest(t, ts, http.MethodGet, "/habits", "")

	resp, body := doRequest(t, ts, http.MethodGet, "/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	exposition := string(body)
	if !strings.Contains(exposition, "habits_api_requests_total") {
		t.Errorf("exposition missing habits_api_requests_total:\n%s", exposition)
	}
	if !strings.Contains(exposition, `route="/habits"`) {
		t.Errorf("exposition missing the /habits route label:\n%s", exposition)
	}
}

func TestServer_RequestIDHeader(t *testing.T) {
	ts := newTestServer(t)

	t.Run("generates a request id", func(t *testing.T) {
		resp, _ := doRequest(t, ts, http.MethodGet, "/habits", "")
		if got := resp.Header.Get("X-Request-ID"); got == "" {
			t.Error("X-Request-ID header should be set on responses")
		}
	})

	t.Run("echoes a provided request id", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/habits", nil)
		if err != nil {
			t.Fatalf("Failed to create request: %v", err)
		}
		req.Header.Set("X-Request-ID", "client-supplied-id")

		resp, err := ts.Client().Do(req)
		if err != nil {
			t.Fatalf("GET /habits failed: %v", err)
		}
		defer resp.Body.Close()

		if got := resp.Header.Get("X-Request-ID"); got != "client-supplied-id" {
			t.Errorf("X-Request-ID = %q, want client-supplied-id", got)
		}
	})
}

func TestServer_CORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/habits", nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("OPTIONS /habits failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %v, want %v", resp.StatusCode, http.StatusNoContent)
	}
	if resp.Header.Get("Access-Control-Allow-Methods") == "" {
		t.Error("Access-Control-Allow-Methods should be set")
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doRequest(t, ts, http.MethodDelete, "/habits", "")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("DELETE /habits status = %v, want %v", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doRequest(t, ts, http.MethodGet, "/no-such-route", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %v, want %v", resp.StatusCode, http.StatusNotFound)
	}
}

func TestServer_TLSConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{
			name: "missing cert file path",
			modify: func(cfg *config.Config) {
				cfg.Server.TLS.Enabled = true
				cfg.Server.TLS.KeyFile = "/tmp/key.pem"
			},
		},
		{
			name: "missing key file path",
			modify: func(cfg *config.Config) {
				cfg.Server.TLS.Enabled = true
				cfg.Server.TLS.CertFile = "/tmp/cert.pem"
			},
		},
		{
			name: "nonexistent cert file",
			modify: func(cfg *config.Config) {
				cfg.Server.TLS.Enabled = true
				cfg.Server.TLS.CertFile = "/nonexistent/cert.pem"
				cfg.Server.TLS.KeyFile = "/nonexistent/key.pem"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefault()
			cfg.Server.ListenAddress = "127.0.0.1:0"
			tt.modify(cfg)

			store := storage.NewMemoryStore()
			defer store.Close()

			srv := NewServer(cfg, service.New(store), nil, nil, BuildInfo{})

			err := srv.Start(context.Background())
			if err == nil {
				t.Fatal("Start should fail with invalid TLS config")
			}
			if srv.IsRunning() {
				t.Error("server should not report running after a failed start")
			}
		})
	}
}

func TestTLSMinVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"", false},
		{"1.2", false},
		{"1.3", false},
		{"1.0", true},
		{"bogus", true},
	}

	for _, tt := range tests {
		t.Run("version "+tt.version, func(t *testing.T) {
			_, err := tlsMinVersion(tt.version)
			if (err != nil) != tt.wantErr {
				t.Errorf("tlsMinVersion(%q) error = %v, wantErr %v", tt.version, err, tt.wantErr)
			}
		})
	}
}

func TestServer_StartShutdown(t *testing.T) {
	cfg := config.NewDefault()
	cfg.Server.ListenAddress = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 2 * time.Second

	store := storage.NewMemoryStore()
	defer store.Close()

	srv := NewServer(cfg, service.New(store), nil, nil, BuildInfo{Version: "test"})

	ctx, cancel := context.WithCancel(context.Background())

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	// Wait for the server to come up.
	deadline := time.After(2 * time.Second)
	for !srv.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("server never reported running")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// A second Start on a running server must refuse.
	if err := srv.Start(context.Background()); err == nil {
		t.Error("second Start should fail while the server is running")
	}

	cancel()

	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Start returned error on graceful shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down after context cancellation")
	}

	if srv.IsRunning() {
		t.Error("server should not report running after shutdown")
	}
}
