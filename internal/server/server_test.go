package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/fennwick/pageturner/internal/capture"
	"github.com/fennwick/pageturner/internal/config"
	"github.com/fennwick/pageturner/internal/event"
	"github.com/fennwick/pageturner/internal/pipeline"
	"github.com/fennwick/pageturner/internal/session"
)

type stubCapturer struct{}

func (stubCapturer) Capture(capture.Request) (capture.Result, error) {
	return capture.Result{ImageBytes: []byte("frame"), HashValue: "h"}, nil
}

type stubSender struct{}

func (stubSender) SendDirection(config.Direction) error { return nil }

// stubWaiter paces the run loop so manual sessions don't spin hot.
type stubWaiter struct{}

func (stubWaiter) WaitFixed(time.Duration) { time.Sleep(2 * time.Millisecond) }
func (stubWaiter) WaitForChange(string, time.Duration) bool {
	time.Sleep(2 * time.Millisecond)
	return true
}

type stubWriter struct{}

func (stubWriter) WriteCapture(dir string, index int, format config.ImageFormat, _ []byte, _ int) (string, error) {
	return filepath.Join(dir, "stub.png"), nil
}

func stubBuild(cfg config.App, sink event.Sink) *session.Controller {
	pipe := pipeline.New(stubCapturer{}, stubSender{}, stubWaiter{}, stubWriter{}, nil)
	return session.NewController(cfg, pipe, sink)
}

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	repo := &config.Repository{Path: filepath.Join(t.TempDir(), "config.json")}
	rt := &config.Runtime{HTTPAddr: ":0", LogLevel: "info", PollInterval: 0.001}
	s := New(repo, rt, stubBuild)
	return s, s.Handler()
}

func testConfig(t *testing.T) config.App {
	t.Helper()
	cfg := config.Default()
	cfg.SessionMode = config.Manual
	cfg.OutputDir = t.TempDir()
	return cfg
}

func startBody(t *testing.T, cfg config.App, name string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(startRequest{SessionName: name, Config: &cfg})
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewBuffer(body)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body *bytes.Buffer, out any) int {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decoding %s %s response %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code
}

func waitForState(t *testing.T, s *Server, want session.State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.controller().State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state = %v, want %v", s.controller().State(), want)
}

func TestCORSMiddleware(t *testing.T) {
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("OPTIONS", "/test", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("OPTIONS status = %d, want %d", rec.Code, http.StatusOK)
	}
	if v := rec.Header().Get("Access-Control-Allow-Origin"); v != "*" {
		t.Errorf("CORS origin = %q, want %q", v, "*")
	}
}

func TestStatusIdleBeforeAnySession(t *testing.T) {
	_, handler := newTestServer(t)

	var status session.Status
	code := doJSON(t, handler, "GET", "/api/status", nil, &status)
	if code != http.StatusOK {
		t.Fatalf("status code = %d", code)
	}
	if status.State != session.StateIdle {
		t.Errorf("state = %v, want IDLE", status.State)
	}
}

func TestControlWithoutSessionConflicts(t *testing.T) {
	_, handler := newTestServer(t)

	for _, path := range []string{"/api/session/pause", "/api/session/resume", "/api/session/stop"} {
		var resp map[string]string
		code := doJSON(t, handler, "POST", path, nil, &resp)
		if code != http.StatusConflict {
			t.Errorf("%s status = %d, want %d", path, code, http.StatusConflict)
		}
		if resp["code"] != "NOT_RUNNING" {
			t.Errorf("%s code = %q, want NOT_RUNNING", path, resp["code"])
		}
	}
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	_, handler := newTestServer(t)

	cfg := testConfig(t)
	cfg.Monitor = 0
	var resp map[string]string
	code := doJSON(t, handler, "POST", "/api/session/start", startBody(t, cfg, ""), &resp)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", code, http.StatusBadRequest)
	}
	if resp["code"] != "INVALID_CONFIG" {
		t.Errorf("code = %q, want INVALID_CONFIG", resp["code"])
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	s, handler := newTestServer(t)

	var status session.Status
	code := doJSON(t, handler, "POST", "/api/session/start", startBody(t, testConfig(t), "shelf"), &status)
	if code != http.StatusOK {
		t.Fatalf("start status = %d, body state %v", code, status.State)
	}
	if status.State != session.StateRunning || status.SessionID == "" {
		t.Fatalf("start response = %+v", status)
	}

	code = doJSON(t, handler, "POST", "/api/session/start", startBody(t, testConfig(t), ""), nil)
	if code != http.StatusConflict {
		t.Errorf("second start status = %d, want %d", code, http.StatusConflict)
	}

	doJSON(t, handler, "POST", "/api/session/pause", nil, nil)
	waitForState(t, s, session.StatePaused)

	doJSON(t, handler, "POST", "/api/session/resume", nil, nil)
	waitForState(t, s, session.StateRunning)

	doJSON(t, handler, "POST", "/api/session/stop", nil, nil)
	waitForState(t, s, session.StateStopped)

	code = doJSON(t, handler, "GET", "/api/status", nil, &status)
	if code != http.StatusOK || status.State != session.StateStopped {
		t.Errorf("final status = %+v (code %d)", status, code)
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	_, handler := newTestServer(t)

	cfg := testConfig(t)
	cfg.Direction = config.Left
	body, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}

	code := doJSON(t, handler, "PUT", "/api/templates/manga", bytes.NewBuffer(body), nil)
	if code != http.StatusOK {
		t.Fatalf("save status = %d", code)
	}

	var templates map[string]config.App
	code = doJSON(t, handler, "GET", "/api/templates", nil, &templates)
	if code != http.StatusOK {
		t.Fatalf("list status = %d", code)
	}
	saved, ok := templates["manga"]
	if !ok || saved.Direction != config.Left {
		t.Errorf("templates = %v, want manga with direction left", templates)
	}

	code = doJSON(t, handler, "DELETE", "/api/templates/manga", nil, nil)
	if code != http.StatusOK {
		t.Fatalf("delete status = %d", code)
	}
	templates = nil
	doJSON(t, handler, "GET", "/api/templates", nil, &templates)
	if _, ok := templates["manga"]; ok {
		t.Error("template survived deletion")
	}
}
