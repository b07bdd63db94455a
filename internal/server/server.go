// Package server exposes session control over HTTP and the live event stream
// over WebSocket.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/fennwick/pageturner/internal/config"
	"github.com/fennwick/pageturner/internal/engine"
	"github.com/fennwick/pageturner/internal/errors"
	"github.com/fennwick/pageturner/internal/event"
	"github.com/fennwick/pageturner/internal/session"
	"github.com/fennwick/pageturner/internal/trace"
)

// EventBuffer bounds the fan-out channel between the stepping goroutine and
// the broadcaster. The producer never blocks; overflow drops the oldest event.
const EventBuffer = 256

// BuildFunc constructs a controller for a validated config. Tests substitute
// it to avoid touching the OS.
type BuildFunc func(cfg config.App, sink event.Sink) *session.Controller

type startRequest struct {
	SessionName string      `json:"session_name,omitempty"`
	Config      *config.App `json:"config,omitempty"`
}

// Server owns at most one session at a time and streams its events to every
// connected WebSocket client.
type Server struct {
	repo    *config.Repository
	runtime *config.Runtime
	build   BuildFunc

	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
	ctrl  *session.Controller

	events chan event.Event
}

// New creates a server. A nil build uses the OS engine.
func New(repo *config.Repository, rt *config.Runtime, build BuildFunc) *Server {
	s := &Server{
		repo:    repo,
		runtime: rt,
		conns:   make(map[*websocket.Conn]struct{}),
		events:  make(chan event.Event, EventBuffer),
	}
	s.build = build
	if s.build == nil {
		s.build = func(cfg config.App, sink event.Sink) *session.Controller {
			return engine.Build(cfg, rt, sink)
		}
	}

	go s.broadcastEvents()
	return s
}

// Handler returns the HTTP handler with trace and CORS middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.handleWebSocket)

	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/session/start", s.handleStart)
	mux.HandleFunc("POST /api/session/pause", s.handlePause)
	mux.HandleFunc("POST /api/session/resume", s.handleResume)
	mux.HandleFunc("POST /api/session/stop", s.handleStop)

	mux.HandleFunc("GET /api/templates", s.handleTemplateList)
	mux.HandleFunc("PUT /api/templates/{name}", s.handleTemplateSave)
	mux.HandleFunc("DELETE /api/templates/{name}", s.handleTemplateDelete)

	return corsMiddleware(trace.Middleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// publish is the controller's event sink. It must not block the stepping
// goroutine, so a full buffer sheds the oldest event.
func (s *Server) publish(ev event.Event) {
	for {
		select {
		case s.events <- ev:
			return
		default:
			select {
			case dropped := <-s.events:
				slog.Warn("event buffer full, dropping oldest", "kind", dropped.Kind)
			default:
			}
		}
	}
}

func (s *Server) broadcastEvents() {
	for ev := range s.events {
		s.mu.RLock()
		for conn := range s.conns {
			go func(c *websocket.Conn) {
				_ = wsjson.Write(context.Background(), c, ev)
			}(conn)
		}
		s.mu.RUnlock()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	log := trace.Logger(r.Context())
	log.Info("event stream connected", "remote", r.RemoteAddr)

	// The stream is outbound-only; the read loop just detects disconnect.
	for {
		if _, _, err := conn.Read(r.Context()); err != nil {
			log.Debug("event stream closed", "error", err)
			return
		}
	}
}

func (s *Server) controller() *session.Controller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctrl
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	log := trace.Logger(r.Context())

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !stderrors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, errors.New(errors.CodeInvalidConfig, "malformed start request"))
		return
	}

	cfg := config.Default()
	if req.Config != nil {
		cfg = *req.Config
	} else if s.repo != nil {
		if recent, err := s.repo.LoadRecent(); err == nil {
			cfg = recent
		}
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if ctrl := s.controller(); ctrl != nil {
		if state := ctrl.State(); state == session.StateRunning || state == session.StatePaused {
			writeError(w, http.StatusConflict, errors.Newf(errors.CodeAlreadyStarted, "session already active in state %s", state))
			return
		}
	}

	ctrl := s.build(cfg, s.publish)
	if err := ctrl.Start(req.SessionName); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	s.mu.Lock()
	s.ctrl = ctrl
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.SaveRecent(cfg); err != nil {
			log.Warn("saving recent config", "error", err)
		}
	}

	go func() {
		if err := ctrl.Run(pausePoll(s.runtime)); err != nil {
			slog.Error("session ended with error", "error", err)
		}
	}()

	log.Info("session started", "session_id", ctrl.Status().SessionID)
	writeJSON(w, ctrl.Status())
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	ctrl := s.controller()
	if ctrl == nil {
		writeJSON(w, session.Status{State: session.StateIdle})
		return
	}
	writeJSON(w, ctrl.Status())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(ctrl *session.Controller) { ctrl.Pause() })
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(ctrl *session.Controller) { ctrl.Resume() })
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(ctrl *session.Controller) { ctrl.RequestStop() })
}

func (s *Server) withSession(w http.ResponseWriter, _ *http.Request, fn func(*session.Controller)) {
	ctrl := s.controller()
	if ctrl == nil {
		writeError(w, http.StatusConflict, errors.New(errors.CodeNotRunning, "no active session"))
		return
	}
	fn(ctrl)
	writeJSON(w, ctrl.Status())
}

func (s *Server) handleTemplateList(w http.ResponseWriter, _ *http.Request) {
	templates, err := s.repo.ListTemplates()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, templates)
}

func (s *Server) handleTemplateSave(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var cfg config.App
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, errors.New(errors.CodeInvalidConfig, "malformed template config"))
		return
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.repo.SaveTemplate(name, cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, map[string]string{"status": "saved", "name": name})
}

func (s *Server) handleTemplateDelete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.repo.DeleteTemplate(name); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted", "name": name})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
		"code":  errors.CodeOf(err).String(),
	})
}

func pausePoll(rt *config.Runtime) time.Duration {
	if rt == nil || rt.PollInterval <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(rt.PollInterval * float64(time.Second))
}
