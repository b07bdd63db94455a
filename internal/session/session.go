// Package session owns the lifetime of one capture session: directory
// preparation, step counting, limits, pause/resume/stop, and the event stream.
package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fennwick/pageturner/internal/config"
	"github.com/fennwick/pageturner/internal/detect"
	"github.com/fennwick/pageturner/internal/errors"
	"github.com/fennwick/pageturner/internal/event"
	"github.com/fennwick/pageturner/internal/output"
	"github.com/fennwick/pageturner/internal/pipeline"
	"github.com/fennwick/pageturner/internal/syncx"
)

// State is the controller lifecycle state.
type State string

const (
	StateIdle    State = "IDLE"
	StateRunning State = "RUNNING"
	StatePaused  State = "PAUSED"
	StateStopped State = "STOPPED"
	StateError   State = "ERROR"
)

// Runtime is the per-session bookkeeping created on start and discarded on end.
type Runtime struct {
	ID             uuid.UUID
	StartTime      time.Time
	CompletedSteps int
	// TotalSteps is 0 when the session has no step bound.
	TotalSteps int
	// deadline is zero unless the session runs under a time limit.
	deadline time.Time
}

// Status is a point-in-time snapshot safe to serve from another goroutine.
type Status struct {
	State          State     `json:"state"`
	SessionID      string    `json:"session_id,omitempty"`
	StartTime      time.Time `json:"start_time,omitempty"`
	CompletedSteps int       `json:"completed_steps"`
	TotalSteps     int       `json:"total_steps"`
	SessionDir     string    `json:"session_dir,omitempty"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithDetectorFactory substitutes how the per-session duplicate detector is
// built. The factory runs once per Start so sessions never share state.
func WithDetectorFactory(factory func() detect.Detector) Option {
	return func(c *Controller) { c.detectors = factory }
}

// Controller is the session state machine. Step is driven from a single
// goroutine; Pause, Resume, Stop, and RequestStop may be called from others.
type Controller struct {
	cfg       config.App
	pipe      *pipeline.Pipeline
	sink      event.Sink
	now       func() time.Time
	detectors func() detect.Detector

	state         *syncx.Guard[State]
	runtime       *syncx.Guard[Runtime]
	stopRequested syncx.Flag

	// ctx is touched only by Start and the stepping goroutine.
	ctx *pipeline.Context
}

// NewController creates a controller in the IDLE state. A nil sink discards
// events.
func NewController(cfg config.App, pipe *pipeline.Pipeline, sink event.Sink, opts ...Option) *Controller {
	c := &Controller{
		cfg:       cfg,
		pipe:      pipe,
		sink:      sink,
		now:       time.Now,
		detectors: func() detect.Detector { return detect.NewSet() },
		state:     syncx.NewGuard(StateIdle),
		runtime:   syncx.NewGuard(Runtime{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state.Get()
}

// Status returns a snapshot of the controller and its runtime.
func (c *Controller) Status() Status {
	rt := c.runtime.Get()
	st := Status{
		State:          c.state.Get(),
		CompletedSteps: rt.CompletedSteps,
		TotalSteps:     rt.TotalSteps,
	}
	if rt.ID != uuid.Nil {
		st.SessionID = rt.ID.String()
		st.StartTime = rt.StartTime
	}
	if c.ctx != nil {
		st.SessionDir = c.ctx.Paths.SessionDir()
	}
	return st
}

// Start transitions IDLE or STOPPED to RUNNING: prepares the session output
// directory, fixes the step bound and time-limit deadline, and emits a
// state-change event. sessionName overrides the generated directory name;
// empty uses the configured prefix plus a timestamp.
func (c *Controller) Start(sessionName string) error {
	current := c.state.Get()
	if current != StateIdle && current != StateStopped {
		return errors.Newf(errors.CodeAlreadyStarted, "session already active in state %s", current)
	}

	start := c.now()
	rt := Runtime{ID: uuid.New(), StartTime: start}
	if c.cfg.SessionMode == config.FixedCount {
		rt.TotalSteps = c.cfg.Count
	}
	if c.cfg.SessionMode == config.TimeLimit {
		rt.deadline = start.Add(time.Duration(c.cfg.TimeLimitSeconds) * time.Second)
	}

	paths := output.NewPathManager(c.cfg)
	dir, err := paths.PrepareSessionDir(start, sessionName)
	if err != nil {
		return err
	}

	c.ctx = &pipeline.Context{
		Config:     c.cfg,
		Paths:      paths,
		Duplicates: c.detectors(),
	}
	c.runtime.Set(rt)
	c.stopRequested.TakeDown()
	c.state.Set(StateRunning)

	slog.Info("session started",
		"session_id", rt.ID.String(),
		"session_dir", dir,
		"total_steps", rt.TotalSteps,
		"mode", c.cfg.SessionMode)
	c.emit(event.StateChange(start, string(StateRunning)))
	return nil
}

// Pause moves RUNNING to PAUSED; any other state is a no-op.
func (c *Controller) Pause() {
	c.transition(StateRunning, StatePaused)
}

// Resume moves PAUSED back to RUNNING; any other state is a no-op.
func (c *Controller) Resume() {
	c.transition(StatePaused, StateRunning)
}

// Stop ends the session. Already-terminal states are a no-op.
func (c *Controller) Stop() {
	changed := c.state.Update(func(s *State) any {
		if *s == StateStopped || *s == StateError {
			return false
		}
		*s = StateStopped
		return true
	})
	if changed.(bool) {
		slog.Info("session stopped", "completed_steps", c.runtime.Get().CompletedSteps)
		c.emit(event.StateChange(c.now(), string(StateStopped)))
	}
}

// RequestStop flags a deferred stop consumed at the next Step boundary. It
// never interrupts an in-progress capture or wait.
func (c *Controller) RequestStop() {
	c.stopRequested.Set()
}

// Step executes one pipeline iteration. It is valid only while RUNNING. A
// deferred stop request or an expired time limit stops the session before the
// pipeline runs. A pipeline failure is terminal: the controller enters ERROR,
// emits the state change and the error event, and returns the failure.
func (c *Controller) Step() error {
	if state := c.state.Get(); state != StateRunning {
		return errors.Newf(errors.CodeNotRunning, "cannot step in state %s", state)
	}

	if c.stopRequested.TakeDown() {
		c.Stop()
		return nil
	}
	rt := c.runtime.Get()
	if !rt.deadline.IsZero() && !c.now().Before(rt.deadline) {
		slog.Info("time limit reached", "deadline", rt.deadline)
		c.Stop()
		return nil
	}

	outcome, err := c.pipe.ExecuteStep(c.ctx, rt.CompletedSteps+1)
	if err != nil {
		now := c.now()
		c.state.Set(StateError)
		slog.Error("session step failed", "step", rt.CompletedSteps+1, "error", err)
		c.emit(event.StateChange(now, string(StateError)))
		c.emit(event.Error(now, err.Error(), false))
		return err
	}

	completed := c.runtime.Update(func(r *Runtime) any {
		r.CompletedSteps++
		return r.CompletedSteps
	}).(int)

	message := fmt.Sprintf("Captured step %d", completed)
	if rt.TotalSteps > 0 {
		message = fmt.Sprintf("Captured step %d of %d", completed, rt.TotalSteps)
	}
	c.emit(event.Progress(c.now(), completed, rt.TotalSteps, outcome.ImagePath, message))
	for _, warning := range outcome.Warnings {
		c.emit(warning)
	}

	if rt.TotalSteps > 0 && completed >= rt.TotalSteps {
		c.Stop()
	}
	return nil
}

// Run drives Step until the session leaves RUNNING (PAUSED spins at the poll
// interval so an external Resume picks back up). It returns the terminal step
// error, or nil when the session stopped cleanly.
func (c *Controller) Run(pausePoll time.Duration) error {
	if pausePoll <= 0 {
		pausePoll = 100 * time.Millisecond
	}
	for {
		switch c.state.Get() {
		case StateRunning:
			if err := c.Step(); err != nil {
				return err
			}
		case StatePaused:
			if c.stopRequested.IsSet() {
				c.stopRequested.TakeDown()
				c.Stop()
				return nil
			}
			time.Sleep(pausePoll)
		default:
			return nil
		}
	}
}

func (c *Controller) transition(from, to State) {
	changed := c.state.Update(func(s *State) any {
		if *s != from {
			return false
		}
		*s = to
		return true
	})
	if changed.(bool) {
		slog.Debug("session state change", "from", from, "to", to)
		c.emit(event.StateChange(c.now(), string(to)))
	}
}

func (c *Controller) emit(ev event.Event) {
	if c.sink != nil {
		c.sink(ev)
	}
}
