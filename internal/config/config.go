// Package config holds the capture-session configuration surface and its
// on-disk persistence.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/fennwick/pageturner/internal/errors"
)

// CaptureMode selects the capture target region.
type CaptureMode string

const (
	ActiveWindow CaptureMode = "active-window"
	FullMonitor  CaptureMode = "full-monitor"
)

// Direction is the logical advance key.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

// ProcessOrder controls whether the advance key is sent before or after the
// capture within a step.
type ProcessOrder string

const (
	ShotFirst ProcessOrder = "shot-first"
	KeyFirst  ProcessOrder = "key-first"
)

// WaitMode selects the per-step wait strategy.
type WaitMode string

const (
	WaitFixed  WaitMode = "fixed"
	WaitChange WaitMode = "wait-change"
)

// SessionMode is the termination policy, mutually exclusive per session.
type SessionMode string

const (
	FixedCount SessionMode = "fixed-count"
	TimeLimit  SessionMode = "time-limit"
	Manual     SessionMode = "manual"
)

// ImageFormat is the persisted image encoding.
type ImageFormat string

const (
	PNG ImageFormat = "png"
	JPG ImageFormat = "jpg"
)

// Extension returns the file extension including the dot.
func (f ImageFormat) Extension() string {
	if f == JPG {
		return ".jpg"
	}
	return ".png"
}

// Hotkeys holds global hotkey bindings consumed by front ends. The engine
// itself never registers them.
type Hotkeys struct {
	Pause string `json:"pause"`
	Stop  string `json:"stop"`
}

// App is one session's configuration surface.
type App struct {
	Monitor          int          `json:"monitor"`
	CaptureMode      CaptureMode  `json:"capture_mode"`
	Direction        Direction    `json:"direction"`
	Count            int          `json:"count"`
	DelaySeconds     float64      `json:"delay"`
	ProcessOrder     ProcessOrder `json:"process_order"`
	WaitMode         WaitMode     `json:"wait_mode"`
	WaitTimeout      float64      `json:"wait_timeout"`
	MinOverlap       float64      `json:"min_overlap"`
	OutputDir        string       `json:"output_dir"`
	ImageFormat      ImageFormat  `json:"image_format"`
	JPEGQuality      int          `json:"jpeg_quality"`
	Hotkeys          Hotkeys      `json:"hotkeys"`
	SessionMode      SessionMode  `json:"session_mode"`
	TimeLimitSeconds int          `json:"time_limit_seconds,omitempty"`
	AutoSessionDir   bool         `json:"auto_session_subdir"`
	SessionPrefix    string       `json:"session_name_prefix"`
}

// Default returns the configuration used when nothing has been persisted.
func Default() App {
	home, _ := os.UserHomeDir()
	return App{
		Monitor:        1,
		CaptureMode:    ActiveWindow,
		Direction:      Right,
		Count:          100,
		DelaySeconds:   0.5,
		ProcessOrder:   ShotFirst,
		WaitMode:       WaitFixed,
		WaitTimeout:    5.0,
		MinOverlap:     0.7,
		OutputDir:      filepath.Join(home, "Pictures", "pageturner"),
		ImageFormat:    PNG,
		JPEGQuality:    90,
		Hotkeys:        Hotkeys{Pause: "Ctrl+Alt+P", Stop: "Ctrl+Alt+S"},
		SessionMode:    FixedCount,
		AutoSessionDir: true,
		SessionPrefix:  "session",
	}
}

// Validate checks invariants shared by every consumer of the config.
func (a *App) Validate() error {
	if a.Monitor < 1 {
		return errors.New(errors.CodeInvalidConfig, "monitor must be >= 1")
	}
	if a.Count < 1 || a.Count > 10000 {
		return errors.New(errors.CodeInvalidConfig, "count must be between 1 and 10000")
	}
	if a.DelaySeconds < 0 {
		return errors.New(errors.CodeInvalidConfig, "delay must be >= 0")
	}
	if a.MinOverlap < 0 || a.MinOverlap > 1 {
		return errors.New(errors.CodeInvalidConfig, "min_overlap must be between 0 and 1")
	}
	switch a.CaptureMode {
	case ActiveWindow, FullMonitor:
	default:
		return errors.Newf(errors.CodeInvalidConfig, "unknown capture mode %q", a.CaptureMode)
	}
	switch a.Direction {
	case Left, Right:
	default:
		return errors.Newf(errors.CodeInvalidConfig, "unknown direction %q", a.Direction)
	}
	switch a.ProcessOrder {
	case ShotFirst, KeyFirst:
	default:
		return errors.Newf(errors.CodeInvalidConfig, "unknown process order %q", a.ProcessOrder)
	}
	if a.ImageFormat == JPG && (a.JPEGQuality < 1 || a.JPEGQuality > 100) {
		return errors.New(errors.CodeInvalidConfig, "jpeg_quality must be 1..100")
	}
	if a.WaitMode == WaitChange && a.WaitTimeout <= 0 {
		return errors.New(errors.CodeInvalidConfig, "wait_timeout is required for change detection mode")
	}
	if a.SessionMode == TimeLimit && a.TimeLimitSeconds <= 0 {
		return errors.New(errors.CodeInvalidConfig, "time_limit_seconds required for time-limit mode")
	}
	return nil
}

// Runtime holds process-level settings read from the environment, separate
// from the per-session capture surface.
type Runtime struct {
	HTTPAddr     string
	LogLevel     string
	PollInterval float64 // change-detection poll interval, seconds
}

// LoadRuntime reads runtime settings from the environment with defaults.
func LoadRuntime() *Runtime {
	return &Runtime{
		HTTPAddr:     getEnv("PAGETURNER_HTTP_ADDR", ":8750"),
		LogLevel:     getEnv("PAGETURNER_LOG_LEVEL", "info"),
		PollInterval: getEnvFloat("PAGETURNER_POLL_INTERVAL", 0.1),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
