// Package capture resolves capture targets and grabs pixel data from a
// platform backend.
package capture

import (
	"crypto/sha1"
	"encoding/hex"
	"log/slog"

	"github.com/fennwick/pageturner/internal/config"
	"github.com/fennwick/pageturner/internal/errors"
	"github.com/fennwick/pageturner/internal/geom"
)

// Request describes one capture. Constructed per step, never mutated.
type Request struct {
	Monitor    int // 1-based
	Mode       config.CaptureMode
	MinOverlap float64
}

// Result holds the captured bytes and their content hash. Empty ImageBytes
// signals nothing to persist; HashValue is empty in that case.
type Result struct {
	ImageBytes []byte
	Width      int
	Height     int
	HashValue  string
}

// Backend is the platform-specific seam: monitor and window geometry plus raw
// pixel retrieval. Implementations live in the build-tagged backend files; no
// orchestration logic may depend on them directly.
type Backend interface {
	// Monitors returns the rectangles of all attached displays.
	Monitors() ([]geom.Rect, error)
	// ForegroundWindow returns the active window rect, or ok=false when no
	// window has focus.
	ForegroundWindow() (rect geom.Rect, ok bool, err error)
	// CaptureRect grabs the pixels of rect, encoded as PNG.
	CaptureRect(rect geom.Rect) ([]byte, error)
}

// Hasher digests captured bytes into a content hash string.
type Hasher interface {
	Hash(data []byte) string
}

// SHA1Hasher is the default exact content hasher.
type SHA1Hasher struct{}

// Hash returns the hex SHA-1 digest of data.
func (SHA1Hasher) Hash(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Service resolves a capture request to a target rectangle, validates it, and
// grabs pixels through the backend. Stateless; safe to share by reference.
type Service struct {
	backend Backend
	hasher  Hasher
}

// NewService creates a capture service. A nil hasher defaults to SHA-1.
func NewService(backend Backend, hasher Hasher) *Service {
	if hasher == nil {
		hasher = SHA1Hasher{}
	}
	return &Service{backend: backend, hasher: hasher}
}

// Capture resolves and grabs the requested region. All failures are terminal
// for the current step; retry policy belongs to the caller.
func (s *Service) Capture(req Request) (Result, error) {
	monitors, err := s.backend.Monitors()
	if err != nil {
		return Result{}, errors.Wrap(err, errors.CodeInternal, "enumerating monitors")
	}
	if req.Monitor < 1 || req.Monitor > len(monitors) {
		return Result{}, errors.Newf(errors.CodeInvalidMonitor, "monitor %d is not available (%d attached)", req.Monitor, len(monitors))
	}
	monitor := monitors[req.Monitor-1]

	target := monitor
	if req.Mode == config.ActiveWindow {
		window, ok, err := s.backend.ForegroundWindow()
		if err != nil {
			return Result{}, errors.Wrap(err, errors.CodeInternal, "querying foreground window")
		}
		if !ok {
			return Result{}, errors.New(errors.CodeNoActiveWindow, "no active window detected")
		}
		ratio := window.OverlapRatio(monitor)
		if ratio < req.MinOverlap {
			return Result{}, errors.Newf(errors.CodeInsufficientOverlap,
				"active window overlaps monitor %d by %.2f, need %.2f", req.Monitor, ratio, req.MinOverlap)
		}
		// Partially off-monitor windows are clamped, not rejected.
		target = window.ClampWithin(monitor)
	}

	if target.Area() == 0 {
		return Result{}, errors.New(errors.CodeEmptyCaptureArea, "target capture area is empty")
	}

	data, err := s.backend.CaptureRect(target)
	if err != nil {
		return Result{}, errors.Wrap(err, errors.CodeInternal, "capturing pixels")
	}

	result := Result{ImageBytes: data, Width: target.Width(), Height: target.Height()}
	if len(data) > 0 {
		result.HashValue = s.hasher.Hash(data)
	}
	slog.Debug("captured region",
		"mode", req.Mode, "monitor", req.Monitor,
		"width", result.Width, "height", result.Height, "bytes", len(data))
	return result, nil
}
