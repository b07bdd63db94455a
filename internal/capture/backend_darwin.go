//go:build darwin

package capture

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/fennwick/pageturner/internal/geom"
)

type darwinBackend struct{}

// NewBackend returns the screencapture/osascript-based backend. Best effort:
// only the main display is enumerated.
func NewBackend() Backend {
	return &darwinBackend{}
}

func (b *darwinBackend) Monitors() ([]geom.Rect, error) {
	// Finder reports the desktop bounds of the main display as "0, 0, w, h".
	out, err := runOsascript(`tell application "Finder" to get bounds of window of desktop`)
	if err != nil {
		return nil, fmt.Errorf("querying display bounds: %w", err)
	}
	vals, err := parseCSVInts(out, 4)
	if err != nil {
		return nil, fmt.Errorf("parsing display bounds %q: %w", out, err)
	}
	return []geom.Rect{{Left: vals[0], Top: vals[1], Right: vals[2], Bottom: vals[3]}}, nil
}

func (b *darwinBackend) ForegroundWindow() (geom.Rect, bool, error) {
	script := `tell application "System Events" to get {position, size} of front window of (first application process whose frontmost is true)`
	out, err := runOsascript(script)
	if err != nil {
		// System Events errors when nothing has a front window.
		return geom.Rect{}, false, nil
	}
	vals, err := parseCSVInts(out, 4)
	if err != nil {
		return geom.Rect{}, false, fmt.Errorf("parsing window geometry %q: %w", out, err)
	}
	x, y, w, h := vals[0], vals[1], vals[2], vals[3]
	return geom.Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}, true, nil
}

func (b *darwinBackend) CaptureRect(rect geom.Rect) ([]byte, error) {
	if rect.Area() == 0 {
		return nil, nil
	}
	tmp, err := os.CreateTemp("", "pageturner-*.png")
	if err != nil {
		return nil, err
	}
	tmpFile := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpFile)

	region := fmt.Sprintf("%d,%d,%d,%d", rect.Left, rect.Top, rect.Width(), rect.Height())
	cmd := exec.Command("screencapture", "-x", "-t", "png", "-R", region, tmpFile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("screencapture failed: %w (%s)", err, stderr.String())
	}
	data, err := os.ReadFile(tmpFile)
	if err != nil {
		return nil, fmt.Errorf("reading screenshot: %w", err)
	}
	return data, nil
}

func runOsascript(script string) (string, error) {
	out, err := exec.Command("osascript", "-e", script).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// parseCSVInts parses "a, b, c, d" style osascript output.
func parseCSVInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(parts))
	}
	vals := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
