//go:build linux

package capture

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/fennwick/pageturner/internal/geom"
)

type linuxBackend struct{}

// NewBackend returns the X11 tooling backend (xrandr, xdotool, scrot).
func NewBackend() Backend {
	return &linuxBackend{}
}

// xrandr "connected" lines carry a WxH+X+Y geometry token.
var xrandrGeometry = regexp.MustCompile(`(\d+)x(\d+)\+(\d+)\+(\d+)`)

func (b *linuxBackend) Monitors() ([]geom.Rect, error) {
	out, err := exec.Command("xrandr", "--query").Output()
	if err != nil {
		return nil, fmt.Errorf("xrandr failed (is X11 running?): %w", err)
	}
	var monitors []geom.Rect
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, " connected") {
			continue
		}
		m := xrandrGeometry.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		w, _ := strconv.Atoi(m[1])
		h, _ := strconv.Atoi(m[2])
		x, _ := strconv.Atoi(m[3])
		y, _ := strconv.Atoi(m[4])
		monitors = append(monitors, geom.Rect{Left: x, Top: y, Right: x + w, Bottom: y + h})
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no connected monitors reported by xrandr")
	}
	return monitors, nil
}

func (b *linuxBackend) ForegroundWindow() (geom.Rect, bool, error) {
	if _, err := exec.LookPath("xdotool"); err != nil {
		return geom.Rect{}, false, fmt.Errorf("xdotool not installed: %w", err)
	}
	out, err := exec.Command("xdotool", "getactivewindow", "getwindowgeometry", "--shell").Output()
	if err != nil {
		// xdotool exits non-zero when no window has focus.
		return geom.Rect{}, false, nil
	}
	vars := map[string]int{}
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			vars[key] = n
		}
	}
	x, y := vars["X"], vars["Y"]
	w, h := vars["WIDTH"], vars["HEIGHT"]
	if w == 0 || h == 0 {
		return geom.Rect{}, false, nil
	}
	return geom.Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}, true, nil
}

func (b *linuxBackend) CaptureRect(rect geom.Rect) ([]byte, error) {
	if rect.Area() == 0 {
		return nil, nil
	}
	if _, err := exec.LookPath("scrot"); err != nil {
		return nil, fmt.Errorf("scrot not installed: %w", err)
	}
	tmp, err := os.CreateTemp("", "pageturner-*.png")
	if err != nil {
		return nil, err
	}
	tmpFile := tmp.Name()
	tmp.Close()
	// scrot refuses to overwrite an existing file.
	os.Remove(tmpFile)
	defer os.Remove(tmpFile)

	area := fmt.Sprintf("%d,%d,%d,%d", rect.Left, rect.Top, rect.Width(), rect.Height())
	cmd := exec.Command("scrot", "-a", area, tmpFile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("scrot failed: %w (%s)", err, stderr.String())
	}
	data, err := os.ReadFile(tmpFile)
	if err != nil {
		return nil, fmt.Errorf("reading screenshot: %w", err)
	}
	return data, nil
}
