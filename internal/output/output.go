// Package output persists captured frames and manages session directories.
package output

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"github.com/fennwick/pageturner/internal/config"
	"github.com/fennwick/pageturner/internal/errors"
)

// Writer persists capture bytes to a deterministic per-step path.
type Writer interface {
	WriteCapture(sessionDir string, index int, format config.ImageFormat, imageBytes []byte, quality int) (string, error)
}

// CapturePath returns the deterministic file name for a step index.
func CapturePath(sessionDir string, index int, format config.ImageFormat) string {
	return filepath.Join(sessionDir, fmt.Sprintf("page_%04d%s", index, format.Extension()))
}

// FSWriter writes captures to the local filesystem. Capture backends produce
// PNG bytes; JPG output is transcoded here with the configured quality.
type FSWriter struct{}

// WriteCapture persists imageBytes, creating sessionDir if absent.
func (FSWriter) WriteCapture(sessionDir string, index int, format config.ImageFormat, imageBytes []byte, quality int) (string, error) {
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return "", errors.Wrap(err, errors.CodeOutputWriteFailed, "creating session directory")
	}
	path := CapturePath(sessionDir, index, format)

	data := imageBytes
	if format == config.JPG {
		transcoded, err := toJPEG(imageBytes, quality)
		if err != nil {
			return "", errors.Wrap(err, errors.CodeOutputWriteFailed, "transcoding capture to jpeg")
		}
		data = transcoded
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, errors.CodeOutputWriteFailed, "writing capture file")
	}
	return path, nil
}

func toJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// PathManager prepares and remembers the session output directory.
type PathManager struct {
	cfg        config.App
	sessionDir string
}

// NewPathManager creates a path manager for one session's config.
func NewPathManager(cfg config.App) *PathManager {
	return &PathManager{cfg: cfg}
}

// PrepareSessionDir creates and records the session directory: a timestamped
// subdirectory when auto-naming is enabled, the flat base directory otherwise.
// An explicit sessionName overrides the generated prefix_timestamp name.
func (m *PathManager) PrepareSessionDir(now time.Time, sessionName string) (string, error) {
	dir := m.cfg.OutputDir
	if m.cfg.AutoSessionDir {
		name := sessionName
		if name == "" {
			name = fmt.Sprintf("%s_%s", m.cfg.SessionPrefix, now.Format("20060102_150405"))
		}
		dir = filepath.Join(dir, name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, errors.CodeOutputWriteFailed, "preparing session directory")
	}
	m.sessionDir = dir
	return dir, nil
}

// SessionDir returns the prepared directory, or "" before PrepareSessionDir.
func (m *PathManager) SessionDir() string {
	return m.sessionDir
}
