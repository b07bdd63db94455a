package output

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fennwick/pageturner/internal/config"
	"github.com/fennwick/pageturner/internal/errors"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestCapturePath(t *testing.T) {
	got := CapturePath("/tmp/s", 7, config.PNG)
	want := filepath.Join("/tmp/s", "page_0007.png")
	if got != want {
		t.Errorf("CapturePath = %q, want %q", got, want)
	}

	got = CapturePath("/tmp/s", 1234, config.JPG)
	want = filepath.Join("/tmp/s", "page_1234.jpg")
	if got != want {
		t.Errorf("CapturePath = %q, want %q", got, want)
	}
}

func TestWriteCapturePNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "session")
	data := testPNG(t)

	path, err := FSWriter{}.WriteCapture(dir, 1, config.PNG, data, 90)
	if err != nil {
		t.Fatalf("WriteCapture: %v", err)
	}
	if path != filepath.Join(dir, "page_0001.png") {
		t.Errorf("path = %q", path)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if !bytes.Equal(written, data) {
		t.Error("PNG bytes should be written verbatim")
	}
}

func TestWriteCaptureJPEGTranscodes(t *testing.T) {
	dir := t.TempDir()

	path, err := FSWriter{}.WriteCapture(dir, 2, config.JPG, testPNG(t), 80)
	if err != nil {
		t.Fatalf("WriteCapture: %v", err)
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(written)); err != nil {
		t.Errorf("written file should decode as JPEG: %v", err)
	}
}

func TestWriteCaptureJPEGBadInput(t *testing.T) {
	_, err := FSWriter{}.WriteCapture(t.TempDir(), 1, config.JPG, []byte("not an image"), 80)
	if !errors.IsCode(err, errors.CodeOutputWriteFailed) {
		t.Fatalf("error = %v, want OUTPUT_WRITE_FAILED", err)
	}
}

func TestPrepareSessionDirAuto(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.AutoSessionDir = true
	cfg.SessionPrefix = "session"

	m := NewPathManager(cfg)
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	dir, err := m.PrepareSessionDir(now, "")
	if err != nil {
		t.Fatalf("PrepareSessionDir: %v", err)
	}

	want := filepath.Join(cfg.OutputDir, "session_20240315_093000")
	if dir != want {
		t.Errorf("dir = %q, want %q", dir, want)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Error("session directory should exist")
	}
	if m.SessionDir() != dir {
		t.Error("SessionDir should remember the prepared path")
	}
}

func TestPrepareSessionDirExplicitName(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()

	m := NewPathManager(cfg)
	dir, err := m.PrepareSessionDir(time.Now(), "my-comic")
	if err != nil {
		t.Fatalf("PrepareSessionDir: %v", err)
	}
	if dir != filepath.Join(cfg.OutputDir, "my-comic") {
		t.Errorf("dir = %q, want explicit session name", dir)
	}
}

func TestPrepareSessionDirFlat(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.AutoSessionDir = false

	m := NewPathManager(cfg)
	dir, err := m.PrepareSessionDir(time.Now(), "")
	if err != nil {
		t.Fatalf("PrepareSessionDir: %v", err)
	}
	if dir != cfg.OutputDir {
		t.Errorf("dir = %q, want flat base dir %q", dir, cfg.OutputDir)
	}
}
