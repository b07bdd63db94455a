// Package pipeline orders the capture, input, and wait operations of one
// session step.
package pipeline

import (
	"time"

	"github.com/fennwick/pageturner/internal/capture"
	"github.com/fennwick/pageturner/internal/config"
	"github.com/fennwick/pageturner/internal/detect"
	"github.com/fennwick/pageturner/internal/event"
	"github.com/fennwick/pageturner/internal/input"
	"github.com/fennwick/pageturner/internal/output"
)

// Capturer is the capture capability the pipeline depends on.
type Capturer interface {
	Capture(req capture.Request) (capture.Result, error)
}

// Waiter is the wait capability the pipeline depends on.
type Waiter interface {
	WaitFixed(d time.Duration)
	WaitForChange(previousHash string, timeout time.Duration) bool
}

// Context is the mutable per-session state threaded through steps. Owned
// exclusively by the session controller; never shared across sessions.
type Context struct {
	Config     config.App
	Paths      *output.PathManager
	Duplicates detect.Detector
	// LastHash is the most recently observed content hash, the change
	// baseline for wait-change polling.
	LastHash string
}

// Outcome is the immutable result of one executed step.
type Outcome struct {
	Index     int
	ImagePath string
	HashValue string
	Warnings  []event.Event
}

// Pipeline coordinates the stateless collaborators for each step. Collaborator
// failures propagate unmodified; the pipeline performs no retries.
type Pipeline struct {
	capturer Capturer
	sender   input.Sender
	waiter   Waiter
	writer   output.Writer
	hasher   capture.Hasher
}

// New creates a pipeline. A nil hasher defaults to SHA-1; it is only consulted
// when the capture service returned bytes without a hash.
func New(capturer Capturer, sender input.Sender, waiter Waiter, writer output.Writer, hasher capture.Hasher) *Pipeline {
	if hasher == nil {
		hasher = capture.SHA1Hasher{}
	}
	return &Pipeline{capturer: capturer, sender: sender, waiter: waiter, writer: writer, hasher: hasher}
}

// ExecuteStep runs one capture-advance-wait iteration.
func (p *Pipeline) ExecuteStep(ctx *Context, index int) (Outcome, error) {
	cfg := ctx.Config
	var warnings []event.Event

	if cfg.ProcessOrder == config.KeyFirst {
		if err := p.sender.SendDirection(cfg.Direction); err != nil {
			return Outcome{}, err
		}
	}

	result, err := p.capturer.Capture(capture.Request{
		Monitor:    cfg.Monitor,
		Mode:       cfg.CaptureMode,
		MinOverlap: cfg.MinOverlap,
	})
	if err != nil {
		return Outcome{}, err
	}

	var imagePath string
	hash := result.HashValue
	if len(result.ImageBytes) > 0 {
		if hash == "" {
			hash = p.hasher.Hash(result.ImageBytes)
		}

		sessionDir := ctx.Paths.SessionDir()
		if sessionDir == "" {
			sessionDir, err = ctx.Paths.PrepareSessionDir(time.Now(), "")
			if err != nil {
				return Outcome{}, err
			}
		}
		imagePath, err = p.writer.WriteCapture(sessionDir, index, cfg.ImageFormat, result.ImageBytes, cfg.JPEGQuality)
		if err != nil {
			return Outcome{}, err
		}

		if ctx.Duplicates.IsDuplicate(hash) {
			warnings = append(warnings, event.Warning(time.Now(), "Duplicate frame detected"))
		}
		ctx.Duplicates.Remember(hash)
		ctx.LastHash = hash
	}

	if cfg.ProcessOrder == config.ShotFirst {
		if err := p.sender.SendDirection(cfg.Direction); err != nil {
			return Outcome{}, err
		}
	}

	if cfg.WaitMode == config.WaitFixed {
		p.waiter.WaitFixed(seconds(cfg.DelaySeconds))
	} else {
		if !p.waiter.WaitForChange(ctx.LastHash, seconds(cfg.WaitTimeout)) {
			warnings = append(warnings, event.Warning(time.Now(), "No visual change detected before timeout"))
		}
	}

	return Outcome{Index: index, ImagePath: imagePath, HashValue: hash, Warnings: warnings}, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
