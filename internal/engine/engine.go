// Package engine assembles the platform services, pipeline, and session
// controller for one session on the current OS.
package engine

import (
	"time"

	"github.com/fennwick/pageturner/internal/capture"
	"github.com/fennwick/pageturner/internal/config"
	"github.com/fennwick/pageturner/internal/detect"
	"github.com/fennwick/pageturner/internal/event"
	"github.com/fennwick/pageturner/internal/input"
	"github.com/fennwick/pageturner/internal/output"
	"github.com/fennwick/pageturner/internal/pipeline"
	"github.com/fennwick/pageturner/internal/session"
	"github.com/fennwick/pageturner/internal/wait"
)

// Build wires the OS capture backend, input sender, waiter, and writer into a
// ready-to-start controller. Change-detection waits re-capture the configured
// region and compare content hashes; duplicate detection is perceptual so
// re-renders of the same page still collapse.
func Build(cfg config.App, rt *config.Runtime, sink event.Sink) *session.Controller {
	service := capture.NewService(capture.NewBackend(), detect.PerceptualHasher{})
	sender := input.NewSender()

	prober := func() (string, bool) {
		result, err := service.Capture(capture.Request{
			Monitor:    cfg.Monitor,
			Mode:       cfg.CaptureMode,
			MinOverlap: cfg.MinOverlap,
		})
		if err != nil || len(result.ImageBytes) == 0 {
			return "", false
		}
		return result.HashValue, true
	}
	waiter := wait.NewWaiter(
		wait.WithDetector(prober),
		wait.WithPollInterval(time.Duration(rt.PollInterval*float64(time.Second))),
	)

	pipe := pipeline.New(service, sender, waiter, output.FSWriter{}, detect.PerceptualHasher{})
	return session.NewController(cfg, pipe, sink,
		session.WithDetectorFactory(func() detect.Detector {
			return detect.NewPerceptual(0)
		}),
	)
}
