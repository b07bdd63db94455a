// Package input injects the advance keypress into the OS input stream.
package input

import (
	"log/slog"

	"github.com/fennwick/pageturner/internal/config"
)

// Sender injects a single logical advance signal (press + release). OS
// rejection is fatal to the step; callers receive INPUT_INJECTION_FAILED.
type Sender interface {
	SendDirection(direction config.Direction) error
}

func logSend(direction config.Direction) {
	slog.Debug("sent advance key", "direction", direction)
}
