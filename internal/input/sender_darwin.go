//go:build darwin

package input

import (
	"fmt"
	"os/exec"

	"github.com/fennwick/pageturner/internal/config"
	"github.com/fennwick/pageturner/internal/errors"
)

// macOS virtual key codes for the arrow keys.
const (
	keyCodeLeft  = 123
	keyCodeRight = 124
)

type darwinSender struct{}

// NewSender returns the System Events key injector.
func NewSender() Sender {
	return &darwinSender{}
}

func (s *darwinSender) SendDirection(direction config.Direction) error {
	code := keyCodeRight
	if direction == config.Left {
		code = keyCodeLeft
	}
	script := fmt.Sprintf(`tell application "System Events" to key code %d`, code)
	if out, err := exec.Command("osascript", "-e", script).CombinedOutput(); err != nil {
		return errors.Wrapf(err, errors.CodeInputInjectionFailed,
			"sending advance key via osascript: %s", string(out))
	}
	logSend(direction)
	return nil
}
