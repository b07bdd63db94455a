//go:build linux

package input

import (
	"os/exec"

	"github.com/fennwick/pageturner/internal/config"
	"github.com/fennwick/pageturner/internal/errors"
)

type linuxSender struct{}

// NewSender returns the xdotool-based key injector.
func NewSender() Sender {
	return &linuxSender{}
}

func (s *linuxSender) SendDirection(direction config.Direction) error {
	key := "Right"
	if direction == config.Left {
		key = "Left"
	}
	if out, err := exec.Command("xdotool", "key", key).CombinedOutput(); err != nil {
		return errors.Wrapf(err, errors.CodeInputInjectionFailed,
			"sending advance key via xdotool: %s", string(out))
	}
	logSend(direction)
	return nil
}
