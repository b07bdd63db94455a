//go:build windows

package input

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/fennwick/pageturner/internal/config"
	"github.com/fennwick/pageturner/internal/errors"
)

const (
	vkLeft  = 0x25
	vkRight = 0x27

	inputKeyboard  = 1
	keyeventfKeyup = 0x0002
)

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

// keybdInput mirrors KEYBDINPUT. The union member of INPUT is padded to the
// size of MOUSEINPUT, so the struct carries trailing padding.
type keybdInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
	_           [8]byte
}

type keyInput struct {
	inputType uint32
	_         [4]byte // alignment padding before the union on amd64
	ki        keybdInput
}

type windowsSender struct{}

// NewSender returns the SendInput-based key injector.
func NewSender() Sender {
	return &windowsSender{}
}

func (s *windowsSender) SendDirection(direction config.Direction) error {
	vk := uint16(vkRight)
	if direction == config.Left {
		vk = vkLeft
	}

	inputs := [2]keyInput{
		{inputType: inputKeyboard, ki: keybdInput{wVk: vk}},
		{inputType: inputKeyboard, ki: keybdInput{wVk: vk, dwFlags: keyeventfKeyup}},
	}
	sent, _, callErr := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(sent) != len(inputs) {
		return errors.Wrap(fmt.Errorf("SendInput injected %d of %d events: %v", sent, len(inputs), callErr),
			errors.CodeInputInjectionFailed, "sending advance key")
	}
	logSend(direction)
	return nil
}
