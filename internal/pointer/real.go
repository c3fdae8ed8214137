//go:build linux

package pointer

import (
	"fmt"

	"github.com/bendahl/uinput"
)

// DeviceName is the name the virtual mouse registers under in /proc/bus/input.
const DeviceName = "lightwake-pointer"

// RealMover moves the pointer through a virtual uinput mouse. The desktop
// session sees it as ordinary relative mouse input, which is what idle-lock
// watchers key on.
type RealMover struct {
	mouse uinput.Mouse
}

// NewRealMover registers the virtual mouse. Requires write access to
// /dev/uinput.
func NewRealMover() (*RealMover, error) {
	mouse, err := uinput.CreateMouse("/dev/uinput", []byte(DeviceName))
	if err != nil {
		return nil, fmt.Errorf("create uinput mouse: %w", err)
	}
	return &RealMover{mouse: mouse}, nil
}

// Move emits a relative movement of (dx, dy).
func (m *RealMover) Move(dx, dy int) error {
	switch {
	case dx > 0:
		if err := m.mouse.MoveRight(int32(dx)); err != nil {
			return fmt.Errorf("move right: %w", err)
		}
	case dx < 0:
		if err := m.mouse.MoveLeft(int32(-dx)); err != nil {
			return fmt.Errorf("move left: %w", err)
		}
	}
	switch {
	case dy > 0:
		if err := m.mouse.MoveDown(int32(dy)); err != nil {
			return fmt.Errorf("move down: %w", err)
		}
	case dy < 0:
		if err := m.mouse.MoveUp(int32(-dy)); err != nil {
			return fmt.Errorf("move up: %w", err)
		}
	}
	return nil
}

// Close removes the virtual device.
func (m *RealMover) Close() error {
	if err := m.mouse.Close(); err != nil {
		return fmt.Errorf("close uinput mouse: %w", err)
	}
	return nil
}
