//go:build !linux

package pointer

import "errors"

// RealMover is not available on non-Linux platforms.
type RealMover struct{}

// NewRealMover returns an error on non-Linux platforms.
func NewRealMover() (*RealMover, error) {
	return nil, errors.New("pointer: not supported on this platform (requires Linux uinput)")
}

// Move is not implemented on non-Linux platforms.
func (m *RealMover) Move(dx, dy int) error {
	return errors.New("pointer: not supported")
}

// Close is not implemented on non-Linux platforms.
func (m *RealMover) Close() error {
	return nil
}
