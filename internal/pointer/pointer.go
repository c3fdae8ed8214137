// Package pointer provides relative pointer movement with hardware
// abstraction. The real implementation registers a virtual mouse through
// uinput. The fake implementation records requested deltas for tests.
package pointer

// Mover emits relative pointer movements. Best-effort: callers log failures
// and carry on.
type Mover interface {
	// Move requests a relative movement of (dx, dy) pixels. Positive dx
	// is right, positive dy is down.
	Move(dx, dy int) error

	// Close releases the device.
	Close() error
}
