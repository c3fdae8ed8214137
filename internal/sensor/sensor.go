// Package sensor provides ambient-light readings with hardware abstraction.
// The real implementation measures an LDR via RC charge timing on a Linux
// GPIO character device. The fake implementation allows testing without
// hardware.
package sensor

// Reader reads raw ambient-light samples.
type Reader interface {
	// Read returns one raw light reading. Larger values mean brighter.
	Read() (int, error)

	// Close releases sensor resources.
	Close() error
}

// DefaultPin is the BCM line wired to the LDR/capacitor divider.
const DefaultPin = 17

// Scale is the full-scale reading. The charge-timing loop polls at most
// Scale times, so a reading is always in [0, Scale].
const Scale = 1000
