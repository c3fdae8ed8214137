//go:build linux

package sensor

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// dischargeHold is how long the line is driven low before each measurement
// so the capacitor starts from a known-empty state.
const dischargeHold = 100 * time.Microsecond

// RealReader measures an LDR on actual hardware using the RC charge-timing
// method: drive the line low to drain the capacitor, flip it to input, and
// count polls until the capacitor charges past the logic-high threshold.
// Bright light means low LDR resistance and a fast charge, so the poll count
// is inverted to make brighter = larger.
type RealReader struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealReader opens the GPIO chip and claims the sensor line.
func NewRealReader(pin int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request sensor pin %d: %w", pin, err)
	}

	return &RealReader{chip: chip, line: line}, nil
}

// Read performs one charge-timing measurement.
func (r *RealReader) Read() (int, error) {
	// Drain the capacitor.
	if err := r.line.Reconfigure(gpiocdev.AsOutput(0)); err != nil {
		return 0, fmt.Errorf("discharge sensor line: %w", err)
	}
	time.Sleep(dischargeHold)

	// Release the line and count polls until it charges high.
	if err := r.line.Reconfigure(gpiocdev.AsInput); err != nil {
		return 0, fmt.Errorf("float sensor line: %w", err)
	}

	count := 0
	for count < Scale {
		v, err := r.line.Value()
		if err != nil {
			return 0, fmt.Errorf("read sensor line: %w", err)
		}
		if v != 0 {
			break
		}
		count++
	}

	return Scale - count, nil
}

// Close releases GPIO resources. The line is reconfigured to input with
// pull-down (matching Pi boot defaults) before closing so the attached RC
// network is left in a clean state.
func (r *RealReader) Close() error {
	var errs []error

	if r.line != nil {
		if err := r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure sensor line: %w", err))
		}
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sensor line: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
