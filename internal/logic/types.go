// Package logic contains pure business logic for light classification and
// wiggle scheduling. This package has NO external dependencies (no GPIO,
// uinput, MQTT, OS, or time.Sleep). Time is always injectable via time.Time
// parameters, and randomness via the Rand interface.
package logic

import "time"

// Verdict is the outcome of one classification cycle.
type Verdict string

const (
	// VerdictNone means no significant change was observed.
	VerdictNone Verdict = "NONE"
	// VerdictLightsOn means a sudden increase satisfied both thresholds.
	VerdictLightsOn Verdict = "LIGHTS_ON"
	// VerdictLightsOff means a sudden decrease satisfied both thresholds.
	VerdictLightsOff Verdict = "LIGHTS_OFF"
	// VerdictGradual means the magnitude was significant but the rate test
	// failed — drift such as sunrise/sunset, deliberately ignored.
	VerdictGradual Verdict = "GRADUAL"
	// VerdictSkipped means a zero or negative reference sum made the
	// percentage math undefined; the cycle was skipped entirely.
	VerdictSkipped Verdict = "SKIPPED"
)

// Config holds the classifier tunables. All thresholds are percentages.
type Config struct {
	// WindowSize is the number of raw samples per classification cycle.
	WindowSize int
	// HistoryDepth is the number of past window sums kept for the
	// rate-of-change computation.
	HistoryDepth int
	// SuddenThreshold is the minimum |percentChange| for a switch event.
	SuddenThreshold int
	// RateThreshold is the minimum |rateOfChange| for a switch event.
	RateThreshold int
	// GradualFloor is the minimum |percentChange| worth logging as drift.
	GradualFloor int
	// StartIlluminated is the flag value before any transition is seen.
	StartIlluminated bool
}

// DefaultConfig returns the standard tuning: a 100-sample window summed once
// per second at 100 Hz, five sums of history, 15%/5% thresholds.
func DefaultConfig() Config {
	return Config{
		WindowSize:       100,
		HistoryDepth:     5,
		SuddenThreshold:  15,
		RateThreshold:    5,
		GradualFloor:     5,
		StartIlluminated: true,
	}
}

// Cycle reports the numbers behind one classification cycle. Emitted once
// per full wrap of the sample window.
type Cycle struct {
	Time          time.Time
	PriorSum      int64
	Sum           int64
	Diff          int64
	PercentChange int64
	RateOfChange  int64
	Primed        bool
	Verdict       Verdict
	// Illuminated is the flag value after this cycle was applied.
	Illuminated bool
}

// EventCounts tracks classification outcomes since startup.
type EventCounts struct {
	LightsOn  int
	LightsOff int
	Gradual   int
	Skipped   int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}

// Rand supplies bounded random integers. math/rand satisfies it in
// production; tests supply scripted sequences.
type Rand interface {
	// Intn returns a non-negative integer in [0, n).
	Intn(n int) int
}

// WiggleConfig holds the scheduler tunables, all in base ticks (seconds).
type WiggleConfig struct {
	// BasePeriod is the nominal number of ticks between wiggles.
	BasePeriod int
	// Variation is the half-width of the uniform jitter applied to
	// BasePeriod when drawing the next interval.
	Variation int
	// MinPeriod is the floor any drawn interval is clamped to.
	MinPeriod int
}

// DefaultWiggleConfig returns the standard schedule: roughly once a minute,
// ±30 s of jitter, never more often than every 3 s.
func DefaultWiggleConfig() WiggleConfig {
	return WiggleConfig{
		BasePeriod: 60,
		Variation:  30,
		MinPeriod:  3,
	}
}

// Decision is emitted by the Wiggler on the tick its interval expires.
// DX/DY are zero when Illuminated is false.
type Decision struct {
	Illuminated bool
	DX          int
	DY          int
	// NextInterval is the freshly drawn interval, in ticks, until the
	// next decision.
	NextInterval int
}
