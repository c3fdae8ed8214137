package logic

import (
	"fmt"
	"time"
)

// Classifier accumulates raw light samples into a ring-buffered window and,
// once per full wrap, classifies the change against the previous window sums.
// A transition is only accepted when both the immediate magnitude
// (percentChange) and the average velocity over the history (rateOfChange)
// exceed their thresholds; large but slow drift is ignored.
type Classifier struct {
	cfg Config

	window []int
	pos    int

	history []int64
	histPos int
	primed  bool

	priorSum    int64
	illuminated bool

	counts        EventCounts
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewClassifier creates a classifier with empty buffers. Call Prefill before
// feeding live samples so the first cycle does not see a false transient.
// The startTime is used for calculating uptime in heartbeat events.
func NewClassifier(cfg Config, startTime time.Time) *Classifier {
	return &Classifier{
		cfg:           cfg,
		window:        make([]int, cfg.WindowSize),
		history:       make([]int64, cfg.HistoryDepth),
		illuminated:   cfg.StartIlluminated,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Prefill populates the sample window with real readings and seeds the sum
// history and priorSum from them. The history still reports unprimed until
// it completes one full wrap on live cycles.
func (c *Classifier) Prefill(read func() (int, error)) error {
	for i := range c.window {
		v, err := read()
		if err != nil {
			return fmt.Errorf("prefill sample %d: %w", i, err)
		}
		c.window[i] = v
	}
	sum := c.windowSum()
	c.priorSum = sum
	for i := range c.history {
		c.history[i] = sum
	}
	return nil
}

// AddSample stores one raw reading in the current window slot and advances
// the write position. On the wrap back to slot zero it runs one
// classification cycle and returns its result; otherwise it returns nil.
func (c *Classifier) AddSample(v int, now time.Time) *Cycle {
	c.window[c.pos] = v
	c.pos++
	if c.pos < len(c.window) {
		return nil
	}
	c.pos = 0
	return c.classify(now)
}

func (c *Classifier) classify(now time.Time) *Cycle {
	sum := c.windowSum()
	cy := &Cycle{
		Time:     now,
		PriorSum: c.priorSum,
		Sum:      sum,
		Verdict:  VerdictNone,
	}

	// Evict the oldest sum; its slot takes the new one.
	oldest := c.history[c.histPos]
	c.history[c.histPos] = sum
	c.histPos++
	if c.histPos == len(c.history) {
		c.histPos = 0
		c.primed = true
	}
	cy.Primed = c.primed

	// A zero or negative reference makes the percentages undefined. Skip
	// this cycle only; genuine sums will clear the condition.
	if c.priorSum <= 0 || oldest <= 0 {
		cy.Verdict = VerdictSkipped
		c.counts.Skipped++
		c.priorSum = sum
		cy.Illuminated = c.illuminated
		return cy
	}

	cy.Diff = sum - c.priorSum
	cy.PercentChange = cy.Diff * 100 / c.priorSum
	cy.RateOfChange = (sum - oldest) * 100 / (oldest * int64(len(c.history)))

	if c.primed {
		sudden := int64(c.cfg.SuddenThreshold)
		rate := int64(c.cfg.RateThreshold)
		switch {
		case cy.PercentChange > sudden && abs64(cy.RateOfChange) > rate:
			cy.Verdict = VerdictLightsOn
			c.illuminated = true
			c.counts.LightsOn++
		case cy.PercentChange < -sudden && abs64(cy.RateOfChange) > rate:
			cy.Verdict = VerdictLightsOff
			c.illuminated = false
			c.counts.LightsOff++
		case abs64(cy.PercentChange) > int64(c.cfg.GradualFloor):
			// Significant magnitude but the rate test failed:
			// drift, not a switch. Never mutates the flag.
			cy.Verdict = VerdictGradual
			c.counts.Gradual++
		}
	}

	c.priorSum = sum
	cy.Illuminated = c.illuminated
	return cy
}

func (c *Classifier) windowSum() int64 {
	var sum int64
	for _, s := range c.window {
		sum += int64(s)
	}
	return sum
}

// Illuminated returns the current flag value.
func (c *Classifier) Illuminated() bool {
	return c.illuminated
}

// Primed returns whether the sum history has completed its first full wrap.
func (c *Classifier) Primed() bool {
	return c.primed
}

// Counts returns the classification outcome counters since startup.
func (c *Classifier) Counts() EventCounts {
	return c.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since
// the last heartbeat (or startup). Returns nil if the interval has not
// elapsed or if interval is <= 0 (disabled).
func (c *Classifier) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}
	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Counts:    c.counts,
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
