// Package status provides a thread-safe status tracker for the lightwake
// daemon. It is read by HTTP handlers and serialized into MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/pfarrell/lightwake/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	SampleMs      int64
	WindowSize    int
	HistoryDepth  int
	SuddenPct     int
	RatePct       int
	GradualPct    int
	WigglePeriodS int
	WiggleJitterS int
	WiggleMinS    int
	HeartbeatMs   int64
	Broker        string
	HTTPPort      string
	WSBroker      string // Websocket broker URL for browser MQTT (empty = disabled)
}

// CycleInfo is the most recent classification cycle's numbers.
type CycleInfo struct {
	Time          time.Time
	Sum           int64
	PriorSum      int64
	Diff          int64
	PercentChange int64
	RateOfChange  int64
	Verdict       string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Illuminated   bool
	Primed        bool
	LastCycle     *CycleInfo
	Counts        logic.EventCounts
	Wiggles       int
	WiggleActive  bool
	NextWiggleS   int
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// LightState renders the illuminated flag for display: LIT, DARK, or
// UNKNOWN before the first classification cycle has run.
func (s Snapshot) LightState() string {
	if s.LastCycle == nil {
		return "UNKNOWN"
	}
	if s.Illuminated {
		return "LIT"
	}
	return "DARK"
}

// Tracker holds mutable daemon state behind an RWMutex. It is written by
// both the sampler and wiggler loops.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// UpdateCycle records the latest classification cycle.
// Called from the sampler loop once per cycle.
func (t *Tracker) UpdateCycle(cy logic.Cycle, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Illuminated = cy.Illuminated
	t.snap.Primed = cy.Primed
	t.snap.LastCycle = &CycleInfo{
		Time:          cy.Time,
		Sum:           cy.Sum,
		PriorSum:      cy.PriorSum,
		Diff:          cy.Diff,
		PercentChange: cy.PercentChange,
		RateOfChange:  cy.RateOfChange,
		Verdict:       string(cy.Verdict),
	}
	t.snap.Counts = counts
	t.mu.Unlock()
}

// UpdateWiggle records the latest scheduler firing.
// Called from the wiggler loop.
func (t *Tracker) UpdateWiggle(active bool, wiggles int, nextIntervalS int) {
	t.mu.Lock()
	t.snap.WiggleActive = active
	t.snap.Wiggles = wiggles
	t.snap.NextWiggleS = nextIntervalS
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
