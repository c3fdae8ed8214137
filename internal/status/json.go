package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Light         string       `json:"light"`
	Primed        bool         `json:"primed"`
	WiggleActive  bool         `json:"wiggle_active"`
	NextWiggleS   int          `json:"next_wiggle_s"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	LastCycle     *CycleJSON   `json:"last_cycle,omitempty"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// CycleJSON is the JSON representation of the last classification cycle.
type CycleJSON struct {
	Timestamp     string `json:"timestamp"`
	Sum           int64  `json:"sum"`
	PriorSum      int64  `json:"prior_sum"`
	Diff          int64  `json:"diff"`
	PercentChange int64  `json:"percent_change"`
	RateOfChange  int64  `json:"rate_of_change"`
	Verdict       string `json:"verdict"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	LightsOn  int `json:"lights_on"`
	LightsOff int `json:"lights_off"`
	Gradual   int `json:"gradual_ignored"`
	Skipped   int `json:"cycles_skipped"`
	Wiggles   int `json:"wiggles"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	SampleMs      int64  `json:"sample_ms"`
	WindowSize    int    `json:"window_size"`
	HistoryDepth  int    `json:"history_depth"`
	SuddenPct     int    `json:"sudden_pct"`
	RatePct       int    `json:"rate_pct"`
	GradualPct    int    `json:"gradual_pct"`
	WigglePeriodS int    `json:"wiggle_period_s"`
	WiggleJitterS int    `json:"wiggle_jitter_s"`
	WiggleMinS    int    `json:"wiggle_min_s"`
	HeartbeatMs   int64  `json:"heartbeat_ms"`
	Broker        string `json:"broker"`
	HTTPPort      string `json:"http_port"`
	WSBroker      string `json:"ws_broker,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Light:         snap.LightState(),
		Primed:        snap.Primed,
		WiggleActive:  snap.WiggleActive,
		NextWiggleS:   snap.NextWiggleS,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			LightsOn:  snap.Counts.LightsOn,
			LightsOff: snap.Counts.LightsOff,
			Gradual:   snap.Counts.Gradual,
			Skipped:   snap.Counts.Skipped,
			Wiggles:   snap.Wiggles,
		},
		Config: ConfigJSON{
			SampleMs:      snap.Config.SampleMs,
			WindowSize:    snap.Config.WindowSize,
			HistoryDepth:  snap.Config.HistoryDepth,
			SuddenPct:     snap.Config.SuddenPct,
			RatePct:       snap.Config.RatePct,
			GradualPct:    snap.Config.GradualPct,
			WigglePeriodS: snap.Config.WigglePeriodS,
			WiggleJitterS: snap.Config.WiggleJitterS,
			WiggleMinS:    snap.Config.WiggleMinS,
			HeartbeatMs:   snap.Config.HeartbeatMs,
			Broker:        snap.Config.Broker,
			HTTPPort:      snap.Config.HTTPPort,
			WSBroker:      snap.Config.WSBroker,
		},
	}

	if snap.LastCycle != nil {
		inner.LastCycle = &CycleJSON{
			Timestamp:     snap.LastCycle.Time.UTC().Format(time.RFC3339),
			Sum:           snap.LastCycle.Sum,
			PriorSum:      snap.LastCycle.PriorSum,
			Diff:          snap.LastCycle.Diff,
			PercentChange: snap.LastCycle.PercentChange,
			RateOfChange:  snap.LastCycle.RateOfChange,
			Verdict:       snap.LastCycle.Verdict,
		}
	}

	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
