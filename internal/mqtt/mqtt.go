// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/pfarrell/lightwake/internal/logic"
)

// TopicLight is the MQTT topic for light classification events.
const TopicLight = "office/lightwake/light"

// TopicWiggle is the MQTT topic for wiggle activity events.
const TopicWiggle = "office/lightwake/wiggle"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "office/lightwake/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishLight sends a light transition event to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishLight(event LightEvent) error

	// PublishWiggle sends a wiggle activity event to the broker.
	PublishWiggle(event WiggleEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// LightEvent represents one classification outcome worth publishing.
type LightEvent struct {
	Timestamp     time.Time
	Verdict       logic.Verdict
	Sum           int64
	PriorSum      int64
	PercentChange int64
	RateOfChange  int64
	Illuminated   bool
}

// WiggleEvent represents one scheduler firing.
type WiggleEvent struct {
	Timestamp    time.Time
	DX           int
	DY           int
	NextInterval int // seconds until the next firing
	Suppressed   bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// LightPayload is the MQTT message payload for light events.
type LightPayload struct {
	Light LightInner `json:"light"`
}

// LightInner contains the light event details.
type LightInner struct {
	Timestamp     string `json:"timestamp"`
	Event         string `json:"event"`
	Sum           int64  `json:"sum"`
	PriorSum      int64  `json:"prior_sum"`
	PercentChange int64  `json:"percent_change"`
	RateOfChange  int64  `json:"rate_of_change"`
	Illuminated   bool   `json:"illuminated"`
}

// FormatLightPayload creates the JSON payload for a light event.
func FormatLightPayload(event LightEvent) ([]byte, error) {
	payload := LightPayload{
		Light: LightInner{
			Timestamp:     event.Timestamp.UTC().Format(time.RFC3339),
			Event:         string(event.Verdict),
			Sum:           event.Sum,
			PriorSum:      event.PriorSum,
			PercentChange: event.PercentChange,
			RateOfChange:  event.RateOfChange,
			Illuminated:   event.Illuminated,
		},
	}
	return json.Marshal(payload)
}

// WigglePayload is the MQTT message payload for wiggle events.
type WigglePayload struct {
	Wiggle WiggleInner `json:"wiggle"`
}

// WiggleInner contains the wiggle event details.
type WiggleInner struct {
	Timestamp     string `json:"timestamp"`
	Action        string `json:"action"` // "WIGGLE" or "SUPPRESSED"
	DX            int    `json:"dx"`
	DY            int    `json:"dy"`
	NextIntervalS int    `json:"next_interval_s"`
}

// FormatWigglePayload creates the JSON payload for a wiggle event.
func FormatWigglePayload(event WiggleEvent) ([]byte, error) {
	action := "WIGGLE"
	if event.Suppressed {
		action = "SUPPRESSED"
	}
	payload := WigglePayload{
		Wiggle: WiggleInner{
			Timestamp:     event.Timestamp.UTC().Format(time.RFC3339),
			Action:        action,
			DX:            event.DX,
			DY:            event.DY,
			NextIntervalS: event.NextInterval,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
