package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pfarrell/lightwake/internal/logic"
)

func TestFormatLightPayload(t *testing.T) {
	event := LightEvent{
		Timestamp:     time.Date(2026, 3, 14, 8, 2, 11, 0, time.UTC),
		Verdict:       logic.VerdictLightsOn,
		Sum:           67800,
		PriorSum:      45200,
		PercentChange: 50,
		RateOfChange:  10,
		Illuminated:   true,
	}

	payload, err := FormatLightPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed LightPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Light.Timestamp != "2026-03-14T08:02:11Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Light.Timestamp)
	}
	if parsed.Light.Event != "LIGHTS_ON" {
		t.Errorf("unexpected event: %s", parsed.Light.Event)
	}
	if parsed.Light.Sum != 67800 {
		t.Errorf("unexpected sum: %d", parsed.Light.Sum)
	}
	if parsed.Light.PercentChange != 50 {
		t.Errorf("unexpected percent change: %d", parsed.Light.PercentChange)
	}
	if !parsed.Light.Illuminated {
		t.Error("expected illuminated true")
	}
}

func TestFormatWigglePayload(t *testing.T) {
	event := WiggleEvent{
		Timestamp:    time.Date(2026, 3, 14, 8, 3, 0, 0, time.UTC),
		DX:           1,
		DY:           -1,
		NextInterval: 47,
	}

	payload, err := FormatWigglePayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed WigglePayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Wiggle.Action != "WIGGLE" {
		t.Errorf("unexpected action: %s", parsed.Wiggle.Action)
	}
	if parsed.Wiggle.DX != 1 || parsed.Wiggle.DY != -1 {
		t.Errorf("unexpected deltas: (%d,%d)", parsed.Wiggle.DX, parsed.Wiggle.DY)
	}
	if parsed.Wiggle.NextIntervalS != 47 {
		t.Errorf("unexpected next interval: %d", parsed.Wiggle.NextIntervalS)
	}
}

func TestFormatWigglePayloadSuppressed(t *testing.T) {
	event := WiggleEvent{
		Timestamp:    time.Now(),
		NextInterval: 60,
		Suppressed:   true,
	}

	payload, err := FormatWigglePayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed WigglePayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Wiggle.Action != "SUPPRESSED" {
		t.Errorf("unexpected action: %s", parsed.Wiggle.Action)
	}
	if parsed.Wiggle.DX != 0 || parsed.Wiggle.DY != 0 {
		t.Errorf("suppressed firing must carry zero deltas, got (%d,%d)", parsed.Wiggle.DX, parsed.Wiggle.DY)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.System.Event != "SHUTDOWN" {
		t.Errorf("unexpected event: %s", parsed.System.Event)
	}
	if parsed.System.Reason != "SIGTERM" {
		t.Errorf("unexpected reason: %s", parsed.System.Reason)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	event := SystemEvent{Timestamp: time.Now(), Event: "STARTUP", RawPayload: raw}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	light := LightEvent{Timestamp: time.Now(), Verdict: logic.VerdictLightsOff, Illuminated: false}
	if err := f.PublishLight(light); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.LightEvents) != 1 {
		t.Fatalf("expected 1 light event, got %d", len(f.LightEvents))
	}
	if len(f.LightPayloads) != 1 {
		t.Fatalf("expected 1 light payload, got %d", len(f.LightPayloads))
	}

	wiggle := WiggleEvent{Timestamp: time.Now(), DX: 1, DY: 1, NextInterval: 12}
	if err := f.PublishWiggle(wiggle); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.WiggleEvents) != 1 {
		t.Fatalf("expected 1 wiggle event, got %d", len(f.WiggleEvents))
	}

	if err := f.PublishSystem(SystemEvent{Event: "HEARTBEAT"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(f.SystemEvents))
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")

	if err := f.PublishLight(LightEvent{}); err == nil {
		t.Error("expected error from PublishLight")
	}
	if err := f.PublishWiggle(WiggleEvent{}); err == nil {
		t.Error("expected error from PublishWiggle")
	}
	if len(f.LightEvents) != 0 || len(f.WiggleEvents) != 0 {
		t.Error("failed publishes should not be recorded")
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.PublishLight(LightEvent{})
	f.PublishSystem(SystemEvent{})
	f.Connected = true

	f.Reset()

	if len(f.LightEvents) != 0 || len(f.SystemEvents) != 0 {
		t.Error("reset should clear recorded events")
	}
	if f.Connected {
		t.Error("reset should clear connected flag")
	}
}
