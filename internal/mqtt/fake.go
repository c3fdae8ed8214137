package mqtt

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	// LightEvents contains all light events that were published.
	LightEvents []LightEvent

	// WiggleEvents contains all wiggle events that were published.
	WiggleEvents []WiggleEvent

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// LightPayloads contains the JSON payloads for light events.
	LightPayloads [][]byte

	// PublishError, if set, will be returned by all publish methods.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishLight records the light event.
func (f *FakePublisher) PublishLight(event LightEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.LightEvents = append(f.LightEvents, event)

	payload, err := FormatLightPayload(event)
	if err != nil {
		return err
	}
	f.LightPayloads = append(f.LightPayloads, payload)

	return nil
}

// PublishWiggle records the wiggle event.
func (f *FakePublisher) PublishWiggle(event WiggleEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.WiggleEvents = append(f.WiggleEvents, event)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.LightEvents = nil
	f.WiggleEvents = nil
	f.SystemEvents = nil
	f.LightPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.Connected = false
}
