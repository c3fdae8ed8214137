package mqtt

import "log"

// queuedMsg stores a serialized MQTT message for replay after reconnection.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO that holds messages while the broker is
// unreachable. Oldest messages are overwritten on overflow. Not safe for
// concurrent use — caller must synchronize.
type outbox struct {
	buf      []queuedMsg
	capacity int
	head     int // next write position
	count    int
	dropped  int // messages overwritten since the last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{
		buf:      make([]queuedMsg, capacity),
		capacity: capacity,
	}
}

func (o *outbox) push(msg queuedMsg) {
	if o.count == o.capacity {
		if o.dropped == 0 {
			log.Printf("mqtt: outbox full (%d messages), dropping oldest", o.capacity)
		}
		o.dropped++
		// head already points at the oldest entry
		o.buf[o.head] = msg
		o.head = (o.head + 1) % o.capacity
		return
	}
	o.buf[o.head] = msg
	o.head = (o.head + 1) % o.capacity
	o.count++
}

// drainAll returns the queued messages oldest-first and empties the outbox.
func (o *outbox) drainAll() []queuedMsg {
	if o.count == 0 {
		return nil
	}

	result := make([]queuedMsg, o.count)
	start := (o.head - o.count + o.capacity) % o.capacity
	for i := 0; i < o.count; i++ {
		result[i] = o.buf[(start+i)%o.capacity]
	}

	o.count = 0
	o.head = 0
	o.dropped = 0
	return result
}

func (o *outbox) len() int {
	return o.count
}
