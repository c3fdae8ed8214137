package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// outboxCapacity bounds how many messages are held while disconnected.
const outboxCapacity = 64

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the broker is unreachable are queued in a bounded outbox and replayed on
// reconnect.
type RealPublisher struct {
	client paho.Client

	mu  sync.Mutex
	out *outbox
}

// NewRealPublisher creates a publisher connected to the given broker.
func NewRealPublisher(broker string) (*RealPublisher, error) {
	p := &RealPublisher{out: newOutbox(outboxCapacity)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("lightwake").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) { p.drainOutbox() })

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// PublishLight sends a light transition event to the MQTT broker.
func (p *RealPublisher) PublishLight(event LightEvent) error {
	payload, err := FormatLightPayload(event)
	if err != nil {
		return fmt.Errorf("format light payload: %w", err)
	}
	// QoS 0 (at-most-once), not retained
	return p.publish(TopicLight, 0, false, payload)
}

// PublishWiggle sends a wiggle activity event to the MQTT broker.
func (p *RealPublisher) PublishWiggle(event WiggleEvent) error {
	payload, err := FormatWigglePayload(event)
	if err != nil {
		return fmt.Errorf("format wiggle payload: %w", err)
	}
	return p.publish(TopicWiggle, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	return p.publish(TopicSystem, 1, event.Retained, payload)
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.out.push(queuedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		queued := p.out.len()
		p.mu.Unlock()
		log.Printf("mqtt: broker unreachable, queued message for %s (%d pending)", topic, queued)
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// drainOutbox replays queued messages after a (re)connect.
func (p *RealPublisher) drainOutbox() {
	p.mu.Lock()
	msgs := p.out.drainAll()
	p.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	log.Printf("mqtt: reconnected, replaying %d queued messages", len(msgs))
	for _, m := range msgs {
		token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(5 * time.Second) {
			log.Printf("mqtt: replay timeout on %s", m.topic)
			continue
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: replay error on %s: %v", m.topic, err)
		}
	}
}

// IsConnected reports whether the client currently has a broker connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
