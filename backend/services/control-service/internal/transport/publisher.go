package transport

import (
	"context"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	libmqtt "roomcontrol/backend/libs/mqtt"
)

// Publisher sends command payloads over MQTT.
type Publisher struct {
	client  paho.Client
	qos     byte
	timeout time.Duration
}

// NewPublisher returns a publisher bounded by timeout per message.
func NewPublisher(client paho.Client, qos byte, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{client: client, qos: qos, timeout: timeout}
}

// Publish hands payload to the broker. It never retries.
func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	return libmqtt.Publish(p.client, topic, p.qos, payload, timeout)
}
