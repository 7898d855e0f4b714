package transport

import (
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	libmqtt "roomcontrol/backend/libs/mqtt"
	"roomcontrol/backend/services/control-service/internal/models"
)

const subscribeTimeout = 10 * time.Second

// Source turns MQTT deliveries into a channel of messages so parsing stays independent
// of the client library's callback model.
type Source struct {
	filter string
	qos    byte
	ch     chan models.Message
	logger *zap.Logger
	now    func() time.Time
}

// NewSource creates a source with a bounded queue.
func NewSource(filter string, qos byte, queueSize int, logger *zap.Logger) *Source {
	if filter == "" {
		filter = SubscribeAll
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Source{
		filter: filter,
		qos:    qos,
		ch:     make(chan models.Message, queueSize),
		logger: logger,
		now:    time.Now,
	}
}

// Messages exposes the inbound stream.
func (s *Source) Messages() <-chan models.Message {
	return s.ch
}

// Subscribe registers the source on a connected client. Used as the OnConnect hook so the
// subscription is restored after reconnects.
func (s *Source) Subscribe(client paho.Client) {
	if err := libmqtt.Subscribe(client, s.filter, s.qos, s.handle, subscribeTimeout); err != nil {
		s.logger.Error("mqtt subscribe failed", zap.String("filter", s.filter), zap.Error(err))
		return
	}
	s.logger.Info("subscribed", zap.String("filter", s.filter))
}

func (s *Source) handle(_ paho.Client, msg paho.Message) {
	s.Enqueue(msg.Topic(), msg.Payload())
}

// Enqueue pushes one delivery. When the queue is full the message is dropped; the next
// status or sensor message supersedes it.
func (s *Source) Enqueue(topic string, payload []byte) bool {
	body := make([]byte, len(payload))
	copy(body, payload)

	select {
	case s.ch <- models.Message{Topic: topic, Payload: body, ReceivedAt: s.now()}:
		return true
	default:
		s.logger.Warn("inbound queue full, dropping message", zap.String("topic", topic))
		return false
	}
}
