package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultPingInterval = 30 * time.Second
	defaultWriteTimeout = 10 * time.Second
	broadcastBuffer     = 256
)

// Hub fans control events out to every connected subscriber.
type Hub struct {
	mu           sync.RWMutex
	connections  map[string]*Connection
	events       chan []byte
	pingInterval time.Duration
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewHub builds the hub.
func NewHub(pingInterval, writeTimeout time.Duration, logger *zap.Logger) *Hub {
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &Hub{
		connections:  make(map[string]*Connection),
		events:       make(chan []byte, broadcastBuffer),
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Add registers new connection.
func (h *Hub) Add(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[conn.ID()] = conn
}

// Remove removes connection.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, id)
}

// Count returns the number of subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Broadcast queues event for delivery. It never blocks the caller.
func (h *Hub) Broadcast(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("failed to encode event", zap.Error(err))
		return
	}
	select {
	case h.events <- data:
	default:
		h.logger.Warn("event queue full, dropping event")
	}
}

// Start delivers queued events until ctx is cancelled.
func (h *Hub) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-h.events:
			h.mu.RLock()
			for _, conn := range h.connections {
				conn.Send(data)
			}
			h.mu.RUnlock()
		}
	}
}
