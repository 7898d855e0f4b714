package ws

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server upgrades HTTP connections to event subscriptions.
type Server struct {
	hub      *Hub
	ctx      context.Context
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewServer builds ws server. Connections are closed when ctx is cancelled.
func NewServer(ctx context.Context, hub *Hub, logger *zap.Logger) *Server {
	return &Server{
		hub:    hub,
		ctx:    ctx,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWS is HTTP handler for /ws/events endpoint.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	connection := NewConnection(id, conn, s.hub.pingInterval, s.hub.writeTimeout, s.logger, s.hub.Remove)
	s.hub.Add(connection)

	go connection.Start(s.ctx)
	s.logger.Info("subscriber connected", zap.String("conn_id", id), zap.String("remote", r.RemoteAddr))
}
