// Package ws hosts the WebSocket endpoint: upgrade-time authentication,
// connection lifecycle, and the read/write pumps feeding the action router.
package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"denti-chat/auth"
	"denti-chat/observability"
	"denti-chat/realtime"
	"denti-chat/services"
)

// Config bounds the socket lifecycle.
type Config struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
}

type Server struct {
	cfg      Config
	verifier *auth.Verifier
	chat     services.IChatService
	hub      *realtime.Hub
	router   *Router
	metrics  *observability.Metrics
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewServer(
	cfg Config,
	verifier *auth.Verifier,
	chat services.IChatService,
	hub *realtime.Hub,
	router *Router,
	metrics *observability.Metrics,
	log *slog.Logger,
) *Server {
	return &Server{
		cfg:      cfg,
		verifier: verifier,
		chat:     chat,
		hub:      hub,
		router:   router,
		metrics:  metrics,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Origin policy is enforced upstream at the edge.
				return true
			},
		},
	}
}

// HandleWebSocket authenticates the connection request, upgrades it and
// registers the connection. Authentication failure rejects the attempt
// before any registry row is created.
func (s *Server) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	claims, err := s.verifier.Verify(token, c.QueryParam("clinicId"))
	if err != nil {
		s.log.Warn("connect rejected", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid identity token")
	}

	socket, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.log.Error("upgrade failed", "error", err)
		return err
	}

	conn := realtime.NewConn(uuid.NewString())
	s.hub.Add(conn)
	s.metrics.ActiveConnections.Inc()

	if err := s.chat.Connect(claims, conn.ID); err != nil {
		s.log.Error("connect failed", "connectionId", conn.ID, "error", err)
		s.hub.Remove(conn.ID)
		s.metrics.ActiveConnections.Dec()
		conn.Close()
		_ = socket.Close()
		return nil
	}

	go s.writePump(conn, socket)
	go s.readPump(claims, conn, socket)
	return nil
}

// readPump reads frames and routes them. Its deferred cleanup is the
// $disconnect path: hub removal, registry cleanup, socket close. Cleanup is
// idempotent, so racing with gone-connection pruning is harmless.
func (s *Server) readPump(claims auth.UserClaims, conn *realtime.Conn, socket *websocket.Conn) {
	defer func() {
		s.hub.Remove(conn.ID)
		s.metrics.ActiveConnections.Dec()
		conn.Close()
		s.chat.Disconnect(conn.ID)
		_ = socket.Close()
	}()

	socket.SetReadLimit(s.cfg.MaxMessageSize)
	_ = socket.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	socket.SetPongHandler(func(string) error {
		return socket.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	for {
		_, frame, err := socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("read error", "connectionId", conn.ID, "error", err)
			}
			return
		}
		s.router.Route(claims, conn.ID, frame)
	}
}

// writePump drains the connection's outbound queue onto the socket and
// keeps the connection alive with pings.
func (s *Server) writePump(conn *realtime.Conn, socket *websocket.Conn) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = socket.Close()
	}()

	for {
		select {
		case frame, ok := <-conn.Out:
			_ = socket.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				_ = socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := socket.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.log.Warn("write error", "connectionId", conn.ID, "error", err)
				return
			}
		case <-ticker.C:
			_ = socket.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
