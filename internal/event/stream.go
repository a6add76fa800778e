// AngelaMos | 2026
// stream.go

package event

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type StreamMessage struct {
	Topic     Topic     `json:"topic"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Stream re-broadcasts bus events to connected websocket clients so the UI
// layer can re-render on change notifications without polling.
type Stream struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewStream(bus *Bus, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Stream{
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
	}

	for _, topic := range []Topic{
		TopicCartUpdated,
		TopicSessionLogout,
		TopicOrderCreated,
		TopicActivityLogged,
	} {
		t := topic
		bus.Subscribe(t, func(_ context.Context, payload any) {
			s.broadcast(StreamMessage{
				Topic:     t,
				Payload:   payload,
				Timestamp: time.Now().UTC(),
			})
		})
	}

	return s
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed",
			"error", err,
			"remote_addr", r.RemoteAddr,
		)
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	s.logger.Info("event stream client connected",
		"remote_addr", conn.RemoteAddr().String(),
	)

	// Reader loop only detects disconnects; clients never send commands.
	go func() {
		defer s.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(
					err,
					websocket.CloseGoingAway,
					websocket.CloseNormalClosure,
				) {
					s.logger.Warn("event stream read error",
						"error", err,
						"remote_addr", conn.RemoteAddr().String(),
					)
				}
				return
			}
		}
	}()
}

func (s *Stream) broadcast(msg StreamMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Warn("event stream write failed",
				"error", err,
				"remote_addr", conn.RemoteAddr().String(),
			)
			delete(s.clients, conn)
			//nolint:errcheck // already dropping the connection
			_ = conn.Close()
		}
	}
}

func (s *Stream) drop(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		//nolint:errcheck // best-effort close
		_ = conn.Close()
	}
}

func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		//nolint:errcheck // best-effort close on shutdown
		_ = conn.Close()
		delete(s.clients, conn)
	}
}
