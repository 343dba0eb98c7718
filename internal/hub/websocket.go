package hub

import (
	"sync"

	"github.com/gorilla/websocket"
)

// WSSubscriber adapts a WebSocket connection to the Subscriber
// interface. gorilla/websocket allows only one concurrent writer per
// connection, so writes are serialized with a mutex.
type WSSubscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSSubscriber wraps a WebSocket connection.
func NewWSSubscriber(conn *websocket.Conn) *WSSubscriber {
	return &WSSubscriber{conn: conn}
}

// Send writes payload as a single text message.
func (s *WSSubscriber) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close closes the underlying connection.
func (s *WSSubscriber) Close() error {
	return s.conn.Close()
}
