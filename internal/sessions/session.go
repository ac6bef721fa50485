package sessions

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second

	maxMessageSize = 4096
	sendBuffer     = 64
)

// Session is one live websocket connection of an authenticated user. A user
// may hold several sessions at once; deliveries go to all of them.
type Session struct {
	ID     string
	UserID int64

	conn *websocket.Conn
	send chan []byte
}

// Send queues a payload for the write pump. A session that cannot keep up
// loses the payload instead of blocking the hub.
func (s *Session) Send(payload []byte) bool {
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

// ReadJSON blocks on the next client frame and decodes it into v.
func (s *Session) ReadJSON(v any) error {
	_, payload, err := s.conn.ReadMessage()
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, v)
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
