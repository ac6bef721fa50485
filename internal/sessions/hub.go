// Package sessions keeps the node's live websocket connections and routes
// NATS deliveries to them. User deliveries follow the subscription model;
// spok echoes consult the presence registry so only sessions currently
// viewing the spok receive them.
package sessions

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	libnats "github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"spokd/internal/core"
	"spokd/internal/nats"
)

var sessionsConnected = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "spokd_sessions_connected",
	Help: "The number of websocket sessions currently attached to this node",
})

type Hub struct {
	Logger   *slog.Logger
	NATS     *nats.NATS
	Presence core.Presence

	mu     sync.RWMutex
	byID   map[string]*Session
	byUser map[int64]map[string]*Session

	subs []*libnats.Subscription
}

func (h *Hub) Init(context.Context) error {
	h.Logger = h.Logger.With("component", "sessions.Hub")
	h.byID = map[string]*Session{}
	h.byUser = map[int64]map[string]*Session{}

	deliver, err := h.NATS.Conn.Subscribe(nats.DeliverSubjectPrefix+"*", h.onDeliver)
	if err != nil {
		return err
	}
	h.subs = append(h.subs, deliver)

	echo, err := h.NATS.Conn.Subscribe(nats.EchoSubjectPrefix+"*", h.onEcho)
	if err != nil {
		return err
	}
	h.subs = append(h.subs, echo)

	return nil
}

func (h *Hub) Shutdown(context.Context) error {
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil {
			return err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, session := range h.byID {
		close(session.send)
	}
	h.byID = map[string]*Session{}
	h.byUser = map[int64]map[string]*Session{}

	return nil
}

// Attach registers a freshly upgraded connection and starts its write pump.
func (h *Hub) Attach(userID int64, conn *websocket.Conn) *Session {
	session := &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.mu.Lock()
	h.byID[session.ID] = session
	if h.byUser[userID] == nil {
		h.byUser[userID] = map[string]*Session{}
	}
	h.byUser[userID][session.ID] = session
	h.mu.Unlock()

	go session.writePump()

	sessionsConnected.Inc()
	h.Logger.Info("session attached", "session", session.ID, "user", userID)

	return session
}

// Detach forgets the session and drops its presence entries.
func (h *Hub) Detach(session *Session) {
	h.mu.Lock()
	if _, ok := h.byID[session.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.byID, session.ID)
	delete(h.byUser[session.UserID], session.ID)
	if len(h.byUser[session.UserID]) == 0 {
		delete(h.byUser, session.UserID)
	}
	h.mu.Unlock()

	h.Presence.Drop(session.ID)
	close(session.send)

	sessionsConnected.Dec()
	h.Logger.Info("session detached", "session", session.ID, "user", session.UserID)
}

func (h *Hub) onDeliver(msg *libnats.Msg) {
	userID, err := strconv.ParseInt(strings.TrimPrefix(msg.Subject, nats.DeliverSubjectPrefix), 10, 64)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, session := range h.byUser[userID] {
		if !session.Send(msg.Data) {
			h.Logger.Warn("session send buffer full", "session", session.ID)
		}
	}
}

func (h *Hub) onEcho(msg *libnats.Msg) {
	spokID, err := strconv.ParseInt(strings.TrimPrefix(msg.Subject, nats.EchoSubjectPrefix), 10, 64)
	if err != nil {
		return
	}

	watchers := h.Presence.Watchers(spokID)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sessionID := range watchers {
		session, ok := h.byID[sessionID]
		if !ok {
			continue
		}
		if !session.Send(msg.Data) {
			h.Logger.Warn("session send buffer full", "session", session.ID)
		}
	}
}
