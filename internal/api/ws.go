package api

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsAction is a client frame on the live socket. Watch/leave drive the
// presence registry; everything else arrives over REST.
type wsAction struct {
	Action string `json:"action"`
	SpokID int64  `json:"spok_id,omitempty"`
	PeerID int64  `json:"peer_id,omitempty"`
	Text   string `json:"text,omitempty"`
}

// handleWS upgrades the connection, attaches a session to the hub and runs
// the read loop until the client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	user := userID(r.Context())
	session := s.Hub.Attach(user, conn)
	defer s.Hub.Detach(session)

	for {
		var action wsAction
		if err := session.ReadJSON(&action); err != nil {
			return
		}

		switch action.Action {
		case "watch":
			if action.SpokID > 0 {
				s.Presence.Watch(session.ID, action.SpokID)
			}

		case "leave":
			if action.SpokID > 0 {
				s.Presence.Leave(session.ID, action.SpokID)
			}

		case "message":
			if action.PeerID > 0 {
				if _, err := s.Messaging.Send(r.Context(), user, action.PeerID, action.Text); err != nil {
					s.Logger.Warn("ws message rejected", "user", user, "error", err)
				}
			}
		}
	}
}
