package api

import (
	"net/http"

	"spokd/internal/pagination"
)

const resourceTalk = "talk"

type messageRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceTalk, err)
		return
	}

	var req messageRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceTalk, err)
		return
	}

	message, err := s.Messaging.Send(r.Context(), userID(r.Context()), id, req.Text)
	if err != nil {
		respondError(w, resourceTalk, err)
		return
	}
	respond(w, resourceTalk, http.StatusCreated, messageView(message))
}

func (s *Server) handleListTalks(w http.ResponseWriter, r *http.Request) {
	cursor, err := cursorBoundary(r)
	if err != nil {
		respondError(w, resourceTalk, err)
		return
	}

	viewer := userID(r.Context())
	talks, err := s.Messaging.ListTalks(r.Context(), viewer, cursor, pagination.PageSize)
	if err != nil {
		respondError(w, resourceTalk, err)
		return
	}

	page := pagination.NewPage(talkViews(talks, viewer), pagination.PageSize, cursor, func(v TalkView) int64 {
		return v.ID
	})
	respond(w, resourceTalk, http.StatusOK, page)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceTalk, err)
		return
	}

	cursor, err := cursorBoundary(r)
	if err != nil {
		respondError(w, resourceTalk, err)
		return
	}

	messages, err := s.Messaging.Messages(r.Context(), id, userID(r.Context()), cursor, pagination.MessagePageSize)
	if err != nil {
		respondError(w, resourceTalk, err)
		return
	}

	page := pagination.NewPage(messageViews(messages), pagination.MessagePageSize, cursor, func(v MessageView) int64 {
		return v.ID
	})
	respond(w, resourceTalk, http.StatusOK, page)
}

func (s *Server) handleDeleteTalk(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceTalk, err)
		return
	}

	if err := s.Messaging.DeleteTalk(r.Context(), id, userID(r.Context())); err != nil {
		respondError(w, resourceTalk, err)
		return
	}
	respond(w, resourceTalk, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleRemoveMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceTalk, err)
		return
	}

	if err := s.Messaging.RemoveMessage(r.Context(), id, userID(r.Context())); err != nil {
		respondError(w, resourceTalk, err)
		return
	}
	respond(w, resourceTalk, http.StatusOK, map[string]bool{"removed": true})
}
