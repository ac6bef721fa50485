package api

import (
	"net/http"

	"github.com/samber/lo"

	"spokd/internal/core"
	"spokd/internal/pagination"
)

const resourceNotification = "notification"

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	cursor, err := cursorBoundary(r)
	if err != nil {
		respondError(w, resourceNotification, err)
		return
	}

	notifications, err := s.Notifications.ByRecipient(r.Context(), userID(r.Context()), cursor, pagination.PageSize)
	if err != nil {
		respondError(w, resourceNotification, err)
		return
	}

	// Fetching the list counts as seeing it. The views keep the pre-fetch
	// read flags so clients can still highlight what was new.
	unread := lo.FilterMap(notifications, func(n core.Notification, _ int) (int64, bool) {
		return n.ID, !n.Read
	})
	if len(unread) > 0 {
		if err := s.Notifications.MarkRead(r.Context(), userID(r.Context()), unread); err != nil {
			s.Logger.Error("marking notifications read failed", "error", err)
		}
	}

	page := pagination.NewPage(notificationViews(notifications), pagination.PageSize, cursor, func(v NotificationView) int64 {
		return v.ID
	})
	respond(w, resourceNotification, http.StatusOK, page)
}

type markReadRequest struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) handleMarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceNotification, err)
		return
	}

	if err := s.Notifications.MarkRead(r.Context(), userID(r.Context()), req.IDs); err != nil {
		respondError(w, resourceNotification, err)
		return
	}
	respond(w, resourceNotification, http.StatusOK, map[string]bool{"read": true})
}

func (s *Server) handleRemoveNotification(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceNotification, err)
		return
	}

	notification, err := s.Notifications.Get(r.Context(), id)
	if err != nil {
		respondError(w, resourceNotification, err)
		return
	}
	if notification.RecipientID != userID(r.Context()) {
		respondError(w, resourceNotification, core.ErrNotificationNotFound)
		return
	}

	if err := s.Notifications.Remove(r.Context(), id); err != nil {
		respondError(w, resourceNotification, err)
		return
	}
	respond(w, resourceNotification, http.StatusOK, map[string]bool{"removed": true})
}
