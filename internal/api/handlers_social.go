package api

import (
	"net/http"

	"spokd/internal/pagination"
)

const (
	resourceFollow = "follow"
	resourceGroup  = "group"
)

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceFollow, err)
		return
	}

	if err := s.Graph.Follow(r.Context(), userID(r.Context()), id); err != nil {
		respondError(w, resourceFollow, err)
		return
	}
	respond(w, resourceFollow, http.StatusOK, map[string]bool{"following": true})
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceFollow, err)
		return
	}

	if err := s.Graph.Unfollow(r.Context(), userID(r.Context()), id); err != nil {
		respondError(w, resourceFollow, err)
		return
	}
	respond(w, resourceFollow, http.StatusOK, map[string]bool{"following": false})
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceFollow, err)
		return
	}

	cursor, err := cursorBoundary(r)
	if err != nil {
		respondError(w, resourceFollow, err)
		return
	}

	accounts, err := s.Graph.Followers(r.Context(), userID(r.Context()), id, cursor, pagination.PageSize)
	if err != nil {
		respondError(w, resourceFollow, err)
		return
	}

	page := pagination.NewPage(accountViews(accounts), pagination.PageSize, cursor, func(v AccountView) int64 {
		return v.ID
	})
	respond(w, resourceFollow, http.StatusOK, page)
}

func (s *Server) handleFollowings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceFollow, err)
		return
	}

	cursor, err := cursorBoundary(r)
	if err != nil {
		respondError(w, resourceFollow, err)
		return
	}

	accounts, err := s.Graph.Followings(r.Context(), userID(r.Context()), id, cursor, pagination.PageSize)
	if err != nil {
		respondError(w, resourceFollow, err)
		return
	}

	page := pagination.NewPage(accountViews(accounts), pagination.PageSize, cursor, func(v AccountView) int64 {
		return v.ID
	})
	respond(w, resourceFollow, http.StatusOK, page)
}

type groupRequest struct {
	Title string `json:"title"`
}

type GroupView struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	NbUsers    int    `json:"nb_users"`
	NbContacts int    `json:"nb_contacts"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	owner := userID(r.Context())

	list, err := s.Groups.ByOwner(r.Context(), owner)
	if err != nil {
		respondError(w, resourceGroup, err)
		return
	}

	views := make([]GroupView, 0, len(list))
	for _, group := range list {
		members, err := s.Groups.Members(r.Context(), group.ID, owner)
		if err != nil {
			respondError(w, resourceGroup, err)
			return
		}

		view := GroupView{ID: group.ID, Title: group.Title}
		for _, member := range members {
			if member.UserID > 0 {
				view.NbUsers++
			} else {
				view.NbContacts++
			}
		}
		views = append(views, view)
	}
	respond(w, resourceGroup, http.StatusOK, views)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceGroup, err)
		return
	}

	group, err := s.Groups.Create(r.Context(), userID(r.Context()), req.Title)
	if err != nil {
		respondError(w, resourceGroup, err)
		return
	}
	respond(w, resourceGroup, http.StatusCreated, group)
}

func (s *Server) handleRenameGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceGroup, err)
		return
	}

	var req groupRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceGroup, err)
		return
	}

	group, err := s.Groups.Rename(r.Context(), id, userID(r.Context()), req.Title)
	if err != nil {
		respondError(w, resourceGroup, err)
		return
	}
	respond(w, resourceGroup, http.StatusOK, group)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceGroup, err)
		return
	}

	if err := s.Groups.Delete(r.Context(), id, userID(r.Context())); err != nil {
		respondError(w, resourceGroup, err)
		return
	}
	respond(w, resourceGroup, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleGroupMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceGroup, err)
		return
	}

	members, err := s.Groups.Members(r.Context(), id, userID(r.Context()))
	if err != nil {
		respondError(w, resourceGroup, err)
		return
	}
	respond(w, resourceGroup, http.StatusOK, members)
}

type groupMembersRequest struct {
	UserIDs []int64  `json:"user_ids"`
	Phones  []string `json:"phones"`
}

func (s *Server) handleAddGroupMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceGroup, err)
		return
	}

	var req groupMembersRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceGroup, err)
		return
	}

	if err := s.Groups.AddMembers(r.Context(), id, userID(r.Context()), req.UserIDs, req.Phones); err != nil {
		respondError(w, resourceGroup, err)
		return
	}
	respond(w, resourceGroup, http.StatusOK, map[string]bool{"added": true})
}

func (s *Server) handleRemoveGroupMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceGroup, err)
		return
	}

	var req groupMembersRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceGroup, err)
		return
	}

	if err := s.Groups.RemoveMembers(r.Context(), id, userID(r.Context()), req.UserIDs, req.Phones); err != nil {
		respondError(w, resourceGroup, err)
		return
	}
	respond(w, resourceGroup, http.StatusOK, map[string]bool{"removed": true})
}
