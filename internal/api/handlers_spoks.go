package api

import (
	"context"
	"net/http"
	"time"

	"spokd/internal/core"
	"spokd/internal/pagination"
	"spokd/internal/spok"
)

const (
	resourceSpok    = "spok"
	resourceComment = "comment"
	resourcePoll    = "poll"
	resourceStack   = "stack"
	resourceWall    = "wall"
)

type createSpokRequest struct {
	Content      core.Content    `json:"content"`
	GroupID      int64           `json:"group_id"`
	Visibility   core.Visibility `json:"visibility"`
	TTLSeconds   int64           `json:"ttl"`
	InstanceText string          `json:"text"`
	Geo          core.Geo        `json:"geo"`
}

func (s *Server) handleCreateSpok(w http.ResponseWriter, r *http.Request) {
	var req createSpokRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceSpok, err)
		return
	}

	created, err := s.Engine.Create(r.Context(), userID(r.Context()), spok.CreateParams{
		Content:      req.Content,
		GroupID:      req.GroupID,
		Visibility:   req.Visibility,
		TTLSeconds:   req.TTLSeconds,
		InstanceText: req.InstanceText,
		Geo:          req.Geo,
	})
	if err != nil {
		respondError(w, resourceSpok, err)
		return
	}
	respond(w, resourceSpok, http.StatusCreated, spokView(created, time.Now()))
}

func (s *Server) handleGetSpok(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceSpok, err)
		return
	}

	found, err := s.Spoks.Get(r.Context(), id)
	if err != nil {
		respondError(w, resourceSpok, err)
		return
	}
	respond(w, resourceSpok, http.StatusOK, spokView(found, time.Now()))
}

func (s *Server) handleDisableSpok(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceSpok, err)
		return
	}

	if err := s.Engine.Disable(r.Context(), id, userID(r.Context())); err != nil {
		respondError(w, resourceSpok, err)
		return
	}
	respond(w, resourceSpok, http.StatusOK, map[string]bool{"disabled": true})
}

type respokeRequest struct {
	GroupID    int64           `json:"group_id"`
	Visibility core.Visibility `json:"visibility"`
	Text       string          `json:"text"`
	Geo        core.Geo        `json:"geo"`
}

func (s *Server) handleRespoke(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceSpok, err)
		return
	}

	var req respokeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceSpok, err)
		return
	}

	instance, err := s.Engine.Respoke(r.Context(), id, userID(r.Context()), spok.RespokeParams{
		GroupID:    req.GroupID,
		Visibility: req.Visibility,
		Text:       req.Text,
		Geo:        req.Geo,
	})
	if err != nil {
		respondError(w, resourceSpok, err)
		return
	}
	respond(w, resourceSpok, http.StatusCreated, instanceView(instance))
}

func (s *Server) handleUnspoke(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceSpok, err)
		return
	}

	if err := s.Engine.Unspoke(r.Context(), id, userID(r.Context())); err != nil {
		respondError(w, resourceSpok, err)
		return
	}
	respond(w, resourceSpok, http.StatusOK, map[string]bool{"unspoked": true})
}

func (s *Server) handleRemoveInstance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceSpok, err)
		return
	}

	if err := s.Engine.Remove(r.Context(), id, userID(r.Context())); err != nil {
		respondError(w, resourceSpok, err)
		return
	}
	respond(w, resourceSpok, http.StatusOK, map[string]bool{"removed": true})
}

func (s *Server) handleSubscribeSwitch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceSpok, err)
		return
	}

	subscribed, err := s.Engine.SubscribeSwitch(r.Context(), id, userID(r.Context()))
	if err != nil {
		respondError(w, resourceSpok, err)
		return
	}
	respond(w, resourceSpok, http.StatusOK, map[string]bool{"subscribed": subscribed})
}

func (s *Server) handleStack(w http.ResponseWriter, r *http.Request) {
	cursor, err := cursorBoundary(r)
	if err != nil {
		respondError(w, resourceStack, err)
		return
	}

	instances, err := s.Spoks.Stack(r.Context(), userID(r.Context()), cursor, pagination.PageSize)
	if err != nil {
		respondError(w, resourceStack, err)
		return
	}

	page := pagination.NewPage(instanceViews(instances), pagination.PageSize, cursor, func(v InstanceView) int64 {
		return v.ID
	})
	respond(w, resourceStack, http.StatusOK, page)
}

func (s *Server) handleWall(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceWall, err)
		return
	}

	cursor, err := cursorBoundary(r)
	if err != nil {
		respondError(w, resourceWall, err)
		return
	}

	instances, err := s.Spoks.Wall(r.Context(), id, cursor, pagination.PageSize)
	if err != nil {
		respondError(w, resourceWall, err)
		return
	}

	page := pagination.NewPage(instanceViews(instances), pagination.PageSize, cursor, func(v InstanceView) int64 {
		return v.ID
	})
	respond(w, resourceWall, http.StatusOK, page)
}

func (s *Server) handleRespokers(w http.ResponseWriter, r *http.Request) {
	s.instanceList(w, r, resourceSpok, s.Spoks.Respokers)
}

func (s *Server) handleScoped(w http.ResponseWriter, r *http.Request) {
	s.instanceList(w, r, resourceSpok, s.Spoks.Scoped)
}

func (s *Server) instanceList(
	w http.ResponseWriter,
	r *http.Request,
	resource string,
	list func(ctx context.Context, spokID int64, page core.Keyset, limit int) ([]core.SpokInstance, error),
) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resource, err)
		return
	}

	cursor, err := cursorBoundary(r)
	if err != nil {
		respondError(w, resource, err)
		return
	}

	instances, err := list(r.Context(), id, cursor, pagination.PageSize)
	if err != nil {
		respondError(w, resource, err)
		return
	}

	page := pagination.NewPage(instanceViews(instances), pagination.PageSize, cursor, func(v InstanceView) int64 {
		return v.ID
	})
	respond(w, resource, http.StatusOK, page)
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceComment, err)
		return
	}

	cursor, err := cursorBoundary(r)
	if err != nil {
		respondError(w, resourceComment, err)
		return
	}

	comments, err := s.Comments.BySpok(r.Context(), id, cursor, pagination.PageSize)
	if err != nil {
		respondError(w, resourceComment, err)
		return
	}

	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, commentView(&comments[i]))
	}

	page := pagination.NewPage(views, pagination.PageSize, cursor, func(v CommentView) int64 {
		return v.ID
	})
	respond(w, resourceComment, http.StatusOK, page)
}

type commentRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceComment, err)
		return
	}

	var req commentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceComment, err)
		return
	}

	comment, err := s.Engine.Comment(r.Context(), id, userID(r.Context()), req.Text)
	if err != nil {
		respondError(w, resourceComment, err)
		return
	}
	respond(w, resourceComment, http.StatusCreated, commentView(comment))
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceComment, err)
		return
	}

	var req commentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceComment, err)
		return
	}

	comment, err := s.Engine.UpdateComment(r.Context(), id, userID(r.Context()), req.Text)
	if err != nil {
		respondError(w, resourceComment, err)
		return
	}
	respond(w, resourceComment, http.StatusOK, commentView(comment))
}

func (s *Server) handleRemoveComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourceComment, err)
		return
	}

	if err := s.Engine.RemoveComment(r.Context(), id, userID(r.Context())); err != nil {
		respondError(w, resourceComment, err)
		return
	}
	respond(w, resourceComment, http.StatusOK, map[string]bool{"removed": true})
}

type pollQuestionView struct {
	ID      int64            `json:"id"`
	Text    string           `json:"text"`
	Rank    int              `json:"rank"`
	Answers []pollAnswerView `json:"answers"`
}

type pollAnswerView struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Rank int    `json:"rank"`
}

func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourcePoll, err)
		return
	}

	questions, err := s.Polls.Questions(r.Context(), id)
	if err != nil {
		respondError(w, resourcePoll, err)
		return
	}

	views := make([]pollQuestionView, 0, len(questions))
	for _, question := range questions {
		answers, err := s.Polls.Answers(r.Context(), question.ID)
		if err != nil {
			respondError(w, resourcePoll, err)
			return
		}

		view := pollQuestionView{ID: question.ID, Text: question.Text, Rank: question.Rank}
		for _, answer := range answers {
			view.Answers = append(view.Answers, pollAnswerView{ID: answer.ID, Text: answer.Text, Rank: answer.Rank})
		}
		views = append(views, view)
	}

	respond(w, resourcePoll, http.StatusOK, views)
}

type answerRequest struct {
	AnswerID int64 `json:"answer_id"`
}

func (s *Server) handleAnswerPoll(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, resourcePoll, err)
		return
	}

	var req answerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourcePoll, err)
		return
	}

	if err := s.Engine.AnswerPoll(r.Context(), id, req.AnswerID, userID(r.Context())); err != nil {
		respondError(w, resourcePoll, err)
		return
	}
	respond(w, resourcePoll, http.StatusOK, map[string]bool{"answered": true})
}
