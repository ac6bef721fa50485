package spok

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"spokd/internal/core"
)

// Engine owns the spok lifecycle: creation, instance propagation, respoke,
// unspoke, disable, removal and comments. Every successful mutation is
// persisted first; fan-out events are published after and never fail the
// request.
type Engine struct {
	Logger *slog.Logger

	Spoks    core.SpokRepository
	Comments core.CommentRepository
	Polls    core.PollRepository
	Subs     core.SubscriptionRepository
	Groups   core.GroupRepository
	Graph    core.GraphRepository

	Publisher core.EventPublisher
	Mentions  *MentionScanner
}

func (e *Engine) Init(context.Context) error {
	e.Logger = e.Logger.With("component", "spok.Engine")
	return nil
}

type CreateParams struct {
	Content      core.Content
	GroupID      int64
	Visibility   core.Visibility
	TTLSeconds   int64
	InstanceText string
	Geo          core.Geo
}

// Create validates the content union, persists the spok with its creator
// instance, spreads pending instances to the publication audience and
// subscribes the creator to the spok's feed.
func (e *Engine) Create(ctx context.Context, creatorID int64, params CreateParams) (*core.Spok, error) {
	if err := ValidateContent(params.Content); err != nil {
		return nil, err
	}
	if err := ValidateInstanceText(params.InstanceText); err != nil {
		return nil, err
	}

	audience, err := e.audience(ctx, creatorID, params.GroupID)
	if err != nil {
		return nil, err
	}

	raw, err := params.Content.Marshal()
	if err != nil {
		return nil, core.ErrCreateSpok
	}

	visibility := params.Visibility
	if visibility == "" {
		visibility = core.VisibilityPublic
	}

	now := time.Now()
	spok := &core.Spok{
		CreatorID:   creatorID,
		ContentType: params.Content.Type,
		Content:     raw,
		TTLSeconds:  params.TTLSeconds,
		LaunchedAt:  now,
	}
	first := &core.SpokInstance{
		SpokerID:   creatorID,
		GroupID:    params.GroupID,
		Visibility: visibility,
		Text:       params.InstanceText,
		State:      core.InstanceRespoked,
		RespokedAt: now,
		Geo:        params.Geo,
	}

	if err := e.Spoks.Create(ctx, spok, first); err != nil {
		return nil, core.ErrCreateSpok
	}

	if params.Content.Type == core.ContentPoll {
		if err := e.Polls.CreatePoll(ctx, spok.ID, params.Content.Poll); err != nil {
			return nil, core.ErrCreateSpok
		}
	}

	if err := e.Subs.Subscribe(ctx, creatorID, spok.ID); err != nil {
		return nil, err
	}

	e.propagate(ctx, spok.ID, creatorID, visibility, params.GroupID, audience)

	mentioned := e.scanMentions(ctx, creatorID, params.InstanceText)
	e.publish(ctx, core.Event{
		Type:       core.EventSpokCreated,
		ActorID:    creatorID,
		SpokID:     spok.ID,
		InstanceID: first.ID,
		TargetIDs:  mentioned,
		Text:       params.InstanceText,
	})

	return spok, nil
}

type RespokeParams struct {
	GroupID    int64
	Visibility core.Visibility
	Text       string
	Geo        core.Geo
}

// Respoke turns the actor's pending instance into a respoked one, or creates
// a fresh instance when the spok reached the actor out of band. Duplicate
// respokes by the same actor fail on the instance pair index.
func (e *Engine) Respoke(ctx context.Context, spokID, actorID int64, params RespokeParams) (*core.SpokInstance, error) {
	spok, err := e.Spoks.Get(ctx, spokID)
	if err != nil {
		return nil, err
	}
	if spok.Disabled || spok.Expired(time.Now()) {
		return nil, core.ErrSpokUnavailable
	}
	if err := ValidateInstanceText(params.Text); err != nil {
		return nil, err
	}

	if spok.ContentType == core.ContentPoll {
		if err := e.requireAllAnswered(ctx, spokID, actorID); err != nil {
			return nil, err
		}
	}

	audience, err := e.audience(ctx, actorID, params.GroupID)
	if err != nil {
		return nil, err
	}

	visibility := params.Visibility
	if visibility == "" {
		visibility = core.VisibilityPublic
	}

	instance, fresh, err := e.claimInstance(ctx, spok, actorID, visibility, params)
	if err != nil {
		return nil, err
	}

	deltas := core.CounterDeltas{
		Spoked:   1,
		Distance: distanceMeters(e.originGeo(ctx, spokID, instance.FromID), params.Geo),
	}
	if fresh {
		deltas.Scoped = 1
	}
	if err := e.Spoks.BumpCounters(ctx, spokID, deltas); err != nil {
		return nil, err
	}

	if err := e.Subs.Subscribe(ctx, actorID, spokID); err != nil {
		return nil, err
	}

	e.propagate(ctx, spokID, actorID, visibility, params.GroupID, audience)

	mentioned := e.scanMentions(ctx, actorID, params.Text)
	e.publish(ctx, core.Event{
		Type:       core.EventSpokRespoked,
		ActorID:    actorID,
		SpokID:     spokID,
		InstanceID: instance.ID,
		TargetIDs:  mentioned,
		Text:       params.Text,
	})

	return instance, nil
}

// Unspoke declines a pending instance. The instance history is kept; only
// its state changes. nb_scoped drops since the user left the spok's active
// set.
func (e *Engine) Unspoke(ctx context.Context, spokID, actorID int64) error {
	instance, err := e.Spoks.InstanceOf(ctx, spokID, actorID)
	if err != nil {
		return err
	}
	if instance.State != core.InstancePending {
		return core.ErrUnspoke
	}

	if err := e.Spoks.UpdateInstanceState(ctx, instance.ID, core.InstanceUnspoked); err != nil {
		return err
	}
	if err := e.Spoks.BumpCounters(ctx, spokID, core.CounterDeltas{Scoped: -1}); err != nil {
		return err
	}

	e.publish(ctx, core.Event{
		Type:       core.EventSpokUnspoked,
		ActorID:    actorID,
		SpokID:     spokID,
		InstanceID: instance.ID,
	})
	return nil
}

// Disable suppresses the spok and all its instances without deleting
// history. Owner only; the admin path reuses the same call.
func (e *Engine) Disable(ctx context.Context, spokID, actorID int64) error {
	spok, err := e.Spoks.Get(ctx, spokID)
	if err != nil {
		return err
	}
	if spok.CreatorID != actorID {
		return core.ErrNotAllowed
	}

	if err := e.Spoks.SetDisabled(ctx, spokID, true); err != nil {
		return err
	}
	if err := e.Spoks.DisableInstances(ctx, spokID); err != nil {
		return err
	}

	e.publish(ctx, core.Event{
		Type:    core.EventSpokDisabled,
		ActorID: actorID,
		SpokID:  spokID,
	})
	return nil
}

// Remove takes an instance off its owner's wall. Counted instances leave
// nb_scoped.
func (e *Engine) Remove(ctx context.Context, instanceID, actorID int64) error {
	instance, err := e.Spoks.Instance(ctx, instanceID)
	if err != nil {
		return err
	}
	if instance.SpokerID != actorID {
		return core.ErrNotAllowed
	}
	if instance.State == core.InstanceRemoved {
		return nil
	}

	counted := instance.State == core.InstancePending || instance.State == core.InstanceRespoked

	if err := e.Spoks.UpdateInstanceState(ctx, instanceID, core.InstanceRemoved); err != nil {
		return err
	}
	if counted {
		if err := e.Spoks.BumpCounters(ctx, instance.SpokID, core.CounterDeltas{Scoped: -1}); err != nil {
			return err
		}
	}

	e.publish(ctx, core.Event{
		Type:       core.EventSpokRemoved,
		ActorID:    actorID,
		SpokID:     instance.SpokID,
		InstanceID: instanceID,
	})
	return nil
}

// Comment adds a comment, subscribes the author to the feed and bumps the
// comment counter.
func (e *Engine) Comment(ctx context.Context, spokID, authorID int64, text string) (*core.Comment, error) {
	if err := boundedText(text, minTextLen, maxTextLen); err != nil {
		return nil, err
	}

	spok, err := e.Spoks.Get(ctx, spokID)
	if err != nil {
		return nil, err
	}
	if spok.Disabled {
		return nil, core.ErrSpokUnavailable
	}

	comment := &core.Comment{SpokID: spokID, AuthorID: authorID, Text: text}
	if err := e.Comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	if err := e.Spoks.BumpCounters(ctx, spokID, core.CounterDeltas{Comments: 1}); err != nil {
		return nil, err
	}
	if err := e.Subs.Subscribe(ctx, authorID, spokID); err != nil {
		return nil, err
	}

	mentioned := e.scanMentions(ctx, authorID, text)
	e.publish(ctx, core.Event{
		Type:      core.EventCommentAdded,
		ActorID:   authorID,
		SpokID:    spokID,
		CommentID: comment.ID,
		TargetIDs: mentioned,
		Text:      text,
	})
	return comment, nil
}

// UpdateComment is author-only.
func (e *Engine) UpdateComment(ctx context.Context, commentID, actorID int64, text string) (*core.Comment, error) {
	if err := boundedText(text, minTextLen, maxTextLen); err != nil {
		return nil, err
	}

	comment, err := e.Comments.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actorID {
		return nil, core.ErrNotAllowed
	}

	comment.Text = text
	if err := e.Comments.Update(ctx, comment); err != nil {
		return nil, err
	}

	mentioned := e.scanMentions(ctx, actorID, text)
	e.publish(ctx, core.Event{
		Type:      core.EventCommentUpdated,
		ActorID:   actorID,
		SpokID:    comment.SpokID,
		CommentID: commentID,
		TargetIDs: mentioned,
		Text:      text,
	})
	return comment, nil
}

// RemoveComment is allowed to the comment's author and to the spok's
// original creator.
func (e *Engine) RemoveComment(ctx context.Context, commentID, actorID int64) error {
	comment, err := e.Comments.Get(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != actorID {
		spok, err := e.Spoks.Get(ctx, comment.SpokID)
		if err != nil {
			return err
		}
		if spok.CreatorID != actorID {
			return core.ErrNotAllowed
		}
	}

	if err := e.Comments.Delete(ctx, commentID); err != nil {
		return err
	}
	if err := e.Spoks.BumpCounters(ctx, comment.SpokID, core.CounterDeltas{Comments: -1}); err != nil {
		return err
	}

	e.publish(ctx, core.Event{
		Type:      core.EventCommentRemoved,
		ActorID:   actorID,
		SpokID:    comment.SpokID,
		CommentID: commentID,
	})
	return nil
}

// AnswerPoll records the actor's pick after checking the answer belongs to
// the question.
func (e *Engine) AnswerPoll(ctx context.Context, questionID, answerID, actorID int64) error {
	question, err := e.Polls.Question(ctx, questionID)
	if err != nil {
		return err
	}

	answers, err := e.Polls.Answers(ctx, questionID)
	if err != nil {
		return err
	}
	if !lo.ContainsBy(answers, func(a core.PollAnswer) bool { return a.ID == answerID }) {
		return core.ErrInvalidAnswer
	}

	return e.Polls.RecordAnswer(ctx, question.ID, answerID, actorID)
}

// SubscribeSwitch toggles feed membership and reports the resulting state.
func (e *Engine) SubscribeSwitch(ctx context.Context, spokID, userID int64) (bool, error) {
	if _, err := e.Spoks.Get(ctx, spokID); err != nil {
		return false, err
	}

	subscribed, err := e.Subs.IsSubscribed(ctx, userID, spokID)
	if err != nil {
		return false, err
	}

	if subscribed {
		return false, e.Subs.Unsubscribe(ctx, userID, spokID)
	}
	return true, e.Subs.Subscribe(ctx, userID, spokID)
}

func (e *Engine) requireAllAnswered(ctx context.Context, spokID, actorID int64) error {
	questions, err := e.Polls.Questions(ctx, spokID)
	if err != nil {
		return err
	}

	answered, err := e.Polls.AnsweredCount(ctx, spokID, actorID)
	if err != nil {
		return err
	}
	if answered < int64(len(questions)) {
		return core.ErrUnansweredQuestions
	}
	return nil
}

// claimInstance transitions the actor's pending instance, or inserts a new
// respoked one. Any other pre-existing instance means a duplicate respoke.
func (e *Engine) claimInstance(ctx context.Context, spok *core.Spok, actorID int64, visibility core.Visibility, params RespokeParams) (*core.SpokInstance, bool, error) {
	existing, err := e.Spoks.InstanceOf(ctx, spok.ID, actorID)
	switch {
	case err == nil:
		if existing.State != core.InstancePending {
			return nil, false, core.ErrAlreadyRespoked
		}

		claim := core.InstanceClaim{
			Text:       params.Text,
			Visibility: visibility,
			Geo:        params.Geo,
			RespokedAt: time.Now(),
		}
		if err := e.Spoks.ClaimInstance(ctx, existing.ID, claim); err != nil {
			return nil, false, err
		}
		existing.State = core.InstanceRespoked
		existing.Text = claim.Text
		existing.Visibility = claim.Visibility
		existing.Geo = claim.Geo
		existing.RespokedAt = claim.RespokedAt
		return existing, false, nil

	case errors.Is(err, core.ErrSpokNotFound):
		instance := &core.SpokInstance{
			SpokID:     spok.ID,
			SpokerID:   actorID,
			FromID:     spok.CreatorID,
			GroupID:    params.GroupID,
			Visibility: visibility,
			Text:       params.Text,
			State:      core.InstanceRespoked,
			RespokedAt: time.Now(),
			Geo:        params.Geo,
		}
		if err := e.Spoks.CreateInstance(ctx, instance); err != nil {
			return nil, false, err
		}
		return instance, true, nil

	default:
		return nil, false, err
	}
}

// propagate seeds pending instances for the actor's audience. Users already
// holding an instance are skipped by the pair index; each fresh pending
// instance extends the spok's scope.
func (e *Engine) propagate(ctx context.Context, spokID, fromID int64, visibility core.Visibility, groupID int64, audience []int64) {
	for _, userID := range audience {
		if userID == fromID {
			continue
		}

		instance := &core.SpokInstance{
			SpokID:     spokID,
			SpokerID:   userID,
			FromID:     fromID,
			GroupID:    groupID,
			Visibility: visibility,
			State:      core.InstancePending,
		}
		err := e.Spoks.CreateInstance(ctx, instance)
		if err != nil {
			if errors.Is(err, core.ErrAlreadyRespoked) {
				continue
			}
			e.Logger.Error("propagation failed", "spok", spokID, "user", userID, "error", err)
			continue
		}

		if err := e.Spoks.BumpCounters(ctx, spokID, core.CounterDeltas{Scoped: 1}); err != nil {
			e.Logger.Error("scoped counter bump failed", "spok", spokID, "error", err)
		}
	}
}

// audience resolves the publication target: group 0 means the actor's
// followers, any other group must exist and belong to the actor.
func (e *Engine) audience(ctx context.Context, actorID, groupID int64) ([]int64, error) {
	if groupID == 0 {
		return e.Graph.FollowerIDs(ctx, actorID)
	}

	group, err := e.Groups.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != actorID {
		return nil, core.ErrGroupNotFound
	}
	return e.Groups.MemberUserIDs(ctx, groupID)
}

func (e *Engine) scanMentions(ctx context.Context, authorID int64, text string) []int64 {
	if text == "" {
		return nil
	}

	ids, err := e.Mentions.Scan(ctx, authorID, text)
	if err != nil {
		e.Logger.Error("mention scan failed", "error", err)
		return nil
	}
	return ids
}

func (e *Engine) publish(ctx context.Context, event core.Event) {
	event.ID = uuid.NewString()
	event.At = time.Now()

	if err := e.Publisher.Publish(ctx, event); err != nil {
		e.Logger.Error("event publish failed", "type", event.Type, "spok", event.SpokID, "error", err)
	}
}

// originGeo looks up where the spok travelled from. A missing origin
// instance, the creator included, just yields a zero location.
func (e *Engine) originGeo(ctx context.Context, spokID, fromID int64) core.Geo {
	if fromID == 0 {
		return core.Geo{}
	}

	origin, err := e.Spoks.InstanceOf(ctx, spokID, fromID)
	if err != nil {
		return core.Geo{}
	}
	return origin.Geo
}

const earthRadiusMeters = 6371000

// distanceMeters is the haversine distance between two instance locations,
// feeding the spok's travelling-distance counter. Zero coordinates on either
// side contribute nothing.
func distanceMeters(a, b core.Geo) float64 {
	if (a.Latitude == 0 && a.Longitude == 0) || (b.Latitude == 0 && b.Longitude == 0) {
		return 0
	}

	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
