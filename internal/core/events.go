package core

import "time"

type EventType string

const (
	EventSpokCreated    EventType = "spok.created"
	EventSpokRespoked   EventType = "spok.respoked"
	EventSpokUnspoked   EventType = "spok.unspoked"
	EventSpokDisabled   EventType = "spok.disabled"
	EventSpokRemoved    EventType = "spok.removed"
	EventCommentAdded   EventType = "comment.added"
	EventCommentUpdated EventType = "comment.updated"
	EventCommentRemoved EventType = "comment.removed"
	EventMessageAdded   EventType = "message.added"
	EventMessageRemoved EventType = "message.removed"
	EventFollowerAdded  EventType = "follower.added"
	EventFollowerGone   EventType = "follower.removed"
	EventFriendMade     EventType = "friend.made"
	EventFriendLost     EventType = "friend.lost"
	EventRegistration   EventType = "registration"
)

// Event is the internal record published to the fan-out stream after a
// domain operation is persisted. Fan-out is asynchronous: the originating
// request never waits for delivery.
type Event struct {
	ID   string    `json:"id"`
	Type EventType `json:"type"`
	At   time.Time `json:"at"`

	ActorID    int64 `json:"actor_id"`
	SpokID     int64 `json:"spok_id,omitempty"`
	InstanceID int64 `json:"instance_id,omitempty"`
	CommentID  int64 `json:"comment_id,omitempty"`

	// Extra recipients beyond the spok's feed subscribers: mentioned users,
	// follow/friend counterparties.
	TargetIDs []int64 `json:"target_ids,omitempty"`

	Text string `json:"text,omitempty"`
}

// DeliveryKind separates the two live-session audiences: "user" events go to
// a recipient's sessions, "spok" echoes go to sessions currently viewing the
// spok (the ephemeral presence registry, not the persistent subscription).
type DeliveryKind string

const (
	DeliverToUser DeliveryKind = "user"
	DeliverToSpok DeliveryKind = "spok"
)

// Delivery is the rendered payload pushed to live websocket sessions.
type Delivery struct {
	Kind DeliveryKind `json:"kind"`

	UserID int64 `json:"user_id,omitempty"`
	SpokID int64 `json:"spok_id,omitempty"`

	Event        Event         `json:"event"`
	Notification *Notification `json:"notification,omitempty"`
}
