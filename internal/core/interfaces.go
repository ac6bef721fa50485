package core

import (
	"context"
	"time"
)

// Repositories. List methods take a Keyset boundary and always return rows
// id-descending, whichever direction the page was fetched in.

type AccountRepository interface {
	Get(ctx context.Context, id int64) (*Account, error)
	GetByPhone(ctx context.Context, phone string) (*Account, error)
	GetByNickname(ctx context.Context, nickname string) (*Account, error)
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
	IDsByPhones(ctx context.Context, phones []string) ([]int64, error)
	SearchNicknames(ctx context.Context, prefix string, limit int) ([]Account, error)
}

type CounterDeltas struct {
	Spoked   int64
	Scoped   int64
	Comments int64
	Distance float64
}

// Keyset is a strict listing boundary. The zero value starts at the newest
// row. Forward pages take id < BoundaryID descending; backward pages take
// id > BoundaryID ascending, flipped back to descending before returning.
type Keyset struct {
	BoundaryID int64
	Backward   bool
}

// InstanceClaim carries the per-instance fields a respoker sets when
// claiming a pending instance.
type InstanceClaim struct {
	Text       string
	Visibility Visibility
	Geo        Geo
	RespokedAt time.Time
}

type SpokRepository interface {
	Get(ctx context.Context, id int64) (*Spok, error)
	Create(ctx context.Context, spok *Spok, first *SpokInstance) error

	Instance(ctx context.Context, id int64) (*SpokInstance, error)
	InstanceOf(ctx context.Context, spokID, spokerID int64) (*SpokInstance, error)
	// CreateInstance returns ErrAlreadyRespoked when the (spok, spoker)
	// unique index rejects the row.
	CreateInstance(ctx context.Context, instance *SpokInstance) error
	// ClaimInstance transitions a pending instance to respoked and persists
	// the respoker's fields in the same write.
	ClaimInstance(ctx context.Context, id int64, claim InstanceClaim) error
	UpdateInstanceState(ctx context.Context, id int64, state InstanceState) error
	DisableInstances(ctx context.Context, spokID int64) error

	SetDisabled(ctx context.Context, spokID int64, disabled bool) error
	// BumpCounters applies the deltas atomically on the spok row.
	BumpCounters(ctx context.Context, spokID int64, d CounterDeltas) error

	Stack(ctx context.Context, userID int64, page Keyset, limit int) ([]SpokInstance, error)
	Wall(ctx context.Context, userID int64, page Keyset, limit int) ([]SpokInstance, error)
	Respokers(ctx context.Context, spokID int64, page Keyset, limit int) ([]SpokInstance, error)
	Scoped(ctx context.Context, spokID int64, page Keyset, limit int) ([]SpokInstance, error)
	Last(ctx context.Context, page Keyset, limit int) ([]Spok, error)
	Trendy(ctx context.Context, page Keyset, limit int) ([]Spok, error)
	Popular(ctx context.Context, page Keyset, limit int) ([]Spok, error)
	ByCreators(ctx context.Context, creatorIDs []int64, page Keyset, limit int) ([]Spok, error)
	SearchTexts(ctx context.Context, terms []string, since, until time.Time, page Keyset, limit int) ([]Spok, error)
}

type CommentRepository interface {
	Get(ctx context.Context, id int64) (*Comment, error)
	Create(ctx context.Context, comment *Comment) error
	Update(ctx context.Context, comment *Comment) error
	Delete(ctx context.Context, id int64) error
	BySpok(ctx context.Context, spokID int64, page Keyset, limit int) ([]Comment, error)
	AuthorIDs(ctx context.Context, spokID int64) ([]int64, error)
}

type PollRepository interface {
	CreatePoll(ctx context.Context, spokID int64, poll *PollContent) error
	Question(ctx context.Context, id int64) (*PollQuestion, error)
	Questions(ctx context.Context, spokID int64) ([]PollQuestion, error)
	Answers(ctx context.Context, questionID int64) ([]PollAnswer, error)
	// RecordAnswer upserts the user's pick for a question.
	RecordAnswer(ctx context.Context, questionID, answerID, userID int64) error
	AnsweredCount(ctx context.Context, spokID, userID int64) (int64, error)
}

type GraphRepository interface {
	Follow(ctx context.Context, followerID, followeeID int64) (created bool, err error)
	Unfollow(ctx context.Context, followerID, followeeID int64) (removed bool, err error)
	Follows(ctx context.Context, followerID, followeeID int64) (bool, error)
	Followers(ctx context.Context, userID int64, page Keyset, limit int) ([]FollowEdge, error)
	Followings(ctx context.Context, userID int64, page Keyset, limit int) ([]FollowEdge, error)
	FollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	FollowingIDs(ctx context.Context, userID int64) ([]int64, error)
}

type GroupRepository interface {
	Get(ctx context.Context, id int64) (*Group, error)
	Create(ctx context.Context, group *Group) error
	Update(ctx context.Context, group *Group) error
	Delete(ctx context.Context, id int64) error
	ByOwner(ctx context.Context, ownerID int64) ([]Group, error)
	AddMembers(ctx context.Context, groupID int64, members []GroupMember) error
	RemoveMembers(ctx context.Context, groupID int64, userIDs []int64, phones []string) error
	Members(ctx context.Context, groupID int64) ([]GroupMember, error)
	MemberUserIDs(ctx context.Context, groupID int64) ([]int64, error)
}

type NotificationRepository interface {
	Get(ctx context.Context, id int64) (*Notification, error)
	Create(ctx context.Context, notifications []Notification) error
	ByRecipient(ctx context.Context, recipientID int64, page Keyset, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, recipientID int64, ids []int64) error
	Remove(ctx context.Context, id int64) error
}

type SubscriptionRepository interface {
	Subscribe(ctx context.Context, userID, spokID int64) error
	Unsubscribe(ctx context.Context, userID, spokID int64) error
	IsSubscribed(ctx context.Context, userID, spokID int64) (bool, error)
	SubscriberIDs(ctx context.Context, spokID int64) ([]int64, error)
}

type TalkRepository interface {
	Get(ctx context.Context, id int64) (*Talk, error)
	GetOrCreate(ctx context.Context, a, b int64) (*Talk, error)
	ByUser(ctx context.Context, userID int64, page Keyset, limit int) ([]Talk, error)
	Delete(ctx context.Context, id int64) error

	Message(ctx context.Context, id int64) (*Message, error)
	AddMessage(ctx context.Context, message *Message) error
	Messages(ctx context.Context, talkID int64, page Keyset, limit int) ([]Message, error)
	RemoveMessage(ctx context.Context, id int64) error
}

// EventPublisher hands a persisted domain event to the fan-out stream.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// DeliveryPublisher pushes rendered deliveries toward live sessions.
type DeliveryPublisher interface {
	Deliver(ctx context.Context, delivery Delivery) error
}

// Presence is the ephemeral session <-> spok viewer index.
type Presence interface {
	Watch(sessionID string, spokID int64)
	Leave(sessionID string, spokID int64)
	Drop(sessionID string)
	Watchers(spokID int64) []string
}

// CodeStore keeps short-lived confirmation codes (phone registration and
// phone-change flows).
type CodeStore interface {
	Put(ctx context.Context, phone, code string) error
	Get(ctx context.Context, phone string) (string, error)
	Delete(ctx context.Context, phone string) error
}

// SMSGateway is the external SMS collaborator.
type SMSGateway interface {
	SendCode(ctx context.Context, phone, code string) error
}
