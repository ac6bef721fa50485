package core

import (
	"time"

	"gorm.io/datatypes"
)

type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountDeleted   AccountStatus = "deleted"
)

// Account is a phone-number-keyed user record. Unregistering flips the
// status to deleted, the row is never removed.
type Account struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Phone    string `gorm:"uniqueIndex;not null"`
	Nickname string `gorm:"index"`
	Gender   string
	Birthday time.Time
	Location string
	Geo      Geo `gorm:"embedded;embeddedPrefix:geo_"`

	PictureURL string
	CoverURL   string

	Status AccountStatus `gorm:"default:'active'"`

	HelpEnabled       bool `gorm:"default:true"`
	FollowersPrivate  bool
	FollowingsPrivate bool
}

func (Account) TableName() string {
	return "accounts"
}

type Geo struct {
	Latitude  float64
	Longitude float64
	Elevation float64
}

type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityRestricted Visibility = "restricted"
)

// Spok is the original publication. Immutable after creation except for the
// counters, which only move through SpokRepository.BumpCounters.
type Spok struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	CreatorID   int64       `gorm:"index;not null"`
	ContentType ContentType `gorm:"not null"`
	Content     datatypes.JSON

	TTLSeconds int64
	LaunchedAt time.Time
	Disabled   bool

	NbSpoked   int64
	NbScoped   int64
	NbComments int64
	Distance   float64
}

func (Spok) TableName() string {
	return "spoks"
}

// Expired reports whether the spok's TTL has elapsed. A zero TTL means the
// spok never expires.
func (s *Spok) Expired(now time.Time) bool {
	if s.TTLSeconds == 0 {
		return false
	}
	return now.After(s.LaunchedAt.Add(time.Duration(s.TTLSeconds) * time.Second))
}

type InstanceState string

const (
	InstancePending  InstanceState = "pending"
	InstanceRespoked InstanceState = "respoked"
	InstanceUnspoked InstanceState = "unspoked"
	InstanceDisabled InstanceState = "disabled"
	InstanceRemoved  InstanceState = "removed"
)

// SpokInstance is one user's occurrence of a spok. The (spok, spoker) pair is
// unique, duplicate respokes fail on the index.
type SpokInstance struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	SpokID   int64 `gorm:"not null;index;uniqueIndex:idx_instances_spok_spoker"`
	SpokerID int64 `gorm:"not null;index;uniqueIndex:idx_instances_spok_spoker"`
	FromID   int64

	GroupID    int64
	Visibility Visibility `gorm:"default:'public'"`
	Text       string

	State      InstanceState `gorm:"default:'pending';index"`
	RespokedAt time.Time
	Geo        Geo `gorm:"embedded;embeddedPrefix:geo_"`
}

func (SpokInstance) TableName() string {
	return "spok_instances"
}

type Comment struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	SpokID   int64 `gorm:"index;not null"`
	AuthorID int64 `gorm:"not null"`
	Text     string
}

func (Comment) TableName() string {
	return "comments"
}

type PollQuestion struct {
	ID     int64 `gorm:"primaryKey"`
	SpokID int64 `gorm:"index;not null"`
	Rank   int   `gorm:"not null"`

	Text    string
	Type    string
	Preview string
}

func (PollQuestion) TableName() string {
	return "poll_questions"
}

type PollAnswer struct {
	ID         int64 `gorm:"primaryKey"`
	QuestionID int64 `gorm:"index;not null"`
	Rank       int   `gorm:"not null"`

	Text    string
	Type    string
	Preview string
}

func (PollAnswer) TableName() string {
	return "poll_answers"
}

// PollUserAnswer records one user's pick for one question. One row per
// (question, user) pair.
type PollUserAnswer struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time

	QuestionID int64 `gorm:"not null;uniqueIndex:idx_poll_user_answers"`
	UserID     int64 `gorm:"not null;uniqueIndex:idx_poll_user_answers"`
	AnswerID   int64 `gorm:"not null"`
}

func (PollUserAnswer) TableName() string {
	return "poll_user_answers"
}

// FollowEdge is a directed follow relation. The pair index keeps re-follows
// idempotent. Friendship is derived, never stored: it exists while both
// directions exist.
type FollowEdge struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time

	FollowerID int64 `gorm:"not null;index;uniqueIndex:idx_follow_pair"`
	FolloweeID int64 `gorm:"not null;index;uniqueIndex:idx_follow_pair"`
}

func (FollowEdge) TableName() string {
	return "follow_edges"
}

type Group struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	OwnerID int64 `gorm:"index;not null"`
	Title   string
}

func (Group) TableName() string {
	return "groups"
}

// GroupMember is either a registered user (UserID > 0) or a raw contact
// phone number not yet on the platform.
type GroupMember struct {
	ID      int64 `gorm:"primaryKey"`
	GroupID int64 `gorm:"index;not null"`

	UserID       int64
	ContactPhone string
}

func (GroupMember) TableName() string {
	return "group_members"
}

type NotificationType string

const (
	NotifRegistration NotificationType = "registration"
	NotifRespoked     NotificationType = "respoked"
	NotifComment      NotificationType = "comment"
	NotifMention      NotificationType = "mention"
	NotifFollower     NotificationType = "follower"
	NotifFriend       NotificationType = "friend"
)

type Notification struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time

	RecipientID int64            `gorm:"index;not null"`
	Type        NotificationType `gorm:"not null"`
	EmitterID   int64
	SpokID      int64
	RelatedID   int64

	Read    bool
	Removed bool
}

func (Notification) TableName() string {
	return "notifications"
}

// FeedSubscription opts a user into a spok's activity notifications.
type FeedSubscription struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID int64 `gorm:"not null;index;uniqueIndex:idx_subscriptions_pair"`
	SpokID int64 `gorm:"not null;index;uniqueIndex:idx_subscriptions_pair"`
}

func (FeedSubscription) TableName() string {
	return "feed_subscriptions"
}

// Talk is a two-party conversation. PeerLow/PeerHigh hold the ordered pair so
// one talk exists per pair regardless of who wrote first.
type Talk struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time

	PeerLow  int64 `gorm:"not null;index;uniqueIndex:idx_talks_pair"`
	PeerHigh int64 `gorm:"not null;uniqueIndex:idx_talks_pair"`

	LastMessageAt time.Time `gorm:"index"`
}

func (Talk) TableName() string {
	return "talks"
}

func (t *Talk) Has(userID int64) bool {
	return t.PeerLow == userID || t.PeerHigh == userID
}

type Message struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time

	TalkID   int64 `gorm:"index;not null"`
	AuthorID int64 `gorm:"not null"`
	Text     string

	Removed bool
}

func (Message) TableName() string {
	return "messages"
}
