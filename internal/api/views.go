package api

import (
	"time"

	"github.com/samber/lo"

	"spokd/internal/core"
)

// Wire views. Counters and content travel denormalized, clients never see
// raw rows.

type AccountView struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Gender   string `json:"gender,omitempty"`
	Location string `json:"location,omitempty"`

	PictureURL string `json:"picture_url,omitempty"`
	CoverURL   string `json:"cover_url,omitempty"`
}

func accountView(account *core.Account) AccountView {
	return AccountView{
		ID:         account.ID,
		Nickname:   account.Nickname,
		Gender:     account.Gender,
		Location:   account.Location,
		PictureURL: account.PictureURL,
		CoverURL:   account.CoverURL,
	}
}

type ProfileView struct {
	AccountView
	Phone    string    `json:"phone"`
	Birthday time.Time `json:"birthday,omitempty"`

	HelpEnabled       bool `json:"help_enabled"`
	FollowersPrivate  bool `json:"followers_private"`
	FollowingsPrivate bool `json:"followings_private"`
}

func profileView(account *core.Account) ProfileView {
	return ProfileView{
		AccountView:       accountView(account),
		Phone:             account.Phone,
		Birthday:          account.Birthday,
		HelpEnabled:       account.HelpEnabled,
		FollowersPrivate:  account.FollowersPrivate,
		FollowingsPrivate: account.FollowingsPrivate,
	}
}

type SpokView struct {
	ID          int64            `json:"id"`
	CreatorID   int64            `json:"creator_id"`
	ContentType core.ContentType `json:"content_type"`
	Content     *core.Content    `json:"content,omitempty"`
	LaunchedAt  time.Time        `json:"launched_at"`

	NbSpoked   int64   `json:"nb_spoked"`
	NbScoped   int64   `json:"nb_scoped"`
	NbComments int64   `json:"nb_comments"`
	Distance   float64 `json:"distance"`

	Available bool `json:"available"`
}

// spokView renders a spok; expired spoks surface as unavailable with their
// content withheld, the counters stay readable.
func spokView(spok *core.Spok, now time.Time) SpokView {
	view := SpokView{
		ID:          spok.ID,
		CreatorID:   spok.CreatorID,
		ContentType: spok.ContentType,
		LaunchedAt:  spok.LaunchedAt,
		NbSpoked:    spok.NbSpoked,
		NbScoped:    spok.NbScoped,
		NbComments:  spok.NbComments,
		Distance:    spok.Distance,
		Available:   !spok.Disabled && !spok.Expired(now),
	}

	if view.Available {
		if content, err := core.UnmarshalContent(spok.Content); err == nil {
			view.Content = &content
		}
	}
	return view
}

func spokViews(spoks []core.Spok) []SpokView {
	now := time.Now()
	return lo.Map(spoks, func(s core.Spok, _ int) SpokView {
		return spokView(&s, now)
	})
}

type InstanceView struct {
	ID       int64 `json:"id"`
	SpokID   int64 `json:"spok_id"`
	SpokerID int64 `json:"spoker_id"`
	FromID   int64 `json:"from_id,omitempty"`

	State      core.InstanceState `json:"state"`
	Visibility core.Visibility    `json:"visibility"`
	Text       string             `json:"text,omitempty"`
	RespokedAt time.Time          `json:"respoked_at,omitempty"`
}

func instanceView(instance *core.SpokInstance) InstanceView {
	return InstanceView{
		ID:         instance.ID,
		SpokID:     instance.SpokID,
		SpokerID:   instance.SpokerID,
		FromID:     instance.FromID,
		State:      instance.State,
		Visibility: instance.Visibility,
		Text:       instance.Text,
		RespokedAt: instance.RespokedAt,
	}
}

func instanceViews(instances []core.SpokInstance) []InstanceView {
	return lo.Map(instances, func(i core.SpokInstance, _ int) InstanceView {
		return instanceView(&i)
	})
}

type CommentView struct {
	ID        int64     `json:"id"`
	SpokID    int64     `json:"spok_id"`
	AuthorID  int64     `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func commentView(comment *core.Comment) CommentView {
	return CommentView{
		ID:        comment.ID,
		SpokID:    comment.SpokID,
		AuthorID:  comment.AuthorID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}
}

type NotificationView struct {
	ID        int64                 `json:"id"`
	Type      core.NotificationType `json:"type"`
	EmitterID int64                 `json:"emitter_id,omitempty"`
	SpokID    int64                 `json:"spok_id,omitempty"`
	RelatedID int64                 `json:"related_id,omitempty"`
	Read      bool                  `json:"read"`
	CreatedAt time.Time             `json:"created_at"`
}

func notificationViews(notifications []core.Notification) []NotificationView {
	return lo.Map(notifications, func(n core.Notification, _ int) NotificationView {
		return NotificationView{
			ID:        n.ID,
			Type:      n.Type,
			EmitterID: n.EmitterID,
			SpokID:    n.SpokID,
			RelatedID: n.RelatedID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
	})
}

type TalkView struct {
	ID            int64     `json:"id"`
	PeerID        int64     `json:"peer_id"`
	LastMessageAt time.Time `json:"last_message_at"`
}

func talkViews(talks []core.Talk, viewerID int64) []TalkView {
	return lo.Map(talks, func(t core.Talk, _ int) TalkView {
		peerID := t.PeerLow
		if peerID == viewerID {
			peerID = t.PeerHigh
		}
		return TalkView{ID: t.ID, PeerID: peerID, LastMessageAt: t.LastMessageAt}
	})
}

type MessageView struct {
	ID        int64     `json:"id"`
	TalkID    int64     `json:"talk_id"`
	AuthorID  int64     `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func messageView(message *core.Message) MessageView {
	return MessageView{
		ID:        message.ID,
		TalkID:    message.TalkID,
		AuthorID:  message.AuthorID,
		Text:      message.Text,
		CreatedAt: message.CreatedAt,
	}
}

func messageViews(messages []core.Message) []MessageView {
	return lo.Map(messages, func(m core.Message, _ int) MessageView {
		return messageView(&m)
	})
}

func accountViews(accounts []core.Account) []AccountView {
	return lo.Map(accounts, func(a core.Account, _ int) AccountView {
		return accountView(&a)
	})
}
