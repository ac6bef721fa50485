// Package messaging is the two-party talk system. A talk exists per user
// pair; messages land in the store first and reach the peer's live sessions
// best effort.
package messaging

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"spokd/internal/core"
)

const maxMessageLen = 1200

type Service struct {
	Logger *slog.Logger

	Talks     core.TalkRepository
	Accounts  core.AccountRepository
	Deliverer core.DeliveryPublisher
}

func (s *Service) Init(context.Context) error {
	s.Logger = s.Logger.With("component", "messaging.Service")
	return nil
}

// Send stores the message in the pair's talk, creating the talk on first
// contact, and pushes it to the peer's and the sender's live sessions.
func (s *Service) Send(ctx context.Context, senderID, peerID int64, text string) (*core.Message, error) {
	if err := validateMessage(text); err != nil {
		return nil, err
	}
	if senderID == peerID {
		return nil, core.ErrNotAllowed
	}
	if _, err := s.Accounts.Get(ctx, peerID); err != nil {
		return nil, err
	}

	talk, err := s.Talks.GetOrCreate(ctx, senderID, peerID)
	if err != nil {
		return nil, err
	}

	message := &core.Message{TalkID: talk.ID, AuthorID: senderID, Text: text}
	if err := s.Talks.AddMessage(ctx, message); err != nil {
		return nil, err
	}

	event := core.Event{
		ID:      uuid.NewString(),
		Type:    core.EventMessageAdded,
		At:      time.Now(),
		ActorID: senderID,
		Text:    text,
	}
	s.deliver(ctx, senderID, event)
	s.deliver(ctx, peerID, event)

	return message, nil
}

// ListTalks pages through the user's conversations.
func (s *Service) ListTalks(ctx context.Context, userID int64, page core.Keyset, limit int) ([]core.Talk, error) {
	return s.Talks.ByUser(ctx, userID, page, limit)
}

// Messages pages through a talk the caller participates in.
func (s *Service) Messages(ctx context.Context, talkID, userID int64, page core.Keyset, limit int) ([]core.Message, error) {
	talk, err := s.participantTalk(ctx, talkID, userID)
	if err != nil {
		return nil, err
	}
	return s.Talks.Messages(ctx, talk.ID, page, limit)
}

// DeleteTalk removes the whole conversation for both parties.
func (s *Service) DeleteTalk(ctx context.Context, talkID, userID int64) error {
	if _, err := s.participantTalk(ctx, talkID, userID); err != nil {
		return err
	}
	return s.Talks.Delete(ctx, talkID)
}

// RemoveMessage hides a message; author only.
func (s *Service) RemoveMessage(ctx context.Context, messageID, userID int64) error {
	message, err := s.Talks.Message(ctx, messageID)
	if err != nil {
		return err
	}
	if message.AuthorID != userID {
		return core.ErrNotAllowed
	}

	if err := s.Talks.RemoveMessage(ctx, messageID); err != nil {
		return err
	}

	talk, err := s.Talks.Get(ctx, message.TalkID)
	if err != nil {
		return err
	}

	event := core.Event{
		ID:      uuid.NewString(),
		Type:    core.EventMessageRemoved,
		At:      time.Now(),
		ActorID: userID,
	}
	s.deliver(ctx, talk.PeerLow, event)
	s.deliver(ctx, talk.PeerHigh, event)

	return nil
}

func (s *Service) participantTalk(ctx context.Context, talkID, userID int64) (*core.Talk, error) {
	talk, err := s.Talks.Get(ctx, talkID)
	if err != nil {
		return nil, err
	}
	if !talk.Has(userID) {
		return nil, core.ErrTalkNotFound
	}
	return talk, nil
}

func (s *Service) deliver(ctx context.Context, userID int64, event core.Event) {
	err := s.Deliverer.Deliver(ctx, core.Delivery{
		Kind:   core.DeliverToUser,
		UserID: userID,
		Event:  event,
	})
	if err != nil {
		s.Logger.Error("message delivery failed", "user", userID, "error", err)
	}
}

func validateMessage(text string) error {
	if text == "" {
		return core.ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > maxMessageLen {
		return core.ErrTextTooLong
	}
	return nil
}
