// Package groups manages a user's publication groups. Members are either
// registered users or bare contact phones; phones bind to accounts lazily,
// at publication time they simply contribute nothing.
package groups

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/samber/lo"

	"spokd/internal/core"
)

const maxTitleLen = 120

type Service struct {
	Logger *slog.Logger

	Groups   core.GroupRepository
	Accounts core.AccountRepository
}

func (s *Service) Init(context.Context) error {
	s.Logger = s.Logger.With("component", "groups.Service")
	return nil
}

func (s *Service) Create(ctx context.Context, ownerID int64, title string) (*core.Group, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	group := &core.Group{OwnerID: ownerID, Title: title}
	if err := s.Groups.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Service) Rename(ctx context.Context, groupID, ownerID int64, title string) (*core.Group, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	group, err := s.owned(ctx, groupID, ownerID)
	if err != nil {
		return nil, err
	}

	group.Title = title
	if err := s.Groups.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Service) Delete(ctx context.Context, groupID, ownerID int64) error {
	if _, err := s.owned(ctx, groupID, ownerID); err != nil {
		return err
	}
	return s.Groups.Delete(ctx, groupID)
}

func (s *Service) ByOwner(ctx context.Context, ownerID int64) ([]core.Group, error) {
	return s.Groups.ByOwner(ctx, ownerID)
}

func (s *Service) Members(ctx context.Context, groupID, ownerID int64) ([]core.GroupMember, error) {
	if _, err := s.owned(ctx, groupID, ownerID); err != nil {
		return nil, err
	}
	return s.Groups.Members(ctx, groupID)
}

// AddMembers accepts user IDs and contact phones in one call. Phones that
// already belong to registered accounts are added as users instead.
func (s *Service) AddMembers(ctx context.Context, groupID, ownerID int64, userIDs []int64, phones []string) error {
	if _, err := s.owned(ctx, groupID, ownerID); err != nil {
		return err
	}

	for _, id := range userIDs {
		if _, err := s.Accounts.Get(ctx, id); err != nil {
			return err
		}
	}

	var contacts []core.GroupMember
	for _, phone := range phones {
		account, err := s.Accounts.GetByPhone(ctx, phone)
		switch {
		case err == nil:
			userIDs = append(userIDs, account.ID)
		case errors.Is(err, core.ErrAccountNotFound):
			contacts = append(contacts, core.GroupMember{ContactPhone: phone})
		default:
			return err
		}
	}

	members := lo.Map(lo.Uniq(userIDs), func(id int64, _ int) core.GroupMember {
		return core.GroupMember{UserID: id}
	})

	return s.Groups.AddMembers(ctx, groupID, append(members, contacts...))
}

func (s *Service) RemoveMembers(ctx context.Context, groupID, ownerID int64, userIDs []int64, phones []string) error {
	if _, err := s.owned(ctx, groupID, ownerID); err != nil {
		return err
	}
	return s.Groups.RemoveMembers(ctx, groupID, userIDs, phones)
}

func (s *Service) owned(ctx context.Context, groupID, ownerID int64) (*core.Group, error) {
	group, err := s.Groups.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != ownerID {
		return nil, core.ErrGroupNotFound
	}
	return group, nil
}

func validateTitle(title string) error {
	if title == "" {
		return core.ErrTitleTooShort
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return core.ErrTitleTooLong
	}
	return nil
}
