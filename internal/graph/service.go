// Package graph owns the follow relationships and the friend relation
// derived from them: two users are friends exactly while they follow each
// other.
package graph

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"spokd/internal/core"
)

type Service struct {
	Logger *slog.Logger

	Accounts  core.AccountRepository
	Graph     core.GraphRepository
	Publisher core.EventPublisher
}

func (s *Service) Init(context.Context) error {
	s.Logger = s.Logger.With("component", "graph.Service")
	return nil
}

// Follow creates the edge if it does not exist yet. The first creation emits
// a follower event, and a friend event when the edge closes a mutual pair.
// Re-following is a no-op, so events fire at most once per edge lifetime.
func (s *Service) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return core.ErrNotAllowed
	}
	if _, err := s.Accounts.Get(ctx, followeeID); err != nil {
		return err
	}

	created, err := s.Graph.Follow(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	s.publish(ctx, core.Event{
		Type:      core.EventFollowerAdded,
		ActorID:   followerID,
		TargetIDs: []int64{followeeID},
	})

	mutual, err := s.Graph.Follows(ctx, followeeID, followerID)
	if err != nil {
		return err
	}
	if mutual {
		s.publish(ctx, core.Event{
			Type:      core.EventFriendMade,
			ActorID:   followerID,
			TargetIDs: []int64{followerID, followeeID},
		})
	}

	return nil
}

// Unfollow removes the edge; breaking a mutual pair also ends the
// friendship.
func (s *Service) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	mutual, err := s.Graph.Follows(ctx, followeeID, followerID)
	if err != nil {
		return err
	}

	removed, err := s.Graph.Unfollow(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}

	s.publish(ctx, core.Event{
		Type:      core.EventFollowerGone,
		ActorID:   followerID,
		TargetIDs: []int64{followeeID},
	})

	if mutual {
		s.publish(ctx, core.Event{
			Type:      core.EventFriendLost,
			ActorID:   followerID,
			TargetIDs: []int64{followerID, followeeID},
		})
	}

	return nil
}

// Followers lists who follows userID, honoring the profile's privacy flag:
// a private follower list is visible to its owner only.
func (s *Service) Followers(ctx context.Context, viewerID, userID int64, page core.Keyset, limit int) ([]core.Account, error) {
	account, err := s.Accounts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account.FollowersPrivate && viewerID != userID {
		return nil, core.ErrFollowersPrivate
	}

	edges, err := s.Graph.Followers(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, lo.Map(edges, func(e core.FollowEdge, _ int) int64 {
		return e.FollowerID
	}))
}

// Followings lists who userID follows, same privacy rule.
func (s *Service) Followings(ctx context.Context, viewerID, userID int64, page core.Keyset, limit int) ([]core.Account, error) {
	account, err := s.Accounts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account.FollowingsPrivate && viewerID != userID {
		return nil, core.ErrFollowingsPrivate
	}

	edges, err := s.Graph.Followings(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, lo.Map(edges, func(e core.FollowEdge, _ int) int64 {
		return e.FolloweeID
	}))
}

// FriendIDs are the mutual follows of userID.
func (s *Service) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	followers, err := s.Graph.FollowerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	followings, err := s.Graph.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	return lo.Intersect(followers, followings), nil
}

func (s *Service) resolve(ctx context.Context, ids []int64) ([]core.Account, error) {
	accounts := make([]core.Account, 0, len(ids))
	for _, id := range ids {
		account, err := s.Accounts.Get(ctx, id)
		if err != nil {
			continue
		}
		accounts = append(accounts, *account)
	}
	return accounts, nil
}

func (s *Service) publish(ctx context.Context, event core.Event) {
	event.ID = uuid.NewString()
	event.At = time.Now()

	if err := s.Publisher.Publish(ctx, event); err != nil {
		s.Logger.Error("event publish failed", "type", event.Type, "error", err)
	}
}
