// Package search serves the discovery surfaces: popular, trendy and latest
// spoks, friends' activity, criteria search over spok texts and nickname
// autocompletion.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"spokd/internal/core"
)

const autocompleteLimit = 10

type Service struct {
	Logger *slog.Logger

	Spoks    core.SpokRepository
	Accounts core.AccountRepository
	Graph    core.GraphRepository

	mu      sync.Mutex
	pending map[string]*pendingQuery
}

type pendingQuery struct {
	cancel context.CancelFunc
}

func (s *Service) Init(context.Context) error {
	s.Logger = s.Logger.With("component", "search.Service")
	s.pending = map[string]*pendingQuery{}
	return nil
}

func (s *Service) Last(ctx context.Context, page core.Keyset, limit int) ([]core.Spok, error) {
	return s.Spoks.Last(ctx, page, limit)
}

func (s *Service) Trendy(ctx context.Context, page core.Keyset, limit int) ([]core.Spok, error) {
	return s.Spoks.Trendy(ctx, page, limit)
}

func (s *Service) Popular(ctx context.Context, page core.Keyset, limit int) ([]core.Spok, error) {
	return s.Spoks.Popular(ctx, page, limit)
}

// Friends lists the spoks created by the caller's mutual follows.
func (s *Service) Friends(ctx context.Context, userID int64, page core.Keyset, limit int) ([]core.Spok, error) {
	followers, err := s.Graph.FollowerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	followings, err := s.Graph.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	mutual := map[int64]struct{}{}
	for _, id := range followers {
		mutual[id] = struct{}{}
	}

	var friendIDs []int64
	for _, id := range followings {
		if _, ok := mutual[id]; ok {
			friendIDs = append(friendIDs, id)
		}
	}
	if len(friendIDs) == 0 {
		return nil, nil
	}

	return s.Spoks.ByCreators(ctx, friendIDs, page, limit)
}

type Criteria struct {
	Terms []string
	Since time.Time
	Until time.Time
}

// ByCriteria searches spok texts for all given terms within the time range.
func (s *Service) ByCriteria(ctx context.Context, criteria Criteria, page core.Keyset, limit int) ([]core.Spok, error) {
	terms := make([]string, 0, len(criteria.Terms))
	for _, term := range criteria.Terms {
		term = strings.TrimSpace(term)
		if term != "" {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return nil, core.ErrInvalidHashtag
	}

	return s.Spoks.SearchTexts(ctx, terms, criteria.Since, criteria.Until, page, limit)
}

// Autocomplete matches nicknames by prefix. Requests are keyed by session:
// a newer request for the same key cancels the one in flight, so a slow
// early query can never overwrite fresher results on the client.
func (s *Service) Autocomplete(ctx context.Context, key, prefix string) ([]core.Account, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	query := &pendingQuery{cancel: cancel}

	s.mu.Lock()
	if prev, ok := s.pending[key]; ok {
		prev.cancel()
	}
	s.pending[key] = query
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.pending[key] == query {
			delete(s.pending, key)
		}
		s.mu.Unlock()
		cancel()
	}()

	return s.Accounts.SearchNicknames(ctx, prefix, autocompleteLimit)
}
