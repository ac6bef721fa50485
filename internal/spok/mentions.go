package spok

import (
	"context"
	"errors"
	"regexp"

	"github.com/samber/lo"

	"spokd/internal/core"
)

// Mention convention: "@nickname", case-insensitive exact match. A token only
// resolves when the author and the mentioned user are connected by a follow
// edge in either direction; strangers cannot be pinged from arbitrary text.
var mentionPattern = regexp.MustCompile(`@([\p{L}\p{N}_]+)`)

type MentionScanner struct {
	Accounts core.AccountRepository
	Graph    core.GraphRepository
}

// Scan returns the ids of recognized mentioned users, deduplicated, the
// author excluded.
func (s *MentionScanner) Scan(ctx context.Context, authorID int64, text string) ([]int64, error) {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	nicknames := lo.Uniq(lo.Map(matches, func(m []string, _ int) string {
		return m[1]
	}))

	var ids []int64
	for _, nickname := range nicknames {
		account, err := s.Accounts.GetByNickname(ctx, nickname)
		if err != nil {
			if errors.Is(err, core.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		if account.ID == authorID {
			continue
		}

		related, err := s.related(ctx, authorID, account.ID)
		if err != nil {
			return nil, err
		}
		if related {
			ids = append(ids, account.ID)
		}
	}
	return lo.Uniq(ids), nil
}

func (s *MentionScanner) related(ctx context.Context, a, b int64) (bool, error) {
	follows, err := s.Graph.Follows(ctx, a, b)
	if err != nil || follows {
		return follows, err
	}
	return s.Graph.Follows(ctx, b, a)
}
