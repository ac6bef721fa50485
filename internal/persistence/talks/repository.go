package talks

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spokd/internal/core"
	"spokd/internal/persistence"
)

type Repository struct {
	DB *persistence.DB
}

func (r *Repository) Get(ctx context.Context, id int64) (*core.Talk, error) {
	var talk core.Talk
	err := r.DB.WithContext(ctx).First(&talk, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrTalkNotFound
		}
		return nil, err
	}
	return &talk, nil
}

// GetOrCreate returns the single talk for the pair, creating it on first
// contact. The pair is stored ordered so (a,b) and (b,a) hit the same row.
func (r *Repository) GetOrCreate(ctx context.Context, a, b int64) (*core.Talk, error) {
	low, high := a, b
	if low > high {
		low, high = high, low
	}

	talk := core.Talk{PeerLow: low, PeerHigh: high, LastMessageAt: time.Now()}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&talk).Error
	if err != nil {
		return nil, err
	}

	if talk.ID == 0 {
		err = r.DB.WithContext(ctx).
			Where("peer_low = ? AND peer_high = ?", low, high).
			First(&talk).Error
		if err != nil {
			return nil, err
		}
	}
	return &talk, nil
}

func (r *Repository) ByUser(ctx context.Context, userID int64, page core.Keyset, limit int) ([]core.Talk, error) {
	q := r.DB.WithContext(ctx).
		Where("peer_low = ? OR peer_high = ?", userID, userID)

	var talks []core.Talk
	err := persistence.Keyset(q, page, limit).Find(&talks).Error
	return persistence.Descending(page, talks), err
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.DB.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("talk_id = ?", id).Delete(&core.Message{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&core.Talk{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return core.ErrTalkNotFound
		}
		return nil
	})
}

func (r *Repository) Message(ctx context.Context, id int64) (*core.Message, error) {
	var message core.Message
	err := r.DB.WithContext(ctx).
		Where("removed = false").
		First(&message, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *Repository) AddMessage(ctx context.Context, message *core.Message) error {
	return r.DB.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		return tx.Model(&core.Talk{}).
			Where("id = ?", message.TalkID).
			Update("last_message_at", time.Now()).Error
	})
}

func (r *Repository) Messages(ctx context.Context, talkID int64, page core.Keyset, limit int) ([]core.Message, error) {
	q := r.DB.WithContext(ctx).
		Where("talk_id = ?", talkID).
		Where("removed = false")

	var messages []core.Message
	err := persistence.Keyset(q, page, limit).Find(&messages).Error
	return persistence.Descending(page, messages), err
}

func (r *Repository) RemoveMessage(ctx context.Context, id int64) error {
	res := r.DB.Model(&core.Message{}).
		WithContext(ctx).
		Where("id = ?", id).
		Where("removed = false").
		Update("removed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return core.ErrMessageNotFound
	}
	return nil
}
