package notifications

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"spokd/internal/core"
	"spokd/internal/persistence"
)

type Repository struct {
	DB *persistence.DB
}

func (r *Repository) Get(ctx context.Context, id int64) (*core.Notification, error) {
	var notification core.Notification
	err := r.DB.WithContext(ctx).
		Where("removed = false").
		First(&notification, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *Repository) Create(ctx context.Context, notifications []core.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&notifications).Error
}

func (r *Repository) ByRecipient(ctx context.Context, recipientID int64, page core.Keyset, limit int) ([]core.Notification, error) {
	q := r.DB.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Where("removed = false")

	var notifications []core.Notification
	err := persistence.Keyset(q, page, limit).Find(&notifications).Error
	return persistence.Descending(page, notifications), err
}

func (r *Repository) MarkRead(ctx context.Context, recipientID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.Model(&core.Notification{}).
		WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Where("id IN ?", ids).
		Update("read", true).Error
}

// Remove flips the removed flag, the row stays for audit.
func (r *Repository) Remove(ctx context.Context, id int64) error {
	res := r.DB.Model(&core.Notification{}).
		WithContext(ctx).
		Where("id = ?", id).
		Where("removed = false").
		Update("removed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return core.ErrNotificationNotFound
	}
	return nil
}
