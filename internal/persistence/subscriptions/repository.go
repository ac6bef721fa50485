package subscriptions

import (
	"context"

	"gorm.io/gorm/clause"

	"spokd/internal/core"
	"spokd/internal/persistence"
)

type Repository struct {
	DB *persistence.DB
}

// Subscribe is idempotent on the (user, spok) pair.
func (r *Repository) Subscribe(ctx context.Context, userID, spokID int64) error {
	sub := core.FeedSubscription{UserID: userID, SpokID: spokID}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&sub).Error
}

func (r *Repository) Unsubscribe(ctx context.Context, userID, spokID int64) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND spok_id = ?", userID, spokID).
		Delete(&core.FeedSubscription{}).Error
}

func (r *Repository) IsSubscribed(ctx context.Context, userID, spokID int64) (bool, error) {
	var count int64
	err := r.DB.Model(&core.FeedSubscription{}).
		WithContext(ctx).
		Where("user_id = ? AND spok_id = ?", userID, spokID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) SubscriberIDs(ctx context.Context, spokID int64) ([]int64, error) {
	var ids []int64
	err := r.DB.Model(&core.FeedSubscription{}).
		WithContext(ctx).
		Where("spok_id = ?", spokID).
		Pluck("user_id", &ids).Error
	return ids, err
}
