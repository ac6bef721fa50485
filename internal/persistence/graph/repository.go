package graph

import (
	"context"

	"gorm.io/gorm/clause"

	"spokd/internal/core"
	"spokd/internal/persistence"
)

type Repository struct {
	DB *persistence.DB
}

// Follow inserts the edge, reporting whether it was new. Re-following is a
// no-op thanks to the pair index, which also keeps idempotency under
// concurrent calls.
func (r *Repository) Follow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	edge := core.FollowEdge{FollowerID: followerID, FolloweeID: followeeID}
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) Unfollow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&core.FollowEdge{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) Follows(ctx context.Context, followerID, followeeID int64) (bool, error) {
	var count int64
	err := r.DB.Model(&core.FollowEdge{}).
		WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) Followers(ctx context.Context, userID int64, page core.Keyset, limit int) ([]core.FollowEdge, error) {
	q := r.DB.WithContext(ctx).Where("followee_id = ?", userID)

	var edges []core.FollowEdge
	err := persistence.Keyset(q, page, limit).Find(&edges).Error
	return persistence.Descending(page, edges), err
}

func (r *Repository) Followings(ctx context.Context, userID int64, page core.Keyset, limit int) ([]core.FollowEdge, error) {
	q := r.DB.WithContext(ctx).Where("follower_id = ?", userID)

	var edges []core.FollowEdge
	err := persistence.Keyset(q, page, limit).Find(&edges).Error
	return persistence.Descending(page, edges), err
}

func (r *Repository) FollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.DB.Model(&core.FollowEdge{}).
		WithContext(ctx).
		Where("followee_id = ?", userID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *Repository) FollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.DB.Model(&core.FollowEdge{}).
		WithContext(ctx).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error
	return ids, err
}
