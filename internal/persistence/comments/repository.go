package comments

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

func (r *Repository) Get(ctx context.Context, id int64) (*core.Comment, error) {
	var comment core.Comment
	err := r.DB.WithContext(ctx).First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (r *Repository) Create(ctx context.Context, comment *core.Comment) error {
	return r.DB.WithContext(ctx).Create(comment).Error
}

func (r *Repository) Update(ctx context.Context, comment *core.Comment) error {
	return r.DB.WithContext(ctx).Save(comment).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	res := r.DB.WithContext(ctx).Delete(&core.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return core.ErrCommentNotFound
	}
	return nil
}

func (r *Repository) BySpok(ctx context.Context, spokID int64, page core.Keyset, limit int) ([]core.Comment, error) {
	q := r.DB.WithContext(ctx).Where("spok_id = ?", spokID)

	var comments []core.Comment
	err := persistence.Keyset(q, page, limit).Find(&comments).Error
	return persistence.Descending(page, comments), err
}

func (r *Repository) AuthorIDs(ctx context.Context, spokID int64) ([]int64, error) {
	var ids []int64
	err := r.DB.Model(&core.Comment{}).
		WithContext(ctx).
		Where("spok_id = ?", spokID).
		Distinct().
		Pluck("author_id", &ids).Error
	return ids, err
}
