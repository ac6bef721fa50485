package groups

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

func (r *Repository) Get(ctx context.Context, id int64) (*core.Group, error) {
	var group core.Group
	err := r.DB.WithContext(ctx).First(&group, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (r *Repository) Create(ctx context.Context, group *core.Group) error {
	return r.DB.WithContext(ctx).Create(group).Error
}

func (r *Repository) Update(ctx context.Context, group *core.Group) error {
	return r.DB.WithContext(ctx).Save(group).Error
}

// Delete removes the group and its membership rows together.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.DB.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&core.GroupMember{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&core.Group{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return core.ErrGroupNotFound
		}
		return nil
	})
}

func (r *Repository) ByOwner(ctx context.Context, ownerID int64) ([]core.Group, error) {
	var groups []core.Group
	err := r.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id asc").
		Find(&groups).Error
	return groups, err
}

func (r *Repository) AddMembers(ctx context.Context, groupID int64, members []core.GroupMember) error {
	if len(members) == 0 {
		return nil
	}
	for i := range members {
		members[i].GroupID = groupID
	}
	return r.DB.WithContext(ctx).Create(&members).Error
}

func (r *Repository) RemoveMembers(ctx context.Context, groupID int64, userIDs []int64, phones []string) error {
	q := r.DB.WithContext(ctx).Where("group_id = ?", groupID)

	switch {
	case len(userIDs) > 0 && len(phones) > 0:
		q = q.Where("user_id IN ? OR contact_phone IN ?", userIDs, phones)
	case len(userIDs) > 0:
		q = q.Where("user_id IN ?", userIDs)
	case len(phones) > 0:
		q = q.Where("contact_phone IN ?", phones)
	default:
		return nil
	}

	return q.Delete(&core.GroupMember{}).Error
}

func (r *Repository) Members(ctx context.Context, groupID int64) ([]core.GroupMember, error) {
	var members []core.GroupMember
	err := r.DB.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("id asc").
		Find(&members).Error
	return members, err
}

func (r *Repository) MemberUserIDs(ctx context.Context, groupID int64) ([]int64, error) {
	var ids []int64
	err := r.DB.Model(&core.GroupMember{}).
		WithContext(ctx).
		Where("group_id = ?", groupID).
		Where("user_id > 0").
		Pluck("user_id", &ids).Error
	return ids, err
}
