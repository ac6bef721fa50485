package accounts

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

func (r *Repository) Get(ctx context.Context, id int64) (*core.Account, error) {
	var account core.Account
	err := r.DB.WithContext(ctx).First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *Repository) GetByPhone(ctx context.Context, phone string) (*core.Account, error) {
	var account core.Account
	err := r.DB.WithContext(ctx).Where("phone = ?", phone).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *Repository) GetByNickname(ctx context.Context, nickname string) (*core.Account, error) {
	var account core.Account
	err := r.DB.WithContext(ctx).
		Where("lower(nickname) = lower(?)", nickname).
		Where("status = ?", core.AccountActive).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *Repository) Create(ctx context.Context, account *core.Account) error {
	return r.DB.WithContext(ctx).Create(account).Error
}

func (r *Repository) Update(ctx context.Context, account *core.Account) error {
	return r.DB.WithContext(ctx).Save(account).Error
}

func (r *Repository) IDsByPhones(ctx context.Context, phones []string) ([]int64, error) {
	if len(phones) == 0 {
		return nil, nil
	}

	var ids []int64
	err := r.DB.Model(&core.Account{}).
		WithContext(ctx).
		Where("phone IN ?", phones).
		Where("status = ?", core.AccountActive).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *Repository) SearchNicknames(ctx context.Context, prefix string, limit int) ([]core.Account, error) {
	var accounts []core.Account
	err := r.DB.WithContext(ctx).
		Where("nickname ILIKE ?", prefix+"%").
		Where("status = ?", core.AccountActive).
		Order("nickname asc").
		Limit(limit).
		Find(&accounts).Error
	return accounts, err
}
