package spoks

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"spokd/internal/core"
	"spokd/internal/persistence"
)

const uniqueViolation = "23505"

type Repository struct {
	DB *persistence.DB
}

func (r *Repository) Get(ctx context.Context, id int64) (*core.Spok, error) {
	var spok core.Spok
	err := r.DB.WithContext(ctx).First(&spok, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrSpokNotFound
		}
		return nil, err
	}
	return &spok, nil
}

// Create persists the spok and its creator instance in one transaction so a
// spok can never exist without its first instance.
func (r *Repository) Create(ctx context.Context, spok *core.Spok, first *core.SpokInstance) error {
	return r.DB.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(spok).Error; err != nil {
			return err
		}

		first.SpokID = spok.ID
		return tx.Create(first).Error
	})
}

func (r *Repository) Instance(ctx context.Context, id int64) (*core.SpokInstance, error) {
	var instance core.SpokInstance
	err := r.DB.WithContext(ctx).First(&instance, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrSpokNotFound
		}
		return nil, err
	}
	return &instance, nil
}

func (r *Repository) InstanceOf(ctx context.Context, spokID, spokerID int64) (*core.SpokInstance, error) {
	var instance core.SpokInstance
	err := r.DB.WithContext(ctx).
		Where("spok_id = ? AND spoker_id = ?", spokID, spokerID).
		First(&instance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrSpokNotFound
		}
		return nil, err
	}
	return &instance, nil
}

// CreateInstance relies on the (spok_id, spoker_id) unique index for
// duplicate-respoke detection: the check and the insert are one statement,
// concurrent respokes by the same actor cannot both pass.
func (r *Repository) CreateInstance(ctx context.Context, instance *core.SpokInstance) error {
	err := r.DB.WithContext(ctx).Create(instance).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return core.ErrAlreadyRespoked
		}
		return err
	}
	return nil
}

// ClaimInstance guards on the pending state so of two concurrent claims only
// one updates the row; the loser sees zero rows affected.
func (r *Repository) ClaimInstance(ctx context.Context, id int64, claim core.InstanceClaim) error {
	res := r.DB.Model(&core.SpokInstance{}).
		WithContext(ctx).
		Where("id = ?", id).
		Where("state = ?", core.InstancePending).
		Updates(map[string]any{
			"state":         core.InstanceRespoked,
			"text":          claim.Text,
			"visibility":    claim.Visibility,
			"geo_latitude":  claim.Geo.Latitude,
			"geo_longitude": claim.Geo.Longitude,
			"geo_elevation": claim.Geo.Elevation,
			"respoked_at":   claim.RespokedAt,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return core.ErrAlreadyRespoked
	}
	return nil
}

func (r *Repository) UpdateInstanceState(ctx context.Context, id int64, state core.InstanceState) error {
	res := r.DB.Model(&core.SpokInstance{}).
		WithContext(ctx).
		Where("id = ?", id).
		Updates(map[string]any{"state": state, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return core.ErrSpokNotFound
	}
	return nil
}

func (r *Repository) DisableInstances(ctx context.Context, spokID int64) error {
	return r.DB.Model(&core.SpokInstance{}).
		WithContext(ctx).
		Where("spok_id = ?", spokID).
		Where("state IN ?", []core.InstanceState{core.InstancePending, core.InstanceRespoked}).
		Update("state", core.InstanceDisabled).Error
}

func (r *Repository) SetDisabled(ctx context.Context, spokID int64, disabled bool) error {
	res := r.DB.Model(&core.Spok{}).
		WithContext(ctx).
		Where("id = ?", spokID).
		Update("disabled", disabled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return core.ErrSpokNotFound
	}
	return nil
}

// BumpCounters applies the deltas in a single UPDATE so concurrent respokes
// on the same spok cannot lose increments.
func (r *Repository) BumpCounters(ctx context.Context, spokID int64, d core.CounterDeltas) error {
	updates := map[string]any{}
	if d.Spoked != 0 {
		updates["nb_spoked"] = gorm.Expr("nb_spoked + ?", d.Spoked)
	}
	if d.Scoped != 0 {
		updates["nb_scoped"] = gorm.Expr("nb_scoped + ?", d.Scoped)
	}
	if d.Comments != 0 {
		updates["nb_comments"] = gorm.Expr("nb_comments + ?", d.Comments)
	}
	if d.Distance != 0 {
		updates["distance"] = gorm.Expr("distance + ?", d.Distance)
	}
	if len(updates) == 0 {
		return nil
	}

	return r.DB.Model(&core.Spok{}).
		WithContext(ctx).
		Where("id = ?", spokID).
		Updates(updates).Error
}

func (r *Repository) Stack(ctx context.Context, userID int64, page core.Keyset, limit int) ([]core.SpokInstance, error) {
	q := r.DB.WithContext(ctx).
		Where("spoker_id = ?", userID).
		Where("state = ?", core.InstancePending)
	return listInstances(q, page, limit)
}

func (r *Repository) Wall(ctx context.Context, userID int64, page core.Keyset, limit int) ([]core.SpokInstance, error) {
	q := r.DB.WithContext(ctx).
		Where("spoker_id = ?", userID).
		Where("state = ?", core.InstanceRespoked)
	return listInstances(q, page, limit)
}

func (r *Repository) Respokers(ctx context.Context, spokID int64, page core.Keyset, limit int) ([]core.SpokInstance, error) {
	q := r.DB.WithContext(ctx).
		Where("spok_id = ?", spokID).
		Where("state = ?", core.InstanceRespoked)
	return listInstances(q, page, limit)
}

// Scoped returns every instance still related to the spok: pending,
// respoked or unspoked, removed ones excluded.
func (r *Repository) Scoped(ctx context.Context, spokID int64, page core.Keyset, limit int) ([]core.SpokInstance, error) {
	q := r.DB.WithContext(ctx).
		Where("spok_id = ?", spokID).
		Where("state IN ?", []core.InstanceState{core.InstancePending, core.InstanceRespoked, core.InstanceUnspoked})
	return listInstances(q, page, limit)
}

func (r *Repository) Last(ctx context.Context, page core.Keyset, limit int) ([]core.Spok, error) {
	return listSpoks(r.visible(ctx), page, limit)
}

// Trendy and Popular keep the id-descending keyset ordering so their cursors
// stay stable; the ranking signal is the filter, not the sort.
func (r *Repository) Trendy(ctx context.Context, page core.Keyset, limit int) ([]core.Spok, error) {
	return listSpoks(r.visible(ctx).Where("nb_comments > 0"), page, limit)
}

func (r *Repository) Popular(ctx context.Context, page core.Keyset, limit int) ([]core.Spok, error) {
	return listSpoks(r.visible(ctx).Where("nb_spoked > 0"), page, limit)
}

func (r *Repository) ByCreators(ctx context.Context, creatorIDs []int64, page core.Keyset, limit int) ([]core.Spok, error) {
	if len(creatorIDs) == 0 {
		return nil, nil
	}
	return listSpoks(r.visible(ctx).Where("creator_id IN ?", creatorIDs), page, limit)
}

func (r *Repository) SearchTexts(ctx context.Context, terms []string, since, until time.Time, page core.Keyset, limit int) ([]core.Spok, error) {
	q := r.visible(ctx)
	for _, term := range terms {
		q = q.Where("content::text ILIKE ?", "%"+term+"%")
	}
	if !since.IsZero() {
		q = q.Where("launched_at >= ?", since)
	}
	if !until.IsZero() {
		q = q.Where("launched_at <= ?", until)
	}
	return listSpoks(q, page, limit)
}

func (r *Repository) visible(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Where("disabled = false")
}

func listSpoks(q *gorm.DB, page core.Keyset, limit int) ([]core.Spok, error) {
	var spoks []core.Spok
	err := persistence.Keyset(q, page, limit).Find(&spoks).Error
	return persistence.Descending(page, spoks), err
}

func listInstances(q *gorm.DB, page core.Keyset, limit int) ([]core.SpokInstance, error) {
	var instances []core.SpokInstance
	err := persistence.Keyset(q, page, limit).Find(&instances).Error
	return persistence.Descending(page, instances), err
}
