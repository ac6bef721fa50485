package persistence

import (
	"github.com/samber/lo"
	"gorm.io/gorm"

	"spokd/internal/core"
)

// Keyset applies a strict listing boundary. Forward pages filter
// id < boundary descending; backward pages scan id > boundary ascending and
// the caller flips them back with Descending.
func Keyset(q *gorm.DB, page core.Keyset, limit int) *gorm.DB {
	if page.Backward {
		if page.BoundaryID > 0 {
			q = q.Where("id > ?", page.BoundaryID)
		}
		return q.Order("id asc").Limit(limit)
	}
	if page.BoundaryID > 0 {
		q = q.Where("id < ?", page.BoundaryID)
	}
	return q.Order("id desc").Limit(limit)
}

// Descending restores id-descending order on rows fetched backward.
func Descending[T any](page core.Keyset, rows []T) []T {
	if page.Backward {
		lo.Reverse(rows)
	}
	return rows
}
