// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-search-server/internal/domain"
)

// IndexesStats returns the number of indexes and the greatest UpdatedAt, or
// a nil time when there are none.
func IndexesStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	return stats(db.WithContext(ctx).Model(&domain.Index{}))
}

// DocumentsStats returns the number of live documents in an index and the
// greatest UpdatedAt among them. A missing index yields ErrNotFound, so its
// listing never matches the ETag of an empty one.
func DocumentsStats(ctx context.Context, db *gorm.DB, indexName string) (count int64, maxUpdatedAt *time.Time, err error) {
	db = db.WithContext(ctx)
	if err := db.Select("name").Where("name = ?", indexName).Take(&domain.Index{}).Error; err != nil {
		return 0, nil, err
	}
	return stats(db.Model(&domain.Document{}).Where("index_name = ?", indexName))
}

func stats(q *gorm.DB) (int64, *time.Time, error) {
	var count int64
	if err := q.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err := q.Session(&gorm.Session{}).Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
