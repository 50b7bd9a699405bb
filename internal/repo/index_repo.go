// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Index model.
//
// Error semantics:
//   - A missing index yields ErrNotFound (gorm.ErrRecordNotFound).
//   - Inserting an existing name yields ErrDuplicate.
//   - Other DB errors are returned as is.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-search-server/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique-key violation.
var ErrDuplicate = errors.New("duplicate")

// CreateIndex inserts a new index row.
func CreateIndex(ctx context.Context, db *gorm.DB, name string, stopwords []string) (*domain.Index, error) {
	now := time.Now().UTC()
	ix := &domain.Index{
		Name:      name,
		Stopwords: strings.Join(stopwords, ","),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(ix).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return ix, nil
}

// GetIndex fetches an index by name.
func GetIndex(ctx context.Context, db *gorm.DB, name string) (*domain.Index, error) {
	var ix domain.Index
	if err := db.WithContext(ctx).Where("name = ?", name).First(&ix).Error; err != nil {
		return nil, err
	}
	return &ix, nil
}

// CountIndexes returns the number of indexes.
func CountIndexes(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Index{}).Count(&n).Error
	return n, err
}

// ListIndexesPage returns indexes ordered by name.
func ListIndexesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Index, error) {
	var out []domain.Index
	err := db.WithContext(ctx).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// DeleteIndex removes an index and, through the FK cascade, its documents.
func DeleteIndex(ctx context.Context, db *gorm.DB, name string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Soft-deleted rows are still bound by the FK; remove them explicitly
		// so the delete does not depend on the foreign_keys pragma.
		if err := tx.Unscoped().Where("index_name = ?", name).Delete(&domain.Document{}).Error; err != nil {
			return err
		}
		if err := tx.Where("index_name = ?", name).Delete(&domain.Idempotency{}).Error; err != nil {
			return err
		}
		res := tx.Where("name = ?", name).Delete(&domain.Index{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// isUniqueViolation recognises unique-constraint failures across drivers.
// glebarez/sqlite often returns plain-text errors for them.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
