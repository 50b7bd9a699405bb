// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Document
// model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-search-server/internal/domain"
)

// CreateDocuments inserts one row per content string in a single batch and
// returns them in input order.
func CreateDocuments(db *gorm.DB, indexName string, contents []string) ([]domain.Document, error) {
	now := time.Now().UTC()
	docs := make([]domain.Document, len(contents))
	for i, c := range contents {
		docs[i] = domain.Document{
			ID:        uuid.NewString(),
			IndexName: indexName,
			Content:   c,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	if len(docs) == 0 {
		return docs, nil
	}
	return docs, db.Create(&docs).Error
}

// CountDocuments returns the number of live documents in an index.
func CountDocuments(ctx context.Context, db *gorm.DB, indexName string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Document{}).Where("index_name = ?", indexName).Count(&n).Error
	return n, err
}

// ListDocumentsPage returns a page ordered (CreatedAt ASC, ID ASC).
func ListDocumentsPage(ctx context.Context, db *gorm.DB, indexName string, offset, limit int) ([]domain.Document, error) {
	var out []domain.Document
	err := db.WithContext(ctx).
		Where("index_name = ?", indexName).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// AllDocuments returns every live document of an index, capped at limit
// when limit > 0.
func AllDocuments(ctx context.Context, db *gorm.DB, indexName string, limit int) ([]domain.Document, error) {
	var out []domain.Document
	q := db.WithContext(ctx).Where("index_name = ?", indexName).Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// DeleteDocument soft-deletes a document, returning ErrNotFound when no
// live row matched.
func DeleteDocument(ctx context.Context, db *gorm.DB, indexName, id string) error {
	res := db.WithContext(ctx).Where("index_name = ? AND id = ?", indexName, id).Delete(&domain.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
