// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the Idempotency
// model used to implement safe-retry semantics for document batches.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-search-server/internal/domain"
)

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, clientID, indexName, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(indexName) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("client_id = ? AND index_name = ? AND key = ? AND expires_at > ?", clientID, indexName, key, now).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency inserts a record and returns ErrDuplicate on unique violation.
func CreateIdempotency(ctx context.Context, db *gorm.DB, clientID, indexName, key string, documentIDs []string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := &domain.Idempotency{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		IndexName:   indexName,
		Key:         key,
		DocumentIDs: strings.Join(documentIDs, ","),
		Status:      status,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeExpiredIdempotency deletes records that expired at or before now and
// returns how many were removed.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}
