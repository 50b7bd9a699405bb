package domain

import (
	"strings"
	"time"
)

// Idempotency records the outcome of a completed document batch, keyed by
// (client_id, index_name, key). A retried request with the same key returns
// the stored document IDs instead of inserting the batch again.
type Idempotency struct {
	ID          string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	ClientID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_index_key,priority:1"`
	IndexName   string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_index_key,priority:2"`
	Key         string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_client_index_key,priority:3"`
	DocumentIDs string    `gorm:"type:TEXT NOT NULL"`
	Status      int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt   time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt   time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

// IDs splits DocumentIDs into its elements.
func (i Idempotency) IDs() []string {
	if i.DocumentIDs == "" {
		return []string{}
	}
	return strings.Split(i.DocumentIDs, ",")
}
