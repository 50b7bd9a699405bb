// Package domain defines the persistence models for search indexes and their
// documents. These types are mapped with GORM and form the core data layer
// of the search server.
package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Index is a named collection of documents that are searched together.
//
// Fields:
//   - Name: primary key, lowercase slug chosen by the client.
//   - Stopwords: comma-separated words ignored when tokenizing.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Index struct {
	Name      string    `json:"name"       gorm:"type:varchar(64);primaryKey"`
	Stopwords string    `json:"-"          gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Index.
func (Index) TableName() string { return "indexes" }

// StopwordList splits Stopwords into its elements.
func (i Index) StopwordList() []string {
	if i.Stopwords == "" {
		return []string{}
	}
	return strings.Split(i.Stopwords, ",")
}

// Document is a unit of text stored in an index.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - IndexName: owning index (indexed); documents are removed with it.
//   - Content: full text.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
type Document struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	IndexName string         `json:"index"      gorm:"type:varchar(64);not null;index:idx_index_docs,priority:1"`
	Content   string         `json:"content"    gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"index:idx_index_docs,priority:2"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`

	Index Index `json:"-" gorm:"foreignKey:IndexName;references:Name;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Document.
func (Document) TableName() string { return "documents" }
