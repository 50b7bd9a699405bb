// Package services defines the business logic for search indexes and their
// documents. This file centralizes service-level error values so that they
// can be consistently returned by service methods and checked by callers.
//
// Translation into HTTP statuses happens in the handler layer. Unexpected
// persistence failures are wrapped with %w and never returned bare.
package services

import "errors"

// Index errors.
var (
	// ErrIndexNotFound indicates that the named index does not exist.
	ErrIndexNotFound = errors.New("index not found")

	// ErrIndexExists is returned when creating an index whose name is taken.
	ErrIndexExists = errors.New("index already exists")

	// ErrInvalidIndexName is returned for names outside [a-z0-9][a-z0-9_-]{0,63}.
	ErrInvalidIndexName = errors.New("invalid index name")

	// ErrTooManyStopwords is returned when an index is created with more
	// stopwords than allowed.
	ErrTooManyStopwords = errors.New("too many stopwords")
)

// Document errors.
var (
	ErrEmptyBatch       = errors.New("no documents supplied")
	ErrTooManyDocuments = errors.New("too many documents in batch")
	ErrEmptyDocument    = errors.New("document content is empty")
	ErrDocumentTooLong  = errors.New("document content too long")
	ErrDocumentNotFound = errors.New("document not found")
)

// Search errors.
var (
	ErrEmptyQuery = errors.New("query is empty")
	ErrInvalidK   = errors.New("k must be between 1 and 50")
)
