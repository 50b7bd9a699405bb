// Package services – DocumentService
//
// This file implements DocumentService, which owns the documents stored in an
// index and answers search queries over them. Batches are inserted
// atomically together with their idempotency record, so a retried request
// carrying the same Idempotency-Key returns the original IDs.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// carry the index name and, where applicable, batch size or query details.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-search-server/internal/domain"
	"github.com/tbourn/go-search-server/internal/repo"
	"github.com/tbourn/go-search-server/internal/search"
)

// MaxK is the largest number of hits a single search may request.
const MaxK = 50

// DocumentService coordinates document persistence and retrieval.
type DocumentService struct {
	DB        *gorm.DB
	Threshold float64

	// Optional guards
	MaxBatch    int
	MaxDocRunes int
	// MaxSearchDocs caps how many documents are ranked per query.
	MaxSearchDocs int

	// IdempotencyTTL is how long a stored batch outcome is replayable.
	IdempotencyTTL time.Duration

	now func() time.Time
}

// AddResult is the outcome of Add.
type AddResult struct {
	IDs      []string
	Replayed bool
}

// Add validates and stores a batch of documents in indexName. When key is
// non-empty and a live record for (clientID, indexName, key) exists, the
// stored IDs are returned and nothing is inserted.
func (s *DocumentService) Add(ctx context.Context, clientID, indexName, key string, contents []string) (*AddResult, error) {
	ctx, span := otel.Tracer("services/DocumentService").Start(ctx, "Add",
		trace.WithAttributes(
			attribute.String("index.name", indexName),
			attribute.Int("batch.size", len(contents)),
			attribute.Bool("idempotent", key != ""),
		),
	)
	defer span.End()

	clean, err := s.validateBatch(contents)
	if err != nil {
		return nil, err
	}
	if err := s.ensureIndex(ctx, indexName); err != nil {
		return nil, err
	}

	if key != "" {
		rec, err := repo.GetIdempotency(ctx, s.DB, clientID, indexName, key, s.clock())
		if err == nil {
			return &AddResult{IDs: rec.IDs(), Replayed: true}, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			span.RecordError(err)
			return nil, fmt.Errorf("lookup idempotency key: %w", err)
		}
	}

	var ids []string
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		docs, err := repo.CreateDocuments(tx, indexName, clean)
		if err != nil {
			return err
		}
		ids = make([]string, len(docs))
		for i, d := range docs {
			ids[i] = d.ID
		}
		if key == "" {
			return nil
		}
		if _, err := repo.PurgeExpiredIdempotency(ctx, tx, s.clock()); err != nil {
			return err
		}
		_, err = repo.CreateIdempotency(ctx, tx, clientID, indexName, key, ids, http.StatusCreated, s.ttl())
		return err
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent request with the same key won the race.
		rec, gerr := repo.GetIdempotency(ctx, s.DB, clientID, indexName, key, s.clock())
		if gerr != nil {
			return nil, fmt.Errorf("reload idempotency key: %w", gerr)
		}
		return &AddResult{IDs: rec.IDs(), Replayed: true}, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert documents: %w", err)
	}
	return &AddResult{IDs: ids}, nil
}

// ListPage returns paginated documents of an index.
func (s *DocumentService) ListPage(ctx context.Context, indexName string, page, pageSize int) ([]domain.Document, int64, error) {
	ctx, span := otel.Tracer("services/DocumentService").Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("index.name", indexName),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if err := s.ensureIndex(ctx, indexName); err != nil {
		return nil, 0, err
	}
	page, pageSize = normalizePage(page, pageSize)

	total, err := repo.CountDocuments(ctx, s.DB, indexName)
	if err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	if total == 0 {
		return []domain.Document{}, 0, nil
	}
	items, err := repo.ListDocumentsPage(ctx, s.DB, indexName, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	return items, total, nil
}

// Delete soft-deletes one document. The id is expected to be a validated UUID.
func (s *DocumentService) Delete(ctx context.Context, indexName, id string) error {
	ctx, span := otel.Tracer("services/DocumentService").Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.String("index.name", indexName),
			attribute.String("document.id", id),
		),
	)
	defer span.End()

	if err := s.ensureIndex(ctx, indexName); err != nil {
		return err
	}
	if err := repo.DeleteDocument(ctx, s.DB, indexName, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Search ranks the documents of indexName against query and returns up to k
// hits scoring at least Threshold. k <= 0 selects search.DefaultK.
func (s *DocumentService) Search(ctx context.Context, indexName, query string, k int) ([]search.Result, error) {
	ctx, span := otel.Tracer("services/DocumentService").Start(ctx, "Search",
		trace.WithAttributes(
			attribute.String("index.name", indexName),
			attribute.Int("k", k),
		),
	)
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = search.DefaultK
	}
	if k > MaxK {
		return nil, ErrInvalidK
	}

	ix, err := repo.GetIndex(ctx, s.DB, indexName)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("load index: %w", err)
	}
	docs, err := repo.AllDocuments(ctx, s.DB, indexName, s.MaxSearchDocs)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load documents: %w", err)
	}

	in := make([]search.Document, len(docs))
	for i, d := range docs {
		in[i] = search.Document{ID: d.ID, Text: d.Content}
	}
	idx := search.New(in, search.WithStopwords(ix.StopwordList()))
	span.SetAttributes(attribute.Int("docs.ranked", idx.Len()))

	hits := make([]search.Result, 0, k)
	for _, r := range idx.TopK(query, k) {
		if r.Score < s.Threshold {
			continue
		}
		hits = append(hits, r)
	}
	span.SetAttributes(attribute.Int("hits", len(hits)))
	return hits, nil
}

func (s *DocumentService) validateBatch(contents []string) ([]string, error) {
	if len(contents) == 0 {
		return nil, ErrEmptyBatch
	}
	if s.MaxBatch > 0 && len(contents) > s.MaxBatch {
		return nil, ErrTooManyDocuments
	}
	out := make([]string, len(contents))
	for i, c := range contents {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, ErrEmptyDocument
		}
		if s.MaxDocRunes > 0 && utf8.RuneCountInString(c) > s.MaxDocRunes {
			return nil, ErrDocumentTooLong
		}
		out[i] = c
	}
	return out, nil
}

func (s *DocumentService) ensureIndex(ctx context.Context, name string) error {
	if _, err := repo.GetIndex(ctx, s.DB, name); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrIndexNotFound
		}
		return fmt.Errorf("load index: %w", err)
	}
	return nil
}

func (s *DocumentService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

func (s *DocumentService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}
