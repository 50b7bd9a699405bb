// Package services – IndexService
//
// This file implements IndexService, which owns the lifecycle of search
// indexes: name validation, stopword normalisation, paginated listing and
// cascading deletion. Persistence goes through the IndexRepo contract so the
// service stays decoupled from the concrete repo package.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/tbourn/go-search-server/internal/domain"
	"github.com/tbourn/go-search-server/internal/repo"
)

// IndexRepo defines the repository contract required by IndexService.
type IndexRepo interface {
	// CreateIndex inserts a new index row; duplicates yield repo.ErrDuplicate.
	CreateIndex(ctx context.Context, db *gorm.DB, name string, stopwords []string) (*domain.Index, error)

	// GetIndex fetches an index by name.
	GetIndex(ctx context.Context, db *gorm.DB, name string) (*domain.Index, error)

	// CountIndexes returns the total number of indexes.
	CountIndexes(ctx context.Context, db *gorm.DB) (int64, error)

	// ListIndexesPage returns a page of indexes ordered by name.
	ListIndexesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Index, error)

	// DeleteIndex removes an index together with its documents.
	DeleteIndex(ctx context.Context, db *gorm.DB, name string) error
}

// IndexService provides index-level operations.
type IndexService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the index repository used by this service.
	Repo IndexRepo
	// IsDuplicate reports whether a repo error is a unique violation.
	IsDuplicate func(error) bool
	// IsNotFound reports whether a repo error means "no such row".
	IsNotFound func(error) bool

	// MaxStopwords caps the stopword list per index (0 means unlimited).
	MaxStopwords int
}

// NewIndexService constructs an IndexService with default error predicates.
func NewIndexService(db *gorm.DB, r IndexRepo) *IndexService {
	return &IndexService{
		DB:           db,
		Repo:         r,
		IsDuplicate:  func(err error) bool { return errors.Is(err, repo.ErrDuplicate) },
		IsNotFound:   func(err error) bool { return errors.Is(err, repo.ErrNotFound) },
		MaxStopwords: 256,
	}
}

var indexNameRE = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// ValidIndexName reports whether name can be used as an index name.
func ValidIndexName(name string) bool { return indexNameRE.MatchString(name) }

// Create validates name and stopwords and inserts a new index.
func (s *IndexService) Create(ctx context.Context, name string, stopwords []string) (*domain.Index, error) {
	ctx, span := otel.Tracer("services/IndexService").Start(ctx, "Create",
		trace.WithAttributes(attribute.String("index.name", name)),
	)
	defer span.End()

	name = strings.TrimSpace(name)
	if !ValidIndexName(name) {
		return nil, ErrInvalidIndexName
	}
	words := NormalizeStopwords(stopwords)
	if s.MaxStopwords > 0 && len(words) > s.MaxStopwords {
		return nil, ErrTooManyStopwords
	}

	ix, err := s.Repo.CreateIndex(ctx, s.DB, name, words)
	if err != nil {
		if s.IsDuplicate != nil && s.IsDuplicate(err) {
			return nil, ErrIndexExists
		}
		span.RecordError(err)
		return nil, fmt.Errorf("create index %q: %w", name, err)
	}
	return ix, nil
}

// Get returns the named index or ErrIndexNotFound.
func (s *IndexService) Get(ctx context.Context, name string) (*domain.Index, error) {
	ctx, span := otel.Tracer("services/IndexService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("index.name", name)),
	)
	defer span.End()

	ix, err := s.Repo.GetIndex(ctx, s.DB, name)
	if err != nil {
		if s.notFound(err) {
			return nil, ErrIndexNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("get index %q: %w", name, err)
	}
	return ix, nil
}

// ListPage returns a page of indexes and the total count. Invalid page or
// pageSize values fall back to 1 and 20.
func (s *IndexService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Index, int64, error) {
	ctx, span := otel.Tracer("services/IndexService").Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	page, pageSize = normalizePage(page, pageSize)

	total, err := s.Repo.CountIndexes(ctx, s.DB)
	if err != nil {
		return nil, 0, fmt.Errorf("count indexes: %w", err)
	}
	if total == 0 {
		return []domain.Index{}, 0, nil
	}
	items, err := s.Repo.ListIndexesPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list indexes: %w", err)
	}
	return items, total, nil
}

// Delete removes the named index and all of its documents.
func (s *IndexService) Delete(ctx context.Context, name string) error {
	ctx, span := otel.Tracer("services/IndexService").Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("index.name", name)),
	)
	defer span.End()

	if err := s.Repo.DeleteIndex(ctx, s.DB, name); err != nil {
		if s.notFound(err) {
			return ErrIndexNotFound
		}
		span.RecordError(err)
		return fmt.Errorf("delete index %q: %w", name, err)
	}
	return nil
}

func (s *IndexService) notFound(err error) bool {
	if s.IsNotFound != nil {
		return s.IsNotFound(err)
	}
	return errors.Is(err, repo.ErrNotFound)
}

// NormalizeStopwords case-folds, trims and de-duplicates words, dropping
// blanks and entries containing commas. The result is sorted.
func NormalizeStopwords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	folder := cases.Fold()
	for _, w := range words {
		w = folder.String(strings.TrimSpace(w))
		if w == "" || strings.Contains(w, ",") {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
