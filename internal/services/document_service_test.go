package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-search-server/internal/domain"
	"github.com/tbourn/go-search-server/internal/repo"
)

// ---------- test helpers ----------

func newDocDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:docsvc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if migrate {
		if err := repo.AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func newDocSvc(t *testing.T, index string, stopwords ...string) *DocumentService {
	t.Helper()
	db := newDocDB(t, true)
	if index != "" {
		if _, err := repo.CreateIndex(context.Background(), db, index, stopwords); err != nil {
			t.Fatalf("seed index: %v", err)
		}
	}
	return &DocumentService{DB: db, MaxBatch: 3, MaxDocRunes: 20}
}

// ---------- Add() ----------

func TestDocumentService_Add_Validation(t *testing.T) {
	s := newDocSvc(t, "docs")
	ctx := context.Background()

	tests := []struct {
		name string
		in   []string
		want error
	}{
		{"empty batch", nil, ErrEmptyBatch},
		{"too many", []string{"a", "b", "c", "d"}, ErrTooManyDocuments},
		{"blank doc", []string{"ok", "   "}, ErrEmptyDocument},
		{"too long", []string{strings.Repeat("x", 21)}, ErrDocumentTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Add(ctx, "u1", "docs", "", tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("Add = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDocumentService_Add_IndexNotFound(t *testing.T) {
	s := newDocSvc(t, "")
	if _, err := s.Add(context.Background(), "u1", "missing", "", []string{"x"}); !errors.Is(err, ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestDocumentService_Add_AndList(t *testing.T) {
	s := newDocSvc(t, "docs")
	ctx := context.Background()

	res, err := s.Add(ctx, "u1", "docs", "", []string{"  first doc ", "second doc"})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if len(res.IDs) != 2 || res.Replayed {
		t.Fatalf("unexpected result: %+v", res)
	}

	items, total, err := s.ListPage(ctx, "docs", 0, 0)
	if err != nil || total != 2 || len(items) != 2 {
		t.Fatalf("ListPage = %d items, total %d, err %v", len(items), total, err)
	}
	if items[0].Content != "first doc" && items[1].Content != "first doc" {
		t.Fatalf("content not trimmed: %+v", items)
	}

	if _, _, err := s.ListPage(ctx, "missing", 1, 10); !errors.Is(err, ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestDocumentService_ListPage_Empty(t *testing.T) {
	s := newDocSvc(t, "docs")
	items, total, err := s.ListPage(context.Background(), "docs", 1, 10)
	if err != nil || total != 0 || items == nil || len(items) != 0 {
		t.Fatalf("empty ListPage = %v,%d,%v", items, total, err)
	}
}

func TestDocumentService_Add_IdempotentReplay(t *testing.T) {
	s := newDocSvc(t, "docs")
	ctx := context.Background()

	first, err := s.Add(ctx, "u1", "docs", "key-1", []string{"alpha"})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	again, err := s.Add(ctx, "u1", "docs", "key-1", []string{"alpha"})
	if err != nil {
		t.Fatalf("replay error: %v", err)
	}
	if !again.Replayed || strings.Join(again.IDs, ",") != strings.Join(first.IDs, ",") {
		t.Fatalf("replay mismatch: first=%+v again=%+v", first, again)
	}

	// Different client, same key: not a replay.
	other, err := s.Add(ctx, "u2", "docs", "key-1", []string{"alpha"})
	if err != nil || other.Replayed {
		t.Fatalf("other client = %+v, %v", other, err)
	}

	_, total, _ := s.ListPage(ctx, "docs", 1, 10)
	if total != 2 {
		t.Fatalf("expected 2 stored docs, got %d", total)
	}
}

func TestDocumentService_Add_ExpiredKeyReused(t *testing.T) {
	s := newDocSvc(t, "docs")
	s.IdempotencyTTL = time.Minute
	ctx := context.Background()

	if _, err := s.Add(ctx, "u1", "docs", "k", []string{"alpha"}); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	s.now = func() time.Time { return time.Now().UTC().Add(time.Hour) }
	res, err := s.Add(ctx, "u1", "docs", "k", []string{"beta"})
	if err != nil {
		t.Fatalf("Add after expiry error: %v", err)
	}
	if res.Replayed {
		t.Fatalf("expired key must not replay")
	}
}

func TestDocumentService_Add_DBError(t *testing.T) {
	s := &DocumentService{DB: newDocDB(t, false)}
	_, err := s.Add(context.Background(), "u1", "docs", "", []string{"x"})
	if err == nil || errors.Is(err, ErrIndexNotFound) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Fatalf("db error must be wrapped: %v", err)
	}
}

// ---------- Delete() ----------

func TestDocumentService_Delete(t *testing.T) {
	s := newDocSvc(t, "docs")
	ctx := context.Background()

	res, err := s.Add(ctx, "u1", "docs", "", []string{"gone soon"})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if err := s.Delete(ctx, "docs", res.IDs[0]); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := s.Delete(ctx, "docs", res.IDs[0]); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("second delete: expected ErrDocumentNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "missing", res.IDs[0]); !errors.Is(err, ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

// ---------- Search() ----------

func TestDocumentService_Search(t *testing.T) {
	s := newDocSvc(t, "docs", "the")
	s.MaxDocRunes = 0
	ctx := context.Background()

	if _, err := s.Add(ctx, "u1", "docs", "", []string{
		"golang channels",
		"the golang scheduler",
		"python generators",
	}); err != nil {
		t.Fatalf("Add error: %v", err)
	}

	hits, err := s.Search(ctx, "docs", "golang channels", 5)
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(hits) != 2 || hits[0].Snippet != "golang channels" || hits[0].Score != 1 {
		t.Fatalf("unexpected hits: %+v", hits)
	}

	s.Threshold = 0.5
	hits, err = s.Search(ctx, "docs", "golang channels", 0)
	if err != nil || len(hits) != 1 {
		t.Fatalf("threshold not applied: %+v, %v", hits, err)
	}

	hits, err = s.Search(ctx, "docs", "rust", 5)
	if err != nil || hits == nil || len(hits) != 0 {
		t.Fatalf("no-match search = %v, %v", hits, err)
	}
}

func TestDocumentService_Search_Errors(t *testing.T) {
	s := newDocSvc(t, "docs")
	ctx := context.Background()

	if _, err := s.Search(ctx, "docs", "   ", 3); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
	if _, err := s.Search(ctx, "docs", "q", MaxK+1); !errors.Is(err, ErrInvalidK) {
		t.Fatalf("expected ErrInvalidK, got %v", err)
	}
	if _, err := s.Search(ctx, "missing", "q", 3); !errors.Is(err, ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

// ---------- Seed() ----------

func TestSeed(t *testing.T) {
	db := newDocDB(t, true)
	ixs := NewIndexService(db, indexRepoFuncs{})
	docs := &DocumentService{DB: db, MaxBatch: 2, MaxDocRunes: 5}
	ctx := context.Background()

	n, err := Seed(ctx, ixs, docs, "default", []string{"one", "two", "three", "a long paragraph"})
	if err != nil || n != 4 {
		t.Fatalf("Seed = %d, %v; want 4", n, err)
	}
	items, _, _ := docs.ListPage(ctx, "default", 1, 10)
	for _, d := range items {
		if len([]rune(d.Content)) > 5 {
			t.Fatalf("paragraph not clipped: %q", d.Content)
		}
	}

	n, err = Seed(ctx, ixs, docs, "default", []string{"more"})
	if err != nil || n != 0 {
		t.Fatalf("second Seed = %d, %v; want no-op", n, err)
	}

	if _, err := Seed(ctx, ixs, docs, "Bad Name", nil); !errors.Is(err, ErrInvalidIndexName) {
		t.Fatalf("expected ErrInvalidIndexName, got %v", err)
	}
}

func TestSeed_FailedBatchDropsIndex(t *testing.T) {
	db := newDocDB(t, true)
	ixs := NewIndexService(db, indexRepoFuncs{})
	docs := &DocumentService{DB: db, MaxBatch: 2, MaxDocRunes: 50}
	ctx := context.Background()

	// The second batch holds a blank paragraph and is rejected.
	n, err := Seed(ctx, ixs, docs, "handbook", []string{"one", "two", "   "})
	if !errors.Is(err, ErrEmptyDocument) || n != 0 {
		t.Fatalf("Seed = %d, %v; want 0, ErrEmptyDocument", n, err)
	}
	if _, err := ixs.Get(ctx, "handbook"); !errors.Is(err, ErrIndexNotFound) {
		t.Fatalf("partially seeded index kept: %v", err)
	}

	n, err = Seed(ctx, ixs, docs, "handbook", []string{"one", "two", "three"})
	if err != nil || n != 3 {
		t.Fatalf("retry Seed = %d, %v; want 3", n, err)
	}
}

// indexRepoFuncs adapts the repo package to IndexRepo for tests.
type indexRepoFuncs struct{}

func (indexRepoFuncs) CreateIndex(ctx context.Context, db *gorm.DB, name string, stopwords []string) (*domain.Index, error) {
	return repo.CreateIndex(ctx, db, name, stopwords)
}
func (indexRepoFuncs) GetIndex(ctx context.Context, db *gorm.DB, name string) (*domain.Index, error) {
	return repo.GetIndex(ctx, db, name)
}
func (indexRepoFuncs) CountIndexes(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountIndexes(ctx, db)
}
func (indexRepoFuncs) ListIndexesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Index, error) {
	return repo.ListIndexesPage(ctx, db, offset, limit)
}
func (indexRepoFuncs) DeleteIndex(ctx context.Context, db *gorm.DB, name string) error {
	return repo.DeleteIndex(ctx, db, name)
}
