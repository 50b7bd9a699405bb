// Index HTTP handlers.
//
// This file exposes REST endpoints for index resources:
//   - POST   /indexes          (create)
//   - GET    /indexes          (list, paginated, ETag support)
//   - GET    /indexes/{index}  (fetch)
//   - DELETE /indexes/{index}  (delete with documents)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-search-server/internal/domain"
	"github.com/tbourn/go-search-server/internal/search"
	"github.com/tbourn/go-search-server/internal/services"
)

//
// Service contracts (context-aware)
//

// IndexService defines index lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type IndexService interface {
	Create(ctx context.Context, name string, stopwords []string) (*domain.Index, error)
	Get(ctx context.Context, name string) (*domain.Index, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Index, int64, error)
	Delete(ctx context.Context, name string) error
}

// DocumentService defines document storage and search operations.
type DocumentService interface {
	// Add stores a batch, replaying a stored outcome for a known key.
	Add(ctx context.Context, clientID, indexName, key string, contents []string) (*services.AddResult, error)
	ListPage(ctx context.Context, indexName string, page, pageSize int) ([]domain.Document, int64, error)
	Delete(ctx context.Context, indexName, id string) error
	Search(ctx context.Context, indexName, query string, k int) ([]search.Result, error)
}

// Stats reports collection size and freshness for ETag computation. It is
// optional; without it list endpoints send no ETag.
type Stats interface {
	IndexesStats(ctx context.Context) (int64, *time.Time, error)
	DocumentsStats(ctx context.Context, indexName string) (int64, *time.Time, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for indexes, documents, and search.
type Handlers struct {
	ixSvc  IndexService
	docSvc DocumentService
	stats  Stats
}

// New constructs a Handlers instance bound to the given services. stats may
// be nil.
func New(ixSvc IndexService, docSvc DocumentService, stats Stats) *Handlers {
	return &Handlers{ixSvc: ixSvc, docSvc: docSvc, stats: stats}
}

//
// DTOs
//

// CreateIndexRequest is the JSON payload for creating an index.
type CreateIndexRequest struct {
	// Name is the index slug: lowercase letters, digits, '_' and '-'.
	Name string `json:"name" example:"handbook"`
	// Stopwords are ignored when ranking documents of this index.
	Stopwords []string `json:"stopwords" example:"the,a,of"`
}

// IndexResponse is the public view of an index.
type IndexResponse struct {
	Name      string    `json:"name" example:"handbook"`
	Stopwords []string  `json:"stopwords"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListIndexesResponse wraps a page of indexes and pagination information.
type ListIndexesResponse struct {
	Indexes    []IndexResponse `json:"indexes"`
	Pagination Pagination      `json:"pagination"`
}

func toIndexResponse(ix *domain.Index) IndexResponse {
	return IndexResponse{
		Name:      ix.Name,
		Stopwords: ix.StopwordList(),
		CreatedAt: ix.CreatedAt,
		UpdatedAt: ix.UpdatedAt,
	}
}

//
// Handlers
//

// CreateIndex godoc
// @ID          createIndex
// @Summary     Create an index
// @Description Creates a named index with an optional stopword list.
// @Tags        Indexes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CreateIndexRequest  true  "Create index payload"
//
// @Success     201  {object}  handlers.IndexResponse
// @Failure     400  {object}  reply.ErrorBody  "Invalid name or stopwords"
// @Failure     401  {object}  reply.ErrorBody  "Unauthorized"
// @Failure     409  {object}  reply.ErrorBody  "Index already exists"
// @Failure     422  {object}  reply.ErrorBody  "Malformed JSON"
// @Failure     500  {object}  reply.ErrorBody  "Internal error"
// @Router      /indexes [post]
func (h *Handlers) CreateIndex(c *gin.Context) error {
	var req CreateIndexRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ix, err := h.ixSvc.Create(c.Request.Context(), req.Name, req.Stopwords)
	if err != nil {
		return classify(err)
	}
	ok(c, http.StatusCreated, toIndexResponse(ix))
	return nil
}

// ListIndexes godoc
// @ID          listIndexes
// @Summary     List indexes (paginated)
// @Description Returns a page of indexes. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Indexes
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListIndexesResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} reply.ErrorBody "Internal error"
// @Router      /indexes [get]
func (h *Handlers) ListIndexes(c *gin.Context) error {
	ctx := c.Request.Context()
	page, pageSize := pageParams(c)

	// ETag pre-check (best effort).
	if h.stats != nil {
		if count, maxTS, err := h.stats.IndexesStats(ctx); err == nil {
			if err := notModified(c, weakETag("indexes", count, maxTS, page, pageSize)); err != nil {
				return err
			}
		}
	}

	items, total, err := h.ixSvc.ListPage(ctx, page, pageSize)
	if err != nil {
		return classify(err)
	}
	out := make([]IndexResponse, len(items))
	for i := range items {
		out[i] = toIndexResponse(&items[i])
	}
	ok(c, http.StatusOK, ListIndexesResponse{
		Indexes:    out,
		Pagination: newPagination(page, pageSize, total),
	})
	return nil
}

// GetIndex godoc
// @ID          getIndex
// @Summary     Fetch an index
// @Tags        Indexes
// @Produce     json
// @Security    BearerAuth
//
// @Param       index  path  string  true  "Index name"  example(handbook)
//
// @Success     200  {object} handlers.IndexResponse
// @Failure     404  {object} reply.ErrorBody "Index not found"
// @Failure     500  {object} reply.ErrorBody "Internal error"
// @Router      /indexes/{index} [get]
func (h *Handlers) GetIndex(c *gin.Context) error {
	ix, err := h.ixSvc.Get(c.Request.Context(), c.Param("index"))
	if err != nil {
		return classify(err)
	}
	ok(c, http.StatusOK, toIndexResponse(ix))
	return nil
}

// DeleteIndex godoc
// @ID          deleteIndex
// @Summary     Delete an index
// @Description Removes the index together with all of its documents.
// @Tags        Indexes
// @Security    BearerAuth
//
// @Param       index  path  string  true  "Index name"  example(handbook)
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} reply.ErrorBody "Index not found"
// @Failure     500  {object} reply.ErrorBody "Internal error"
// @Router      /indexes/{index} [delete]
func (h *Handlers) DeleteIndex(c *gin.Context) error {
	if err := h.ixSvc.Delete(c.Request.Context(), c.Param("index")); err != nil {
		return classify(err)
	}
	noContent(c)
	return nil
}
