// Document HTTP handlers.
//
// Endpoints:
//   - POST   /indexes/{index}/documents       (add batch, idempotent)
//   - GET    /indexes/{index}/documents       (list, paginated, ETag support)
//   - DELETE /indexes/{index}/documents/{id}  (delete one)
//   - GET    /indexes/{index}/search          (rank documents against a query)
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-search-server/internal/apperr"
	"github.com/tbourn/go-search-server/internal/domain"
	"github.com/tbourn/go-search-server/internal/http/middleware"
	"github.com/tbourn/go-search-server/internal/search"
	"github.com/tbourn/go-search-server/internal/services"
)

// HeaderIdempotentReplay is set to "true" on responses served from a stored
// outcome.
const HeaderIdempotentReplay = "Idempotent-Replay"

//
// DTOs
//

// DocumentInput is one document of an AddDocumentsRequest.
type DocumentInput struct {
	Content string `json:"content" example:"Refunds are processed within five business days."`
}

// AddDocumentsRequest is the JSON payload for adding documents.
type AddDocumentsRequest struct {
	Documents []DocumentInput `json:"documents"`
}

// AddDocumentsResponse lists the IDs assigned to the batch, in input order.
type AddDocumentsResponse struct {
	IDs []string `json:"ids"`
}

// ListDocumentsResponse wraps a page of documents and pagination information.
type ListDocumentsResponse struct {
	Documents  []domain.Document `json:"documents"`
	Pagination Pagination        `json:"pagination"`
}

// SearchResponse carries ranked hits, best first.
type SearchResponse struct {
	Query string          `json:"query" example:"refund policy"`
	Hits  []search.Result `json:"hits"`
}

//
// Handlers
//

// AddDocuments godoc
// @ID          addDocuments
// @Summary     Add documents to an index
// @Description Stores a batch of documents atomically. Retrying with the same Idempotency-Key returns the original IDs.
// @Tags        Documents
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       index            path    string  true   "Index name"  example(handbook)
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"
// @Param       body             body    handlers.AddDocumentsRequest  true  "Documents"
//
// @Success     201  {object} handlers.AddDocumentsResponse
// @Header      201  {string} Idempotent-Replay "true when served from a stored outcome"
// @Failure     400  {object} reply.ErrorBody "Invalid batch or Idempotency-Key"
// @Failure     404  {object} reply.ErrorBody "Index not found"
// @Failure     413  {object} reply.ErrorBody "Body too large"
// @Failure     422  {object} reply.ErrorBody "Malformed JSON"
// @Failure     429  {object} reply.ErrorBody "Rate limited"
// @Failure     500  {object} reply.ErrorBody "Internal error"
// @Router      /indexes/{index}/documents [post]
func (h *Handlers) AddDocuments(c *gin.Context) error {
	var req AddDocumentsRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	contents := make([]string, len(req.Documents))
	for i, d := range req.Documents {
		contents[i] = d.Content
	}

	key, _ := middleware.GetIdempotencyKey(c)
	res, err := h.docSvc.Add(c.Request.Context(), middleware.ClientID(c), c.Param("index"), key, contents)
	if err != nil {
		if ce := classify(err); !isOther(ce) {
			return ce
		}
		return apperr.ServerError(err)
	}
	if res.Replayed {
		c.Header(HeaderIdempotentReplay, "true")
	}
	middleware.CountDocumentsAdded(len(res.IDs), res.Replayed)
	ok(c, http.StatusCreated, AddDocumentsResponse{IDs: res.IDs})
	return nil
}

// ListDocuments godoc
// @ID          listDocuments
// @Summary     List documents of an index (paginated)
// @Tags        Documents
// @Produce     json
// @Security    BearerAuth
//
// @Param       index          path    string  true   "Index name"  example(handbook)
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Param       page           query   int     false  "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false  "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListDocumentsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     404  {object} reply.ErrorBody "Index not found"
// @Failure     500  {object} reply.ErrorBody "Internal error"
// @Router      /indexes/{index}/documents [get]
func (h *Handlers) ListDocuments(c *gin.Context) error {
	ctx := c.Request.Context()
	index := c.Param("index")
	page, pageSize := pageParams(c)

	if h.stats != nil {
		if count, maxTS, err := h.stats.DocumentsStats(ctx, index); err == nil {
			if err := notModified(c, weakETag("docs:"+index, count, maxTS, page, pageSize)); err != nil {
				return err
			}
		}
	}

	items, total, err := h.docSvc.ListPage(ctx, index, page, pageSize)
	if err != nil {
		c.Writer.Header().Del("ETag")
		return classify(err)
	}
	ok(c, http.StatusOK, ListDocumentsResponse{
		Documents:  items,
		Pagination: newPagination(page, pageSize, total),
	})
	return nil
}

// DeleteDocument godoc
// @ID          deleteDocument
// @Summary     Delete a document
// @Tags        Documents
// @Security    BearerAuth
//
// @Param       index  path  string  true  "Index name"      example(handbook)
// @Param       id     path  string  true  "Document UUID"   format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} reply.ErrorBody "Malformed id"
// @Failure     404  {object} reply.ErrorBody "Index or document not found"
// @Failure     500  {object} reply.ErrorBody "Internal error"
// @Router      /indexes/{index}/documents/{id} [delete]
func (h *Handlers) DeleteDocument(c *gin.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Other(err)
	}
	if err := h.docSvc.Delete(c.Request.Context(), c.Param("index"), id); err != nil {
		return classify(err)
	}
	noContent(c)
	return nil
}

// Search godoc
// @ID          searchIndex
// @Summary     Search an index
// @Description Ranks the index's documents against q by token overlap and returns up to k hits.
// @Tags        Search
// @Produce     json
// @Security    BearerAuth
//
// @Param       index  path   string  true   "Index name"  example(handbook)
// @Param       q      query  string  true   "Query text"  example(refund policy)
// @Param       k      query  int     false  "Max hits"    minimum(1) maximum(50) default(3)
//
// @Success     200  {object} handlers.SearchResponse
// @Failure     400  {object} reply.ErrorBody "Empty query or bad k"
// @Failure     404  {object} reply.ErrorBody "Index not found"
// @Failure     500  {object} reply.ErrorBody "Internal error"
// @Router      /indexes/{index}/search [get]
func (h *Handlers) Search(c *gin.Context) error {
	q := c.Query("q")
	k := 0
	if raw := c.Query("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return apperr.BadRequestf("k must be an integer between 1 and %d", services.MaxK)
		}
		k = n
	}
	hits, err := h.docSvc.Search(c.Request.Context(), c.Param("index"), q, k)
	if err != nil {
		return classify(err)
	}
	middleware.ObserveSearchHits(len(hits))
	ok(c, http.StatusOK, SearchResponse{Query: q, Hits: hits})
	return nil
}

func isOther(err error) bool {
	ae, ok := apperr.As(err)
	return ok && ae.Kind() == apperr.KindOther
}
