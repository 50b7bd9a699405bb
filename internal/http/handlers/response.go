// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the handler shape used across all endpoints and the
// helpers for the success path. Handlers return an error instead of writing
// failures themselves; Handle records that error on the Gin context and the
// ErrorResponder middleware turns it into the response.
//
// Conventions:
//   - Failures are returned, never written. Service errors pass through
//     classify before leaving the handler.
//   - `ok()` and `noContent()` write success responses in a consistent shape.
//   - List endpoints carry a weak ETag and answer If-None-Match with 304.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{ "message": "index not found", "code": "not_found" }
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-search-server/internal/apperr"
	"github.com/tbourn/go-search-server/internal/http/middleware"
	"github.com/tbourn/go-search-server/internal/http/reply"
	"github.com/tbourn/go-search-server/internal/utils"
)

// HandlerFunc is a route handler that reports failure by returning an error.
type HandlerFunc func(c *gin.Context) error

// Handle adapts h to Gin. A returned error is recorded unaltered and the
// chain is aborted.
func Handle(h HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h(c); err != nil {
			middleware.Reject(c, err)
		}
	}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	pages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
	}
}

// pageParams reads page and page_size from the query string.
func pageParams(c *gin.Context) (page, pageSize int) {
	return utils.ParsePage(c.Query("page"), c.Query("page_size"))
}

// bindJSON decodes the request body into v. A body over the size limit
// aborts with 413; anything else undecodable is a serialization failure.
func bindJSON(c *gin.Context, v any) error {
	err := c.ShouldBindJSON(v)
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.AbortWith(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	}
	return apperr.Serialization(fmt.Errorf("invalid JSON body: %w", err))
}

// weakETag formats the list validator for a collection.
func weakETag(scope string, count int64, maxUpdated *time.Time, page, pageSize int) string {
	var ts int64
	if maxUpdated != nil {
		ts = maxUpdated.UnixNano()
	}
	return fmt.Sprintf(`W/"%s:%d:%d:%d:%d"`, scope, count, ts, page, pageSize)
}

// notModified sets the ETag header and, when the client already holds it,
// returns the 304 abort.
func notModified(c *gin.Context, etag string) error {
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		return apperr.Abort(reply.Empty(http.StatusNotModified).WithHeader("ETag", etag))
	}
	return nil
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
