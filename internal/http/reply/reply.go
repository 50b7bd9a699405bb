// Package reply holds the HTTP response value produced at the edge of the
// routing pipeline, the collaborator that builds JSON error responses, and
// the static fallbacks used when building fails.
//
// Error bodies have a fixed shape:
//
//	HTTP/1.1 400 Bad Request
//	{ "message": "missing field: email", "code": "bad_request" }
//
// A Response is a plain value: it is created per request, handed to the
// transport, written once and discarded.
package reply

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Literal messages for the static responses.
const (
	FallbackMessage = "internal server error"
	NotFoundMessage = "No route matched for path."
)

// Static bodies. They are constants so that writing them can never fail.
var (
	fallbackBody = []byte(`{"message":"internal server error","code":"internal_error"}`)
	notFoundBody = []byte(`{"message":"No route matched for path.","code":"not_found"}`)
)

// ErrInvalidStatus is returned by builders asked for a status outside the
// HTTP range.
var ErrInvalidStatus = errors.New("reply: status code out of range")

// Response is a fully formed HTTP response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Valid reports whether r carries a status code in the 100..599 range.
func (r Response) Valid() bool {
	return r.Status >= 100 && r.Status <= 599
}

// ErrorBody is the JSON envelope of every error response.
type ErrorBody struct {
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"missing field: email"`
	// Stable, machine-readable code
	Code string `json:"code" example:"bad_request"`
}

// Builder builds an error response for a status and message. Implementations
// may fail, in which case callers fall back to a static response.
type Builder interface {
	Build(status int, message string) (Response, error)
}

// JSONBuilder encodes ErrorBody values with go-json.
type JSONBuilder struct{}

// Build implements Builder.
func (JSONBuilder) Build(status int, message string) (Response, error) {
	if status < 100 || status > 599 {
		return Response{}, ErrInvalidStatus
	}
	return JSON(status, ErrorBody{Message: message, Code: CodeForStatus(status)})
}

// JSON encodes v as the body of a response with the given status.
func JSON(status int, v any) (Response, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Response{}, err
	}
	h := make(http.Header, 1)
	h.Set("Content-Type", contentTypeJSON)
	return Response{Status: status, Header: h, Body: b}, nil
}

// Message builds an error response with the default JSONBuilder.
func Message(status int, message string) (Response, error) {
	return JSONBuilder{}.Build(status, message)
}

// Empty returns a body-less response, e.g. 204 or 304.
func Empty(status int) Response {
	return Response{Status: status, Header: make(http.Header)}
}

// Fallback is the last-resort 500 response. It never fails.
func Fallback() Response {
	return static(http.StatusInternalServerError, fallbackBody)
}

// NotFound is the static 404 used when no route matched.
func NotFound() Response {
	return static(http.StatusNotFound, notFoundBody)
}

func static(status int, body []byte) Response {
	h := make(http.Header, 1)
	h.Set("Content-Type", contentTypeJSON)
	b := make([]byte, len(body))
	copy(b, body)
	return Response{Status: status, Header: h, Body: b}
}

// WithHeader returns a copy of r with key set to value.
func (r Response) WithHeader(key, value string) Response {
	h := r.Header.Clone()
	if h == nil {
		h = make(http.Header, 1)
	}
	h.Set(key, value)
	r.Header = h
	return r
}

// Write sends r on the gin context and aborts the remaining handlers.
func Write(c *gin.Context, r Response) {
	for k, vv := range r.Header {
		c.Writer.Header().Del(k)
		for _, v := range vv {
			c.Writer.Header().Add(k, v)
		}
	}
	if len(r.Body) == 0 {
		c.AbortWithStatus(r.Status)
		return
	}
	c.Status(r.Status)
	_, _ = c.Writer.Write(r.Body)
	c.Abort()
}
