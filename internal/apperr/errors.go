package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tbourn/go-search-server/internal/http/reply"
)

// Kind identifies the variant of an *Error.
type Kind uint8

const (
	KindBadRequest Kind = iota + 1
	KindUnauthorized
	KindAbort
	KindOther
	KindServerError
	KindSerialization
)

// String returns the stable name used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindAbort:
		return "abort"
	case KindOther:
		return "other"
	case KindServerError:
		return "server_error"
	case KindSerialization:
		return "serialization"
	default:
		return "unknown"
	}
}

// handlingPrefix precedes the cause of every server-side failure message.
const handlingPrefix = "error handling request: "

var errUnknown = errors.New("unknown error")

// Error is an application error with HTTP semantics attached to its kind.
// The zero value is not usable; build one with the constructors below.
type Error struct {
	kind  Kind
	msg   string
	resp  reply.Response
	cause error
}

// BadRequest reports client input rejected by handler logic.
func BadRequest(msg string) *Error {
	return &Error{kind: KindBadRequest, msg: msg}
}

// BadRequestf is BadRequest with fmt formatting.
func BadRequestf(format string, args ...any) *Error {
	return BadRequest(fmt.Sprintf(format, args...))
}

// Unauthorized reports missing or invalid credentials.
func Unauthorized(msg string) *Error {
	return &Error{kind: KindUnauthorized, msg: msg}
}

// Abort short-circuits the request with a response the caller already built.
func Abort(resp reply.Response) *Error {
	return &Error{kind: KindAbort, resp: resp}
}

// AbortWith is Abort carrying a standard JSON error body for status and
// message. If the body cannot be built the response has no body.
func AbortWith(status int, message string) *Error {
	resp, err := reply.Message(status, message)
	if err != nil {
		resp = reply.Empty(status)
	}
	return Abort(resp)
}

// Other wraps an unclassified failure. See Status for how it is graded.
func Other(cause error) *Error {
	return &Error{kind: KindOther, cause: orUnknown(cause)}
}

// ServerError wraps an internal failure that is always the server's fault.
func ServerError(cause error) *Error {
	return &Error{kind: KindServerError, cause: orUnknown(cause)}
}

// Serialization wraps a payload that could not be encoded or decoded.
func Serialization(cause error) *Error {
	return &Error{kind: KindSerialization, cause: orUnknown(cause)}
}

func orUnknown(err error) error {
	if err == nil {
		return errUnknown
	}
	return err
}

// Kind returns the variant of e.
func (e *Error) Kind() Kind { return e.kind }

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Error implements error.
func (e *Error) Error() string {
	switch e.kind {
	case KindBadRequest, KindUnauthorized:
		return e.msg
	case KindAbort:
		return fmt.Sprintf("request aborted with status %d", e.resp.Status)
	default:
		return e.cause.Error()
	}
}

// Status returns the HTTP status for e. For Abort it is the status of the
// embedded response.
func (e *Error) Status() int {
	switch e.kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindAbort:
		return e.resp.Status
	case KindOther:
		if chained(e.cause) {
			return http.StatusInternalServerError
		}
		return http.StatusBadRequest
	case KindSerialization:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for e. It is empty for Abort,
// whose body is already built.
func (e *Error) Message() string {
	switch e.kind {
	case KindBadRequest, KindUnauthorized:
		return e.msg
	case KindAbort:
		return ""
	case KindOther:
		if chained(e.cause) {
			return handlingPrefix + e.cause.Error()
		}
		return e.cause.Error()
	case KindServerError:
		return handlingPrefix + e.cause.Error()
	default:
		return e.cause.Error()
	}
}

// Response returns the embedded response of an Abort error.
func (e *Error) Response() (reply.Response, bool) {
	if e.kind != KindAbort {
		return reply.Response{}, false
	}
	return e.resp, true
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}

// chained reports whether err wraps at least one further error.
func chained(err error) bool {
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return u.Unwrap() != nil
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			if e != nil {
				return true
			}
		}
	}
	return false
}
