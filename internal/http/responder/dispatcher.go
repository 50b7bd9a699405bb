// Package responder turns route failures into HTTP responses.
//
// A Dispatcher takes the opaque error a handler produced, recovers an
// *apperr.Error from it when possible, and builds the matching JSON response.
// It always returns a response: if building fails the static
// reply.Fallback() is returned instead. It keeps no state between calls and
// does not log.
package responder

import (
	"net/http"

	"github.com/tbourn/go-search-server/internal/apperr"
	"github.com/tbourn/go-search-server/internal/http/reply"
)

const unknownMessage = "unknown error"

// Dispatcher maps errors to responses through a reply.Builder.
type Dispatcher struct {
	builder reply.Builder
}

// New returns a Dispatcher using b. A nil b selects reply.JSONBuilder.
func New(b reply.Builder) *Dispatcher {
	if b == nil {
		b = reply.JSONBuilder{}
	}
	return &Dispatcher{builder: b}
}

// Produce converts err into a response. It never fails: a builder error,
// a panic while describing err, or an unsendable response all degrade to
// reply.Fallback().
func (d *Dispatcher) Produce(err error) (resp reply.Response) {
	defer func() {
		if recover() != nil {
			resp = reply.Fallback()
		}
	}()
	resp, ok := d.produce(err)
	if !ok {
		return reply.Fallback()
	}
	return resp
}

// NotFound returns the 404 used when no route matched the request.
func (d *Dispatcher) NotFound() (resp reply.Response) {
	defer func() {
		if recover() != nil {
			resp = reply.NotFound()
		}
	}()
	resp, ok := d.build(http.StatusNotFound, reply.NotFoundMessage)
	if !ok {
		return reply.NotFound()
	}
	return resp
}

func (d *Dispatcher) produce(err error) (reply.Response, bool) {
	ae, ok := apperr.As(err)
	if !ok {
		return d.build(http.StatusInternalServerError, describe(err))
	}
	if resp, ok := ae.Response(); ok {
		return resp, resp.Valid()
	}
	return d.build(ae.Status(), ae.Message())
}

// build runs the builder and reports false on error or on a response that
// cannot be sent as is.
func (d *Dispatcher) build(status int, msg string) (reply.Response, bool) {
	resp, err := d.builder.Build(status, msg)
	if err != nil || !resp.Valid() || len(resp.Body) == 0 {
		return reply.Response{}, false
	}
	return resp, true
}

func describe(err error) string {
	if err == nil {
		return unknownMessage
	}
	return err.Error()
}
