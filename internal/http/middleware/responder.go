package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-search-server/internal/apperr"
	"github.com/tbourn/go-search-server/internal/http/reply"
	"github.com/tbourn/go-search-server/internal/http/responder"
)

// ErrorResponder turns the last error recorded on the Gin context into an HTTP
// response using d. It runs after the rest of the chain and does nothing when
// no error was recorded or a response has already been written.
//
// 5xx outcomes are logged with the request-scoped logger; every produced
// response is counted in http_error_responses_total{kind,status}.
func ErrorResponder(d *responder.Dispatcher) gin.HandlerFunc {
	if d == nil {
		d = responder.New(nil)
	}
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		resp := d.Produce(err)

		kind := kindOf(err)
		httpErrResp.WithLabelValues(kind, strconv.Itoa(resp.Status)).Inc()

		if resp.Status >= 500 {
			LoggerFrom(c).Error().
				Err(err).
				Str("kind", kind).
				Int("status", resp.Status).
				Msg("request failed")
		}
		reply.Write(c, resp)
	}
}

// NotFound is the NoRoute handler: it writes d.NotFound().
func NotFound(d *responder.Dispatcher) gin.HandlerFunc {
	if d == nil {
		d = responder.New(nil)
	}
	return func(c *gin.Context) {
		reply.Write(c, d.NotFound())
	}
}

// kindOf labels err by its taxonomy kind, or "unrecognized".
func kindOf(err error) string {
	if ae, ok := apperr.As(err); ok {
		return ae.Kind().String()
	}
	return "unrecognized"
}

// Reject records err on the context and stops the chain; ErrorResponder
// renders it.
func Reject(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
