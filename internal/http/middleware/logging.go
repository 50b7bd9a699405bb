// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides the request ID injector, the panic-safe recovery handler
// and access to the request-scoped logger:
//
//   - RequestID() ensures every request carries a stable correlation ID
//     (propagated via X-Request-ID and stored in the Gin context).
//   - Recovery() converts panics into the static 500 fallback response while
//     preserving the correlation ID and emitting a stack trace to logs.
//   - LoggerFrom() retrieves the request-scoped logger attached by
//     RedactingLogger so handlers can enrich logs
//     (e.g., lg.Info().Str("index", name).Msg("…")).
//
// Recommended order: RequestID(), RedactingLogger(), Recovery(), so that
// panics and errors include the correlation ID and are logged.
package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-search-server/internal/http/reply"
)

const (
	// requestIDKey is the Gin context key under which the request ID is stored.
	requestIDKey = "requestID"
	// requestIDHeader is the HTTP header used to propagate the correlation ID.
	requestIDHeader = "X-Request-ID"
	// loggerKey is the Gin context key of the request-scoped logger.
	loggerKey = "logger"
	// userIDKey is the Gin context key of the authenticated subject.
	userIDKey = "userID"
	// maxQueryLogLength caps the number of bytes of the raw query string logged.
	maxQueryLogLength = 2048
	// maxRequestIDLength bounds client-supplied correlation IDs.
	maxRequestIDLength = 128
)

// RequestID attaches (or propagates) a correlation identifier per request.
//
// A well-formed incoming X-Request-ID is reused, otherwise a new UUIDv4 is
// generated. The ID is echoed in the response header and stored in the Gin
// context under "requestID".
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// GetRequestID returns the correlation ID stored by RequestID.
func GetRequestID(c *gin.Context) string {
	v, _ := c.Get(requestIDKey)
	return asString(v)
}

// Recovery intercepts panics, logs a stack trace, and writes reply.Fallback().
// When the response was already started only the status is forced to 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid := GetRequestID(c)
				LoggerFrom(c).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("request_id", rid).
					Msg("panic recovered")

				if c.Writer.Written() {
					c.Abort()
					return
				}
				if rid != "" {
					c.Header(requestIDHeader, rid)
				}
				reply.Write(c, reply.Fallback())
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped zerolog.Logger.
//
// If no logger was attached a fallback built from the global logger is
// returned, so callers never need nil checks.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// validRequestID accepts 1..128 bytes of [A-Za-z0-9._:-], which keeps the
// value safe to echo in headers and log lines.
func validRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '.', ch == '_', ch == ':', ch == '-':
		default:
			return false
		}
	}
	return true
}

// asString converts an arbitrary interface to a string, returning an empty
// string when the value is not a string.
func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate returns s unchanged when within max bytes, otherwise it cuts s to
// max bytes and appends an ellipsis. A max <= 0 disables truncation.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
