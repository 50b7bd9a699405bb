// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file validates the Idempotency-Key header of document uploads and
// marks requests whose outcome is already stored, so the limiter lets the
// replay through and the handler can answer from the stored IDs.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-search-server/internal/apperr"
)

// HeaderIdempotencyKey carries the client's retry key on POST requests.
const HeaderIdempotencyKey = "Idempotency-Key"

// anonymousClient is the client identity of unauthenticated requests.
const anonymousClient = "anonymous"

const defaultIdempotencyMaxLen = 200

// defaultIdempotencyPattern is an RFC 7230 token subset.
var defaultIdempotencyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// Context keys used to stash idempotency state.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

// GetIdempotencyKey returns the key accepted by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := asString(c.Value(ctxKeyIdemKey))
	return s, s != ""
}

// IsReplay reports whether a stored outcome exists for (client, index, key).
func IsReplay(c *gin.Context) bool {
	b, _ := c.Value(ctxKeyIdemReplay).(bool)
	return b
}

// IdempotencyOptions configures header validation. Expiry is the lookup's
// concern.
type IdempotencyOptions struct {
	MaxLen  int            // <= 0 selects 200
	Pattern *regexp.Regexp // nil selects ^[A-Za-z0-9._~\-:]+$
}

// IdempotencyLookup reports whether an unexpired outcome is stored for
// (clientID, indexName, key) at now.
type IdempotencyLookup func(ctx context.Context, clientID, indexName, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator checks Idempotency-Key on POST requests and consults
// lookup. Other methods and requests without the header pass untouched.
//
// A malformed key is rejected with BadRequest("invalid Idempotency-Key").
// A stored outcome marks the request as a replay and exempts it from rate
// limiting. Lookup failures are logged and the request proceeds as new; the
// service repeats the lookup inside its own transaction.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = defaultIdempotencyMaxLen
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdempotencyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			Reject(c, apperr.BadRequest("invalid Idempotency-Key"))
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			exists, err := lookup(c.Request.Context(), ClientID(c), c.Param("index"), key, time.Now().UTC())
			switch {
			case err != nil:
				LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
			case exists:
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}

// ClientID is the identity idempotency records are scoped to: the
// authenticated subject, or "anonymous".
func ClientID(c *gin.Context) string {
	if uid := UserID(c); uid != "" {
		return uid
	}
	return anonymousClient
}
