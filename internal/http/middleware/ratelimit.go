// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements a process-local token-bucket limiter keyed by caller
// identity. Rejections are Abort errors carrying a prebuilt 429 response, so
// ErrorResponder renders them like every other failure. Idempotent replays
// are exempt.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-search-server/internal/apperr"
	"github.com/tbourn/go-search-server/internal/http/reply"
)

// sweepEvery is how many lookups pass between idle-bucket sweeps.
const sweepEvery = 5000

// keyFunc maps a request to its bucket, e.g. "user:<id>" or "ip:<addr>".
type keyFunc func(*gin.Context) string

// KeyByUserOrIP keys by authenticated subject, falling back to client IP.
// The prefixes keep a subject named like an address from sharing its bucket.
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		if uid := UserID(c); uid != "" {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	}
}

// visitor is one bucket and when it was last used.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per key. Buckets idle for ttl are swept
// every sweepEvery lookups. Safe for concurrent use.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	keyFn    keyFunc
	mu       sync.Mutex
	visitors map[string]*visitor

	ttl      time.Duration
	cleanupN uint64

	// rejected is carried by every 429 Abort.
	rejected reply.Response
}

// NewRateLimiter refills rps tokens per second up to burst (min 1). With
// rps 0 each key gets only its initial burst.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
		rejected: tooManyRequests(),
	}
}

func tooManyRequests() reply.Response {
	resp, err := reply.Message(http.StatusTooManyRequests, "rate limit exceeded")
	if err != nil {
		resp = reply.Empty(http.StatusTooManyRequests)
	}
	return resp.WithHeader("Retry-After", "1")
}

// getVisitor returns the bucket for key, creating it if absent. Every
// sweepEvery lookups it first evicts buckets idle for at least ttl.
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.cleanupN++; rl.cleanupN >= sweepEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.cleanupN = 0
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// IsRateBypass reports whether IdempotencyValidator found a stored outcome,
// in which case the request costs no token.
func IsRateBypass(c *gin.Context) bool {
	b, _ := c.Value(ctxKeyRateBypass).(bool)
	return b
}

// Handler enforces the limit. Requests over it are rejected with:
//
//	HTTP/1.1 429 Too Many Requests
//	Retry-After: 1
//	{"message":"rate limit exceeded","code":"too_many_requests"}
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) || rl.getVisitor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		Reject(c, apperr.Abort(rl.rejected))
	}
}
