// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, a structured HTTP logger that
// automatically scrubs obvious PII from request metadata before emitting logs.
//
// The logger never records request or response bodies. It redacts emails,
// phone numbers and UUIDs from the query string and header values, fully masks
// Authorization, Cookie and Set-Cookie plus any configured headers and query
// parameters, and attaches a request-scoped zerolog.Logger under the "logger"
// context key. Search text is user content, so callers typically mask "q".
//
// Usage:
//
//	r := gin.New()
//	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
//	    MaskHeaders:     []string{"X-Api-Key"},
//	    MaskQueryParams: []string{"q"},
//	}))
//
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders specifies extra HTTP header names whose values will be fully
// replaced with "[REDACTED]". Matching is case-insensitive and merged with
// built-in sensitive headers ("Authorization", "Cookie", "Set-Cookie").
//
// MaskQueryParams names query parameters whose values are replaced with
// "[REDACTED]" regardless of content. Matching is case-sensitive, as in
// url.Values.
type RedactOptions struct {
	MaskHeaders     []string
	MaskQueryParams []string
}

// RedactingLogger returns a Gin middleware that logs HTTP requests and
// responses with sensitive values scrubbed.
//
// The access log line is emitted at INFO, WARN for 4xx and ERROR for 5xx.
// Document IDs in paths are UUIDs, so the route template is logged rather
// than the raw path, alongside the index name. When a handler or middleware
// recorded an error, its taxonomy kind is logged as "error_kind".
//
// NOTE: redact UUIDs before phone numbers so the phone pattern cannot match
// the digit/hyphen segments of a UUID.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	// Compile regex patterns once.
	uuidRE := regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE := regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits-only phone pattern (prevents matching hex characters from UUIDs).
	// Examples matched: "+1 212-555-1212", "212 555 1212", "(212) 555-1212".
	phoneRE := regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)

	redact := func(s string) string {
		if s == "" {
			return s
		}
		out := s
		// Order matters: IDs → email → phone (phone is the loosest).
		out = uuidRE.ReplaceAllString(out, "[REDACTED:id]")
		out = emailRE.ReplaceAllString(out, "[REDACTED:email]")
		out = phoneRE.ReplaceAllString(out, "[REDACTED:phone]")
		return out
	}

	// Build header mask set (case-insensitive).
	maskHeaders := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	maskParams := make(map[string]struct{}, len(opts.MaskQueryParams))
	for _, p := range opts.MaskQueryParams {
		if p = strings.TrimSpace(p); p != "" {
			maskParams[p] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		// Request path and query.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		safeQuery := truncate(scrubQuery(c.Request.URL.RawQuery, maskParams, redact), maxQueryLogLength)

		// Scrub headers.
		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			keyLower := strings.ToLower(k)
			val := strings.Join(vv, ", ")
			if _, ok := maskHeaders[keyLower]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(val)
		}

		scoped := log.With().
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &scoped)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		size := c.Writer.Size()

		reqID := c.Writer.Header().Get(requestIDHeader)
		if reqID == "" {
			reqID = c.GetHeader(requestIDHeader)
		}
		uid, _ := c.Get(userIDKey)

		// Severity based on status.
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("index", c.Param("index")).
			Str("user_id", asString(uid)).
			Str("error_kind", errorKind(c)).
			Str("remote_ip", c.ClientIP()).
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", size).
			Dur("latency", latency).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}

// scrubQuery masks the values of params in raw and pattern-redacts the rest.
// The raw query is split by hand so masked values never reach the log, even
// when they are malformed.
func scrubQuery(raw string, params map[string]struct{}, redact func(string) string) string {
	if raw == "" || len(params) == 0 {
		return redact(raw)
	}
	pairs := strings.Split(raw, "&")
	for i, pair := range pairs {
		key, _, hasValue := strings.Cut(pair, "=")
		if _, ok := params[key]; ok && hasValue {
			pairs[i] = key + "=[REDACTED]"
			continue
		}
		pairs[i] = redact(pair)
	}
	return strings.Join(pairs, "&")
}

// errorKind labels the last recorded error, "" when there is none.
func errorKind(c *gin.Context) string {
	if last := c.Errors.Last(); last != nil {
		return kindOf(last.Err)
	}
	return ""
}
