// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, a hardening middleware that attaches a
// conservative set of HTTP security headers for the JSON API. HSTS is opt-in
// and only sent on HTTPS requests. No CSP is set since no HTML is served.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// defaultHSTSMaxAge applies when HSTS is enabled without a positive max age.
const defaultHSTSMaxAge = 180 * 24 * time.Hour

// SecurityOptions configures SecurityHeaders.
//
// CacheControl, when set, is sent verbatim as Cache-Control. List endpoints
// answer If-None-Match with 304, so "no-cache" (revalidate every time) is the
// usual value; add "private" when responses depend on the caller.
//
// VaryAuth adds "Vary: Authorization" so shared caches never serve one
// client's ETag-validated listing to another. Enable it together with Auth.
type SecurityOptions struct {
	EnableHSTS   bool          // only when traffic is HTTPS end-to-end
	HSTSMaxAge   time.Duration // <= 0 selects 180 days
	EnablePolicy bool          // Permissions-Policy and X-Permitted-Cross-Domain-Policies
	CacheControl string        // e.g. "private, no-cache"
	VaryAuth     bool
}

// SecurityHeaders returns a Gin middleware that sets, on every response:
//
//	X-Content-Type-Options: nosniff
//	X-Frame-Options: DENY
//	Referrer-Policy: no-referrer
//
// plus the optional headers selected by opt. Strict-Transport-Security is
// only ever sent on HTTPS requests.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	hsts := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"
	legacyNoCache := strings.Contains(opt.CacheControl, "no-cache") || strings.Contains(opt.CacheControl, "no-store")

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}
		if opt.CacheControl != "" {
			h.Set("Cache-Control", opt.CacheControl)
			if legacyNoCache {
				h.Set("Pragma", "no-cache")
			}
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if opt.VaryAuth {
			h.Add("Vary", "Authorization")
		}
		c.Next()
	}
}

// isHTTPS reports whether the request arrived over TLS, directly or through a
// proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
