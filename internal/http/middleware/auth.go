// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication with HS256-signed JWTs.
// A valid token's "sub" claim is stored under "userID" in the Gin context,
// where the rate limiter, idempotency layer and access logs pick it up.
package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tbourn/go-search-server/internal/apperr"
)

const maxClockSkew = 30 * time.Second

// AuthOptions configures Auth.
type AuthOptions struct {
	// Secret is the HS256 signing key. Required.
	Secret []byte
	// Issuer, when set, must match the token's "iss" claim.
	Issuer string
}

var errMissingSubject = errors.New("token has no subject")

// Auth returns a middleware that validates "Authorization: Bearer <jwt>".
// Missing, malformed, expired or otherwise invalid tokens are rejected with
// an Unauthorized error.
func Auth(opts AuthOptions) gin.HandlerFunc {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(maxClockSkew),
		jwt.WithExpirationRequired(),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	parser := jwt.NewParser(parserOpts...)
	keyFn := func(*jwt.Token) (any, error) { return opts.Secret, nil }

	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			Reject(c, apperr.Unauthorized("missing or malformed authorization header"))
			return
		}

		var claims jwt.RegisteredClaims
		if _, err := parser.ParseWithClaims(raw, &claims, keyFn); err != nil {
			LoggerFrom(c).Debug().Err(err).Msg("auth validation failed")
			Reject(c, apperr.Unauthorized("invalid or expired token"))
			return
		}
		if claims.Subject == "" {
			LoggerFrom(c).Debug().Err(errMissingSubject).Msg("auth validation failed")
			Reject(c, apperr.Unauthorized("invalid token claims"))
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Next()
	}
}

// UserID returns the authenticated subject, or "" when the request is
// anonymous.
func UserID(c *gin.Context) string {
	v, _ := c.Get(userIDKey)
	return asString(v)
}

func bearerToken(h string) (string, bool) {
	if h == "" {
		return "", false
	}
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
		return "", false
	}
	return strings.TrimSpace(tok), true
}
