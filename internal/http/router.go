// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, error responses, authentication, idempotency, and
// rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Every failure leaves through one error responder
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-search-server/docs"
	"github.com/tbourn/go-search-server/internal/config"
	"github.com/tbourn/go-search-server/internal/domain"
	"github.com/tbourn/go-search-server/internal/http/handlers"
	"github.com/tbourn/go-search-server/internal/http/middleware"
	"github.com/tbourn/go-search-server/internal/http/responder"
	"github.com/tbourn/go-search-server/internal/repo"
	"github.com/tbourn/go-search-server/internal/services"
)

// indexRepoShim adapts the repository free functions to the
// services.IndexRepo interface expected by the IndexService.
type indexRepoShim struct{}

// CreateIndex proxies repo.CreateIndex.
func (indexRepoShim) CreateIndex(ctx context.Context, db *gorm.DB, name string, stopwords []string) (*domain.Index, error) {
	return repo.CreateIndex(ctx, db, name, stopwords)
}

// GetIndex proxies repo.GetIndex.
func (indexRepoShim) GetIndex(ctx context.Context, db *gorm.DB, name string) (*domain.Index, error) {
	return repo.GetIndex(ctx, db, name)
}

// CountIndexes proxies repo.CountIndexes.
func (indexRepoShim) CountIndexes(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountIndexes(ctx, db)
}

// ListIndexesPage proxies repo.ListIndexesPage.
func (indexRepoShim) ListIndexesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Index, error) {
	return repo.ListIndexesPage(ctx, db, offset, limit)
}

// DeleteIndex proxies repo.DeleteIndex.
func (indexRepoShim) DeleteIndex(ctx context.Context, db *gorm.DB, name string) error {
	return repo.DeleteIndex(ctx, db, name)
}

// statsShim serves list ETags from the repo stats queries.
type statsShim struct{ db *gorm.DB }

func (s statsShim) IndexesStats(ctx context.Context) (int64, *time.Time, error) {
	return repo.IndexesStats(ctx, s.db)
}

func (s statsShim) DocumentsStats(ctx context.Context, indexName string) (int64, *time.Time, error) {
	return repo.DocumentsStats(ctx, s.db, indexName)
}

// NewServices builds the index and document services from cfg.
func NewServices(db *gorm.DB, cfg config.Config) (*services.IndexService, *services.DocumentService) {
	ixSvc := services.NewIndexService(db, indexRepoShim{})
	docSvc := &services.DocumentService{
		DB:             db,
		Threshold:      cfg.Threshold,
		MaxBatch:       cfg.MaxBatch,
		MaxDocRunes:    cfg.MaxDocRunes,
		MaxSearchDocs:  cfg.MaxSearchDocs,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}
	return ixSvc, docSvc
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the versioned public API under cfg.APIBasePath.
//
// Engine middleware order:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Gzip
//  5. Recovery: capture panics inside the compressed writer
//  6. Metrics
//  7. CORS and Security headers
//  8. ErrorResponder: renders errors recorded by anything below it
//  9. Body size limiter
//
// API group order:
//  1. Auth (when enabled): sets the user id the next two key on
//  2. Idempotency validator (before rate limiting to allow bypass on replay)
//  3. Rate limiter (per user/IP, bypass on replay)
//
// Unknown paths and method mismatches both answer 404 "No route matched for
// path.".
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = false
	dispatcher := responder.New(nil)

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key",
			middleware.HeaderIdempotencyKey,
		},
		MaskQueryParams: []string{"q"},
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
		CacheControl: cacheControl(cfg.Auth.Enabled),
		VaryAuth:     cfg.Auth.Enabled,
	}))
	r.Use(middleware.ErrorResponder(dispatcher))
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	r.Use(limitBody(maxBody))

	r.NoRoute(middleware.NotFound(dispatcher))

	// Liveness/health and metrics
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	ixSvc, docSvc := NewServices(db, cfg)
	h := handlers.New(ixSvc, docSvc, statsShim{db: db})

	api := groupWithPrefix(r, cfg.APIBasePath)
	if cfg.Auth.Enabled {
		api.Use(middleware.Auth(middleware.AuthOptions{
			Secret: []byte(cfg.Auth.Secret),
			Issuer: cfg.Auth.Issuer,
		}))
	}
	api.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		func(ctx context.Context, clientID, indexName, key string, now time.Time) (bool, error) {
			_, err := repo.GetIdempotency(ctx, db, clientID, indexName, key, now)
			if errors.Is(err, repo.ErrNotFound) {
				return false, nil
			}
			return err == nil, err
		},
	))
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	api.Use(rl.Handler())
	{
		// Indexes
		api.POST("/indexes", handlers.Handle(h.CreateIndex))
		api.GET("/indexes", handlers.Handle(h.ListIndexes))
		api.GET("/indexes/:index", handlers.Handle(h.GetIndex))
		api.DELETE("/indexes/:index", handlers.Handle(h.DeleteIndex))

		// Documents
		api.POST("/indexes/:index/documents", handlers.Handle(h.AddDocuments))
		api.GET("/indexes/:index/documents", handlers.Handle(h.ListDocuments))
		api.DELETE("/indexes/:index/documents/:id", handlers.Handle(h.DeleteDocument))

		// Search
		api.GET("/indexes/:index/search", handlers.Handle(h.Search))
	}
}

// corsMiddleware returns the CORS posture: allow all origins when none are
// configured, otherwise echo allowlisted origins.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", "Retry-After", handlers.HeaderIdempotentReplay}
	methods := []string{"GET", "POST", "DELETE", "OPTIONS"}

	if len(origins) == 0 {
		return []gin.HandlerFunc{
			// Force ACAO: * even for requests without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     methods,
				AllowHeaders:     allowHeaders,
				ExposeHeaders:    exposeHeaders,
				AllowCredentials: false, // must remain false with AllowAllOrigins
				MaxAge:           12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     methods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
	}
}

// cacheControl makes caches revalidate listings against their ETags; with
// auth on, responses are also kept out of shared caches.
func cacheControl(authEnabled bool) string {
	if authEnabled {
		return "private, no-cache"
	}
	return "no-cache"
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
