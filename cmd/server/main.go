// Command server runs the search API: indexes, documents, and ranked search
// over SQLite, with Prometheus metrics and optional OTLP tracing.
//
// @title                       Search Server API
// @version                     1.0
// @description                 Index documents and rank them against free-text queries.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-search-server/internal/config"
	httpapi "github.com/tbourn/go-search-server/internal/http"
	"github.com/tbourn/go-search-server/internal/observability"
	"github.com/tbourn/go-search-server/internal/repo"
	"github.com/tbourn/go-search-server/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version string

const shutdownGrace = 10 * time.Second

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		sysutil.ConfigureLogger(os.Stderr, "info", false)
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	sysutil.ConfigureLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	ver := sysutil.FirstNonEmpty(version, os.Getenv("APP_VERSION"), "dev")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	if err := seed(ctx, db, cfg); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", ver).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(sctx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	if err := repo.Close(db); err != nil {
		log.Error().Err(err).Msg("close database")
	}
}
