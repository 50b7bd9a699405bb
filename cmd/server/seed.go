package main

import (
	"context"
	"errors"
	"io/fs"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-search-server/internal/config"
	httpapi "github.com/tbourn/go-search-server/internal/http"
	"github.com/tbourn/go-search-server/internal/search"
	"github.com/tbourn/go-search-server/internal/services"
)

// seed loads cfg.Seed.File() into cfg.Seed.Index. A missing file is not an
// error; an existing index is left untouched.
func seed(ctx context.Context, db *gorm.DB, cfg config.Config) error {
	path := cfg.Seed.File()
	paragraphs, err := search.LoadMarkdown(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info().Str("path", path).Msg("no seed file, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	ixSvc, docSvc := httpapi.NewServices(db, cfg)
	n, err := services.Seed(ctx, ixSvc, docSvc, cfg.Seed.Index, paragraphs)
	if err != nil {
		return err
	}
	log.Info().Str("index", cfg.Seed.Index).Int("documents", n).Msg("seeded")
	return nil
}
