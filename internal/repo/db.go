// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and schema migrations.
package repo

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-search-server/internal/domain"
)

// Connection pool sizing for OpenSQLite.
const (
	maxOpenConns    = 10
	connMaxIdleTime = 5 * time.Minute
	connMaxLifetime = 30 * time.Minute
)

// sqlitePragmas run on every pooled connection, not just the first one.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// DSN appends the connection pragmas to path as _pragma query parameters.
func DSN(path string) string {
	var b strings.Builder
	b.WriteString(path)
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	for _, p := range sqlitePragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

// OpenSQLite opens (or creates) the SQLite database at path and installs the
// OpenTelemetry tracing plugin so every query becomes a span. The parent
// directory must already exist.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(DSN(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxOpenConns)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	return db, nil
}

// AutoMigrate creates or updates the schema for all domain models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Index{},
		&domain.Document{},
		&domain.Idempotency{},
	)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
