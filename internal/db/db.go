// Package db opens the database, applies the schema and seeds starter data.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/go-pos/internal/config"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// Connect opens the configured database, retrying while PostgreSQL starts up.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	if cfg.IsSQLite() {
		return openSQLite(cfg.Path, gcfg)
	}

	dsn := NormalizeDSN(cfg.DSN())
	if dsn == "" {
		return nil, fmt.Errorf("db: empty DSN, check DATABASE_DSN or DB_* settings")
	}
	log.Info().Str("dsn", MaskDSN(dsn)).Msg("connecting to database")

	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i).Msg("database not ready, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("db: connect after %d attempts: %w", connectAttempts, err)
	}
	if err := db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db: ping: %w", err)
	}
	return db, nil
}

// openSQLite opens a file (or memory) database with foreign keys on and a
// single connection, since SQLite allows one writer at a time.
func openSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}
	db, err := gorm.Open(sqlite.Open(dsn), gcfg)
	if err != nil {
		return nil, fmt.Errorf("db: open sqlite %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
