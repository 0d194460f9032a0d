package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/diewo77/go-pos/internal/config"
	"github.com/diewo77/go-pos/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres:// scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var requiredTables = []string{"admins", "products", "orders", "order_items", "payments"}

// Migrate brings the schema up to date. With sqlMigrations on PostgreSQL the
// embedded SQL files run through golang-migrate; otherwise GORM AutoMigrate is used.
func Migrate(db *gorm.DB, cfg config.DatabaseConfig, sqlMigrations bool) error {
	if sqlMigrations && !cfg.IsSQLite() {
		if err := runSQLMigrations(ToURLDSN(NormalizeDSN(cfg.DSN()))); err != nil {
			return fmt.Errorf("db: sql migrations: %w", err)
		}
	} else {
		for _, m := range models.All() {
			if err := db.AutoMigrate(m); err != nil {
				return fmt.Errorf("db: automigrate %T: %w", m, err)
			}
		}
	}
	for _, table := range requiredTables {
		if !db.Migrator().HasTable(table) {
			return errors.New("db: missing table after migration: " + table)
		}
	}
	return nil
}

// runSQLMigrations applies migrations/*.sql using its own connection.
func runSQLMigrations(url string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
