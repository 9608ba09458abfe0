package db

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/diewo77/go-crm/internal/config"
	"github.com/diewo77/go-crm/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"
)

// MigrationsDir holds the versioned SQL files applied when MIGRATIONS=1.
var MigrationsDir = "migrations"

// Migrate brings the schema up to date. With cfg.App.Migrations on a postgres
// store it applies the SQL files through golang-migrate; otherwise it falls
// back to gorm AutoMigrate (development and sqlite).
func Migrate(db *gorm.DB, cfg *config.Config) error {
	if cfg.App.Migrations && cfg.Database.Driver != "sqlite" {
		slog.Info("running sql migrations", "dir", MigrationsDir)
		return runSQLMigrations(cfg.Database.URL())
	}
	return AutoMigrate(db)
}

// AutoMigrate creates or alters tables from the gorm models.
func AutoMigrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

func runSQLMigrations(url string) error {
	m, err := migrate.New("file://"+MigrationsDir, url)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
