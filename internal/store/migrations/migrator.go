// Package migrations applies the embedded PostgreSQL schema.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

//go:embed schema/*.sql
var migrationFiles embed.FS

// Migrator runs schema migrations. Closing the migrate instance closes db,
// so callers hand it a dedicated handle.
type Migrator struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewMigrator(db *sql.DB, logger *zap.Logger) *Migrator {
	return &Migrator{db: db, logger: logger}
}

// Open returns a database/sql handle for databaseURL using the pgx driver.
func Open(databaseURL string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	return stdlib.OpenDB(*cfg), nil
}

// Up applies all pending migrations.
func (m *Migrator) Up() error {
	instance, err := m.instance()
	if err != nil {
		return err
	}
	defer instance.Close()

	m.logger.Info("applying database migrations")

	err = instance.Up()

	switch {
	case errors.Is(err, migrate.ErrNoChange):
		m.logger.Info("no migrations to apply")
	case err != nil:
		return fmt.Errorf("run migrations: %w", err)
	default:
		m.logger.Info("migrations applied")
	}

	return nil
}

// Version returns the current schema version.
func (m *Migrator) Version() (uint, bool, error) {
	instance, err := m.instance()
	if err != nil {
		return 0, false, err
	}
	defer instance.Close()

	return instance.Version()
}

func (m *Migrator) instance() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFiles, "schema")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(m.db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create postgres driver: %w", err)
	}

	instance, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}

	return instance, nil
}
