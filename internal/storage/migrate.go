package storage

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrator applies the shopping-list schema migrations under
// migrations/postgres to the configured database.
type Migrator struct {
	databaseURL    string
	migrationsPath string
}

// NewMigrator builds a Migrator for the given connection URL and
// migrations directory. Use DatabaseURL to derive the URL from config.
func NewMigrator(databaseURL, migrationsPath string) *Migrator {
	return &Migrator{databaseURL: databaseURL, migrationsPath: migrationsPath}
}

func (mg *Migrator) open() (*migrate.Migrate, error) {
	m, err := migrate.New("file://"+mg.migrationsPath, mg.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}
	return m, nil
}

// Up applies all pending migrations. An already up-to-date schema is
// not an error.
func (mg *Migrator) Up() error {
	m, err := mg.open()
	if err != nil {
		return err
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func (mg *Migrator) Down() error {
	m, err := mg.open()
	if err != nil {
		return err
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Steps(-1); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// Version reports the current schema version. A database that has never
// been migrated reports version 0.
func (mg *Migrator) Version() (version uint, dirty bool, err error) {
	m, err := mg.open()
	if err != nil {
		return 0, false, err
	}
	defer func() {
		_, _ = m.Close()
	}()

	version, dirty, err = m.Version()
	if err == migrate.ErrNilVersion {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}
