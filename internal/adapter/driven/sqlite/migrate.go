package sqlite

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded snapshot schema on the writer pool and
// returns the resulting schema version.
func RunMigrations(db *DB) (uint, error) {
	m, err := newMigrator(db)
	if err != nil {
		return 0, err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate %s: %w", db.path, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version of %s: %w", db.path, err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d of %s is dirty", version, db.path)
	}

	slog.Debug("snapshot schema ready", "path", db.path, "version", version)
	return version, nil
}

func newMigrator(db *DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load snapshot migrations: %w", err)
	}

	target, err := migratesqlite.WithInstance(db.Writer, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("prepare %s for migration: %w", db.path, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", target)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
