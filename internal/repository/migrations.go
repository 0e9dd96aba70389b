package repository

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// MigrationsSource is resolved relative to the working directory.
const MigrationsSource = "file://internal/repository/migrations"

// RunMigrations brings the schema (pgvector extension, documents,
// chat_transcript) up to date. A dirty state left by a crashed run is
// forced back one version and retried once.
func RunMigrations(databaseURL string, logger *zap.Logger) error {
	m, err := migrate.New(MigrationsSource, databaseURL)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer m.Close()

	var dirtyErr migrate.ErrDirty

	err = m.Up()
	switch {
	case err == nil, errors.Is(err, migrate.ErrNoChange):
	case errors.As(err, &dirtyErr):
		logger.Warn("database is in a dirty migration state, forcing previous version",
			zap.Int("dirty_version", dirtyErr.Version),
		)

		if err := m.Force(max(dirtyErr.Version-1, 0)); err != nil {
			return fmt.Errorf("force clean migration version: %w", err)
		}

		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("rerun migrations after dirty state: %w", err)
		}
	default:
		return fmt.Errorf("run migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("get migration version: %w", err)
	}

	logger.Info("database migrations applied", zap.Uint("version", version))

	return nil
}
