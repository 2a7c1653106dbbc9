package dbpkg

import (
	"database/sql"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	// File system migration source used by migrate.NewWithDatabaseInstance.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies all pending up migrations found in path.
func Migrate(db *sql.DB, path string, logger zerolog.Logger) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return errors.Wrap(err, "create postgres migration driver")
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
	if err != nil {
		return errors.Wrap(err, "create migration instance")
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info().Msg("no new migrations found")
			return nil
		}

		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("path", path).Msg("no migration files found")
			return nil
		}

		var dirtyErr migrate.ErrDirty
		if errors.As(err, &dirtyErr) {
			return errors.Errorf("migration failed: dirty database version %d", dirtyErr.Version)
		}

		return errors.Wrap(err, "migration failed")
	}

	logger.Info().Msg("migrations applied")

	return nil
}
