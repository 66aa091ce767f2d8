package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator drives schema migrations through golang-migrate, reading SQL
// pairs from a directory and logging what it applied.
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New builds a Migrator on an open connection.
func New(db *sql.DB, migrationsPath string, log *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL(migrationsPath), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{m: m, log: log}, nil
}

// NewFromURL builds a Migrator that opens its own connection from a
// database URL.
func NewFromURL(databaseURL, migrationsPath string, log *zap.Logger) (*Migrator, error) {
	m, err := migrate.New(sourceURL(migrationsPath), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{m: m, log: log}, nil
}

// Up applies every pending migration.
func (m *Migrator) Up() error {
	m.log.Info("Applying pending migrations")

	changed, err := m.apply(m.m.Up)
	if err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	}
	if !changed {
		m.log.Info("Schema already up to date")
		return nil
	}

	m.logVersion("Migrations applied")
	return nil
}

// Down rolls back every applied migration.
func (m *Migrator) Down() error {
	m.log.Info("Rolling back all migrations")

	changed, err := m.apply(m.m.Down)
	if err != nil {
		return fmt.Errorf("migration down failed: %w", err)
	}
	if !changed {
		m.log.Info("Nothing to roll back")
		return nil
	}

	m.log.Info("All migrations rolled back")
	return nil
}

// Steps applies n migrations, negative n rolls back.
func (m *Migrator) Steps(n int) error {
	m.log.Info("Applying migration steps", zap.Int("steps", n))

	changed, err := m.apply(func() error { return m.m.Steps(n) })
	if err != nil {
		return fmt.Errorf("migration steps failed: %w", err)
	}
	if !changed {
		m.log.Info("Schema already up to date")
		return nil
	}

	m.logVersion("Migration steps applied")
	return nil
}

// GoTo migrates up or down until the schema sits at the given version.
func (m *Migrator) GoTo(version uint) error {
	m.log.Info("Migrating to version", zap.Uint("target_version", version))

	changed, err := m.apply(func() error { return m.m.Migrate(version) })
	if err != nil {
		return fmt.Errorf("migration to version %d failed: %w", version, err)
	}
	if !changed {
		m.log.Info("Already at target version")
		return nil
	}

	m.log.Info("Migration to version completed", zap.Uint("version", version))
	return nil
}

// Version reports the current schema version. A pristine database
// reports version zero.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force overwrites the recorded version without running migrations.
// Only for recovering a dirty schema.
func (m *Migrator) Force(version int) error {
	m.log.Warn("Forcing migration version", zap.Int("version", version))

	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}

	m.log.Info("Migration version forced", zap.Int("version", version))
	return nil
}

// Drop removes every object in the database.
func (m *Migrator) Drop() error {
	m.log.Warn("Dropping database, all data will be lost")

	if err := m.m.Drop(); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}

	m.log.Info("Database dropped")
	return nil
}

// Close releases the source and database handles.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.m.Close()
	if sourceErr != nil {
		return fmt.Errorf("failed to close source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close database: %w", dbErr)
	}
	return nil
}

// apply runs op, reporting whether anything changed. migrate.ErrNoChange
// is a normal outcome, not an error.
func (m *Migrator) apply(op func() error) (bool, error) {
	err := op()
	if errors.Is(err, migrate.ErrNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// logVersion records the schema version reached by a successful run.
func (m *Migrator) logVersion(msg string) {
	version, dirty, err := m.m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		m.log.Warn("Could not read migration version", zap.Error(err))
		return
	}
	m.log.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
}

func sourceURL(migrationsPath string) string {
	return "file://" + migrationsPath
}
