package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Membrive92/TrackingFinance/pkg/config"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrationStatus describes one migration file relative to the database.
type MigrationStatus struct {
	Version uint
	Name    string
	Applied bool
}

// Migrator applies the embedded, versioned schema migrations for one dialect.
type Migrator struct {
	cfg    *config.Config
	logger *logrus.Entry
}

// NewMigrator creates a migrator for the configured database
func NewMigrator(cfg *config.Config, logger *logrus.Logger) *Migrator {
	return &Migrator{
		cfg:    cfg,
		logger: logger.WithField("component", "migrate"),
	}
}

// Dir is the embedded directory holding the migrations for the configured driver.
func (m *Migrator) Dir() string {
	return "migrations/" + m.cfg.Database.Driver
}

// open builds a migrate instance on a dedicated pool: closing the instance
// closes the database handle it was given.
func (m *Migrator) open() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, m.Dir())
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	driverName, dsn, err := DataSource(m.cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driverName, err)
	}

	var mg *migrate.Migrate
	switch m.cfg.Database.Driver {
	case config.DriverMySQL:
		drv, err := migratemysql.WithInstance(db, &migratemysql.Config{})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to init mysql migration driver: %w", err)
		}
		mg, err = migrate.NewWithInstance("iofs", src, "mysql", drv)
		if err != nil {
			return nil, fmt.Errorf("failed to init migrations: %w", err)
		}
	case config.DriverSQLite:
		drv, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to init sqlite migration driver: %w", err)
		}
		mg, err = migrate.NewWithInstance("iofs", src, "sqlite", drv)
		if err != nil {
			return nil, fmt.Errorf("failed to init migrations: %w", err)
		}
	}

	mg.Log = &migrateLogger{entry: m.logger, verbose: m.cfg.Debug}
	return mg, nil
}

func closeMigrate(mg *migrate.Migrate, logger *logrus.Entry) {
	srcErr, dbErr := mg.Close()
	if srcErr != nil {
		logger.WithError(srcErr).Warn("Failed to close migration source")
	}
	if dbErr != nil {
		logger.WithError(dbErr).Warn("Failed to close migration database")
	}
}

// Up applies every pending migration. It reports whether anything changed.
func (m *Migrator) Up() (bool, error) {
	mg, err := m.open()
	if err != nil {
		return false, err
	}
	defer closeMigrate(mg, m.logger)

	if err := mg.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return true, nil
}

// Down rolls back the last applied migration.
func (m *Migrator) Down() (bool, error) {
	mg, err := m.open()
	if err != nil {
		return false, err
	}
	defer closeMigrate(mg, m.logger)

	if err := mg.Steps(-1); err != nil {
		if errors.Is(err, migrate.ErrNoChange) || errors.Is(err, migrate.ErrNilVersion) || errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to roll back migration: %w", err)
	}
	return true, nil
}

// Force sets the recorded version without running anything, clearing the
// dirty flag left by a failed migration.
func (m *Migrator) Force(version int) error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer closeMigrate(mg, m.logger)

	if err := mg.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Version returns the applied version. ok is false on a fresh database.
func (m *Migrator) Version() (version uint, dirty bool, ok bool, err error) {
	mg, err := m.open()
	if err != nil {
		return 0, false, false, err
	}
	defer closeMigrate(mg, m.logger)

	version, dirty, err = mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, true, nil
}

// Status lists every embedded migration and whether it has been applied.
func (m *Migrator) Status() ([]MigrationStatus, error) {
	current, _, ok, err := m.Version()
	if err != nil {
		return nil, err
	}

	available, err := m.Available()
	if err != nil {
		return nil, err
	}
	for i := range available {
		available[i].Applied = ok && available[i].Version <= current
	}
	return available, nil
}

// Available lists the embedded migrations for the configured driver in order.
func (m *Migrator) Available() ([]MigrationStatus, error) {
	src, err := iofs.New(migrationsFS, m.Dir())
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}
	defer src.Close()

	var list []MigrationStatus
	version, err := src.First()
	for err == nil {
		list = append(list, MigrationStatus{Version: version, Name: migrationName(src, version)})
		version, err = src.Next(version)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	return list, nil
}

func migrationName(src source.Driver, version uint) string {
	r, identifier, err := src.ReadUp(version)
	if err != nil {
		return ""
	}
	r.Close()
	return identifier
}

// CreateMigration writes an empty up/down pair named after the next version
// into dir and returns the paths.
func CreateMigration(dir, name string, next uint) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create migrations directory: %w", err)
	}

	clean := strings.ToLower(strings.Join(strings.Fields(name), "_"))
	if clean == "" {
		return "", "", fmt.Errorf("migration name is required")
	}

	base := fmt.Sprintf("%06d_%s", next, clean)
	up := filepath.Join(dir, base+".up.sql")
	down := filepath.Join(dir, base+".down.sql")

	for _, path := range []string{up, down} {
		if _, err := os.Stat(path); err == nil {
			return "", "", fmt.Errorf("migration file %s already exists", path)
		}
		header := fmt.Sprintf("-- %s\n", filepath.Base(path))
		if err := os.WriteFile(path, []byte(header), 0o644); err != nil {
			return "", "", fmt.Errorf("failed to create migration file: %w", err)
		}
	}
	return up, down, nil
}

// migrateLogger adapts logrus to migrate.Logger.
type migrateLogger struct {
	entry   *logrus.Entry
	verbose bool
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.entry.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func (l *migrateLogger) Verbose() bool {
	return l.verbose
}
