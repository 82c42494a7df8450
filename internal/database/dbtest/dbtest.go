// Package dbtest opens throwaway SQLite stores for tests.
package dbtest

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/Membrive92/TrackingFinance/internal/database"
	"github.com/Membrive92/TrackingFinance/pkg/config"
	"github.com/sirupsen/logrus"
)

// Config returns a configuration pointing at a fresh SQLite file under
// t.TempDir().
func Config(t testing.TB) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite},
		SQLite:   config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "tracking.db")},
	}
}

// Logger returns a logger that discards everything.
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// NewStore migrates a fresh SQLite database and opens a store on it. The store
// is closed when the test ends.
func NewStore(t testing.TB) *database.Store {
	t.Helper()

	cfg := Config(t)
	log := Logger()

	if _, err := database.NewMigrator(cfg, log).Up(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store, err := database.Open(cfg, log)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}
