package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Membrive92/TrackingFinance/pkg/config"
	"github.com/Membrive92/TrackingFinance/pkg/models"
	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Store owns the connection pool. Every read and write goes through a unit of
// work opened with InTx.
type Store struct {
	db     *sql.DB
	debug  bool
	logger *logrus.Entry
}

// Open connects to the engine selected by cfg.Database.Driver and pings it.
func Open(cfg *config.Config, logger *logrus.Logger) (*Store, error) {
	driver, dsn, err := DataSource(cfg)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"driver": cfg.Database.Driver,
		"dsn":    redactDSN(cfg),
	}).Debug("Connecting to database")

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Database.Driver, err)
	}

	switch cfg.Database.Driver {
	case config.DriverMySQL:
		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	case config.DriverSQLite:
		// One writer at a time; concurrent units of work queue on the pool.
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", cfg.Database.Driver, err)
	}

	return &Store{
		db:     db,
		debug:  cfg.Debug,
		logger: logger.WithField("component", "store"),
	}, nil
}

// DataSource returns the database/sql driver name and DSN for cfg.
func DataSource(cfg *config.Config) (string, string, error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		return "mysql", mysqlConfig(cfg).FormatDSN(), nil
	case config.DriverSQLite:
		return "sqlite", sqliteDSN(cfg.SQLite.Path), nil
	default:
		return "", "", fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func mysqlConfig(cfg *config.Config) *mysql.Config {
	mc := mysql.NewConfig()
	mc.User = cfg.MySQL.User
	mc.Passwd = cfg.MySQL.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.MySQL.Host, cfg.MySQL.Port)
	mc.DBName = cfg.MySQL.Database
	mc.ParseTime = true
	mc.MultiStatements = true
	mc.Loc = time.UTC
	return mc
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
}

func redactDSN(cfg *config.Config) string {
	if cfg.Database.Driver == config.DriverSQLite {
		return cfg.SQLite.Path
	}
	return fmt.Sprintf("%s:***@tcp(%s:%d)/%s", cfg.MySQL.User, cfg.MySQL.Host, cfg.MySQL.Port, cfg.MySQL.Database)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Health checks database health
func (s *Store) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return &models.StorageError{Op: "ping", Err: err}
	}
	return nil
}

// InTx runs fn inside a transaction. The transaction commits when fn returns
// nil and rolls back on error or panic; the connection is released on every
// path. Driver failures surface as *models.StorageError.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &models.StorageError{Op: "begin", Err: err}
	}

	tx := &Tx{tx: sqlTx, store: s}

	defer func() {
		if p := recover(); p != nil {
			sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.WithError(rbErr).Warn("Rollback failed")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		return classify("", "commit", err)
	}
	return nil
}

// Tx is the handle a unit of work operates on.
type Tx struct {
	tx    *sql.Tx
	store *Store
}

func (t *Tx) trace(query string, args []interface{}) {
	if t.store.debug {
		t.store.logger.WithFields(logrus.Fields{
			"sql":  compact(query),
			"args": args,
		}).Debug("SQL")
	}
}

func (t *Tx) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	t.trace(query, args)
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *Tx) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	t.trace(query, args)
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *Tx) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	t.trace(query, args)
	return t.tx.QueryRowContext(ctx, query, args...)
}

// count runs a SELECT COUNT(*) style query.
func (t *Tx) count(ctx context.Context, op, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := t.queryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, classify("", op, err)
	}
	return n, nil
}
