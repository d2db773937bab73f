package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"deskbuddy/internal/config"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

var (
	// ErrUnsupportedDriver is returned for a store driver other than sqlite or mysql.
	ErrUnsupportedDriver = errors.New("unsupported store driver")
	// ErrNotInitialized is returned by OpenExisting when the SQLite file is absent.
	ErrNotInitialized = errors.New("store not initialized")
)

// Store manages productivity record persistence.
type Store struct {
	db     *sql.DB
	driver string
	path   string
	now    func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the clock used to decide what "today" means.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open connects to the configured store, creating the SQLite file and its
// parent directory when needed. The schema is not touched; call Initialize.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Store, error) {
	if cfg.Store.Driver == DriverSQLite || cfg.Store.Driver == "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure store directory: %w", err)
		}
	}
	return open(ctx, cfg, opts...)
}

// OpenExisting connects to a store that must already exist.
func OpenExisting(ctx context.Context, cfg *config.Config, opts ...Option) (*Store, error) {
	if cfg.Store.Driver == DriverSQLite || cfg.Store.Driver == "" {
		if _, err := os.Stat(cfg.Store.Path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s does not exist (run --setup)", ErrNotInitialized, cfg.Store.Path)
			}
			return nil, fmt.Errorf("stat store: %w", err)
		}
	}
	return open(ctx, cfg, opts...)
}

func open(ctx context.Context, cfg *config.Config, opts ...Option) (*Store, error) {
	ctx = ensureContext(ctx)
	driver := cfg.Store.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	var (
		db   *sql.DB
		path string
		err  error
	)
	switch driver {
	case DriverSQLite:
		path = cfg.Store.Path
		db, err = openSQLite(path)
	case DriverMySQL:
		path, err = describeDSN(cfg.Store.DSN)
		if err == nil {
			db, err = openMySQL(ctx, cfg.Store.DSN)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, driver: driver, path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return db, nil
}

func openMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql db: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(4)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// describeDSN renders a DSN without its password for logs and status output.
func describeDSN(dsn string) (string, error) {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	return fmt.Sprintf("%s@%s(%s)/%s", parsed.User, parsed.Net, parsed.Addr, parsed.DBName), nil
}

// Driver returns the backend name.
func (s *Store) Driver() string { return s.driver }

// Location returns the SQLite path or a password-free MySQL address.
func (s *Store) Location() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
