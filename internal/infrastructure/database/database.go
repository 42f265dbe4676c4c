package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver

	"github.com/nerrad567/lumen-core/internal/infrastructure/config"
)

const (
	dirPermissions  = 0o750
	filePermissions = 0o600

	connMaxLifetime = time.Hour
	connMaxIdleTime = 30 * time.Minute
)

// ErrNoPath is returned by Open when Config.Path is empty.
var ErrNoPath = errors.New("database: no path configured")

// Config describes the state database.
type Config struct {
	// Path of the SQLite file. Missing parent directories are created.
	Path string

	// WALMode lets API reads proceed while the persistence syncer writes.
	WALMode bool

	// BusyTimeout in seconds.
	BusyTimeout int
}

// FromConfig maps the database section of the daemon config.
func FromConfig(cfg config.DatabaseConfig) Config {
	return Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	}
}

// dsn builds the go-sqlite3 connection string.
// See https://github.com/mattn/go-sqlite3#connection-string.
func (c Config) dsn() string {
	q := url.Values{}
	q.Set("_busy_timeout", strconv.Itoa(c.BusyTimeout*int(time.Second/time.Millisecond)))
	q.Set("_foreign_keys", "on")
	if c.WALMode {
		q.Set("_journal_mode", "WAL")
		q.Set("_synchronous", "NORMAL")
	}
	return "file:" + c.Path + "?" + q.Encode()
}

// DB is the daemon's state database.
type DB struct {
	*sql.DB
	path string
}

// Open opens (creating if needed) the database at cfg.Path and pings it
// within ctx.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, ErrNoPath
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	configurePool(sqlDB)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	// The file exists after the first ping; tighten its mode.
	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // best effort

	return &DB{DB: sqlDB, path: cfg.Path}, nil
}

// configurePool limits the pool to the single writer SQLite allows.
func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)
}

// Close closes the database. It is safe on a nil DB.
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck runs a trivial query.
func (db *DB) HealthCheck(ctx context.Context) error {
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// BeginTx starts a transaction. Callers defer Rollback, which is a no-op
// after Commit.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return tx, nil
}
