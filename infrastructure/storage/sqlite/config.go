// Package sqlite provides the SQLite-backed knowledge store.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Config configures the knowledge database.
type Config struct {
	// Path is the database file on disk.
	Path string

	// AutoMigrate creates the schema on open when it does not exist.
	AutoMigrate bool

	// JournalMode is the SQLite journal mode. WAL lets retrieval reads
	// proceed while ingestion writes.
	JournalMode string

	// BusyTimeout is how long a statement waits on a locked database.
	BusyTimeout time.Duration

	// MaxOpenConns and MaxIdleConns size the connection pool.
	MaxOpenConns int
	MaxIdleConns int

	// ConnMaxLifetime recycles connections older than this.
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns sensible defaults for a local knowledge base.
func DefaultConfig() Config {
	return Config{
		Path:            "knowledge.db",
		AutoMigrate:     true,
		JournalMode:     "WAL",
		BusyTimeout:     5 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}
}

// Option overrides one configuration setting.
type Option func(*Config)

// WithPath sets the database file.
func WithPath(path string) Option {
	return func(c *Config) {
		c.Path = path
	}
}

// WithJournalMode sets the SQLite journal mode.
func WithJournalMode(mode string) Option {
	return func(c *Config) {
		c.JournalMode = mode
	}
}

// WithBusyTimeout sets how long statements wait on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.BusyTimeout = d
	}
}

// WithPool sizes the connection pool.
func WithPool(open, idle int) Option {
	return func(c *Config) {
		c.MaxOpenConns = open
		c.MaxIdleConns = idle
	}
}

// Errors
var (
	ErrConnectionFailed = errors.New("sqlite: connection failed")
	ErrMigrationFailed  = errors.New("sqlite: migration failed")
)

// openDB opens the knowledge database and applies the pool and pragma
// settings from the configuration.
func openDB(cfg Config) (*sql.DB, error) {
	dsn := "file:" + cfg.Path + "?cache=shared&mode=rwc"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pragmas := []string{"PRAGMA foreign_keys=ON"}
	if cfg.JournalMode != "" {
		pragmas = append(pragmas, "PRAGMA journal_mode="+cfg.JournalMode)
	}
	if cfg.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.BusyTimeout.Milliseconds()))
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.Join(ErrMigrationFailed, err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	return db, nil
}
