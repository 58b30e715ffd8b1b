// Package outcome persists per-concept test results.
//
// One row per concept. Rows are created lazily on the first recorded test
// and updated in place afterwards; nothing here ever deletes them.
package outcome

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/studyloop/studyloop/internal/schedule"

	// Postgres driver for shared multi-session history.
	_ "github.com/lib/pq"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// StorageError wraps storage-layer failures (I/O, corruption, bad DSN).
// Callers must treat it as an error, never as "no history".
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("outcome store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store records and reads test history, backed by SQLite or Postgres.
type Store struct {
	db     *sqlx.DB
	driver string
	policy schedule.Policy

	// now is the clock used by ReadyForTest. Overridden in tests.
	now func() time.Time
}

const schemaDDL = `CREATE TABLE IF NOT EXISTS test_history (
	concept_id    TEXT PRIMARY KEY,
	last_tested   TIMESTAMP,
	correct_count INTEGER NOT NULL DEFAULT 0,
	total_tests   INTEGER NOT NULL DEFAULT 0
)`

// Open connects to the database at dsn and ensures the schema exists.
// driver is "sqlite" or "postgres".
func Open(driver, dsn string, policy schedule.Policy) (*Store, error) {
	switch driver {
	case "sqlite", "postgres":
	default:
		return nil, &StorageError{Op: "open", Err: fmt.Errorf("unsupported driver %q", driver)}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	if driver == "sqlite" {
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, &StorageError{Op: "open", Err: err}
		}
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, &StorageError{Op: "migrate", Err: err}
	}

	return &Store{
		db:     db,
		driver: driver,
		policy: policy,
		now:    time.Now,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// applyPragmas configures SQLite for safe shared access.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. STUDYLOOP_DB environment variable
// 2. $XDG_DATA_HOME/studyloop/studyloop.db
// 3. ~/.local/share/studyloop/studyloop.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("STUDYLOOP_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "studyloop", "studyloop.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
