// Package store persists family graphs in SQLite.
package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB is a SQLite-backed graph provider.
type DB struct {
	*sql.DB
	Path string
}

// connPragmas are applied by the driver to every pooled connection, so
// foreign keys and the busy timeout hold no matter which connection runs a
// statement.
var connPragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// DefaultDBPath returns ~/.lineage/lineage.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".lineage", "lineage.db"), nil
}

// dsn builds a modernc file URI carrying the connection pragmas.
func dsn(path string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// Open opens (or creates) the database at path and brings its schema up
// to date.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	return open(path, 0)
}

// OpenMemory opens a private in-memory database, used by tests.
func OpenMemory() (*DB, error) {
	// every connection to :memory: is a separate database
	return open(":memory:", 1)
}

func open(path string, maxConns int) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(maxConns)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connect sqlite %s: %w", path, err)
	}

	db := &DB{DB: sqlDB, Path: path}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
