package medium

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLite is a Medium backed by a single-table SQLite database. It is the
// backing store for both the durable-local and session-scoped media; only
// the database path differs.
//
// The database is configured with:
//   - WAL mode so foreign processes can read while this one writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for cross-process lock contention
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite creates or opens the item database at path, creating parent
// directories as needed. Safe to call for an already-initialized database.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create medium directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open medium database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect medium database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY inside the process.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply medium schema: %w", err)
	}

	return &SQLite{db: db, path: path}, nil
}

// Path returns the database file path. The sync fallback watcher monitors
// this file for foreign writes.
func (s *SQLite) Path() string {
	return s.path
}

// GetItem returns the value stored under id.
func (s *SQLite) GetItem(id string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM items WHERE id = ?`, id).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get item %q: %w", id, err)
	}
	return value, true, nil
}

// SetItem stores value under id, overwriting any existing item.
func (s *SQLite) SetItem(id, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO items (id, value) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET value = excluded.value
	`, id, value)
	if err != nil {
		return fmt.Errorf("set item %q: %w", id, err)
	}
	return nil
}

// RemoveItem deletes the item. Removing a missing item is not an error.
func (s *SQLite) RemoveItem(id string) error {
	if _, err := s.db.Exec(`DELETE FROM items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove item %q: %w", id, err)
	}
	return nil
}

// Keys returns every item identifier in the database.
func (s *SQLite) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM items`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan item id: %w", err)
		}
		keys = append(keys, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return keys, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
