// Package sqlite persists raw record payloads to a single SQLite table so a
// restarted client can warm-start its record pool without refetching.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Store is a key/value payload cache keyed by global identifier. Writes are
// upserts; the cache never deletes on its own, staleness is resolved by the
// factory replaying payloads through its parser.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// New opens (creating if needed) the cache database at path. An empty path
// defaults to "inventory-cache.db" in the working directory.
func New(path string) (*Store, error) {
	if path == "" {
		path = "inventory-cache.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS records (
		global_id TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Put upserts one payload under its global identifier.
func (s *Store) Put(globalID string, payload []byte) error {
	if globalID == "" {
		return fmt.Errorf("put: empty global id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(
		`INSERT INTO records (global_id, payload) VALUES (?, ?)
		 ON CONFLICT(global_id) DO UPDATE SET payload = excluded.payload`,
		globalID, payload,
	); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// All returns every cached payload keyed by global identifier.
func (s *Store) All() (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`SELECT global_id, payload FROM records`)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := make(map[string][]byte)
	for rows.Next() {
		var gid string
		var payload []byte
		if err := rows.Scan(&gid, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out[gid] = payload
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
