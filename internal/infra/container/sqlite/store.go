// Package sqlite stores case containers in a single-file SQLite database,
// one database per case path.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"flowcore/internal/infra/container"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS slots (
	name TEXT PRIMARY KEY,
	content_type TEXT NOT NULL,
	payload BLOB NOT NULL
);`

// Store is a case container backed by one SQLite database file.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the case database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create case directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open case database: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare case database: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) ReadSlot(ctx context.Context, name string) (container.Slot, error) {
	slot := container.Slot{Name: name}
	row := s.db.QueryRowContext(ctx,
		`SELECT content_type, payload FROM slots WHERE name = ?`, name)
	if err := row.Scan(&slot.ContentType, &slot.Payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return container.Slot{}, fmt.Errorf("%w: %q", container.ErrSlotNotFound, name)
		}
		return container.Slot{}, fmt.Errorf("read slot %q: %w", name, err)
	}
	return slot, nil
}

func (s *Store) WriteSlot(ctx context.Context, slot container.Slot) error {
	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT content_type FROM slots WHERE name = ?`, slot.Name).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("inspect slot %q: %w", slot.Name, err)
	case existing != slot.ContentType:
		return fmt.Errorf("%w: slot %q holds %q", container.ErrContentType, slot.Name, existing)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO slots (name, content_type, payload) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload`,
		slot.Name, slot.ContentType, slot.Payload)
	if err != nil {
		return fmt.Errorf("write slot %q: %w", slot.Name, err)
	}
	return nil
}

func (s *Store) Driver() container.Driver { return container.DriverSQLite }

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }
