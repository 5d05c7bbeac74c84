// Package postgres stores case containers in a shared PostgreSQL database,
// keying slots by the case path.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"flowcore/internal/infra/container"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS case_slots (
	case_path TEXT NOT NULL,
	name TEXT NOT NULL,
	content_type TEXT NOT NULL,
	payload BYTEA NOT NULL,
	PRIMARY KEY (case_path, name)
);`

// Store is a case container backed by PostgreSQL.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the database named by dsn and scopes the container to one
// case path.
func Open(dsn, path string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres container driver needs FLOWCORE_POSTGRES_DSN")
	}
	db, err := sql.Open("pgx", dsn)
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
		`SELECT content_type, payload FROM case_slots WHERE case_path = $1 AND name = $2`,
		s.path, name)
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
		`SELECT content_type FROM case_slots WHERE case_path = $1 AND name = $2`,
		s.path, slot.Name).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("inspect slot %q: %w", slot.Name, err)
	case existing != slot.ContentType:
		return fmt.Errorf("%w: slot %q holds %q", container.ErrContentType, slot.Name, existing)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO case_slots (case_path, name, content_type, payload)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (case_path, name) DO UPDATE SET payload = EXCLUDED.payload`,
		s.path, slot.Name, slot.ContentType, slot.Payload)
	if err != nil {
		return fmt.Errorf("write slot %q: %w", slot.Name, err)
	}
	return nil
}

func (s *Store) Driver() container.Driver { return container.DriverPostgres }

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }
