// Package sqlite persists slots in a single SQLite table, one row per slot
// holding the JSON payload.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"havenlist/internal/infra/slots/migrations"
	"havenlist/pkg/domain"
)

var _ domain.SlotStore = (*Store)(nil)

const defaultPath = "havenlist.db"

// Store is a SQLite-backed slot store.
type Store struct {
	db   *sqlx.DB
	path string
}

// Entry describes one stored slot.
type Entry struct {
	Name      string `db:"name"`
	Size      int    `db:"size"`
	UpdatedAt string `db:"updated_at"`
}

// NewStore opens (or creates) the database at path and applies the slot schema.
func NewStore(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases coherent and serialises writers
	db.SetMaxOpenConns(1)
	if err := migrations.Up(ctx, goose.DialectSQLite3, db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Get loads the payload stored for slot.
func (s *Store) Get(ctx context.Context, slot domain.Slot) ([]byte, bool, error) {
	var payload []byte
	err := s.db.GetContext(ctx, &payload, `SELECT payload FROM slots WHERE name = ?`, string(slot))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select slot %s: %w", slot, err)
	}
	return payload, true, nil
}

// Put upserts the payload for slot.
func (s *Store) Put(ctx context.Context, slot domain.Slot, payload []byte) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO slots(name, payload, updated_at) VALUES(?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(slot), payload); err != nil {
		return fmt.Errorf("upsert %s: %w", slot, err)
	}
	return nil
}

// Entries lists the stored slots ordered by name.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	var out []Entry
	if err := s.db.SelectContext(ctx, &out,
		`SELECT name, length(payload) AS size, updated_at FROM slots ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return out, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db.DB }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
