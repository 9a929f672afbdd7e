package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

func TestUpCreatesSlotsTable(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := Up(ctx, goose.DialectSQLite3, db); err != nil {
		t.Fatalf("up: %v", err)
	}
	if err := Up(ctx, goose.DialectSQLite3, db); err != nil {
		t.Fatalf("second up should be a no-op: %v", err)
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM slots`).Scan(&n); err != nil {
		t.Fatalf("slots table missing: %v", err)
	}
}

func TestUpRejectsUnknownDialect(t *testing.T) {
	if err := Up(context.Background(), goose.DialectMySQL, nil); err == nil {
		t.Fatalf("expected unsupported dialect error")
	}
}
