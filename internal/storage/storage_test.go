package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-pagebuilder/internal/storage"
	"github.com/goliatone/go-pagebuilder/pkg/testsupport"
)

func TestNormalizeDriver(t *testing.T) {
	cases := map[string]string{
		"":           storage.DriverSQLite,
		"SQLite":     storage.DriverSQLite,
		"pgx":        storage.DriverPostgres,
		"postgresql": storage.DriverPostgres,
	}
	for input, want := range cases {
		got, err := storage.NormalizeDriver(input)
		if err != nil || got != want {
			t.Fatalf("%q: expected %s, got %s (%v)", input, want, got, err)
		}
	}
	if _, err := storage.NormalizeDriver("mysql"); !errors.Is(err, storage.ErrDriverUnsupported) {
		t.Fatalf("expected unsupported driver, got %v", err)
	}
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := storage.Open(context.Background(), storage.Config{Driver: "sqlite3"}); !errors.Is(err, storage.ErrDSNRequired) {
		t.Fatalf("expected ErrDSNRequired, got %v", err)
	}
}

func TestOpenAndMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, storage.Config{Driver: "sqlite", DSN: testsupport.SQLiteMemoryDSN()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := storage.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := storage.Migrate(ctx, db); err != nil {
		t.Fatalf("second migrate should be a noop: %v", err)
	}

	for _, table := range []string{"component_definitions", "pages", "page_versions"} {
		var count int
		if err := db.NewSelect().TableExpr("sqlite_master").ColumnExpr("count(*)").Where("type = 'table' AND name = ?", table).Scan(ctx, &count); err != nil {
			t.Fatalf("inspect %s: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}
