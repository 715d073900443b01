package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var memoryDBSeq atomic.Int64

// SQLiteMemoryDSN returns a DSN for a private shared-cache in-memory database.
// Each call names a new database so tests do not see each other's rows.
func SQLiteMemoryDSN() string {
	return fmt.Sprintf("file:pagebuilder-%d-%s?mode=memory&cache=shared", memoryDBSeq.Add(1), uuid.NewString()[:8])
}

func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", SQLiteMemoryDSN())
}

// NewBunDB opens an in-memory sqlite database wrapped by bun, runs migrate
// against it and closes it when the test ends.
func NewBunDB(t testing.TB, migrate func(context.Context, *bun.DB) error) *bun.DB {
	t.Helper()
	sqlDB, err := NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	if migrate != nil {
		if err := migrate(context.Background(), db); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db
}
