package sqlerr

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, true},
		{"postgres unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"postgres other", &pgconn.PgError{Code: "23503"}, false},
		{"message fallback", errors.New("UNIQUE constraint failed: pages.slug"), true},
		{"unrelated", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestIsUnavailable(t *testing.T) {
	if !IsUnavailable(fmt.Errorf("query: %w", driver.ErrBadConn)) {
		t.Fatal("expected bad conn to be unavailable")
	}
	if !IsUnavailable(context.DeadlineExceeded) {
		t.Fatal("expected deadline to be unavailable")
	}
	if !IsUnavailable(sqlite3.Error{Code: sqlite3.ErrBusy}) {
		t.Fatal("expected busy database to be unavailable")
	}
	if IsUnavailable(errors.New("syntax error")) {
		t.Fatal("expected syntax error to be available")
	}
	if !IsNoRows(fmt.Errorf("scan: %w", sql.ErrNoRows)) {
		t.Fatal("expected no rows")
	}
}
