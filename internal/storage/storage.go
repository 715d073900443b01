// Package storage opens the bun database backing the page builder and
// creates its tables.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	"github.com/goliatone/go-pagebuilder/internal/components"
	"github.com/goliatone/go-pagebuilder/internal/pages"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var (
	ErrDriverUnsupported = errors.New("storage: unsupported driver")
	ErrDSNRequired       = errors.New("storage: dsn required")
)

// Config selects the database driver and connection string.
type Config struct {
	Driver string
	DSN    string
}

// Open connects to the configured database and wraps it with the matching
// bun dialect. sqlite connections are limited to one so transactions
// serialize.
func Open(ctx context.Context, cfg Config) (*bun.DB, error) {
	driver, err := NormalizeDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, ErrDSNRequired
	}

	var (
		sqlDriver string
		dialect   schema.Dialect
	)
	switch driver {
	case DriverSQLite:
		sqlDriver = "sqlite3"
		dialect = sqlitedialect.New()
	case DriverPostgres:
		sqlDriver = "pgx"
		dialect = pgdialect.New()
	}

	sqlDB, err := sql.Open(sqlDriver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return bun.NewDB(sqlDB, dialect), nil
}

// NormalizeDriver maps driver aliases onto the supported drivers.
func NormalizeDriver(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pgx", "pg":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrDriverUnsupported, driver)
	}
}

// Models lists the tables owned by the page builder.
func Models() []any {
	return []any{
		(*components.Definition)(nil),
		(*pages.Page)(nil),
		(*pages.PageVersion)(nil),
	}
}

// Migrate creates missing tables and indexes. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range Models() {
			if _, err := tx.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("create table for %T: %w", model, err)
			}
		}
		if _, err := tx.NewCreateIndex().
			Model((*pages.PageVersion)(nil)).
			Index("page_versions_page_id_idx").
			Column("page_id").
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("create page_versions index: %w", err)
		}
		return nil
	})
}
