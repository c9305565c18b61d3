package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewDBConnection opens the pool and pings it. SQLite is opened through modernc and bound
// with question-mark placeholders; every query in this package goes through Rebind.
func NewDBConnection(driver, dsn string) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case DriverPostgres, "":
		db, err = sqlx.Open(DriverPostgres, dsn)
	case DriverSQLite:
		var sqlDB *sql.DB
		sqlDB, err = sql.Open(DriverSQLite, dsn)
		if err == nil {
			db = sqlx.NewDb(sqlDB, "sqlite3")
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if db.DriverName() == "sqlite3" {
		// a single writer keeps in-memory databases shared across the pool
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return db, nil
}

// Migrate applies the schema for the connection's dialect. Statements are idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	name := "migrations/postgres.sql"
	if db.DriverName() == "sqlite3" {
		name = "migrations/sqlite.sql"
	}
	schema, err := migrationsFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
