// Package storagetest opens throwaway databases for store tests.
package storagetest

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"gymtrack/internal/adapters/storage"
)

// PostgresURLEnv names the variable holding a disposable Postgres DSN.
const PostgresURLEnv = "GYMTRACK_TEST_DATABASE_URL"

// OpenSQLite returns a migrated in-memory SQLite database.
// The pool is pinned to one connection so every query sees the same memory
// database.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(context.Background(), db, storage.DialectSQLite); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// OpenPostgres returns a migrated Postgres database with empty tables, or
// skips the test when PostgresURLEnv is unset.
func OpenPostgres(t testing.TB) *storage.TimedDB {
	t.Helper()
	dsn := os.Getenv(PostgresURLEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresURLEnv)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()
	if err := storage.MigrateDB(ctx, db, storage.DialectPostgres); err != nil {
		t.Fatalf("migrate postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, "TRUNCATE member_payment, member"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return storage.NewTimedDB(db, storage.DialectPostgres)
}
