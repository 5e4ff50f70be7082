package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// migration is one forward-only schema step. The DDL is shared by both
// dialects.
type migration struct {
	version int
	name    string
	ddl     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create member",
		ddl: `
	CREATE TABLE IF NOT EXISTS member (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone_number TEXT NOT NULL UNIQUE,
		join_date TEXT NOT NULL,
		total_membership BIGINT NOT NULL,
		paid_amount BIGINT NOT NULL DEFAULT 0,
		last_payment_date TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_member_join_date ON member (join_date, created_at);
	`,
	},
	{
		version: 2,
		name:    "create member_payment",
		ddl: `
	CREATE TABLE IF NOT EXISTS member_payment (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL REFERENCES member(id) ON DELETE CASCADE,
		amount BIGINT NOT NULL,
		method TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		paid_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_member_payment_member ON member_payment (member_id, paid_at);
	`,
	},
}

// LatestSchemaVersion returns the version the last migration produces.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the highest applied migration, or 0 for a fresh
// database.
// PRE: db is a valid database connection
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v sql.NullInt64
	err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB brings the schema up to LatestSchemaVersion.
// PRE: db is a valid database connection for dialect
// POST: every pending migration is applied in its own transaction
// INVARIANT: already-applied migrations are never re-run
func MigrateDB(ctx context.Context, db *sql.DB, d Dialect) error {
	if d == DialectSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, db, d, m); err != nil {
			return err
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name)
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, d Dialect, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", m.version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.ddl); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
	}
	_, err = tx.ExecContext(ctx,
		d.Rebind("INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)"),
		m.version, m.name, FormatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("migration %d: record version: %w", m.version, err)
	}
	return tx.Commit()
}
