package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"gymtrack/internal/adapters/http/perf"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface. Stores write '?'
// placeholders, so a bare *sql.DB is only usable for SQLite.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQueryMs is the default threshold for slow query warnings.
const DefaultSlowQueryMs = 50

// QueryObserver receives the latency of every database call.
type QueryObserver interface {
	ObserveQuery(op string, d time.Duration)
}

// TimedDB wraps a *sql.DB to rebind placeholders for its dialect, log slow
// queries and feed timings to a perf collector and a QueryObserver.
type TimedDB struct {
	db        *sql.DB
	dialect   Dialect
	collector *perf.Collector
	observer  QueryObserver
	threshold time.Duration
}

var _ SQLDB = (*TimedDB)(nil)

// TimedDBOption configures a TimedDB.
type TimedDBOption func(*TimedDB)

// WithCollector records every call into c.
func WithCollector(c *perf.Collector) TimedDBOption {
	return func(t *TimedDB) { t.collector = c }
}

// WithObserver reports every call to o.
func WithObserver(o QueryObserver) TimedDBOption {
	return func(t *TimedDB) { t.observer = o }
}

// WithSlowThreshold sets the duration at or above which a query is logged
// at WARN. Non-positive values keep the default.
func WithSlowThreshold(d time.Duration) TimedDBOption {
	return func(t *TimedDB) {
		if d > 0 {
			t.threshold = d
		}
	}
}

// NewTimedDB wraps db with timing instrumentation.
// PRE: db is a valid database connection for dialect
func NewTimedDB(db *sql.DB, dialect Dialect, opts ...TimedDBOption) *TimedDB {
	t := &TimedDB{
		db:        db,
		dialect:   dialect,
		threshold: DefaultSlowQueryMs * time.Millisecond,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RawDB returns the underlying *sql.DB (needed for migrations and pool config).
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// Dialect returns the backend the queries are rebound for.
func (t *TimedDB) Dialect() Dialect {
	return t.dialect
}

func (t *TimedDB) logQuery(op string, start time.Time, err error) {
	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000.0

	if elapsed >= t.threshold {
		slog.Warn("slow_query", "op", op, "duration_ms", durationMs)
	} else {
		slog.Debug("query", "op", op, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Label:      op,
			Failed:     err != nil && err != sql.ErrNoRows,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
	if t.observer != nil {
		t.observer.ObserveQuery(op, elapsed)
	}
}

// ExecContext wraps sql.DB.ExecContext with rebinding and timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, t.dialect.Rebind(query), args...)
	t.logQuery("exec", start, err)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with rebinding and timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, t.dialect.Rebind(query), args...)
	t.logQuery("query", start, err)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with rebinding and timing.
// The row error is only known at Scan, so the entry never counts as failed.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
	t.logQuery("query_row", start, nil)
	return row
}

// PingContext verifies the database connection.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}
