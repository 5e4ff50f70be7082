package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	emailPkg "gymtrack/internal/adapters/email"
	web "gymtrack/internal/adapters/http"
	"gymtrack/internal/adapters/http/perf"
	"gymtrack/internal/adapters/metrics"
	"gymtrack/internal/adapters/storage"
	memberStore "gymtrack/internal/adapters/storage/member"
	paymentStore "gymtrack/internal/adapters/storage/payment"
	"gymtrack/internal/application/membership"
	"gymtrack/internal/config"
	"gymtrack/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

// stores bundles the persistence chosen by GYMTRACK_DB_DRIVER.
type stores struct {
	members  memberStore.Store
	payments paymentStore.Store
	db       *storage.TimedDB // nil for the memory driver
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := perf.NewCollector(perf.DefaultRingSize)
	m := metrics.New()

	st, err := openStores(ctx, cfg, collector, m)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer st.db.Close()
	}

	policy := membership.NewPolicy(st.members, membership.Rules{
		MinNameLength:          cfg.Rules.MinNameLength,
		MinPhoneLength:         cfg.Rules.MinPhoneLength,
		DefaultTotalMembership: cfg.Rules.DefaultMembershipFee,
	})

	var sender emailPkg.Sender
	if cfg.Report.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.Report.ResendKey, cfg.Report.From)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender_disabled", "detail", "GYMTRACK_RESEND_KEY is not set; reports will not be delivered")
		}
	}

	deps := web.Deps{
		Members:    st.members,
		Payments:   st.payments,
		Policy:     policy,
		Sender:     sender,
		ReportFrom: cfg.Report.From,
		ReportTo:   cfg.Report.To,
		Collector:  collector,
		Metrics:    m,
	}
	if st.db != nil {
		deps.DB = st.db
	}
	handler, err := web.NewRouter(deps, web.Options{
		Version:         version,
		CSRFKey:         cfg.Security.CSRFKey,
		SecureCookies:   cfg.IsProduction(),
		APIKey:          cfg.Security.APIKey,
		APIKeyHash:      cfg.Security.APIKeyHash,
		RateLimitPerSec: cfg.Security.RateLimitPerSec,
		RateLimitBurst:  cfg.Security.RateLimitBurst,
		SlowRequest:     cfg.Perf.SlowRequest,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting",
			"version", version,
			"addr", cfg.Addr,
			"env", cfg.Env,
			"driver", cfg.DB.Driver,
			"schema", storage.LatestSchemaVersion(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server_stopping", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStores connects and migrates the configured backend.
func openStores(ctx context.Context, cfg config.Config, collector *perf.Collector, m *metrics.Metrics) (stores, error) {
	if cfg.DB.Driver == config.DriverMemory {
		slog.Warn("memory_store_selected", "detail", "data is lost on restart")
		return stores{members: memberStore.NewMemoryStore(), payments: paymentStore.NewMemoryStore()}, nil
	}

	dialect, err := storage.ParseDialect(cfg.DB.Driver)
	if err != nil {
		return stores{}, err
	}
	dsn := cfg.DB.URL
	if dialect == storage.DialectSQLite {
		// WAL mode, foreign keys and a busy timeout for concurrent writers.
		dsn = cfg.DB.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return stores{}, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return stores{}, fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.MigrateDB(ctx, db, dialect); err != nil {
		db.Close()
		return stores{}, fmt.Errorf("migrate database: %w", err)
	}
	slog.Info("database_ready", "driver", dialect, "schema", storage.LatestSchemaVersion())

	timed := storage.NewTimedDB(db, dialect,
		storage.WithCollector(collector),
		storage.WithObserver(m),
		storage.WithSlowThreshold(cfg.Perf.SlowQuery),
	)
	return stores{
		members:  memberStore.NewSQLStore(timed),
		payments: paymentStore.NewSQLStore(timed),
		db:       timed,
	}, nil
}
