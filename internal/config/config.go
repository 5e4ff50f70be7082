// Package config loads gymtrack settings from the environment.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvProduction is the GYMTRACK_ENV value that tightens startup checks.
const EnvProduction = "production"

// Storage drivers accepted by GYMTRACK_DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config aggregates application configuration values.
type Config struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
	DB              DBConfig
	Rules           RulesConfig
	Logging         LoggingConfig
	Perf            PerfConfig
	Security        SecurityConfig
	Report          ReportConfig
}

// DBConfig selects and locates the member store.
type DBConfig struct {
	Driver string
	Path   string // sqlite file
	URL    string // postgres DSN
}

// RulesConfig tunes the membership policy.
type RulesConfig struct {
	MinNameLength        int
	MinPhoneLength       int
	DefaultMembershipFee int64
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level  string
	Format string // text|json
}

// PerfConfig holds slow-operation thresholds.
type PerfConfig struct {
	SlowQuery   time.Duration
	SlowRequest time.Duration
}

// SecurityConfig holds auth, rate limit and CSRF settings.
type SecurityConfig struct {
	APIKey          string
	APIKeyHash      string
	CSRFKey         []byte // nil means generate one at startup
	RateLimitPerSec float64
	RateLimitBurst  int
}

// ReportConfig configures emailed member reports.
type ReportConfig struct {
	ResendKey string
	From      string
	To        []string
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads .env (if present) and then the process environment.
// POST: every malformed value is reported; nothing is silently defaulted
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	p := parser{getenv: getenv}
	cfg := Config{
		Addr:            p.str("GYMTRACK_ADDR", ":8080"),
		Env:             p.str("GYMTRACK_ENV", "development"),
		ShutdownTimeout: p.duration("GYMTRACK_SHUTDOWN_TIMEOUT", 10*time.Second),
		DB: DBConfig{
			Driver: strings.ToLower(p.str("GYMTRACK_DB_DRIVER", DriverSQLite)),
			Path:   p.str("GYMTRACK_DB_PATH", "gymtrack.db"),
			URL:    getenv("GYMTRACK_DATABASE_URL"),
		},
		Rules: RulesConfig{
			MinNameLength:        p.integer("GYMTRACK_MIN_NAME_LENGTH", 2),
			MinPhoneLength:       p.integer("GYMTRACK_MIN_PHONE_LENGTH", 8),
			DefaultMembershipFee: p.int64Value("GYMTRACK_DEFAULT_MEMBERSHIP_FEE", 100000),
		},
		Logging: LoggingConfig{
			Level:  p.str("GYMTRACK_LOG_LEVEL", "info"),
			Format: p.str("GYMTRACK_LOG_FORMAT", "text"),
		},
		Perf: PerfConfig{
			SlowQuery:   time.Duration(p.integer("GYMTRACK_SLOW_QUERY_MS", 50)) * time.Millisecond,
			SlowRequest: time.Duration(p.integer("GYMTRACK_SLOW_REQUEST_MS", 200)) * time.Millisecond,
		},
		Security: SecurityConfig{
			APIKey:          getenv("GYMTRACK_API_KEY"),
			APIKeyHash:      getenv("GYMTRACK_API_KEY_HASH"),
			RateLimitPerSec: p.float("GYMTRACK_RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:  p.integer("GYMTRACK_RATE_LIMIT_BURST", 20),
		},
		Report: ReportConfig{
			ResendKey: getenv("GYMTRACK_RESEND_KEY"),
			From:      p.str("GYMTRACK_REPORT_FROM", "GymTrack <reports@gymtrack.local>"),
			To:        splitList(getenv("GYMTRACK_REPORT_TO")),
		},
	}

	if raw := getenv("GYMTRACK_CSRF_KEY"); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil || len(key) != 32 {
			p.fail("GYMTRACK_CSRF_KEY", raw, errors.New("must be 64 hex characters"))
		}
		cfg.Security.CSRFKey = key
	}

	if err := cfg.validate(); err != nil {
		p.errs = append(p.errs, err)
	}
	if len(p.errs) > 0 {
		return Config{}, errors.Join(p.errs...)
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	switch c.DB.Driver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.DB.URL == "" {
			errs = append(errs, errors.New("GYMTRACK_DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("GYMTRACK_DB_DRIVER %q is not one of sqlite, postgres, memory", c.DB.Driver))
	}
	if c.Rules.MinNameLength <= 0 || c.Rules.MinPhoneLength <= 0 {
		errs = append(errs, errors.New("minimum name and phone lengths must be positive"))
	}
	if c.Rules.DefaultMembershipFee <= 0 {
		errs = append(errs, errors.New("GYMTRACK_DEFAULT_MEMBERSHIP_FEE must be positive"))
	}
	if c.Security.RateLimitPerSec < 0 || c.Security.RateLimitBurst < 0 {
		errs = append(errs, errors.New("rate limit values cannot be negative"))
	}
	if c.IsProduction() && len(c.Security.CSRFKey) == 0 {
		errs = append(errs, errors.New("GYMTRACK_CSRF_KEY is required in production"))
	}
	return errors.Join(errs...)
}

// parser collects every malformed value instead of stopping at the first.
type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) fail(key, raw string, err error) {
	p.errs = append(p.errs, fmt.Errorf("invalid %s value %q: %w", key, raw, err))
}

func (p *parser) str(key, fallback string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (p *parser) integer(key string, fallback int) int {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func (p *parser) int64Value(key string, fallback int64) int64 {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
