package web

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gymtrack/internal/adapters/email"
	"gymtrack/internal/adapters/http/middleware"
	"gymtrack/internal/adapters/http/perf"
	"gymtrack/internal/adapters/metrics"
	memberStore "gymtrack/internal/adapters/storage/member"
	paymentStore "gymtrack/internal/adapters/storage/payment"
	"gymtrack/internal/application/membership"
)

// Pinger reports backing store reachability for the health endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps holds everything the handlers call into. Built once in main.
type Deps struct {
	Members    memberStore.Store
	Payments   paymentStore.Store
	Policy     *membership.Policy
	Sender     email.Sender
	ReportFrom string
	ReportTo   []string
	DB         Pinger           // optional
	Collector  *perf.Collector  // optional
	Metrics    *metrics.Metrics // optional
	Now        func() time.Time
}

// Options tunes the middleware stack.
type Options struct {
	Version         string
	CSRFKey         []byte // generated when empty
	SecureCookies   bool
	TrustedOrigins  []string
	APIKey          string
	APIKeyHash      string
	RateLimitPerSec float64 // 0 disables rate limiting
	RateLimitBurst  int
	SlowRequest     time.Duration
}

type server struct {
	deps    Deps
	version string
	started time.Time
}

// NewRouter wires HTTP handlers for the API.
// POST: every /api/v1 route except health requires the API key when one is configured
func NewRouter(deps Deps, opts Options) (http.Handler, error) {
	csrfKey := opts.CSRFKey
	if len(csrfKey) == 0 {
		csrfKey = make([]byte, 32)
		if _, err := rand.Read(csrfKey); err != nil {
			return nil, fmt.Errorf("generate CSRF key: %w", err)
		}
		slog.Warn("csrf_key_generated", "detail", "form tokens will not survive a restart; set GYMTRACK_CSRF_KEY")
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	s := &server{deps: deps, version: opts.Version, started: deps.Now()}

	r := chi.NewRouter()
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Timing(deps.Collector, deps.Metrics, opts.SlowRequest))
	if opts.RateLimitPerSec > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		r.Use(middleware.RateLimit(middleware.NewRateLimiter(opts.RateLimitPerSec, burst)))
	}
	r.Use(middleware.CSRF(csrfKey, middleware.CSRFOptions{Secure: opts.SecureCookies, TrustedOrigins: opts.TrustedOrigins}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("cannot %s %s", r.Method, r.URL.Path), nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("cannot %s %s", r.Method, r.URL.Path), nil)
	})

	r.Get("/", s.handleRoot)
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	verifier := middleware.NewKeyVerifier(opts.APIKey, opts.APIKeyHash)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPIKey(verifier))

			r.Get("/csrf-token", s.handleCSRFToken)
			r.Get("/statistics", s.handleStatistics)
			r.Route("/members", func(r chi.Router) {
				r.Get("/", s.handleListMembers)
				r.Post("/", s.handleCreateMember)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetMember)
					r.Put("/", s.handleUpdateMember)
					r.Delete("/", s.handleDeleteMember)
					r.Get("/payments", s.handlePaymentHistory)
					r.Post("/payments", s.handleAddPayment)
				})
			})
			r.Get("/export/members", s.handleExportMembers)
			r.Post("/export/members/email", s.handleEmailReport)
			r.Get("/admin/perf", s.handlePerfSnapshot)
		})
	})
	return r, nil
}
