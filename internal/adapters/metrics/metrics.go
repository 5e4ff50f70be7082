// Package metrics exposes Prometheus instruments for requests, queries and
// membership events on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gymtrack"

// Metrics owns the registry and instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	queryDuration   *prometheus.HistogramVec
	membersCreated  prometheus.Counter
	membersDeleted  prometheus.Counter
	paymentsApplied prometheus.Counter
	paymentRevenue  prometheus.Counter
}

// New registers every instrument plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database call latency by operation.",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"op"}),
		membersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "members_created_total",
			Help:      "Members registered.",
		}),
		membersDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "members_deleted_total",
			Help:      "Members removed.",
		}),
		paymentsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_applied_total",
			Help:      "Payments recorded against members.",
		}),
		paymentRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_amount_total",
			Help:      "Sum of recorded payment amounts.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.queryDuration,
		m.membersCreated,
		m.membersDeleted,
		m.paymentsApplied,
		m.paymentRevenue,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// ObserveQuery records one database call.
func (m *Metrics) ObserveQuery(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) MemberCreated() {
	if m != nil {
		m.membersCreated.Inc()
	}
}

func (m *Metrics) MemberDeleted() {
	if m != nil {
		m.membersDeleted.Inc()
	}
}

// PaymentApplied counts a payment and adds its amount to the revenue counter.
func (m *Metrics) PaymentApplied(amount int64) {
	if m == nil {
		return
	}
	m.paymentsApplied.Inc()
	if amount > 0 {
		m.paymentRevenue.Add(float64(amount))
	}
}
