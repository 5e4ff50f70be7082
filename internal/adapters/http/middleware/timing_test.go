package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"gymtrack/internal/adapters/http/perf"
)

type observed struct {
	method, route string
	status        int
}

type fakeObserver struct {
	mu   sync.Mutex
	seen []observed
}

func (f *fakeObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	f.seen = append(f.seen, observed{method, route, status})
	f.mu.Unlock()
}

func routed(collector *perf.Collector, obs RequestObserver) http.Handler {
	r := chi.NewRouter()
	r.Use(Timing(collector, obs, 0))
	r.Get("/api/v1/members/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/api/v1/members", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	return r
}

// TestTimingMiddleware_EmitsEntry verifies that a request entry is recorded.
func TestTimingMiddleware_EmitsEntry(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := Timing(collector, nil, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/health", nil))

	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
	}
}

// TestTimingMiddleware_RoutePatternLabel verifies entries are labelled by
// route pattern rather than raw path.
func TestTimingMiddleware_RoutePatternLabel(t *testing.T) {
	collector := perf.NewCollector(10)
	obs := &fakeObserver{}
	h := routed(collector, obs)

	for _, id := range []string{"a", "b", "c"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/members/"+id, nil))
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nowhere", nil))

	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	labels := map[string]int{}
	for _, s := range snap.SlowestRoutes {
		labels[s.Label] = s.Count
	}
	if labels["GET /api/v1/members/{id}"] != 3 {
		t.Errorf("route label counts = %v, want 3 for the member pattern", labels)
	}
	if labels["GET "+unmatchedRoute] != 1 {
		t.Errorf("unmatched requests not labelled: %v", labels)
	}

	if len(obs.seen) != 4 {
		t.Fatalf("observer saw %d requests, want 4", len(obs.seen))
	}
	if obs.seen[0].route != "/api/v1/members/{id}" || obs.seen[3].status != http.StatusNotFound {
		t.Errorf("unexpected observations %+v", obs.seen)
	}
}

// TestTimingMiddleware_CapturesStatusCode verifies the status code is captured.
func TestTimingMiddleware_CapturesStatusCode(t *testing.T) {
	obs := &fakeObserver{}
	h := routed(nil, obs)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/members", nil))

	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rr.Code)
	}
	if len(obs.seen) != 1 || obs.seen[0].status != http.StatusCreated {
		t.Errorf("observed %+v, want one 201", obs.seen)
	}
}

// TestTimingMiddleware_NilCollector verifies middleware works without sinks.
func TestTimingMiddleware_NilCollector(t *testing.T) {
	handler := Timing(nil, nil, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/test", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestTimingMiddleware_HandlerPanic verifies that the deferred timing logic
// still runs when a handler panics.
func TestTimingMiddleware_HandlerPanic(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := Timing(collector, nil, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic to propagate, got nil")
		}
		if collector.TotalRecorded() != 1 {
			t.Errorf("TotalRecorded = %d, want 1 (defer must run even on panic)", collector.TotalRecorded())
		}
	}()

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/panic", nil))
}

// TestTimingMiddleware_PoolNoStateLeak verifies that statusWriter pool reuse
// does not leak status codes between requests.
func TestTimingMiddleware_PoolNoStateLeak(t *testing.T) {
	obs := &fakeObserver{}
	handler500 := Timing(nil, obs, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	handler500.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/fail", nil))

	handler200 := Timing(nil, obs, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	rr := httptest.NewRecorder()
	handler200.ServeHTTP(rr, httptest.NewRequest("GET", "/api/ok", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if obs.seen[1].status != http.StatusOK {
		t.Errorf("second observation status = %d, pool leaked 500", obs.seen[1].status)
	}
}

// BenchmarkTimingMiddleware measures per-request overhead.
func BenchmarkTimingMiddleware(b *testing.B) {
	collector := perf.NewCollector(perf.DefaultRingSize)
	handler := Timing(collector, nil, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest("GET", "/api/bench", nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}
