// Package perf keeps a bounded in-process history of request and query
// timings for the admin performance endpoint.
package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Label      string // route pattern for requests, statement kind for queries
	StatusCode int    // 0 for queries
	Failed     bool
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer of timing entries.
// When full, the oldest entry is overwritten.
type Collector struct {
	mu       sync.Mutex
	entries  []Entry
	pos      int
	requests int64
	queries  int64
}

// NewCollector creates a collector holding at most size entries.
// POST: size <= 0 falls back to DefaultRingSize
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry when the buffer is full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	if e.Kind == KindQuery {
		atomic.AddInt64(&c.queries, 1)
	} else {
		atomic.AddInt64(&c.requests, 1)
	}
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.requests) + atomic.LoadInt64(&c.queries)
}

// Snapshot holds aggregated performance data computed on read.
type Snapshot struct {
	Since          time.Time `json:"since"`
	TotalRequests  int64     `json:"totalRequests"`
	TotalQueries   int64     `json:"totalQueries"`
	WindowRequests int       `json:"windowRequests"`
	WindowErrors   int       `json:"windowErrors"`
	RequestP50Ms   float64   `json:"requestP50Ms"`
	RequestP95Ms   float64   `json:"requestP95Ms"`
	RequestP99Ms   float64   `json:"requestP99Ms"`
	SlowestRoutes  []Stat    `json:"slowestRoutes"`
	SlowestQueries []Stat    `json:"slowestQueries"`
}

// Stat aggregates timings for one label.
type Stat struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Errors  int     `json:"errors"`
	AvgMs   float64 `json:"avgMs"`
	MaxMs   float64 `json:"maxMs"`
	TotalMs float64 `json:"totalMs"`
}

// Snapshot aggregates entries recorded at or after since, keeping the topN
// slowest labels of each kind.
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	var durations []float64
	var failed int
	routes := make(map[string]*Stat)
	queries := make(map[string]*Stat)

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		group := queries
		if e.Kind == KindRequest {
			group = routes
			durations = append(durations, e.DurationMs)
			if e.Failed {
				failed++
			}
		}
		s, ok := group[e.Label]
		if !ok {
			s = &Stat{Label: e.Label}
			group[e.Label] = s
		}
		s.Count++
		s.TotalMs += e.DurationMs
		s.MaxMs = math.Max(s.MaxMs, e.DurationMs)
		if e.Failed {
			s.Errors++
		}
	}

	snap := Snapshot{
		Since:          since,
		TotalRequests:  atomic.LoadInt64(&c.requests),
		TotalQueries:   atomic.LoadInt64(&c.queries),
		WindowRequests: len(durations),
		WindowErrors:   failed,
		SlowestRoutes:  slowest(routes, topN),
		SlowestQueries: slowest(queries, topN),
	}
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// slowest returns up to n stats ordered by average duration, slowest first.
func slowest(stats map[string]*Stat, n int) []Stat {
	list := make([]Stat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Label < list[j].Label
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
