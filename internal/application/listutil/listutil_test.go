package listutil

import (
	"net/url"
	"testing"
	"time"
)

// TestParsePageParams_Defaults verifies default page params when no query values provided.
func TestParsePageParams_Defaults(t *testing.T) {
	p, err := ParsePageParams(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Page != DefaultPage || p.Limit != DefaultLimit {
		t.Errorf("got %+v, want page %d limit %d", p, DefaultPage, DefaultLimit)
	}
}

// TestParsePageParams_Valid verifies correct parsing of valid page and limit values.
func TestParsePageParams_Valid(t *testing.T) {
	p, err := ParsePageParams(url.Values{"page": {"3"}, "limit": {"50"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Page != 3 || p.Limit != 50 {
		t.Errorf("got %+v, want page 3 limit 50", p)
	}
	if p.Offset() != 100 {
		t.Errorf("Offset() = %d, want 100", p.Offset())
	}
}

// TestParsePageParams_Invalid verifies out-of-range and non-numeric values are rejected.
func TestParsePageParams_Invalid(t *testing.T) {
	tests := []struct {
		name string
		q    url.Values
	}{
		{"zero page", url.Values{"page": {"0"}}},
		{"negative page", url.Values{"page": {"-1"}}},
		{"text page", url.Values{"page": {"two"}}},
		{"zero limit", url.Values{"limit": {"0"}}},
		{"limit too large", url.Values{"limit": {"101"}}},
		{"fractional limit", url.Values{"limit": {"2.5"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePageParams(tt.q); err == nil {
				t.Errorf("ParsePageParams(%v) expected error", tt.q)
			}
		})
	}
}

// TestPageParams_Normalize verifies zero values fall back to defaults.
func TestPageParams_Normalize(t *testing.T) {
	p := PageParams{}.Normalize()
	if p.Page != DefaultPage || p.Limit != DefaultLimit {
		t.Errorf("Normalize() = %+v", p)
	}
}

// TestNewPageInfo verifies page count and navigation flags.
func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name               string
		page, limit, total int
		wantPages          int
		wantNext, wantPrev bool
	}{
		{"first of three", 1, 10, 25, 3, true, false},
		{"middle", 2, 10, 25, 3, true, true},
		{"last of three", 3, 10, 25, 3, false, true},
		{"exact fit", 2, 10, 20, 2, false, true},
		{"empty", 1, 10, 0, 0, false, false},
		{"beyond last", 5, 10, 25, 3, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, tt.limit, tt.total)
			if pi.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", pi.TotalPages, tt.wantPages)
			}
			if pi.HasNext != tt.wantNext || pi.HasPrev != tt.wantPrev {
				t.Errorf("HasNext/HasPrev = %v/%v, want %v/%v", pi.HasNext, pi.HasPrev, tt.wantNext, tt.wantPrev)
			}
			if pi.Page != tt.page || pi.TotalCount != tt.total {
				t.Errorf("Page/TotalCount = %d/%d, want %d/%d", pi.Page, pi.TotalCount, tt.page, tt.total)
			}
		})
	}
}

// TestParseDateBound verifies date-only and RFC3339 parsing.
func TestParseDateBound(t *testing.T) {
	from, err := ParseDateBound("2024-01-15", false)
	if err != nil || !from.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v, %v", from, err)
	}

	to, err := ParseDateBound("2024-01-15", true)
	want := time.Date(2024, 1, 15, 23, 59, 59, 999999999, time.UTC)
	if err != nil || !to.Equal(want) {
		t.Errorf("to = %v, %v; want %v", to, err, want)
	}

	exact, err := ParseDateBound("2024-01-15T10:00:00+03:00", true)
	if err != nil || !exact.Equal(time.Date(2024, 1, 15, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("exact = %v, %v", exact, err)
	}

	if none, err := ParseDateBound("  ", false); none != nil || err != nil {
		t.Errorf("blank = %v, %v; want nil, nil", none, err)
	}
	if _, err := ParseDateBound("15/01/2024", false); err == nil {
		t.Error("expected error for unsupported layout")
	}
}
