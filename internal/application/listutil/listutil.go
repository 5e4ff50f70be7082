package listutil

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Pagination defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page  int // 1-indexed page number
	Limit int // rows per page
}

// Offset returns the row offset for the page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Normalize replaces out-of-range values with the defaults.
func (p PageParams) Normalize() PageParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

// ParsePageParams extracts page and limit from URL query values.
// PRE: none
// POST: absent values take the defaults; present values must be integers
// with page >= 1 and 1 <= limit <= MaxLimit, otherwise an error is returned
func ParsePageParams(q url.Values) (PageParams, error) {
	p := PageParams{Page: DefaultPage, Limit: DefaultLimit}
	var errs []error

	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs = append(errs, errors.New("page must be an integer"))
		case n < 1:
			errs = append(errs, errors.New("page must be at least 1"))
		default:
			p.Page = n
		}
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs = append(errs, errors.New("limit must be an integer"))
		case n < 1 || n > MaxLimit:
			errs = append(errs, fmt.Errorf("limit must be between 1 and %d", MaxLimit))
		default:
			p.Limit = n
		}
	}
	return p, errors.Join(errs...)
}

// PageInfo carries pagination metadata for a list response.
type PageInfo struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalCount int  `json:"totalCount"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0, limit > 0, page >= 1
// POST: TotalPages = ceil(total/limit), which is 0 for an empty result;
// Page is reported as requested, not clamped
func NewPageInfo(page, limit, total int) PageInfo {
	if limit < 1 {
		limit = DefaultLimit
	}
	if page < 1 {
		page = DefaultPage
	}
	totalPages := (total + limit - 1) / limit
	return PageInfo{
		Page:       page,
		Limit:      limit,
		TotalCount: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// DateLayout is the calendar-date form accepted for list filters.
const DateLayout = "2006-01-02"

// ParseDateBound parses a filter date given as YYYY-MM-DD or RFC3339.
// A date-only upper bound covers the whole day, so endOfDay moves it to
// the last nanosecond of that day (UTC). Empty input yields nil.
func ParseDateBound(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", raw)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
