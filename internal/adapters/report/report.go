// Package report renders the member roster and statistics as downloadable
// CSV or HTML documents.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gymtrack/internal/domain/member"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatHTML = "html"
)

// Data is the content of one report.
type Data struct {
	GeneratedAt time.Time
	Members     []member.Member
	Statistics  member.Statistics
}

// ParseFormat normalises a requested format. Empty means CSV.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unsupported report format %q", s)
}

// Filename is the download name for a report generated at t.
func Filename(format string, t time.Time) string {
	return fmt.Sprintf("gym-members-%s.%s", t.Format("2006-01-02"), format)
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	if format == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

// Render writes d to w in format.
// PRE: format came from ParseFormat
func Render(w io.Writer, format string, d Data) error {
	if format == FormatHTML {
		return WriteHTML(w, d)
	}
	return WriteCSV(w, d)
}

func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func formatLastPayment(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}

func formatPercentage(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
