package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymtrack/internal/domain/member"
)

var generated = time.Date(2024, 5, 20, 14, 0, 0, 0, time.UTC)

func sampleData() Data {
	paidAt := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	members := []member.Member{
		{ID: "1", Name: "Ali Hassan", PhoneNumber: "0501234567", JoinDate: generated, TotalMembership: 1000, PaidAmount: 200, LastPaymentDate: &paidAt},
		{ID: "2", Name: "Sara | <b>Ahmed</b>", PhoneNumber: "+966 (50) 222", JoinDate: generated, TotalMembership: 500},
	}
	return Data{GeneratedAt: generated, Members: members, Statistics: member.Summarize(members)}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]string{"": FormatCSV, "CSV": FormatCSV, " html ": FormatHTML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "gym-members-2024-05-20.csv", Filename(FormatCSV, generated))
	assert.Equal(t, "gym-members-2024-05-20.html", Filename(FormatHTML, generated))
	assert.True(t, strings.HasPrefix(ContentType(FormatHTML), "text/html"))
	assert.True(t, strings.HasPrefix(ContentType(FormatCSV), "text/csv"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleData()))

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"Ali Hassan", "0501234567", "2024-05-20", "1000", "200", "800", "20.0%", "partial", "2024-05-01"}, rows[1])
	assert.Equal(t, "-", rows[2][8])
	assert.Equal(t, "unpaid", rows[2][7])

	stats := map[string]string{}
	for _, row := range rows[3:] {
		if len(row) == 2 {
			stats[row[0]] = row[1]
		}
	}
	assert.Equal(t, "2", stats["Total Members"])
	assert.Equal(t, "1500", stats["Expected Revenue"])
	assert.Equal(t, "1300", stats["Remaining Amount"])
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatHTML, sampleData()))
	out := buf.String()

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "Ali Hassan")
	assert.Contains(t, out, "Remaining Amount")
	assert.NotContains(t, out, "<b>Ahmed</b>", "member names must be escaped")
	assert.Contains(t, out, "&lt;b&gt;Ahmed")
}

func TestMarkdownEmptyRoster(t *testing.T) {
	out := Markdown(Data{GeneratedAt: generated})
	assert.Contains(t, out, "No members registered.")
}
