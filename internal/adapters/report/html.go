package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// md renders GFM tables. Raw HTML in the input is escaped (WithUnsafe is
// not set), so member names cannot inject markup.
var md = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(goldmarkHTML.WithXHTML()),
)

// mdEscaper backslash-escapes the markdown punctuation that can change
// table structure or inline formatting.
var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`",
	"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "#", `\#`,
)

func cell(s string) string {
	return mdEscaper.Replace(strings.TrimSpace(strings.ReplaceAll(s, "\n", " ")))
}

// Markdown builds the report as a markdown document.
func Markdown(d Data) string {
	var b strings.Builder
	s := d.Statistics

	fmt.Fprintf(&b, "# Gym Members Report\n\nGenerated %s\n\n", d.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	b.WriteString("## Statistics\n\n| Metric | Value |\n| --- | ---: |\n")
	fmt.Fprintf(&b, "| Total Members | %d |\n", s.TotalMembers)
	fmt.Fprintf(&b, "| Paid Members | %d |\n", s.PaidMembers)
	fmt.Fprintf(&b, "| Partially Paid Members | %d |\n", s.PartiallyPaidMembers)
	fmt.Fprintf(&b, "| Unpaid Members | %d |\n", s.UnpaidMembers)
	fmt.Fprintf(&b, "| Total Revenue | %d |\n", s.TotalRevenue)
	fmt.Fprintf(&b, "| Expected Revenue | %d |\n", s.ExpectedRevenue)
	fmt.Fprintf(&b, "| Remaining Amount | %d |\n\n", s.RemainingAmount)

	b.WriteString("## Members\n\n")
	if len(d.Members) == 0 {
		b.WriteString("No members registered.\n")
		return b.String()
	}
	b.WriteString("| Name | Phone Number | Join Date | Total | Paid | Remaining | Paid % | Status | Last Payment |\n")
	b.WriteString("| --- | --- | --- | ---: | ---: | ---: | ---: | --- | --- |\n")
	for _, m := range d.Members {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %d | %d | %s | %s | %s |\n",
			cell(m.Name),
			cell(m.PhoneNumber),
			formatDate(m.JoinDate),
			m.TotalMembership,
			m.PaidAmount,
			m.RemainingAmount(),
			formatPercentage(m.PaymentPercentage()),
			m.MembershipStatus(),
			formatLastPayment(m.LastPaymentDate),
		)
	}
	return b.String()
}

// WriteHTML renders Markdown(d) through goldmark into a standalone page.
func WriteHTML(w io.Writer, d Data) error {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(d)), &body); err != nil {
		return fmt.Errorf("render report markdown: %w", err)
	}
	title := html.EscapeString("Gym Members Report " + formatDate(d.GeneratedAt))
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>table{border-collapse:collapse}th,td{border:1px solid #ccc;padding:4px 8px}</style>
</head>
<body>
%s</body>
</html>
`, title, body.String())
	return err
}
