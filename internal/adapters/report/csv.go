package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{
	"Name",
	"Phone Number",
	"Join Date",
	"Total Membership",
	"Paid Amount",
	"Remaining Amount",
	"Payment Percentage",
	"Status",
	"Last Payment Date",
}

// WriteCSV writes one row per member followed by a blank line and a
// metric/value block with the statistics.
func WriteCSV(w io.Writer, d Data) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, m := range d.Members {
		row := []string{
			m.Name,
			m.PhoneNumber,
			formatDate(m.JoinDate),
			strconv.FormatInt(m.TotalMembership, 10),
			strconv.FormatInt(m.PaidAmount, 10),
			strconv.FormatInt(m.RemainingAmount(), 10),
			formatPercentage(m.PaymentPercentage()),
			m.MembershipStatus(),
			formatLastPayment(m.LastPaymentDate),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	s := d.Statistics
	block := [][]string{
		{},
		{"Metric", "Value"},
		{"Total Members", strconv.Itoa(s.TotalMembers)},
		{"Paid Members", strconv.Itoa(s.PaidMembers)},
		{"Partially Paid Members", strconv.Itoa(s.PartiallyPaidMembers)},
		{"Unpaid Members", strconv.Itoa(s.UnpaidMembers)},
		{"Total Revenue", strconv.FormatInt(s.TotalRevenue, 10)},
		{"Expected Revenue", strconv.FormatInt(s.ExpectedRevenue, 10)},
		{"Remaining Amount", strconv.FormatInt(s.RemainingAmount, 10)},
		{"Generated At", d.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST")},
	}
	if err := cw.WriteAll(block); err != nil {
		return fmt.Errorf("write csv statistics: %w", err)
	}
	return nil
}
