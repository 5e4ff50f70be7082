package member

// Statistics aggregates membership counts and revenue.
// INVARIANT: PaidMembers + PartiallyPaidMembers + UnpaidMembers == TotalMembers
// INVARIANT: RemainingAmount == ExpectedRevenue - TotalRevenue
type Statistics struct {
	TotalMembers         int   `json:"totalMembers"`
	PaidMembers          int   `json:"paidMembers"`
	PartiallyPaidMembers int   `json:"partiallyPaidMembers"`
	UnpaidMembers        int   `json:"unpaidMembers"`
	TotalRevenue         int64 `json:"totalRevenue"`
	ExpectedRevenue      int64 `json:"expectedRevenue"`
	RemainingAmount      int64 `json:"remainingAmount"`
}

// Add folds one member into the totals.
func (s *Statistics) Add(m Member) {
	s.TotalMembers++
	switch m.MembershipStatus() {
	case StatusPaid:
		s.PaidMembers++
	case StatusPartial:
		s.PartiallyPaidMembers++
	default:
		s.UnpaidMembers++
	}
	s.TotalRevenue += m.PaidAmount
	s.ExpectedRevenue += m.TotalMembership
	s.RemainingAmount = s.ExpectedRevenue - s.TotalRevenue
}

// Summarize computes statistics over members.
func Summarize(members []Member) Statistics {
	var s Statistics
	for _, m := range members {
		s.Add(m)
	}
	return s
}
