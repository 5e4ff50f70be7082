package member

import (
	"encoding/json"
	"time"
)

// Membership status values derived from the paid/fee ratio.
const (
	StatusPaid    = "paid"
	StatusPartial = "partial"
	StatusUnpaid  = "unpaid"
)

// DefaultTotalMembership is the fee assigned when none is supplied.
const DefaultTotalMembership int64 = 100000

// Member holds state for the concept.
// Amounts are whole currency units.
type Member struct {
	ID              string
	Name            string
	PhoneNumber     string
	JoinDate        time.Time
	TotalMembership int64
	PaidAmount      int64
	LastPaymentDate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Fields is the construction input for a Member. Nil pointers and empty
// strings mean "not supplied" and receive defaults in New.
type Fields struct {
	ID              string
	Name            string
	PhoneNumber     string
	JoinDate        *time.Time
	TotalMembership *int64
	PaidAmount      *int64
	LastPaymentDate *time.Time
	CreatedAt       *time.Time
	UpdatedAt       *time.Time
}

// Patch lists the fields an update may change. Nil means unchanged.
type Patch struct {
	Name            *string
	PhoneNumber     *string
	JoinDate        *time.Time
	TotalMembership *int64
	PaidAmount      *int64
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.PhoneNumber == nil && p.JoinDate == nil &&
		p.TotalMembership == nil && p.PaidAmount == nil
}

// New builds a Member from fields, applying defaults for anything omitted.
// PRE: fields have already passed policy validation
// POST: JoinDate, CreatedAt and UpdatedAt default to now; TotalMembership to
// DefaultTotalMembership; PaidAmount to 0; LastPaymentDate stays nil unless given
func New(f Fields, now time.Time) Member {
	m := Member{
		ID:              f.ID,
		Name:            f.Name,
		PhoneNumber:     f.PhoneNumber,
		JoinDate:        now,
		TotalMembership: DefaultTotalMembership,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if f.JoinDate != nil {
		m.JoinDate = *f.JoinDate
	}
	if f.TotalMembership != nil {
		m.TotalMembership = *f.TotalMembership
	}
	if f.PaidAmount != nil {
		m.PaidAmount = *f.PaidAmount
	}
	if f.LastPaymentDate != nil {
		t := *f.LastPaymentDate
		m.LastPaymentDate = &t
	}
	if f.CreatedAt != nil {
		m.CreatedAt = *f.CreatedAt
	}
	if f.UpdatedAt != nil {
		m.UpdatedAt = *f.UpdatedAt
	}
	return m
}

// RemainingAmount is the fee still owed. Negative when the member overpaid.
// INVARIANT: Member fields are not mutated
func (m Member) RemainingAmount() int64 {
	return m.TotalMembership - m.PaidAmount
}

// IsFullyPaid reports whether the paid amount covers the fee.
// INVARIANT: Member fields are not mutated
func (m Member) IsFullyPaid() bool {
	return m.PaidAmount >= m.TotalMembership
}

// PaymentPercentage is paid/fee*100, or 0 when the fee is zero.
// INVARIANT: Member fields are not mutated
func (m Member) PaymentPercentage() float64 {
	if m.TotalMembership == 0 {
		return 0
	}
	return float64(m.PaidAmount) / float64(m.TotalMembership) * 100
}

// MembershipStatus classifies the member as paid, partial or unpaid.
// Fully paid wins over unpaid, so a zero fee with zero paid is "paid".
func (m Member) MembershipStatus() string {
	switch {
	case m.IsFullyPaid():
		return StatusPaid
	case m.PaidAmount == 0:
		return StatusUnpaid
	default:
		return StatusPartial
	}
}

// IsPersisted reports whether the member has been assigned an identity.
func (m Member) IsPersisted() bool {
	return m.ID != ""
}

// ApplyPayment adds amount to PaidAmount and stamps the payment time.
// PRE: amount was checked by the membership policy; no bounds are enforced here
// POST: PaidAmount grows by amount; LastPaymentDate and UpdatedAt equal at
func (m *Member) ApplyPayment(amount int64, at time.Time) {
	m.PaidAmount += amount
	paidAt := at
	m.LastPaymentDate = &paidAt
	m.UpdatedAt = at
}

// ApplyUpdate overwrites the fields present in p.
// PRE: p was checked by the membership policy against this member
// POST: UpdatedAt equals now; ID and CreatedAt are unchanged
func (m *Member) ApplyUpdate(p Patch, now time.Time) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.PhoneNumber != nil {
		m.PhoneNumber = *p.PhoneNumber
	}
	if p.JoinDate != nil {
		m.JoinDate = *p.JoinDate
	}
	if p.TotalMembership != nil {
		m.TotalMembership = *p.TotalMembership
	}
	if p.PaidAmount != nil {
		m.PaidAmount = *p.PaidAmount
	}
	m.UpdatedAt = now
}

// Record is the serialised form of a Member with derived values included.
type Record struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	PhoneNumber       string     `json:"phoneNumber"`
	JoinDate          time.Time  `json:"joinDate"`
	TotalMembership   int64      `json:"totalMembership"`
	PaidAmount        int64      `json:"paidAmount"`
	RemainingAmount   int64      `json:"remainingAmount"`
	IsFullyPaid       bool       `json:"isFullyPaid"`
	PaymentPercentage float64    `json:"paymentPercentage"`
	MembershipStatus  string     `json:"membershipStatus"`
	LastPaymentDate   *time.Time `json:"lastPaymentDate"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// ToRecord flattens the member and its derived values.
func (m Member) ToRecord() Record {
	return Record{
		ID:                m.ID,
		Name:              m.Name,
		PhoneNumber:       m.PhoneNumber,
		JoinDate:          m.JoinDate,
		TotalMembership:   m.TotalMembership,
		PaidAmount:        m.PaidAmount,
		RemainingAmount:   m.RemainingAmount(),
		IsFullyPaid:       m.IsFullyPaid(),
		PaymentPercentage: m.PaymentPercentage(),
		MembershipStatus:  m.MembershipStatus(),
		LastPaymentDate:   m.LastPaymentDate,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// MarshalJSON encodes the member as its Record.
func (m Member) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToRecord())
}

// IsValidStatus reports whether s names a membership status.
func IsValidStatus(s string) bool {
	return s == StatusPaid || s == StatusPartial || s == StatusUnpaid
}
