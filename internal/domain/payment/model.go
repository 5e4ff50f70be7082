package payment

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxMethodLength = 30
	MaxNotesLength  = 500
)

// MethodCash is the method recorded when none is given.
const MethodCash = "cash"

// Domain errors
var (
	ErrMissingMember = errors.New("payment must reference a member")
	ErrInvalidAmount = errors.New("payment amount must be greater than 0")
	ErrMethodTooLong = errors.New("payment method cannot exceed 30 characters")
	ErrNotesTooLong  = errors.New("payment notes cannot exceed 500 characters")
)

// Payment is one entry in a member's payment history.
type Payment struct {
	ID       string    `json:"id"`
	MemberID string    `json:"memberId"`
	Amount   int64     `json:"amount"`
	Method   string    `json:"method"`
	Notes    string    `json:"notes"`
	PaidAt   time.Time `json:"paidAt"`
}

// New builds a payment, trimming text fields and defaulting the method.
// POST: Method is MethodCash when method is blank
func New(memberID string, amount int64, method, notes string, paidAt time.Time) Payment {
	method = strings.TrimSpace(method)
	if method == "" {
		method = MethodCash
	}
	return Payment{
		MemberID: memberID,
		Amount:   amount,
		Method:   method,
		Notes:    strings.TrimSpace(notes),
		PaidAt:   paidAt,
	}
}

// Validate checks if the Payment has valid data.
// PRE: Payment struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (p *Payment) Validate() error {
	if p.MemberID == "" {
		return ErrMissingMember
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if len([]rune(p.Method)) > MaxMethodLength {
		return ErrMethodTooLong
	}
	if len([]rune(p.Notes)) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}
