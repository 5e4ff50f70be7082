// Package membership holds the business rules applied to members before
// they are created, updated or paid, and the statistics derived from them.
package membership

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	domain "gymtrack/internal/domain/member"
)

var phonePattern = regexp.MustCompile(`^[\d \-\+\(\)]+$`)

// Rules are the tunable limits used by the policy.
type Rules struct {
	MinNameLength          int
	MaxNameLength          int
	MinPhoneLength         int
	MaxPhoneLength         int
	DefaultTotalMembership int64
}

// DefaultRules returns the stock configuration.
func DefaultRules() Rules {
	return Rules{
		MinNameLength:          2,
		MaxNameLength:          100,
		MinPhoneLength:         8,
		MaxPhoneLength:         20,
		DefaultTotalMembership: domain.DefaultTotalMembership,
	}
}

// MemberReader is the store access the policy needs.
type MemberReader interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	GetByPhone(ctx context.Context, phone string) (domain.Member, error)
	Statistics(ctx context.Context) (domain.Statistics, error)
}

// Policy validates member changes against Rules and the current store.
type Policy struct {
	store MemberReader
	rules Rules
}

// NewPolicy builds a policy. Zero-valued rules fall back to DefaultRules.
func NewPolicy(store MemberReader, rules Rules) *Policy {
	def := DefaultRules()
	if rules.MinNameLength <= 0 {
		rules.MinNameLength = def.MinNameLength
	}
	if rules.MaxNameLength <= 0 {
		rules.MaxNameLength = def.MaxNameLength
	}
	if rules.MinPhoneLength <= 0 {
		rules.MinPhoneLength = def.MinPhoneLength
	}
	if rules.MaxPhoneLength <= 0 {
		rules.MaxPhoneLength = def.MaxPhoneLength
	}
	if rules.DefaultTotalMembership <= 0 {
		rules.DefaultTotalMembership = def.DefaultTotalMembership
	}
	return &Policy{store: store, rules: rules}
}

// Rules returns the effective rules.
func (p *Policy) Rules() Rules {
	return p.rules
}

// WithDefaults fills in the configured default fee when f has none.
func (p *Policy) WithDefaults(f domain.Fields) domain.Fields {
	if f.TotalMembership == nil {
		fee := p.rules.DefaultTotalMembership
		f.TotalMembership = &fee
	}
	return f
}

// ValidateNewMember checks creation input.
// PRE: text fields are trimmed
// POST: returns *domain.ValidationError listing every failed field rule, or
// domain.ErrDuplicatePhone when the rules pass but the phone is taken
func (p *Policy) ValidateNewMember(ctx context.Context, f domain.Fields) error {
	var msgs []string
	msgs = append(msgs, p.checkName(f.Name)...)
	msgs = append(msgs, p.checkPhone(f.PhoneNumber)...)

	fee := p.rules.DefaultTotalMembership
	if f.TotalMembership != nil {
		fee = *f.TotalMembership
		if fee <= 0 {
			msgs = append(msgs, "total membership must be greater than 0")
		}
	}
	if f.PaidAmount != nil {
		paid := *f.PaidAmount
		switch {
		case paid < 0:
			msgs = append(msgs, "paid amount cannot be negative")
		case paid > fee:
			msgs = append(msgs, "paid amount cannot exceed total membership")
		}
	}
	if len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}
	return p.checkPhoneFree(ctx, f.PhoneNumber, "")
}

// ValidateUpdate checks a patch against the member it will be applied to.
// PRE: patch text fields are trimmed
// POST: paid amount never exceeds the fee that will be in effect afterwards
func (p *Policy) ValidateUpdate(ctx context.Context, existing domain.Member, patch domain.Patch) error {
	var msgs []string
	if patch.Name != nil {
		msgs = append(msgs, p.checkName(*patch.Name)...)
	}
	if patch.PhoneNumber != nil {
		msgs = append(msgs, p.checkPhone(*patch.PhoneNumber)...)
	}

	fee := existing.TotalMembership
	if patch.TotalMembership != nil {
		fee = *patch.TotalMembership
		if fee <= 0 {
			msgs = append(msgs, "total membership must be greater than 0")
		}
	}
	paid := existing.PaidAmount
	if patch.PaidAmount != nil {
		paid = *patch.PaidAmount
		if paid < 0 {
			msgs = append(msgs, "paid amount cannot be negative")
		}
	}
	if paid >= 0 && fee > 0 && paid > fee {
		msgs = append(msgs, "paid amount cannot exceed total membership")
	}
	if len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}

	if patch.PhoneNumber != nil && *patch.PhoneNumber != existing.PhoneNumber {
		return p.checkPhoneFree(ctx, *patch.PhoneNumber, existing.ID)
	}
	return nil
}

// ValidatePaymentAmount checks that amount is positive and fits within the
// member's remaining fee.
// POST: returns domain.ErrNotFound when memberID does not exist
func (p *Policy) ValidatePaymentAmount(ctx context.Context, memberID string, amount int64) error {
	if amount <= 0 {
		return domain.NewValidationError("payment amount must be greater than 0")
	}
	m, err := p.store.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if amount > m.RemainingAmount() {
		return domain.NewValidationError("payment amount exceeds remaining membership fee")
	}
	return nil
}

// ComputeStatistics returns store statistics with the derived remaining
// amount recomputed.
// INVARIANT: result satisfies the Statistics invariants even for an empty store
func (p *Policy) ComputeStatistics(ctx context.Context) (domain.Statistics, error) {
	s, err := p.store.Statistics(ctx)
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("membership statistics: %w", err)
	}
	if sum := s.PaidMembers + s.PartiallyPaidMembers + s.UnpaidMembers; sum > s.TotalMembers {
		s.TotalMembers = sum
	}
	s.RemainingAmount = s.ExpectedRevenue - s.TotalRevenue
	return s, nil
}

func (p *Policy) checkName(name string) []string {
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		return []string{"name is required"}
	case n < p.rules.MinNameLength:
		return []string{fmt.Sprintf("name must be at least %d characters", p.rules.MinNameLength)}
	case n > p.rules.MaxNameLength:
		return []string{fmt.Sprintf("name cannot exceed %d characters", p.rules.MaxNameLength)}
	}
	return nil
}

func (p *Policy) checkPhone(phone string) []string {
	n := utf8.RuneCountInString(phone)
	switch {
	case n == 0:
		return []string{"phone number is required"}
	case n < p.rules.MinPhoneLength:
		return []string{fmt.Sprintf("phone number must be at least %d characters", p.rules.MinPhoneLength)}
	case n > p.rules.MaxPhoneLength:
		return []string{fmt.Sprintf("phone number cannot exceed %d characters", p.rules.MaxPhoneLength)}
	case !phonePattern.MatchString(phone):
		return []string{"phone number may only contain digits, spaces and + - ( )"}
	}
	return nil
}

// checkPhoneFree returns ErrDuplicatePhone when phone belongs to a member
// other than selfID.
func (p *Policy) checkPhoneFree(ctx context.Context, phone, selfID string) error {
	other, err := p.store.GetByPhone(ctx, strings.TrimSpace(phone))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check phone uniqueness: %w", err)
	case other.ID == selfID:
		return nil
	}
	return domain.ErrDuplicatePhone
}
