package orchestrators

import (
	"context"
	"strings"
	"time"

	"gymtrack/internal/domain/member"
	"gymtrack/internal/domain/payment"
)

// MemberStore defines the member persistence the write use-cases need.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	Save(ctx context.Context, m member.Member) (member.Member, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// PaymentRecorder appends to and clears payment history.
type PaymentRecorder interface {
	Save(ctx context.Context, p payment.Payment) (payment.Payment, error)
	DeleteByMember(ctx context.Context, memberID string) error
}

// MemberPolicy is the validation surface of the membership policy.
type MemberPolicy interface {
	WithDefaults(f member.Fields) member.Fields
	ValidateNewMember(ctx context.Context, f member.Fields) error
	ValidateUpdate(ctx context.Context, existing member.Member, patch member.Patch) error
	ValidatePaymentAmount(ctx context.Context, memberID string, amount int64) error
}

// EventRecorder counts completed membership events. Optional.
type EventRecorder interface {
	MemberCreated()
	MemberDeleted()
	PaymentApplied(amount int64)
}

func nowFrom(f func() time.Time) time.Time {
	if f == nil {
		return time.Now().UTC()
	}
	return f()
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
