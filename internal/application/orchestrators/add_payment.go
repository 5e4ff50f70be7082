package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gymtrack/internal/domain/member"
	"gymtrack/internal/domain/payment"
)

// AddPaymentInput carries input for the orchestrator.
type AddPaymentInput struct {
	MemberID string
	Amount   int64
	Method   string // defaults to cash
	Notes    string
}

// AddPaymentDeps holds dependencies for AddPayment.
type AddPaymentDeps struct {
	MemberStore  MemberStore
	PaymentStore PaymentRecorder // optional
	Policy       MemberPolicy
	Events       EventRecorder // optional
	Now          func() time.Time
}

// ExecuteAddPayment records a payment against a member's balance.
// PRE: MemberID is non-empty
// POST: PaidAmount grows by Amount; LastPaymentDate is now; the payment is
// appended to history
// INVARIANT: Amount is positive and no larger than the remaining fee
func ExecuteAddPayment(ctx context.Context, input AddPaymentInput, deps AddPaymentDeps) (member.Member, error) {
	if input.MemberID == "" {
		return member.Member{}, member.NewValidationError("member ID is required")
	}

	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return member.Member{}, err
	}
	if err := deps.Policy.ValidatePaymentAmount(ctx, m.ID, input.Amount); err != nil {
		return member.Member{}, err
	}

	now := nowFrom(deps.Now)
	p := payment.New(m.ID, input.Amount, input.Method, input.Notes, now)
	if err := p.Validate(); err != nil {
		return member.Member{}, member.NewValidationError(err.Error())
	}

	m.ApplyPayment(input.Amount, now)
	saved, err := deps.MemberStore.Save(ctx, m)
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			return member.Member{}, err
		}
		return member.Member{}, fmt.Errorf("add payment: %w", err)
	}
	recordPayment(ctx, deps.PaymentStore, p)

	slog.Info("member_event", "event", "payment_added", "member_id", saved.ID,
		"amount", input.Amount, "method", p.Method, "status", saved.MembershipStatus())
	if deps.Events != nil {
		deps.Events.PaymentApplied(input.Amount)
	}
	return saved, nil
}
