package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymtrack/internal/domain/member"
	"gymtrack/internal/domain/payment"
)

// CreateMemberInput carries input for the orchestrator.
// Nil pointers mean the field was not supplied.
type CreateMemberInput struct {
	Name            string
	PhoneNumber     string
	JoinDate        *time.Time
	TotalMembership *int64
	PaidAmount      *int64
}

// CreateMemberDeps holds dependencies for CreateMember.
type CreateMemberDeps struct {
	MemberStore  MemberStore
	PaymentStore PaymentRecorder // optional
	Policy       MemberPolicy
	Events       EventRecorder // optional
	Now          func() time.Time
}

// ExecuteCreateMember registers a new member.
// PRE: none; input is trimmed here
// POST: member persisted with an ID and defaults applied; a non-zero initial
// paid amount sets LastPaymentDate and is recorded in payment history
// INVARIANT: phone numbers are unique (checked by policy, enforced by store)
func ExecuteCreateMember(ctx context.Context, input CreateMemberInput, deps CreateMemberDeps) (member.Member, error) {
	now := nowFrom(deps.Now)
	fields := deps.Policy.WithDefaults(member.Fields{
		Name:            strings.TrimSpace(input.Name),
		PhoneNumber:     strings.TrimSpace(input.PhoneNumber),
		JoinDate:        input.JoinDate,
		TotalMembership: input.TotalMembership,
		PaidAmount:      input.PaidAmount,
	})

	if err := deps.Policy.ValidateNewMember(ctx, fields); err != nil {
		return member.Member{}, err
	}

	initialPayment := int64(0)
	if fields.PaidAmount != nil {
		initialPayment = *fields.PaidAmount
	}
	if initialPayment > 0 {
		fields.LastPaymentDate = &now
	}

	saved, err := deps.MemberStore.Save(ctx, member.New(fields, now))
	if err != nil {
		if errors.Is(err, member.ErrDuplicatePhone) {
			return member.Member{}, err
		}
		return member.Member{}, fmt.Errorf("create member: %w", err)
	}

	if initialPayment > 0 {
		recordPayment(ctx, deps.PaymentStore, payment.New(saved.ID, initialPayment, payment.MethodCash, "initial payment", now))
	}

	slog.Info("member_event", "event", "member_created", "member_id", saved.ID, "status", saved.MembershipStatus())
	if deps.Events != nil {
		deps.Events.MemberCreated()
		if initialPayment > 0 {
			deps.Events.PaymentApplied(initialPayment)
		}
	}
	return saved, nil
}

// recordPayment appends to payment history. The member balance is the
// source of truth, so a history failure is logged rather than returned.
func recordPayment(ctx context.Context, store PaymentRecorder, p payment.Payment) {
	if store == nil {
		return
	}
	if _, err := store.Save(ctx, p); err != nil {
		slog.Warn("payment_history_failed", "member_id", p.MemberID, "amount", p.Amount, "error", err)
	}
}
