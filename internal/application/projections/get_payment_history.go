package projections

import (
	"context"
	"fmt"

	domainPayment "gymtrack/internal/domain/payment"
)

// GetPaymentHistoryQuery carries query parameters.
type GetPaymentHistoryQuery struct {
	MemberID string
}

// GetPaymentHistoryDeps holds dependencies for GetPaymentHistory.
type GetPaymentHistoryDeps struct {
	MemberStore  MemberStore
	PaymentStore PaymentStore
}

// QueryGetPaymentHistory lists a member's payments, most recent first.
// POST: unknown members yield domainMember.ErrNotFound rather than an empty list
func QueryGetPaymentHistory(ctx context.Context, query GetPaymentHistoryQuery, deps GetPaymentHistoryDeps) ([]domainPayment.Payment, error) {
	if _, err := QueryGetMember(ctx, GetMemberQuery{MemberID: query.MemberID}, GetMemberDeps{MemberStore: deps.MemberStore}); err != nil {
		return nil, err
	}
	payments, err := deps.PaymentStore.ListByMember(ctx, query.MemberID)
	if err != nil {
		return nil, fmt.Errorf("payment history: %w", err)
	}
	return payments, nil
}
