package projections

import (
	"context"

	"gymtrack/internal/adapters/storage/member"
	domainMember "gymtrack/internal/domain/member"
	domainPayment "gymtrack/internal/domain/payment"
)

// MemberStore interface for member queries.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (domainMember.Member, error)
	List(ctx context.Context, filter member.ListFilter) ([]domainMember.Member, error)
	Count(ctx context.Context, filter member.ListFilter) (int, error)
}

// PaymentStore interface for payment history queries.
type PaymentStore interface {
	ListByMember(ctx context.Context, memberID string) ([]domainPayment.Payment, error)
}

// StatisticsSource computes the population-wide aggregate.
type StatisticsSource interface {
	ComputeStatistics(ctx context.Context) (domainMember.Statistics, error)
}
