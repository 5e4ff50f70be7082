package payment

import (
	"context"

	domain "gymtrack/internal/domain/payment"
)

// Store persists member payment history.
type Store interface {
	// Save assigns an ID when p has none and returns the stored payment.
	Save(ctx context.Context, p domain.Payment) (domain.Payment, error)
	// ListByMember returns a member's payments, most recent first.
	ListByMember(ctx context.Context, memberID string) ([]domain.Payment, error)
	// DeleteByMember removes every payment for memberID.
	DeleteByMember(ctx context.Context, memberID string) error
}
