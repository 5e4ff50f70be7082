package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gymtrack/internal/adapters/storage"
	domain "gymtrack/internal/domain/payment"
)

// SQLStore implements Store over the member_payment table.
type SQLStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a new SQLStore.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Save inserts a payment.
// PRE: p has been validated and p.MemberID exists
// POST: p is stored under a new UUID when it had no ID
func (s *SQLStore) Save(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO member_payment (id, member_id, amount, method, notes, paid_at) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.MemberID, p.Amount, p.Method, p.Notes, storage.FormatTime(p.PaidAt),
	)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("save payment: %w", err)
	}
	return p, nil
}

// ListByMember returns payments for memberID, newest first.
// POST: returns an empty, non-nil slice when there are none
func (s *SQLStore) ListByMember(ctx context.Context, memberID string) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, member_id, amount, method, notes, paid_at FROM member_payment WHERE member_id = ? ORDER BY paid_at DESC, id ASC",
		memberID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	results := []domain.Payment{}
	for rows.Next() {
		var p domain.Payment
		var paidAt string
		if err := rows.Scan(&p.ID, &p.MemberID, &p.Amount, &p.Method, &p.Notes, &paidAt); err != nil {
			return nil, fmt.Errorf("list payments: %w", err)
		}
		if p.PaidAt, err = storage.ParseTime(paidAt); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return results, nil
}

// DeleteByMember removes a member's payments. The foreign key already
// cascades on member deletion; this covers stores without one.
func (s *SQLStore) DeleteByMember(ctx context.Context, memberID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM member_payment WHERE member_id = ?", memberID); err != nil {
		return fmt.Errorf("delete payments: %w", err)
	}
	return nil
}
