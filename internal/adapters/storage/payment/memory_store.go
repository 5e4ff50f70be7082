package payment

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	domain "gymtrack/internal/domain/payment"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu       sync.RWMutex
	payments map[string][]domain.Payment
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payments: make(map[string][]domain.Payment)}
}

func (s *MemoryStore) Save(_ context.Context, p domain.Payment) (domain.Payment, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	s.mu.Lock()
	s.payments[p.MemberID] = append(s.payments[p.MemberID], p)
	s.mu.Unlock()
	return p, nil
}

func (s *MemoryStore) ListByMember(_ context.Context, memberID string) ([]domain.Payment, error) {
	s.mu.RLock()
	out := append([]domain.Payment{}, s.payments[memberID]...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PaidAt.Equal(out[j].PaidAt) {
			return out[i].PaidAt.After(out[j].PaidAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) DeleteByMember(_ context.Context, memberID string) error {
	s.mu.Lock()
	delete(s.payments, memberID)
	s.mu.Unlock()
	return nil
}
