package member

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "gymtrack/internal/domain/member"
)

// MemoryStore is an in-process Store. It enforces phone uniqueness like
// the SQL schema does.
type MemoryStore struct {
	mu      sync.RWMutex
	members map[string]domain.Member
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{members: make(map[string]domain.Member)}
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return domain.Member{}, domain.ErrNotFound
	}
	return m, nil
}

func (s *MemoryStore) GetByPhone(_ context.Context, phone string) (domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.PhoneNumber == phone {
			return m, nil
		}
	}
	return domain.Member{}, domain.ErrNotFound
}

// Save inserts or updates m.
// POST: see Store.Save
func (s *MemoryStore) Save(_ context.Context, m domain.Member) (domain.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.IsPersisted() {
		if _, ok := s.members[m.ID]; !ok {
			return domain.Member{}, domain.ErrNotFound
		}
	}
	for id, other := range s.members {
		if id != m.ID && other.PhoneNumber == m.PhoneNumber {
			return domain.Member{}, domain.ErrDuplicatePhone
		}
	}
	if !m.IsPersisted() {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}
	if m.LastPaymentDate != nil {
		t := *m.LastPaymentDate
		m.LastPaymentDate = &t
	}
	s.members[m.ID] = m
	return m, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return false, nil
	}
	delete(s.members, id)
	return true, nil
}

func (s *MemoryStore) matching(filter ListFilter) []domain.Member {
	var out []domain.Member
	for _, m := range s.members {
		if filter.Matches(m) {
			out = append(out, m)
		}
	}
	return out
}

// List returns matching members in list order, paged by Limit and Offset.
func (s *MemoryStore) List(_ context.Context, filter ListFilter) ([]domain.Member, error) {
	s.mu.RLock()
	all := s.matching(filter)
	s.mu.RUnlock()

	SortForList(all)
	if filter.Offset > 0 {
		if filter.Offset >= len(all) {
			return []domain.Member{}, nil
		}
		all = all[filter.Offset:]
	}
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	if all == nil {
		all = []domain.Member{}
	}
	return all, nil
}

func (s *MemoryStore) Count(_ context.Context, filter ListFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matching(filter)), nil
}

func (s *MemoryStore) Statistics(_ context.Context) (domain.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var st domain.Statistics
	for _, m := range s.members {
		st.Add(m)
	}
	return st, nil
}
