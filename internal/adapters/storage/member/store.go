package member

import (
	"context"
	"sort"
	"strings"
	"time"

	domain "gymtrack/internal/domain/member"
)

// Store persists Member state.
type Store interface {
	// GetByID returns domain.ErrNotFound when no member has id.
	GetByID(ctx context.Context, id string) (domain.Member, error)
	// GetByPhone returns domain.ErrNotFound when no member has phone.
	GetByPhone(ctx context.Context, phone string) (domain.Member, error)
	// Save inserts a member without an ID (assigning one) or updates an
	// existing one, returning the persisted form. A phone collision yields
	// domain.ErrDuplicatePhone.
	Save(ctx context.Context, m domain.Member) (domain.Member, error)
	// Delete reports whether a member was removed.
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	Statistics(ctx context.Context) (domain.Statistics, error)
}

// ListFilter carries filtering parameters for List and Count.
// Limit <= 0 means no limit. Count ignores Limit and Offset.
type ListFilter struct {
	Search       string
	Status       string
	JoinDateFrom *time.Time
	JoinDateTo   *time.Time
	Limit        int
	Offset       int
}

// Matches applies the filter predicates to a single member.
func (f ListFilter) Matches(m domain.Member) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(m.Name), term) && !strings.Contains(strings.ToLower(m.PhoneNumber), term) {
			return false
		}
	}
	if f.Status != "" && m.MembershipStatus() != f.Status {
		return false
	}
	if f.JoinDateFrom != nil && m.JoinDate.Before(*f.JoinDateFrom) {
		return false
	}
	if f.JoinDateTo != nil && m.JoinDate.After(*f.JoinDateTo) {
		return false
	}
	return true
}

// SortForList orders members newest join date first, then newest created,
// then by id.
func SortForList(members []domain.Member) {
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if !a.JoinDate.Equal(b.JoinDate) {
			return a.JoinDate.After(b.JoinDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
