package projections_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memberStore "gymtrack/internal/adapters/storage/member"
	paymentStore "gymtrack/internal/adapters/storage/payment"
	"gymtrack/internal/application/membership"
	"gymtrack/internal/application/projections"
	"gymtrack/internal/domain/member"
	"gymtrack/internal/domain/payment"
)

var base = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// seed inserts n members joined one day apart, with every third fully paid
// and every third partially paid.
func seed(t *testing.T, store *memberStore.MemoryStore, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		paid := int64(0)
		switch i % 3 {
		case 1:
			paid = 500
		case 2:
			paid = 1000
		}
		join := base.AddDate(0, 0, i)
		m := member.New(member.Fields{
			Name:            fmt.Sprintf("Member %02d", i),
			PhoneNumber:     fmt.Sprintf("05000000%02d", i),
			JoinDate:        &join,
			TotalMembership: func() *int64 { v := int64(1000); return &v }(),
			PaidAmount:      &paid,
		}, join)
		_, err := store.Save(context.Background(), m)
		require.NoError(t, err)
	}
}

// TestQueryGetMemberListPagination tests page metadata over 25 members.
func TestQueryGetMemberListPagination(t *testing.T) {
	store := memberStore.NewMemoryStore()
	seed(t, store, 25)
	deps := projections.GetMemberListDeps{MemberStore: store}
	ctx := context.Background()

	first, err := projections.QueryGetMemberList(ctx, projections.GetMemberListQuery{Page: 1, Limit: 10}, deps)
	require.NoError(t, err)
	assert.Len(t, first.Members, 10)
	assert.Equal(t, "Member 24", first.Members[0].Name, "newest join date first")
	assert.Equal(t, 25, first.Pagination.TotalCount)
	assert.Equal(t, 3, first.Pagination.TotalPages)
	assert.True(t, first.Pagination.HasNext)
	assert.False(t, first.Pagination.HasPrev)

	last, err := projections.QueryGetMemberList(ctx, projections.GetMemberListQuery{Page: 3, Limit: 10}, deps)
	require.NoError(t, err)
	assert.Len(t, last.Members, 5)
	assert.False(t, last.Pagination.HasNext)
	assert.True(t, last.Pagination.HasPrev)

	past, err := projections.QueryGetMemberList(ctx, projections.GetMemberListQuery{Page: 9, Limit: 10}, deps)
	require.NoError(t, err)
	assert.Empty(t, past.Members)
	assert.Equal(t, 25, past.Pagination.TotalCount)
}

// TestQueryGetMemberListFilters tests search, status and join date bounds.
func TestQueryGetMemberListFilters(t *testing.T) {
	store := memberStore.NewMemoryStore()
	seed(t, store, 9)
	deps := projections.GetMemberListDeps{MemberStore: store}
	ctx := context.Background()

	res, err := projections.QueryGetMemberList(ctx, projections.GetMemberListQuery{Status: " PAID "}, deps)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Pagination.TotalCount)
	for _, m := range res.Members {
		assert.Equal(t, member.StatusPaid, m.MembershipStatus())
	}

	res, err = projections.QueryGetMemberList(ctx, projections.GetMemberListQuery{Search: "member 0"}, deps)
	require.NoError(t, err)
	assert.Equal(t, 9, res.Pagination.TotalCount, "search is case-insensitive")

	res, err = projections.QueryGetMemberList(ctx, projections.GetMemberListQuery{Search: "0500000003"}, deps)
	require.NoError(t, err)
	require.Len(t, res.Members, 1)
	assert.Equal(t, "Member 03", res.Members[0].Name)

	from, to := base.AddDate(0, 0, 2), base.AddDate(0, 0, 4)
	res, err = projections.QueryGetMemberList(ctx, projections.GetMemberListQuery{JoinDateFrom: &from, JoinDateTo: &to}, deps)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Pagination.TotalCount)
}

// TestQueryGetMemberListRejects tests invalid filters.
func TestQueryGetMemberListRejects(t *testing.T) {
	deps := projections.GetMemberListDeps{MemberStore: memberStore.NewMemoryStore()}
	ctx := context.Background()

	_, err := projections.QueryGetMemberList(ctx, projections.GetMemberListQuery{Status: "overdue"}, deps)
	assert.ErrorIs(t, err, member.ErrValidation)

	from, to := base.AddDate(0, 0, 5), base
	_, err = projections.QueryGetMemberList(ctx, projections.GetMemberListQuery{JoinDateFrom: &from, JoinDateTo: &to}, deps)
	assert.ErrorIs(t, err, member.ErrValidation)
}

// TestQueryGetMemberListEmpty tests an empty store.
func TestQueryGetMemberListEmpty(t *testing.T) {
	res, err := projections.QueryGetMemberList(context.Background(), projections.GetMemberListQuery{},
		projections.GetMemberListDeps{MemberStore: memberStore.NewMemoryStore()})
	require.NoError(t, err)
	assert.NotNil(t, res.Members)
	assert.Empty(t, res.Members)
	assert.Equal(t, 0, res.Pagination.TotalPages)
	assert.False(t, res.Pagination.HasNext)
}

// TestQueryGetMember tests lookup by ID.
func TestQueryGetMember(t *testing.T) {
	store := memberStore.NewMemoryStore()
	saved, err := store.Save(context.Background(), member.New(member.Fields{Name: "Ali Hassan", PhoneNumber: "0501234567"}, base))
	require.NoError(t, err)
	deps := projections.GetMemberDeps{MemberStore: store}

	got, err := projections.QueryGetMember(context.Background(), projections.GetMemberQuery{MemberID: saved.ID}, deps)
	require.NoError(t, err)
	assert.Equal(t, "Ali Hassan", got.Name)

	_, err = projections.QueryGetMember(context.Background(), projections.GetMemberQuery{MemberID: "nope"}, deps)
	assert.ErrorIs(t, err, member.ErrNotFound)
	_, err = projections.QueryGetMember(context.Background(), projections.GetMemberQuery{}, deps)
	assert.ErrorIs(t, err, member.ErrNotFound)
}

// TestQueryGetStatistics tests the aggregate ignores pagination.
func TestQueryGetStatistics(t *testing.T) {
	store := memberStore.NewMemoryStore()
	seed(t, store, 25)
	policy := membership.NewPolicy(store, membership.DefaultRules())

	s, err := projections.QueryGetStatistics(context.Background(), projections.GetStatisticsDeps{Statistics: policy})
	require.NoError(t, err)
	assert.Equal(t, 25, s.TotalMembers)
	assert.Equal(t, 8, s.PaidMembers)
	assert.Equal(t, 8, s.PartiallyPaidMembers)
	assert.Equal(t, 9, s.UnpaidMembers)
	assert.Equal(t, int64(25000), s.ExpectedRevenue)
	assert.Equal(t, int64(8*1000+8*500), s.TotalRevenue)
	assert.Equal(t, s.ExpectedRevenue-s.TotalRevenue, s.RemainingAmount)
}

// TestQueryGetPaymentHistory tests history lookup for known and unknown members.
func TestQueryGetPaymentHistory(t *testing.T) {
	members := memberStore.NewMemoryStore()
	payments := paymentStore.NewMemoryStore()
	ctx := context.Background()
	saved, err := members.Save(ctx, member.New(member.Fields{Name: "Ali Hassan", PhoneNumber: "0501234567"}, base))
	require.NoError(t, err)
	for i, amount := range []int64{100, 200} {
		_, err := payments.Save(ctx, payment.New(saved.ID, amount, "", "", base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	deps := projections.GetPaymentHistoryDeps{MemberStore: members, PaymentStore: payments}

	got, err := projections.QueryGetPaymentHistory(ctx, projections.GetPaymentHistoryQuery{MemberID: saved.ID}, deps)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(200), got[0].Amount)

	_, err = projections.QueryGetPaymentHistory(ctx, projections.GetPaymentHistoryQuery{MemberID: "nope"}, deps)
	assert.ErrorIs(t, err, member.ErrNotFound)
}

// TestQueryGetMemberReport tests that the report spans more than one batch.
func TestQueryGetMemberReport(t *testing.T) {
	store := memberStore.NewMemoryStore()
	seed(t, store, 25)
	now := base.AddDate(1, 0, 0)

	rep, err := projections.QueryGetMemberReport(context.Background(), projections.GetMemberReportDeps{
		MemberStore: store,
		Statistics:  membership.NewPolicy(store, membership.DefaultRules()),
		Now:         func() time.Time { return now },
	})
	require.NoError(t, err)
	assert.True(t, rep.GeneratedAt.Equal(now))
	assert.Len(t, rep.Members, 25)
	assert.Equal(t, 25, rep.Statistics.TotalMembers)
	assert.Equal(t, "Member 24", rep.Members[0].Name)
}
