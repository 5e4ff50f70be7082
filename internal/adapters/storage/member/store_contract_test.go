package member

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymtrack/internal/adapters/storage"
	"gymtrack/internal/adapters/storage/storagetest"
	domain "gymtrack/internal/domain/member"
)

var base = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func newMember(name, phone string, join time.Time, total, paid int64) domain.Member {
	return domain.New(domain.Fields{
		Name:            name,
		PhoneNumber:     phone,
		JoinDate:        &join,
		TotalMembership: &total,
		PaidAmount:      &paid,
	}, join)
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestSQLiteStoreContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return NewSQLStore(storage.NewTimedDB(storagetest.OpenSQLite(t), storage.DialectSQLite))
	})
}

func TestPostgresStoreContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return NewSQLStore(storagetest.OpenPostgres(t))
	})
}

func runStoreContract(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("save assigns id and round trips", func(t *testing.T) {
		s := open(t)
		in := newMember("Ali Hassan", "0501234567", base, 1000, 200)
		paidAt := base.Add(time.Hour)
		in.LastPaymentDate = &paidAt

		saved, err := s.Save(ctx, in)
		require.NoError(t, err)
		require.NotEmpty(t, saved.ID)

		got, err := s.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ali Hassan", got.Name)
		assert.Equal(t, "0501234567", got.PhoneNumber)
		assert.Equal(t, int64(1000), got.TotalMembership)
		assert.Equal(t, int64(200), got.PaidAmount)
		assert.True(t, got.JoinDate.Equal(base), "join date %v", got.JoinDate)
		require.NotNil(t, got.LastPaymentDate)
		assert.True(t, got.LastPaymentDate.Equal(paidAt))

		byPhone, err := s.GetByPhone(ctx, "0501234567")
		require.NoError(t, err)
		assert.Equal(t, saved.ID, byPhone.ID)
	})

	t.Run("missing member is not found", func(t *testing.T) {
		s := open(t)
		_, err := s.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = s.GetByPhone(ctx, "0000000000")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("duplicate phone is rejected", func(t *testing.T) {
		s := open(t)
		_, err := s.Save(ctx, newMember("First", "0501234567", base, 100, 0))
		require.NoError(t, err)

		_, err = s.Save(ctx, newMember("Second", "0501234567", base, 100, 0))
		assert.ErrorIs(t, err, domain.ErrDuplicatePhone)

		other, err := s.Save(ctx, newMember("Third", "0509999999", base, 100, 0))
		require.NoError(t, err)
		other.PhoneNumber = "0501234567"
		_, err = s.Save(ctx, other)
		assert.ErrorIs(t, err, domain.ErrDuplicatePhone)
	})

	t.Run("update persists changes", func(t *testing.T) {
		s := open(t)
		saved, err := s.Save(ctx, newMember("Ali", "0501234567", base, 1000, 200))
		require.NoError(t, err)

		saved.ApplyPayment(800, base.Add(time.Hour))
		updated, err := s.Save(ctx, saved)
		require.NoError(t, err)
		assert.Equal(t, saved.ID, updated.ID)

		got, err := s.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), got.PaidAmount)
		assert.Equal(t, domain.StatusPaid, got.MembershipStatus())
	})

	t.Run("update of vanished member is not found", func(t *testing.T) {
		s := open(t)
		m := newMember("Ghost", "0501234567", base, 100, 0)
		m.ID = "00000000-0000-0000-0000-000000000001"
		_, err := s.Save(ctx, m)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete reports removal", func(t *testing.T) {
		s := open(t)
		saved, err := s.Save(ctx, newMember("Ali", "0501234567", base, 100, 0))
		require.NoError(t, err)

		removed, err := s.Delete(ctx, saved.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = s.Delete(ctx, saved.ID)
		require.NoError(t, err)
		assert.False(t, removed)

		_, err = s.GetByID(ctx, saved.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list orders newest join first and pages", func(t *testing.T) {
		s := open(t)
		for i := 0; i < 25; i++ {
			_, err := s.Save(ctx, newMember(fmt.Sprintf("Member %02d", i), fmt.Sprintf("05000000%02d", i), base.AddDate(0, 0, i), 100, 0))
			require.NoError(t, err)
		}

		first, err := s.List(ctx, ListFilter{Limit: 10})
		require.NoError(t, err)
		require.Len(t, first, 10)
		assert.Equal(t, "Member 24", first[0].Name)
		assert.Equal(t, "Member 15", first[9].Name)

		last, err := s.List(ctx, ListFilter{Limit: 10, Offset: 20})
		require.NoError(t, err)
		require.Len(t, last, 5)
		assert.Equal(t, "Member 00", last[4].Name)

		beyond, err := s.List(ctx, ListFilter{Limit: 10, Offset: 30})
		require.NoError(t, err)
		assert.Empty(t, beyond)
		assert.NotNil(t, beyond)

		total, err := s.Count(ctx, ListFilter{Limit: 10, Offset: 20})
		require.NoError(t, err)
		assert.Equal(t, 25, total)
	})

	t.Run("search folds non-ASCII case", func(t *testing.T) {
		s := open(t)
		_, err := s.Save(ctx, newMember("Émile Ödegaard", "0504444444", base, 100, 0))
		require.NoError(t, err)
		_, err = s.Save(ctx, newMember("Ali Hassan", "0501111111", base, 100, 0))
		require.NoError(t, err)

		for _, term := range []string{"émile", "ÉMILE", "ödeg", "ÖDEGAARD"} {
			n, err := s.Count(ctx, ListFilter{Search: term})
			require.NoError(t, err)
			assert.Equal(t, 1, n, term)

			got, err := s.List(ctx, ListFilter{Search: term})
			require.NoError(t, err)
			require.Len(t, got, 1, term)
			assert.Equal(t, "Émile Ödegaard", got[0].Name)
		}
	})

	t.Run("list filters", func(t *testing.T) {
		s := open(t)
		seed := []domain.Member{
			newMember("Ali Hassan", "0501111111", base, 100, 100),
			newMember("Sara Ahmed", "0502222222", base.AddDate(0, 1, 0), 100, 50),
			newMember("Omar 100% Fit", "0503333333", base.AddDate(0, 2, 0), 100, 0),
		}
		for _, m := range seed {
			_, err := s.Save(ctx, m)
			require.NoError(t, err)
		}

		names := func(f ListFilter) []string {
			t.Helper()
			got, err := s.List(ctx, f)
			require.NoError(t, err)
			n, err := s.Count(ctx, f)
			require.NoError(t, err)
			require.Len(t, got, n)
			out := make([]string, len(got))
			for i, m := range got {
				out[i] = m.Name
			}
			return out
		}

		assert.Equal(t, []string{"Ali Hassan"}, names(ListFilter{Search: "ali"}))
		assert.Equal(t, []string{"Sara Ahmed"}, names(ListFilter{Search: "2222"}))
		assert.Equal(t, []string{"Omar 100% Fit"}, names(ListFilter{Search: "%"}))
		assert.Empty(t, names(ListFilter{Search: "_"}))
		assert.Equal(t, []string{"Ali Hassan"}, names(ListFilter{Status: domain.StatusPaid}))
		assert.Equal(t, []string{"Sara Ahmed"}, names(ListFilter{Status: domain.StatusPartial}))
		assert.Equal(t, []string{"Omar 100% Fit"}, names(ListFilter{Status: domain.StatusUnpaid}))

		from := base.AddDate(0, 1, 0)
		to := base.AddDate(0, 1, 0)
		assert.Equal(t, []string{"Sara Ahmed"}, names(ListFilter{JoinDateFrom: &from, JoinDateTo: &to}))
		assert.Equal(t, []string{"Omar 100% Fit", "Sara Ahmed"}, names(ListFilter{JoinDateFrom: &from}))
	})

	t.Run("statistics", func(t *testing.T) {
		s := open(t)
		empty, err := s.Statistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.Statistics{}, empty)

		for i, paid := range []int64{100, 50, 0} {
			_, err := s.Save(ctx, newMember(fmt.Sprintf("M%d", i), fmt.Sprintf("050000000%d", i), base, 100, paid))
			require.NoError(t, err)
		}

		st, err := s.Statistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.Statistics{
			TotalMembers: 3, PaidMembers: 1, PartiallyPaidMembers: 1, UnpaidMembers: 1,
			TotalRevenue: 150, ExpectedRevenue: 300, RemainingAmount: 150,
		}, st)
	})
}
