package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymtrack/internal/adapters/storage"
	memberstore "gymtrack/internal/adapters/storage/member"
	"gymtrack/internal/adapters/storage/storagetest"
	"gymtrack/internal/domain/member"
	domain "gymtrack/internal/domain/payment"
)

var base = time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	members  memberstore.Store
	payments Store
}

func seedMember(t *testing.T, s memberstore.Store, phone string) string {
	t.Helper()
	fee := int64(1000)
	m, err := s.Save(context.Background(), member.New(member.Fields{Name: "Ali", PhoneNumber: phone, TotalMembership: &fee}, base))
	require.NoError(t, err)
	return m.ID
}

func TestMemoryStore(t *testing.T) {
	runPaymentContract(t, func(t *testing.T) fixture {
		return fixture{members: memberstore.NewMemoryStore(), payments: NewMemoryStore()}
	})
}

func TestSQLiteStore(t *testing.T) {
	runPaymentContract(t, func(t *testing.T) fixture {
		db := storage.NewTimedDB(storagetest.OpenSQLite(t), storage.DialectSQLite)
		return fixture{members: memberstore.NewSQLStore(db), payments: NewSQLStore(db)}
	})
}

func runPaymentContract(t *testing.T, open func(t *testing.T) fixture) {
	ctx := context.Background()

	t.Run("history is newest first", func(t *testing.T) {
		f := open(t)
		id := seedMember(t, f.members, "0501234567")

		for i, amount := range []int64{100, 200, 300} {
			saved, err := f.payments.Save(ctx, domain.New(id, amount, "", "", base.Add(time.Duration(i)*time.Hour)))
			require.NoError(t, err)
			assert.NotEmpty(t, saved.ID)
		}

		got, err := f.payments.ListByMember(ctx, id)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, int64(300), got[0].Amount)
		assert.Equal(t, int64(100), got[2].Amount)
		assert.Equal(t, domain.MethodCash, got[0].Method)
		assert.True(t, got[0].PaidAt.Equal(base.Add(2*time.Hour)))
	})

	t.Run("empty history is an empty slice", func(t *testing.T) {
		f := open(t)
		id := seedMember(t, f.members, "0501234567")

		got, err := f.payments.ListByMember(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("delete by member", func(t *testing.T) {
		f := open(t)
		keep := seedMember(t, f.members, "0501111111")
		drop := seedMember(t, f.members, "0502222222")
		_, err := f.payments.Save(ctx, domain.New(keep, 10, "card", "", base))
		require.NoError(t, err)
		_, err = f.payments.Save(ctx, domain.New(drop, 20, "card", "", base))
		require.NoError(t, err)

		require.NoError(t, f.payments.DeleteByMember(ctx, drop))

		got, err := f.payments.ListByMember(ctx, drop)
		require.NoError(t, err)
		assert.Empty(t, got)
		got, err = f.payments.ListByMember(ctx, keep)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

// TestSQLiteStore_CascadeOnMemberDelete verifies the foreign key removes history.
func TestSQLiteStore_CascadeOnMemberDelete(t *testing.T) {
	ctx := context.Background()
	db := storage.NewTimedDB(storagetest.OpenSQLite(t), storage.DialectSQLite)
	members, payments := memberstore.NewSQLStore(db), NewSQLStore(db)
	id := seedMember(t, members, "0501234567")
	_, err := payments.Save(ctx, domain.New(id, 50, "", "", base))
	require.NoError(t, err)

	removed, err := members.Delete(ctx, id)
	require.NoError(t, err)
	require.True(t, removed)

	got, err := payments.ListByMember(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got)
}
