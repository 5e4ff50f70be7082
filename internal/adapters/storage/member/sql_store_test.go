package member

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymtrack/internal/adapters/storage"
	domain "gymtrack/internal/domain/member"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(db), mock
}

func TestSQLStore_PostgresUniqueViolationIsDuplicatePhone(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO member").WillReturnError(&pq.Error{Code: "23505", Constraint: "member_phone_number_key"})

	_, err := s.Save(context.Background(), newMember("Ali", "0501234567", base, 100, 0))

	assert.ErrorIs(t, err, domain.ErrDuplicatePhone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_OtherWriteErrorsAreWrapped(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("disk full")
	mock.ExpectExec("INSERT INTO member").WillReturnError(boom)

	_, err := s.Save(context.Background(), newMember("Ali", "0501234567", base, 100, 0))

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrDuplicatePhone)
}

func TestSQLStore_NoRowsIsNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM member WHERE id = ?").WillReturnError(sql.ErrNoRows)

	_, err := s.GetByID(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLStore_UpdateWithNoRowsAffectedIsNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("UPDATE member SET").WillReturnResult(sqlmock.NewResult(0, 0))

	m := newMember("Ali", "0501234567", base, 100, 0)
	m.ID = "gone"
	_, err := s.Save(context.Background(), m)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLStore_StatisticsScansAggregate(t *testing.T) {
	s, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"total", "paid", "partial", "unpaid", "revenue", "expected"}).
		AddRow(3, 1, 1, 1, 150, 300)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	st, err := s.Statistics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(150), st.RemainingAmount)
	assert.Equal(t, 3, st.TotalMembers)
}

func TestSQLStore_DeleteQueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM member").WillReturnError(errors.New("locked"))

	removed, err := s.Delete(context.Background(), "id")

	assert.Error(t, err)
	assert.False(t, removed)
}

func TestListWhereClauseFoldsPerDialect(t *testing.T) {
	where, args := listWhereClause(storage.DialectSQLite, ListFilter{Search: "ÉMILE"})
	assert.Contains(t, where, "unicode_lower(name) LIKE ?")
	assert.Equal(t, []any{"%émile%", "%émile%"}, args)

	where, _ = listWhereClause(storage.DialectPostgres, ListFilter{Search: "x"})
	assert.Contains(t, where, "LOWER(name) LIKE ?")
	assert.NotContains(t, where, "unicode_lower")
}
