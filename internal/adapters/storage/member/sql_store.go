package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gymtrack/internal/adapters/storage"
	domain "gymtrack/internal/domain/member"
)

const memberColumns = "id, name, phone_number, join_date, total_membership, paid_amount, last_payment_date, created_at, updated_at"

// SQLStore implements Store over SQLite or Postgres.
type SQLStore struct {
	db      storage.SQLDB
	dialect storage.Dialect
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore creates a new SQLStore.
// PRE: db rebinds placeholders for its dialect (a *storage.TimedDB) or is SQLite
func NewSQLStore(db storage.SQLDB) *SQLStore {
	dialect := storage.DialectSQLite
	if d, ok := db.(interface{ Dialect() storage.Dialect }); ok {
		dialect = d.Dialect()
	}
	return &SQLStore{db: db, dialect: dialect}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (domain.Member, error) {
	var (
		m                              domain.Member
		joinDate, createdAt, updatedAt string
		lastPayment                    sql.NullString
	)
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.PhoneNumber,
		&joinDate,
		&m.TotalMembership,
		&m.PaidAmount,
		&lastPayment,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Member{}, err
	}
	if m.JoinDate, err = storage.ParseTime(joinDate); err != nil {
		return domain.Member{}, err
	}
	if m.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Member{}, err
	}
	if m.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Member{}, err
	}
	if lastPayment.Valid {
		t, err := storage.ParseTime(lastPayment.String)
		if err != nil {
			return domain.Member{}, err
		}
		m.LastPaymentDate = &t
	}
	return m, nil
}

func (s *SQLStore) getOne(ctx context.Context, where string, arg any) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM member WHERE "+where, arg)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Member{}, fmt.Errorf("load member: %w", err)
	}
	return m, nil
}

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	return s.getOne(ctx, "id = ?", id)
}

// GetByPhone retrieves a Member by phone number.
// PRE: phone is trimmed
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLStore) GetByPhone(ctx context.Context, phone string) (domain.Member, error) {
	return s.getOne(ctx, "phone_number = ?", phone)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return storage.FormatTime(*t)
}

// Save persists a Member to the database.
// PRE: entity has been validated
// POST: a member without an ID is inserted under a new UUID; otherwise the
// row with that ID is updated, or domain.ErrNotFound if it is gone
func (s *SQLStore) Save(ctx context.Context, m domain.Member) (domain.Member, error) {
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}

	if !m.IsPersisted() {
		m.ID = uuid.New().String()
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO member ("+memberColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			m.ID,
			m.Name,
			m.PhoneNumber,
			storage.FormatTime(m.JoinDate),
			m.TotalMembership,
			m.PaidAmount,
			nullableTime(m.LastPaymentDate),
			storage.FormatTime(m.CreatedAt),
			storage.FormatTime(m.UpdatedAt),
		)
		if err != nil {
			return domain.Member{}, translateWriteError(err)
		}
		return m, nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE member SET name = ?, phone_number = ?, join_date = ?, total_membership = ?,
		paid_amount = ?, last_payment_date = ?, updated_at = ? WHERE id = ?`,
		m.Name,
		m.PhoneNumber,
		storage.FormatTime(m.JoinDate),
		m.TotalMembership,
		m.PaidAmount,
		nullableTime(m.LastPaymentDate),
		storage.FormatTime(m.UpdatedAt),
		m.ID,
	)
	if err != nil {
		return domain.Member{}, translateWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Member{}, fmt.Errorf("save member: %w", err)
	}
	if n == 0 {
		return domain.Member{}, domain.ErrNotFound
	}
	return m, nil
}

func translateWriteError(err error) error {
	if storage.IsUniqueViolation(err) {
		return domain.ErrDuplicatePhone
	}
	return fmt.Errorf("save member: %w", err)
}

// Delete removes a Member and, through the foreign key, its payments.
// PRE: id is non-empty
// POST: returns true when a row was removed
func (s *SQLStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM member WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete member: %w", err)
	}
	return n > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// listWhereClause builds the WHERE clause and args for List/Count queries.
// Search folds case the same way ListFilter.Matches does.
func listWhereClause(d storage.Dialect, filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.Search != "" {
		where += " AND (" + d.Lower("name") + ` LIKE ? ESCAPE '\' OR ` + d.Lower("phone_number") + ` LIKE ? ESCAPE '\')`
		term := "%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%"
		args = append(args, term, term)
	}
	switch filter.Status {
	case domain.StatusPaid:
		where += " AND paid_amount >= total_membership"
	case domain.StatusPartial:
		where += " AND paid_amount > 0 AND paid_amount < total_membership"
	case domain.StatusUnpaid:
		where += " AND paid_amount = 0 AND paid_amount < total_membership"
	}
	if filter.JoinDateFrom != nil {
		where += " AND join_date >= ?"
		args = append(args, storage.FormatTime(*filter.JoinDateFrom))
	}
	if filter.JoinDateTo != nil {
		where += " AND join_date <= ?"
		args = append(args, storage.FormatTime(*filter.JoinDateTo))
	}
	return where, args
}

// Count returns the total number of members matching the filter.
// POST: Returns count >= 0
func (s *SQLStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(s.dialect, filter)
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

// List retrieves Members matching the filter, newest join date first.
// POST: at most filter.Limit rows when Limit > 0, skipping filter.Offset
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	where, args := listWhereClause(s.dialect, filter)
	query := "SELECT " + memberColumns + " FROM member" + where + " ORDER BY join_date DESC, created_at DESC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	results := []domain.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return results, nil
}

// Statistics aggregates counts and revenue in one pass.
// POST: RemainingAmount equals ExpectedRevenue - TotalRevenue
func (s *SQLStore) Statistics(ctx context.Context) (domain.Statistics, error) {
	const query = `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN paid_amount >= total_membership THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN paid_amount > 0 AND paid_amount < total_membership THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN paid_amount = 0 AND paid_amount < total_membership THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(paid_amount), 0),
		COALESCE(SUM(total_membership), 0)
	FROM member`

	var st domain.Statistics
	err := s.db.QueryRowContext(ctx, query).Scan(
		&st.TotalMembers,
		&st.PaidMembers,
		&st.PartiallyPaidMembers,
		&st.UnpaidMembers,
		&st.TotalRevenue,
		&st.ExpectedRevenue,
	)
	if err != nil {
		return domain.Statistics{}, fmt.Errorf("member statistics: %w", err)
	}
	st.RemainingAmount = st.ExpectedRevenue - st.TotalRevenue
	return st, nil
}
