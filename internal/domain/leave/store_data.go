package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
	q    querier
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

const requestColumns = `
	id, tenant_id, employee_id, leave_type, start_date, end_date,
	days_requested, reason, status, COALESCE(approver_id::text, ''),
	decided_at, created_at, updated_at`

func scanRequest(row pgx.Row) (Request, error) {
	var r Request
	err := row.Scan(
		&r.ID, &r.TenantID, &r.EmployeeID, &r.LeaveType, &r.StartDate, &r.EndDate,
		&r.DaysRequested, &r.Reason, &r.Status, &r.ApproverID,
		&r.DecidedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func (s *Store) Request(ctx context.Context, tenantID, id string) (Request, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM leave_requests WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	r, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, fmt.Errorf("query leave request: %w", err)
	}
	return r, nil
}

func (s *Store) List(ctx context.Context, tenantID string, filter ListFilter) ([]Request, error) {
	query := `SELECT ` + requestColumns + ` FROM leave_requests WHERE tenant_id = $1`
	args := []any{tenantID}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(` AND employee_id = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leave requests: %w", err)
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leave request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *Store) Create(ctx context.Context, request Request) (Request, error) {
	row := s.q.QueryRow(ctx, `
		INSERT INTO leave_requests (tenant_id, employee_id, leave_type, start_date, end_date,
			days_requested, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+requestColumns,
		request.TenantID, request.EmployeeID, request.LeaveType, request.StartDate, request.EndDate,
		request.DaysRequested, request.Reason, request.Status,
	)
	created, err := scanRequest(row)
	if err != nil {
		return Request{}, fmt.Errorf("insert leave request: %w", err)
	}
	return created, nil
}

func (s *Store) Update(ctx context.Context, request Request) (Request, error) {
	row := s.q.QueryRow(ctx, `
		UPDATE leave_requests SET
			leave_type = $3, start_date = $4, end_date = $5,
			days_requested = $6, reason = $7, updated_at = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+requestColumns,
		request.TenantID, request.ID, request.LeaveType, request.StartDate, request.EndDate,
		request.DaysRequested, request.Reason,
	)
	updated, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, fmt.Errorf("update leave request: %w", err)
	}
	return updated, nil
}

func (s *Store) SetStatus(ctx context.Context, tenantID, id, status, approverID string) (Request, error) {
	row := s.q.QueryRow(ctx, `
		UPDATE leave_requests SET
			status = $3,
			approver_id = NULLIF($4, '')::uuid,
			decided_at = CASE WHEN $3 IN ('approved', 'rejected') THEN now() ELSE decided_at END,
			updated_at = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+requestColumns,
		tenantID, id, status, approverID,
	)
	updated, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, fmt.Errorf("set leave request status: %w", err)
	}
	return updated, nil
}

func (s *Store) HasOverlap(ctx context.Context, tenantID, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	var overlap bool
	err := s.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE tenant_id = $1 AND employee_id = $2
			  AND status IN ('pending', 'approved')
			  AND start_date <= $4 AND end_date >= $3
			  AND ($5 = '' OR id <> $5::uuid)
		)`,
		tenantID, employeeID, start, end, excludeID,
	).Scan(&overlap)
	if err != nil {
		return false, fmt.Errorf("query leave overlap: %w", err)
	}
	return overlap, nil
}

// Usage aggregates approved days by type for the year of asOf and the year
// before it, grouped by the request's start date.
func (s *Store) Usage(ctx context.Context, tenantID, employeeID string, asOf time.Time) (Usage, error) {
	year := asOf.Year()
	rows, err := s.q.Query(ctx, `
		SELECT leave_type, EXTRACT(YEAR FROM start_date)::int, COALESCE(SUM(days_requested), 0)::int
		FROM leave_requests
		WHERE tenant_id = $1 AND employee_id = $2 AND status = 'approved'
		  AND EXTRACT(YEAR FROM start_date)::int IN ($3, $4)
		GROUP BY leave_type, EXTRACT(YEAR FROM start_date)`,
		tenantID, employeeID, year, year-1,
	)
	if err != nil {
		return Usage{}, fmt.Errorf("query leave usage: %w", err)
	}
	defer rows.Close()

	usage := Usage{
		UsedDaysByType:         map[string]int{},
		UsedDaysByTypePrevYear: map[string]int{},
	}
	for rows.Next() {
		var leaveType string
		var rowYear, days int
		if err := rows.Scan(&leaveType, &rowYear, &days); err != nil {
			return Usage{}, fmt.Errorf("scan leave usage: %w", err)
		}
		leaveType = CanonicalType(leaveType)
		if rowYear == year {
			usage.UsedDaysByType[leaveType] += days
		} else {
			usage.UsedDaysByTypePrevYear[leaveType] += days
		}
	}
	return usage, rows.Err()
}

// WithEmployeeLock runs fn inside a transaction holding an advisory lock
// keyed on (tenant, employee), serializing validate-then-write sections
// against concurrent requests for the same employee. Nested calls reuse the
// current transaction.
func (s *Store) WithEmployeeLock(ctx context.Context, tenantID, employeeID string, fn func(StoreAPI) error) error {
	if _, alreadyInTx := s.q.(pgx.Tx); alreadyInTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin leave transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, tenantID+":"+employeeID,
	); err != nil {
		return fmt.Errorf("acquire employee lock: %w", err)
	}

	if err := fn(&Store{pool: s.pool, q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
