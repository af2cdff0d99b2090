package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound         = errors.New("attendance record not found")
	ErrAlreadyClockedIn = errors.New("already clocked in for this date")
	ErrNotClockedIn     = errors.New("no open attendance record for this date")
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const recordColumns = `
	id, tenant_id, employee_id, work_date, clock_in, clock_out,
	hours_worked, overtime_hours, created_at, updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	err := row.Scan(
		&r.ID, &r.TenantID, &r.EmployeeID, &r.WorkDate, &r.ClockIn, &r.ClockOut,
		&r.HoursWorked, &r.OvertimeHours, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func (s *Store) RecordForDate(ctx context.Context, tenantID, employeeID string, workDate time.Time) (Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM attendance_records
		 WHERE tenant_id = $1 AND employee_id = $2 AND work_date = $3`,
		tenantID, employeeID, workDate,
	)
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("query attendance record: %w", err)
	}
	return r, nil
}

func (s *Store) ClockIn(ctx context.Context, tenantID, employeeID string, at time.Time) (Record, error) {
	workDate := at.UTC().Truncate(24 * time.Hour)
	row := s.pool.QueryRow(ctx, `
		INSERT INTO attendance_records (tenant_id, employee_id, work_date, clock_in)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, employee_id, work_date) DO NOTHING
		RETURNING `+recordColumns,
		tenantID, employeeID, workDate, at,
	)
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrAlreadyClockedIn
		}
		return Record{}, fmt.Errorf("insert attendance record: %w", err)
	}
	return r, nil
}

// ClockOut closes the day's open record and derives worked and overtime
// hours; anything beyond eight hours counts as overtime.
func (s *Store) ClockOut(ctx context.Context, tenantID, employeeID string, at time.Time) (Record, error) {
	workDate := at.UTC().Truncate(24 * time.Hour)
	row := s.pool.QueryRow(ctx, `
		UPDATE attendance_records SET
			clock_out = $4,
			hours_worked = ROUND(EXTRACT(EPOCH FROM ($4 - clock_in)) / 3600.0, 2),
			overtime_hours = GREATEST(ROUND(EXTRACT(EPOCH FROM ($4 - clock_in)) / 3600.0 - 8, 2), 0),
			updated_at = now()
		WHERE tenant_id = $1 AND employee_id = $2 AND work_date = $3
		  AND clock_in IS NOT NULL AND clock_out IS NULL
		RETURNING `+recordColumns,
		tenantID, employeeID, workDate, at,
	)
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotClockedIn
		}
		return Record{}, fmt.Errorf("close attendance record: %w", err)
	}
	return r, nil
}

func (s *Store) List(ctx context.Context, tenantID, employeeID string, from, to time.Time) ([]Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM attendance_records
		 WHERE tenant_id = $1 AND employee_id = $2 AND work_date BETWEEN $3 AND $4
		 ORDER BY work_date DESC`,
		tenantID, employeeID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("query attendance records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) Summary(ctx context.Context, tenantID, employeeID string, from, to time.Time) (Summary, error) {
	var summary Summary
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*)::int, COALESCE(SUM(overtime_hours), 0)
		FROM attendance_records
		WHERE tenant_id = $1 AND employee_id = $2 AND work_date BETWEEN $3 AND $4`,
		tenantID, employeeID, from, to,
	).Scan(&summary.DaysWorked, &summary.TotalOvertime)
	if err != nil {
		return Summary{}, fmt.Errorf("query attendance summary: %w", err)
	}
	return summary, nil
}
