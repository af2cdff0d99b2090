package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const recordColumns = `
	id, tenant_id, employee_id, pay_period, base_salary,
	total_allowances, total_deductions, net_salary,
	allowance_breakdown, deduction_breakdown,
	days_worked, total_overtime_hours, status,
	COALESCE(payment_method, ''), COALESCE(payment_reference, ''),
	COALESCE(paid_by_user_id::text, ''), paid_at, created_at, updated_at`

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	var allowanceJSON, deductionJSON []byte
	err := row.Scan(
		&r.ID, &r.TenantID, &r.EmployeeID, &r.PayPeriod, &r.BaseSalary,
		&r.TotalAllowances, &r.TotalDeductions, &r.NetSalary,
		&allowanceJSON, &deductionJSON,
		&r.Attendance.DaysWorked, &r.Attendance.TotalOvertime, &r.Status,
		&r.PaymentMethod, &r.PaymentReference,
		&r.PaidByUserID, &r.PaidAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal(allowanceJSON, &r.AllowanceBreakdown); err != nil {
		return Record{}, fmt.Errorf("decode allowance breakdown: %w", err)
	}
	if err := json.Unmarshal(deductionJSON, &r.DeductionBreakdown); err != nil {
		return Record{}, fmt.Errorf("decode deduction breakdown: %w", err)
	}
	return r, nil
}

func (s *Store) Record(ctx context.Context, tenantID, id string) (Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM payroll_records WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("query payroll record: %w", err)
	}
	return r, nil
}

func (s *Store) RecordForPeriod(ctx context.Context, tenantID, employeeID, payPeriod string) (Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM payroll_records
		 WHERE tenant_id = $1 AND employee_id = $2 AND pay_period = $3`,
		tenantID, employeeID, payPeriod,
	)
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("query payroll record for period: %w", err)
	}
	return r, nil
}

func (s *Store) List(ctx context.Context, tenantID string, filter ListFilter) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM payroll_records WHERE tenant_id = $1`
	args := []any{tenantID}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(` AND employee_id = $%d`, len(args))
	}
	if filter.PayPeriod != "" {
		args = append(args, filter.PayPeriod)
		query += fmt.Sprintf(` AND pay_period = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	query += ` ORDER BY pay_period DESC, created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query payroll records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payroll record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Upsert writes one record per (employee, period). Regeneration of an
// existing draft replaces its computed figures.
func (s *Store) Upsert(ctx context.Context, record Record) (Record, error) {
	allowanceJSON, err := json.Marshal(record.AllowanceBreakdown)
	if err != nil {
		return Record{}, fmt.Errorf("encode allowance breakdown: %w", err)
	}
	deductionJSON, err := json.Marshal(record.DeductionBreakdown)
	if err != nil {
		return Record{}, fmt.Errorf("encode deduction breakdown: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO payroll_records (tenant_id, employee_id, pay_period, base_salary,
			total_allowances, total_deductions, net_salary,
			allowance_breakdown, deduction_breakdown, days_worked, total_overtime_hours, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (tenant_id, employee_id, pay_period) DO UPDATE SET
			base_salary = EXCLUDED.base_salary,
			total_allowances = EXCLUDED.total_allowances,
			total_deductions = EXCLUDED.total_deductions,
			net_salary = EXCLUDED.net_salary,
			allowance_breakdown = EXCLUDED.allowance_breakdown,
			deduction_breakdown = EXCLUDED.deduction_breakdown,
			days_worked = EXCLUDED.days_worked,
			total_overtime_hours = EXCLUDED.total_overtime_hours,
			updated_at = now()
		RETURNING `+recordColumns,
		record.TenantID, record.EmployeeID, record.PayPeriod, record.BaseSalary,
		record.TotalAllowances, record.TotalDeductions, record.NetSalary,
		allowanceJSON, deductionJSON, record.Attendance.DaysWorked, record.Attendance.TotalOvertime,
		record.Status,
	)
	upserted, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("upsert payroll record: %w", err)
	}
	return upserted, nil
}

func (s *Store) SetStatus(ctx context.Context, tenantID, id string, record Record) (Record, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE payroll_records SET
			status = $3,
			payment_method = NULLIF($4, ''),
			payment_reference = NULLIF($5, ''),
			paid_by_user_id = NULLIF($6, '')::uuid,
			paid_at = $7,
			updated_at = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+recordColumns,
		tenantID, id, record.Status,
		record.PaymentMethod, record.PaymentReference, record.PaidByUserID, record.PaidAt,
	)
	updated, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("set payroll status: %w", err)
	}
	return updated, nil
}

func (s *Store) OverrideJSON(ctx context.Context, tenantID, employeeID, payPeriod string) ([]byte, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT rules_json FROM payroll_overrides
		 WHERE tenant_id = $1 AND employee_id = $2 AND pay_period = $3`,
		tenantID, employeeID, payPeriod,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query payroll override: %w", err)
	}
	return raw, nil
}

func (s *Store) SetOverride(ctx context.Context, tenantID, employeeID, payPeriod string, rules []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO payroll_overrides (tenant_id, employee_id, pay_period, rules_json)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, employee_id, pay_period) DO UPDATE SET
			rules_json = EXCLUDED.rules_json,
			updated_at = now()`,
		tenantID, employeeID, payPeriod, rules,
	)
	if err != nil {
		return fmt.Errorf("upsert payroll override: %w", err)
	}
	return nil
}
