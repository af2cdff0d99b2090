package org

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"hrms/internal/platform/crypto"
)

var ErrEmployeeNotFound = errors.New("employee not found")

type Store struct {
	pool   *pgxpool.Pool
	crypto *crypto.Service
}

func NewStore(pool *pgxpool.Pool, cryptoSvc *crypto.Service) *Store {
	return &Store{pool: pool, crypto: cryptoSvc}
}

const employeeColumns = `
	id, tenant_id, COALESCE(user_id::text, ''), COALESCE(manager_id::text, ''),
	first_name, last_name, email, position, department,
	hire_date, base_salary_enc, status, created_at, updated_at`

func (s *Store) scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	var salaryEnc []byte
	err := row.Scan(
		&e.ID, &e.TenantID, &e.UserID, &e.ManagerID,
		&e.FirstName, &e.LastName, &e.Email, &e.Position, &e.Department,
		&e.HireDate, &salaryEnc, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return Employee{}, err
	}
	e.BaseSalary = s.decodeSalary(salaryEnc)
	return e, nil
}

func (s *Store) decodeSalary(enc []byte) decimal.Decimal {
	if len(enc) == 0 {
		return decimal.Zero
	}
	plain, err := s.crypto.DecryptString(enc)
	if err != nil {
		slog.Warn("decrypt base salary failed", "err", err)
		return decimal.Zero
	}
	salary, err := decimal.NewFromString(plain)
	if err != nil {
		slog.Warn("parse base salary failed", "err", err)
		return decimal.Zero
	}
	return salary
}

func (s *Store) Employee(ctx context.Context, tenantID, employeeID string) (Employee, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE tenant_id = $1 AND id = $2`,
		tenantID, employeeID,
	)
	e, err := s.scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		return Employee{}, fmt.Errorf("query employee: %w", err)
	}
	return e, nil
}

func (s *Store) EmployeeByUserID(ctx context.Context, tenantID, userID string) (Employee, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE tenant_id = $1 AND user_id = $2`,
		tenantID, userID,
	)
	e, err := s.scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		return Employee{}, fmt.Errorf("query employee by user: %w", err)
	}
	return e, nil
}

// ListActive returns active employees for a tenant, optionally filtered to a
// set of employee ids.
func (s *Store) ListActive(ctx context.Context, tenantID string, employeeIDs []string) ([]Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE tenant_id = $1 AND status = 'active'`
	args := []any{tenantID}
	if len(employeeIDs) > 0 {
		query += ` AND id = ANY($2)`
		args = append(args, employeeIDs)
	}
	query += ` ORDER BY last_name, first_name`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query active employees: %w", err)
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		e, err := s.scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) CreateEmployee(ctx context.Context, e Employee) (Employee, error) {
	salaryEnc, err := s.crypto.EncryptString(e.BaseSalary.String())
	if err != nil {
		return Employee{}, fmt.Errorf("encrypt base salary: %w", err)
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO employees (tenant_id, user_id, manager_id, first_name, last_name, email,
			position, department, hire_date, base_salary_enc, status)
		VALUES ($1, NULLIF($2, '')::uuid, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+employeeColumns,
		e.TenantID, e.UserID, e.ManagerID, e.FirstName, e.LastName, e.Email,
		e.Position, e.Department, e.HireDate, salaryEnc, EmployeeStatusActive,
	)
	created, err := s.scanEmployee(row)
	if err != nil {
		return Employee{}, fmt.Errorf("insert employee: %w", err)
	}
	return created, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, e Employee) (Employee, error) {
	salaryEnc, err := s.crypto.EncryptString(e.BaseSalary.String())
	if err != nil {
		return Employee{}, fmt.Errorf("encrypt base salary: %w", err)
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE employees SET
			manager_id = NULLIF($3, '')::uuid,
			first_name = $4, last_name = $5, email = $6,
			position = $7, department = $8, hire_date = $9,
			base_salary_enc = $10, status = $11, updated_at = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+employeeColumns,
		e.TenantID, e.ID, e.ManagerID, e.FirstName, e.LastName, e.Email,
		e.Position, e.Department, e.HireDate, salaryEnc, e.Status,
	)
	updated, err := s.scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		return Employee{}, fmt.Errorf("update employee: %w", err)
	}
	return updated, nil
}

// SettingsJSON returns the tenant's raw settings document. Callers parse the
// sections they care about; unknown keys are preserved on update.
func (s *Store) SettingsJSON(ctx context.Context, tenantID string) ([]byte, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT settings_json FROM tenants WHERE id = $1`, tenantID,
	).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("query tenant settings: %w", err)
	}
	return raw, nil
}

func (s *Store) UpdateSettings(ctx context.Context, tenantID string, settings []byte) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenants SET settings_json = $2, updated_at = now() WHERE id = $1`,
		tenantID, settings,
	)
	if err != nil {
		return fmt.Errorf("update tenant settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tenant %s not found", tenantID)
	}
	return nil
}

// TenantIDs lists all tenants, used by background jobs that iterate tenants.
func (s *Store) TenantIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM tenants ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query tenants: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
