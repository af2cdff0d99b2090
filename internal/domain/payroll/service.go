package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	domainauth "hrms/internal/domain/auth"
)

type Service struct {
	store      StoreAPI
	directory  Directory
	attendance AttendanceSource
	perms      PermissionChecker
}

func NewService(store StoreAPI, directory Directory, attendanceSource AttendanceSource, perms PermissionChecker) *Service {
	return &Service{store: store, directory: directory, attendance: attendanceSource, perms: perms}
}

// Generate runs the batch payroll calculation for one pay period. Each active
// employee with attendance in the period gets a draft record upserted;
// employees whose record already moved past draft are left alone. Failures
// are collected per employee and never abort the batch.
func (s *Service) Generate(ctx context.Context, actor domainauth.UserContext, input GenerateInput) (GenerateResult, error) {
	from, to, err := PeriodBounds(input.PayPeriod)
	if err != nil {
		return GenerateResult{}, err
	}

	employees, err := s.directory.ListActiveEmployees(ctx, actor.TenantID, input.EmployeeIDs)
	if err != nil {
		return GenerateResult{}, err
	}

	settingsRaw, err := s.directory.SettingsJSON(ctx, actor.TenantID)
	if err != nil {
		slog.Warn("load tenant settings failed, using default payroll config", "err", err)
		settingsRaw = nil
	}
	tenantConfig := ResolveConfig(settingsRaw)

	result := GenerateResult{PayPeriod: input.PayPeriod}
	for _, employee := range employees {
		record, generated, err := s.generateOne(ctx, actor.TenantID, employee, input.PayPeriod, from, to, tenantConfig)
		if err != nil {
			slog.Warn("payroll generation failed for employee",
				"employeeId", employee.ID, "payPeriod", input.PayPeriod, "err", err)
			result.Failures = append(result.Failures, employee.ID)
			continue
		}
		if !generated {
			result.Skipped++
			continue
		}
		result.Generated++
		result.Records = append(result.Records, record)
	}
	return result, nil
}

func (s *Service) generateOne(ctx context.Context, tenantID string, employee EmployeeInfo, payPeriod string, from, to time.Time, tenantConfig Config) (Record, bool, error) {
	summary, err := s.attendance.Summary(ctx, tenantID, employee.ID, from, to)
	if err != nil {
		return Record{}, false, err
	}
	if summary.DaysWorked == 0 {
		return Record{}, false, nil
	}

	existing, err := s.store.RecordForPeriod(ctx, tenantID, employee.ID, payPeriod)
	if err == nil && existing.Status != StatusDraft {
		return Record{}, false, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Record{}, false, err
	}

	config := tenantConfig
	overrideRaw, err := s.store.OverrideJSON(ctx, tenantID, employee.ID, payPeriod)
	if err != nil {
		slog.Warn("load payroll override failed", "employeeId", employee.ID, "err", err)
	} else if override, ok := ResolveOverride(overrideRaw); ok {
		config = override
	}

	calc := Calculate(employee.BaseSalary, config)
	record, err := s.store.Upsert(ctx, Record{
		TenantID:           tenantID,
		EmployeeID:         employee.ID,
		PayPeriod:          payPeriod,
		BaseSalary:         calc.BaseSalary,
		TotalAllowances:    calc.TotalAllowances,
		TotalDeductions:    calc.TotalDeductions,
		NetSalary:          calc.NetSalary,
		AllowanceBreakdown: calc.AllowanceBreakdown,
		DeductionBreakdown: calc.DeductionBreakdown,
		Attendance:         summary,
		Status:             StatusDraft,
	})
	if err != nil {
		return Record{}, false, err
	}
	return record, true, nil
}

// AdvanceStatus moves a record along draft→processed→paid. A same-status
// update returns the record unchanged. Marking paid requires a payment
// method and stamps the paying user.
func (s *Service) AdvanceStatus(ctx context.Context, actor domainauth.UserContext, id string, input StatusInput) (Record, error) {
	existing, err := s.store.Record(ctx, actor.TenantID, id)
	if err != nil {
		return Record{}, err
	}

	noop, err := nextStatus(existing.Status, input.Status)
	if err != nil {
		return Record{}, err
	}
	if noop {
		return existing, nil
	}

	updated := existing
	updated.Status = input.Status
	if input.Status == StatusPaid {
		if input.PaymentMethod == "" {
			return Record{}, ErrPaymentDetailsRequired
		}
		paidAt := time.Now().UTC()
		if input.PaidAt != nil {
			paidAt = input.PaidAt.UTC()
		}
		updated.PaymentMethod = input.PaymentMethod
		updated.PaymentReference = input.PaymentReference
		updated.PaidByUserID = actor.UserID
		updated.PaidAt = &paidAt
	}
	return s.store.SetStatus(ctx, actor.TenantID, id, updated)
}

func (s *Service) Get(ctx context.Context, actor domainauth.UserContext, id string) (Record, error) {
	record, err := s.store.Record(ctx, actor.TenantID, id)
	if err != nil {
		return Record{}, err
	}
	if err := s.scopeToOwn(ctx, actor, record.EmployeeID); err != nil {
		return Record{}, err
	}
	return record, nil
}

// ListRecords scopes the listing to the actor's own records unless the actor
// holds the payroll approve permission.
func (s *Service) ListRecords(ctx context.Context, actor domainauth.UserContext, filter ListFilter) ([]Record, error) {
	canApprove, err := s.perms.HasPermission(ctx, actor.RoleID, domainauth.PermPayrollApprove)
	if err != nil {
		return nil, err
	}
	if !canApprove {
		own, err := s.directory.EmployeeByUserID(ctx, actor.TenantID, actor.UserID)
		if err != nil {
			return nil, err
		}
		filter.EmployeeID = own.ID
	}
	return s.store.List(ctx, actor.TenantID, filter)
}

// SetOverride stores a per-employee-per-period rule override. The document
// is validated but stored raw so invalid rules degrade at resolve time.
func (s *Service) SetOverride(ctx context.Context, actor domainauth.UserContext, employeeID, payPeriod string, rules json.RawMessage) error {
	if !ValidPayPeriod(payPeriod) {
		return ErrInvalidPeriod
	}
	if !json.Valid(rules) {
		return errors.New("override rules must be valid JSON")
	}
	return s.store.SetOverride(ctx, actor.TenantID, employeeID, payPeriod, rules)
}

func (s *Service) Override(ctx context.Context, actor domainauth.UserContext, employeeID, payPeriod string) (json.RawMessage, error) {
	if !ValidPayPeriod(payPeriod) {
		return nil, ErrInvalidPeriod
	}
	return s.store.OverrideJSON(ctx, actor.TenantID, employeeID, payPeriod)
}

// EmployeeUserID resolves the user account linked to an employee, for
// payment notifications.
func (s *Service) EmployeeUserID(ctx context.Context, tenantID, employeeID string) (string, error) {
	employee, err := s.directory.Employee(ctx, tenantID, employeeID)
	if err != nil {
		return "", err
	}
	return employee.UserID, nil
}

// AdminUserIDs lists the users to notify after a batch run.
func (s *Service) AdminUserIDs(ctx context.Context, tenantID string) ([]string, error) {
	return s.perms.ApproverUserIDs(ctx, tenantID, domainauth.PermPayrollApprove)
}

func (s *Service) scopeToOwn(ctx context.Context, actor domainauth.UserContext, employeeID string) error {
	canApprove, err := s.perms.HasPermission(ctx, actor.RoleID, domainauth.PermPayrollApprove)
	if err != nil {
		return err
	}
	if canApprove {
		return nil
	}
	own, err := s.directory.EmployeeByUserID(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return err
	}
	if own.ID != employeeID {
		return ErrNotAllowed
	}
	return nil
}
