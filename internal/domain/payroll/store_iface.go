package payroll

import (
	"context"
	"time"

	"hrms/internal/domain/attendance"
)

// StoreAPI is the persistence surface for payroll records and overrides.
type StoreAPI interface {
	Record(ctx context.Context, tenantID, id string) (Record, error)
	RecordForPeriod(ctx context.Context, tenantID, employeeID, payPeriod string) (Record, error)
	List(ctx context.Context, tenantID string, filter ListFilter) ([]Record, error)
	Upsert(ctx context.Context, record Record) (Record, error)
	SetStatus(ctx context.Context, tenantID, id string, record Record) (Record, error)
	OverrideJSON(ctx context.Context, tenantID, employeeID, payPeriod string) ([]byte, error)
	SetOverride(ctx context.Context, tenantID, employeeID, payPeriod string, rules []byte) error
}

// Directory resolves employees and tenant settings; implemented by the org
// package.
type Directory interface {
	Employee(ctx context.Context, tenantID, employeeID string) (EmployeeInfo, error)
	ListActiveEmployees(ctx context.Context, tenantID string, employeeIDs []string) ([]EmployeeInfo, error)
	EmployeeByUserID(ctx context.Context, tenantID, userID string) (EmployeeInfo, error)
	SettingsJSON(ctx context.Context, tenantID string) ([]byte, error)
}

// AttendanceSource supplies the per-period attendance aggregate.
type AttendanceSource interface {
	Summary(ctx context.Context, tenantID, employeeID string, from, to time.Time) (attendance.Summary, error)
}

// PermissionChecker resolves role grants; implemented by the auth package.
type PermissionChecker interface {
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
	ApproverUserIDs(ctx context.Context, tenantID, permission string) ([]string, error)
}
