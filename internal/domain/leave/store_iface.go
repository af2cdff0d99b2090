package leave

import (
	"context"
	"time"
)

// StoreAPI is the persistence surface for leave requests. WithEmployeeLock
// serializes the read-then-write sections (overlap and balance checks) per
// employee, closing the double-booking window between concurrent calls.
type StoreAPI interface {
	Request(ctx context.Context, tenantID, id string) (Request, error)
	List(ctx context.Context, tenantID string, filter ListFilter) ([]Request, error)
	Create(ctx context.Context, request Request) (Request, error)
	Update(ctx context.Context, request Request) (Request, error)
	SetStatus(ctx context.Context, tenantID, id, status, approverID string) (Request, error)
	HasOverlap(ctx context.Context, tenantID, employeeID string, start, end time.Time, excludeID string) (bool, error)
	Usage(ctx context.Context, tenantID, employeeID string, asOf time.Time) (Usage, error)
	WithEmployeeLock(ctx context.Context, tenantID, employeeID string, fn func(StoreAPI) error) error
}

// Directory resolves employees and tenant settings; implemented by the org
// package.
type Directory interface {
	Employee(ctx context.Context, tenantID, employeeID string) (EmployeeInfo, error)
	EmployeeByUserID(ctx context.Context, tenantID, userID string) (EmployeeInfo, error)
	SettingsJSON(ctx context.Context, tenantID string) ([]byte, error)
}

// PermissionChecker resolves role grants; implemented by the auth package.
type PermissionChecker interface {
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
	ApproverUserIDs(ctx context.Context, tenantID, permission string) ([]string, error)
}
