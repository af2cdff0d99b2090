package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domainauth "hrms/internal/domain/auth"
)

type Service struct {
	store     StoreAPI
	directory Directory
	perms     PermissionChecker
}

func NewService(store StoreAPI, directory Directory, perms PermissionChecker) *Service {
	return &Service{store: store, directory: directory, perms: perms}
}

func (s *Service) settings(ctx context.Context, tenantID string) PolicySettings {
	raw, err := s.directory.SettingsJSON(ctx, tenantID)
	if err != nil {
		slog.Warn("load tenant settings failed, using defaults", "err", err)
		raw = nil
	}
	return ResolvePolicySettings(raw)
}

// CreateRequest validates and persists a new pending leave request. The
// overlap and balance checks run under a per-employee lock so concurrent
// requests cannot both pass validation.
func (s *Service) CreateRequest(ctx context.Context, actor domainauth.UserContext, input CreateInput) (CreateResult, error) {
	if !ValidType(input.LeaveType) {
		return CreateResult{}, ErrInvalidType
	}
	if input.StartDate.After(input.EndDate) {
		return CreateResult{}, ErrInvalidDateRange
	}

	employee, err := s.resolveTargetEmployee(ctx, actor, input.EmployeeID)
	if err != nil {
		return CreateResult{}, err
	}

	settings := s.settings(ctx, actor.TenantID)
	days := CountBusinessDays(input.StartDate, input.EndDate, settings.Holidays)
	if days == 0 {
		return CreateResult{}, ErrNoWorkingDays
	}

	request := Request{
		TenantID:      actor.TenantID,
		EmployeeID:    employee.ID,
		LeaveType:     input.LeaveType,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		DaysRequested: days,
		Reason:        input.Reason,
		Status:        StatusPending,
	}

	var created Request
	err = s.store.WithEmployeeLock(ctx, actor.TenantID, employee.ID, func(tx StoreAPI) error {
		if err := s.checkWindow(ctx, tx, request, settings, employee, ""); err != nil {
			return err
		}
		created, err = tx.Create(ctx, request)
		return err
	})
	if err != nil {
		return CreateResult{}, err
	}

	notify, err := s.approverTargets(ctx, actor.TenantID, employee)
	if err != nil {
		slog.Warn("resolve approver targets failed", "err", err)
	}
	return CreateResult{Request: created, NotifyUserIDs: notify}, nil
}

// UpdateRequest replaces the dates, type, and reason of a pending request,
// re-running the same validation as create with the request's own id excluded
// from the overlap check.
func (s *Service) UpdateRequest(ctx context.Context, actor domainauth.UserContext, id string, input UpdateInput) (Request, error) {
	existing, err := s.store.Request(ctx, actor.TenantID, id)
	if err != nil {
		return Request{}, err
	}
	if err := s.requireOwnerOrApprover(ctx, actor, existing.EmployeeID); err != nil {
		return Request{}, err
	}
	if existing.Status != StatusPending {
		return Request{}, ErrNotPending
	}
	if !ValidType(input.LeaveType) {
		return Request{}, ErrInvalidType
	}
	if input.StartDate.After(input.EndDate) {
		return Request{}, ErrInvalidDateRange
	}

	employee, err := s.directory.Employee(ctx, actor.TenantID, existing.EmployeeID)
	if err != nil {
		return Request{}, err
	}

	settings := s.settings(ctx, actor.TenantID)
	days := CountBusinessDays(input.StartDate, input.EndDate, settings.Holidays)
	if days == 0 {
		return Request{}, ErrNoWorkingDays
	}

	updated := existing
	updated.LeaveType = input.LeaveType
	updated.StartDate = input.StartDate
	updated.EndDate = input.EndDate
	updated.DaysRequested = days
	updated.Reason = input.Reason

	var result Request
	err = s.store.WithEmployeeLock(ctx, actor.TenantID, existing.EmployeeID, func(tx StoreAPI) error {
		if err := s.checkWindow(ctx, tx, updated, settings, employee, existing.ID); err != nil {
			return err
		}
		result, err = tx.Update(ctx, updated)
		return err
	})
	if err != nil {
		return Request{}, err
	}
	return result, nil
}

func (s *Service) ApproveRequest(ctx context.Context, actor domainauth.UserContext, id string) (DecisionResult, error) {
	return s.decide(ctx, actor, id, StatusApproved)
}

func (s *Service) RejectRequest(ctx context.Context, actor domainauth.UserContext, id string) (DecisionResult, error) {
	return s.decide(ctx, actor, id, StatusRejected)
}

func (s *Service) decide(ctx context.Context, actor domainauth.UserContext, id, status string) (DecisionResult, error) {
	existing, err := s.store.Request(ctx, actor.TenantID, id)
	if err != nil {
		return DecisionResult{}, err
	}
	if existing.Status != StatusPending {
		return DecisionResult{}, ErrNotPending
	}
	if !canTransition(existing.Status, status) {
		return DecisionResult{}, ErrInvalidTransition
	}

	employee, err := s.directory.Employee(ctx, actor.TenantID, existing.EmployeeID)
	if err != nil {
		return DecisionResult{}, err
	}
	eligible, err := s.isEligibleApprover(ctx, actor, employee)
	if err != nil {
		return DecisionResult{}, err
	}
	if !eligible {
		return DecisionResult{}, ErrNotAllowed
	}

	// Approval re-checks overlap under the employee lock: another request may
	// have been approved for the same window since this one was created.
	var updated Request
	err = s.store.WithEmployeeLock(ctx, actor.TenantID, existing.EmployeeID, func(tx StoreAPI) error {
		if status == StatusApproved {
			overlap, err := tx.HasOverlap(ctx, actor.TenantID, existing.EmployeeID, existing.StartDate, existing.EndDate, existing.ID)
			if err != nil {
				return err
			}
			if overlap {
				return ErrOverlap
			}
		}
		updated, err = tx.SetStatus(ctx, actor.TenantID, id, status, actor.UserID)
		return err
	})
	if err != nil {
		return DecisionResult{}, err
	}
	return DecisionResult{Request: updated, EmployeeUserID: employee.UserID}, nil
}

// CancelRequest cancels a pending request, or an approved one that has not
// started. Owners cancel their own; approve-permission holders cancel any.
func (s *Service) CancelRequest(ctx context.Context, actor domainauth.UserContext, id string) (DecisionResult, error) {
	existing, err := s.store.Request(ctx, actor.TenantID, id)
	if err != nil {
		return DecisionResult{}, err
	}
	if err := s.requireOwnerOrApprover(ctx, actor, existing.EmployeeID); err != nil {
		return DecisionResult{}, err
	}

	switch existing.Status {
	case StatusCancelled:
		return DecisionResult{}, ErrAlreadyCancelled
	case StatusRejected:
		return DecisionResult{}, ErrInvalidTransition
	case StatusApproved:
		today := time.Now().UTC().Truncate(24 * time.Hour)
		if existing.StartDate.Before(today) {
			return DecisionResult{}, ErrTooLateToCancel
		}
	}
	if !canTransition(existing.Status, StatusCancelled) {
		return DecisionResult{}, ErrInvalidTransition
	}

	updated, err := s.store.SetStatus(ctx, actor.TenantID, id, StatusCancelled, "")
	if err != nil {
		return DecisionResult{}, err
	}

	employee, err := s.directory.Employee(ctx, actor.TenantID, existing.EmployeeID)
	if err != nil {
		slog.Warn("resolve employee for cancel notification failed", "err", err)
		return DecisionResult{Request: updated}, nil
	}
	return DecisionResult{Request: updated, EmployeeUserID: employee.UserID}, nil
}

// Balances computes the per-type balance sheet for an employee as of a date.
func (s *Service) Balances(ctx context.Context, actor domainauth.UserContext, employeeID string, asOf time.Time) (map[string]BalanceItem, error) {
	employee, err := s.resolveTargetEmployee(ctx, actor, employeeID)
	if err != nil {
		return nil, err
	}
	usage, err := s.store.Usage(ctx, actor.TenantID, employee.ID, asOf)
	if err != nil {
		return nil, err
	}
	return CalculateBalances(BalanceInput{
		AsOf:     asOf,
		Settings: s.settings(ctx, actor.TenantID),
		Usage:    usage,
		HireDate: employee.HireDate,
	}), nil
}

func (s *Service) Get(ctx context.Context, actor domainauth.UserContext, id string) (Request, error) {
	request, err := s.store.Request(ctx, actor.TenantID, id)
	if err != nil {
		return Request{}, err
	}
	if err := s.requireOwnerOrApprover(ctx, actor, request.EmployeeID); err != nil {
		return Request{}, err
	}
	return request, nil
}

// ListRequests scopes the listing to the actor's own requests unless the
// actor holds the approve permission.
func (s *Service) ListRequests(ctx context.Context, actor domainauth.UserContext, filter ListFilter) ([]Request, error) {
	canApprove, err := s.perms.HasPermission(ctx, actor.RoleID, domainauth.PermLeaveApprove)
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

// checkWindow asserts overlap-freeness and, for paid types, sufficient
// balance. Must run inside the employee lock.
func (s *Service) checkWindow(ctx context.Context, tx StoreAPI, request Request, settings PolicySettings, employee EmployeeInfo, excludeID string) error {
	overlap, err := tx.HasOverlap(ctx, request.TenantID, request.EmployeeID, request.StartDate, request.EndDate, excludeID)
	if err != nil {
		return err
	}
	if overlap {
		return ErrOverlap
	}

	if CanonicalType(request.LeaveType) == TypeUnpaid {
		return nil
	}

	usage, err := tx.Usage(ctx, request.TenantID, request.EmployeeID, request.StartDate)
	if err != nil {
		return err
	}
	balances := CalculateBalances(BalanceInput{
		AsOf:     request.StartDate,
		Settings: settings,
		Usage:    usage,
		HireDate: employee.HireDate,
	})
	balance := balances[CanonicalType(request.LeaveType)]
	if balance.Remaining < request.DaysRequested {
		return fmt.Errorf("%w: %d remaining, %d requested", ErrInsufficientBalance, balance.Remaining, request.DaysRequested)
	}
	return nil
}

func (s *Service) resolveTargetEmployee(ctx context.Context, actor domainauth.UserContext, employeeID string) (EmployeeInfo, error) {
	if employeeID == "" {
		return s.directory.EmployeeByUserID(ctx, actor.TenantID, actor.UserID)
	}
	employee, err := s.directory.Employee(ctx, actor.TenantID, employeeID)
	if err != nil {
		return EmployeeInfo{}, err
	}
	if employee.UserID != actor.UserID {
		canApprove, err := s.perms.HasPermission(ctx, actor.RoleID, domainauth.PermLeaveApprove)
		if err != nil {
			return EmployeeInfo{}, err
		}
		if !canApprove {
			return EmployeeInfo{}, ErrNotAllowed
		}
	}
	return employee, nil
}

func (s *Service) requireOwnerOrApprover(ctx context.Context, actor domainauth.UserContext, employeeID string) error {
	employee, err := s.directory.Employee(ctx, actor.TenantID, employeeID)
	if err != nil {
		return err
	}
	if employee.UserID == actor.UserID {
		return nil
	}
	canApprove, err := s.perms.HasPermission(ctx, actor.RoleID, domainauth.PermLeaveApprove)
	if err != nil {
		return err
	}
	if !canApprove {
		return ErrNotAllowed
	}
	return nil
}

// isEligibleApprover allows the employee's configured manager or any holder
// of the approve permission. Self-approval is refused.
func (s *Service) isEligibleApprover(ctx context.Context, actor domainauth.UserContext, employee EmployeeInfo) (bool, error) {
	if employee.UserID == actor.UserID {
		return false, nil
	}
	if employee.ManagerID != "" {
		manager, err := s.directory.Employee(ctx, actor.TenantID, employee.ManagerID)
		if err == nil && manager.UserID == actor.UserID {
			return true, nil
		}
	}
	return s.perms.HasPermission(ctx, actor.RoleID, domainauth.PermLeaveApprove)
}

// approverTargets resolves who should hear about a new request: the manager's
// linked user if set, otherwise everyone holding the approve permission.
func (s *Service) approverTargets(ctx context.Context, tenantID string, employee EmployeeInfo) ([]string, error) {
	if employee.ManagerID != "" {
		manager, err := s.directory.Employee(ctx, tenantID, employee.ManagerID)
		if err == nil && manager.UserID != "" {
			return []string{manager.UserID}, nil
		}
	}
	return s.perms.ApproverUserIDs(ctx, tenantID, domainauth.PermLeaveApprove)
}
