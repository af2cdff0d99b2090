package main

import (
	"context"

	"hrms/internal/domain/leave"
	"hrms/internal/domain/org"
	"hrms/internal/domain/payroll"
)

// leaveDirectory adapts the org store to the slice of employee data the
// leave engine needs.
type leaveDirectory struct {
	store *org.Store
}

func (d leaveDirectory) Employee(ctx context.Context, tenantID, employeeID string) (leave.EmployeeInfo, error) {
	e, err := d.store.Employee(ctx, tenantID, employeeID)
	if err != nil {
		return leave.EmployeeInfo{}, err
	}
	return leaveEmployee(e), nil
}

func (d leaveDirectory) EmployeeByUserID(ctx context.Context, tenantID, userID string) (leave.EmployeeInfo, error) {
	e, err := d.store.EmployeeByUserID(ctx, tenantID, userID)
	if err != nil {
		return leave.EmployeeInfo{}, err
	}
	return leaveEmployee(e), nil
}

func (d leaveDirectory) SettingsJSON(ctx context.Context, tenantID string) ([]byte, error) {
	return d.store.SettingsJSON(ctx, tenantID)
}

func leaveEmployee(e org.Employee) leave.EmployeeInfo {
	return leave.EmployeeInfo{
		ID:        e.ID,
		UserID:    e.UserID,
		ManagerID: e.ManagerID,
		HireDate:  e.HireDate,
	}
}

// payrollDirectory adapts the org store for the payroll engine.
type payrollDirectory struct {
	store *org.Store
}

func (d payrollDirectory) Employee(ctx context.Context, tenantID, employeeID string) (payroll.EmployeeInfo, error) {
	e, err := d.store.Employee(ctx, tenantID, employeeID)
	if err != nil {
		return payroll.EmployeeInfo{}, err
	}
	return payrollEmployee(e), nil
}

func (d payrollDirectory) ListActiveEmployees(ctx context.Context, tenantID string, employeeIDs []string) ([]payroll.EmployeeInfo, error) {
	employees, err := d.store.ListActive(ctx, tenantID, employeeIDs)
	if err != nil {
		return nil, err
	}
	infos := make([]payroll.EmployeeInfo, 0, len(employees))
	for _, e := range employees {
		infos = append(infos, payrollEmployee(e))
	}
	return infos, nil
}

func (d payrollDirectory) EmployeeByUserID(ctx context.Context, tenantID, userID string) (payroll.EmployeeInfo, error) {
	e, err := d.store.EmployeeByUserID(ctx, tenantID, userID)
	if err != nil {
		return payroll.EmployeeInfo{}, err
	}
	return payrollEmployee(e), nil
}

func (d payrollDirectory) SettingsJSON(ctx context.Context, tenantID string) ([]byte, error) {
	return d.store.SettingsJSON(ctx, tenantID)
}

func payrollEmployee(e org.Employee) payroll.EmployeeInfo {
	return payroll.EmployeeInfo{
		ID:         e.ID,
		UserID:     e.UserID,
		BaseSalary: e.BaseSalary,
	}
}
