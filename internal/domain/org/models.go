package org

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EmployeeStatusActive     = "active"
	EmployeeStatusInactive   = "inactive"
	EmployeeStatusTerminated = "terminated"
)

type Employee struct {
	ID         string          `json:"id"`
	TenantID   string          `json:"tenantId"`
	UserID     string          `json:"userId,omitempty"`
	ManagerID  string          `json:"managerId,omitempty"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Email      string          `json:"email"`
	Position   string          `json:"position"`
	Department string          `json:"department"`
	HireDate   time.Time       `json:"hireDate"`
	BaseSalary decimal.Decimal `json:"baseSalary"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}
