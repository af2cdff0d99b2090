package payroll

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"hrms/internal/domain/attendance"
)

type Rule struct {
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// Config is the resolved set of allowance and deduction rules applied to a
// base salary, either tenant-wide or via a per-employee-per-period override.
type Config struct {
	Allowances []Rule `json:"allowances"`
	Deductions []Rule `json:"deductions"`
}

type LineItem struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type Record struct {
	ID                 string             `json:"id"`
	TenantID           string             `json:"tenantId"`
	EmployeeID         string             `json:"employeeId"`
	PayPeriod          string             `json:"payPeriod"`
	BaseSalary         decimal.Decimal    `json:"baseSalary"`
	TotalAllowances    decimal.Decimal    `json:"totalAllowances"`
	TotalDeductions    decimal.Decimal    `json:"totalDeductions"`
	NetSalary          decimal.Decimal    `json:"netSalary"`
	AllowanceBreakdown []LineItem         `json:"allowanceBreakdown"`
	DeductionBreakdown []LineItem         `json:"deductionBreakdown"`
	Attendance         attendance.Summary `json:"attendance"`
	Status             string             `json:"status"`
	PaymentMethod      string             `json:"paymentMethod,omitempty"`
	PaymentReference   string             `json:"paymentReference,omitempty"`
	PaidByUserID       string             `json:"paidByUserId,omitempty"`
	PaidAt             *time.Time         `json:"paidAt,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

type GenerateInput struct {
	PayPeriod   string   `json:"payPeriod"`
	EmployeeIDs []string `json:"employeeIds,omitempty"`
}

// GenerateResult summarizes a batch run. Failures lists employees whose
// record could not be generated; they never abort the rest of the batch.
type GenerateResult struct {
	PayPeriod string   `json:"payPeriod"`
	Generated int      `json:"generated"`
	Skipped   int      `json:"skipped"`
	Failures  []string `json:"failures,omitempty"`
	Records   []Record `json:"records"`
}

type StatusInput struct {
	Status           string     `json:"status"`
	PaymentMethod    string     `json:"paymentMethod,omitempty"`
	PaymentReference string     `json:"paymentReference,omitempty"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
}

type ListFilter struct {
	EmployeeID string
	PayPeriod  string
	Status     string
	Limit      int
	Offset     int
}

// EmployeeInfo is the slice of the employee record the payroll engine needs.
type EmployeeInfo struct {
	ID         string
	UserID     string
	BaseSalary decimal.Decimal
}

var payPeriodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func ValidPayPeriod(period string) bool {
	return payPeriodPattern.MatchString(period)
}

// PeriodBounds returns the first and last calendar day of a YYYY-MM period.
func PeriodBounds(period string) (time.Time, time.Time, error) {
	if !ValidPayPeriod(period) {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	start, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	end := start.AddDate(0, 1, -1)
	return start, end, nil
}
