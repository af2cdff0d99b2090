package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Record struct {
	ID            string          `json:"id"`
	TenantID      string          `json:"tenantId"`
	EmployeeID    string          `json:"employeeId"`
	WorkDate      time.Time       `json:"workDate"`
	ClockIn       *time.Time      `json:"clockIn,omitempty"`
	ClockOut      *time.Time      `json:"clockOut,omitempty"`
	HoursWorked   decimal.Decimal `json:"hoursWorked"`
	OvertimeHours decimal.Decimal `json:"overtimeHours"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Summary aggregates an employee's attendance over a pay period.
type Summary struct {
	DaysWorked    int             `json:"daysWorked"`
	TotalOvertime decimal.Decimal `json:"totalOvertime"`
}
