package leave

import "time"

type Request struct {
	ID            string     `json:"id"`
	TenantID      string     `json:"tenantId"`
	EmployeeID    string     `json:"employeeId"`
	LeaveType     string     `json:"leaveType"`
	StartDate     time.Time  `json:"startDate"`
	EndDate       time.Time  `json:"endDate"`
	DaysRequested int        `json:"daysRequested"`
	Reason        string     `json:"reason"`
	Status        string     `json:"status"`
	ApproverID    string     `json:"approverId,omitempty"`
	DecidedAt     *time.Time `json:"decidedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type CreateInput struct {
	EmployeeID string    `json:"employeeId"`
	LeaveType  string    `json:"leaveType"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Reason     string    `json:"reason"`
}

type UpdateInput struct {
	LeaveType string    `json:"leaveType"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Reason    string    `json:"reason"`
}

type ListFilter struct {
	EmployeeID string
	Status     string
	Limit      int
	Offset     int
}

// CreateResult carries the stored request plus the users the caller should
// notify: the employee's manager when one is configured, otherwise everyone
// holding the approve permission.
type CreateResult struct {
	Request       Request
	NotifyUserIDs []string
}

// DecisionResult is returned by approve/reject/cancel so the caller can
// notify the owning employee's user account.
type DecisionResult struct {
	Request        Request
	EmployeeUserID string
}

// EmployeeInfo is the slice of the employee record the leave engine needs.
type EmployeeInfo struct {
	ID        string
	UserID    string
	ManagerID string
	HireDate  time.Time
}
