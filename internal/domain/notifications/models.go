package notifications

import "time"

const (
	KindLeaveRequested = "leave_requested"
	KindLeaveDecided   = "leave_decided"
	KindLeaveCancelled = "leave_cancelled"
	KindPayrollBatch   = "payroll_batch"
	KindPayrollPaid    = "payroll_paid"
)

type Notification struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	UserID    string    `json:"userId"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateInput struct {
	TenantID string
	UserID   string
	Kind     string
	Title    string
	Body     string
	Link     string
}
