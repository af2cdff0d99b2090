package payroll

const (
	StatusDraft     = "draft"
	StatusProcessed = "processed"
	StatusPaid      = "paid"
)

const (
	RuleFixed      = "fixed"
	RulePercentage = "percentage"
)
