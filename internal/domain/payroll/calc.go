package payroll

import "github.com/shopspring/decimal"

type CalcResult struct {
	BaseSalary         decimal.Decimal
	TotalAllowances    decimal.Decimal
	TotalDeductions    decimal.Decimal
	NetSalary          decimal.Decimal
	AllowanceBreakdown []LineItem
	DeductionBreakdown []LineItem
}

var percentBase = decimal.NewFromInt(100)

// Calculate applies a rule set to a base salary. Fixed rules contribute their
// value as-is; percentage rules contribute base × value / 100. Every line is
// rounded to two decimal places before summing.
func Calculate(baseSalary decimal.Decimal, config Config) CalcResult {
	allowances, totalAllowances := applyRules(baseSalary, config.Allowances)
	deductions, totalDeductions := applyRules(baseSalary, config.Deductions)

	return CalcResult{
		BaseSalary:         baseSalary.Round(2),
		TotalAllowances:    totalAllowances,
		TotalDeductions:    totalDeductions,
		NetSalary:          baseSalary.Add(totalAllowances).Sub(totalDeductions).Round(2),
		AllowanceBreakdown: allowances,
		DeductionBreakdown: deductions,
	}
}

func applyRules(baseSalary decimal.Decimal, rules []Rule) ([]LineItem, decimal.Decimal) {
	items := make([]LineItem, 0, len(rules))
	total := decimal.Zero
	for _, rule := range rules {
		amount := rule.Value
		if rule.Type == RulePercentage {
			amount = baseSalary.Mul(rule.Value).Div(percentBase)
		}
		amount = amount.Round(2)
		items = append(items, LineItem{Name: rule.Name, Amount: amount})
		total = total.Add(amount)
	}
	return items, total.Round(2)
}
