package leave

import "time"

// Usage aggregates approved leave days by type for the current and previous
// calendar year. The store supplies it; the balance math stays pure.
type Usage struct {
	UsedDaysByType         map[string]int
	UsedDaysByTypePrevYear map[string]int
}

type BalanceItem struct {
	LeaveType    string `json:"leaveType"`
	Entitlement  int    `json:"entitlement"`
	CarryForward int    `json:"carryForward"`
	Total        int    `json:"total"`
	Used         int    `json:"used"`
	Remaining    int    `json:"remaining"`
}

type BalanceInput struct {
	AsOf     time.Time
	Settings PolicySettings
	Usage    Usage
	HireDate time.Time
}

// CalculateBalances produces the per-type balance sheet for one employee.
// Carry-forward is computed from the prior year's full entitlement, capped by
// policy. The casual alias mirrors the personal balance for legacy clients.
func CalculateBalances(input BalanceInput) map[string]BalanceItem {
	balances := make(map[string]BalanceItem, len(Types)+1)

	// Carry-forward presumes a full prior calendar year of employment;
	// anyone hired during or after the prior year starts from zero.
	priorYearStart := time.Date(input.AsOf.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
	eligibleForCarry := input.HireDate.Before(priorYearStart)

	for _, leaveType := range Types {
		policy := input.Settings.Types[leaveType]

		usedCurrent := input.Usage.UsedDaysByType[leaveType]
		usedPrior := input.Usage.UsedDaysByTypePrevYear[leaveType]

		carryForward := 0
		if eligibleForCarry {
			priorRemaining := policy.AnnualEntitlementDays - usedPrior
			if priorRemaining < 0 {
				priorRemaining = 0
			}
			carryForward = policy.CarryForwardMaxDays
			if priorRemaining < carryForward {
				carryForward = priorRemaining
			}
		}

		entitlement := ProrateEntitlement(policy.AnnualEntitlementDays, policy.AccrualEnabled, input.HireDate, input.AsOf)

		total := entitlement + carryForward
		remaining := total - usedCurrent
		if remaining < 0 {
			remaining = 0
		}

		balances[leaveType] = BalanceItem{
			LeaveType:    leaveType,
			Entitlement:  entitlement,
			CarryForward: carryForward,
			Total:        total,
			Used:         usedCurrent,
			Remaining:    remaining,
		}
	}

	casual := balances[TypePersonal]
	casual.LeaveType = TypeCasual
	balances[TypeCasual] = casual

	return balances
}
