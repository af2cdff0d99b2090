package leave

import (
	"testing"
	"time"
)

func defaultBalanceInput(asOf time.Time) BalanceInput {
	return BalanceInput{
		AsOf:     asOf,
		Settings: ResolvePolicySettings(nil),
		Usage: Usage{
			UsedDaysByType:         map[string]int{},
			UsedDaysByTypePrevYear: map[string]int{},
		},
		HireDate: date(2020, time.January, 1),
	}
}

func TestCalculateBalancesCarryForward(t *testing.T) {
	input := defaultBalanceInput(date(2024, time.December, 1))
	input.Usage.UsedDaysByTypePrevYear[TypeAnnual] = 12

	balances := CalculateBalances(input)
	annual := balances[TypeAnnual]

	// Prior year left 20-12=8 unused, capped at the carry-forward max of 5.
	if annual.CarryForward != 5 {
		t.Fatalf("carryForward = %d, want 5", annual.CarryForward)
	}
	if annual.Entitlement != 20 {
		t.Fatalf("entitlement = %d, want 20", annual.Entitlement)
	}
	if annual.Total != 25 {
		t.Fatalf("total = %d, want 25", annual.Total)
	}
}

func TestCalculateBalancesCarryForwardBelowCap(t *testing.T) {
	input := defaultBalanceInput(date(2024, time.December, 1))
	input.Usage.UsedDaysByTypePrevYear[TypeAnnual] = 18

	annual := CalculateBalances(input)[TypeAnnual]
	if annual.CarryForward != 2 {
		t.Fatalf("carryForward = %d, want 2", annual.CarryForward)
	}
}

func TestCalculateBalancesRemainingNeverNegative(t *testing.T) {
	for used := 0; used <= 60; used += 7 {
		for usedPrior := 0; usedPrior <= 60; usedPrior += 11 {
			input := defaultBalanceInput(date(2024, time.June, 1))
			input.Usage.UsedDaysByType[TypeAnnual] = used
			input.Usage.UsedDaysByTypePrevYear[TypeAnnual] = usedPrior

			for leaveType, item := range CalculateBalances(input) {
				if item.Remaining < 0 {
					t.Fatalf("%s remaining negative with used=%d prior=%d: %+v", leaveType, used, usedPrior, item)
				}
				if item.CarryForward < 0 {
					t.Fatalf("%s carryForward negative: %+v", leaveType, item)
				}
			}
		}
	}
}

func TestCalculateBalancesNoCarryForMidPriorYearHire(t *testing.T) {
	input := defaultBalanceInput(date(2024, time.January, 8))
	input.HireDate = date(2023, time.June, 1)

	annual := CalculateBalances(input)[TypeAnnual]
	if annual.CarryForward != 0 {
		t.Fatalf("carryForward = %d, want 0 for a mid-prior-year hire", annual.CarryForward)
	}
	if annual.Entitlement != 2 {
		t.Fatalf("entitlement = %d, want 2 (one accrued month)", annual.Entitlement)
	}
	if annual.Remaining != 2 {
		t.Fatalf("remaining = %d, want 2", annual.Remaining)
	}
}

func TestCalculateBalancesCasualAlias(t *testing.T) {
	input := defaultBalanceInput(date(2024, time.June, 1))
	input.Usage.UsedDaysByType[TypePersonal] = 2

	balances := CalculateBalances(input)
	personal := balances[TypePersonal]
	casual, ok := balances[TypeCasual]
	if !ok {
		t.Fatal("casual alias missing from balances")
	}
	if casual.LeaveType != TypeCasual {
		t.Fatalf("casual alias leaveType = %q", casual.LeaveType)
	}
	if casual.Total != personal.Total || casual.Used != personal.Used || casual.Remaining != personal.Remaining {
		t.Fatalf("casual %+v does not mirror personal %+v", casual, personal)
	}
}
