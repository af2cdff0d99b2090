package leave

import (
	"math"
	"time"
)

// ProrateEntitlement scales a full-year entitlement to what an employee has
// actually earned as of a date. Non-accruing types grant the full amount once
// the employee has been on board for a complete calendar year; accruing types
// and current-year hires earn month by month.
func ProrateEntitlement(annualDays int, accrualEnabled bool, hireDate, asOf time.Time) int {
	if annualDays <= 0 {
		return 0
	}

	yearStart := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	hiredThisYear := hireDate.Year() == asOf.Year()

	if !accrualEnabled && !hiredThisYear && hireDate.Before(yearStart) {
		return annualDays
	}

	effective := yearStart
	if hireDate.After(effective) {
		effective = hireDate
	}
	if effective.After(asOf) {
		return 0
	}

	months := int(asOf.Month()) - int(effective.Month()) + 1
	if months < 0 {
		months = 0
	}
	if months > 12 {
		months = 12
	}
	return int(math.Round(float64(annualDays) * float64(months) / 12))
}
