package leave

import "time"

// CountBusinessDays counts working days between start and end inclusive,
// skipping Saturdays, Sundays, and any day whose ISO date appears in
// holidays. Dates are compared in UTC at day granularity. A start after end
// yields 0; callers validate the range before asking.
func CountBusinessDays(start, end time.Time, holidays map[string]struct{}) int {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	count := 0
	for !day.After(last) {
		weekday := day.Weekday()
		if weekday != time.Saturday && weekday != time.Sunday {
			if _, holiday := holidays[day.Format("2006-01-02")]; !holiday {
				count++
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return count
}
