package leave

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCountBusinessDays(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		holidays map[string]struct{}
		want     int
	}{
		{
			name:  "single weekday",
			start: date(2024, time.January, 8),
			end:   date(2024, time.January, 8),
			want:  1,
		},
		{
			name:  "single saturday",
			start: date(2024, time.January, 6),
			end:   date(2024, time.January, 6),
			want:  0,
		},
		{
			name:  "monday to friday",
			start: date(2024, time.January, 8),
			end:   date(2024, time.January, 12),
			want:  5,
		},
		{
			name:  "full week includes weekend",
			start: date(2024, time.January, 8),
			end:   date(2024, time.January, 14),
			want:  5,
		},
		{
			name:     "holiday mid-week excluded",
			start:    date(2024, time.January, 8),
			end:      date(2024, time.January, 12),
			holidays: map[string]struct{}{"2024-01-10": {}},
			want:     4,
		},
		{
			name:     "holiday on weekend changes nothing",
			start:    date(2024, time.January, 8),
			end:      date(2024, time.January, 14),
			holidays: map[string]struct{}{"2024-01-13": {}},
			want:     5,
		},
		{
			name:  "start after end",
			start: date(2024, time.January, 12),
			end:   date(2024, time.January, 8),
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountBusinessDays(tt.start, tt.end, tt.holidays)
			if got != tt.want {
				t.Fatalf("CountBusinessDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountBusinessDaysHolidayNeverIncreases(t *testing.T) {
	start := date(2024, time.March, 1)
	end := date(2024, time.March, 31)
	base := CountBusinessDays(start, end, nil)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		holidays := map[string]struct{}{day.Format("2006-01-02"): {}}
		got := CountBusinessDays(start, end, holidays)
		if got > base {
			t.Fatalf("holiday %s increased count: %d > %d", day.Format("2006-01-02"), got, base)
		}
		weekday := day.Weekday()
		if weekday != time.Saturday && weekday != time.Sunday && got != base-1 {
			t.Fatalf("weekday holiday %s: got %d, want %d", day.Format("2006-01-02"), got, base-1)
		}
	}
}
