package leave

import (
	"testing"
	"time"
)

func TestProrateEntitlement(t *testing.T) {
	tests := []struct {
		name    string
		annual  int
		accrues bool
		hire    time.Time
		asOf    time.Time
		want    int
	}{
		{
			name:   "non-accruing prior-year hire gets full grant",
			annual: 10,
			hire:   date(2022, time.March, 15),
			asOf:   date(2024, time.February, 1),
			want:   10,
		},
		{
			name:    "accruing prior-year hire earns monthly",
			annual:  20,
			accrues: true,
			hire:    date(2023, time.June, 1),
			asOf:    date(2024, time.January, 15),
			want:    2, // round(20*1/12)
		},
		{
			name:    "accruing prior-year hire by june",
			annual:  20,
			accrues: true,
			hire:    date(2022, time.January, 1),
			asOf:    date(2024, time.June, 30),
			want:    10,
		},
		{
			name:    "accruing full year",
			annual:  20,
			accrues: true,
			hire:    date(2022, time.January, 1),
			asOf:    date(2024, time.December, 31),
			want:    20,
		},
		{
			name:   "non-accruing current-year hire prorated",
			annual: 12,
			hire:   date(2024, time.July, 10),
			asOf:   date(2024, time.September, 1),
			want:   3, // Jul..Sep = 3 months
		},
		{
			name:   "hired after asOf",
			annual: 20,
			hire:   date(2024, time.October, 1),
			asOf:   date(2024, time.March, 1),
			want:   0,
		},
		{
			name:   "current-year january hire in december covers full year",
			annual: 20,
			hire:   date(2024, time.January, 2),
			asOf:   date(2024, time.December, 1),
			want:   20,
		},
		{
			name:   "zero annual days",
			annual: 0,
			hire:   date(2020, time.January, 1),
			asOf:   date(2024, time.June, 1),
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProrateEntitlement(tt.annual, tt.accrues, tt.hire, tt.asOf)
			if got != tt.want {
				t.Fatalf("ProrateEntitlement() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProrateEntitlementMonotonicThroughYear(t *testing.T) {
	hire := date(2023, time.June, 1)
	previous := 0
	for month := time.January; month <= time.December; month++ {
		got := ProrateEntitlement(20, true, hire, date(2024, month, 28))
		if got < previous {
			t.Fatalf("entitlement decreased at %s: %d < %d", month, got, previous)
		}
		previous = got
	}
	if previous != 20 {
		t.Fatalf("December entitlement = %d, want full 20", previous)
	}
}
