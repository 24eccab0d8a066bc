package calendar

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSeasonStart(t *testing.T) {
	start := SeasonStart(2026)
	if !start.Equal(date(2025, time.December, 1)) {
		t.Errorf("expected season start 2025-12-01, got %s", start)
	}
}

func TestSeasonSaturdays(t *testing.T) {
	saturdays := SeasonSaturdays(2026)

	if len(saturdays) != 52 {
		t.Errorf("expected 52 Saturdays in season 2026, got %d", len(saturdays))
	}

	first := saturdays[0]
	if !first.Equal(date(2025, time.December, 6)) {
		t.Errorf("expected first Saturday 2025-12-06, got %s", first)
	}

	last := saturdays[len(saturdays)-1]
	if !last.Equal(date(2026, time.November, 28)) {
		t.Errorf("expected last Saturday 2026-11-28, got %s", last)
	}

	for _, sat := range saturdays {
		if sat.Weekday() != time.Saturday {
			t.Errorf("%s is not a Saturday", sat)
		}
	}
}

func TestSeasonSundays(t *testing.T) {
	sundays := SeasonSundays(2026)

	if len(sundays) != 52 {
		t.Errorf("expected 52 Sundays in season 2026, got %d", len(sundays))
	}

	if !sundays[0].Equal(date(2025, time.December, 7)) {
		t.Errorf("expected first Sunday 2025-12-07, got %s", sundays[0])
	}

	for _, sun := range sundays {
		if sun.Weekday() != time.Sunday {
			t.Errorf("%s is not a Sunday", sun)
		}
	}
}

func TestIsSeasonSaturday(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		date     time.Time
		expected bool
	}{
		{
			name:     "mid-November Saturday belongs to current season",
			year:     2026,
			date:     date(2026, time.November, 14),
			expected: true,
		},
		{
			name:     "first Saturday of season",
			year:     2026,
			date:     date(2025, time.December, 6),
			expected: true,
		},
		{
			name:     "Saturday before season start",
			year:     2026,
			date:     date(2025, time.November, 29),
			expected: false,
		},
		{
			name:     "Saturday after season end",
			year:     2026,
			date:     date(2026, time.December, 5),
			expected: false,
		},
		{
			name:     "Sunday in season is not a Saturday slot",
			year:     2026,
			date:     date(2026, time.June, 7),
			expected: false,
		},
		{
			name:     "weekday in season",
			year:     2026,
			date:     date(2026, time.June, 10),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsSeasonSaturday(tt.year, tt.date)
			if got != tt.expected {
				t.Errorf("IsSeasonSaturday(%d, %s) = %v, expected %v", tt.year, tt.date, got, tt.expected)
			}
		})
	}
}

func TestIsSeasonSunday(t *testing.T) {
	if !IsSeasonSunday(2026, date(2026, time.June, 7)) {
		t.Error("expected 2026-06-07 to be a season Sunday")
	}
	if IsSeasonSunday(2026, date(2026, time.June, 6)) {
		t.Error("Saturday should not count as a season Sunday")
	}
	if IsSeasonSunday(2026, date(2026, time.December, 6)) {
		t.Error("Sunday after season end should not count")
	}
}

func TestNormalize(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	in := time.Date(2026, time.March, 14, 23, 45, 0, 0, loc)

	got := Normalize(in)
	// 23:45 IST is 18:15 UTC on the same calendar day
	if !got.Equal(date(2026, time.March, 14)) {
		t.Errorf("expected 2026-03-14 UTC midnight, got %s", got)
	}
}

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		name  string
		in    time.Time
		start time.Time
		end   time.Time
	}{
		{
			name:  "mid-February",
			in:    date(2026, time.February, 15),
			start: date(2026, time.February, 1),
			end:   date(2026, time.March, 1),
		},
		{
			name:  "December rolls into next year",
			in:    date(2025, time.December, 20),
			start: date(2025, time.December, 1),
			end:   date(2026, time.January, 1),
		},
		{
			name:  "leap-year February",
			in:    date(2028, time.February, 29),
			start: date(2028, time.February, 1),
			end:   date(2028, time.March, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := MonthBounds(tt.in)
			if !start.Equal(tt.start) || !end.Equal(tt.end) {
				t.Errorf("MonthBounds(%s) = (%s, %s), expected (%s, %s)", tt.in, start, end, tt.start, tt.end)
			}
		})
	}
}

func TestSaturdaysInMonth(t *testing.T) {
	sats := SaturdaysInMonth(2026, date(2026, time.February, 10))
	if len(sats) != 4 {
		t.Fatalf("expected 4 Saturdays in February 2026, got %d", len(sats))
	}
	if !sats[0].Equal(date(2026, time.February, 7)) {
		t.Errorf("expected first February Saturday 2026-02-07, got %s", sats[0])
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-11-14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Equal(date(2026, time.November, 14)) {
		t.Errorf("expected 2026-11-14, got %s", d)
	}

	if _, err := ParseDate("14-11-2026"); err == nil {
		t.Error("expected error for malformed date")
	}

	if FormatDate(d) != "2026-11-14" {
		t.Errorf("expected round trip to 2026-11-14, got %s", FormatDate(d))
	}
}
