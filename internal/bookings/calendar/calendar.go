// Package calendar resolves which dates are bookable Saturdays for a
// given season, and the Sunday overflow dates once Saturdays run out.
// A season for year Y runs 365 days starting December 1 of Y-1, so late
// November dates belong to the season that started the previous winter.
package calendar

import "time"

const seasonDays = 365

// SeasonStart returns the first day of the season for the given year,
// December 1 of the preceding year, at UTC midnight.
func SeasonStart(year int) time.Time {
	return time.Date(year-1, time.December, 1, 0, 0, 0, 0, time.UTC)
}

// SeasonEnd returns the exclusive end of the season window
func SeasonEnd(year int) time.Time {
	return SeasonStart(year).AddDate(0, 0, seasonDays)
}

// SeasonSaturdays returns every Saturday inside the season window for
// the given year, in ascending order, at UTC midnight.
func SeasonSaturdays(year int) []time.Time {
	start := SeasonStart(year)

	// Advance to the first Saturday on or after the season start.
	offset := (int(time.Saturday) - int(start.Weekday()) + 7) % 7
	first := start.AddDate(0, 0, offset)

	var saturdays []time.Time
	end := SeasonEnd(year)
	for d := first; d.Before(end); d = d.AddDate(0, 0, 7) {
		saturdays = append(saturdays, d)
	}
	return saturdays
}

// SeasonSundays returns every Sunday inside the season window for the
// given year, in ascending order, at UTC midnight.
func SeasonSundays(year int) []time.Time {
	start := SeasonStart(year)

	offset := (int(time.Sunday) - int(start.Weekday()) + 7) % 7
	first := start.AddDate(0, 0, offset)

	var sundays []time.Time
	end := SeasonEnd(year)
	for d := first; d.Before(end); d = d.AddDate(0, 0, 7) {
		sundays = append(sundays, d)
	}
	return sundays
}

// InSeason reports whether the date falls inside the season window
func InSeason(year int, date time.Time) bool {
	d := Normalize(date)
	return !d.Before(SeasonStart(year)) && d.Before(SeasonEnd(year))
}

// IsSeasonSaturday reports whether the date is a bookable Saturday of
// the given year's season.
func IsSeasonSaturday(year int, date time.Time) bool {
	d := Normalize(date)
	return d.Weekday() == time.Saturday && InSeason(year, d)
}

// IsSeasonSunday reports whether the date is an overflow Sunday of the
// given year's season.
func IsSeasonSunday(year int, date time.Time) bool {
	d := Normalize(date)
	return d.Weekday() == time.Sunday && InSeason(year, d)
}

// Normalize truncates a date to UTC midnight so dates compare and store
// consistently regardless of the caller's location or time of day.
func Normalize(date time.Time) time.Time {
	y, m, d := date.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthBounds returns the first day of the date's month and the first
// day of the following month, both at UTC midnight.
func MonthBounds(date time.Time) (time.Time, time.Time) {
	d := Normalize(date)
	start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	// Day 28 exists in every month; adding 4 days always lands in the
	// next month.
	next := start.AddDate(0, 0, 28+4)
	end := time.Date(next.Year(), next.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, end
}

// SaturdaysInMonth returns the season Saturdays that fall inside the
// same calendar month as the given date.
func SaturdaysInMonth(year int, date time.Time) []time.Time {
	start, end := MonthBounds(date)

	var out []time.Time
	for _, sat := range SeasonSaturdays(year) {
		if !sat.Before(start) && sat.Before(end) {
			out = append(out, sat)
		}
	}
	return out
}

// SundaysInMonth returns the season Sundays that fall inside the same
// calendar month as the given date.
func SundaysInMonth(year int, date time.Time) []time.Time {
	start, end := MonthBounds(date)

	var out []time.Time
	for _, sun := range SeasonSundays(year) {
		if !sun.Before(start) && sun.Before(end) {
			out = append(out, sun)
		}
	}
	return out
}

// ParseDate parses a YYYY-MM-DD date string into UTC midnight
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return Normalize(d), nil
}

// FormatDate renders a date as YYYY-MM-DD, the form used for slot lock
// ids and event keys.
func FormatDate(d time.Time) string {
	return Normalize(d).Format("2006-01-02")
}
