package internal

import (
	"strconv"
	"strings"
	"time"
)

// APIDateLayout is the date format used by the backend for due and payment dates.
const APIDateLayout = "2006-01-02"

// ParseLocalDate parses a YYYY-MM-DD string into local midnight of that calendar day.
// The date is built from its components rather than parsed as an instant, so the
// day never shifts in timezones west of UTC. Returns false on malformed input.
// Each segment must be plain digits and the day only has to be in 1..31, so a
// day past the end of the month rolls over: 2024-02-31 is 2024-03-02.
func ParseLocalDate(s string) (time.Time, bool) {
	return ParseLocalDateIn(s, time.Local)
}

// ParseLocalDateIn is ParseLocalDate for an explicit location.
func ParseLocalDateIn(s string, loc *time.Location) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	var nums [3]int
	for i, p := range parts {
		if !allDigits(p) {
			return time.Time{}, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}

	year, month, day := nums[0], nums[1], nums[2]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatDateForAPI renders t's calendar day in its own location as YYYY-MM-DD.
func FormatDateForAPI(t time.Time) string {
	return t.Format(APIDateLayout)
}

// DisplayDate formats a backend date for humans, falling back to the raw string
// when it cannot be parsed.
func DisplayDate(s string) string {
	d, ok := ParseLocalDate(s)
	if !ok {
		return s
	}
	return d.Format("Mon Jan 2, 2006")
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b. Only the calendar dates matter,
// so a DST transition between them cannot add or drop a day.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// daysInMonth returns the number of days in the given month.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
