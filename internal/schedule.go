package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Schedule is the parsed form of a bill's frequency_config. Exactly one of
// SimpleSchedule, SpecificDates or MultipleWeekly.
type Schedule interface {
	isSchedule()
}

// SimpleSchedule means the frequency alone defines the cadence.
type SimpleSchedule struct{}

// SpecificDates lists days of the month (1-31) a monthly bill falls on.
type SpecificDates struct {
	Dates []int
}

// MultipleWeekly lists weekdays a custom bill falls on, 0 = Monday .. 6 = Sunday.
type MultipleWeekly struct {
	Days []int
}

func (SimpleSchedule) isSchedule() {}
func (SpecificDates) isSchedule()  {}
func (MultipleWeekly) isSchedule() {}

var (
	ErrEmptySchedule     = errors.New("schedule config has no usable entries")
	ErrMalformedSchedule = errors.New("malformed schedule config")
)

var weekdayAbbrev = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// ParseSchedule decodes a raw frequency_config for the given frequency type.
// Out-of-range entries are dropped; a config with nothing left is an error.
// Simple (and unknown) types always yield SimpleSchedule.
func ParseSchedule(ft FrequencyType, raw string) (Schedule, error) {
	switch ft {
	case FrequencySpecificDates:
		var cfg struct {
			Dates []float64 `json:"dates"`
		}
		if err := decodeScheduleConfig(raw, &cfg); err != nil {
			return nil, err
		}
		dates := wholeInRange(cfg.Dates, 1, 31)
		if len(dates) == 0 {
			return nil, fmt.Errorf("dates: %w", ErrEmptySchedule)
		}
		return SpecificDates{Dates: dates}, nil
	case FrequencyMultipleWeekly:
		var cfg struct {
			Days []float64 `json:"days"`
		}
		if err := decodeScheduleConfig(raw, &cfg); err != nil {
			return nil, err
		}
		days := wholeInRange(cfg.Days, 0, 6)
		if len(days) == 0 {
			return nil, fmt.Errorf("days: %w", ErrEmptySchedule)
		}
		return MultipleWeekly{Days: days}, nil
	default:
		return SimpleSchedule{}, nil
	}
}

func decodeScheduleConfig(raw string, v any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrEmptySchedule
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSchedule, err)
	}
	return nil
}

func wholeInRange(values []float64, lo, hi int) []int {
	var out []int
	for _, v := range values {
		if v != math.Trunc(v) {
			continue
		}
		n := int(v)
		if n < lo || n > hi {
			continue
		}
		out = append(out, n)
	}
	return out
}

// parseScheduleOrDefault treats any parse failure as "no config".
func parseScheduleOrDefault(ft FrequencyType, raw string) Schedule {
	s, err := ParseSchedule(ft, raw)
	if err != nil {
		return SimpleSchedule{}
	}
	return s
}

// Schedule returns the bill's parsed schedule, parsing on demand for bills that
// did not pass through NormalizeBills.
func (b Bill) Schedule() Schedule {
	if b.schedule != nil {
		return b.schedule
	}
	return parseScheduleOrDefault(b.FrequencyType, string(b.FrequencyConfig))
}

// DescribeFrequency renders a bill's cadence for display.
func DescribeFrequency(b Bill) string {
	switch b.Frequency {
	case FrequencyWeekly:
		return "Weekly"
	case FrequencyBiWeekly, FrequencyBiweekly:
		return "Bi-weekly"
	case FrequencyQuarterly:
		return "Quarterly"
	case FrequencyYearly:
		return "Yearly"
	case FrequencyMonthly:
		if b.FrequencyType == FrequencySpecificDates {
			if sd, ok := b.Schedule().(SpecificDates); ok {
				return "Monthly (" + joinInts(sd.Dates) + ")"
			}
		}
		return "Monthly"
	case FrequencyCustom:
		if b.FrequencyType == FrequencyMultipleWeekly {
			if mw, ok := b.Schedule().(MultipleWeekly); ok {
				names := make([]string, len(mw.Days))
				for i, d := range mw.Days {
					names[i] = weekdayAbbrev[d]
				}
				return "Weekly (" + strings.Join(names, ", ") + ")"
			}
		}
		return "Custom"
	default:
		return string(b.Frequency)
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

// NextDueDate computes the due date following current for the bill's schedule,
// matching the backend's advance-on-payment rule.
func NextDueDate(current time.Time, b Bill) time.Time {
	current = StartOfDay(current)

	switch b.Frequency {
	case FrequencyWeekly:
		return current.AddDate(0, 0, 7)
	case FrequencyBiWeekly, FrequencyBiweekly:
		return current.AddDate(0, 0, 14)
	case FrequencyMonthly:
		if sd, ok := b.Schedule().(SpecificDates); ok && b.FrequencyType == FrequencySpecificDates {
			return nextSpecificDate(current, sd.Dates)
		}
		return addMonthsClamped(current, 1)
	case FrequencyQuarterly:
		return addMonthsClamped(current, 3)
	case FrequencyYearly:
		y, m, d := current.Date()
		if m == time.February && d == 29 {
			d = 28
		}
		return time.Date(y+1, m, d, 0, 0, 0, 0, current.Location())
	case FrequencyCustom:
		if b.FrequencyType == FrequencyMultipleWeekly {
			if mw, ok := b.Schedule().(MultipleWeekly); ok {
				return nextWeekday(current, mw.Days)
			}
			return current.AddDate(0, 0, 7)
		}
	}
	return current.AddDate(0, 0, 30)
}

func nextSpecificDate(current time.Time, dates []int) time.Time {
	y, m, d := current.Date()

	later := -1
	for _, day := range dates {
		if day > d && (later == -1 || day < later) {
			later = day
		}
	}
	if later != -1 && later <= daysInMonth(y, m) {
		return time.Date(y, m, later, 0, 0, 0, 0, current.Location())
	}

	first := slices.Min(dates)
	nextMonth := time.Date(y, m+1, 1, 0, 0, 0, 0, current.Location())
	ny, nm, _ := nextMonth.Date()
	return time.Date(ny, nm, min(first, daysInMonth(ny, nm)), 0, 0, 0, 0, current.Location())
}

func nextWeekday(current time.Time, days []int) time.Time {
	today := mondayIndex(current.Weekday())

	later := -1
	for _, day := range days {
		if day > today && (later == -1 || day < later) {
			later = day
		}
	}
	if later != -1 {
		return current.AddDate(0, 0, later-today)
	}
	return current.AddDate(0, 0, 7-today+slices.Min(days))
}

// mondayIndex maps Go's Sunday-first weekday to the backend's Monday-first index.
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// addMonthsClamped moves t forward n months, clamping the day to the target
// month's length instead of overflowing into the month after.
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	ty, tm, _ := first.Date()
	return time.Date(ty, tm, min(d, daysInMonth(ty, tm)), 0, 0, 0, 0, t.Location())
}

// maxOccurrences bounds calendar expansion for very long windows.
const maxOccurrences = 1000

// Occurrences lists the bill's due dates within [from, to), starting at its
// next_due and advancing with NextDueDate. Bills with an unparsable next_due
// have no occurrences.
func Occurrences(b Bill, from, to time.Time) []time.Time {
	due, ok := ParseLocalDateIn(b.NextDue, from.Location())
	if !ok {
		return nil
	}

	var out []time.Time
	for i := 0; i < maxOccurrences && due.Before(to); i++ {
		if !due.Before(from) {
			out = append(out, due)
		}
		next := NextDueDate(due, b)
		if !next.After(due) {
			break
		}
		due = next
	}
	return out
}
