package internal

import (
	"slices"
	"time"
)

// CalendarEntry is one expected occurrence of a bill.
type CalendarEntry struct {
	BillID int      `json:"bill_id"`
	Name   string   `json:"name"`
	Amount *float64 `json:"amount"`
	Type   BillType `json:"type"`
}

// CalendarDay groups the occurrences falling on one date.
type CalendarDay struct {
	Date    string          `json:"date"`
	Entries []CalendarEntry `json:"entries"`
	Total   float64         `json:"total"`
}

// BuildCalendar expands every non-archived bill over [from, to) and groups the
// occurrences per day, earliest first. Totals use projected amounts with
// deposits counted negative.
func BuildCalendar(bills []Bill, from, to time.Time) []CalendarDay {
	from, to = StartOfDay(from), StartOfDay(to)

	byDate := make(map[string]*CalendarDay)
	for _, b := range bills {
		if b.Archived {
			continue
		}
		amount, hasAmount := b.ProjectedAmount()
		if b.Type.IsDeposit() {
			amount = -amount
		}
		for _, d := range Occurrences(b, from, to) {
			key := FormatDateForAPI(d)
			day, ok := byDate[key]
			if !ok {
				day = &CalendarDay{Date: key}
				byDate[key] = day
			}
			day.Entries = append(day.Entries, CalendarEntry{
				BillID: b.ID,
				Name:   b.Name,
				Amount: b.Amount,
				Type:   b.Type,
			})
			if hasAmount {
				day.Total += amount
			}
		}
	}

	days := make([]CalendarDay, 0, len(byDate))
	for _, d := range byDate {
		days = append(days, *d)
	}
	slices.SortFunc(days, func(a, b CalendarDay) int {
		return compareDue(a.Date, b.Date)
	})
	return days
}
