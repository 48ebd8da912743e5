package internal

import (
	"fmt"
	"time"
)

// DateRange names a due-date window used for filtering and sidebar counts.
type DateRange string

const (
	RangeAll        DateRange = "all"
	RangeOverdue    DateRange = "overdue"
	RangeThisWeek   DateRange = "this-week"
	RangeNextWeek   DateRange = "next-week"
	RangeNext21Days DateRange = "next-21-days"
	RangeNext30Days DateRange = "next-30-days"
	RangeNone       DateRange = "none"
)

// DateRanges lists the selectable ranges in display order.
var DateRanges = []DateRange{RangeAll, RangeOverdue, RangeThisWeek, RangeNextWeek, RangeNext21Days, RangeNext30Days}

// ParseDateRange accepts the kebab-case names above plus the camelCase names the
// web client uses in URLs.
func ParseDateRange(s string) (DateRange, error) {
	switch s {
	case "", "all":
		return RangeAll, nil
	case "overdue":
		return RangeOverdue, nil
	case "this-week", "thisWeek":
		return RangeThisWeek, nil
	case "next-week", "nextWeek":
		return RangeNextWeek, nil
	case "next-21-days", "next21Days":
		return RangeNext21Days, nil
	case "next-30-days", "next30Days":
		return RangeNext30Days, nil
	}
	return "", fmt.Errorf("unknown date range %q", s)
}

// DueWindows holds one flag per window. The windows overlap: a bill due in three
// days is in this-week, next-21-days and next-30-days at once.
type DueWindows struct {
	Valid      bool `json:"valid"`
	Days       int  `json:"days"`
	Overdue    bool `json:"overdue"`
	ThisWeek   bool `json:"this_week"`
	NextWeek   bool `json:"next_week"`
	Next21Days bool `json:"next_21_days"`
	Next30Days bool `json:"next_30_days"`
}

// DaysUntil counts calendar days from today to nextDue. Negative means overdue.
func DaysUntil(nextDue string, today time.Time) (int, bool) {
	due, ok := ParseLocalDateIn(nextDue, today.Location())
	if !ok {
		return 0, false
	}
	return daysBetween(today, due), true
}

// ClassifyDueDate evaluates every window independently for one due date.
// Unparsable dates fall in no window.
func ClassifyDueDate(nextDue string, today time.Time) DueWindows {
	days, ok := DaysUntil(nextDue, today)
	if !ok {
		return DueWindows{}
	}
	return DueWindows{
		Valid:      true,
		Days:       days,
		Overdue:    days < 0,
		ThisWeek:   days >= 0 && days < 7,
		NextWeek:   days >= 7 && days < 14,
		Next21Days: days >= 0 && days < 21,
		Next30Days: days >= 0 && days < 30,
	}
}

// Tightest picks the narrowest matching window.
func (w DueWindows) Tightest() DateRange {
	switch {
	case w.Overdue:
		return RangeOverdue
	case w.ThisWeek:
		return RangeThisWeek
	case w.NextWeek:
		return RangeNextWeek
	case w.Next21Days:
		return RangeNext21Days
	case w.Next30Days:
		return RangeNext30Days
	default:
		return RangeNone
	}
}

// Contains reports whether the window r is set.
func (w DueWindows) Contains(r DateRange) bool {
	switch r {
	case RangeAll:
		return true
	case RangeOverdue:
		return w.Overdue
	case RangeThisWeek:
		return w.ThisWeek
	case RangeNextWeek:
		return w.NextWeek
	case RangeNext21Days:
		return w.Next21Days
	case RangeNext30Days:
		return w.Next30Days
	default:
		return false
	}
}

// InRange reports whether nextDue falls inside r relative to today.
func InRange(nextDue string, r DateRange, today time.Time) bool {
	if r == RangeAll {
		return true
	}
	return ClassifyDueDate(nextDue, today).Contains(r)
}

// DueColor is the badge colour for a due date. Unlike the windows, colours are
// exclusive and the bands are inclusive of their upper bound.
type DueColor string

const (
	DueRed    DueColor = "red"
	DueOrange DueColor = "orange"
	DueYellow DueColor = "yellow"
	DueBlue   DueColor = "blue"
	DueGray   DueColor = "gray"
)

func DueColorFor(days int) DueColor {
	switch {
	case days <= 7:
		return DueRed
	case days <= 14:
		return DueOrange
	case days <= 21:
		return DueYellow
	case days <= 30:
		return DueBlue
	default:
		return DueGray
	}
}

// WindowCounts is the sidebar summary: one independent count per window.
type WindowCounts struct {
	Overdue    int `json:"overdue"`
	ThisWeek   int `json:"this_week"`
	NextWeek   int `json:"next_week"`
	Next21Days int `json:"next_21_days"`
	Next30Days int `json:"next_30_days"`
}

// CountWindows counts non-archived bills per window.
func CountWindows(bills []Bill, today time.Time) WindowCounts {
	var c WindowCounts
	for _, b := range bills {
		if b.Archived {
			continue
		}
		w := ClassifyDueDate(b.NextDue, today)
		if w.Overdue {
			c.Overdue++
		}
		if w.ThisWeek {
			c.ThisWeek++
		}
		if w.NextWeek {
			c.NextWeek++
		}
		if w.Next21Days {
			c.Next21Days++
		}
		if w.Next30Days {
			c.Next30Days++
		}
	}
	return c
}
