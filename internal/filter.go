package internal

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Transaction-type filter values. Any other value matches nothing.
const (
	TypeFilterAll = "all"
)

// BillFilter is the state of the bills view filter bar. DateRange and Date are
// mutually exclusive; use SelectDate and SelectRange to change them.
type BillFilter struct {
	Search    string
	Type      string    // "all", "expense", "deposit", "bill"
	Account   string    // exact match when non-empty
	DateRange DateRange // RangeAll when unset
	Date      string    // exact next_due match when non-empty
}

// SelectDate picks a calendar day and clears the date range.
func (f BillFilter) SelectDate(date string) BillFilter {
	f.Date = date
	f.DateRange = RangeAll
	return f
}

// SelectRange picks a date range and clears the selected day.
func (f BillFilter) SelectRange(r DateRange) BillFilter {
	f.DateRange = r
	f.Date = ""
	return f
}

// FilterBills applies every stage of f in turn and returns a new slice in input
// order. The input is never modified.
func FilterBills(bills []Bill, f BillFilter, today time.Time) []Bill {
	query := strings.ToLower(strings.TrimSpace(f.Search))
	typ := f.Type
	if typ == "" {
		typ = TypeFilterAll
	}
	dateRange := f.DateRange
	if dateRange == "" {
		dateRange = RangeAll
	}

	result := make([]Bill, 0, len(bills))
	for _, b := range bills {
		if query != "" {
			if !matchesSearch(b, query) {
				continue
			}
		} else if b.Archived {
			continue
		}
		if typ != TypeFilterAll && string(b.Type) != typ {
			continue
		}
		if f.Account != "" && b.Account != f.Account {
			continue
		}
		if !InRange(b.NextDue, dateRange, today) {
			continue
		}
		if f.Date != "" && b.NextDue != f.Date {
			continue
		}
		result = append(result, b)
	}
	return result
}

func matchesSearch(b Bill, query string) bool {
	return strings.Contains(strings.ToLower(b.Name), query) ||
		strings.Contains(b.AmountString(), query) ||
		strings.Contains(strings.ToLower(b.NextDue), query)
}

// Accounts returns the distinct non-empty accounts in first-seen order.
func Accounts(bills []Bill) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range bills {
		if b.Account == "" || seen[b.Account] {
			continue
		}
		seen[b.Account] = true
		out = append(out, b.Account)
	}
	return out
}

// SortBills sorts in place by "due" (default), "name", "amount" or "type".
// Unparsable due dates and missing amounts sort last ascending. The sort is
// stable so equal keys keep their filtered order.
func SortBills(bills []Bill, field, dir string) {
	slices.SortStableFunc(bills, func(a, b Bill) int {
		var c int
		switch field {
		case "name":
			c = cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case "amount":
			c = compareOptional(a.Amount, b.Amount)
		case "type":
			c = cmp.Compare(a.Type, b.Type)
		default:
			c = compareDue(a.NextDue, b.NextDue)
		}
		if dir == "desc" {
			return -c
		}
		return c
	})
}

func compareOptional(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}

func compareDue(a, b string) int {
	da, okA := ParseLocalDateIn(a, time.UTC)
	db, okB := ParseLocalDateIn(b, time.UTC)
	switch {
	case !okA && !okB:
		return cmp.Compare(a, b)
	case !okA:
		return 1
	case !okB:
		return -1
	}
	return da.Compare(db)
}

// FilterByTags keeps bills carrying any of the given tags (case-insensitive).
func FilterByTags(bills []Bill, tags []string, cfg *Config) []Bill {
	if cfg == nil || len(tags) == 0 {
		return bills
	}
	var result []Bill
	for _, b := range bills {
		if hasAnyTag(cfg.GetTags(b.Name), tags) {
			result = append(result, b)
		}
	}
	return result
}

func hasAnyTag(billTags []string, filterTags []string) bool {
	for _, ft := range filterTags {
		for _, bt := range billTags {
			if strings.EqualFold(bt, ft) {
				return true
			}
		}
	}
	return false
}

// FilterByHidden removes bills matching the config's hide rules.
func FilterByHidden(bills []Bill, cfg *Config) []Bill {
	if cfg == nil {
		return bills
	}
	var result []Bill
	for _, b := range bills {
		if !cfg.ShouldHide(b) {
			result = append(result, b)
		}
	}
	return result
}
