package internal

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// DefaultAmountTolerance is the largest change between consecutive payments
// still considered the same price (e.g. 0.35 = 35%).
const DefaultAmountTolerance = 0.35

// lapseGraceDays is how long after the expected payment a bill still counts
// as active.
const lapseGraceDays = 5

type HistoryStatus string

const (
	HistoryActive HistoryStatus = "active"
	HistoryLapsed HistoryStatus = "lapsed"
)

// PaymentHistory summarises how a bill has actually been paid.
type PaymentHistory struct {
	BillID     int           `json:"bill_id"`
	Name       string        `json:"name"`
	Payments   int           `json:"payments"`
	FirstPaid  string        `json:"first_paid"`
	LastPaid   string        `json:"last_paid"`
	AvgAmount  float64       `json:"avg_amount"`
	MinAmount  float64       `json:"min_amount"`
	MaxAmount  float64       `json:"max_amount"`
	TypicalDay int           `json:"typical_day"`
	Regular    bool          `json:"regular"` // at most one payment per billing period
	Stable     bool          `json:"stable"`  // consecutive amounts within tolerance
	Status     HistoryStatus `json:"status"`
}

type datedPayment struct {
	date   time.Time
	amount float64
}

// BuildPaymentHistory groups payments by bill and summarises each group.
// Payments without a bill id are matched to bills by name, ignoring case.
// Payments for unknown bills and with unparsable dates are skipped. Active
// bills come first, then larger average amounts.
func BuildPaymentHistory(bills []Bill, payments []Payment, today time.Time, tolerance float64) []PaymentHistory {
	byID := make(map[int]Bill, len(bills))
	idByName := make(map[string]int, len(bills))
	for _, b := range bills {
		byID[b.ID] = b
		idByName[strings.ToLower(b.Name)] = b.ID
	}

	grouped := make(map[int][]datedPayment)
	for _, p := range payments {
		id := p.BillID
		if id == 0 {
			id = idByName[strings.ToLower(p.BillName)]
		}
		if _, ok := byID[id]; !ok {
			continue
		}
		d, ok := ParseLocalDateIn(p.PaymentDate, today.Location())
		if !ok {
			continue
		}
		grouped[id] = append(grouped[id], datedPayment{date: d, amount: p.Amount})
	}

	out := make([]PaymentHistory, 0, len(grouped))
	for id, dps := range grouped {
		slices.SortFunc(dps, func(a, b datedPayment) int { return a.date.Compare(b.date) })
		b := byID[id]

		minAmount, maxAmount := amountRange(dps)
		last := dps[len(dps)-1].date
		out = append(out, PaymentHistory{
			BillID:     id,
			Name:       b.Name,
			Payments:   len(dps),
			FirstPaid:  FormatDateForAPI(dps[0].date),
			LastPaid:   FormatDateForAPI(last),
			AvgAmount:  averageAmount(dps),
			MinAmount:  minAmount,
			MaxAmount:  maxAmount,
			TypicalDay: typicalDay(dps),
			Regular:    onePerPeriod(b, dps),
			Stable:     amountsWithinTolerance(dps, tolerance),
			Status:     historyStatus(b, last, today),
		})
	}

	slices.SortFunc(out, func(a, b PaymentHistory) int {
		if a.Status != b.Status {
			if a.Status == HistoryActive {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(math.Abs(b.AvgAmount), math.Abs(a.AvgAmount)); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// periodKey buckets payments by the bill's billing period. Weekly and
// custom schedules have no calendar period and always count as regular.
func periodKey(b Bill) (func(time.Time) string, bool) {
	switch b.Frequency {
	case FrequencyMonthly:
		if b.FrequencyType == FrequencySpecificDates {
			return nil, false
		}
		return func(t time.Time) string { return t.Format("2006-01") }, true
	case FrequencyQuarterly:
		return func(t time.Time) string { return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())+2)/3) }, true
	case FrequencyYearly:
		return func(t time.Time) string { return t.Format("2006") }, true
	}
	return nil, false
}

// onePerPeriod reports whether no billing period holds two payments.
func onePerPeriod(b Bill, dps []datedPayment) bool {
	key, ok := periodKey(b)
	if !ok {
		return true
	}
	seen := make(map[string]bool, len(dps))
	for _, dp := range dps {
		k := key(dp.date)
		if seen[k] {
			return false
		}
		seen[k] = true
	}
	return true
}

// amountsWithinTolerance compares each payment with the previous one, so a
// slow drift in price is still stable.
func amountsWithinTolerance(dps []datedPayment, tolerance float64) bool {
	for i := 1; i < len(dps); i++ {
		prev := math.Abs(dps[i-1].amount)
		curr := math.Abs(dps[i].amount)
		if prev == 0 {
			if curr != 0 {
				return false
			}
			continue
		}
		if math.Abs(curr-prev)/prev > tolerance {
			return false
		}
	}
	return true
}

func averageAmount(dps []datedPayment) float64 {
	if len(dps) == 0 {
		return 0
	}
	sum := 0.0
	for _, dp := range dps {
		sum += dp.amount
	}
	return sum / float64(len(dps))
}

func amountRange(dps []datedPayment) (lo, hi float64) {
	if len(dps) == 0 {
		return 0, 0
	}
	lo, hi = math.Abs(dps[0].amount), math.Abs(dps[0].amount)
	for _, dp := range dps[1:] {
		amt := math.Abs(dp.amount)
		lo = math.Min(lo, amt)
		hi = math.Max(hi, amt)
	}
	return lo, hi
}

// typicalDay is the mean day of month of the payments.
func typicalDay(dps []datedPayment) int {
	if len(dps) == 0 {
		return 0
	}
	sum := 0
	for _, dp := range dps {
		sum += dp.date.Day()
	}
	return sum / len(dps)
}

// historyStatus expects the next payment one schedule step after the last
// one and allows a few days' grace before calling the bill lapsed.
func historyStatus(b Bill, lastPaid, today time.Time) HistoryStatus {
	expected := NextDueDate(lastPaid, b)
	if daysBetween(expected, today) > lapseGraceDays {
		return HistoryLapsed
	}
	return HistoryActive
}
