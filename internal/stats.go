package internal

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodTotals sums payments for one month ("2025-06") or year ("2025").
type PeriodTotals struct {
	Period   string          `json:"period"`
	Expenses decimal.Decimal `json:"expenses"`
	Deposits decimal.Decimal `json:"deposits"`
}

// Net is deposits minus expenses.
func (p PeriodTotals) Net() decimal.Decimal {
	return p.Deposits.Sub(p.Expenses)
}

func (p *PeriodTotals) add(pay Payment) {
	amount := decimal.NewFromFloat(pay.Amount)
	if pay.BillType.IsDeposit() {
		p.Deposits = p.Deposits.Add(amount)
	} else {
		p.Expenses = p.Expenses.Add(amount)
	}
}

// MonthlyTotals groups payments by payment month. The payment's effective type
// decides the side: "bill" and "expense" are expenses, deposits and payments
// received from sharees are deposits. Payments with unparsable dates are skipped.
func MonthlyTotals(payments []Payment) []PeriodTotals {
	return groupPayments(payments, "2006-01")
}

// YearlyTotals is MonthlyTotals per calendar year.
func YearlyTotals(payments []Payment) []PeriodTotals {
	return groupPayments(payments, "2006")
}

func groupPayments(payments []Payment, layout string) []PeriodTotals {
	byPeriod := make(map[string]*PeriodTotals)
	for _, p := range payments {
		d, ok := ParseLocalDateIn(p.PaymentDate, time.UTC)
		if !ok {
			continue
		}
		key := d.Format(layout)
		t, ok := byPeriod[key]
		if !ok {
			t = &PeriodTotals{Period: key}
			byPeriod[key] = t
		}
		t.add(p)
	}

	out := make([]PeriodTotals, 0, len(byPeriod))
	for _, t := range byPeriod {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b PeriodTotals) int {
		return cmp.Compare(a.Period, b.Period)
	})
	return out
}

// AccountTotals sums payments per bill account. Total is expenses minus deposits.
type AccountTotals struct {
	Account  string          `json:"account"`
	Expenses decimal.Decimal `json:"expenses"`
	Deposits decimal.Decimal `json:"deposits"`
	Total    decimal.Decimal `json:"total"`
}

// TotalsByAccount joins payments to their bills and sums per account, largest
// expenses first. Bills without an account are left out.
func TotalsByAccount(payments []Payment, bills []Bill) []AccountTotals {
	accounts := make(map[int]string, len(bills))
	for _, b := range bills {
		accounts[b.ID] = b.Account
	}

	byAccount := make(map[string]*PeriodTotals)
	for _, p := range payments {
		account := accounts[p.BillID]
		if account == "" {
			continue
		}
		t, ok := byAccount[account]
		if !ok {
			t = &PeriodTotals{Period: account}
			byAccount[account] = t
		}
		t.add(p)
	}

	out := make([]AccountTotals, 0, len(byAccount))
	for name, t := range byAccount {
		out = append(out, AccountTotals{
			Account:  name,
			Expenses: t.Expenses,
			Deposits: t.Deposits,
			Total:    t.Expenses.Sub(t.Deposits),
		})
	}
	slices.SortFunc(out, func(a, b AccountTotals) int {
		if c := b.Expenses.Cmp(a.Expenses); c != 0 {
			return c
		}
		return cmp.Compare(a.Account, b.Account)
	})
	return out
}

// MonthComparison holds one calendar month ("01".."12") of two consecutive years.
type MonthComparison struct {
	Month               string          `json:"month"`
	CurrentYearExpenses decimal.Decimal `json:"current_year_expenses"`
	CurrentYearDeposits decimal.Decimal `json:"current_year_deposits"`
	LastYearExpenses    decimal.Decimal `json:"last_year_expenses"`
	LastYearDeposits    decimal.Decimal `json:"last_year_deposits"`
}

type Comparison struct {
	CurrentYear int               `json:"current_year"`
	LastYear    int               `json:"last_year"`
	Months      []MonthComparison `json:"months"`
}

// MonthlyComparison compares year against the year before, month by month.
// Only months with at least one payment are listed.
func MonthlyComparison(payments []Payment, year int) Comparison {
	byMonth := make(map[string]*MonthComparison)
	for _, p := range payments {
		d, ok := ParseLocalDateIn(p.PaymentDate, time.UTC)
		if !ok || (d.Year() != year && d.Year() != year-1) {
			continue
		}
		key := d.Format("01")
		m, ok := byMonth[key]
		if !ok {
			m = &MonthComparison{Month: key}
			byMonth[key] = m
		}

		amount := decimal.NewFromFloat(p.Amount)
		current := d.Year() == year
		switch {
		case p.BillType.IsDeposit() && current:
			m.CurrentYearDeposits = m.CurrentYearDeposits.Add(amount)
		case p.BillType.IsDeposit():
			m.LastYearDeposits = m.LastYearDeposits.Add(amount)
		case current:
			m.CurrentYearExpenses = m.CurrentYearExpenses.Add(amount)
		default:
			m.LastYearExpenses = m.LastYearExpenses.Add(amount)
		}
	}

	months := make([]MonthComparison, 0, len(byMonth))
	for _, m := range byMonth {
		months = append(months, *m)
	}
	slices.SortFunc(months, func(a, b MonthComparison) int {
		return cmp.Compare(a.Month, b.Month)
	})
	return Comparison{CurrentYear: year, LastYear: year - 1, Months: months}
}

// ProjectedBill is one bill normalised to a monthly amount.
type ProjectedBill struct {
	BillID  int             `json:"bill_id"`
	Name    string          `json:"name"`
	Type    BillType        `json:"type"`
	Monthly decimal.Decimal `json:"monthly"`
	Varies  bool            `json:"varies,omitempty"`
}

type Projection struct {
	Bills    []ProjectedBill `json:"bills"`
	Expenses decimal.Decimal `json:"monthly_expenses"`
	Deposits decimal.Decimal `json:"monthly_deposits"`
	Net      decimal.Decimal `json:"monthly_net"`
}

var (
	twelve         = decimal.NewFromInt(12)
	weeksPerMonth  = decimal.NewFromInt(52).Div(twelve)
	fortnightMonth = decimal.NewFromInt(26).Div(twelve)
)

// MonthlyFactor is how many times per month a bill falls due on average. Bills
// whose cadence cannot be determined return false.
func MonthlyFactor(b Bill) (decimal.Decimal, bool) {
	switch b.Frequency {
	case FrequencyWeekly:
		return weeksPerMonth, true
	case FrequencyBiWeekly, FrequencyBiweekly:
		return fortnightMonth, true
	case FrequencyMonthly:
		if sd, ok := b.Schedule().(SpecificDates); ok && b.FrequencyType == FrequencySpecificDates {
			return decimal.NewFromInt(int64(len(sd.Dates))), true
		}
		return decimal.NewFromInt(1), true
	case FrequencyQuarterly:
		return decimal.NewFromInt(1).Div(decimal.NewFromInt(3)), true
	case FrequencyYearly:
		return decimal.NewFromInt(1).Div(twelve), true
	case FrequencyCustom:
		if mw, ok := b.Schedule().(MultipleWeekly); ok && b.FrequencyType == FrequencyMultipleWeekly {
			return weeksPerMonth.Mul(decimal.NewFromInt(int64(len(mw.Days)))), true
		}
	}
	return decimal.Zero, false
}

// MonthlyProjection normalises every active bill to a monthly amount. Varying
// bills use their average; bills with neither an amount nor an average, or an
// unknown cadence, are left out. Amounts are rounded to cents.
func MonthlyProjection(bills []Bill) Projection {
	var p Projection
	for _, b := range bills {
		if b.Archived {
			continue
		}
		amount, ok := b.ProjectedAmount()
		if !ok {
			continue
		}
		factor, ok := MonthlyFactor(b)
		if !ok {
			continue
		}

		monthly := decimal.NewFromFloat(amount).Mul(factor).Round(2)
		p.Bills = append(p.Bills, ProjectedBill{
			BillID:  b.ID,
			Name:    b.Name,
			Type:    b.Type,
			Monthly: monthly,
			Varies:  b.Amount == nil,
		})
		if b.Type.IsDeposit() {
			p.Deposits = p.Deposits.Add(monthly)
		} else {
			p.Expenses = p.Expenses.Add(monthly)
		}
	}
	p.Net = p.Deposits.Sub(p.Expenses)
	return p
}
