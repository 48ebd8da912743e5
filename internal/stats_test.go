package internal

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func statsPayments() []Payment {
	return []Payment{
		{ID: 1, BillID: 1, BillType: TypeExpense, Amount: 1200, PaymentDate: "2025-05-01"},
		{ID: 2, BillID: 2, BillType: TypeBill, Amount: 80.10, PaymentDate: "2025-05-15"},
		{ID: 3, BillID: 3, BillType: TypeDeposit, Amount: 3000, PaymentDate: "2025-05-25"},
		{ID: 4, BillID: 1, BillType: TypeExpense, Amount: 1200, PaymentDate: "2025-06-01"},
		{ID: 5, BillID: 2, BillType: TypeDeposit, Amount: 40.05, PaymentDate: "2025-06-03", IsSharePayment: true, IsReceivedPayment: true},
		{ID: 6, BillID: 1, BillType: TypeExpense, Amount: 1100, PaymentDate: "2024-06-01"},
		{ID: 7, BillID: 1, BillType: TypeExpense, Amount: 999, PaymentDate: "broken"},
	}
}

func TestMonthlyTotals(t *testing.T) {
	got := MonthlyTotals(statsPayments())

	want := []struct {
		period   string
		expenses string
		deposits string
	}{
		{"2024-06", "1100", "0"},
		{"2025-05", "1280.1", "3000"},
		{"2025-06", "1200", "40.05"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d periods, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Period != w.period {
			t.Errorf("period %d = %s, want %s", i, got[i].Period, w.period)
		}
		if !got[i].Expenses.Equal(dec(w.expenses)) {
			t.Errorf("%s expenses = %s, want %s", w.period, got[i].Expenses, w.expenses)
		}
		if !got[i].Deposits.Equal(dec(w.deposits)) {
			t.Errorf("%s deposits = %s, want %s", w.period, got[i].Deposits, w.deposits)
		}
	}
	if net := got[1].Net(); !net.Equal(dec("1719.9")) {
		t.Errorf("2025-05 net = %s, want 1719.9", net)
	}
}

func TestYearlyTotals(t *testing.T) {
	got := YearlyTotals(statsPayments())
	if len(got) != 2 || got[0].Period != "2024" || got[1].Period != "2025" {
		t.Fatalf("unexpected periods: %+v", got)
	}
	if !got[1].Expenses.Equal(dec("2480.1")) {
		t.Errorf("2025 expenses = %s, want 2480.1", got[1].Expenses)
	}
}

func TestTotalsByAccount(t *testing.T) {
	bills := []Bill{
		{ID: 1, Name: "Rent", Account: "Checking"},
		{ID: 2, Name: "Power", Account: "Credit"},
		{ID: 3, Name: "Salary", Account: "Checking"},
	}
	payments := append(statsPayments(), Payment{ID: 8, BillID: 99, BillType: TypeExpense, Amount: 5, PaymentDate: "2025-06-01"})

	got := TotalsByAccount(payments, bills)
	if len(got) != 2 {
		t.Fatalf("got %d accounts, want 2: %+v", len(got), got)
	}
	if got[0].Account != "Checking" || got[1].Account != "Credit" {
		t.Errorf("accounts not sorted by expenses: %s, %s", got[0].Account, got[1].Account)
	}
	// Checking: 1200 + 1200 + 1100 + 999 expenses, 3000 deposits
	if !got[0].Total.Equal(dec("1499")) {
		t.Errorf("Checking total = %s, want 1499", got[0].Total)
	}
	if !got[1].Total.Equal(dec("40.05")) {
		t.Errorf("Credit total = %s, want 40.05", got[1].Total)
	}
}

func TestMonthlyComparison(t *testing.T) {
	got := MonthlyComparison(statsPayments(), 2025)
	if got.CurrentYear != 2025 || got.LastYear != 2024 {
		t.Fatalf("years = %d/%d", got.CurrentYear, got.LastYear)
	}
	if len(got.Months) != 2 || got.Months[0].Month != "05" || got.Months[1].Month != "06" {
		t.Fatalf("months = %+v", got.Months)
	}
	june := got.Months[1]
	if !june.CurrentYearExpenses.Equal(dec("1200")) || !june.LastYearExpenses.Equal(dec("1100")) {
		t.Errorf("june expenses = %s / %s", june.CurrentYearExpenses, june.LastYearExpenses)
	}
	if !june.CurrentYearDeposits.Equal(dec("40.05")) {
		t.Errorf("june deposits = %s, want 40.05", june.CurrentYearDeposits)
	}
}

func TestMonthlyProjection(t *testing.T) {
	bills := []Bill{
		{ID: 1, Name: "Gym", Amount: f64(12), Frequency: FrequencyWeekly, Type: TypeExpense},
		{ID: 2, Name: "Salary", Amount: f64(1200), Frequency: FrequencyBiWeekly, Type: TypeDeposit},
		{ID: 3, Name: "Insurance", Amount: f64(300), Frequency: FrequencyQuarterly, Type: TypeExpense},
		{ID: 4, Name: "Domain", Amount: f64(24), Frequency: FrequencyYearly, Type: TypeBill},
		{ID: 5, Name: "Power", Varies: true, AvgAmount: f64(75.5), Frequency: FrequencyMonthly, Type: TypeExpense},
		{ID: 6, Name: "Paycheck", Amount: f64(100), Frequency: FrequencyMonthly, FrequencyType: FrequencySpecificDates, FrequencyConfig: `{"dates":[1,15]}`, Type: TypeDeposit},
		{ID: 7, Name: "Cleaner", Amount: f64(30), Frequency: FrequencyCustom, FrequencyType: FrequencyMultipleWeekly, FrequencyConfig: `{"days":[0,3]}`, Type: TypeExpense},
		{ID: 8, Name: "Unknown amount", Varies: true, Frequency: FrequencyMonthly},
		{ID: 9, Name: "Archived", Amount: f64(999), Frequency: FrequencyMonthly, Archived: true},
		{ID: 10, Name: "Odd cadence", Amount: f64(10), Frequency: FrequencyCustom},
	}

	got := MonthlyProjection(bills)

	want := map[int]string{
		1: "52",
		2: "2600",
		3: "100",
		4: "2",
		5: "75.5",
		6: "200",
		7: "260",
	}
	if len(got.Bills) != len(want) {
		t.Fatalf("projected %d bills, want %d: %+v", len(got.Bills), len(want), got.Bills)
	}
	for _, pb := range got.Bills {
		if !pb.Monthly.Equal(dec(want[pb.BillID])) {
			t.Errorf("%s monthly = %s, want %s", pb.Name, pb.Monthly, want[pb.BillID])
		}
	}
	if !got.Expenses.Equal(dec("489.5")) {
		t.Errorf("expenses = %s, want 489.5", got.Expenses)
	}
	if !got.Deposits.Equal(dec("2800")) {
		t.Errorf("deposits = %s, want 2800", got.Deposits)
	}
	if !got.Net.Equal(dec("2310.5")) {
		t.Errorf("net = %s, want 2310.5", got.Net)
	}
}
