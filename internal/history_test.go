package internal

import (
	"math"
	"testing"
)

func datedPayments(t *testing.T, dates ...string) []datedPayment {
	t.Helper()
	dps := make([]datedPayment, len(dates))
	for i, d := range dates {
		dps[i] = datedPayment{date: mustDate(t, d), amount: 100}
	}
	return dps
}

func TestHistoryStatus(t *testing.T) {
	monthly := Bill{Frequency: FrequencyMonthly}
	tests := []struct {
		name     string
		bill     Bill
		lastPaid string
		today    string
		expected HistoryStatus
	}{
		{"paid this month", monthly, "2025-03-15", "2025-03-20", HistoryActive},
		{"within grace period", monthly, "2025-02-15", "2025-03-20", HistoryActive},
		{"past grace period", monthly, "2025-02-15", "2025-03-25", HistoryLapsed},
		{"two months ago", monthly, "2025-01-15", "2025-03-10", HistoryLapsed},
		{"month end clamps to february", monthly, "2025-01-31", "2025-03-10", HistoryLapsed},
		{"weekly", Bill{Frequency: FrequencyWeekly}, "2025-03-01", "2025-03-10", HistoryActive},
		{"yearly", Bill{Frequency: FrequencyYearly}, "2024-07-01", "2025-06-30", HistoryActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := historyStatus(tt.bill, mustDate(t, tt.lastPaid), mustDate(t, tt.today))
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestOnePerPeriod(t *testing.T) {
	tests := []struct {
		name     string
		bill     Bill
		dates    []string
		expected bool
	}{
		{"monthly pattern", Bill{Frequency: FrequencyMonthly}, []string{"2025-01-15", "2025-02-15", "2025-03-15"}, true},
		{"two in one month", Bill{Frequency: FrequencyMonthly}, []string{"2025-01-15", "2025-01-20", "2025-02-15"}, false},
		{"specific dates pay twice a month", Bill{Frequency: FrequencyMonthly, FrequencyType: FrequencySpecificDates},
			[]string{"2025-01-01", "2025-01-15"}, true},
		{"two in one quarter", Bill{Frequency: FrequencyQuarterly}, []string{"2025-01-15", "2025-03-20"}, false},
		{"quarterly pattern", Bill{Frequency: FrequencyQuarterly}, []string{"2025-01-15", "2025-04-15"}, true},
		{"weekly has no period", Bill{Frequency: FrequencyWeekly}, []string{"2025-01-01", "2025-01-02"}, true},
		{"yearly pattern", Bill{Frequency: FrequencyYearly}, []string{"2024-12-31", "2025-01-01"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := onePerPeriod(tt.bill, datedPayments(t, tt.dates...))
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestAmountsWithinTolerance(t *testing.T) {
	tests := []struct {
		name     string
		amounts  []float64
		expected bool
	}{
		{"gradual increase", []float64{100, 110, 125}, true},
		{"price jump", []float64{100, 150}, false},
		{"single payment", []float64{100}, true},
		{"zero stays zero", []float64{0, 0}, true},
		{"zero to something", []float64{0, 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dps := make([]datedPayment, len(tt.amounts))
			for i, a := range tt.amounts {
				dps[i] = datedPayment{amount: a}
			}
			if result := amountsWithinTolerance(dps, 0.2); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestBuildPaymentHistory(t *testing.T) {
	bills := []Bill{
		{ID: 1, Name: "Rent", Frequency: FrequencyMonthly},
		{ID: 2, Name: "Gym", Frequency: FrequencyMonthly},
		{ID: 4, Name: "Netflix", Frequency: FrequencyMonthly},
	}
	payments := []Payment{
		{BillID: 1, Amount: 1050, PaymentDate: "2025-06-01"},
		{BillID: 1, Amount: 1000, PaymentDate: "2025-05-01"},
		{BillName: "RENT", Amount: 1000, PaymentDate: "2025-04-01"},
		{BillID: 2, Amount: 30, PaymentDate: "2025-03-05"},
		{BillID: 4, Amount: 15, PaymentDate: "2025-06-10"},
		{BillID: 9, Amount: 99, PaymentDate: "2025-06-10"},
		{BillID: 4, Amount: 15, PaymentDate: "not a date"},
	}

	history := BuildPaymentHistory(bills, payments, mustDate(t, "2025-06-20"), DefaultAmountTolerance)

	var order []string
	for _, h := range history {
		order = append(order, h.Name)
	}
	if len(order) != 3 || order[0] != "Rent" || order[1] != "Netflix" || order[2] != "Gym" {
		t.Fatalf("expected Rent, Netflix, Gym (active by amount, then lapsed), got %v", order)
	}

	rent := history[0]
	if rent.Payments != 3 || rent.FirstPaid != "2025-04-01" || rent.LastPaid != "2025-06-01" {
		t.Errorf("rent = %+v", rent)
	}
	if math.Abs(rent.AvgAmount-3050.0/3) > 0.001 || rent.MinAmount != 1000 || rent.MaxAmount != 1050 {
		t.Errorf("rent amounts = %v (%v-%v)", rent.AvgAmount, rent.MinAmount, rent.MaxAmount)
	}
	if rent.TypicalDay != 1 || !rent.Regular || !rent.Stable || rent.Status != HistoryActive {
		t.Errorf("rent pattern = %+v", rent)
	}

	if history[1].Payments != 1 {
		t.Errorf("unparsable payment date counted: %+v", history[1])
	}
	if history[2].Status != HistoryLapsed {
		t.Errorf("gym status = %v, want lapsed", history[2].Status)
	}
}

func TestBuildPaymentHistory_Empty(t *testing.T) {
	history := BuildPaymentHistory([]Bill{{ID: 1, Name: "Rent"}}, nil, mustDate(t, "2025-06-20"), DefaultAmountTolerance)
	if history == nil || len(history) != 0 {
		t.Errorf("expected empty non-nil history, got %#v", history)
	}
}
