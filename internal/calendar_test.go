package internal

import (
	"testing"
)

func TestBuildCalendar(t *testing.T) {
	from := mustDate(t, "2025-06-10")
	to := mustDate(t, "2025-06-24")

	bills := []Bill{
		{ID: 1, Name: "Gym", Amount: f64(10), Frequency: FrequencyWeekly, NextDue: "2025-06-12", Type: TypeExpense},
		{ID: 2, Name: "Salary", Amount: f64(500), Frequency: FrequencyBiWeekly, NextDue: "2025-06-12", Type: TypeDeposit},
		{ID: 3, Name: "Rent", Amount: f64(1000), Frequency: FrequencyMonthly, NextDue: "2025-07-01", Type: TypeExpense},
		{ID: 4, Name: "Old", Amount: f64(5), Frequency: FrequencyWeekly, NextDue: "2025-06-12", Archived: true},
		{ID: 5, Name: "Power", Varies: true, AvgAmount: f64(80), Frequency: FrequencyMonthly, NextDue: "2025-06-20", Type: TypeBill},
	}

	days := BuildCalendar(bills, from, to)

	wantDates := []string{"2025-06-12", "2025-06-19", "2025-06-20"}
	if len(days) != len(wantDates) {
		t.Fatalf("got %d days, want %d: %+v", len(days), len(wantDates), days)
	}
	for i, d := range days {
		if d.Date != wantDates[i] {
			t.Errorf("day %d = %s, want %s", i, d.Date, wantDates[i])
		}
	}

	if n := len(days[0].Entries); n != 2 {
		t.Errorf("2025-06-12 entries = %d, want 2", n)
	}
	if days[0].Total != -490 {
		t.Errorf("2025-06-12 total = %v, want -490", days[0].Total)
	}
	if days[2].Total != 80 {
		t.Errorf("2025-06-20 total = %v, want 80 (average amount)", days[2].Total)
	}
	if days[2].Entries[0].Amount != nil {
		t.Errorf("varying bill entry should keep nil amount")
	}
}
