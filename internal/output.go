package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

// OutputOptions controls how bills are displayed
type OutputOptions struct {
	Filter   BillFilter
	Tags     []string
	Currency Currency
	Today    time.Time
}

// JSONOutput is the root JSON output object for the list view
type JSONOutput struct {
	Bills   []JSONBill  `json:"bills"`
	Summary JSONSummary `json:"summary"`
}

// JSONSummary contains aggregate statistics
type JSONSummary struct {
	Count    int          `json:"count"`
	Expenses float64      `json:"expenses"`
	Deposits float64      `json:"deposits"`
	Currency string       `json:"currency"`
	Windows  WindowCounts `json:"windows"`
}

// JSONBill is the JSON output format for a bill
type JSONBill struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Frequency   string   `json:"frequency"`
	Amount      *float64 `json:"amount"`
	NextDue     string   `json:"next_due"`
	DaysUntil   *int     `json:"days_until,omitempty"`
	Window      string   `json:"window,omitempty"`
	Type        BillType `json:"type"`
	Account     string   `json:"account,omitempty"`
	AutoPayment bool     `json:"auto_payment,omitempty"`
	Archived    bool     `json:"archived,omitempty"`
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// billTotals sums projected amounts per side.
func billTotals(bills []Bill) (expenses, deposits float64) {
	for _, b := range bills {
		amount, ok := b.ProjectedAmount()
		if !ok {
			continue
		}
		if b.Type.IsDeposit() {
			deposits += amount
		} else {
			expenses += amount
		}
	}
	return expenses, deposits
}

// BuildBillsJSON builds the list view's JSON document. Window counts cover all
// bills, totals only the displayed ones.
func BuildBillsJSON(allBills, displayBills []Bill, cfg *Config, opts OutputOptions) JSONOutput {
	bills := make([]JSONBill, 0, len(displayBills))
	for _, b := range displayBills {
		jb := JSONBill{
			ID:          b.ID,
			Name:        b.Name,
			Description: cfg.GetDescription(b.Name),
			Tags:        cfg.GetTags(b.Name),
			Frequency:   DescribeFrequency(b),
			Amount:      b.Amount,
			NextDue:     b.NextDue,
			Type:        b.Type,
			Account:     b.Account,
			AutoPayment: b.AutoPayment,
			Archived:    b.Archived,
		}
		if w := ClassifyDueDate(b.NextDue, opts.Today); w.Valid {
			days := w.Days
			jb.DaysUntil = &days
			if r := w.Tightest(); r != RangeNone {
				jb.Window = string(r)
			}
		}
		bills = append(bills, jb)
	}

	expenses, deposits := billTotals(displayBills)
	return JSONOutput{
		Bills: bills,
		Summary: JSONSummary{
			Count:    len(bills),
			Expenses: expenses,
			Deposits: deposits,
			Currency: opts.Currency.Code,
			Windows:  CountWindows(allBills, opts.Today),
		},
	}
}

// PrintBillsJSON outputs bills in JSON format
func PrintBillsJSON(w io.Writer, allBills, displayBills []Bill, cfg *Config, opts OutputOptions) error {
	return WriteJSON(w, BuildBillsJSON(allBills, displayBills, cfg, opts))
}

var dueColors = map[DueColor]text.Colors{
	DueRed:    {text.FgRed, text.Bold},
	DueOrange: {text.FgHiRed},
	DueYellow: {text.FgYellow},
	DueBlue:   {text.FgBlue},
	DueGray:   {text.FgHiBlack},
}

// dueCell renders a due date with its badge colour and a relative hint.
func dueCell(nextDue string, today time.Time) string {
	days, ok := DaysUntil(nextDue, today)
	if !ok {
		return text.FgHiBlack.Sprint("-")
	}

	var hint string
	switch {
	case days < 0:
		hint = fmt.Sprintf("%dd overdue", -days)
	case days == 0:
		hint = "today"
	case days == 1:
		hint = "tomorrow"
	default:
		hint = fmt.Sprintf("in %dd", days)
	}
	return dueColors[DueColorFor(days)].Sprintf("%s (%s)", DisplayDate(nextDue), hint)
}

func typeCell(t BillType) string {
	if t.IsDeposit() {
		return text.FgGreen.Sprint("deposit")
	}
	if t == "" {
		return string(TypeExpense)
	}
	return string(t)
}

func amountCell(b Bill, cur Currency) string {
	if b.Amount != nil {
		return cur.Format(*b.Amount)
	}
	if b.Varies && b.AvgAmount != nil {
		return "~" + cur.Format(*b.AvgAmount)
	}
	return text.FgHiBlack.Sprint("varies")
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// PrintBillsTable outputs bills as a formatted table
func PrintBillsTable(w io.Writer, allBills, displayBills []Bill, opts OutputOptions, cfg *Config) {
	counts := CountWindows(allBills, opts.Today)
	fmt.Fprintf(w, "Found %d bills (%d overdue, %d due this week, %d in the next 30 days)\n",
		len(allBills), counts.Overdue, counts.ThisWeek, counts.Next30Days)
	fmt.Fprintf(w, "Showing: %s\n\n", describeFilter(opts))

	t := newTable(w)

	// Check which optional columns to show
	hasDescriptions := false
	hasTags := false
	hasAccounts := false
	for _, b := range displayBills {
		if cfg.GetDescription(b.Name) != "" {
			hasDescriptions = true
		}
		if len(cfg.GetTags(b.Name)) > 0 {
			hasTags = true
		}
		if b.Account != "" {
			hasAccounts = true
		}
	}

	header := table.Row{"Name"}
	if hasDescriptions {
		header = append(header, "Description")
	}
	if hasTags {
		header = append(header, "Tags")
	}
	header = append(header, "Frequency", "Type")
	if hasAccounts {
		header = append(header, "Account")
	}
	header = append(header, "Next Due", "Amount")
	t.AppendHeader(header)

	for _, b := range displayBills {
		name := b.Name
		if b.AutoPayment {
			name += text.FgHiBlack.Sprint(" (auto)")
		}
		if b.ShareInfo != nil {
			name += text.FgHiBlack.Sprintf(" (from %s)", b.ShareInfo.OwnerName)
		}

		row := table.Row{name}
		if hasDescriptions {
			row = append(row, cfg.GetDescription(b.Name))
		}
		if hasTags {
			row = append(row, strings.Join(cfg.GetTags(b.Name), ", "))
		}
		row = append(row, DescribeFrequency(b), typeCell(b.Type))
		if hasAccounts {
			row = append(row, b.Account)
		}
		row = append(row, dueCell(b.NextDue, opts.Today), amountCell(b, opts.Currency))
		t.AppendRow(row)
	}

	t.AppendSeparator()

	expenses, deposits := billTotals(displayBills)
	t.AppendFooter(footerRow(len(header), "Expenses", opts.Currency.Format(expenses)))
	if deposits != 0 {
		t.AppendFooter(footerRow(len(header), "Deposits", opts.Currency.Format(deposits)))
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: len(header), Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	t.Render()
}

// footerRow puts a bold label and value in the last two of width columns.
func footerRow(width int, label, value string) table.Row {
	row := make(table.Row, width)
	for i := range row {
		row[i] = ""
	}
	row[width-2] = text.Bold.Sprint(label)
	row[width-1] = text.Bold.Sprint(value)
	return row
}

func describeFilter(opts OutputOptions) string {
	f := opts.Filter
	parts := []string{}
	switch {
	case f.Date != "":
		parts = append(parts, "due "+f.Date)
	case f.DateRange != "" && f.DateRange != RangeAll:
		parts = append(parts, string(f.DateRange))
	default:
		parts = append(parts, "all")
	}
	if f.Type != "" && f.Type != TypeFilterAll {
		parts = append(parts, "type: "+f.Type)
	}
	if f.Account != "" {
		parts = append(parts, "account: "+f.Account)
	}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", f.Search))
	}
	if len(opts.Tags) > 0 {
		parts = append(parts, "tags: "+strings.Join(opts.Tags, ", "))
	}
	return strings.Join(parts, ", ")
}

// Dashboard is the summary shown by the dashboard view and served at /views/dashboard.
type Dashboard struct {
	Today      string       `json:"today"`
	Windows    WindowCounts `json:"windows"`
	Projection Projection   `json:"projection"`
	Currency   string       `json:"currency"`
	Upcoming   []JSONBill   `json:"upcoming"`
}

// BuildDashboard counts the due windows and projects monthly totals. Upcoming
// lists the overdue and next-7-day bills, soonest first.
func BuildDashboard(bills []Bill, cfg *Config, opts OutputOptions) Dashboard {
	soon := FilterBills(bills, BillFilter{DateRange: RangeOverdue}, opts.Today)
	soon = append(soon, FilterBills(bills, BillFilter{DateRange: RangeThisWeek}, opts.Today)...)
	SortBills(soon, "due", "asc")

	return Dashboard{
		Today:      FormatDateForAPI(opts.Today),
		Windows:    CountWindows(bills, opts.Today),
		Projection: MonthlyProjection(bills),
		Currency:   opts.Currency.Code,
		Upcoming:   BuildBillsJSON(bills, soon, cfg, opts).Bills,
	}
}

// PrintDashboard renders the window counts, the monthly projection and the
// bills needing attention.
func PrintDashboard(w io.Writer, d Dashboard, cur Currency) {
	fmt.Fprintf(w, "Dashboard for %s\n\n", DisplayDate(d.Today))

	windows := newTable(w)
	windows.AppendHeader(table.Row{"Window", "Bills"})
	windows.AppendRows([]table.Row{
		{text.FgRed.Sprint("Overdue"), d.Windows.Overdue},
		{"This week", d.Windows.ThisWeek},
		{"Next week", d.Windows.NextWeek},
		{"Next 21 days", d.Windows.Next21Days},
		{"Next 30 days", d.Windows.Next30Days},
	})
	windows.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	windows.Render()
	fmt.Fprintln(w)

	proj := newTable(w)
	proj.AppendHeader(table.Row{"Monthly projection", "Amount"})
	proj.AppendRows([]table.Row{
		{"Expenses", cur.FormatDecimal(d.Projection.Expenses)},
		{"Deposits", cur.FormatDecimal(d.Projection.Deposits)},
	})
	proj.AppendFooter(table.Row{text.Bold.Sprint("Net"), text.Bold.Sprint(signedDecimal(cur, d.Projection.Net))})
	proj.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight}})
	proj.Render()

	if len(d.Upcoming) == 0 {
		fmt.Fprintln(w, "\nNothing due in the next 7 days.")
		return
	}

	fmt.Fprintln(w)
	up := newTable(w)
	up.AppendHeader(table.Row{"Needs attention", "Next Due", "Amount"})
	today, _ := ParseLocalDate(d.Today)
	for _, b := range d.Upcoming {
		up.AppendRow(table.Row{b.Name, dueCell(b.NextDue, today), cur.FormatOptional(b.Amount)})
	}
	up.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	up.Render()
}

func signedDecimal(cur Currency, d decimal.Decimal) string {
	s := cur.FormatDecimal(d)
	if d.IsNegative() {
		return text.FgRed.Sprint(s)
	}
	return text.FgGreen.Sprint(s)
}

// PrintCalendar renders one row per occurrence, grouped by day.
func PrintCalendar(w io.Writer, days []CalendarDay, cur Currency) {
	if len(days) == 0 {
		fmt.Fprintln(w, "No bills fall due in this period.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Date", "Bill", "Amount", "Day Total"})

	var net float64
	for _, day := range days {
		for i, e := range day.Entries {
			date, total := "", ""
			if i == 0 {
				date = DisplayDate(day.Date)
			}
			if i == len(day.Entries)-1 {
				total = cur.Format(day.Total)
			}
			name := e.Name
			if e.Type.IsDeposit() {
				name = text.FgGreen.Sprint(name)
			}
			t.AppendRow(table.Row{date, name, cur.FormatOptional(e.Amount), total})
		}
		t.AppendSeparator()
		net += day.Total
	}
	t.AppendFooter(table.Row{"", "", text.Bold.Sprint("Net outflow"), text.Bold.Sprint(cur.Format(net))})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	t.Render()
}

// Stats bundles the analytics views.
type Stats struct {
	Monthly    []PeriodTotals   `json:"monthly"`
	Yearly     []PeriodTotals   `json:"yearly"`
	ByAccount  []AccountTotals  `json:"by_account"`
	Comparison Comparison       `json:"comparison"`
	History    []PaymentHistory `json:"history"`
	Currency   string           `json:"currency"`
}

// BuildStats computes every analytics view from payments joined with bills.
// year picks the comparison year; today decides which bills have lapsed.
func BuildStats(payments []Payment, bills []Bill, year int, today time.Time, cur Currency) Stats {
	return Stats{
		Monthly:    MonthlyTotals(payments),
		Yearly:     YearlyTotals(payments),
		ByAccount:  TotalsByAccount(payments, bills),
		Comparison: MonthlyComparison(payments, year),
		History:    BuildPaymentHistory(bills, payments, today, DefaultAmountTolerance),
		Currency:   cur.Code,
	}
}

// PrintStats renders the analytics tables.
func PrintStats(w io.Writer, s Stats, cur Currency) {
	if len(s.Monthly) == 0 {
		fmt.Fprintln(w, "No payments recorded.")
		return
	}

	printPeriods(w, "Month", s.Monthly, cur)
	fmt.Fprintln(w)
	printPeriods(w, "Year", s.Yearly, cur)

	if len(s.ByAccount) > 0 {
		fmt.Fprintln(w)
		t := newTable(w)
		t.AppendHeader(table.Row{"Account", "Expenses", "Deposits", "Total"})
		for _, a := range s.ByAccount {
			t.AppendRow(table.Row{a.Account, cur.FormatDecimal(a.Expenses), cur.FormatDecimal(a.Deposits), cur.FormatDecimal(a.Total)})
		}
		t.SetColumnConfigs(rightAlign(2, 3, 4))
		t.Render()
	}

	if len(s.Comparison.Months) > 0 {
		fmt.Fprintln(w)
		cy, ly := fmt.Sprint(s.Comparison.CurrentYear), fmt.Sprint(s.Comparison.LastYear)
		t := newTable(w)
		t.AppendHeader(table.Row{"Month", "Expenses " + cy, "Expenses " + ly, "Deposits " + cy, "Deposits " + ly})
		for _, m := range s.Comparison.Months {
			t.AppendRow(table.Row{
				monthName(m.Month),
				cur.FormatDecimal(m.CurrentYearExpenses), cur.FormatDecimal(m.LastYearExpenses),
				cur.FormatDecimal(m.CurrentYearDeposits), cur.FormatDecimal(m.LastYearDeposits),
			})
		}
		t.SetColumnConfigs(rightAlign(2, 3, 4, 5))
		t.Render()
	}

	if len(s.History) > 0 {
		fmt.Fprintln(w)
		printHistory(w, s.History, cur)
	}
}

func printHistory(w io.Writer, history []PaymentHistory, cur Currency) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Bill", "Payments", "Last Paid", "Amount", "Day", "Status"})
	for _, h := range history {
		amount := cur.Format(h.AvgAmount)
		if h.MinAmount != h.MaxAmount {
			amount = cur.FormatRange(h.MinAmount, h.MaxAmount)
		}
		if !h.Stable {
			amount = text.FgYellow.Sprint(amount)
		}
		status := text.FgGreen.Sprint("ACTIVE")
		if h.Status == HistoryLapsed {
			status = text.FgRed.Sprint("LAPSED")
		}
		if !h.Regular {
			status += " (irregular)"
		}
		t.AppendRow(table.Row{h.Name, h.Payments, DisplayDate(h.LastPaid), amount, h.TypicalDay, status})
	}
	t.SetColumnConfigs(rightAlign(2, 4, 5))
	t.Render()
}

func printPeriods(w io.Writer, label string, periods []PeriodTotals, cur Currency) {
	t := newTable(w)
	t.AppendHeader(table.Row{label, "Expenses", "Deposits", "Net"})
	for _, p := range periods {
		t.AppendRow(table.Row{p.Period, cur.FormatDecimal(p.Expenses), cur.FormatDecimal(p.Deposits), signedDecimal(cur, p.Net())})
	}
	t.SetColumnConfigs(rightAlign(2, 3, 4))
	t.Render()
}

func monthName(mm string) string {
	t, err := time.Parse("01", mm)
	if err != nil {
		return mm
	}
	return t.Month().String()
}

func rightAlign(columns ...int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, len(columns))
	for _, n := range columns {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignFooter: text.AlignRight})
	}
	return configs
}

func describeSplit(st SplitType, value *float64) string {
	switch st {
	case SplitEqual:
		return "50/50"
	case SplitPercentage:
		if value == nil {
			return "percentage"
		}
		return fmt.Sprintf("%g%%", *value)
	case SplitFixed:
		if value == nil {
			return "fixed"
		}
		return fmt.Sprintf("fixed %g", *value)
	}
	return "-"
}

// PrintPortions renders the portion view.
func PrintPortions(w io.Writer, portions []Portion, cur Currency) {
	if len(portions) == 0 {
		fmt.Fprintln(w, "No shared bills.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Bill", "With", "Split", "Amount", "Portion", "Paid"})
	var total float64
	for _, p := range portions {
		with := p.Owner
		if p.SharedWith != "" {
			with = p.SharedWith
		}
		paid := text.FgHiBlack.Sprint("no")
		if p.Paid {
			paid = text.FgGreen.Sprint("yes")
		}
		if p.Portion != nil && !p.Paid {
			total += *p.Portion
		}
		t.AppendRow(table.Row{p.Name, with, describeSplit(p.SplitType, p.SplitValue), cur.FormatOptional(p.Amount), cur.FormatOptional(p.Portion), paid})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{"", "", "", text.Bold.Sprint("Outstanding"), text.Bold.Sprint(cur.Format(total)), ""})
	t.SetColumnConfigs(rightAlign(4, 5))
	t.Render()
}
