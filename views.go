package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gigurra/billview/internal"
	"github.com/gigurra/billview/internal/api"
	"github.com/gigurra/billview/internal/server"
)

const maxCalendarDays = 366

func (a *app) listView(ctx context.Context) error {
	bills, err := a.bills(ctx)
	if err != nil {
		return err
	}
	bills = internal.FilterByHidden(bills, a.cfg)

	dr, err := internal.ParseDateRange(a.params.Range)
	if err != nil {
		return err
	}
	filter := internal.BillFilter{
		Search:  a.params.Search,
		Type:    a.params.Type,
		Account: a.params.Account,
	}.SelectRange(dr)
	if a.params.Date != "" {
		if _, ok := internal.ParseLocalDate(a.params.Date); !ok {
			return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", a.params.Date)
		}
		filter = filter.SelectDate(a.params.Date)
	}

	display := internal.FilterBills(bills, filter, a.today)
	display = internal.FilterByTags(display, a.params.Tags, a.cfg)
	internal.SortBills(display, a.params.Sort, a.params.Dir)

	opts := a.outputOptions(filter)
	if a.jsonOutput() {
		return internal.PrintBillsJSON(os.Stdout, bills, display, a.cfg, opts)
	}
	internal.PrintBillsTable(os.Stdout, bills, display, opts, a.cfg)
	return nil
}

func (a *app) dashboardView(ctx context.Context) error {
	bills, err := a.bills(ctx)
	if err != nil {
		return err
	}
	bills = internal.FilterByHidden(bills, a.cfg)

	d := internal.BuildDashboard(bills, a.cfg, a.outputOptions(internal.BillFilter{}))
	if a.jsonOutput() {
		return internal.WriteJSON(os.Stdout, d)
	}
	internal.PrintDashboard(os.Stdout, d, a.cur)
	return nil
}

func (a *app) calendarView(ctx context.Context) error {
	if a.params.Days < 1 || a.params.Days > maxCalendarDays {
		return fmt.Errorf("--days must be between 1 and %d", maxCalendarDays)
	}
	bills, err := a.bills(ctx)
	if err != nil {
		return err
	}
	bills = internal.FilterByHidden(bills, a.cfg)

	to := a.today.AddDate(0, 0, a.params.Days)
	days := internal.BuildCalendar(bills, a.today, to)
	if a.jsonOutput() {
		return internal.WriteJSON(os.Stdout, map[string]any{
			"from": internal.FormatDateForAPI(a.today),
			"to":   internal.FormatDateForAPI(to),
			"days": days,
		})
	}
	fmt.Printf("Bills due %s to %s\n\n", internal.DisplayDate(internal.FormatDateForAPI(a.today)),
		internal.DisplayDate(internal.FormatDateForAPI(to.AddDate(0, 0, -1))))
	internal.PrintCalendar(os.Stdout, days, a.cur)
	return nil
}

func (a *app) statsView(ctx context.Context) error {
	bills, err := a.bills(ctx)
	if err != nil {
		return err
	}
	payments, err := a.payments(ctx)
	if err != nil {
		return err
	}

	year := a.params.Year
	if year == 0 {
		year = a.today.Year()
	}
	s := internal.BuildStats(payments, bills, year, a.today, a.cur)
	if a.jsonOutput() {
		return internal.WriteJSON(os.Stdout, s)
	}
	internal.PrintStats(os.Stdout, s, a.cur)
	return nil
}

func (a *app) portionView(ctx context.Context) error {
	bills, err := a.bills(ctx)
	if err != nil {
		return err
	}
	if a.params.Bill > 0 {
		bills = slices.DeleteFunc(slices.Clone(bills), func(b internal.Bill) bool {
			return b.ID != a.params.Bill
		})
		if len(bills) == 0 {
			return fmt.Errorf("no bill with id %d", a.params.Bill)
		}
	}

	portions := internal.ReceivedPortions(bills, a.cfg)
	if a.client != nil {
		for _, b := range bills {
			if !b.IsShared || b.ShareInfo != nil || b.Archived {
				continue
			}
			shares, err := a.client.ListShares(ctx, b.ID)
			if err != nil {
				return err
			}
			portions = append(portions, internal.OwnedPortions(b, shares)...)
		}
	}

	if a.jsonOutput() {
		if portions == nil {
			portions = []internal.Portion{}
		}
		return internal.WriteJSON(os.Stdout, portions)
	}
	internal.PrintPortions(os.Stdout, portions, a.cur)
	return nil
}

func (a *app) exportView(ctx context.Context) error {
	out := a.params.Out
	if out == "" {
		return fmt.Errorf("--view export needs --out <path>")
	}
	format, err := internal.ExportFormatForPath(out)
	if err != nil {
		return err
	}

	var passphrase string
	if a.params.Encrypt {
		if !strings.HasSuffix(strings.ToLower(out), ".age") {
			out += ".age"
		}
		if passphrase, err = askPassphrase(true); err != nil {
			return err
		}
	}

	ds, err := a.exportDataset(ctx)
	if err != nil {
		return err
	}
	if err := internal.ExportFile(out, format, ds, passphrase); err != nil {
		return err
	}
	a.log.Info("export written", "path", out, "format", format, "encrypted", passphrase != "")
	fmt.Printf("Exported %d bills and %d payments to %s\n", len(ds.Bills), len(ds.Payments), out)
	return nil
}

// exportDataset gathers bills and their payment history. From the API the
// histories are fetched per bill, concurrently.
func (a *app) exportDataset(ctx context.Context) (internal.Dataset, error) {
	if a.dataset != nil {
		return *a.dataset, nil
	}

	bills, err := a.client.ListBills(ctx, true)
	if err != nil {
		return internal.Dataset{}, err
	}
	ids := make([]int, len(bills))
	for i, b := range bills {
		ids[i] = b.ID
	}
	byBill, err := a.client.PaymentsForBills(ctx, ids)
	if err != nil {
		return internal.Dataset{}, err
	}

	ds := internal.Dataset{Bills: bills}
	for _, b := range bills {
		for _, p := range byBill[b.ID] {
			if p.BillName == "" {
				p.BillName = b.Name
			}
			ds.Payments = append(ds.Payments, p)
		}
	}
	return ds, nil
}

func (a *app) payView(ctx context.Context) error {
	if err := a.requireAPI(); err != nil {
		return err
	}
	if err := a.requireBill(); err != nil {
		return err
	}

	req := api.PayRequest{Notes: a.params.Notes}
	if a.params.Amount != "" {
		amount, err := strconv.ParseFloat(a.params.Amount, 64)
		if err != nil {
			return fmt.Errorf("invalid --amount %q", a.params.Amount)
		}
		req.Amount = &amount
	}
	req.PaymentDate = internal.FormatDateForAPI(a.today)
	if a.params.PaymentDate != "" {
		if _, ok := internal.ParseLocalDate(a.params.PaymentDate); !ok {
			return fmt.Errorf("invalid --payment-date %q, want YYYY-MM-DD", a.params.PaymentDate)
		}
		req.PaymentDate = a.params.PaymentDate
	}
	advance := !a.params.NoAdvance
	req.AdvanceDue = &advance

	bill, err := a.client.GetBill(ctx, a.params.Bill)
	if err != nil {
		return err
	}
	res, err := a.client.PayBill(ctx, bill.ID, req)
	if err != nil {
		return err
	}

	nextDue := bill.NextDue
	if due, ok := internal.ParseLocalDate(bill.NextDue); ok && advance {
		nextDue = internal.FormatDateForAPI(internal.NextDueDate(due, bill))
	}

	if a.jsonOutput() {
		return internal.WriteJSON(os.Stdout, map[string]any{
			"payment_id": res.ID,
			"bill_id":    bill.ID,
			"message":    res.Message,
			"next_due":   nextDue,
		})
	}
	amount := a.cur.FormatOptional(bill.Amount)
	if req.Amount != nil {
		amount = a.cur.Format(*req.Amount)
	}
	fmt.Printf("Recorded payment of %s for %s on %s\n", amount, bill.Name, internal.DisplayDate(req.PaymentDate))
	if advance {
		fmt.Printf("Next due: %s\n", internal.DisplayDate(nextDue))
	}
	return nil
}

func (a *app) shareView(ctx context.Context) error {
	if err := a.requireAPI(); err != nil {
		return err
	}
	if err := a.requireBill(); err != nil {
		return err
	}

	req := api.ShareRequest{
		SharedWith: a.params.ShareWith,
		SplitType:  internal.SplitType(a.params.SplitType),
	}
	if a.params.SplitValue != "" {
		v, err := strconv.ParseFloat(a.params.SplitValue, 64)
		if err != nil {
			return fmt.Errorf("invalid --split-value %q", a.params.SplitValue)
		}
		req.SplitValue = &v
	}

	share, err := a.client.ShareBill(ctx, a.params.Bill, req)
	if err != nil {
		return err
	}
	if a.jsonOutput() {
		return internal.WriteJSON(os.Stdout, share)
	}
	fmt.Printf("Shared bill %d with %s (%s)\n", a.params.Bill, share.SharedWith, share.Status)
	return nil
}

func (a *app) accountsView(ctx context.Context) error {
	if err := a.requireAPI(); err != nil {
		return err
	}
	accounts, err := a.client.ListAccounts(ctx)
	if err != nil {
		return err
	}
	if a.jsonOutput() {
		return internal.WriteJSON(os.Stdout, accounts)
	}
	for _, acc := range accounts {
		fmt.Println(acc)
	}
	return nil
}

func (a *app) databasesView(ctx context.Context) error {
	if err := a.requireAPI(); err != nil {
		return err
	}
	dbs, err := a.client.ListDatabases(ctx)
	if err != nil {
		return err
	}
	if a.jsonOutput() {
		return internal.WriteJSON(os.Stdout, dbs)
	}
	for _, db := range dbs {
		marker := " "
		if db.Name == a.client.Database() {
			marker = "*"
		}
		fmt.Printf("%s %-4d %-20s %s\n", marker, db.ID, db.Name, db.DisplayName)
	}
	return nil
}

func (a *app) serve(ctx context.Context) error {
	var src server.BillSource
	if a.dataset != nil {
		src = server.StaticSource{Bills: a.dataset.Bills}
	} else {
		src = a.client
	}

	opts := server.Options{
		Config:   a.cfg,
		Currency: a.cur,
		Logger:   a.log,
	}
	if a.params.Today != "" {
		opts.Today = func() time.Time { return a.today }
	}
	return server.New(src, opts).ListenAndServe(ctx, a.params.Addr)
}
