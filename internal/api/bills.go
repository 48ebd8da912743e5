package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gigurra/billview/internal"
)

// ListBills returns the bills of the selected database plus bills shared with
// the user, schedules already parsed.
func (c *Client) ListBills(ctx context.Context, includeArchived bool) ([]internal.Bill, error) {
	var q url.Values
	if includeArchived {
		q = url.Values{"include_archived": {"true"}}
	}
	var bills []internal.Bill
	if err := c.do(ctx, http.MethodGet, "/bills", q, nil, &bills); err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	internal.NormalizeBills(bills)
	return bills, nil
}

func (c *Client) GetBill(ctx context.Context, id int) (internal.Bill, error) {
	var b internal.Bill
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/bills/%d", id), nil, nil, &b); err != nil {
		return internal.Bill{}, fmt.Errorf("getting bill %d: %w", id, err)
	}
	bills := []internal.Bill{b}
	internal.NormalizeBills(bills)
	return bills[0], nil
}

// PayRequest records a payment. A nil Amount lets the backend use the bill's
// amount; a nil AdvanceDue means true.
type PayRequest struct {
	Amount      *float64 `json:"amount,omitempty"`
	PaymentDate string   `json:"payment_date,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	AdvanceDue  *bool    `json:"advance_due,omitempty"`
}

type PayResult struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
}

func (c *Client) PayBill(ctx context.Context, id int, req PayRequest) (PayResult, error) {
	var res PayResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/bills/%d/pay", id), nil, req, &res); err != nil {
		return PayResult{}, fmt.Errorf("paying bill %d: %w", id, err)
	}
	return res, nil
}

// ListPayments returns a bill's payment history, newest first.
func (c *Client) ListPayments(ctx context.Context, billID int) ([]internal.Payment, error) {
	var payments []internal.Payment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/bills/%d/payments", billID), nil, nil, &payments); err != nil {
		return nil, fmt.Errorf("listing payments for bill %d: %w", billID, err)
	}
	// the per-bill endpoint leaves out bill_id
	for i := range payments {
		payments[i].BillID = billID
	}
	return payments, nil
}

// ListAllPayments returns every payment across the user's bills with the
// backend's effective bill_type.
func (c *Client) ListAllPayments(ctx context.Context) ([]internal.Payment, error) {
	var payments []internal.Payment
	if err := c.do(ctx, http.MethodGet, "/payments", nil, nil, &payments); err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	return payments, nil
}

func (c *Client) ListAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, nil, &accounts); err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return accounts, nil
}

type Database struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// ListDatabases needs an admin token.
func (c *Client) ListDatabases(ctx context.Context) ([]Database, error) {
	var dbs []Database
	if err := c.do(ctx, http.MethodGet, "/databases", nil, nil, &dbs); err != nil {
		return nil, fmt.Errorf("listing databases: %w", err)
	}
	return dbs, nil
}
