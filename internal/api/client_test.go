package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gigurra/billview/internal"
)

func f64(v float64) *float64 { return &v }

// fakeBackend serves canned envelopes and records what it was sent.
type fakeBackend struct {
	t        *testing.T
	mu       sync.Mutex
	lastDB   string
	lastBody map[string]any
	requests atomic.Int32
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	ok := func(w http.ResponseWriter, data any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	}

	mux.HandleFunc("GET /api/v2/bills", func(w http.ResponseWriter, r *http.Request) {
		bills := []map[string]any{
			{"id": 1, "name": "Rent", "amount": 1200, "frequency": "monthly", "next_due": "2025-07-01", "type": "expense"},
			{"id": 2, "name": "Gym", "amount": 30, "frequency": "custom", "frequency_type": "multiple_weekly",
				"frequency_config": `{"days":[0,2]}`, "next_due": "2025-07-02", "type": "expense"},
		}
		if r.URL.Query().Get("include_archived") == "true" {
			bills = append(bills, map[string]any{"id": 3, "name": "Old", "archived": true})
		}
		ok(w, bills)
	})
	mux.HandleFunc("GET /api/v2/bills/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "1" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Bill not found"})
			return
		}
		ok(w, map[string]any{"id": 1, "name": "Rent", "amount": 1200})
	})
	mux.HandleFunc("POST /api/v2/bills/{id}/pay", func(w http.ResponseWriter, r *http.Request) {
		f.lastBody = nil
		json.NewDecoder(r.Body).Decode(&f.lastBody)
		ok(w, map[string]any{"id": 99, "message": "Payment recorded"})
	})
	mux.HandleFunc("GET /api/v2/bills/{id}/payments", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "13" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		ok(w, []map[string]any{{"id": 7, "amount": 10, "payment_date": "2025-06-01", "is_share_payment": false}})
	})
	mux.HandleFunc("GET /api/v2/payments", func(w http.ResponseWriter, r *http.Request) {
		ok(w, []map[string]any{{"id": 7, "bill_id": 1, "bill_type": "expense", "amount": 10, "payment_date": "2025-06-01"}})
	})
	mux.HandleFunc("POST /api/v2/bills/{id}/share", func(w http.ResponseWriter, r *http.Request) {
		f.lastBody = nil
		json.NewDecoder(r.Body).Decode(&f.lastBody)
		w.WriteHeader(http.StatusCreated)
		ok(w, map[string]any{"id": 5, "shared_with_identifier": f.lastBody["shared_with"], "status": "accepted",
			"split_type": f.lastBody["split_type"], "split_value": f.lastBody["split_value"]})
	})
	mux.HandleFunc("GET /api/v2/bills/{id}/shares", func(w http.ResponseWriter, r *http.Request) {
		ok(w, []map[string]any{{"id": 5, "shared_with": "alex", "status": "pending", "split_type": "equal"}})
	})
	mux.HandleFunc("GET /api/v2/accounts", func(w http.ResponseWriter, r *http.Request) {
		ok(w, []string{"Checking", "Savings"})
	})
	mux.HandleFunc("GET /api/v2/databases", func(w http.ResponseWriter, r *http.Request) {
		ok(w, []map[string]any{{"id": 1, "name": "personal", "display_name": "Personal"}})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		f.mu.Lock()
		f.lastDB = r.Header.Get(headerDatabase)
		f.mu.Unlock()
		if r.Header.Get(headerRequestID) == "" {
			f.t.Errorf("%s %s sent without a request ID", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Token expired"})
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func newTestClient(t *testing.T, token string) (*Client, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{t: t}
	srv := httptest.NewServer(fb.handler())
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", token, WithDatabase("personal")), fb
}

func TestClient_ListBills(t *testing.T) {
	c, fb := newTestClient(t, "secret")

	bills, err := c.ListBills(context.Background(), false)
	if err != nil {
		t.Fatalf("ListBills() error = %v", err)
	}
	if len(bills) != 2 {
		t.Fatalf("got %d bills, want 2", len(bills))
	}
	if fb.lastDB != "personal" {
		t.Errorf("X-Database = %q, want personal", fb.lastDB)
	}
	if _, ok := bills[1].Schedule().(internal.MultipleWeekly); !ok {
		t.Errorf("Gym schedule = %T, want MultipleWeekly", bills[1].Schedule())
	}

	all, err := c.ListBills(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("with archived: got %d bills, want 3", len(all))
	}
}

func TestClient_Unauthorized(t *testing.T) {
	c, _ := newTestClient(t, "wrong")

	_, err := c.ListBills(context.Background(), false)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not *Error", err)
	}
	if apiErr.Message != "Token expired" || apiErr.RequestID == "" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestClient_GetBill(t *testing.T) {
	c, _ := newTestClient(t, "secret")

	b, err := c.GetBill(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetBill() error = %v", err)
	}
	if b.Name != "Rent" {
		t.Errorf("Name = %q", b.Name)
	}

	_, err = c.GetBill(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if err == nil || !strings.Contains(err.Error(), "Bill not found") {
		t.Errorf("error %v should carry the backend message", err)
	}
}

func TestClient_PayBill(t *testing.T) {
	c, fb := newTestClient(t, "secret")
	advance := false

	res, err := c.PayBill(context.Background(), 1, PayRequest{Amount: f64(1150), PaymentDate: "2025-07-01", AdvanceDue: &advance})
	if err != nil {
		t.Fatalf("PayBill() error = %v", err)
	}
	if res.ID != 99 {
		t.Errorf("ID = %d, want 99", res.ID)
	}
	if fb.lastBody["amount"] != 1150.0 || fb.lastBody["payment_date"] != "2025-07-01" || fb.lastBody["advance_due"] != false {
		t.Errorf("body = %v", fb.lastBody)
	}

	if _, err := c.PayBill(context.Background(), 1, PayRequest{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := fb.lastBody["amount"]; ok {
		t.Errorf("empty request sent amount: %v", fb.lastBody)
	}
}

func TestClient_Payments(t *testing.T) {
	c, _ := newTestClient(t, "secret")

	payments, err := c.ListPayments(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 1 || payments[0].BillID != 4 {
		t.Errorf("payments = %+v, want bill id filled in", payments)
	}

	all, err := c.ListAllPayments(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].BillType != internal.TypeExpense {
		t.Errorf("all payments = %+v", all)
	}
}

func TestClient_PaymentsForBills(t *testing.T) {
	c, fb := newTestClient(t, "secret")

	ids := []int{1, 2, 3, 4, 5, 6, 7, 8}
	got, err := c.PaymentsForBills(context.Background(), ids)
	if err != nil {
		t.Fatalf("PaymentsForBills() error = %v", err)
	}
	if len(got) != len(ids) {
		t.Errorf("got %d bills, want %d", len(got), len(ids))
	}
	for _, id := range ids {
		if len(got[id]) != 1 || got[id][0].BillID != id {
			t.Errorf("bill %d payments = %+v", id, got[id])
		}
	}
	if n := fb.requests.Load(); n != int32(len(ids)) {
		t.Errorf("made %d requests, want %d", n, len(ids))
	}

	if _, err := c.PaymentsForBills(context.Background(), []int{1, 13}); err == nil {
		t.Error("expected error when one fetch fails")
	}
}

func TestClient_ShareBill(t *testing.T) {
	c, fb := newTestClient(t, "secret")

	share, err := c.ShareBill(context.Background(), 1, ShareRequest{SharedWith: "  Alex ", SplitType: internal.SplitPercentage, SplitValue: f64(40)})
	if err != nil {
		t.Fatalf("ShareBill() error = %v", err)
	}
	if share.SharedWith != "alex" || share.SplitType != internal.SplitPercentage || share.Status != internal.ShareAccepted {
		t.Errorf("share = %+v", share)
	}
	if fb.lastBody["shared_with"] != "alex" {
		t.Errorf("sent shared_with = %v", fb.lastBody["shared_with"])
	}
}

func TestClient_ShareBill_ValidatesLocally(t *testing.T) {
	c, fb := newTestClient(t, "secret")

	tests := []ShareRequest{
		{SharedWith: "alex", SplitType: internal.SplitPercentage, SplitValue: f64(140)},
		{SharedWith: "alex", SplitType: internal.SplitFixed},
		{SharedWith: "alex", SplitType: "thirds"},
		{SharedWith: "   "},
	}
	for i, req := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			if _, err := c.ShareBill(context.Background(), 1, req); err == nil {
				t.Errorf("ShareBill(%+v) should fail", req)
			}
		})
	}
	if n := fb.requests.Load(); n != 0 {
		t.Errorf("invalid shares reached the backend %d times", n)
	}

	_, err := c.ShareBill(context.Background(), 1, ShareRequest{SharedWith: "alex", SplitType: internal.SplitPercentage, SplitValue: f64(140)})
	if !errors.Is(err, internal.ErrInvalidSplit) {
		t.Errorf("error = %v, want ErrInvalidSplit", err)
	}
}

func TestClient_ListSharesAccountsDatabases(t *testing.T) {
	c, _ := newTestClient(t, "secret")
	ctx := context.Background()

	shares, err := c.ListShares(ctx, 1)
	if err != nil || len(shares) != 1 || !shares[0].Active() {
		t.Errorf("ListShares() = %+v, %v", shares, err)
	}
	accounts, err := c.ListAccounts(ctx)
	if err != nil || len(accounts) != 2 {
		t.Errorf("ListAccounts() = %v, %v", accounts, err)
	}
	dbs, err := c.ListDatabases(ctx)
	if err != nil || len(dbs) != 1 || dbs[0].DisplayName != "Personal" {
		t.Errorf("ListDatabases() = %+v, %v", dbs, err)
	}
}

func TestClient_EnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "X-Database header required"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "t").ListAccounts(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if apiErr.StatusCode != http.StatusOK || apiErr.Message != "X-Database header required" {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized) {
		t.Error("envelope failure should not match a status sentinel")
	}
}

func TestClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "t").ListAccounts(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("error = %v, want 502 *Error", err)
	}
	if !strings.Contains(err.Error(), "Bad Gateway") {
		t.Errorf("error %q should fall back to the status text", err)
	}
}
