package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gigurra/billview/internal"
	"github.com/gigurra/billview/internal/api"
	"github.com/go-chi/chi/v5"
)

const (
	defaultCalendarDays = 30
	maxCalendarDays     = 366
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// writeSourceError maps a failed bill fetch to a response.
func (s *Server) writeSourceError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "fetching bills failed", "error", err)
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		writeError(w, http.StatusBadGateway, "upstream_unauthorized", "the bill API rejected the configured token")
	case errors.Is(err, api.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
	}
}

// todayFor honours a ?today=YYYY-MM-DD override.
func (s *Server) todayFor(r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("today")
	if raw == "" {
		return s.today(), true
	}
	return internal.ParseLocalDate(raw)
}

func (s *Server) outputOptions(today time.Time) internal.OutputOptions {
	return internal.OutputOptions{Currency: s.currency, Today: today}
}

// visibleBills fetches bills, archived ones included, and drops the ones
// hidden by config. Searches reveal archived bills; the window counts,
// calendar and projection skip them on their own.
func (s *Server) visibleBills(r *http.Request) ([]internal.Bill, error) {
	bills, err := s.source.ListBills(r.Context(), true)
	if err != nil {
		return nil, err
	}
	return internal.FilterByHidden(bills, s.cfg), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	today, ok := s.todayFor(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_today", "today must be YYYY-MM-DD")
		return
	}
	bills, err := s.visibleBills(r)
	if err != nil {
		s.writeSourceError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := internal.BillFilter{
		Search:  q.Get("search"),
		Type:    q.Get("type"),
		Account: q.Get("account"),
	}
	if raw := q.Get("range"); raw != "" {
		dr, err := internal.ParseDateRange(raw)
		if err != nil {
			// unknown ranges match nothing
			dr = internal.DateRange(raw)
		}
		filter = filter.SelectRange(dr)
	}
	if date := q.Get("date"); date != "" {
		filter = filter.SelectDate(date)
	}

	display := internal.FilterBills(bills, filter, today)
	display = internal.FilterByTags(display, q["tag"], s.cfg)
	internal.SortBills(display, q.Get("sort"), q.Get("dir"))

	writeJSON(w, http.StatusOK, internal.BuildBillsJSON(bills, display, s.cfg, s.outputOptions(today)))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	today, ok := s.todayFor(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_today", "today must be YYYY-MM-DD")
		return
	}
	bills, err := s.visibleBills(r)
	if err != nil {
		s.writeSourceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, internal.BuildDashboard(bills, s.cfg, s.outputOptions(today)))
}

type calendarResponse struct {
	From string                 `json:"from"`
	To   string                 `json:"to"`
	Days []internal.CalendarDay `json:"days"`
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	today, ok := s.todayFor(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_today", "today must be YYYY-MM-DD")
		return
	}
	days := defaultCalendarDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxCalendarDays {
			writeError(w, http.StatusBadRequest, "invalid_days", "days must be between 1 and 366")
			return
		}
		days = n
	}

	bills, err := s.visibleBills(r)
	if err != nil {
		s.writeSourceError(w, r, err)
		return
	}

	to := today.AddDate(0, 0, days)
	writeJSON(w, http.StatusOK, calendarResponse{
		From: internal.FormatDateForAPI(today),
		To:   internal.FormatDateForAPI(to),
		Days: internal.BuildCalendar(bills, today, to),
	})
}

type portionResponse struct {
	BillID   int                `json:"bill_id"`
	Name     string             `json:"name"`
	Portions []internal.Portion `json:"portions"`
}

func (s *Server) handlePortion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "bill id must be a number")
		return
	}

	bills, err := s.source.ListBills(r.Context(), true)
	if err != nil {
		s.writeSourceError(w, r, err)
		return
	}
	var bill *internal.Bill
	for i := range bills {
		if bills[i].ID == id {
			bill = &bills[i]
			break
		}
	}
	if bill == nil {
		writeError(w, http.StatusNotFound, "not_found", "no bill with id "+strconv.Itoa(id))
		return
	}

	// received shares carry their own portion; owned ones need the share list
	var portions []internal.Portion
	if bill.IsShared && bill.ShareInfo == nil {
		shares, err := s.source.ListShares(r.Context(), id)
		if err != nil {
			s.writeSourceError(w, r, err)
			return
		}
		portions = internal.OwnedPortions(*bill, shares)
	} else {
		unarchived := *bill
		unarchived.Archived = false
		portions = internal.ReceivedPortions([]internal.Bill{unarchived}, s.cfg)
	}
	if portions == nil {
		portions = []internal.Portion{}
	}

	writeJSON(w, http.StatusOK, portionResponse{BillID: bill.ID, Name: bill.Name, Portions: portions})
}
