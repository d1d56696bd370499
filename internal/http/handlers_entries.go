package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"networth/internal/core"
	"networth/internal/log"
)

// entryRow is one account line in the monthly editor grid.
type entryRow struct {
	Account core.Account
	Balance decimal.Decimal
	Notes   string
	// Carried is set when the balance shown is prefilled from an earlier
	// month rather than recorded for this one.
	Carried bool
}

type entriesPageData struct {
	Month  int
	Year   int
	Months []int
	Years  []int
	Rows   []entryRow
	Total  decimal.Decimal
	Saved  bool
}

func (s *Server) handleEntriesPage(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	now := time.Now()
	month := queryInt(r, "month", int(now.Month()))
	year := queryInt(r, "year", now.Year())
	if month < 1 || month > 12 {
		month = int(now.Month())
	}
	if year < 1900 || year > 2100 {
		year = now.Year()
	}

	accounts, err := s.repo.ListAccounts(r.Context(), user.ID, "name", "asc")
	if err != nil {
		s.serverError(w, r, "account list failed", err)
		return
	}

	data := entriesPageData{
		Month:  month,
		Year:   year,
		Months: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		Saved:  r.URL.Query().Get("saved") == "1",
	}
	for y := now.Year() + 1; y >= now.Year()-10; y-- {
		data.Years = append(data.Years, y)
	}

	for _, a := range accounts {
		row := entryRow{Account: a.Account}
		entry, err := s.repo.EntryFor(r.Context(), a.ID, month, year)
		if err != nil {
			s.serverError(w, r, "entry load failed", err)
			return
		}
		if entry != nil {
			row.Balance = entry.Balance
			row.Notes = entry.Notes
			data.Total = data.Total.Add(entry.Balance)
		} else {
			// Prefill from the most recent known balance so the user only
			// edits what changed. Display only: nothing is saved until POST.
			latest, err := s.repo.LatestEntry(r.Context(), a.ID)
			if err != nil {
				s.serverError(w, r, "entry prefill failed", err)
				return
			}
			if latest != nil {
				row.Balance = latest.Balance
				row.Carried = true
			}
		}
		data.Rows = append(data.Rows, row)
	}

	s.render(w, r, "entries.html", "Monthly Entries", data)
}

func (s *Server) handleEntriesSave(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	now := time.Now()
	month := core.ParseMonth(formValue(r, "month"))
	year, err := core.ParseYear(formValue(r, "year"))
	if err != nil {
		year = now.Year()
	}

	if formValue(r, "action") == "clear_data" {
		n, err := s.repo.ClearMonth(r.Context(), user.ID, month, year)
		if err != nil {
			s.serverError(w, r, "clear month failed", err)
			return
		}
		s.logger.InfoContext(r.Context(), "month cleared",
			log.FieldUserID, user.ID, log.FieldMonth, month, log.FieldYear, year, log.FieldRows, n)
		http.Redirect(w, r, fmt.Sprintf("/entries?month=%d&year=%d", month, year), http.StatusSeeOther)
		return
	}

	accounts, err := s.repo.ListAccounts(r.Context(), user.ID, "name", "asc")
	if err != nil {
		s.serverError(w, r, "account list failed", err)
		return
	}

	saved := 0
	for _, a := range accounts {
		field := fmt.Sprintf("balance_%d", a.ID)
		if _, ok := r.PostForm[field]; !ok {
			continue
		}
		raw := formValue(r, field)
		if raw == "" {
			continue
		}
		balance, ok := core.ParseBalance(raw)
		if !ok {
			continue
		}
		entry := core.AccountEntry{
			AccountID: a.ID,
			Month:     month,
			Year:      year,
			Balance:   balance,
			Notes:     formValue(r, fmt.Sprintf("notes_%d", a.ID)),
		}
		if err := s.repo.UpsertEntry(r.Context(), entry); err != nil {
			s.serverError(w, r, "entry save failed", err)
			return
		}
		saved++
	}

	s.logger.InfoContext(r.Context(), "entries saved",
		log.FieldUserID, user.ID, log.FieldMonth, month, log.FieldYear, year, log.FieldRows, saved)
	http.Redirect(w, r, fmt.Sprintf("/entries?month=%d&year=%d&saved=1", month, year), http.StatusSeeOther)
}
