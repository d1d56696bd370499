package http

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"networth/internal/log"
	"networth/internal/report"
)

type settingsData struct {
	FirstName    string
	LastName     string
	Email        string
	Accounts     int64
	Entries      int64
	Transactions int64
	Error        string
	Saved        bool
}

func (s *Server) settingsData(r *http.Request, errMsg string, saved bool) (settingsData, error) {
	user := currentUser(r.Context())
	data := settingsData{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Error:     errMsg,
		Saved:     saved,
	}
	var err error
	if data.Accounts, err = s.repo.CountAccounts(r.Context(), user.ID); err != nil {
		return data, err
	}
	if data.Entries, err = s.repo.CountEntries(r.Context(), user.ID); err != nil {
		return data, err
	}
	if data.Transactions, err = s.repo.CountTransactions(r.Context(), user.ID); err != nil {
		return data, err
	}
	return data, nil
}

func (s *Server) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	data, err := s.settingsData(r, "", r.URL.Query().Get("saved") == "1")
	if err != nil {
		s.serverError(w, r, "settings load failed", err)
		return
	}
	s.render(w, r, "settings.html", "Settings", data)
}

func (s *Server) handleSettingsSave(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	firstName := formValue(r, "first_name")
	lastName := formValue(r, "last_name")
	email := formValue(r, "email")

	formErr := ""
	if email == "" {
		formErr = "Email is required."
	} else {
		inUse, err := s.repo.EmailInUse(r.Context(), email, user.ID)
		if err != nil {
			s.serverError(w, r, "email check failed", err)
			return
		}
		if inUse {
			formErr = "This email is already in use by another account."
		}
	}

	if formErr == "" {
		if err := s.repo.UpdateProfile(r.Context(), user.ID, firstName, lastName, email); err != nil {
			s.serverError(w, r, "profile update failed", err)
			return
		}
		http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
		return
	}

	data, err := s.settingsData(r, formErr, false)
	if err != nil {
		s.serverError(w, r, "settings load failed", err)
		return
	}
	data.FirstName, data.LastName, data.Email = firstName, lastName, email
	w.WriteHeader(http.StatusUnprocessableEntity)
	s.render(w, r, "settings.html", "Settings", data)
}

type dataPageData struct {
	Accounts     int64
	Entries      int64
	Transactions int64
	Message      string
	ImportErrors []string
}

func (s *Server) handleDataPage(w http.ResponseWriter, r *http.Request) {
	s.renderDataPage(w, r, "", nil)
}

func (s *Server) renderDataPage(w http.ResponseWriter, r *http.Request, message string, importErrors []string) {
	user := currentUser(r.Context())
	data := dataPageData{Message: message, ImportErrors: importErrors}
	var err error
	if data.Accounts, err = s.repo.CountAccounts(r.Context(), user.ID); err != nil {
		s.serverError(w, r, "data page load failed", err)
		return
	}
	if data.Entries, err = s.repo.CountEntries(r.Context(), user.ID); err != nil {
		s.serverError(w, r, "data page load failed", err)
		return
	}
	if data.Transactions, err = s.repo.CountTransactions(r.Context(), user.ID); err != nil {
		s.serverError(w, r, "data page load failed", err)
		return
	}
	s.render(w, r, "data_management.html", "Data Management", data)
}

// handleDataAction dispatches the data-management form: bulk deletes and
// CSV imports, selected by the action field.
func (s *Server) handleDataAction(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	// 10 MB is plenty for a personal CSV
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
	}
	action := formValue(r, "action")

	switch action {
	case "delete_accounts":
		n, err := s.repo.DeleteAllAccounts(r.Context(), user.ID)
		if err != nil {
			s.serverError(w, r, "delete accounts failed", err)
			return
		}
		s.logger.WarnContext(r.Context(), "all accounts deleted",
			log.FieldUserID, user.ID, log.FieldRows, n)
		s.renderDataPage(w, r, fmt.Sprintf("Deleted %d accounts (with their entries and transactions).", n), nil)

	case "delete_entries":
		n, err := s.repo.DeleteAllEntries(r.Context(), user.ID)
		if err != nil {
			s.serverError(w, r, "delete entries failed", err)
			return
		}
		s.logger.WarnContext(r.Context(), "all entries deleted",
			log.FieldUserID, user.ID, log.FieldRows, n)
		s.renderDataPage(w, r, fmt.Sprintf("Deleted %d balance entries.", n), nil)

	case "delete_transactions":
		n, err := s.repo.DeleteAllTransactions(r.Context(), user.ID)
		if err != nil {
			s.serverError(w, r, "delete transactions failed", err)
			return
		}
		s.logger.WarnContext(r.Context(), "all transactions deleted",
			log.FieldUserID, user.ID, log.FieldRows, n)
		s.renderDataPage(w, r, fmt.Sprintf("Deleted %d transactions.", n), nil)

	case "import_entries", "import_accounts":
		file, _, err := r.FormFile("file")
		if err != nil {
			s.renderDataPage(w, r, "Select a CSV file to import.", nil)
			return
		}
		defer file.Close()

		var rep report.ImportReport
		if action == "import_entries" {
			rep, err = s.reports.ImportEntries(r.Context(), user.ID, file)
		} else {
			rep, err = s.reports.ImportAccounts(r.Context(), user.ID, file)
		}
		if err != nil {
			s.renderDataPage(w, r, "Import failed: "+err.Error(), nil)
			return
		}
		s.renderDataPage(w, r, fmt.Sprintf("Imported %d rows.", rep.Imported), rep.Errors)

	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

// handleExport streams one of the export kinds in the requested format.
// Unknown kinds and formats are client errors, and nothing is written
// until the file has rendered completely.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	vars := mux.Vars(r)

	format, err := report.ParseFormat(vars["format"])
	if err != nil {
		http.Error(w, "invalid export format", http.StatusBadRequest)
		return
	}
	kind, err := report.ParseDataKind(vars["kind"])
	if err != nil {
		http.Error(w, "invalid export data kind", http.StatusBadRequest)
		return
	}

	file, err := s.reports.Export(r.Context(), user.ID, kind, format)
	if err != nil {
		s.serverError(w, r, "export failed", err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(file.Data)))
	if _, err := w.Write(file.Data); err != nil {
		s.logger.WarnContext(r.Context(), "export write interrupted",
			log.FieldError, err, log.FieldUserID, user.ID)
	}
}
