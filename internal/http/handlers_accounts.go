package http

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"networth/internal/core"
	"networth/internal/log"
	"networth/internal/storage"
)

// accountGroup is one classification bucket on the accounts page.
type accountGroup struct {
	Label    string
	Accounts []storage.AccountWithBalance
	Subtotal decimal.Decimal
}

type accountListData struct {
	Groups []accountGroup
	Total  decimal.Decimal
	SortBy string
	Order  string
}

func (s *Server) handleAccountList(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	sortBy := formValue(r, "sort")
	order := formValue(r, "order")

	accounts, err := s.repo.ListAccounts(r.Context(), user.ID, sortBy, order)
	if err != nil {
		s.serverError(w, r, "account list failed", err)
		return
	}

	data := accountListData{SortBy: sortBy, Order: order}
	index := map[string]int{}
	for _, a := range accounts {
		label := a.Classification.Label()
		i, ok := index[label]
		if !ok {
			i = len(data.Groups)
			index[label] = i
			data.Groups = append(data.Groups, accountGroup{Label: label})
		}
		data.Groups[i].Accounts = append(data.Groups[i].Accounts, a)
		data.Groups[i].Subtotal = data.Groups[i].Subtotal.Add(a.Balance)
		data.Total = data.Total.Add(a.Balance)
	}
	s.render(w, r, "accounts_list.html", "Accounts", data)
}

type accountFormData struct {
	Account         core.Account
	Editing         bool
	Error           string
	AccountTypes    []core.AccountType
	Classifications []core.Classification
	AssetTypes      []core.AssetType
}

func (s *Server) accountFormData(a core.Account, editing bool, errMsg string) accountFormData {
	return accountFormData{
		Account:         a,
		Editing:         editing,
		Error:           errMsg,
		AccountTypes:    core.AccountTypes,
		Classifications: core.Classifications,
		AssetTypes:      core.AssetTypes,
	}
}

// handleAccountForm serves both the new-account and edit-account forms;
// the route decides which.
func (s *Server) handleAccountForm(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	vars := mux.Vars(r)

	account := core.Account{Currency: "USD", Active: true}
	editing := false
	if vars["id"] != "" {
		var err error
		account, err = s.repo.GetAccount(r.Context(), user.ID, pathID(r))
		if errors.Is(err, core.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			s.serverError(w, r, "account load failed", err)
			return
		}
		editing = true
	}
	s.render(w, r, "account_form.html", "Account", s.accountFormData(account, editing, ""))
}

func (s *Server) handleAccountCreate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	account, formErr := s.accountFromForm(r, user.ID)
	if formErr == "" {
		_, err := s.repo.CreateAccount(r.Context(), account)
		switch {
		case errors.Is(err, core.ErrDuplicateAccountName):
			formErr = err.Error()
		case err != nil:
			s.serverError(w, r, "account create failed", err)
			return
		default:
			s.logger.InfoContext(r.Context(), "account created",
				log.FieldUserID, user.ID, "name", account.Name)
			http.Redirect(w, r, "/accounts", http.StatusSeeOther)
			return
		}
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	s.render(w, r, "account_form.html", "Account", s.accountFormData(account, false, formErr))
}

func (s *Server) handleAccountUpdate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	account, formErr := s.accountFromForm(r, user.ID)
	account.ID = pathID(r)

	if formErr == "" {
		err := s.repo.UpdateAccount(r.Context(), account)
		switch {
		case errors.Is(err, core.ErrNotFound):
			http.NotFound(w, r)
			return
		case errors.Is(err, core.ErrDuplicateAccountName):
			formErr = err.Error()
		case err != nil:
			s.serverError(w, r, "account update failed", err)
			return
		default:
			http.Redirect(w, r, "/accounts", http.StatusSeeOther)
			return
		}
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	s.render(w, r, "account_form.html", "Account", s.accountFormData(account, true, formErr))
}

// accountFromForm builds an account from the submitted form. The second
// return is a user-facing validation message, empty when the form is good.
func (s *Server) accountFromForm(r *http.Request, userID int64) (core.Account, string) {
	if err := r.ParseForm(); err != nil {
		return core.Account{UserID: userID}, "invalid form submission"
	}
	account := core.Account{
		UserID:         userID,
		Name:           formValue(r, "name"),
		Type:           core.AccountType(formValue(r, "account_type")),
		Classification: core.Classification(formValue(r, "classification")),
		AssetType:      core.AssetType(formValue(r, "asset_type")),
		Currency:       formValue(r, "currency"),
		Institution:    formValue(r, "institution"),
		AccountNumber:  formValue(r, "account_number"),
		Active:         true,
	}
	if account.Currency == "" {
		account.Currency = "USD"
	}
	if err := account.Validate(); err != nil {
		return account, err.Error()
	}
	return account, ""
}

type accountDetailData struct {
	Account core.Account
	Balance decimal.Decimal
	Entries []core.AccountEntry
}

func (s *Server) handleAccountDetail(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	account, err := s.repo.GetAccount(r.Context(), user.ID, pathID(r))
	if errors.Is(err, core.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, "account load failed", err)
		return
	}

	entries, err := s.repo.AccountEntries(r.Context(), account.ID)
	if err != nil {
		s.serverError(w, r, "entry history load failed", err)
		return
	}
	balance := decimal.Zero
	if len(entries) > 0 {
		balance = entries[0].Balance
	}

	s.render(w, r, "account_detail.html", account.Name, accountDetailData{
		Account: account,
		Balance: balance,
		Entries: entries,
	})
}

func (s *Server) handleAccountDelete(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	id := pathID(r)

	err := s.repo.DeactivateAccount(r.Context(), user.ID, id)
	if errors.Is(err, core.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, "account delete failed", err)
		return
	}
	s.logger.InfoContext(r.Context(), "account deactivated",
		log.FieldUserID, user.ID, log.FieldAccountID, id)
	http.Redirect(w, r, "/accounts", http.StatusSeeOther)
}
