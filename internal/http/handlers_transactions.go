package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"networth/internal/core"
	"networth/internal/log"
	"networth/internal/storage"
)

type transactionListData struct {
	Transactions []core.Transaction
	AccountNames map[int64]string
	Accounts     []storage.AccountWithBalance
	Categories   []core.TransactionCategory
	Types        []core.TransactionType
	Filter       storage.TransactionFilter
	Income       decimal.Decimal
	Expenses     decimal.Decimal
	Net          decimal.Decimal
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	filter := storage.TransactionFilter{
		AccountID: int64(queryInt(r, "account", 0)),
		Category:  core.TransactionCategory(formValue(r, "category")),
		Type:      core.TransactionType(formValue(r, "type")),
	}
	// junk filter values act as "no filter" rather than erroring
	if !filter.Category.Valid() {
		filter.Category = ""
	}
	if !filter.Type.Valid() {
		filter.Type = ""
	}

	txs, err := s.repo.ListTransactions(r.Context(), user.ID, filter)
	if err != nil {
		s.serverError(w, r, "transaction list failed", err)
		return
	}
	income, err := s.repo.SumTransactions(r.Context(), user.ID, filter, core.TransactionIncome)
	if err != nil {
		s.serverError(w, r, "income sum failed", err)
		return
	}
	expenses, err := s.repo.SumTransactions(r.Context(), user.ID, filter, core.TransactionExpense)
	if err != nil {
		s.serverError(w, r, "expense sum failed", err)
		return
	}
	accounts, err := s.repo.ListAccounts(r.Context(), user.ID, "name", "asc")
	if err != nil {
		s.serverError(w, r, "account list failed", err)
		return
	}

	names := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	s.render(w, r, "transactions_list.html", "Transactions", transactionListData{
		Transactions: txs,
		AccountNames: names,
		Accounts:     accounts,
		Categories:   core.TransactionCategories,
		Types:        core.TransactionTypes,
		Filter:       filter,
		Income:       income,
		Expenses:     expenses,
		Net:          income.Sub(expenses),
	})
}

type transactionFormData struct {
	Transaction core.Transaction
	Editing     bool
	Error       string
	Accounts    []storage.AccountWithBalance
	Categories  []core.TransactionCategory
	Types       []core.TransactionType
}

func (s *Server) transactionFormData(r *http.Request, t core.Transaction, editing bool, errMsg string) (transactionFormData, error) {
	accounts, err := s.repo.ListAccounts(r.Context(), currentUser(r.Context()).ID, "name", "asc")
	if err != nil {
		return transactionFormData{}, err
	}
	return transactionFormData{
		Transaction: t,
		Editing:     editing,
		Error:       errMsg,
		Accounts:    accounts,
		Categories:  core.TransactionCategories,
		Types:       core.TransactionTypes,
	}, nil
}

func (s *Server) handleTransactionForm(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	vars := mux.Vars(r)

	tx := core.Transaction{Date: time.Now(), Type: core.TransactionExpense}
	editing := false
	if vars["id"] != "" {
		var err error
		tx, err = s.repo.GetTransaction(r.Context(), user.ID, pathID(r))
		if errors.Is(err, core.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			s.serverError(w, r, "transaction load failed", err)
			return
		}
		editing = true
	}

	data, err := s.transactionFormData(r, tx, editing, "")
	if err != nil {
		s.serverError(w, r, "transaction form failed", err)
		return
	}
	s.render(w, r, "transaction_form.html", "Transaction", data)
}

func (s *Server) handleTransactionCreate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	tx, formErr := s.transactionFromForm(r, user.ID)
	if formErr == "" {
		if _, err := s.repo.CreateTransaction(r.Context(), tx); err != nil {
			s.serverError(w, r, "transaction create failed", err)
			return
		}
		s.logger.InfoContext(r.Context(), "transaction created",
			log.FieldUserID, user.ID, log.FieldAccountID, tx.AccountID)
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}

	data, err := s.transactionFormData(r, tx, false, formErr)
	if err != nil {
		s.serverError(w, r, "transaction form failed", err)
		return
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	s.render(w, r, "transaction_form.html", "Transaction", data)
}

func (s *Server) handleTransactionUpdate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	tx, formErr := s.transactionFromForm(r, user.ID)
	tx.ID = pathID(r)

	if formErr == "" {
		err := s.repo.UpdateTransaction(r.Context(), tx)
		if errors.Is(err, core.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			s.serverError(w, r, "transaction update failed", err)
			return
		}
		http.Redirect(w, r, "/transactions", http.StatusSeeOther)
		return
	}

	data, err := s.transactionFormData(r, tx, true, formErr)
	if err != nil {
		s.serverError(w, r, "transaction form failed", err)
		return
	}
	w.WriteHeader(http.StatusUnprocessableEntity)
	s.render(w, r, "transaction_form.html", "Transaction", data)
}

func (s *Server) transactionFromForm(r *http.Request, userID int64) (core.Transaction, string) {
	if err := r.ParseForm(); err != nil {
		return core.Transaction{UserID: userID}, "invalid form submission"
	}

	accountID, _ := strconv.ParseInt(formValue(r, "account_id"), 10, 64)
	tx := core.Transaction{
		UserID:      userID,
		AccountID:   accountID,
		Type:        core.TransactionType(formValue(r, "type")),
		Category:    core.TransactionCategory(formValue(r, "category")),
		Description: formValue(r, "description"),
	}

	amount, err := decimal.NewFromString(formValue(r, "amount"))
	if err != nil {
		return tx, "invalid amount"
	}
	tx.Amount = amount

	date, err := time.Parse("2006-01-02", formValue(r, "date"))
	if err != nil {
		return tx, "invalid date"
	}
	tx.Date = date

	// the account must be the user's own
	if _, err := s.repo.GetAccount(r.Context(), userID, tx.AccountID); err != nil {
		return tx, "unknown account"
	}
	if err := tx.Validate(); err != nil {
		return tx, err.Error()
	}
	return tx, ""
}

func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	err := s.repo.DeleteTransaction(r.Context(), user.ID, pathID(r))
	if errors.Is(err, core.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, "transaction delete failed", err)
		return
	}
	http.Redirect(w, r, "/transactions", http.StatusSeeOther)
}
