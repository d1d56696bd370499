package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"networth/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *Repository, username string) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), core.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func newTestAccount(t *testing.T, repo *Repository, userID int64, name string, typ core.AccountType) core.Account {
	t.Helper()
	a, err := repo.CreateAccount(context.Background(), core.Account{
		UserID:         userID,
		Name:           name,
		Type:           typ,
		Classification: core.ClassificationTaxable,
		AssetType:      core.AssetTypeCash,
		Currency:       "USD",
		Active:         true,
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return a
}

func TestDuplicateAccountName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")
	newTestAccount(t, repo, u.ID, "Checking", core.AccountTypeChecking)

	_, err := repo.CreateAccount(ctx, core.Account{
		UserID: u.ID, Name: "Checking", Type: core.AccountTypeSavings,
		Classification: core.ClassificationTaxable, AssetType: core.AssetTypeCash,
		Currency: "USD", Active: true,
	})
	if !errors.Is(err, core.ErrDuplicateAccountName) {
		t.Fatalf("expected ErrDuplicateAccountName, got %v", err)
	}

	// Uniqueness holds even after a soft delete.
	accounts, err := repo.ListAccounts(ctx, u.ID, "name", "asc")
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.DeactivateAccount(ctx, u.ID, accounts[0].ID); err != nil {
		t.Fatal(err)
	}
	_, err = repo.CreateAccount(ctx, core.Account{
		UserID: u.ID, Name: "Checking", Type: core.AccountTypeChecking,
		Classification: core.ClassificationTaxable, AssetType: core.AssetTypeCash,
		Currency: "USD", Active: true,
	})
	if !errors.Is(err, core.ErrDuplicateAccountName) {
		t.Fatalf("expected ErrDuplicateAccountName after soft delete, got %v", err)
	}

	// A different user can reuse the name.
	b := newTestUser(t, repo, "bob")
	if _, err := repo.CreateAccount(ctx, core.Account{
		UserID: b.ID, Name: "Checking", Type: core.AccountTypeChecking,
		Classification: core.ClassificationTaxable, AssetType: core.AssetTypeCash,
		Currency: "USD", Active: true,
	}); err != nil {
		t.Fatalf("cross-user name reuse should succeed: %v", err)
	}
}

func TestUpdateAccountReactivates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")
	acc := newTestAccount(t, repo, u.ID, "Brokerage", core.AccountTypeInvestment)

	if err := repo.DeactivateAccount(ctx, u.ID, acc.ID); err != nil {
		t.Fatal(err)
	}

	acc.Institution = "Vanguard"
	acc.Active = true
	if err := repo.UpdateAccount(ctx, acc); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetAccount(ctx, u.ID, acc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Active {
		t.Fatal("account should be active after update with Active set")
	}
	if got.Institution != "Vanguard" {
		t.Fatalf("institution not updated, got %q", got.Institution)
	}

	accounts, err := repo.ListAccounts(ctx, u.ID, "name", "asc")
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected reactivated account in list, got %d accounts", len(accounts))
	}
}

func TestAccountOwnershipHiding(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := newTestUser(t, repo, "alice")
	bob := newTestUser(t, repo, "bob")
	acc := newTestAccount(t, repo, alice.ID, "Secret", core.AccountTypeSavings)

	// Bob sees not-found, not forbidden.
	if _, err := repo.GetAccount(ctx, bob.ID, acc.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign account, got %v", err)
	}
	if err := repo.DeactivateAccount(ctx, bob.ID, acc.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign deactivate, got %v", err)
	}
}

func TestSnapshotResolver(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")
	acc := newTestAccount(t, repo, u.ID, "Savings", core.AccountTypeSavings)

	// No entries: zero, no error.
	b, err := repo.LatestBalance(ctx, acc.ID)
	if err != nil || !b.IsZero() {
		t.Fatalf("empty account latest balance = %s, %v; want 0", b, err)
	}

	for _, e := range []core.AccountEntry{
		{AccountID: acc.ID, Month: 1, Year: 2024, Balance: decimal.NewFromInt(1000)},
		{AccountID: acc.ID, Month: 2, Year: 2024, Balance: decimal.NewFromInt(1500)},
	} {
		if err := repo.UpsertEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	b, err = repo.LatestBalance(ctx, acc.ID)
	if err != nil || !b.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("latest balance = %s, %v; want 1500", b, err)
	}
	b, err = repo.BalanceAt(ctx, acc.ID, 1, 2024)
	if err != nil || !b.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance at 1/2024 = %s, %v; want 1000", b, err)
	}
	// Exact-month mode has no fallback.
	b, err = repo.BalanceAt(ctx, acc.ID, 3, 2024)
	if err != nil || !b.IsZero() {
		t.Fatalf("balance at 3/2024 = %s, %v; want 0", b, err)
	}
	// Nonexistent account never errors.
	b, err = repo.LatestBalance(ctx, 99999)
	if err != nil || !b.IsZero() {
		t.Fatalf("nonexistent account balance = %s, %v; want 0", b, err)
	}
}

func TestEntryUpsertAndUniqueness(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")
	acc := newTestAccount(t, repo, u.ID, "Checking", core.AccountTypeChecking)

	e := core.AccountEntry{AccountID: acc.ID, Month: 5, Year: 2024, Balance: decimal.NewFromInt(100), Notes: "first"}
	if _, err := repo.InsertEntry(ctx, e); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.InsertEntry(ctx, e); !errors.Is(err, core.ErrDuplicateEntry) {
		t.Fatalf("expected ErrDuplicateEntry, got %v", err)
	}

	e.Balance = decimal.NewFromInt(250)
	e.Notes = "revised"
	if err := repo.UpsertEntry(ctx, e); err != nil {
		t.Fatalf("upsert over existing entry: %v", err)
	}
	got, err := repo.EntryFor(ctx, acc.ID, 5, 2024)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || !got.Balance.Equal(decimal.NewFromInt(250)) || got.Notes != "revised" {
		t.Fatalf("upsert did not overwrite: %+v", got)
	}

	n, err := repo.CountEntries(ctx, u.ID)
	if err != nil || n != 1 {
		t.Fatalf("entry count = %d, %v; want 1", n, err)
	}
}

func TestClearMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")
	a1 := newTestAccount(t, repo, u.ID, "A", core.AccountTypeChecking)
	a2 := newTestAccount(t, repo, u.ID, "B", core.AccountTypeSavings)

	for _, e := range []core.AccountEntry{
		{AccountID: a1.ID, Month: 6, Year: 2024, Balance: decimal.NewFromInt(10), Notes: "n"},
		{AccountID: a2.ID, Month: 6, Year: 2024, Balance: decimal.NewFromInt(20), Notes: "n"},
		{AccountID: a1.ID, Month: 7, Year: 2024, Balance: decimal.NewFromInt(30)},
	} {
		if err := repo.UpsertEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	n, err := repo.ClearMonth(ctx, u.ID, 6, 2024)
	if err != nil || n != 2 {
		t.Fatalf("cleared %d rows, %v; want 2", n, err)
	}
	got, err := repo.EntryFor(ctx, a1.ID, 6, 2024)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Balance.IsZero() || got.Notes != "" {
		t.Fatalf("entry not cleared: %+v", got)
	}
	// Other months untouched.
	b, _ := repo.BalanceAt(ctx, a1.ID, 7, 2024)
	if !b.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("july balance = %s, want 30", b)
	}
}

func TestDeleteAccountsCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")
	acc := newTestAccount(t, repo, u.ID, "Checking", core.AccountTypeChecking)

	if err := repo.UpsertEntry(ctx, core.AccountEntry{
		AccountID: acc.ID, Month: 1, Year: 2024, Balance: decimal.NewFromInt(5),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID: u.ID, AccountID: acc.ID, Amount: decimal.NewFromInt(10),
		Type: core.TransactionExpense, Category: "food", Description: "lunch",
		Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatal(err)
	}

	n, err := repo.DeleteAllAccounts(ctx, u.ID)
	if err != nil || n != 1 {
		t.Fatalf("deleted %d accounts, %v; want 1", n, err)
	}
	if c, _ := repo.CountEntries(ctx, u.ID); c != 0 {
		t.Fatalf("entries survived cascade: %d", c)
	}
	if c, _ := repo.CountTransactions(ctx, u.ID); c != 0 {
		t.Fatalf("transactions survived cascade: %d", c)
	}
}

func TestListAccountsSorting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")
	a := newTestAccount(t, repo, u.ID, "Alpha", core.AccountTypeChecking)
	b := newTestAccount(t, repo, u.ID, "Beta", core.AccountTypeSavings)

	if err := repo.UpsertEntry(ctx, core.AccountEntry{AccountID: a.ID, Month: 1, Year: 2024, Balance: decimal.NewFromInt(50)}); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertEntry(ctx, core.AccountEntry{AccountID: b.ID, Month: 1, Year: 2024, Balance: decimal.NewFromInt(500)}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListAccounts(ctx, u.ID, "balance", "desc")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "Beta" {
		t.Fatalf("balance desc order wrong: %+v", got)
	}
	if !got[0].Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("latest balance = %s, want 500", got[0].Balance)
	}

	// Unknown sort field falls back to name asc.
	got, err = repo.ListAccounts(ctx, u.ID, "bogus", "sideways")
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Name != "Alpha" {
		t.Fatalf("fallback order wrong: %+v", got)
	}
}

func TestEntriesForMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")
	other := newTestUser(t, repo, "bob")
	a := newTestAccount(t, repo, u.ID, "Mine", core.AccountTypeChecking)
	o := newTestAccount(t, repo, other.ID, "Theirs", core.AccountTypeChecking)

	if err := repo.UpsertEntry(ctx, core.AccountEntry{AccountID: a.ID, Month: 3, Year: 2025, Balance: decimal.NewFromInt(75)}); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpsertEntry(ctx, core.AccountEntry{AccountID: o.ID, Month: 3, Year: 2025, Balance: decimal.NewFromInt(999)}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.EntriesForMonth(ctx, u.ID, 3, 2025)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only own entries, got %d", len(got))
	}
	if got[0].Account.Name != "Mine" || !got[0].Entry.Balance.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("unexpected row %+v", got[0])
	}
}

func TestTransactionFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := newTestUser(t, repo, "alice")
	acc := newTestAccount(t, repo, u.ID, "Checking", core.AccountTypeChecking)

	mk := func(amount int64, typ core.TransactionType, cat core.TransactionCategory, day int) {
		t.Helper()
		if _, err := repo.CreateTransaction(ctx, core.Transaction{
			UserID: u.ID, AccountID: acc.ID, Amount: decimal.NewFromInt(amount),
			Type: typ, Category: cat, Description: "tx",
			Date: time.Date(2024, 2, day, 0, 0, 0, 0, time.UTC),
		}); err != nil {
			t.Fatal(err)
		}
	}
	mk(3000, core.TransactionIncome, "salary", 1)
	mk(50, core.TransactionExpense, "food", 2)
	mk(70, core.TransactionExpense, "travel", 3)

	all, err := repo.ListTransactions(ctx, u.ID, TransactionFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("list all = %d, %v; want 3", len(all), err)
	}
	// Newest first.
	if !all[0].Amount.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected newest first, got %+v", all[0])
	}

	food, err := repo.ListTransactions(ctx, u.ID, TransactionFilter{Category: "food"})
	if err != nil || len(food) != 1 {
		t.Fatalf("food filter = %d, %v; want 1", len(food), err)
	}

	income, err := repo.SumTransactions(ctx, u.ID, TransactionFilter{}, core.TransactionIncome)
	if err != nil || !income.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("income sum = %s, %v; want 3000", income, err)
	}
	expenses, err := repo.SumTransactions(ctx, u.ID, TransactionFilter{}, core.TransactionExpense)
	if err != nil || !expenses.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expense sum = %s, %v; want 120", expenses, err)
	}
}

func TestUpdateProfileAndEmailInUse(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := newTestUser(t, repo, "alice")
	newTestUser(t, repo, "bob")

	inUse, err := repo.EmailInUse(ctx, "bob@example.com", alice.ID)
	if err != nil || !inUse {
		t.Fatalf("bob's email should be in use: %v %v", inUse, err)
	}
	inUse, err = repo.EmailInUse(ctx, "alice@example.com", alice.ID)
	if err != nil || inUse {
		t.Fatalf("own email should not count: %v %v", inUse, err)
	}

	if err := repo.UpdateProfile(ctx, alice.ID, "Ada", "Lovelace", "ada@example.com"); err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetUserByID(ctx, alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.FirstName != "Ada" || got.Email != "ada@example.com" {
		t.Fatalf("profile not updated: %+v", got)
	}
}
