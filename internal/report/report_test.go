package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"networth/internal/core"
	"networth/internal/log"
	"networth/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.Repository, core.User) {
	t.Helper()
	repo, err := storage.NewRepository(t.TempDir() + "/report.db")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	user, err := repo.CreateUser(context.Background(), core.User{
		Username:     "reporter",
		Email:        "reporter@example.com",
		PasswordHash: "x",
	})
	require.NoError(t, err)

	svc := NewService(repo, log.New(log.DefaultConfig()))
	return svc, repo, user
}

func createAccount(t *testing.T, repo *storage.Repository, userID int64, name string, at core.AccountType, cl core.Classification, as core.AssetType) core.Account {
	t.Helper()
	a, err := repo.CreateAccount(context.Background(), core.Account{
		UserID:         userID,
		Name:           name,
		Type:           at,
		Classification: cl,
		AssetType:      as,
		Currency:       "USD",
		Active:         true,
	})
	require.NoError(t, err)
	return a
}

func addEntry(t *testing.T, repo *storage.Repository, accountID int64, month, year int, balance string) {
	t.Helper()
	err := repo.UpsertEntry(context.Background(), core.AccountEntry{
		AccountID: accountID,
		Month:     month,
		Year:      year,
		Balance:   decimal.RequireFromString(balance),
	})
	require.NoError(t, err)
}

func TestSeriesAggregatesByCategory(t *testing.T) {
	svc, repo, user := newTestService(t)
	ctx := context.Background()
	svc.now = func() time.Time { return time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC) }

	checking := createAccount(t, repo, user.ID, "Checking", core.AccountTypeChecking, core.ClassificationTaxable, core.AssetTypeCash)
	retirement := createAccount(t, repo, user.ID, "401k", core.AccountTypeInvestment, core.Classification401k, core.AssetTypeOther)

	addEntry(t, repo, checking.ID, 3, 2025, "1000")
	addEntry(t, repo, retirement.ID, 3, 2025, "5000")
	addEntry(t, repo, checking.ID, 2, 2025, "900")

	points, err := svc.Series(ctx, user.ID, 3)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "Jan 2025", points[0].Label)
	assert.Equal(t, "Feb 2025", points[1].Label)
	assert.Equal(t, "Mar 2025", points[2].Label)

	assert.Zero(t, points[0].NetWorth)
	assert.InDelta(t, 900, points[1].NetWorth, 0.001)
	assert.InDelta(t, 6000, points[2].NetWorth, 0.001)
	assert.InDelta(t, 1000, points[2].Totals[core.CategoryCash], 0.001)
	assert.InDelta(t, 5000, points[2].Totals[core.CategoryRetirement], 0.001)
}

func TestSeriesNormalizesPeriod(t *testing.T) {
	svc, _, user := newTestService(t)
	svc.now = func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) }

	points, err := svc.Series(context.Background(), user.ID, 7)
	require.NoError(t, err)
	assert.Len(t, points, 12)
}

func TestAllocationUsesLatestBalances(t *testing.T) {
	svc, repo, user := newTestService(t)
	ctx := context.Background()

	checking := createAccount(t, repo, user.ID, "Checking", core.AccountTypeChecking, core.ClassificationTaxable, core.AssetTypeCash)
	brokerage := createAccount(t, repo, user.ID, "Brokerage", core.AccountTypeInvestment, core.ClassificationTaxable, core.AssetTypeOther)

	addEntry(t, repo, checking.ID, 1, 2025, "100")
	addEntry(t, repo, checking.ID, 2, 2025, "250")
	addEntry(t, repo, brokerage.ID, 2, 2025, "4000")

	alloc, err := svc.Allocation(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, alloc, 2)

	byCategory := map[core.Category]float64{}
	for _, ct := range alloc {
		byCategory[ct.Category] = ct.Total
	}
	assert.InDelta(t, 250, byCategory[core.CategoryCash], 0.001)
	assert.InDelta(t, 4000, byCategory[core.CategoryEquityInvestments], 0.001)
}

func TestImportEntries(t *testing.T) {
	svc, repo, user := newTestService(t)
	ctx := context.Background()

	account := createAccount(t, repo, user.ID, "Test Account", core.AccountTypeChecking, core.ClassificationTaxable, core.AssetTypeCash)

	csvData := `account_name,month,year,balance,notes
Test Account,January,2025,"61,188.30",Test note 1
Test Account,Feburary,2025,$500.25,
Test Account,3,2025,(1234.56),paid off
Nope,April,2025,100,
Test Account,May,20255,100,
Test Account,June,2025,garbage,
`
	report, err := svc.ImportEntries(ctx, user.ID, strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 4, report.Imported)
	require.Len(t, report.Errors, 3)
	assert.Contains(t, report.Errors[0], "row 5")
	assert.Contains(t, report.Errors[0], "unknown account")
	assert.Contains(t, report.Errors[1], "row 6")
	assert.Contains(t, report.Errors[1], "invalid year")
	assert.Contains(t, report.Errors[2], "row 7")
	assert.Contains(t, report.Errors[2], "unparseable balance")

	jan, err := repo.BalanceAt(ctx, account.ID, 1, 2025)
	require.NoError(t, err)
	assert.True(t, jan.Equal(decimal.RequireFromString("61188.30")), "got %s", jan)

	feb, err := repo.BalanceAt(ctx, account.ID, 2, 2025)
	require.NoError(t, err)
	assert.True(t, feb.Equal(decimal.RequireFromString("500.25")))

	mar, err := repo.BalanceAt(ctx, account.ID, 3, 2025)
	require.NoError(t, err)
	assert.True(t, mar.Equal(decimal.RequireFromString("-1234.56")))

	// garbage balance imports as zero with a row warning
	jun, err := repo.BalanceAt(ctx, account.ID, 6, 2025)
	require.NoError(t, err)
	assert.True(t, jun.IsZero())
}

func TestImportEntriesUpsertsExistingMonth(t *testing.T) {
	svc, repo, user := newTestService(t)
	ctx := context.Background()

	account := createAccount(t, repo, user.ID, "Savings", core.AccountTypeSavings, core.ClassificationTaxable, core.AssetTypeCash)
	addEntry(t, repo, account.ID, 1, 2025, "100")

	report, err := svc.ImportEntries(ctx, user.ID, strings.NewReader("account_name,month,year,balance\nSavings,January,2025,999\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Empty(t, report.Errors)

	balance, err := repo.BalanceAt(ctx, account.ID, 1, 2025)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("999")))
}

func TestImportEntriesMissingColumns(t *testing.T) {
	svc, _, user := newTestService(t)

	_, err := svc.ImportEntries(context.Background(), user.ID, strings.NewReader("account_name,balance\nX,100\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "month")
	assert.Contains(t, err.Error(), "year")
}

func TestImportAccounts(t *testing.T) {
	svc, repo, user := newTestService(t)
	ctx := context.Background()

	createAccount(t, repo, user.ID, "Existing", core.AccountTypeChecking, core.ClassificationTaxable, core.AssetTypeCash)

	csvData := `name,account_type,classification,asset_type,currency,institution,account_number
New Brokerage,Investment,Taxable,other,usd,Vanguard,1234
Existing,Savings,taxable,cash,,,
Bad Row,spaceship,taxable,cash,,,
`
	report, err := svc.ImportAccounts(ctx, user.ID, strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Imported)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "unknown account type")

	created, err := repo.GetAccountByName(ctx, user.ID, "New Brokerage")
	require.NoError(t, err)
	assert.Equal(t, core.AccountTypeInvestment, created.Type)
	assert.Equal(t, "USD", created.Currency)
	assert.Equal(t, "Vanguard", created.Institution)

	updated, err := repo.GetAccountByName(ctx, user.ID, "Existing")
	require.NoError(t, err)
	assert.Equal(t, core.AccountTypeSavings, updated.Type)
}

func TestExportedEntriesReimport(t *testing.T) {
	svc, repo, user := newTestService(t)
	ctx := context.Background()

	checking := createAccount(t, repo, user.ID, "Checking", core.AccountTypeChecking, core.ClassificationTaxable, core.AssetTypeCash)
	savings := createAccount(t, repo, user.ID, "Savings", core.AccountTypeSavings, core.ClassificationTaxable, core.AssetTypeCash)
	addEntry(t, repo, checking.ID, 1, 2025, "61188.30")
	addEntry(t, repo, checking.ID, 2, 2025, "-1234.56")
	require.NoError(t, repo.UpsertEntry(ctx, core.AccountEntry{
		AccountID: savings.ID,
		Month:     2,
		Year:      2025,
		Balance:   decimal.RequireFromString("500.25"),
		Notes:     "bonus month",
	}))

	f, err := svc.Export(ctx, user.ID, KindEntries, FormatCSV)
	require.NoError(t, err)

	report, err := svc.ImportEntries(ctx, user.ID, bytes.NewReader(f.Data))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Imported)
	assert.Empty(t, report.Errors)

	jan, err := repo.BalanceAt(ctx, checking.ID, 1, 2025)
	require.NoError(t, err)
	assert.True(t, jan.Equal(decimal.RequireFromString("61188.30")), "got %s", jan)

	feb, err := repo.BalanceAt(ctx, checking.ID, 2, 2025)
	require.NoError(t, err)
	assert.True(t, feb.Equal(decimal.RequireFromString("-1234.56")))

	entry, err := repo.EntryFor(ctx, savings.ID, 2, 2025)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.Balance.Equal(decimal.RequireFromString("500.25")))
	assert.Equal(t, "bonus month", entry.Notes)
}

func TestExportedAccountsReimport(t *testing.T) {
	svc, repo, user := newTestService(t)
	ctx := context.Background()

	createAccount(t, repo, user.ID, "Brokerage", core.AccountTypeInvestment, core.ClassificationTaxable, core.AssetTypeOther)
	createAccount(t, repo, user.ID, "Checking", core.AccountTypeChecking, core.ClassificationTaxable, core.AssetTypeCash)

	f, err := svc.Export(ctx, user.ID, KindAccounts, FormatCSV)
	require.NoError(t, err)

	report, err := svc.ImportAccounts(ctx, user.ID, bytes.NewReader(f.Data))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	assert.Empty(t, report.Errors)

	got, err := repo.GetAccountByName(ctx, user.ID, "Brokerage")
	require.NoError(t, err)
	assert.Equal(t, core.AccountTypeInvestment, got.Type)
	assert.Equal(t, core.ClassificationTaxable, got.Classification)
	assert.Equal(t, core.AssetTypeOther, got.AssetType)
	assert.Equal(t, "USD", got.Currency)
}

func TestImportAccountsReactivates(t *testing.T) {
	svc, repo, user := newTestService(t)
	ctx := context.Background()

	old := createAccount(t, repo, user.ID, "Old Brokerage", core.AccountTypeInvestment, core.ClassificationTaxable, core.AssetTypeOther)
	require.NoError(t, repo.DeactivateAccount(ctx, user.ID, old.ID))

	report, err := svc.ImportAccounts(ctx, user.ID,
		strings.NewReader("name,account_type,classification,asset_type\nOld Brokerage,Investment,Taxable,Other\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Empty(t, report.Errors)

	got, err := repo.GetAccountByName(ctx, user.ID, "Old Brokerage")
	require.NoError(t, err)
	assert.True(t, got.Active)

	accounts, err := repo.ListAccounts(ctx, user.ID, "name", "asc")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, old.ID, accounts[0].ID)
}

func TestExportKinds(t *testing.T) {
	svc, repo, user := newTestService(t)
	ctx := context.Background()

	account := createAccount(t, repo, user.ID, "Checking", core.AccountTypeChecking, core.ClassificationTaxable, core.AssetTypeCash)
	addEntry(t, repo, account.ID, 3, 2025, "1500.50")
	_, err := repo.CreateTransaction(ctx, core.Transaction{
		UserID:      user.ID,
		AccountID:   account.ID,
		Amount:      decimal.RequireFromString("42.00"),
		Type:        core.TransactionExpense,
		Category:    "food",
		Description: "groceries",
		Date:        time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	t.Run("entries csv uses month names and labels", func(t *testing.T) {
		f, err := svc.Export(ctx, user.ID, KindEntries, FormatCSV)
		require.NoError(t, err)
		assert.Equal(t, "entries.csv", f.Filename)
		assert.Equal(t, "text/csv", f.ContentType)
		body := string(f.Data)
		assert.Contains(t, body, "Account,Month,Year,Balance,Notes")
		assert.Contains(t, body, "Checking,March,2025,1500.50,")
	})

	t.Run("accounts csv carries display labels", func(t *testing.T) {
		f, err := svc.Export(ctx, user.ID, KindAccounts, FormatCSV)
		require.NoError(t, err)
		body := string(f.Data)
		assert.Contains(t, body, "Checking")
		assert.Contains(t, body, "Taxable")
		assert.Contains(t, body, "Cash & Cash Equivalents")
		assert.NotContains(t, body, "taxable")
	})

	t.Run("transactions csv resolves account names", func(t *testing.T) {
		f, err := svc.Export(ctx, user.ID, KindTransactions, FormatCSV)
		require.NoError(t, err)
		body := string(f.Data)
		assert.Contains(t, body, "2025-03-10,Checking,Expense,Food & Dining,42.00,groceries")
	})

	t.Run("xlsx and pdf render", func(t *testing.T) {
		xlsx, err := svc.Export(ctx, user.ID, KindEntries, FormatXLSX)
		require.NoError(t, err)
		assert.Equal(t, "entries.xlsx", xlsx.Filename)
		assert.NotEmpty(t, xlsx.Data)

		pdf, err := svc.Export(ctx, user.ID, KindEntries, FormatPDF)
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", pdf.ContentType)
		assert.True(t, len(pdf.Data) > 0 && string(pdf.Data[:4]) == "%PDF")
	})

	t.Run("invalid kind", func(t *testing.T) {
		_, err := svc.Export(ctx, user.ID, DataKind("bogus"), FormatCSV)
		assert.ErrorIs(t, err, ErrInvalidDataKind)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := svc.Export(ctx, user.ID, KindEntries, Format("docx"))
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}

func TestParseDataKindAndFormat(t *testing.T) {
	for _, s := range []string{"accounts", "transactions", "entries"} {
		_, err := ParseDataKind(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseDataKind("users")
	assert.ErrorIs(t, err, ErrInvalidDataKind)

	for _, s := range []string{"csv", "xlsx", "pdf"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
