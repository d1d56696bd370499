package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeOther      AccountType = "other"
)

const (
	ClassificationPreTax      Classification = "pretax"
	ClassificationPostTax     Classification = "posttax"
	ClassificationRoth        Classification = "roth"
	ClassificationTraditional Classification = "traditional"
	Classification401k        Classification = "401k"
	Classification529         Classification = "529"
	ClassificationHSA         Classification = "hsa"
	ClassificationFSA         Classification = "fsa"
	ClassificationTaxable     Classification = "taxable"
	ClassificationDebts       Classification = "debts"
	ClassificationOther       Classification = "other"
)

const (
	AssetTypeCash        AssetType = "cash"
	AssetTypeProperty    AssetType = "property"
	AssetTypeCrypto      AssetType = "crypto"
	AssetTypeVehicles    AssetType = "vehicles"
	AssetTypeJewelry     AssetType = "jewelry"
	AssetTypeArt         AssetType = "art"
	AssetTypeElectronics AssetType = "electronics"
	AssetTypeFurniture   AssetType = "furniture"
	AssetTypeClothing    AssetType = "clothing"
	AssetTypeBooks       AssetType = "books"
	AssetTypeSports      AssetType = "sports"
	AssetTypeTools       AssetType = "tools"
	AssetTypeOther       AssetType = "other"
)

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

type (
	AccountType     string
	Classification  string
	AssetType       string
	TransactionType string

	// TransactionCategory is the closed enum of transaction categories.
	TransactionCategory string

	User struct {
		ID           int64
		Username     string
		Email        string
		FirstName    string
		LastName     string
		PasswordHash string
		CreatedAt    time.Time
	}

	Account struct {
		ID             int64
		UserID         int64
		Name           string
		Type           AccountType
		Classification Classification
		AssetType      AssetType
		Currency       string
		Institution    string
		AccountNumber  string
		Active         bool
		CreatedAt      time.Time
		UpdatedAt      time.Time
	}

	// AccountEntry is a monthly balance snapshot for one account.
	// At most one entry exists per (account, month, year).
	AccountEntry struct {
		ID        int64
		AccountID int64
		Month     int // 1-12
		Year      int
		Balance   decimal.Decimal
		Notes     string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// Transaction is a discrete income/expense/transfer event. Transactions
	// are informational only; entries are the source of truth for balances.
	Transaction struct {
		ID          int64
		UserID      int64
		AccountID   int64
		Amount      decimal.Decimal
		Type        TransactionType
		Category    TransactionCategory
		Description string
		Date        time.Time
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
)

var (
	ErrNotFound               = errors.New("not found")
	ErrDuplicateAccountName   = errors.New("an account with this name already exists")
	ErrDuplicateEntry         = errors.New("an entry for this month already exists")
	ErrInvalidAccountType     = errors.New("invalid account type")
	ErrInvalidClassification  = errors.New("invalid classification")
	ErrInvalidAssetType       = errors.New("invalid asset type")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidCategory        = errors.New("invalid category")
	ErrInvalidMonth           = errors.New("month must be between 1 and 12")
	ErrInvalidYear            = errors.New("year must be between 1900 and 2100")
	ErrEmptyName              = errors.New("name is required")
	ErrEmptyDescription       = errors.New("description is required")
)

var accountTypeLabels = map[AccountType]string{
	AccountTypeChecking:   "Checking",
	AccountTypeSavings:    "Savings",
	AccountTypeCredit:     "Credit Card",
	AccountTypeInvestment: "Investment",
	AccountTypeLoan:       "Loan",
	AccountTypeOther:      "Other",
}

var classificationLabels = map[Classification]string{
	ClassificationPreTax:      "Pre-Tax",
	ClassificationPostTax:     "Post-Tax",
	ClassificationRoth:        "Roth",
	ClassificationTraditional: "Traditional IRA",
	Classification401k:        "401(k)",
	Classification529:         "529 Plan",
	ClassificationHSA:         "HSA",
	ClassificationFSA:         "FSA",
	ClassificationTaxable:     "Taxable",
	ClassificationDebts:       "Debts",
	ClassificationOther:       "Other",
}

var assetTypeLabels = map[AssetType]string{
	AssetTypeCash:        "Cash & Cash Equivalents",
	AssetTypeProperty:    "Real Estate",
	AssetTypeCrypto:      "Cryptocurrency",
	AssetTypeVehicles:    "Vehicles",
	AssetTypeJewelry:     "Jewelry & Watches",
	AssetTypeArt:         "Art & Collectibles",
	AssetTypeElectronics: "Electronics",
	AssetTypeFurniture:   "Furniture & Appliances",
	AssetTypeClothing:    "Clothing & Accessories",
	AssetTypeBooks:       "Books & Media",
	AssetTypeSports:      "Sports Equipment",
	AssetTypeTools:       "Tools & Equipment",
	AssetTypeOther:       "Other Assets",
}

var transactionCategoryLabels = map[TransactionCategory]string{
	"salary":         "Salary",
	"freelance":      "Freelance",
	"investment":     "Investment",
	"food":           "Food & Dining",
	"transportation": "Transportation",
	"housing":        "Housing",
	"utilities":      "Utilities",
	"entertainment":  "Entertainment",
	"shopping":       "Shopping",
	"healthcare":     "Healthcare",
	"education":      "Education",
	"travel":         "Travel",
	"other":          "Other",
}

var transactionTypeLabels = map[TransactionType]string{
	TransactionIncome:   "Income",
	TransactionExpense:  "Expense",
	TransactionTransfer: "Transfer",
}

// TransactionCategories lists the valid categories in display order.
var TransactionCategories = []TransactionCategory{
	"salary", "freelance", "investment", "food", "transportation",
	"housing", "utilities", "entertainment", "shopping", "healthcare",
	"education", "travel", "other",
}

// AccountTypes lists the valid account types in display order.
var AccountTypes = []AccountType{
	AccountTypeChecking, AccountTypeSavings, AccountTypeCredit,
	AccountTypeInvestment, AccountTypeLoan, AccountTypeOther,
}

// Classifications lists the valid classifications in display order.
var Classifications = []Classification{
	ClassificationPreTax, ClassificationPostTax, ClassificationRoth,
	ClassificationTraditional, Classification401k, Classification529,
	ClassificationHSA, ClassificationFSA, ClassificationTaxable,
	ClassificationDebts, ClassificationOther,
}

// AssetTypes lists the valid asset types in display order.
var AssetTypes = []AssetType{
	AssetTypeCash, AssetTypeProperty, AssetTypeCrypto, AssetTypeVehicles,
	AssetTypeJewelry, AssetTypeArt, AssetTypeElectronics, AssetTypeFurniture,
	AssetTypeClothing, AssetTypeBooks, AssetTypeSports, AssetTypeTools,
	AssetTypeOther,
}

// TransactionTypes lists the valid transaction types in display order.
var TransactionTypes = []TransactionType{
	TransactionIncome, TransactionExpense, TransactionTransfer,
}

func (t AccountType) Valid() bool {
	_, ok := accountTypeLabels[t]
	return ok
}

// Label returns the human-readable form of the account type.
func (t AccountType) Label() string {
	if l, ok := accountTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

func (c Classification) Valid() bool {
	_, ok := classificationLabels[c]
	return ok
}

func (c Classification) Label() string {
	if l, ok := classificationLabels[c]; ok {
		return l
	}
	return string(c)
}

func (a AssetType) Valid() bool {
	_, ok := assetTypeLabels[a]
	return ok
}

func (a AssetType) Label() string {
	if l, ok := assetTypeLabels[a]; ok {
		return l
	}
	return string(a)
}

func (t TransactionType) Valid() bool {
	_, ok := transactionTypeLabels[t]
	return ok
}

func (t TransactionType) Label() string {
	if l, ok := transactionTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

func (c TransactionCategory) Valid() bool {
	_, ok := transactionCategoryLabels[c]
	return ok
}

func (c TransactionCategory) Label() string {
	if l, ok := transactionCategoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func (a Account) Validate() error {
	if len(strings.TrimSpace(a.Name)) == 0 {
		return ErrEmptyName
	}
	if len(a.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	if !a.Classification.Valid() {
		return ErrInvalidClassification
	}
	if !a.AssetType.Valid() {
		return ErrInvalidAssetType
	}
	if len(a.Currency) != 3 {
		return errors.New("currency must be a 3-letter code")
	}
	return nil
}

func (e AccountEntry) Validate() error {
	if e.Month < 1 || e.Month > 12 {
		return ErrInvalidMonth
	}
	if e.Year < 1900 || e.Year > 2100 {
		return ErrInvalidYear
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.AccountID == 0 {
		return errors.New("account is required")
	}
	if !t.Type.Valid() {
		return ErrInvalidTransactionType
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Date.IsZero() {
		return errors.New("date is required")
	}
	return nil
}

// DisplayName is how the user shows up in page headers: full name when
// present, otherwise the username.
func (u User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Username
}
