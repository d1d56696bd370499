package core

const (
	CategoryCash              Category = "cash"
	CategoryEquityInvestments Category = "equity_investments"
	CategoryRetirement        Category = "retirement"
	CategoryProperty          Category = "property"
	CategoryDebts             Category = "debts"
	CategoryOther             Category = "other"
)

// Category is one of the six coarse buckets used by all charts and reports.
type Category string

// Categories lists the buckets in chart display order.
var Categories = []Category{
	CategoryCash, CategoryEquityInvestments, CategoryRetirement,
	CategoryProperty, CategoryDebts, CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryCash:              "Cash",
	CategoryEquityInvestments: "Equity & Investments",
	CategoryRetirement:        "Retirement",
	CategoryProperty:          "Property",
	CategoryDebts:             "Debts",
	CategoryOther:             "Other",
}

func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

var retirementClassifications = map[Classification]bool{
	ClassificationPreTax:      true,
	ClassificationPostTax:     true,
	ClassificationRoth:        true,
	ClassificationTraditional: true,
	Classification401k:        true,
	ClassificationHSA:         true,
	Classification529:         true,
	ClassificationFSA:         true,
}

// Classify maps an account to its chart category. The rules overlap, so
// evaluation order matters: a retirement classification beats the
// investment account type (rule 2 carries the negative condition for
// exactly that reason) and beats a crypto asset type.
func Classify(a Account) Category {
	switch {
	case a.Type == AccountTypeChecking || a.Type == AccountTypeSavings:
		return CategoryCash
	case a.Type == AccountTypeInvestment && !retirementClassifications[a.Classification]:
		return CategoryEquityInvestments
	case retirementClassifications[a.Classification]:
		return CategoryRetirement
	case a.AssetType == AssetTypeProperty:
		return CategoryProperty
	case a.AssetType == AssetTypeCrypto:
		return CategoryEquityInvestments
	case a.Classification == ClassificationDebts || a.Type == AccountTypeLoan || a.Type == AccountTypeCredit:
		return CategoryDebts
	default:
		return CategoryOther
	}
}
