package core

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		acc  Account
		want Category
	}{
		{"checking is cash", Account{Type: AccountTypeChecking}, CategoryCash},
		{"savings is cash", Account{Type: AccountTypeSavings, Classification: ClassificationTaxable}, CategoryCash},
		{"taxable investment", Account{Type: AccountTypeInvestment, Classification: ClassificationTaxable}, CategoryEquityInvestments},
		{"investment with 401k classification is retirement, not equity", Account{Type: AccountTypeInvestment, Classification: Classification401k}, CategoryRetirement},
		{"investment with roth classification", Account{Type: AccountTypeInvestment, Classification: ClassificationRoth}, CategoryRetirement},
		{"hsa on a non-investment account", Account{Type: AccountTypeOther, Classification: ClassificationHSA}, CategoryRetirement},
		{"real estate", Account{Type: AccountTypeOther, Classification: ClassificationOther, AssetType: AssetTypeProperty}, CategoryProperty},
		{"crypto taxable investment", Account{Type: AccountTypeInvestment, Classification: ClassificationTaxable, AssetType: AssetTypeCrypto}, CategoryEquityInvestments},
		{"crypto wallet outside an investment account", Account{Type: AccountTypeOther, Classification: ClassificationOther, AssetType: AssetTypeCrypto}, CategoryEquityInvestments},
		{"crypto 401k is retirement, retirement trumps crypto", Account{Type: AccountTypeOther, Classification: Classification401k, AssetType: AssetTypeCrypto}, CategoryRetirement},
		{"loan", Account{Type: AccountTypeLoan, Classification: ClassificationOther}, CategoryDebts},
		{"credit card", Account{Type: AccountTypeCredit, Classification: ClassificationOther}, CategoryDebts},
		{"debts classification", Account{Type: AccountTypeOther, Classification: ClassificationDebts}, CategoryDebts},
		{"fallback", Account{Type: AccountTypeOther, Classification: ClassificationOther, AssetType: AssetTypeVehicles}, CategoryOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.acc); got != tc.want {
				t.Fatalf("Classify(%+v) = %q, want %q", tc.acc, got, tc.want)
			}
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	// Every combination lands in exactly one of the six buckets.
	valid := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		valid[c] = true
	}
	for _, at := range AccountTypes {
		for _, cl := range Classifications {
			for _, as := range AssetTypes {
				got := Classify(Account{Type: at, Classification: cl, AssetType: as})
				if !valid[got] {
					t.Fatalf("Classify(%s/%s/%s) = %q, not a known category", at, cl, as, got)
				}
			}
		}
	}
}
