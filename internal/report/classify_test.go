package report

import (
	"testing"

	"github.com/tallybook/tally/internal/ledger"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		code string
		want ledger.Category
	}{
		{"1100", ledger.CategoryAssets},
		{"1-1", ledger.CategoryAssets},
		{"2100", ledger.CategoryLiabilities},
		{"3100", ledger.CategoryEquity},
		{"4100", ledger.CategoryRevenue},
		{"5300", ledger.CategoryExpenses},
		{"5-300", ledger.CategoryExpenses},
		{"ASSET-CASH", ledger.CategoryAssets},
		{"asset1", ledger.CategoryAssets},
		{"LIAB-1", ledger.CategoryLiabilities},
		{"EQ1", ledger.CategoryEquity},
		{"EQUITY100", ledger.CategoryEquity},
		{"REV2", ledger.CategoryRevenue},
		{"INC1", ledger.CategoryRevenue},
		{"EXP9", ledger.CategoryExpenses},
		{"9999", ledger.CategoryUnclassified},
		{"XYZ", ledger.CategoryUnclassified},
		{"", ledger.CategoryUnclassified},
		{"--", ledger.CategoryUnclassified},
	}
	for _, tc := range cases {
		if got := Classify(tc.code); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestBalanceSheetSubcategory(t *testing.T) {
	cases := []struct {
		category ledger.Category
		code     string
		name     string
		want     Subcategory
	}{
		{ledger.CategoryAssets, "1100", "Cash", SubcategoryCurrent},
		{ledger.CategoryAssets, "1500", "Prepaid Insurance", SubcategoryCurrent},
		{ledger.CategoryAssets, "1600", "Equipment", SubcategoryFixed},
		{ledger.CategoryAssets, "1900", "Accounts Receivable", SubcategoryCurrent}, // keyword fallback
		{ledger.CategoryLiabilities, "2100", "Accounts Payable", SubcategoryCurrent},
		{ledger.CategoryLiabilities, "2700", "Mortgage", SubcategoryLongTerm},
		{ledger.CategoryLiabilities, "2900", "Accrued Wages", SubcategoryCurrent}, // keyword fallback
		{ledger.CategoryEquity, "3100", "Capital", SubcategoryNone},
	}
	for _, tc := range cases {
		if got := balanceSheetSubcategory(tc.category, tc.code, tc.name); got != tc.want {
			t.Errorf("balanceSheetSubcategory(%q, %q, %q) = %q, want %q", tc.category, tc.code, tc.name, got, tc.want)
		}
	}
}

func TestProfitLossSubcategory(t *testing.T) {
	cases := []struct {
		category ledger.Category
		code     string
		name     string
		want     Subcategory
	}{
		{ledger.CategoryExpenses, "5100", "Cost of Goods Sold", SubcategoryCostOfSales},
		{ledger.CategoryExpenses, "5200", "Freight In", SubcategoryCostOfSales},
		{ledger.CategoryExpenses, "5300", "Rent", SubcategoryOperating},
		{ledger.CategoryExpenses, "5800", "Utilities", SubcategoryOperating},
		{ledger.CategoryExpenses, "5900", "Interest Expense", SubcategoryOtherExpenses},
		{ledger.CategoryExpenses, "5090", "Bank Charges", SubcategoryOtherExpenses}, // interior zeros skipped
		{ledger.CategoryExpenses, "5020", "Freight In", SubcategoryCostOfSales},
		{ledger.CategoryExpenses, "5", "Expenses", SubcategoryOperating}, // short code defaults
		{ledger.CategoryRevenue, "4100", "Sales", SubcategoryNone},
		{ledger.CategoryRevenue, "4900", "Interest Income", SubcategoryOtherIncome},
		{ledger.CategoryRevenue, "4090", "Dividend Income", SubcategoryOtherIncome},
		{ledger.CategoryRevenue, "4200", "Other Revenue", SubcategoryOtherIncome},
	}
	for _, tc := range cases {
		if got := profitLossSubcategory(tc.category, tc.code, tc.name); got != tc.want {
			t.Errorf("profitLossSubcategory(%q, %q, %q) = %q, want %q", tc.category, tc.code, tc.name, got, tc.want)
		}
	}
}
