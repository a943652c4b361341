package report

import (
	"strings"

	"github.com/tallybook/tally/internal/coa"
	"github.com/tallybook/tally/internal/ledger"
)

// Subcategory refines a statement category for presentation.
type Subcategory string

const (
	SubcategoryNone Subcategory = ""
	// Balance sheet
	SubcategoryCurrent  Subcategory = "current"
	SubcategoryFixed    Subcategory = "fixed"
	SubcategoryLongTerm Subcategory = "long-term"
	// Profit & loss
	SubcategoryCostOfSales   Subcategory = "cost_of_sales"
	SubcategoryOperating     Subcategory = "operating"
	SubcategoryOtherExpenses Subcategory = "other_expenses"
	SubcategoryOtherIncome   Subcategory = "other_income"
)

// Classify maps an account code to its statement category. This single
// implementation is shared by every report builder; it is what keeps the
// dashboard, balance sheet, and P&L from disagreeing on the same data.
func Classify(code string) ledger.Category {
	return coa.CategoryForCode(normalizeCode(code))
}

// normalizeCode strips all non-alphanumeric characters.
func normalizeCode(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// twoDigitPrefix returns the significant two-digit prefix of a normalized
// code: the leading category digit plus the first nonzero digit after it, so
// "5300" and "53" both read as 53 and "5090" reads as 59. Interior zeros are
// placeholders, not subtype information. Returns -1 when the code does not
// start with two digits.
func twoDigitPrefix(normalized string) int {
	if len(normalized) < 2 {
		return -1
	}
	hi := normalized[0]
	if hi < '0' || hi > '9' || normalized[1] < '0' || normalized[1] > '9' {
		return -1
	}
	lo := byte('0')
	for i := 1; i < len(normalized); i++ {
		c := normalized[i]
		if c < '0' || c > '9' {
			break
		}
		if c != '0' {
			lo = c
			break
		}
	}
	return int(hi-'0')*10 + int(lo-'0')
}

// balanceSheetSubcategory splits assets into current/fixed and liabilities
// into current/long-term, by two-digit code prefix first and name keywords as
// a fallback.
func balanceSheetSubcategory(category ledger.Category, code, name string) Subcategory {
	prefix := twoDigitPrefix(normalizeCode(code))
	lowered := strings.ToLower(name)
	switch category {
	case ledger.CategoryAssets:
		if (prefix >= 11 && prefix <= 15) || coa.ContainsAny(lowered, coa.CurrentAssetKeywords) {
			return SubcategoryCurrent
		}
		return SubcategoryFixed
	case ledger.CategoryLiabilities:
		if (prefix >= 21 && prefix <= 25) || coa.ContainsAny(lowered, coa.CurrentLiabilityKeywords) {
			return SubcategoryCurrent
		}
		return SubcategoryLongTerm
	}
	return SubcategoryNone
}

// profitLossSubcategory assigns P&L subtypes. Expenses split by two-digit
// prefix: 50-52 cost of sales, 53-58 operating, 59 other; anything else
// defaults to operating. Revenue with prefix 49 or an "other" name is other
// income.
func profitLossSubcategory(category ledger.Category, code, name string) Subcategory {
	prefix := twoDigitPrefix(normalizeCode(code))
	switch category {
	case ledger.CategoryExpenses:
		switch {
		case prefix >= 50 && prefix <= 52:
			return SubcategoryCostOfSales
		case prefix == 59:
			return SubcategoryOtherExpenses
		default:
			return SubcategoryOperating
		}
	case ledger.CategoryRevenue:
		if prefix == 49 || strings.Contains(strings.ToLower(name), "other") {
			return SubcategoryOtherIncome
		}
		return SubcategoryNone
	}
	return SubcategoryNone
}
