package coa

import (
	"strings"

	"github.com/tallybook/tally/internal/ledger"
)

// CategoryDef describes the coding convention for one statement category.
type CategoryDef struct {
	Category ledger.Category `json:"category"`
	Label    string          `json:"label"`
	// Digit is the leading code digit conventionally assigned to the category.
	Digit byte `json:"digit"`
	// Prefixes are alphabetic code prefixes recognized as a fallback when an
	// account code does not start with a digit.
	Prefixes []string `json:"prefixes"`
}

var curated = []CategoryDef{
	{Category: ledger.CategoryAssets, Label: "Assets", Digit: '1', Prefixes: []string{"ASSET"}},
	{Category: ledger.CategoryLiabilities, Label: "Liabilities", Digit: '2', Prefixes: []string{"LIAB"}},
	{Category: ledger.CategoryEquity, Label: "Equity", Digit: '3', Prefixes: []string{"EQ", "EQUITY"}},
	{Category: ledger.CategoryRevenue, Label: "Revenue", Digit: '4', Prefixes: []string{"REV", "INC"}},
	{Category: ledger.CategoryExpenses, Label: "Expenses", Digit: '5', Prefixes: []string{"EXP"}},
}

// Definitions returns the curated category definitions in statement order.
func Definitions() []CategoryDef { return curated }

// CategoryForCode maps a normalized account code to a statement category.
// The first character decides: a known digit wins, then alphabetic prefixes.
// Codes that match nothing are unclassified and excluded from every statement.
func CategoryForCode(normalized string) ledger.Category {
	if normalized == "" {
		return ledger.CategoryUnclassified
	}
	for _, def := range curated {
		if normalized[0] == def.Digit {
			return def.Category
		}
	}
	upper := strings.ToUpper(normalized)
	// Longer prefixes first so "EQUITY" is not shadowed by "EQ".
	best := ledger.CategoryUnclassified
	bestLen := 0
	for _, def := range curated {
		for _, p := range def.Prefixes {
			if strings.HasPrefix(upper, p) && len(p) > bestLen {
				best = def.Category
				bestLen = len(p)
			}
		}
	}
	return best
}

// Keyword tables shared by the statement classifier and the transaction
// validator. All matching is done on lowercased text.

// CurrentAssetKeywords mark asset accounts as current when the two-digit code
// prefix is inconclusive.
var CurrentAssetKeywords = []string{"cash", "receivable", "inventory", "prepaid"}

// CurrentLiabilityKeywords mark liability accounts as current.
var CurrentLiabilityKeywords = []string{"payable", "accrued", "short-term", "short term"}

// ReceiptKeywords suggest money coming in; a revenue account debited against
// such a description is likely a backwards entry.
var ReceiptKeywords = []string{"receipt", "received", "collect", "deposit", "refund from"}

// PaymentKeywords suggest money going out; an expense account credited against
// such a description is likely a backwards entry.
var PaymentKeywords = []string{"payment", "paid", "pay ", "purchase", "settle", "disburse"}

// ContainsAny reports whether lowered contains any of the keywords.
func ContainsAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
