package report

import "github.com/tallybook/tally/internal/ledger"

// BalanceSheetSummary carries the section totals in minor units.
//
// BalanceCheck = assets - (liabilities + equity). It is a health signal, not
// an enforced invariant: an unbalanced ledger is a valid, if unusual, input
// state the report still renders.
type BalanceSheetSummary struct {
	TotalAssets              int64 `json:"total_assets_minor"`
	TotalCurrentAssets       int64 `json:"total_current_assets_minor"`
	TotalFixedAssets         int64 `json:"total_fixed_assets_minor"`
	TotalLiabilities         int64 `json:"total_liabilities_minor"`
	TotalCurrentLiabilities  int64 `json:"total_current_liabilities_minor"`
	TotalLongTermLiabilities int64 `json:"total_long_term_liabilities_minor"`
	TotalEquity              int64 `json:"total_equity_minor"`
	NetWorth                 int64 `json:"net_worth_minor"`
	BalanceCheck             int64 `json:"balance_check_minor"`
}

// BalanceSheetResult is the as-of statement: asset, liability, and equity
// rows plus section totals.
type BalanceSheetResult struct {
	Rows    []ClassifiedRow
	Summary BalanceSheetSummary
}

// BuildBalanceSheet keeps assets/liabilities/equity rows and totals them.
func BuildBalanceSheet(rows []ClassifiedRow) BalanceSheetResult {
	out := BalanceSheetResult{Rows: make([]ClassifiedRow, 0, len(rows))}
	sum := &out.Summary
	for _, row := range rows {
		switch row.Category {
		case ledger.CategoryAssets:
			sum.TotalAssets += row.DisplayMinor
			if row.Subcategory == SubcategoryCurrent {
				sum.TotalCurrentAssets += row.DisplayMinor
			} else {
				sum.TotalFixedAssets += row.DisplayMinor
			}
		case ledger.CategoryLiabilities:
			sum.TotalLiabilities += row.DisplayMinor
			if row.Subcategory == SubcategoryCurrent {
				sum.TotalCurrentLiabilities += row.DisplayMinor
			} else {
				sum.TotalLongTermLiabilities += row.DisplayMinor
			}
		case ledger.CategoryEquity:
			sum.TotalEquity += row.DisplayMinor
		default:
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	sum.NetWorth = sum.TotalAssets - sum.TotalLiabilities
	sum.BalanceCheck = sum.TotalAssets - (sum.TotalLiabilities + sum.TotalEquity)
	return out
}
