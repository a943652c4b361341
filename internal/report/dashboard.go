package report

import "github.com/tallybook/tally/internal/ledger"

// DashboardTotals is the flat per-category view, minor units. NetIncome is
// revenue minus expenses over the same window.
type DashboardTotals struct {
	Assets      int64 `json:"assets_minor"`
	Liabilities int64 `json:"liabilities_minor"`
	Equity      int64 `json:"equity_minor"`
	Revenue     int64 `json:"revenue_minor"`
	Expenses    int64 `json:"expenses_minor"`
	NetIncome   int64 `json:"net_income_minor"`
}

// BuildDashboard sums classified rows per category, no subcategories.
func BuildDashboard(rows []ClassifiedRow) DashboardTotals {
	var out DashboardTotals
	for _, row := range rows {
		switch row.Category {
		case ledger.CategoryAssets:
			out.Assets += row.DisplayMinor
		case ledger.CategoryLiabilities:
			out.Liabilities += row.DisplayMinor
		case ledger.CategoryEquity:
			out.Equity += row.DisplayMinor
		case ledger.CategoryRevenue:
			out.Revenue += row.DisplayMinor
		case ledger.CategoryExpenses:
			out.Expenses += row.DisplayMinor
		}
	}
	out.NetIncome = out.Revenue - out.Expenses
	return out
}
