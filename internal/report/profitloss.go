package report

import "github.com/tallybook/tally/internal/ledger"

// ProfitLossSummary carries the period totals in minor units, with margins
// as percentages. Margins are exactly 0 when revenue is 0, never NaN or Inf.
// TotalRevenue is operating revenue only; other income enters once, below
// operating income, so net income matches the dashboard's revenue minus
// expenses over the same rows.
type ProfitLossSummary struct {
	TotalRevenue       int64   `json:"total_revenue_minor"`
	OtherIncome        int64   `json:"other_income_minor"`
	CostOfSales        int64   `json:"cost_of_sales_minor"`
	OperatingExpenses  int64   `json:"operating_expenses_minor"`
	OtherExpenses      int64   `json:"other_expenses_minor"`
	GrossProfit        int64   `json:"gross_profit_minor"`
	OperatingIncome    int64   `json:"operating_income_minor"`
	NetIncomeBeforeTax int64   `json:"net_income_before_tax_minor"`
	GrossMarginPct     float64 `json:"gross_margin_percent"`
	OperatingMarginPct float64 `json:"operating_margin_percent"`
	NetMarginPct       float64 `json:"net_margin_percent"`
}

// ProfitLossResult is the period statement: revenue and expense rows plus
// derived profitability figures.
type ProfitLossResult struct {
	Rows    []ClassifiedRow
	Summary ProfitLossSummary
}

// BuildProfitLoss keeps revenue/expense rows and derives profit figures.
func BuildProfitLoss(rows []ClassifiedRow) ProfitLossResult {
	out := ProfitLossResult{Rows: make([]ClassifiedRow, 0, len(rows))}
	sum := &out.Summary
	for _, row := range rows {
		switch row.Category {
		case ledger.CategoryRevenue:
			if row.PLSubcategory == SubcategoryOtherIncome {
				sum.OtherIncome += row.DisplayMinor
			} else {
				sum.TotalRevenue += row.DisplayMinor
			}
		case ledger.CategoryExpenses:
			switch row.PLSubcategory {
			case SubcategoryCostOfSales:
				sum.CostOfSales += row.DisplayMinor
			case SubcategoryOtherExpenses:
				sum.OtherExpenses += row.DisplayMinor
			default:
				sum.OperatingExpenses += row.DisplayMinor
			}
		default:
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	sum.GrossProfit = sum.TotalRevenue - sum.CostOfSales
	sum.OperatingIncome = sum.GrossProfit - sum.OperatingExpenses
	sum.NetIncomeBeforeTax = sum.OperatingIncome + sum.OtherIncome - sum.OtherExpenses
	sum.GrossMarginPct = percentOf(sum.GrossProfit, sum.TotalRevenue)
	sum.OperatingMarginPct = percentOf(sum.OperatingIncome, sum.TotalRevenue)
	sum.NetMarginPct = percentOf(sum.NetIncomeBeforeTax, sum.TotalRevenue)
	return out
}

// percentOf guards division by zero, returning exactly 0 on a zero base.
func percentOf(metric, base int64) float64 {
	if base == 0 {
		return 0
	}
	return float64(metric) / float64(base) * 100
}
