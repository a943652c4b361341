package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/tallybook/tally/internal/ledger"
)

// SeedDev creates a demo org with a small standard chart of accounts for
// local development and integration tests. It is idempotent per call only in
// the sense that each call creates a fresh org.
func (s *Store) SeedDev(ctx context.Context) (ledger.Org, []ledger.Account, error) {
	org := ledger.Org{ID: uuid.New(), Name: "Demo Books", Currency: "USD"}
	if _, err := s.CreateOrg(ctx, org); err != nil {
		return ledger.Org{}, nil, err
	}
	chart := []ledger.Account{
		{Code: "1100", Name: "Cash", Category: ledger.CategoryAssets},
		{Code: "1300", Name: "Accounts Receivable", Category: ledger.CategoryAssets},
		{Code: "1600", Name: "Equipment", Category: ledger.CategoryAssets},
		{Code: "2100", Name: "Accounts Payable", Category: ledger.CategoryLiabilities},
		{Code: "3100", Name: "Owner Capital", Category: ledger.CategoryEquity, System: true},
		{Code: "4100", Name: "Sales Revenue", Category: ledger.CategoryRevenue},
		{Code: "5100", Name: "Cost of Goods Sold", Category: ledger.CategoryExpenses},
		{Code: "5300", Name: "Rent Expense", Category: ledger.CategoryExpenses},
	}
	out := make([]ledger.Account, 0, len(chart))
	for _, a := range chart {
		a.ID = uuid.New()
		a.OrgID = org.ID
		a.Level = 1
		a.Postable = true
		a.Active = true
		created, err := s.CreateAccount(ctx, a)
		if err != nil {
			return ledger.Org{}, nil, err
		}
		out = append(out, created)
	}
	return org, out, nil
}
