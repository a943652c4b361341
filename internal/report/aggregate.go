// Package report turns ledger activity into consistent figures for the
// dashboard, balance sheet, and profit & loss views. All computation is
// synchronous and pure over an already-fetched in-memory snapshot; the only
// I/O is the single ActivitySource round-trip per request.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tallybook/tally/internal/coa"
	"github.com/tallybook/tally/internal/ledger"
)

// AccountActivity is the single normalized fetch-layer shape: per-account
// closing debit/credit sums for a filter window. Sources that hold raw lines
// fold them into this shape; sources that pre-aggregate return it directly.
type AccountActivity struct {
	AccountID uuid.UUID
	Code      string
	Debit     int64
	Credit    int64
	TxCount   int
}

// ActivitySource is the ledger fetch layer. One contract, consumed
// identically by every report builder.
type ActivitySource interface {
	ClosingActivity(ctx context.Context, f ledger.EntryFilter) ([]AccountActivity, error)
}

// SnapshotSource provides the chart-of-accounts snapshot for an org.
type SnapshotSource interface {
	Snapshot(ctx context.Context, orgID uuid.UUID) (*coa.Snapshot, error)
}

// AccountBalance is the per-account aggregate, in minor units. Derived, never
// persisted.
type AccountBalance struct {
	AccountID    uuid.UUID
	TotalDebits  int64
	TotalCredits int64
	// SignedBalance is debits-credits for debit-normal accounts and
	// credits-debits for credit-normal accounts.
	SignedBalance int64
}

// Gross returns total turnover on both sides.
func (b AccountBalance) Gross() int64 { return b.TotalDebits + b.TotalCredits }

// Aggregate folds activity into per-account balances using the registry
// snapshot to resolve each account's normal side. Activity for accounts
// missing from the snapshot is skipped without error; negative sums are
// treated as zero; accounts with no gross activity are excluded entirely.
func Aggregate(activity []AccountActivity, snap *coa.Snapshot) map[uuid.UUID]AccountBalance {
	out := make(map[uuid.UUID]AccountBalance, len(activity))
	for _, act := range activity {
		acc, ok := snap.Account(act.AccountID)
		if !ok {
			continue
		}
		debit, credit := act.Debit, act.Credit
		if debit < 0 {
			debit = 0
		}
		if credit < 0 {
			credit = 0
		}
		bal := out[acc.ID]
		bal.AccountID = acc.ID
		bal.TotalDebits += debit
		bal.TotalCredits += credit
		if acc.NormalBalance() == ledger.SideDebit {
			bal.SignedBalance = bal.TotalDebits - bal.TotalCredits
		} else {
			bal.SignedBalance = bal.TotalCredits - bal.TotalDebits
		}
		out[acc.ID] = bal
	}
	for id, bal := range out {
		if bal.Gross() == 0 {
			delete(out, id)
		}
	}
	return out
}

// ClassifiedRow is one statement line: an account with its category,
// subcategories, and display amount. DisplayMinor is the gross activity
// (debit+credit), not the netted signed balance; every builder displays the
// same figure.
type ClassifiedRow struct {
	AccountID     uuid.UUID
	Code          string
	Name          string
	Category      ledger.Category
	Subcategory   Subcategory
	PLSubcategory Subcategory
	DisplayMinor  int64
	TotalDebits   int64
	TotalCredits  int64
	SignedBalance int64
}

// Rows classifies aggregated balances into statement rows, sorted by account
// code. Unclassifiable accounts are dropped silently, never an error.
func Rows(balances map[uuid.UUID]AccountBalance, snap *coa.Snapshot) []ClassifiedRow {
	rows := make([]ClassifiedRow, 0, len(balances))
	for id, bal := range balances {
		acc, ok := snap.Account(id)
		if !ok {
			continue
		}
		category := Classify(acc.Code)
		if category == ledger.CategoryUnclassified {
			continue
		}
		rows = append(rows, ClassifiedRow{
			AccountID:     acc.ID,
			Code:          acc.Code,
			Name:          acc.Name,
			Category:      category,
			Subcategory:   balanceSheetSubcategory(category, acc.Code, acc.Name),
			PLSubcategory: profitLossSubcategory(category, acc.Code, acc.Name),
			DisplayMinor:  bal.Gross(),
			TotalDebits:   bal.TotalDebits,
			TotalCredits:  bal.TotalCredits,
			SignedBalance: bal.SignedBalance,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
	return rows
}

// Service runs report builds against a fetch layer and a snapshot cache.
// Requests are independent; there is no shared mutable state between
// concurrent builds and no internal retry. Fetch failures propagate with the
// filter attached for diagnosis.
type Service struct {
	src       ActivitySource
	snapshots SnapshotSource
}

// NewService wires a report service.
func NewService(src ActivitySource, snapshots SnapshotSource) *Service {
	return &Service{src: src, snapshots: snapshots}
}

func (s *Service) rows(ctx context.Context, f ledger.EntryFilter) ([]ClassifiedRow, error) {
	snap, err := s.snapshots.Snapshot(ctx, f.OrgID)
	if err != nil {
		return nil, fmt.Errorf("load accounts for org %s: %w", f.OrgID, err)
	}
	activity, err := s.src.ClosingActivity(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("fetch ledger activity (org=%s from=%s to=%s posted_only=%t): %w",
			f.OrgID, fmtTimePtr(f.From), fmtTimePtr(f.To), f.PostedOnly, err)
	}
	return Rows(Aggregate(activity, snap), snap), nil
}

// BalanceSheet builds the as-of balance sheet: From is forced nil so totals
// accumulate since ledger inception.
func (s *Service) BalanceSheet(ctx context.Context, f ledger.EntryFilter) (BalanceSheetResult, error) {
	f.From = nil
	rows, err := s.rows(ctx, f)
	if err != nil {
		return BalanceSheetResult{}, err
	}
	return BuildBalanceSheet(rows), nil
}

// ProfitLoss builds the period P&L.
func (s *Service) ProfitLoss(ctx context.Context, f ledger.EntryFilter) (ProfitLossResult, error) {
	rows, err := s.rows(ctx, f)
	if err != nil {
		return ProfitLossResult{}, err
	}
	return BuildProfitLoss(rows), nil
}

// Dashboard builds flat category totals.
func (s *Service) Dashboard(ctx context.Context, f ledger.EntryFilter) (DashboardTotals, error) {
	rows, err := s.rows(ctx, f)
	if err != nil {
		return DashboardTotals{}, err
	}
	return BuildDashboard(rows), nil
}

func fmtTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}
