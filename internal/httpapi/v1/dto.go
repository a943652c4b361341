package v1

import (
	"time"

	"github.com/google/uuid"

	"github.com/tallybook/tally/internal/ledger"
	"github.com/tallybook/tally/internal/report"
)

// Accounts

type postAccountRequest struct {
	OrgID    uuid.UUID         `json:"org_id"`
	Code     string            `json:"code"`
	Name     string            `json:"name"`
	Category ledger.Category   `json:"category"`
	Level    int               `json:"level"`
	ParentID *uuid.UUID        `json:"parent_id,omitempty"`
	Postable bool              `json:"postable"`
	System   bool              `json:"system,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type updateAccountRequest struct {
	Name     *string           `json:"name,omitempty"`
	Postable *bool             `json:"postable,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type accountResponse struct {
	ID            uuid.UUID         `json:"id"`
	OrgID         uuid.UUID         `json:"org_id"`
	Code          string            `json:"code"`
	Name          string            `json:"name"`
	Category      ledger.Category   `json:"category"`
	NormalBalance ledger.Side       `json:"normal_balance"`
	Level         int               `json:"level"`
	ParentID      *uuid.UUID        `json:"parent_id,omitempty"`
	Postable      bool              `json:"postable"`
	Active        bool              `json:"active"`
	System        bool              `json:"system"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type listAccountsQuery struct {
	OrgID uuid.UUID
}

type nextCodeResponse struct {
	OrgID    uuid.UUID  `json:"org_id"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	Code     string     `json:"code"`
}

// Entries

type postEntryRequest struct {
	OrgID     uuid.UUID         `json:"org_id"`
	ProjectID *uuid.UUID        `json:"project_id,omitempty"`
	Date      time.Time         `json:"date"`
	Memo      string            `json:"memo"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Lines     []postEntryLine   `json:"lines"`
}

type postEntryLine struct {
	AccountID   uuid.UUID   `json:"account_id"`
	Side        ledger.Side `json:"side"`
	AmountMinor int64       `json:"amount_minor"`
}

type entryResponse struct {
	ID        uuid.UUID         `json:"id"`
	OrgID     uuid.UUID         `json:"org_id"`
	ProjectID *uuid.UUID        `json:"project_id,omitempty"`
	Date      time.Time         `json:"date"`
	Memo      string            `json:"memo"`
	Posted    bool              `json:"posted"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Lines     []lineResponse    `json:"lines"`
}

type lineResponse struct {
	ID          uuid.UUID   `json:"id"`
	AccountID   uuid.UUID   `json:"account_id"`
	Side        ledger.Side `json:"side"`
	AmountMinor int64       `json:"amount_minor"`
	Amount      string      `json:"amount"`
}

// listEntriesQuery holds validated query params for GET /entries.
type listEntriesQuery struct {
	OrgID uuid.UUID
}

// Reports

// reportQuery holds the validated window for the report endpoints.
type reportQuery struct {
	Filter ledger.EntryFilter
}

type reportRow struct {
	AccountID     uuid.UUID          `json:"account_id"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	Category      ledger.Category    `json:"category"`
	Subcategory   report.Subcategory `json:"subcategory,omitempty"`
	PLSubcategory report.Subcategory `json:"pl_subcategory,omitempty"`
	AmountMinor   int64              `json:"amount_minor"`
	DebitMinor    int64              `json:"total_debits_minor"`
	CreditMinor   int64              `json:"total_credits_minor"`
	SignedMinor   int64              `json:"signed_balance_minor"`
}

type balanceSheetResponse struct {
	OrgID   uuid.UUID                  `json:"org_id"`
	AsOf    *time.Time                 `json:"as_of,omitempty"`
	Rows    []reportRow                `json:"rows"`
	Summary report.BalanceSheetSummary `json:"summary"`
}

type profitLossResponse struct {
	OrgID   uuid.UUID                `json:"org_id"`
	From    *time.Time               `json:"from,omitempty"`
	To      *time.Time               `json:"to,omitempty"`
	Rows    []reportRow              `json:"rows"`
	Summary report.ProfitLossSummary `json:"summary"`
}

type dashboardResponse struct {
	OrgID  uuid.UUID              `json:"org_id"`
	From   *time.Time             `json:"from,omitempty"`
	To     *time.Time             `json:"to,omitempty"`
	Totals report.DashboardTotals `json:"totals"`
}

// Transaction validation

type validateTransactionRequest struct {
	OrgID           uuid.UUID `json:"org_id"`
	DebitAccountID  uuid.UUID `json:"debit_account_id"`
	CreditAccountID uuid.UUID `json:"credit_account_id"`
	AmountMinor     int64     `json:"amount_minor"`
	Description     string    `json:"description"`
	EntryDate       time.Time `json:"entry_date"`
}

func toReportRows(rows []report.ClassifiedRow) []reportRow {
	out := make([]reportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, reportRow{
			AccountID:     row.AccountID,
			Code:          row.Code,
			Name:          row.Name,
			Category:      row.Category,
			Subcategory:   row.Subcategory,
			PLSubcategory: row.PLSubcategory,
			AmountMinor:   row.DisplayMinor,
			DebitMinor:    row.TotalDebits,
			CreditMinor:   row.TotalCredits,
			SignedMinor:   row.SignedBalance,
		})
	}
	return out
}

func toAccountResponse(a ledger.Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		OrgID:         a.OrgID,
		Code:          a.Code,
		Name:          a.Name,
		Category:      a.Category,
		NormalBalance: a.NormalBalance(),
		Level:         a.Level,
		ParentID:      a.ParentID,
		Postable:      a.Postable,
		Active:        a.Active,
		System:        a.System,
		Metadata:      a.Metadata,
	}
}

func toEntryResponse(e ledger.JournalEntry) entryResponse {
	lines := make([]lineResponse, 0, len(e.Lines))
	for _, ln := range e.Lines {
		units, _ := ln.Amount.MinorUnits()
		lines = append(lines, lineResponse{
			ID:          ln.ID,
			AccountID:   ln.AccountID,
			Side:        ln.Side,
			AmountMinor: units,
			Amount:      ln.Amount.String(),
		})
	}
	return entryResponse{
		ID:        e.ID,
		OrgID:     e.OrgID,
		ProjectID: e.ProjectID,
		Date:      e.Date,
		Memo:      e.Memo,
		Posted:    e.Posted,
		Metadata:  e.Metadata,
		Lines:     lines,
	}
}
