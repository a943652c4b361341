package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/tallybook/tally/internal/meta"
)

// Side represents the accounting position of a journal line.
type Side string

const (
	// SideDebit records a value on the debit side of an account.
	SideDebit Side = "debit"
	// SideCredit records a value on the credit side of an account.
	SideCredit Side = "credit"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideDebit {
		return SideCredit
	}
	return SideDebit
}

// Category enumerates the five major financial-statement categories.
type Category string

const (
	CategoryAssets      Category = "assets"
	CategoryLiabilities Category = "liabilities"
	CategoryEquity      Category = "equity"
	CategoryRevenue     Category = "revenue"
	CategoryExpenses    Category = "expenses"
	// CategoryUnclassified marks accounts that no statement will include.
	CategoryUnclassified Category = "unclassified"
)

// Categories lists the statement categories in presentation order.
var Categories = []Category{
	CategoryAssets,
	CategoryLiabilities,
	CategoryEquity,
	CategoryRevenue,
	CategoryExpenses,
}

// Valid reports whether c is one of the five statement categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryAssets, CategoryLiabilities, CategoryEquity, CategoryRevenue, CategoryExpenses:
		return true
	}
	return false
}

// NormalSide returns the side on which balances of this category
// conventionally increase. Assets and expenses grow on the debit side,
// everything else on the credit side.
func (c Category) NormalSide() Side {
	switch c {
	case CategoryAssets, CategoryExpenses:
		return SideDebit
	default:
		return SideCredit
	}
}

// Org is the organization scope that owns a chart of accounts and its journal.
type Org struct {
	ID       uuid.UUID
	Name     string
	Currency string
}

// Account is a node in an org's chart of accounts.
//
// NormalBalance is deliberately not a stored field: it is derived from
// Category so the two can never contradict each other.
type Account struct {
	ID    uuid.UUID
	OrgID uuid.UUID
	// Code is the hierarchical account code, dash- or digit-concatenated
	// (e.g. "1100", "5-2", "5200").
	Code     string
	Name     string
	Category Category
	// Level is the depth in the account tree; root accounts are level 1.
	Level    int
	ParentID *uuid.UUID
	// Postable marks leaf accounts that journal lines may reference.
	Postable bool
	Active   bool
	// System marks reserved accounts (e.g. retained earnings) that cannot be
	// edited or deactivated.
	System   bool
	Metadata meta.Metadata `json:"metadata,omitempty"`
}

// NormalBalance returns the account's conventional balance side.
func (a Account) NormalBalance() Side { return a.Category.NormalSide() }

// JournalEntry is a balanced set of journal lines for an org.
// Once Posted is set the entry is final and must not be mutated.
type JournalEntry struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	ProjectID *uuid.UUID
	Date      time.Time
	Memo      string
	Posted    bool
	Metadata  meta.Metadata `json:"metadata,omitempty"`
	Lines     []JournalLine
}

// JournalLine carries a single-sided amount against an account. A line is
// either a debit or a credit, never both; the amount is always positive.
type JournalLine struct {
	ID        uuid.UUID
	EntryID   uuid.UUID
	AccountID uuid.UUID
	Side      Side
	Amount    money.Amount
}

// DebitMinor returns the line amount in minor units if this is a debit line,
// else 0.
func (l JournalLine) DebitMinor() int64 {
	if l.Side != SideDebit {
		return 0
	}
	units, _ := l.Amount.MinorUnits()
	return units
}

// CreditMinor returns the line amount in minor units if this is a credit
// line, else 0.
func (l JournalLine) CreditMinor() int64 {
	if l.Side != SideCredit {
		return 0
	}
	units, _ := l.Amount.MinorUnits()
	return units
}

// EntryFilter scopes a ledger fetch. Nil times mean unbounded on that end.
type EntryFilter struct {
	OrgID      uuid.UUID
	ProjectID  *uuid.UUID
	From       *time.Time
	To         *time.Time
	PostedOnly bool
}

// Matches reports whether the entry falls inside the filter window.
func (f EntryFilter) Matches(e JournalEntry) bool {
	if e.OrgID != f.OrgID {
		return false
	}
	if f.PostedOnly && !e.Posted {
		return false
	}
	if f.ProjectID != nil && (e.ProjectID == nil || *e.ProjectID != *f.ProjectID) {
		return false
	}
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	return true
}
