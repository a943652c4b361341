// Package validate screens proposed transactions for hard double-entry
// errors and heuristic "backwards entry" warnings. Findings are structured
// data, never thrown: errors block save, warnings are advisory and require
// explicit user confirmation. False positives on warnings are acceptable by
// design; false negatives on hard rules are not.
package validate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tallybook/tally/internal/coa"
	"github.com/tallybook/tally/internal/ledger"
	"github.com/tallybook/tally/internal/report"
)

// Kind separates blocking findings from advisory ones.
type Kind string

const (
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

// Finding is a single validation outcome.
type Finding struct {
	Kind    Kind              `json:"kind"`
	Field   string            `json:"field"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Result is the full validator output. Valid is false only when error-kind
// findings exist; warnings alone never reject a transaction.
type Result struct {
	Valid    bool      `json:"is_valid"`
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// ProposedTransaction is the simple two-account form the entry UI submits.
type ProposedTransaction struct {
	OrgID           uuid.UUID
	DebitAccountID  uuid.UUID
	CreditAccountID uuid.UUID
	AmountMinor     int64
	Description     string
	EntryDate       time.Time
}

// DefaultLargeAmountMinor is the advisory large-amount threshold:
// 100,000 currency units expressed in minor units.
const DefaultLargeAmountMinor int64 = 100_000_00

// Validator checks proposed transactions against a chart-of-accounts
// snapshot. The snapshot comes from the TTL cache, so concurrent calls may
// observe a stale-but-bounded view — acceptable for advisory output.
type Validator struct {
	snapshots     report.SnapshotSource
	largeAmtMinor int64
	warningRules  []warningRule
}

// New builds a validator. largeAmountMinor <= 0 selects the default
// threshold.
func New(snapshots report.SnapshotSource, largeAmountMinor int64) *Validator {
	if largeAmountMinor <= 0 {
		largeAmountMinor = DefaultLargeAmountMinor
	}
	return &Validator{
		snapshots:     snapshots,
		largeAmtMinor: largeAmountMinor,
		warningRules:  defaultWarningRules,
	}
}

// Check screens tx. Registry fetch failures propagate as errors; everything
// the validator itself decides comes back as findings.
func (v *Validator) Check(ctx context.Context, tx ProposedTransaction) (Result, error) {
	snap, err := v.snapshots.Snapshot(ctx, tx.OrgID)
	if err != nil {
		return Result{}, err
	}
	res := Result{Errors: []Finding{}, Warnings: []Finding{}}

	debit, debitOK := checkAccount(&res, snap, tx.DebitAccountID, "debit_account_id")
	credit, creditOK := checkAccount(&res, snap, tx.CreditAccountID, "credit_account_id")
	if tx.AmountMinor <= 0 {
		res.Errors = append(res.Errors, Finding{
			Kind:    KindError,
			Field:   "amount",
			Message: "amount must be greater than zero",
		})
	}

	if debitOK && creditOK {
		rc := ruleContext{
			debit:         debit,
			credit:        credit,
			amountMinor:   tx.AmountMinor,
			description:   lower(tx.Description),
			largeAmtMinor: v.largeAmtMinor,
		}
		for _, rule := range v.warningRules {
			if msg, matched := rule.match(rc); matched {
				res.Warnings = append(res.Warnings, Finding{
					Kind:    KindWarning,
					Field:   rule.field,
					Message: msg,
					Details: map[string]string{"rule": rule.code},
				})
			}
		}
	}

	res.Valid = len(res.Errors) == 0
	return res, nil
}

// checkAccount appends hard-error findings for a missing, inactive, or
// non-postable account and returns the account when it is usable for
// warning rules.
func checkAccount(res *Result, snap *coa.Snapshot, id uuid.UUID, field string) (ledger.Account, bool) {
	acc, ok := snap.Account(id)
	if !ok {
		res.Errors = append(res.Errors, Finding{
			Kind:    KindError,
			Field:   field,
			Message: "account not found",
			Details: map[string]string{"account_id": id.String()},
		})
		return ledger.Account{}, false
	}
	if !acc.Active {
		res.Errors = append(res.Errors, Finding{
			Kind:    KindError,
			Field:   field,
			Message: "account is inactive",
			Details: map[string]string{"account_id": id.String(), "code": acc.Code},
		})
		return acc, false
	}
	if !acc.Postable {
		res.Errors = append(res.Errors, Finding{
			Kind:    KindError,
			Field:   field,
			Message: "account is not postable",
			Details: map[string]string{"account_id": id.String(), "code": acc.Code},
		})
		return acc, false
	}
	return acc, true
}
