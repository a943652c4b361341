package validate

import (
	"fmt"
	"strings"

	"github.com/tallybook/tally/internal/coa"
	"github.com/tallybook/tally/internal/ledger"
)

// ruleContext is the shared view every warning rule evaluates against.
type ruleContext struct {
	debit         ledger.Account
	credit        ledger.Account
	amountMinor   int64
	description   string // lowercased
	largeAmtMinor int64
}

// warningRule is one independent heuristic. Rules are evaluated in order and
// each may contribute at most one finding; adding a heuristic means adding a
// value here, not editing a monolithic function.
type warningRule struct {
	code  string
	field string
	match func(rc ruleContext) (string, bool)
}

var defaultWarningRules = []warningRule{
	{
		code:  "revenue_debited_on_receipt",
		field: "debit_account_id",
		match: func(rc ruleContext) (string, bool) {
			if rc.debit.Category == ledger.CategoryRevenue && coa.ContainsAny(rc.description, coa.ReceiptKeywords) {
				return fmt.Sprintf("description suggests money received, but revenue account %s is debited; the entry looks backwards", rc.debit.Code), true
			}
			return "", false
		},
	},
	{
		code:  "expense_credited_on_payment",
		field: "credit_account_id",
		match: func(rc ruleContext) (string, bool) {
			if rc.credit.Category == ledger.CategoryExpenses && coa.ContainsAny(rc.description, coa.PaymentKeywords) {
				return fmt.Sprintf("description suggests a payment, but expense account %s is credited; the entry looks backwards", rc.credit.Code), true
			}
			return "", false
		},
	},
	{
		code:  "revenue_debited",
		field: "debit_account_id",
		match: func(rc ruleContext) (string, bool) {
			if rc.debit.Category == ledger.CategoryRevenue {
				return fmt.Sprintf("revenue account %s is being debited against its normal balance", rc.debit.Code), true
			}
			return "", false
		},
	},
	{
		code:  "expense_credited",
		field: "credit_account_id",
		match: func(rc ruleContext) (string, bool) {
			if rc.credit.Category == ledger.CategoryExpenses {
				return fmt.Sprintf("expense account %s is being credited against its normal balance", rc.credit.Code), true
			}
			return "", false
		},
	},
	{
		code:  "same_category",
		field: "credit_account_id",
		match: func(rc ruleContext) (string, bool) {
			if rc.debit.Category == rc.credit.Category {
				return fmt.Sprintf("both accounts are %s; double-check the transaction is not a misclassification", rc.debit.Category), true
			}
			return "", false
		},
	},
	{
		code:  "same_normal_side",
		field: "credit_account_id",
		match: func(rc ruleContext) (string, bool) {
			if rc.debit.NormalBalance() == rc.credit.NormalBalance() {
				return fmt.Sprintf("both accounts normally carry a %s balance", rc.debit.NormalBalance()), true
			}
			return "", false
		},
	},
	{
		code:  "large_amount",
		field: "amount",
		match: func(rc ruleContext) (string, bool) {
			if rc.amountMinor > rc.largeAmtMinor {
				return "amount exceeds the large-amount threshold; please confirm", true
			}
			return "", false
		},
	},
}

func lower(s string) string { return strings.ToLower(s) }
