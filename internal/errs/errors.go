package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound  = errors.New("not_found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
	ErrInvalid   = errors.New("invalid")
	// ErrUnprocessable is used for semantic validation failures (HTTP 422)
	ErrUnprocessable = errors.New("unprocessable")
	// ErrSystemAccount indicates a system account cannot be modified/deactivated
	ErrSystemAccount = errors.New("system_account")
	// ErrImmutable indicates an attempt to change immutable fields
	ErrImmutable = errors.New("immutable")
	// ErrPosted indicates an attempt to mutate a posted journal entry
	ErrPosted = errors.New("entry_posted")
)

// Journal entry validation sentinels, wrapped by the journal service so the
// HTTP layer can map them to stable error codes.
var (
	ErrTooFewLines     = errors.New("at least 2 lines")
	ErrInvalidAmount   = errors.New("amount must be > 0")
	ErrUnbalancedEntry = errors.New("sum(debits) must equal sum(credits)")
	ErrInvalidSide     = errors.New("side must be debit or credit")
	ErrNotPostable     = errors.New("account is not postable")
)
