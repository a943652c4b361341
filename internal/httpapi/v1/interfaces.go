package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/tallybook/tally/internal/ledger"
)

// OrgReader abstracts org lookups, used to resolve the entry currency.
type OrgReader interface {
	GetOrg(ctx context.Context, orgID uuid.UUID) (ledger.Org, error)
}

// ReadyChecker is optionally implemented by stores to indicate readiness.
type ReadyChecker interface {
	Ready(ctx context.Context) error
}
