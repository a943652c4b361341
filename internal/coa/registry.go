// Package coa implements the chart-of-accounts registry: account rules
// (derived normal balance, postable leaves, soft-deletes, per-org unique
// codes), a TTL snapshot cache, the next-code generator, and the curated
// category dictionary.
package coa

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/tallybook/tally/internal/errs"
	"github.com/tallybook/tally/internal/ledger"
)

// Repo defines read operations needed by the registry.
type Repo interface {
	ListAccounts(ctx context.Context, orgID uuid.UUID) ([]ledger.Account, error)
	GetAccount(ctx context.Context, orgID, accountID uuid.UUID) (ledger.Account, error)
}

// Writer defines write operations needed by the registry.
type Writer interface {
	CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
}

// Service exposes account registry operations.
type Service interface {
	ValidateCreate(a ledger.Account) error
	Create(ctx context.Context, a ledger.Account) (ledger.Account, error)
	List(ctx context.Context, orgID uuid.UUID) ([]ledger.Account, error)
	// Get reads one account straight from the store, bypassing the snapshot
	// cache. Mutation paths use it so a stale snapshot cannot become the base
	// of a read-modify-write.
	Get(ctx context.Context, orgID, accountID uuid.UUID) (ledger.Account, error)
	Update(ctx context.Context, a ledger.Account) (ledger.Account, error)
	Deactivate(ctx context.Context, orgID, accountID uuid.UUID) error
	// ProposeCode returns the next sibling code under the given parent
	// (nil parent means root level).
	ProposeCode(ctx context.Context, orgID uuid.UUID, parentID *uuid.UUID) (string, error)
}

type service struct {
	repo      Repo
	writer    Writer
	snapshots *SnapshotCache
}

// New constructs the registry service. Mutations invalidate the snapshot
// cache so validators and report builders observe them within one fetch.
func New(repo Repo, writer Writer, snapshots *SnapshotCache) Service {
	return &service{repo: repo, writer: writer, snapshots: snapshots}
}

// ErrCodeExists indicates an account with the same code already exists for
// the org.
var ErrCodeExists = errors.New("account code already exists for org")

var reCode = regexp.MustCompile(`^[A-Za-z0-9]+(-[0-9]+)*$`)

// ValidCode reports whether code is a well-formed hierarchical account code.
func ValidCode(code string) bool { return reCode.MatchString(code) }

func (s *service) ValidateCreate(a ledger.Account) error {
	if a.OrgID == uuid.Nil {
		return errs.ErrInvalid
	}
	if a.Name == "" {
		return errors.New("name is required")
	}
	if a.Code == "" || !ValidCode(a.Code) {
		return errors.New("invalid account code")
	}
	if !a.Category.Valid() {
		return errors.New("invalid account category")
	}
	if a.Level < 1 {
		return errors.New("level must be >= 1")
	}
	if a.Level == 1 && a.ParentID != nil {
		return errors.New("level 1 accounts cannot have a parent")
	}
	if a.Level > 1 && a.ParentID == nil {
		return errors.New("parent_id is required below level 1")
	}
	return nil
}

func (s *service) Create(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	if err := s.ValidateCreate(a); err != nil {
		return ledger.Account{}, err
	}
	existing, err := s.repo.ListAccounts(ctx, a.OrgID)
	if err != nil {
		return ledger.Account{}, err
	}
	for _, other := range existing {
		if strings.EqualFold(other.Code, a.Code) {
			return ledger.Account{}, ErrCodeExists
		}
	}
	if a.ParentID != nil {
		parent, err := s.repo.GetAccount(ctx, a.OrgID, *a.ParentID)
		if err != nil {
			return ledger.Account{}, errors.New("parent account not found")
		}
		if parent.Category != a.Category {
			return ledger.Account{}, errors.New("child category must match parent")
		}
	}
	created, err := s.writer.CreateAccount(ctx, ledger.Account{
		ID:       uuid.New(),
		OrgID:    a.OrgID,
		Code:     a.Code,
		Name:     a.Name,
		Category: a.Category,
		Level:    a.Level,
		ParentID: a.ParentID,
		Postable: a.Postable,
		Active:   true,
		System:   a.System,
		Metadata: a.Metadata,
	})
	if err != nil {
		return ledger.Account{}, err
	}
	s.snapshots.Invalidate(a.OrgID)
	return created, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID) ([]ledger.Account, error) {
	if orgID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.ListAccounts(ctx, orgID)
}

func (s *service) Get(ctx context.Context, orgID, accountID uuid.UUID) (ledger.Account, error) {
	if orgID == uuid.Nil || accountID == uuid.Nil {
		return ledger.Account{}, errs.ErrInvalid
	}
	return s.repo.GetAccount(ctx, orgID, accountID)
}

// Update applies allowed changes to name, postable flag, and metadata.
// Code, category, and level are immutable once created.
func (s *service) Update(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	if a.OrgID == uuid.Nil || a.ID == uuid.Nil {
		return ledger.Account{}, errs.ErrInvalid
	}
	current, err := s.repo.GetAccount(ctx, a.OrgID, a.ID)
	if err != nil {
		return ledger.Account{}, err
	}
	if current.System {
		return ledger.Account{}, errs.ErrSystemAccount
	}
	if current.Code != a.Code || current.Category != a.Category || current.Level != a.Level {
		return ledger.Account{}, errs.ErrImmutable
	}
	updated, err := s.writer.UpdateAccount(ctx, a)
	if err != nil {
		return ledger.Account{}, err
	}
	s.snapshots.Invalidate(a.OrgID)
	return updated, nil
}

// Deactivate sets Active=false (soft delete). System accounts are protected.
func (s *service) Deactivate(ctx context.Context, orgID, accountID uuid.UUID) error {
	if orgID == uuid.Nil || accountID == uuid.Nil {
		return errs.ErrInvalid
	}
	acc, err := s.repo.GetAccount(ctx, orgID, accountID)
	if err != nil {
		return err
	}
	if acc.System {
		return errs.ErrSystemAccount
	}
	acc.Active = false
	if _, err := s.writer.UpdateAccount(ctx, acc); err != nil {
		return err
	}
	s.snapshots.Invalidate(orgID)
	return nil
}

func (s *service) ProposeCode(ctx context.Context, orgID uuid.UUID, parentID *uuid.UUID) (string, error) {
	if orgID == uuid.Nil {
		return "", errs.ErrInvalid
	}
	snap, err := s.snapshots.Snapshot(ctx, orgID)
	if err != nil {
		return "", err
	}
	parentCode := ""
	if parentID != nil {
		parent, ok := snap.Account(*parentID)
		if !ok {
			return "", errs.ErrNotFound
		}
		parentCode = parent.Code
	}
	return NextCode(parentCode, snap.Siblings(parentID)), nil
}
