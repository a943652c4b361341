// Package journal implements journal entry rules: at least two single-sided
// lines, balanced debits and credits, postable active accounts, and
// immutability once an entry is posted.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tallybook/tally/internal/errs"
	"github.com/tallybook/tally/internal/ledger"
)

// Repo defines read operations needed by the service.
type Repo interface {
	AccountsByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ledger.Account, error)
	EntriesByOrgID(ctx context.Context, orgID uuid.UUID) ([]ledger.JournalEntry, error)
	EntryByID(ctx context.Context, orgID, entryID uuid.UUID) (ledger.JournalEntry, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	CreateJournalEntry(ctx context.Context, entry ledger.JournalEntry) (ledger.JournalEntry, error)
	UpdateJournalEntry(ctx context.Context, entry ledger.JournalEntry) (ledger.JournalEntry, error)
}

// Service exposes validation, creation, and posting of journal entries.
type Service interface {
	ValidateEntry(ctx context.Context, e ledger.JournalEntry) error
	CreateEntry(ctx context.Context, e ledger.JournalEntry) (ledger.JournalEntry, error)
	ListEntries(ctx context.Context, orgID uuid.UUID) ([]ledger.JournalEntry, error)
	GetEntry(ctx context.Context, orgID, entryID uuid.UUID) (ledger.JournalEntry, error)
	// Post marks an entry final. Posted entries are immutable.
	Post(ctx context.Context, orgID, entryID uuid.UUID) (ledger.JournalEntry, error)
}

type service struct {
	repo   Repo
	writer Writer
}

// New constructs the journal service.
func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func (s *service) ValidateEntry(ctx context.Context, entry ledger.JournalEntry) error {
	if entry.OrgID == uuid.Nil {
		return errs.ErrInvalid
	}
	if len(entry.Lines) < 2 {
		return errs.ErrTooFewLines
	}

	ids := make([]uuid.UUID, 0, len(entry.Lines))
	var sumDebits, sumCredits int64
	for i, line := range entry.Lines {
		if line.AccountID == uuid.Nil {
			return fmt.Errorf("line[%d]: account_id required: %w", i, errs.ErrInvalid)
		}
		units, _ := line.Amount.MinorUnits()
		if units <= 0 {
			return fmt.Errorf("line[%d]: %w", i, errs.ErrInvalidAmount)
		}
		switch line.Side {
		case ledger.SideDebit:
			sumDebits += units
		case ledger.SideCredit:
			sumCredits += units
		default:
			return fmt.Errorf("line[%d]: %w", i, errs.ErrInvalidSide)
		}
		ids = append(ids, line.AccountID)
	}
	if sumDebits != sumCredits {
		return errs.ErrUnbalancedEntry
	}

	accMap, err := s.repo.AccountsByIDs(ctx, entry.OrgID, ids)
	if err != nil {
		return err
	}
	for i, line := range entry.Lines {
		acc, ok := accMap[line.AccountID]
		if !ok {
			return fmt.Errorf("line[%d]: account not found for org: %w", i, errs.ErrInvalid)
		}
		if !acc.Active {
			return fmt.Errorf("line[%d]: account %s is inactive: %w", i, acc.Code, errs.ErrInvalid)
		}
		if !acc.Postable {
			return fmt.Errorf("line[%d]: account %s: %w", i, acc.Code, errs.ErrNotPostable)
		}
	}
	return nil
}

// CreateEntry assumes ValidateEntry has been called; it assigns fresh IDs and
// persists the entry with its lines atomically.
func (s *service) CreateEntry(ctx context.Context, entry ledger.JournalEntry) (ledger.JournalEntry, error) {
	entryID := uuid.New()
	lines := make([]ledger.JournalLine, 0, len(entry.Lines))
	for _, ln := range entry.Lines {
		ln.ID = uuid.New()
		ln.EntryID = entryID
		lines = append(lines, ln)
	}
	entry.ID = entryID
	entry.Lines = lines
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}
	return s.writer.CreateJournalEntry(ctx, entry)
}

func (s *service) ListEntries(ctx context.Context, orgID uuid.UUID) ([]ledger.JournalEntry, error) {
	if orgID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.EntriesByOrgID(ctx, orgID)
}

func (s *service) GetEntry(ctx context.Context, orgID, entryID uuid.UUID) (ledger.JournalEntry, error) {
	if orgID == uuid.Nil || entryID == uuid.Nil {
		return ledger.JournalEntry{}, errs.ErrInvalid
	}
	return s.repo.EntryByID(ctx, orgID, entryID)
}

func (s *service) Post(ctx context.Context, orgID, entryID uuid.UUID) (ledger.JournalEntry, error) {
	entry, err := s.GetEntry(ctx, orgID, entryID)
	if err != nil {
		return ledger.JournalEntry{}, err
	}
	if entry.Posted {
		return ledger.JournalEntry{}, errs.ErrPosted
	}
	entry.Posted = true
	return s.writer.UpdateJournalEntry(ctx, entry)
}
