// Package memory provides a simple in-memory store used for development and
// tests. It implements the registry loader, the journal repo/writer, and the
// ledger fetch layer (folding raw journal lines into closing activity).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tallybook/tally/internal/errs"
	"github.com/tallybook/tally/internal/ledger"
	"github.com/tallybook/tally/internal/report"
)

// entryKey orders entries per org asc by (Date, ID).
type entryKey struct {
	Date time.Time
	ID   uuid.UUID
}

// Store is guarded by an RWMutex for concurrent reads/writes.
type Store struct {
	mu             sync.RWMutex
	orgs           map[uuid.UUID]ledger.Org
	accounts       map[uuid.UUID]ledger.Account
	entries        map[uuid.UUID]*ledger.JournalEntry
	entryKeysByOrg map[uuid.UUID][]entryKey
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		orgs:           make(map[uuid.UUID]ledger.Org),
		accounts:       make(map[uuid.UUID]ledger.Account),
		entries:        make(map[uuid.UUID]*ledger.JournalEntry),
		entryKeysByOrg: make(map[uuid.UUID][]entryKey),
	}
}

// Seed helpers for local dev/tests.
func (s *Store) SeedOrg(o ledger.Org)         { s.mu.Lock(); s.orgs[o.ID] = o; s.mu.Unlock() }
func (s *Store) SeedAccount(a ledger.Account) { s.mu.Lock(); s.accounts[a.ID] = a; s.mu.Unlock() }

// GetOrg returns an org by ID.
func (s *Store) GetOrg(_ context.Context, orgID uuid.UUID) (ledger.Org, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orgs[orgID]
	if !ok {
		return ledger.Org{}, errs.ErrNotFound
	}
	return o, nil
}

// ListAccounts returns all accounts for an org.
func (s *Store) ListAccounts(_ context.Context, orgID uuid.UUID) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ledger.Account, 0)
	for _, a := range s.accounts {
		if a.OrgID == orgID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// AccountsByIDs returns an org's accounts filtered by the provided ids.
func (s *Store) AccountsByIDs(_ context.Context, orgID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]ledger.Account, len(ids))
	for _, id := range ids {
		if acc, ok := s.accounts[id]; ok && acc.OrgID == orgID {
			out[id] = acc
		}
	}
	return out, nil
}

// GetAccount returns an org's account by ID.
func (s *Store) GetAccount(_ context.Context, orgID, accountID uuid.UUID) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok || a.OrgID != orgID {
		return ledger.Account{}, errs.ErrNotFound
	}
	return a, nil
}

// CreateAccount persists a new account.
func (s *Store) CreateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
	return a, nil
}

// UpdateAccount persists changes to an account.
func (s *Store) UpdateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; !ok {
		return ledger.Account{}, errs.ErrNotFound
	}
	s.accounts[a.ID] = a
	return a, nil
}

// CreateJournalEntry stores a copy of the entry and indexes it.
func (s *Store) CreateJournalEntry(_ context.Context, entry ledger.JournalEntry) (ledger.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry
	s.entries[e.ID] = &e
	s.insertEntryIndexLocked(e.OrgID, entryKey{Date: e.Date, ID: e.ID})
	return e, nil
}

// UpdateJournalEntry replaces an existing entry by ID.
func (s *Store) UpdateJournalEntry(_ context.Context, entry ledger.JournalEntry) (ledger.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.ID]; !ok {
		return ledger.JournalEntry{}, errs.ErrNotFound
	}
	e := entry
	s.entries[entry.ID] = &e
	return e, nil
}

// EntriesByOrgID returns all entries for an org in (Date, ID) order.
func (s *Store) EntriesByOrgID(_ context.Context, orgID uuid.UUID) ([]ledger.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.entryKeysByOrg[orgID]
	out := make([]ledger.JournalEntry, 0, len(keys))
	for _, k := range keys {
		if e, ok := s.entries[k.ID]; ok && e.OrgID == orgID {
			out = append(out, *e)
		}
	}
	return out, nil
}

// EntryByID returns a single entry for an org.
func (s *Store) EntryByID(_ context.Context, orgID, entryID uuid.UUID) (ledger.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryID]
	if !ok || e.OrgID != orgID {
		return ledger.JournalEntry{}, errs.ErrNotFound
	}
	return *e, nil
}

// ClosingActivity implements report.ActivitySource over raw journal lines:
// it folds every line inside the filter window into per-account closing
// debit/credit sums.
func (s *Store) ClosingActivity(_ context.Context, f ledger.EntryFilter) ([]report.AccountActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byAccount := make(map[uuid.UUID]*report.AccountActivity)
	for _, k := range s.entryKeysByOrg[f.OrgID] {
		e, ok := s.entries[k.ID]
		if !ok || !f.Matches(*e) {
			continue
		}
		for _, ln := range e.Lines {
			act := byAccount[ln.AccountID]
			if act == nil {
				code := ""
				if acc, ok := s.accounts[ln.AccountID]; ok {
					code = acc.Code
				}
				act = &report.AccountActivity{AccountID: ln.AccountID, Code: code}
				byAccount[ln.AccountID] = act
			}
			act.Debit += ln.DebitMinor()
			act.Credit += ln.CreditMinor()
			act.TxCount++
		}
	}
	out := make([]report.AccountActivity, 0, len(byAccount))
	for _, act := range byAccount {
		out = append(out, *act)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// insertEntryIndexLocked inserts k into the per-org sorted index.
// Caller must hold s.mu (write lock).
func (s *Store) insertEntryIndexLocked(orgID uuid.UUID, k entryKey) {
	keys := s.entryKeysByOrg[orgID]
	i := sort.Search(len(keys), func(i int) bool {
		if keys[i].Date.After(k.Date) {
			return true
		}
		if keys[i].Date.Equal(k.Date) {
			return keys[i].ID.String() > k.ID.String()
		}
		return false
	})
	if i == len(keys) {
		s.entryKeysByOrg[orgID] = append(keys, k)
		return
	}
	keys = append(keys, entryKey{})
	copy(keys[i+1:], keys[i:])
	keys[i] = k
	s.entryKeysByOrg[orgID] = keys
}
