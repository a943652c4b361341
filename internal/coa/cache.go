package coa

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tallybook/tally/internal/ledger"
)

// DefaultSnapshotTTL bounds how stale a cached chart-of-accounts snapshot may
// be. Consumers of snapshots (validator, report builders) tolerate bounded
// staleness because their output is recomputed per request.
const DefaultSnapshotTTL = 5 * time.Minute

// Snapshot is an immutable view of an org's chart of accounts.
type Snapshot struct {
	OrgID     uuid.UUID
	ByID      map[uuid.UUID]ledger.Account
	ByCode    map[string]ledger.Account
	FetchedAt time.Time
}

// Account looks up an account by id.
func (s *Snapshot) Account(id uuid.UUID) (ledger.Account, bool) {
	a, ok := s.ByID[id]
	return a, ok
}

// Siblings returns the codes of active accounts sharing the given parent.
// A nil parent selects root-level accounts.
func (s *Snapshot) Siblings(parentID *uuid.UUID) []string {
	out := make([]string, 0)
	for _, a := range s.ByID {
		if !a.Active {
			continue
		}
		switch {
		case parentID == nil && a.ParentID == nil:
			out = append(out, a.Code)
		case parentID != nil && a.ParentID != nil && *a.ParentID == *parentID:
			out = append(out, a.Code)
		}
	}
	return out
}

// SnapshotCache caches org snapshots with a TTL. It replaces ambient
// module-level caching with an explicit, injectable component: account
// mutation paths must call Invalidate so the next read refetches.
type SnapshotCache struct {
	loader Loader
	ttl    time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	entries map[uuid.UUID]*Snapshot
}

// Loader fetches the full account list for an org.
type Loader interface {
	ListAccounts(ctx context.Context, orgID uuid.UUID) ([]ledger.Account, error)
}

// NewSnapshotCache builds a cache around loader with the given TTL
// (DefaultSnapshotTTL if ttl <= 0).
func NewSnapshotCache(loader Loader, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{
		loader:  loader,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[uuid.UUID]*Snapshot),
	}
}

// WithClock overrides the cache clock. Test hook.
func (c *SnapshotCache) WithClock(now func() time.Time) *SnapshotCache {
	c.now = now
	return c
}

// Snapshot returns the cached snapshot for the org, refetching when absent or
// older than the TTL. Concurrent callers may observe a stale-but-bounded view.
func (c *SnapshotCache) Snapshot(ctx context.Context, orgID uuid.UUID) (*Snapshot, error) {
	c.mu.RLock()
	cached, ok := c.entries[orgID]
	c.mu.RUnlock()
	if ok && c.now().Sub(cached.FetchedAt) < c.ttl {
		return cached, nil
	}

	accounts, err := c.loader.ListAccounts(ctx, orgID)
	if err != nil {
		return nil, err
	}
	snap := buildSnapshot(orgID, accounts, c.now())
	c.mu.Lock()
	c.entries[orgID] = snap
	c.mu.Unlock()
	return snap, nil
}

// Invalidate drops the cached snapshot for an org. Call after any account
// mutation.
func (c *SnapshotCache) Invalidate(orgID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, orgID)
	c.mu.Unlock()
}

func buildSnapshot(orgID uuid.UUID, accounts []ledger.Account, at time.Time) *Snapshot {
	snap := &Snapshot{
		OrgID:     orgID,
		ByID:      make(map[uuid.UUID]ledger.Account, len(accounts)),
		ByCode:    make(map[string]ledger.Account, len(accounts)),
		FetchedAt: at,
	}
	for _, a := range accounts {
		snap.ByID[a.ID] = a
		snap.ByCode[strings.ToUpper(a.Code)] = a
	}
	return snap
}
