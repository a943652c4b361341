package postgres

// Package postgres provides a pgx-backed storage implementation satisfying
// the repository and writer interfaces used by the registry, journal service,
// and report builders. It also serves the pre-aggregated fetch-layer shape:
// ClosingActivity runs the GROUP BY in SQL instead of folding raw lines in
// Go, and both shapes must produce identical classified totals.

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tallybook/tally/internal/errs"
	"github.com/tallybook/tally/internal/ledger"
	"github.com/tallybook/tally/internal/meta"
	"github.com/tallybook/tally/internal/report"
)

// Store holds a pgx connection pool. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// GetOrg returns an org by ID.
func (s *Store) GetOrg(ctx context.Context, orgID uuid.UUID) (ledger.Org, error) {
	var o ledger.Org
	err := s.pool.QueryRow(ctx, `
        select id, name, currency from orgs where id = $1
    `, orgID).Scan(&o.ID, &o.Name, &o.Currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Org{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.Org{}, err
	}
	return o, nil
}

// CreateOrg inserts an org row.
func (s *Store) CreateOrg(ctx context.Context, o ledger.Org) (ledger.Org, error) {
	_, err := s.pool.Exec(ctx, `
        insert into orgs (id, name, currency) values ($1,$2,$3)
    `, o.ID, o.Name, o.Currency)
	if err != nil {
		return ledger.Org{}, err
	}
	return o, nil
}

// --- Account reads ---

const accountColumns = `id, org_id, code, name, category, level, parent_id, postable, active, system, metadata`

func scanAccount(row pgx.Row) (ledger.Account, error) {
	var a ledger.Account
	var mdBytes []byte
	if err := row.Scan(&a.ID, &a.OrgID, &a.Code, &a.Name, &a.Category, &a.Level, &a.ParentID, &a.Postable, &a.Active, &a.System, &mdBytes); err != nil {
		return ledger.Account{}, err
	}
	if len(mdBytes) > 0 {
		var m meta.Metadata
		if err := m.UnmarshalJSON(mdBytes); err == nil {
			a.Metadata = m
		}
	}
	return a, nil
}

// ListAccounts returns all accounts for an org ordered by code.
func (s *Store) ListAccounts(ctx context.Context, orgID uuid.UUID) ([]ledger.Account, error) {
	rows, err := s.pool.Query(ctx, `
        select `+accountColumns+`
        from accounts
        where org_id = $1
        order by code
    `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ledger.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AccountsByIDs returns an org's accounts filtered by IDs.
func (s *Store) AccountsByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ledger.Account, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]ledger.Account{}, nil
	}
	rows, err := s.pool.Query(ctx, `
        select `+accountColumns+`
        from accounts
        where org_id = $1 and id = any($2)
    `, orgID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uuid.UUID]ledger.Account)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, rows.Err()
}

// GetAccount fetches a single account by id for an org.
func (s *Store) GetAccount(ctx context.Context, orgID, accountID uuid.UUID) (ledger.Account, error) {
	row := s.pool.QueryRow(ctx, `
        select `+accountColumns+`
        from accounts
        where id = $1 and org_id = $2
    `, accountID, orgID)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Account{}, errs.ErrNotFound
	}
	return a, err
}

// --- Account writes ---

// CreateAccount inserts an account row.
func (s *Store) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	if err := a.Metadata.Validate(); err != nil {
		return ledger.Account{}, err
	}
	md, _ := a.Metadata.MarshalStableJSON()
	_, err := s.pool.Exec(ctx, `
        insert into accounts (id, org_id, code, name, category, level, parent_id, postable, active, system, metadata)
        values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    `, a.ID, a.OrgID, a.Code, a.Name, a.Category, a.Level, a.ParentID, a.Postable, a.Active, a.System, md)
	if err != nil {
		return ledger.Account{}, err
	}
	return a, nil
}

// UpdateAccount updates mutable fields (name, postable, active, metadata).
func (s *Store) UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	if err := a.Metadata.Validate(); err != nil {
		return ledger.Account{}, err
	}
	md, _ := a.Metadata.MarshalStableJSON()
	ct, err := s.pool.Exec(ctx, `
        update accounts
        set name=$1, postable=$2, active=$3, metadata=$4
        where id=$5 and org_id=$6
    `, a.Name, a.Postable, a.Active, md, a.ID, a.OrgID)
	if err != nil {
		return ledger.Account{}, err
	}
	if ct.RowsAffected() == 0 {
		return ledger.Account{}, errs.ErrNotFound
	}
	return a, nil
}

// --- Entry reads ---

// EntriesByOrgID returns entries for an org with lines populated.
func (s *Store) EntriesByOrgID(ctx context.Context, orgID uuid.UUID) ([]ledger.JournalEntry, error) {
	org, err := s.GetOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
        select id, org_id, project_id, date, memo, posted, metadata
        from entries
        where org_id = $1
        order by date asc, id asc
    `, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]ledger.JournalEntry, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var e ledger.JournalEntry
		var mdBytes []byte
		if err := rows.Scan(&e.ID, &e.OrgID, &e.ProjectID, &e.Date, &e.Memo, &e.Posted, &mdBytes); err != nil {
			return nil, err
		}
		if len(mdBytes) > 0 {
			var m meta.Metadata
			if err := m.UnmarshalJSON(mdBytes); err == nil {
				e.Metadata = m
			}
		}
		entries = append(entries, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}
	lineRows, err := s.pool.Query(ctx, `
        select id, entry_id, account_id, side, amount_minor
        from entry_lines
        where entry_id = any($1)
        order by id asc
    `, ids)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	idx := make(map[uuid.UUID]*ledger.JournalEntry, len(entries))
	for i := range entries {
		idx[entries[i].ID] = &entries[i]
	}
	for lineRows.Next() {
		var id, entryID, accountID uuid.UUID
		var side string
		var minor int64
		if err := lineRows.Scan(&id, &entryID, &accountID, &side, &minor); err != nil {
			return nil, err
		}
		e := idx[entryID]
		if e == nil {
			continue
		}
		amt, _ := money.NewAmountFromMinorUnits(org.Currency, minor)
		e.Lines = append(e.Lines, ledger.JournalLine{ID: id, EntryID: entryID, AccountID: accountID, Side: ledger.Side(side), Amount: amt})
	}
	return entries, lineRows.Err()
}

// EntryByID returns an entry by id for an org with lines populated.
func (s *Store) EntryByID(ctx context.Context, orgID, entryID uuid.UUID) (ledger.JournalEntry, error) {
	org, err := s.GetOrg(ctx, orgID)
	if err != nil {
		return ledger.JournalEntry{}, err
	}
	var e ledger.JournalEntry
	var mdBytes []byte
	err = s.pool.QueryRow(ctx, `
        select id, org_id, project_id, date, memo, posted, metadata
        from entries
        where id = $1 and org_id = $2
    `, entryID, orgID).Scan(&e.ID, &e.OrgID, &e.ProjectID, &e.Date, &e.Memo, &e.Posted, &mdBytes)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.JournalEntry{}, errs.ErrNotFound
	}
	if err != nil {
		return ledger.JournalEntry{}, err
	}
	if len(mdBytes) > 0 {
		var m meta.Metadata
		if err := m.UnmarshalJSON(mdBytes); err == nil {
			e.Metadata = m
		}
	}
	rows, err := s.pool.Query(ctx, `
        select id, account_id, side, amount_minor
        from entry_lines
        where entry_id = $1
        order by id asc
    `, entryID)
	if err != nil {
		return ledger.JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, accountID uuid.UUID
		var side string
		var minor int64
		if err := rows.Scan(&id, &accountID, &side, &minor); err != nil {
			return ledger.JournalEntry{}, err
		}
		amt, _ := money.NewAmountFromMinorUnits(org.Currency, minor)
		e.Lines = append(e.Lines, ledger.JournalLine{ID: id, EntryID: entryID, AccountID: accountID, Side: ledger.Side(side), Amount: amt})
	}
	return e, rows.Err()
}

// --- Entry writes ---

// CreateJournalEntry inserts an entry and its lines in a transaction.
func (s *Store) CreateJournalEntry(ctx context.Context, entry ledger.JournalEntry) (ledger.JournalEntry, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ledger.JournalEntry{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	md, _ := entry.Metadata.MarshalStableJSON()
	if _, err := tx.Exec(ctx, `
        insert into entries (id, org_id, project_id, date, memo, posted, metadata)
        values ($1,$2,$3,$4,$5,$6,$7)
    `, entry.ID, entry.OrgID, entry.ProjectID, entry.Date, entry.Memo, entry.Posted, md); err != nil {
		return ledger.JournalEntry{}, err
	}
	for _, ln := range entry.Lines {
		minor, _ := ln.Amount.MinorUnits()
		if _, err := tx.Exec(ctx, `
            insert into entry_lines (id, entry_id, account_id, side, amount_minor)
            values ($1,$2,$3,$4,$5)
        `, ln.ID, entry.ID, ln.AccountID, ln.Side, minor); err != nil {
			return ledger.JournalEntry{}, fmt.Errorf("insert line: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return ledger.JournalEntry{}, err
	}
	return entry, nil
}

// UpdateJournalEntry updates header fields of an entry (used to mark posted).
func (s *Store) UpdateJournalEntry(ctx context.Context, entry ledger.JournalEntry) (ledger.JournalEntry, error) {
	md, _ := entry.Metadata.MarshalStableJSON()
	ct, err := s.pool.Exec(ctx, `
        update entries
        set memo=$1, posted=$2, metadata=$3
        where id=$4 and org_id=$5
    `, entry.Memo, entry.Posted, md, entry.ID, entry.OrgID)
	if err != nil {
		return ledger.JournalEntry{}, err
	}
	if ct.RowsAffected() == 0 {
		return ledger.JournalEntry{}, errs.ErrNotFound
	}
	return entry, nil
}

// --- Fetch layer ---

// ClosingActivity implements report.ActivitySource with the aggregation
// pushed into SQL. The output contract is identical to the raw-line fold the
// memory store performs.
func (s *Store) ClosingActivity(ctx context.Context, f ledger.EntryFilter) ([]report.AccountActivity, error) {
	q := `
        select l.account_id, coalesce(a.code, ''),
               coalesce(sum(l.amount_minor) filter (where l.side = 'debit'), 0),
               coalesce(sum(l.amount_minor) filter (where l.side = 'credit'), 0),
               count(*)
        from entry_lines l
        join entries e on e.id = l.entry_id
        left join accounts a on a.id = l.account_id
        where e.org_id = $1
          and ($2::timestamptz is null or e.date >= $2)
          and ($3::timestamptz is null or e.date <= $3)
          and ($4::uuid is null or e.project_id = $4)
          and (not $5::bool or e.posted)
        group by l.account_id, a.code
        order by coalesce(a.code, '')
    `
	rows, err := s.pool.Query(ctx, q, f.OrgID, f.From, f.To, f.ProjectID, f.PostedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]report.AccountActivity, 0)
	for rows.Next() {
		var act report.AccountActivity
		if err := rows.Scan(&act.AccountID, &act.Code, &act.Debit, &act.Credit, &act.TxCount); err != nil {
			return nil, err
		}
		out = append(out, act)
	}
	return out, rows.Err()
}
