package coa

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tallybook/tally/internal/errs"
	"github.com/tallybook/tally/internal/ledger"
)

// fakeStore is a minimal in-package account store; the full store lives in
// storage/memory and is covered by its own tests.
type fakeStore struct {
	accounts map[uuid.UUID]ledger.Account
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[uuid.UUID]ledger.Account)}
}

func (s *fakeStore) ListAccounts(_ context.Context, orgID uuid.UUID) ([]ledger.Account, error) {
	out := make([]ledger.Account, 0)
	for _, a := range s.accounts {
		if a.OrgID == orgID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) GetAccount(_ context.Context, orgID, accountID uuid.UUID) (ledger.Account, error) {
	a, ok := s.accounts[accountID]
	if !ok || a.OrgID != orgID {
		return ledger.Account{}, errs.ErrNotFound
	}
	return a, nil
}

func (s *fakeStore) CreateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	s.accounts[a.ID] = a
	return a, nil
}

func (s *fakeStore) UpdateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	if _, ok := s.accounts[a.ID]; !ok {
		return ledger.Account{}, errs.ErrNotFound
	}
	s.accounts[a.ID] = a
	return a, nil
}

func newTestService() (Service, *fakeStore, *SnapshotCache) {
	store := newFakeStore()
	cache := NewSnapshotCache(store, time.Minute)
	return New(store, store, cache), store, cache
}

func TestValidCode(t *testing.T) {
	valid := []string{"1100", "5", "5-1", "5-1-2", "EXP1", "ASSET-2"}
	for _, c := range valid {
		if !ValidCode(c) {
			t.Errorf("ValidCode(%q) = false, want true", c)
		}
	}
	invalid := []string{"", "-1", "5-", "5--1", "5 1", "5-x"}
	for _, c := range invalid {
		if ValidCode(c) {
			t.Errorf("ValidCode(%q) = true, want false", c)
		}
	}
}

func TestValidateCreate(t *testing.T) {
	svc, _, _ := newTestService()
	orgID := uuid.New()
	base := ledger.Account{OrgID: orgID, Code: "1100", Name: "Cash", Category: ledger.CategoryAssets, Level: 1, Postable: true}

	if err := svc.ValidateCreate(base); err != nil {
		t.Fatalf("valid account rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(a *ledger.Account)
	}{
		{"missing org", func(a *ledger.Account) { a.OrgID = uuid.Nil }},
		{"missing name", func(a *ledger.Account) { a.Name = "" }},
		{"bad code", func(a *ledger.Account) { a.Code = "11 00" }},
		{"bad category", func(a *ledger.Account) { a.Category = "weird" }},
		{"bad level", func(a *ledger.Account) { a.Level = 0 }},
		{"root with parent", func(a *ledger.Account) { pid := uuid.New(); a.ParentID = &pid }},
		{"child without parent", func(a *ledger.Account) { a.Level = 2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := base
			tc.mutate(&a)
			if err := svc.ValidateCreate(a); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestCreateUniqueCode(t *testing.T) {
	svc, _, _ := newTestService()
	orgID := uuid.New()
	ctx := context.Background()

	a := ledger.Account{OrgID: orgID, Code: "1100", Name: "Cash", Category: ledger.CategoryAssets, Level: 1, Postable: true}
	if _, err := svc.Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := a
	dup.Name = "Petty Cash"
	dup.Code = "1100"
	if _, err := svc.Create(ctx, dup); !errors.Is(err, ErrCodeExists) {
		t.Fatalf("expected ErrCodeExists, got %v", err)
	}
	// case-insensitive
	dup.Code = "asset1"
	if _, err := svc.Create(ctx, dup); err != nil {
		t.Fatalf("create asset1: %v", err)
	}
	dup.Code = "ASSET1"
	if _, err := svc.Create(ctx, dup); !errors.Is(err, ErrCodeExists) {
		t.Fatalf("expected case-insensitive ErrCodeExists, got %v", err)
	}
}

func TestCreateParentCategoryMustMatch(t *testing.T) {
	svc, _, _ := newTestService()
	orgID := uuid.New()
	ctx := context.Background()

	parent, err := svc.Create(ctx, ledger.Account{OrgID: orgID, Code: "5", Name: "Expenses", Category: ledger.CategoryExpenses, Level: 1})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	child := ledger.Account{OrgID: orgID, Code: "5-1", Name: "Rent", Category: ledger.CategoryAssets, Level: 2, ParentID: &parent.ID, Postable: true}
	if _, err := svc.Create(ctx, child); err == nil {
		t.Fatalf("expected category mismatch error")
	}
	child.Category = ledger.CategoryExpenses
	if _, err := svc.Create(ctx, child); err != nil {
		t.Fatalf("create child: %v", err)
	}
}

func TestUpdateImmutableAndSystem(t *testing.T) {
	svc, _, _ := newTestService()
	orgID := uuid.New()
	ctx := context.Background()

	acc, err := svc.Create(ctx, ledger.Account{OrgID: orgID, Code: "1100", Name: "Cash", Category: ledger.CategoryAssets, Level: 1, Postable: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	renamed := acc
	renamed.Name = "Cash on Hand"
	if _, err := svc.Update(ctx, renamed); err != nil {
		t.Fatalf("rename: %v", err)
	}

	moved := acc
	moved.Code = "1200"
	if _, err := svc.Update(ctx, moved); !errors.Is(err, errs.ErrImmutable) {
		t.Fatalf("expected ErrImmutable on code change, got %v", err)
	}
	recat := acc
	recat.Category = ledger.CategoryEquity
	if _, err := svc.Update(ctx, recat); !errors.Is(err, errs.ErrImmutable) {
		t.Fatalf("expected ErrImmutable on category change, got %v", err)
	}

	sys, err := svc.Create(ctx, ledger.Account{OrgID: orgID, Code: "3900", Name: "Retained Earnings", Category: ledger.CategoryEquity, Level: 1, System: true})
	if err != nil {
		t.Fatalf("create system: %v", err)
	}
	sysRenamed := sys
	sysRenamed.Name = "RE"
	if _, err := svc.Update(ctx, sysRenamed); !errors.Is(err, errs.ErrSystemAccount) {
		t.Fatalf("expected ErrSystemAccount, got %v", err)
	}
	if err := svc.Deactivate(ctx, orgID, sys.ID); !errors.Is(err, errs.ErrSystemAccount) {
		t.Fatalf("expected ErrSystemAccount on deactivate, got %v", err)
	}
}

func TestDeactivateSoftDelete(t *testing.T) {
	svc, store, _ := newTestService()
	orgID := uuid.New()
	ctx := context.Background()

	acc, err := svc.Create(ctx, ledger.Account{OrgID: orgID, Code: "1100", Name: "Cash", Category: ledger.CategoryAssets, Level: 1, Postable: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Deactivate(ctx, orgID, acc.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got := store.accounts[acc.ID]
	if got.Active {
		t.Fatalf("account still active after deactivate")
	}
}

func TestProposeCodeUsesSnapshot(t *testing.T) {
	svc, _, _ := newTestService()
	orgID := uuid.New()
	ctx := context.Background()

	parent, err := svc.Create(ctx, ledger.Account{OrgID: orgID, Code: "5", Name: "Expenses", Category: ledger.CategoryExpenses, Level: 1})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	for _, code := range []string{"5-1", "5-2"} {
		if _, err := svc.Create(ctx, ledger.Account{OrgID: orgID, Code: code, Name: "Child " + code, Category: ledger.CategoryExpenses, Level: 2, ParentID: &parent.ID, Postable: true}); err != nil {
			t.Fatalf("create %s: %v", code, err)
		}
	}

	code, err := svc.ProposeCode(ctx, orgID, &parent.ID)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if code != "5-3" {
		t.Fatalf("proposed %q, want 5-3", code)
	}

	// Mutations invalidate the snapshot, so the next proposal sees the new child.
	if _, err := svc.Create(ctx, ledger.Account{OrgID: orgID, Code: "5-3", Name: "Child 5-3", Category: ledger.CategoryExpenses, Level: 2, ParentID: &parent.ID, Postable: true}); err != nil {
		t.Fatalf("create 5-3: %v", err)
	}
	code, err = svc.ProposeCode(ctx, orgID, &parent.ID)
	if err != nil {
		t.Fatalf("propose after create: %v", err)
	}
	if code != "5-4" {
		t.Fatalf("proposed %q after invalidate, want 5-4", code)
	}

	if _, err := svc.ProposeCode(ctx, orgID, ptr(uuid.New())); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown parent, got %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
