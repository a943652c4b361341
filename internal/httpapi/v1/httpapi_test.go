package v1

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tallybook/tally/internal/coa"
	"github.com/tallybook/tally/internal/ledger"
	"github.com/tallybook/tally/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type errResp struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type testEnv struct {
	store *memory.Store
	h     http.Handler
	orgID uuid.UUID
	cash  ledger.Account
	sales ledger.Account
	rent  ledger.Account
}

func setup(t *testing.T) testEnv {
	t.Helper()
	store := memory.New()
	org := ledger.Org{ID: uuid.New(), Name: "Test Books", Currency: "USD"}
	store.SeedOrg(org)
	cash := ledger.Account{ID: uuid.New(), OrgID: org.ID, Code: "1100", Name: "Cash", Category: ledger.CategoryAssets, Level: 1, Postable: true, Active: true}
	sales := ledger.Account{ID: uuid.New(), OrgID: org.ID, Code: "4100", Name: "Sales Revenue", Category: ledger.CategoryRevenue, Level: 1, Postable: true, Active: true}
	rent := ledger.Account{ID: uuid.New(), OrgID: org.ID, Code: "5300", Name: "Rent Expense", Category: ledger.CategoryExpenses, Level: 1, Postable: true, Active: true}
	store.SeedAccount(cash)
	store.SeedAccount(sales)
	store.SeedAccount(rent)
	snapshots := coa.NewSnapshotCache(store, time.Minute)
	h := New(store, store, store, store, store, store, snapshots, 0, testLogger()).Handler()
	return testEnv{store: store, h: h, orgID: org.ID, cash: cash, sales: sales, rent: rent}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v: %s", err, rec.Body.String())
	}
	return out
}

func (e testEnv) postEntry(t *testing.T, minor int64, memo string) entryResponse {
	t.Helper()
	rec := doJSON(t, e.h, http.MethodPost, "/v1/entries", map[string]any{
		"org_id": e.orgID.String(),
		"date":   "2024-01-15T00:00:00Z",
		"memo":   memo,
		"lines": []map[string]any{
			{"account_id": e.cash.ID.String(), "side": "debit", "amount_minor": minor},
			{"account_id": e.sales.ID.String(), "side": "credit", "amount_minor": minor},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decode[entryResponse](t, rec)
}

func TestPostEntry_ValidAndInvalid(t *testing.T) {
	env := setup(t)

	er := env.postEntry(t, 1500, "cash sale")
	if len(er.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(er.Lines))
	}

	// unbalanced
	rec := doJSON(t, env.h, http.MethodPost, "/v1/entries", map[string]any{
		"org_id": env.orgID.String(),
		"date":   "2024-01-15T00:00:00Z",
		"lines": []map[string]any{
			{"account_id": env.cash.ID.String(), "side": "debit", "amount_minor": 1500},
			{"account_id": env.sales.ID.String(), "side": "credit", "amount_minor": 1400},
		},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if er := decode[errResp](t, rec); er.Code != "unbalanced_entry" {
		t.Fatalf("expected unbalanced_entry, got %q", er.Code)
	}

	// single line
	rec = doJSON(t, env.h, http.MethodPost, "/v1/entries", map[string]any{
		"org_id": env.orgID.String(),
		"lines": []map[string]any{
			{"account_id": env.cash.ID.String(), "side": "debit", "amount_minor": 100},
		},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if er := decode[errResp](t, rec); er.Code != "too_few_lines" {
		t.Fatalf("expected too_few_lines, got %q", er.Code)
	}

	// missing content type
	req := httptest.NewRequest(http.MethodPost, "/v1/entries", bytes.NewReader([]byte("{}")))
	rec2 := httptest.NewRecorder()
	env.h.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec2.Code)
	}
}

func TestEntryLifecycle(t *testing.T) {
	env := setup(t)
	er := env.postEntry(t, 700, "invoice")

	rec := doJSON(t, env.h, http.MethodGet, "/v1/entries?org_id="+env.orgID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list expected 200, got %d", rec.Code)
	}
	if list := decode[[]entryResponse](t, rec); len(list) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(list))
	}

	rec = doJSON(t, env.h, http.MethodGet, "/v1/entries/"+er.ID.String()+"?org_id="+env.orgID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get expected 200, got %d", rec.Code)
	}
	got := decode[entryResponse](t, rec)
	if got.Posted {
		t.Fatalf("new entry must be a draft")
	}

	rec = doJSON(t, env.h, http.MethodPost, "/v1/entries/"+er.ID.String()+"/post?org_id="+env.orgID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("post expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if posted := decode[entryResponse](t, rec); !posted.Posted {
		t.Fatalf("entry not posted")
	}

	rec = doJSON(t, env.h, http.MethodPost, "/v1/entries/"+er.ID.String()+"/post?org_id="+env.orgID.String(), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("double post expected 409, got %d", rec.Code)
	}
}

func TestAccountLifecycle(t *testing.T) {
	env := setup(t)

	rec := doJSON(t, env.h, http.MethodPost, "/v1/accounts", map[string]any{
		"org_id":   env.orgID.String(),
		"code":     "1200",
		"name":     "Bank",
		"category": "assets",
		"level":    1,
		"postable": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[accountResponse](t, rec)
	if created.NormalBalance != ledger.SideDebit {
		t.Fatalf("asset should be debit-normal, got %q", created.NormalBalance)
	}

	// duplicate code conflicts
	rec = doJSON(t, env.h, http.MethodPost, "/v1/accounts", map[string]any{
		"org_id":   env.orgID.String(),
		"code":     "1200",
		"name":     "Bank Two",
		"category": "assets",
		"level":    1,
		"postable": true,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate expected 409, got %d", rec.Code)
	}

	// rename
	rec = doJSON(t, env.h, http.MethodPatch, "/v1/accounts/"+created.ID.String()+"?org_id="+env.orgID.String(), map[string]any{
		"name": "Bank Main",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if upd := decode[accountResponse](t, rec); upd.Name != "Bank Main" {
		t.Fatalf("rename failed: %+v", upd)
	}

	// deactivate, then fetch shows inactive
	rec = doJSON(t, env.h, http.MethodDelete, "/v1/accounts/"+created.ID.String()+"?org_id="+env.orgID.String(), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete expected 204, got %d", rec.Code)
	}
	rec = doJSON(t, env.h, http.MethodGet, "/v1/accounts/"+created.ID.String()+"?org_id="+env.orgID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get expected 200, got %d", rec.Code)
	}
	if got := decode[accountResponse](t, rec); got.Active {
		t.Fatalf("account should be inactive after delete")
	}
}

// A PATCH must start from the store's current row, not the TTL snapshot:
// a write from another process inside the TTL window would otherwise be
// silently reverted.
func TestUpdateAccountIgnoresStaleSnapshot(t *testing.T) {
	env := setup(t)

	rec := doJSON(t, env.h, http.MethodPost, "/v1/accounts", map[string]any{
		"org_id":   env.orgID.String(),
		"code":     "1200",
		"name":     "Bank",
		"category": "assets",
		"level":    1,
		"postable": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[accountResponse](t, rec)

	// warm the snapshot cache
	rec = doJSON(t, env.h, http.MethodGet, "/v1/accounts/"+created.ID.String()+"?org_id="+env.orgID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get expected 200, got %d", rec.Code)
	}

	// another writer flips postable off without touching this cache
	env.store.SeedAccount(ledger.Account{
		ID:       created.ID,
		OrgID:    created.OrgID,
		Code:     created.Code,
		Name:     created.Name,
		Category: created.Category,
		Level:    created.Level,
		Postable: false,
		Active:   true,
	})

	rec = doJSON(t, env.h, http.MethodPatch, "/v1/accounts/"+created.ID.String()+"?org_id="+env.orgID.String(), map[string]any{
		"name": "Bank Main",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	upd := decode[accountResponse](t, rec)
	if upd.Name != "Bank Main" {
		t.Fatalf("rename failed: %+v", upd)
	}
	if upd.Postable {
		t.Fatalf("rename reverted the concurrent postable change")
	}
}

func TestNextAccountCode(t *testing.T) {
	env := setup(t)
	rec := doJSON(t, env.h, http.MethodGet, "/v1/accounts/next-code?org_id="+env.orgID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	// root codes 1100/4100/5300 share two trailing zeros, so the proposal
	// continues the compact padded style
	if res := decode[nextCodeResponse](t, rec); res.Code != "5400" {
		t.Fatalf("proposed %q, want 5400", res.Code)
	}
}

func TestReportsAgreeOverHTTP(t *testing.T) {
	env := setup(t)
	env.postEntry(t, 1000_00, "first sale")

	rec := doJSON(t, env.h, http.MethodGet, "/v1/reports/balance-sheet?org_id="+env.orgID.String()+"&as_of=2024-01-31", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balance sheet expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	bs := decode[balanceSheetResponse](t, rec)
	if bs.Summary.TotalAssets != 1000_00 {
		t.Fatalf("total assets = %d", bs.Summary.TotalAssets)
	}

	rec = doJSON(t, env.h, http.MethodGet, "/v1/reports/profit-loss?org_id="+env.orgID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profit loss expected 200, got %d", rec.Code)
	}
	pl := decode[profitLossResponse](t, rec)
	if pl.Summary.TotalRevenue != 1000_00 {
		t.Fatalf("total revenue = %d", pl.Summary.TotalRevenue)
	}

	rec = doJSON(t, env.h, http.MethodGet, "/v1/reports/dashboard?org_id="+env.orgID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard expected 200, got %d", rec.Code)
	}
	dash := decode[dashboardResponse](t, rec)
	if dash.Totals.Assets != bs.Summary.TotalAssets {
		t.Fatalf("dashboard assets %d != balance sheet %d", dash.Totals.Assets, bs.Summary.TotalAssets)
	}
	if dash.Totals.Revenue != pl.Summary.TotalRevenue {
		t.Fatalf("dashboard revenue %d != P&L %d", dash.Totals.Revenue, pl.Summary.TotalRevenue)
	}
	if dash.Totals.NetIncome != 1000_00 {
		t.Fatalf("net income = %d", dash.Totals.NetIncome)
	}
}

func TestValidateTransactionEndpoint(t *testing.T) {
	env := setup(t)

	// backwards entry warns but stays valid
	rec := doJSON(t, env.h, http.MethodPost, "/v1/transactions/validate", map[string]any{
		"org_id":            env.orgID.String(),
		"debit_account_id":  env.sales.ID.String(),
		"credit_account_id": env.cash.ID.String(),
		"amount_minor":      500,
		"description":       "Deposit received",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Valid    bool `json:"is_valid"`
		Errors   []struct{ Field string }
		Warnings []struct{ Field string }
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Valid || len(res.Warnings) == 0 {
		t.Fatalf("expected valid result with warnings: %s", rec.Body.String())
	}

	// unknown account is a hard error
	rec = doJSON(t, env.h, http.MethodPost, "/v1/transactions/validate", map[string]any{
		"org_id":            env.orgID.String(),
		"debit_account_id":  uuid.New().String(),
		"credit_account_id": env.cash.ID.String(),
		"amount_minor":      500,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Valid || len(res.Errors) == 0 {
		t.Fatalf("expected invalid result with errors: %s", rec.Body.String())
	}
}

func TestDictionaryCategories(t *testing.T) {
	env := setup(t)
	rec := doJSON(t, env.h, http.MethodGet, "/v1/dictionary/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	res := decode[dictionaryResponse](t, rec)
	if len(res.Categories) != 5 {
		t.Fatalf("expected 5 categories, got %d", len(res.Categories))
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := setup(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, env.h, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s expected 200, got %d", path, rec.Code)
		}
	}
}
