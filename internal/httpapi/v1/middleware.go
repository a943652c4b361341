package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/tallybook/tally/internal/ledger"
	"github.com/tallybook/tally/internal/meta"
)

type ctxKey string

const (
	ctxKeyPostEntry    ctxKey = "validatedPostEntry"
	ctxKeyListEntries  ctxKey = "validatedListEntries"
	ctxKeyPostAccount  ctxKey = "validatedPostAccount"
	ctxKeyListAccounts ctxKey = "validatedListAccounts"
	ctxKeyReportQuery  ctxKey = "validatedReportQuery"
)

// validatePostEntry decodes and validates the POST /entries body, resolves the
// org currency, and stores the domain entry in the request context for the
// handler to use.
func (s *Server) validatePostEntry() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r) {
				return
			}
			var req postEntryRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			if req.Metadata != nil {
				if err := meta.New(req.Metadata).Validate(); err != nil {
					unprocessable(w, err.Error(), "validation_error")
					return
				}
			}
			org, err := s.orgs.GetOrg(r.Context(), req.OrgID)
			if err != nil {
				badRequest(w, "unknown org_id")
				return
			}
			e := toEntryDomain(req, org.Currency)
			if err := s.journal.ValidateEntry(r.Context(), e); err != nil {
				code, msg := mapValidationError(err)
				unprocessable(w, msg, code)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostEntry, e)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateListEntries parses and validates query params for GET /entries.
func (s *Server) validateListEntries() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			orgID, ok := parseOrgID(w, r)
			if !ok {
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyListEntries, listEntriesQuery{OrgID: orgID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validatePostAccount decodes and validates the POST /accounts body.
func (s *Server) validatePostAccount() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r) {
				return
			}
			var req postAccountRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			if req.Metadata != nil {
				if err := meta.New(req.Metadata).Validate(); err != nil {
					unprocessable(w, err.Error(), "validation_error")
					return
				}
			}
			a := toAccountDomain(req)
			if err := s.registry.ValidateCreate(a); err != nil {
				badRequest(w, err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostAccount, a)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateListAccounts validates query params for GET /accounts.
func (s *Server) validateListAccounts() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			orgID, ok := parseOrgID(w, r)
			if !ok {
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyListAccounts, listAccountsQuery{OrgID: orgID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validateReportQuery parses the shared report window params: org_id plus
// optional from/to (or as_of, an alias for to), project_id, posted_only.
func (s *Server) validateReportQuery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			orgID, ok := parseOrgID(w, r)
			if !ok {
				return
			}
			f := ledger.EntryFilter{OrgID: orgID}
			q := r.URL.Query()
			var err error
			if f.From, err = parseTimeParam(q.Get("from")); err != nil {
				badRequest(w, "invalid from")
				return
			}
			if f.To, err = parseTimeParam(q.Get("to")); err != nil {
				badRequest(w, "invalid to")
				return
			}
			if f.To == nil {
				if f.To, err = parseTimeParam(q.Get("as_of")); err != nil {
					badRequest(w, "invalid as_of")
					return
				}
			}
			if raw := q.Get("project_id"); raw != "" {
				pid, err := uuid.Parse(raw)
				if err != nil {
					badRequest(w, "invalid project_id")
					return
				}
				f.ProjectID = &pid
			}
			if raw := q.Get("posted_only"); raw != "" {
				v, err := strconv.ParseBool(raw)
				if err != nil {
					badRequest(w, "invalid posted_only")
					return
				}
				f.PostedOnly = v
			}
			ctx := context.WithValue(r.Context(), ctxKeyReportQuery, reportQuery{Filter: f})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseOrgID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.URL.Query().Get("org_id")
	if raw == "" {
		badRequest(w, "org_id is required")
		return uuid.Nil, false
	}
	orgID, err := uuid.Parse(raw)
	if err != nil {
		badRequest(w, "invalid org_id")
		return uuid.Nil, false
	}
	return orgID, true
}

func parseTimeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// bare dates are accepted for convenience
		t, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, err
		}
	}
	tt := t.UTC()
	return &tt, nil
}

func toAccountDomain(req postAccountRequest) ledger.Account {
	return ledger.Account{
		OrgID:    req.OrgID,
		Code:     req.Code,
		Name:     req.Name,
		Category: req.Category,
		Level:    req.Level,
		ParentID: req.ParentID,
		Postable: req.Postable,
		System:   req.System,
		Metadata: meta.New(req.Metadata),
	}
}

func toEntryDomain(req postEntryRequest, currency string) ledger.JournalEntry {
	lines := make([]ledger.JournalLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		amt, _ := money.NewAmountFromMinorUnits(currency, line.AmountMinor)
		lines = append(lines, ledger.JournalLine{AccountID: line.AccountID, Side: line.Side, Amount: amt})
	}
	return ledger.JournalEntry{
		OrgID:     req.OrgID,
		ProjectID: req.ProjectID,
		Date:      req.Date,
		Memo:      req.Memo,
		Metadata:  meta.New(req.Metadata),
		Lines:     lines,
	}
}
