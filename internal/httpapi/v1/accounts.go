package v1

import (
	"errors"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tallybook/tally/internal/coa"
	"github.com/tallybook/tally/internal/errs"
	"github.com/tallybook/tally/internal/ledger"
)

func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
	v := r.Context().Value(ctxKeyPostAccount)
	a, ok := v.(ledger.Account)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated request missing"})
		return
	}
	created, err := s.registry.Create(r.Context(), a)
	if err != nil {
		switch {
		case errors.Is(err, coa.ErrCodeExists):
			conflict(w, err.Error())
		case errors.Is(err, errs.ErrInvalid):
			badRequest(w, err.Error())
		default:
			badRequest(w, err.Error())
		}
		return
	}
	toJSON(w, http.StatusCreated, toAccountResponse(created))
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	v := r.Context().Value(ctxKeyListAccounts)
	q, ok := v.(listAccountsQuery)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated query missing"})
		return
	}
	accounts, err := s.registry.List(r.Context(), q.OrgID)
	if err != nil {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not fetch accounts"})
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}
	accountID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	snap, err := s.snapshots.Snapshot(r.Context(), orgID)
	if err != nil {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not fetch accounts"})
		return
	}
	a, ok := snap.Account(accountID)
	if !ok {
		notFound(w)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(a))
}

// nextAccountCode proposes the next free sibling code under an optional parent.
func (s *Server) nextAccountCode(w http.ResponseWriter, r *http.Request) {
	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}
	var parentID *uuid.UUID
	if raw := r.URL.Query().Get("parent_id"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			badRequest(w, "invalid parent_id")
			return
		}
		parentID = &pid
	}
	code, err := s.registry.ProposeCode(r.Context(), orgID, parentID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			notFound(w)
			return
		}
		badRequest(w, err.Error())
		return
	}
	toJSON(w, http.StatusOK, nextCodeResponse{OrgID: orgID, ParentID: parentID, Code: code})
}
