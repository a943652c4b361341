package v1

import (
	"errors"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tallybook/tally/internal/errs"
	"github.com/tallybook/tally/internal/ledger"
)

func (s *Server) postEntry(w http.ResponseWriter, r *http.Request) {
	// Request has already been validated and is present in context
	v := r.Context().Value(ctxKeyPostEntry)
	e, ok := v.(ledger.JournalEntry)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated request missing"})
		return
	}
	saved, err := s.journal.CreateEntry(r.Context(), e)
	if err != nil {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not persist entry"})
		return
	}
	toJSON(w, http.StatusCreated, toEntryResponse(saved))
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	v := r.Context().Value(ctxKeyListEntries)
	q, ok := v.(listEntriesQuery)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated query missing"})
		return
	}
	entries, err := s.journal.ListEntries(r.Context(), q.OrgID)
	if err != nil {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not fetch entries"})
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}
	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid entry id")
		return
	}
	e, err := s.journal.GetEntry(r.Context(), orgID, entryID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			notFound(w)
			return
		}
		badRequest(w, err.Error())
		return
	}
	toJSON(w, http.StatusOK, toEntryResponse(e))
}

// postEntryFinal marks a draft entry as posted. Posted entries are immutable.
func (s *Server) postEntryFinal(w http.ResponseWriter, r *http.Request) {
	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}
	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid entry id")
		return
	}
	e, err := s.journal.Post(r.Context(), orgID, entryID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			notFound(w)
		case errors.Is(err, errs.ErrPosted):
			conflict(w, "entry already posted")
		default:
			badRequest(w, err.Error())
		}
		return
	}
	toJSON(w, http.StatusOK, toEntryResponse(e))
}
