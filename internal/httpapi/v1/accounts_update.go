package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tallybook/tally/internal/errs"
	"github.com/tallybook/tally/internal/meta"
)

// updateAccount applies a partial update. Code, category, and level are
// immutable; the registry rejects attempts to change them.
func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}
	accountID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	var req updateAccountRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}

	// Read the store, not the snapshot cache: a cached view may be minutes
	// stale and must never be the base of a read-modify-write.
	current, err := s.registry.Get(r.Context(), orgID, accountID)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Postable != nil {
		current.Postable = *req.Postable
	}
	if req.Metadata != nil {
		md := meta.New(req.Metadata)
		if err := md.Validate(); err != nil {
			unprocessable(w, err.Error(), "validation_error")
			return
		}
		current.Metadata = md
	}

	updated, err := s.registry.Update(r.Context(), current)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(updated))
}

// deactivateAccount soft-deletes an account; its history remains reportable.
func (s *Server) deactivateAccount(w http.ResponseWriter, r *http.Request) {
	orgID, ok := parseOrgID(w, r)
	if !ok {
		return
	}
	accountID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid account id")
		return
	}
	if err := s.registry.Deactivate(r.Context(), orgID, accountID); err != nil {
		writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		notFound(w)
	case errors.Is(err, errs.ErrSystemAccount):
		forbidden(w, "system accounts cannot be modified")
	case errors.Is(err, errs.ErrImmutable):
		conflict(w, "code, category, and level are immutable")
	default:
		badRequest(w, err.Error())
	}
}
