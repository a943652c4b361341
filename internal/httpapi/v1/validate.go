package v1

import (
	"encoding/json"
	"net/http"

	"github.com/tallybook/tally/internal/validate"
)

// validateTransaction screens a proposed two-account transaction. The response
// is always 200 with structured findings; blocking is the caller's decision
// based on is_valid.
func (s *Server) validateTransaction(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req validateTransactionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if _, err := s.orgs.GetOrg(r.Context(), req.OrgID); err != nil {
		badRequest(w, "unknown org_id")
		return
	}
	res, err := s.validator.Check(r.Context(), validate.ProposedTransaction{
		OrgID:           req.OrgID,
		DebitAccountID:  req.DebitAccountID,
		CreditAccountID: req.CreditAccountID,
		AmountMinor:     req.AmountMinor,
		Description:     req.Description,
		EntryDate:       req.EntryDate,
	})
	if err != nil {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not screen transaction"})
		return
	}
	toJSON(w, http.StatusOK, res)
}
