package v1

import (
	"net/http"

	"github.com/tallybook/tally/internal/coa"
)

type dictionaryResponse struct {
	Categories               []coa.CategoryDef `json:"categories"`
	CurrentAssetKeywords     []string          `json:"current_asset_keywords"`
	CurrentLiabilityKeywords []string          `json:"current_liability_keywords"`
	ReceiptKeywords          []string          `json:"receipt_keywords"`
	PaymentKeywords          []string          `json:"payment_keywords"`
}

// dictionaryCategories serves the curated classification dictionary so clients
// can mirror server-side account coding conventions.
func (s *Server) dictionaryCategories(w http.ResponseWriter, r *http.Request) {
	toJSON(w, http.StatusOK, dictionaryResponse{
		Categories:               coa.Definitions(),
		CurrentAssetKeywords:     coa.CurrentAssetKeywords,
		CurrentLiabilityKeywords: coa.CurrentLiabilityKeywords,
		ReceiptKeywords:          coa.ReceiptKeywords,
		PaymentKeywords:          coa.PaymentKeywords,
	})
}
