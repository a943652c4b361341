package v1

import (
	"net/http"
)

func (s *Server) balanceSheet(w http.ResponseWriter, r *http.Request) {
	q, ok := r.Context().Value(ctxKeyReportQuery).(reportQuery)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated query missing"})
		return
	}
	res, err := s.reports.BalanceSheet(r.Context(), q.Filter)
	if err != nil {
		s.log.Error("balance sheet build failed", "org_id", q.Filter.OrgID, "err", err)
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not build balance sheet"})
		return
	}
	toJSON(w, http.StatusOK, balanceSheetResponse{
		OrgID:   q.Filter.OrgID,
		AsOf:    q.Filter.To,
		Rows:    toReportRows(res.Rows),
		Summary: res.Summary,
	})
}

func (s *Server) profitLoss(w http.ResponseWriter, r *http.Request) {
	q, ok := r.Context().Value(ctxKeyReportQuery).(reportQuery)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated query missing"})
		return
	}
	res, err := s.reports.ProfitLoss(r.Context(), q.Filter)
	if err != nil {
		s.log.Error("profit and loss build failed", "org_id", q.Filter.OrgID, "err", err)
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not build profit and loss"})
		return
	}
	toJSON(w, http.StatusOK, profitLossResponse{
		OrgID:   q.Filter.OrgID,
		From:    q.Filter.From,
		To:      q.Filter.To,
		Rows:    toReportRows(res.Rows),
		Summary: res.Summary,
	})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	q, ok := r.Context().Value(ctxKeyReportQuery).(reportQuery)
	if !ok {
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "validated query missing"})
		return
	}
	totals, err := s.reports.Dashboard(r.Context(), q.Filter)
	if err != nil {
		s.log.Error("dashboard build failed", "org_id", q.Filter.OrgID, "err", err)
		toJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not build dashboard"})
		return
	}
	toJSON(w, http.StatusOK, dashboardResponse{
		OrgID:  q.Filter.OrgID,
		From:   q.Filter.From,
		To:     q.Filter.To,
		Totals: totals,
	})
}
