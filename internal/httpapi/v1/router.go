// Package v1 wires the HTTP surface of the bookkeeping service.
// It keeps handlers thin, delegating business rules to the service layer.
package v1

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tallybook/tally/internal/coa"
	"github.com/tallybook/tally/internal/report"
	"github.com/tallybook/tally/internal/service/journal"
	"github.com/tallybook/tally/internal/validate"
)

// Server wires handlers and middleware using Chi.
// It composes read (repo) and write (writer) dependencies through services.
type Server struct {
	journal   journal.Service
	registry  coa.Service
	reports   *report.Service
	validator *validate.Validator
	orgs      OrgReader
	snapshots *coa.SnapshotCache
	log       *slog.Logger
	rt        *chi.Mux
}

// New constructs the HTTP server with routes and middleware. The snapshot
// cache is shared by the registry, the report service, and the validator so an
// account mutation invalidates all three at once.
func New(orgs OrgReader, arepo coa.Repo, awriter coa.Writer, jrepo journal.Repo, jwriter journal.Writer, src report.ActivitySource, snapshots *coa.SnapshotCache, largeAmountMinor int64, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)
	if mw := authJWTFromEnv(); mw != nil {
		r.Use(mw)
	}

	s := &Server{
		journal:   journal.New(jrepo, jwriter),
		registry:  coa.New(arepo, awriter, snapshots),
		reports:   report.NewService(src, snapshots),
		validator: validate.New(snapshots, largeAmountMinor),
		orgs:      orgs,
		snapshots: snapshots,
		log:       logger,
		rt:        r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route middleware.
func (s *Server) routes() {
	// Accounts (v1)
	s.rt.With(s.validatePostAccount()).Post("/v1/accounts", s.postAccount)
	s.rt.With(s.validateListAccounts()).Get("/v1/accounts", s.listAccounts)
	s.rt.Get("/v1/accounts/next-code", s.nextAccountCode)
	s.rt.Get("/v1/accounts/{id}", s.getAccount)
	s.rt.Patch("/v1/accounts/{id}", s.updateAccount)
	s.rt.Delete("/v1/accounts/{id}", s.deactivateAccount)
	// Entries (v1)
	s.rt.With(s.validatePostEntry()).Post("/v1/entries", s.postEntry)
	s.rt.With(s.validateListEntries()).Get("/v1/entries", s.listEntries)
	s.rt.Get("/v1/entries/{id}", s.getEntry)
	s.rt.Post("/v1/entries/{id}/post", s.postEntryFinal)
	// Reports (v1)
	s.rt.With(s.validateReportQuery()).Get("/v1/reports/balance-sheet", s.balanceSheet)
	s.rt.With(s.validateReportQuery()).Get("/v1/reports/profit-loss", s.profitLoss)
	s.rt.With(s.validateReportQuery()).Get("/v1/reports/dashboard", s.dashboard)
	// Transaction screening (v1)
	s.rt.Post("/v1/transactions/validate", s.validateTransaction)
	// Dictionary (v1)
	s.rt.Get("/v1/dictionary/categories", s.dictionaryCategories)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
