package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/tallybook/tally/internal/coa"
	httpapi "github.com/tallybook/tally/internal/httpapi/v1"
	"github.com/tallybook/tally/internal/ledger"
	"github.com/tallybook/tally/internal/storage/memory"
	pgstore "github.com/tallybook/tally/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logger (slog to stdout). Level via LOG_LEVEL; format via LOG_FORMAT (json|text, default json)
	logger := buildLoggerFromEnv()
	slog.SetDefault(logger)

	largeAmount := int64FromEnv("LARGE_AMOUNT_THRESHOLD_MINOR", 0)
	snapshotTTL := durationFromEnv("SNAPSHOT_TTL", 0)

	var srvMux http.Handler
	var closeFn func()

	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		// Use Postgres store when DATABASE_URL is provided
		pg, err := pgstore.Open(ctx, dsn)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFn = func() { pg.Close() }
		if devSeedEnabled() {
			org, accs, err := pg.SeedDev(ctx)
			if err != nil {
				logger.Error("dev seed failed", "err", err)
			} else {
				logDevSeed(logger, "postgres", org, accs)
				printDevSeedBanner(org, accs)
			}
		}
		snapshots := coa.NewSnapshotCache(pg, snapshotTTL)
		srvMux = httpapi.New(pg, pg, pg, pg, pg, pg, snapshots, largeAmount, logger).Handler()
		logger.Info("storage backend: postgres")
	} else {
		// Default to in-memory store with a small dev seed
		store := memory.New()
		org, accs := seedMemory(store)
		logDevSeed(logger, "memory", org, accs)
		printDevSeedBanner(org, accs)
		snapshots := coa.NewSnapshotCache(store, snapshotTTL)
		srvMux = httpapi.New(store, store, store, store, store, store, snapshots, largeAmount, logger).Handler()
		logger.Info("storage backend: memory")
	}

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           srvMux,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("tally service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

// seedMemory loads a demo org and a small standard chart into the in-memory store.
func seedMemory(store *memory.Store) (ledger.Org, []ledger.Account) {
	org := ledger.Org{ID: uuid.New(), Name: "Demo Books", Currency: "USD"}
	store.SeedOrg(org)
	chart := []ledger.Account{
		{Code: "1100", Name: "Cash", Category: ledger.CategoryAssets},
		{Code: "1300", Name: "Accounts Receivable", Category: ledger.CategoryAssets},
		{Code: "1600", Name: "Equipment", Category: ledger.CategoryAssets},
		{Code: "2100", Name: "Accounts Payable", Category: ledger.CategoryLiabilities},
		{Code: "3100", Name: "Owner Capital", Category: ledger.CategoryEquity, System: true},
		{Code: "4100", Name: "Sales Revenue", Category: ledger.CategoryRevenue},
		{Code: "5100", Name: "Cost of Goods Sold", Category: ledger.CategoryExpenses},
		{Code: "5300", Name: "Rent Expense", Category: ledger.CategoryExpenses},
	}
	out := make([]ledger.Account, 0, len(chart))
	for _, a := range chart {
		a.ID = uuid.New()
		a.OrgID = org.ID
		a.Level = 1
		a.Postable = true
		a.Active = true
		store.SeedAccount(a)
		out = append(out, a)
	}
	return org, out
}

func devSeedEnabled() bool {
	dev := strings.ToLower(strings.TrimSpace(os.Getenv("DEV_SEED")))
	return dev == "1" || dev == "true" || dev == "yes"
}

// logDevSeed emits structured logs with useful IDs
func logDevSeed(l *slog.Logger, backend string, org ledger.Org, accs []ledger.Account) {
	ids := map[string]string{}
	for _, a := range accs {
		switch a.Code {
		case "1100":
			ids["cash_account_id"] = a.ID.String()
		case "4100":
			ids["sales_account_id"] = a.ID.String()
		case "5300":
			ids["rent_account_id"] = a.ID.String()
		}
	}
	l.Info("DEV seed ("+backend+")", "org_id", org.ID.String(), "ids", ids)
}

// printDevSeedBanner prints a simple banner to stdout for easy copy/paste of IDs
func printDevSeedBanner(org ledger.Org, accs []ledger.Account) {
	fmt.Println("==================== DEV SEED ====================")
	fmt.Printf("org_id: %s\n", org.ID.String())
	for _, a := range accs {
		fmt.Printf("%s %s: %s\n", a.Code, a.Name, a.ID.String())
	}
	fmt.Println("==================================================")
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLoggerFromEnv() *slog.Logger {
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))
	format := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func int64FromEnv(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return v
}

func durationFromEnv(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return v
}
