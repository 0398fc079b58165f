/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the ProfitPro inventory server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env / environment, parse command-line flags
  2. Select and initialize the catalog store (memory or sqlite)
  3. Wire ledger, roster, reporting and the API handler
  4. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port   HTTP server port
  -store  Storage backend: "sqlite" or "memory"
  -db     SQLite database path (":memory:" allowed)
  -trend  Trend analysis endpoint URL (empty: local analyzer)
  -seed   Load the demo product catalog on startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  active requests, close the store, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/profitpro/inventory-engine/api"
	"github.com/profitpro/inventory-engine/config"
	"github.com/profitpro/inventory-engine/ledger"
	memstore "github.com/profitpro/inventory-engine/ledger/store"
	"github.com/profitpro/inventory-engine/report"
	"github.com/profitpro/inventory-engine/roster"
	"github.com/profitpro/inventory-engine/store/sqlite"
)

func main() {
	cfg := config.Load()

	port := flag.Int("port", cfg.Port, "HTTP server port")
	storeKind := flag.String("store", cfg.Store, `storage backend: "sqlite" or "memory"`)
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	trendURL := flag.String("trend", cfg.TrendURL, "trend analysis endpoint URL")
	seed := flag.Bool("seed", false, "load the demo product catalog on startup")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Storage backend selection: both adapters satisfy the same port, so
	// the rest of the wiring is identical either way.
	var catalog ledger.CatalogStore
	switch *storeKind {
	case "memory":
		catalog = memstore.NewMemory()
	case "sqlite":
		store, err := sqlite.New(*dbPath)
		if err != nil {
			logger.Fatal("failed to initialize database", zap.Error(err))
		}
		defer store.Close()
		catalog = store
	default:
		logger.Fatal("unknown store backend", zap.String("store", *storeKind))
	}

	if *seed {
		if err := ledger.SeedDemo(context.Background(), catalog); err != nil {
			logger.Warn("failed to seed demo catalog", zap.Error(err))
		}
	}

	var trend report.Analyzer
	if *trendURL != "" {
		analyzer := report.NewHTTPAnalyzer(*trendURL)
		defer analyzer.Close()
		trend = analyzer
	} else {
		trend = report.Static{}
	}

	led := ledger.NewService(catalog, logger)
	ros := roster.NewService(roster.NewMemoryIdentity(), catalog, logger)
	handler := api.NewHandler(catalog, led, ros, trend, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.Int("port", *port),
			zap.String("store", *storeKind),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
