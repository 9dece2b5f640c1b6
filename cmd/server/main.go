// Package main runs the simulation as an HTTP service:
// - JSON command API and state snapshots
// - websocket push of round summaries and notices
// - Prometheus metrics
// - optional cron-driven automatic rounds
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/immortaldarkveil/Symulator/internal/api"
	"github.com/immortaldarkveil/Symulator/internal/config"
	"github.com/immortaldarkveil/Symulator/internal/game"
	"github.com/immortaldarkveil/Symulator/internal/ledger"
	"github.com/immortaldarkveil/Symulator/internal/orchestrator"
	"github.com/immortaldarkveil/Symulator/internal/random"
	"github.com/immortaldarkveil/Symulator/internal/scheduler"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Environment provides the defaults for every flag
	rt, err := config.LoadRuntime()
	if err != nil {
		logger.Fatalf("Invalid environment: %v", err)
	}

	addr := flag.String("addr", rt.Addr, "HTTP listen address")
	catalogPath := flag.String("catalog", rt.CatalogPath, "Catalog YAML (empty uses the built-in catalog)")
	seed := flag.Int64("seed", rt.Seed, "Random seed (0 picks one)")
	cooldown := flag.Duration("cooldown", rt.Cooldown, "Minimum time between rounds")
	autoRound := flag.String("auto-round", rt.AutoRoundCron, "Cron spec (with seconds) for automatic rounds")
	clamp := flag.Bool("clamp-penalty", rt.ClampPenalty, "Clamp negative reward multipliers at zero")
	store := flag.String("store", rt.Store, "Round ledger backend: memory, postgres, sqlite")
	postgresDSN := flag.String("postgres-dsn", rt.PostgresDSN, "PostgreSQL connection string")
	sqlitePath := flag.String("sqlite-path", rt.SQLitePath, "SQLite database path")
	clickhouseDSN := flag.String("clickhouse-dsn", rt.ClickHouseDSN, "ClickHouse connection string for network snapshots")

	flag.Parse()

	rt.Addr = *addr
	rt.CatalogPath = *catalogPath
	rt.Seed = *seed
	rt.Cooldown = *cooldown
	rt.AutoRoundCron = *autoRound
	rt.ClampPenalty = *clamp
	rt.Store = strings.ToLower(*store)
	rt.PostgresDSN = *postgresDSN
	rt.SQLitePath = *sqlitePath
	rt.ClickHouseDSN = *clickhouseDSN
	if err := rt.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	catalog, err := config.LoadCatalogOrDefault(rt.CatalogPath)
	if err != nil {
		logger.Fatalf("Load catalog: %v", err)
	}

	if rt.Seed == 0 {
		if rt.Seed, err = random.NewSeed(); err != nil {
			logger.Fatalf("Generate seed: %v", err)
		}
	}
	logger.Printf("Seed: %d", rt.Seed)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	// Create stores
	stores, cleanup, err := ledger.OpenStores(ctx, rt, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	controller, err := game.NewController(game.Options{
		Catalog:      catalog,
		Seed:         rt.Seed,
		ClampPenalty: rt.ClampPenalty,
		Cooldown:     rt.Cooldown,
		Logger:       log.New(os.Stdout, "[game] ", log.LstdFlags),
	})
	if err != nil {
		logger.Fatalf("Create controller: %v", err)
	}

	recorder, err := ledger.NewRecorder(ledger.RecorderOptions{
		Rounds:    stores.Rounds,
		Snapshots: stores.Snapshots,
		Backend:   stores.Backend,
	})
	if err != nil {
		logger.Fatalf("Create recorder: %v", err)
	}

	hub := api.NewHub(log.New(os.Stdout, "[ws] ", log.LstdFlags))
	go hub.Run(ctx)

	orch, err := orchestrator.New(orchestrator.Options{
		Controller: controller,
		Recorder:   recorder,
		Publisher:  hub,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatalf("Create orchestrator: %v", err)
	}

	if rt.AutoRoundCron != "" {
		sched, err := scheduler.NewScheduler(ctx, rt.AutoRoundCron, orch, log.New(os.Stdout, "[scheduler] ", log.LstdFlags))
		if err != nil {
			logger.Fatalf("Create scheduler: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	logger.Printf("Session %s started", controller.SessionID())

	server := api.NewServer(orch, hub, logger)
	if err := server.ListenAndServe(ctx, rt.Addr); err != nil && err != context.Canceled {
		logger.Printf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
