// Package main runs a headless batch simulation: apply a deposit plan,
// optionally register as operator, settle N rounds and print the result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/immortaldarkveil/Symulator/internal/config"
	"github.com/immortaldarkveil/Symulator/internal/game"
	"github.com/immortaldarkveil/Symulator/internal/ledger"
	"github.com/immortaldarkveil/Symulator/internal/orchestrator"
	"github.com/immortaldarkveil/Symulator/internal/random"
	"github.com/immortaldarkveil/Symulator/internal/reporting"
)

func main() {
	rt, err := config.LoadRuntime()
	if err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}

	// Parse flags
	seed := flag.Int64("seed", rt.Seed, "Random seed (0 picks one)")
	catalogPath := flag.String("catalog", rt.CatalogPath, "Catalog YAML (empty uses the built-in catalog)")
	deposits := flag.String("deposits", "vault-01=1000", "Comma-separated vault=amount deposits")
	asOperator := flag.Bool("operator", false, "Register as operator before the first round")
	acceptTasks := flag.Bool("accept-tasks", false, "Accept every eligible task offered between rounds")
	rounds := flag.Int("rounds", 10, "Number of rounds to settle")
	clamp := flag.Bool("clamp-penalty", rt.ClampPenalty, "Clamp negative reward multipliers at zero")

	// Storage
	persist := flag.Bool("persist", false, "Persist the ledger to the configured store")
	store := flag.String("store", rt.Store, "Round ledger backend when persisting: memory, postgres, sqlite")
	postgresDSN := flag.String("postgres-dsn", rt.PostgresDSN, "PostgreSQL connection string")
	sqlitePath := flag.String("sqlite-path", rt.SQLitePath, "SQLite database path")
	clickhouseDSN := flag.String("clickhouse-dsn", rt.ClickHouseDSN, "ClickHouse connection string")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")
	reportDir := flag.String("report-dir", "", "Write session_report.md and rounds.csv to this directory")
	verbose := flag.Bool("verbose", false, "Log every command")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[simulate] ", log.LstdFlags)

	plan := orchestrator.Plan{
		Operator:    *asOperator,
		AcceptTasks: *acceptTasks,
		Rounds:      *rounds,
	}
	if plan.Deposits, err = parseDeposits(*deposits); err != nil {
		logger.Fatalf("Invalid --deposits: %v", err)
	}

	catalog, err := config.LoadCatalogOrDefault(*catalogPath)
	if err != nil {
		logger.Fatalf("Load catalog: %v", err)
	}

	if *seed == 0 {
		if *seed, err = random.NewSeed(); err != nil {
			logger.Fatalf("Generate seed: %v", err)
		}
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Without --persist the ledger lives in memory and only feeds the report.
	storeCfg := &config.Runtime{Store: config.StoreMemory}
	if *persist {
		storeCfg = &config.Runtime{
			Store:         strings.ToLower(*store),
			PostgresDSN:   *postgresDSN,
			SQLitePath:    *sqlitePath,
			ClickHouseDSN: *clickhouseDSN,
		}
		if err := storeCfg.Validate(); err != nil {
			logger.Fatalf("Invalid storage configuration: %v", err)
		}
	}
	stores, cleanup, err := ledger.OpenStores(ctx, storeCfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	gameLogger := log.New(io.Discard, "", 0)
	if *verbose {
		gameLogger = log.New(os.Stderr, "[game] ", log.LstdFlags)
	}

	src := random.NewSeeded(*seed)
	controller, err := game.NewController(game.Options{
		Catalog:      catalog,
		Source:       src,
		Seed:         src.Seed(),
		ClampPenalty: *clamp,
		Logger:       gameLogger,
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

	orch, err := orchestrator.New(orchestrator.Options{Controller: controller, Recorder: recorder, Logger: logger})
	if err != nil {
		logger.Fatalf("Create orchestrator: %v", err)
	}

	logger.Printf("Running %d rounds: seed=%d session=%s", plan.Rounds, src.Seed(), controller.SessionID())

	result, err := orch.Run(ctx, plan)
	if err != nil {
		logger.Fatalf("simulation failed: %v", err)
	}

	if *reportDir != "" {
		if err := writeReports(ctx, *reportDir, result.SessionID, stores); err != nil {
			logger.Fatalf("write reports: %v", err)
		}
		logger.Printf("Reports written to %s/", *reportDir)
	}

	// Output result
	if *outputJSON {
		output, _ := json.MarshalIndent(jsonResult(src.Seed(), result), "", "  ")
		fmt.Println(string(output))
	} else {
		printResult(src.Seed(), result)
	}
}

// parseDeposits parses "vault-01=1000,vault-02=250".
func parseDeposits(s string) ([]orchestrator.PlannedDeposit, error) {
	var out []orchestrator.PlannedDeposit
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 || strings.TrimSpace(kv[0]) == "" {
			return nil, fmt.Errorf("expected vault=amount, got %q", part)
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("amount for %s: %w", kv[0], err)
		}
		out = append(out, orchestrator.PlannedDeposit{VaultID: strings.TrimSpace(kv[0]), Amount: amount})
	}
	return out, nil
}

func writeReports(ctx context.Context, dir, sessionID string, stores *ledger.Stores) error {
	report, err := reporting.NewGenerator(stores.Rounds, stores.Snapshots).Generate(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "session_report.md"), []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "rounds.csv"), []byte(reporting.RenderCSV(report.Rounds)), 0o644)
}

type roundJSON struct {
	Round        int     `json:"round"`
	VaultRewards float64 `json:"vault_rewards"`
	TaskRewards  float64 `json:"task_rewards"`
	TotalReward  float64 `json:"total_reward"`
	CapitalAfter float64 `json:"capital_after"`
	Slashes      int     `json:"slashes"`
}

type resultJSON struct {
	Seed          int64       `json:"seed"`
	SessionID     string      `json:"session_id"`
	RoundsPlayed  int         `json:"rounds_played"`
	FinalCapital  float64     `json:"final_capital"`
	TotalEarnings float64     `json:"total_earnings"`
	GameOver      bool        `json:"game_over"`
	Rounds        []roundJSON `json:"rounds"`
	Errors        []string    `json:"errors,omitempty"`
}

func jsonResult(seed int64, r *orchestrator.RunResult) resultJSON {
	out := resultJSON{
		Seed:          seed,
		SessionID:     r.SessionID,
		RoundsPlayed:  r.RoundsPlayed,
		FinalCapital:  r.FinalCapital,
		TotalEarnings: r.TotalEarnings,
		GameOver:      r.GameOver,
		Errors:        r.Errors,
	}
	for _, s := range r.Summaries {
		out.Rounds = append(out.Rounds, roundJSON{
			Round:        s.Round,
			VaultRewards: s.VaultRewards,
			TaskRewards:  s.TaskRewards,
			TotalReward:  s.TotalReward,
			CapitalAfter: s.CapitalAfter,
			Slashes:      s.Slashes,
		})
	}
	return out
}

// printResult outputs a human-readable run summary.
func printResult(seed int64, r *orchestrator.RunResult) {
	fmt.Println()
	fmt.Println("=== Simulation Result ===")
	fmt.Printf("Seed:               %d\n", seed)
	fmt.Printf("Session:            %s\n", r.SessionID)
	fmt.Printf("Rounds Played:      %d\n", r.RoundsPlayed)
	fmt.Printf("Final Capital:      $%.2f\n", r.FinalCapital)
	fmt.Printf("Total Earnings:     $%.2f\n", r.TotalEarnings)
	fmt.Printf("Game Over:          %t\n", r.GameOver)
	fmt.Println()

	fmt.Println("Rounds:")
	for _, s := range r.Summaries {
		fmt.Printf("  #%-4d vaults=%9.2f tasks=%7.2f total=%9.2f capital=%10.2f slashes=%d\n",
			s.Round, s.VaultRewards, s.TaskRewards, s.TotalReward, s.CapitalAfter, s.Slashes)
	}

	if len(r.Errors) > 0 {
		fmt.Println()
		fmt.Println("Rejected commands:")
		for _, e := range r.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
}
