// Package main provides the batch screening entry point.
// Executes: targets file → checkpoint filter → holders fetch → wallet
// evaluation → outcome persistence.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-trader-screener/internal/bullx"
	"solana-trader-screener/internal/decision"
	"solana-trader-screener/internal/gmgn"
	"solana-trader-screener/internal/observability"
	"solana-trader-screener/internal/orchestrator"
	"solana-trader-screener/internal/ratelimit"
	"solana-trader-screener/internal/solana"
	"solana-trader-screener/internal/storage"
	chstore "solana-trader-screener/internal/storage/clickhouse"
	"solana-trader-screener/internal/storage/memory"
	"solana-trader-screener/internal/storage/migrations"
	pgstore "solana-trader-screener/internal/storage/postgres"
	"solana-trader-screener/internal/targets"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	targetsPath := flag.String("targets", envOr("TARGETS_FILE", "targets.txt"), "Path to the targets file")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string for run history (empty to disable)")
	gmgnBase := flag.String("gmgn-base", envOr("GMGN_BASE_URL", gmgn.DefaultBaseURL), "Stats API base URL")
	bullxBase := flag.String("bullx-base", envOr("BULLX_BASE_URL", bullx.DefaultBaseURL), "Holders API base URL")
	interval := flag.Duration("request-interval", 200*time.Millisecond, "Minimum spacing between stats API requests")
	concurrency := flag.Int("concurrency", orchestrator.DefaultConcurrency, "Wallet evaluation pool size per target")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	verbose := flag.Bool("verbose", false, "Verbose output")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[screener] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx := context.Background()

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create upstream clients
	limiter := ratelimit.New(*interval)
	statsClient := gmgn.NewClient(
		gmgn.WithBaseURL(*gmgnBase),
		gmgn.WithLimiter(limiter),
		gmgn.WithHeaders(headersFromEnv("GMGN_COOKIE")),
	)
	holdersClient := bullx.NewClient(
		bullx.WithBaseURL(*bullxBase),
		bullx.WithHeaders(headersFromEnv("BULLX_COOKIE")),
		bullx.WithAddressFilter(solana.IsWalletAddress),
	)

	evaluator := decision.NewEvaluator(statsClient, decision.DefaultConfig())

	// Create orchestrator
	orch := orchestrator.New(orchestrator.Options{
		Targets:     targets.NewFile(*targetsPath),
		Traders:     holdersClient,
		Evaluator:   evaluator,
		Outcomes:    stores.outcomes,
		Checkpoints: stores.checkpoints,
		EvalLog:     stores.evalLog,
		Concurrency: *concurrency,
		OnTargetStart: func(name string) {
			fmt.Printf("=== %s ===\n", name)
		},
		OnProgress: func(completed, total, passed int) {
			fmt.Printf("  %d/%d wallets evaluated, %d passed\n", completed, total, passed)
		},
		OnFatal: func(message string) {
			fmt.Fprintf(os.Stderr, "Stopping run: %s\n", message)
		},
		Logger:  logger,
		Verbose: *verbose,
	})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, stopping after in-flight wallets...", sig)
		orch.Stop()

		sig = <-sigCh
		logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
		os.Exit(1)
	}()

	// Run
	result, err := orch.Run(ctx)
	if err != nil {
		logger.Fatalf("Run error: %v", err)
	}

	fmt.Printf("\nRun %s finished in %v:\n", result.RunID[:8], result.Duration.Round(time.Millisecond))
	fmt.Printf("  Targets:  %d\n", result.TargetsProcessed)
	fmt.Printf("  Wallets:  %d\n", result.WalletsEvaluated)
	fmt.Printf("  Passed:   %d\n", result.WalletsPassed)
	if result.Stopped {
		fmt.Println("  Status:   stopped early")
	}
	if len(result.Errors) > 0 {
		fmt.Printf("  Errors:   %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	// Print database totals
	stats, err := orch.DatabaseStats(ctx)
	if err != nil {
		logger.Printf("Database stats error: %v", err)
		return
	}
	fmt.Printf("\nDatabase: %d targets, %d wallets, %d passed\n",
		stats.TargetCount, stats.WalletCount, stats.PassedCount)
}

// screenerStores holds the storage implementations the run needs.
type screenerStores struct {
	outcomes    storage.OutcomeStore
	checkpoints storage.CheckpointStore
	evalLog     storage.EvaluationLogStore // nil when disabled
}

// createStores creates the stores and runs migrations where needed.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*screenerStores, func(), error) {
	if useMemory {
		mem := memory.NewStore()
		stores := &screenerStores{
			outcomes:    mem.Outcomes(),
			checkpoints: mem.Checkpoints(),
			evalLog:     memory.NewEvaluationLogStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	stores := &screenerStores{
		outcomes:    pgstore.NewOutcomeStore(pool),
		checkpoints: pgstore.NewCheckpointStore(pool),
	}
	cleanup := func() { pool.Close() }

	// ClickHouse run history is optional
	if clickhouseDSN != "" {
		chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}
		stores.evalLog = chstore.NewEvaluationLogStore(chConn)
		cleanup = func() {
			chConn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}

// headersFromEnv builds a Cookie header from the named env var.
func headersFromEnv(cookieVar string) map[string]string {
	cookie := os.Getenv(cookieVar)
	if cookie == "" {
		return nil
	}
	return map[string]string{"Cookie": cookie}
}

// envOr returns the env var value or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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
