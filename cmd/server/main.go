// Package main provides the screening service:
// - HTTP API: targets management, run control, stored results
// - Live feed: WebSocket progress broadcast during runs
// - Observability: health, status, Prometheus metrics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"solana-trader-screener/internal/bullx"
	"solana-trader-screener/internal/decision"
	"solana-trader-screener/internal/dexscreener"
	"solana-trader-screener/internal/domain"
	"solana-trader-screener/internal/feed"
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

// Server holds all components of the screening service.
type Server struct {
	// Configuration
	targetsFile *targets.File
	interval    time.Duration
	concurrency int

	// Stores
	outcomes    storage.OutcomeStore
	checkpoints storage.CheckpointStore
	remover     storage.TargetRemover
	evalLog     storage.EvaluationLogStore

	// Components
	statsClient   *gmgn.Client
	holdersClient *bullx.Client
	resolver      *dexscreener.Resolver
	hub           *feed.Hub
	logger        *log.Logger

	// State
	mu         sync.Mutex
	running    bool
	current    *orchestrator.Orchestrator
	lastResult *orchestrator.RunResult
	lastRunAt  time.Time
	started    time.Time
	runs       int
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("SCREENER_ADDR", ":8080"), "HTTP listen address")
	targetsPath := flag.String("targets", envOr("TARGETS_FILE", "targets.txt"), "Path to the targets file")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string for run history (empty to disable)")
	gmgnBase := flag.String("gmgn-base", envOr("GMGN_BASE_URL", gmgn.DefaultBaseURL), "Stats API base URL")
	bullxBase := flag.String("bullx-base", envOr("BULLX_BASE_URL", bullx.DefaultBaseURL), "Holders API base URL")
	interval := flag.Duration("request-interval", 200*time.Millisecond, "Minimum spacing between stats API requests")
	concurrency := flag.Int("concurrency", orchestrator.DefaultConcurrency, "Wallet evaluation pool size per target")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx := context.Background()

	// Create stores
	outcomes, checkpoints, remover, evalLog, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create upstream clients
	limiter := ratelimit.New(*interval)
	server := &Server{
		targetsFile: targets.NewFile(*targetsPath),
		interval:    *interval,
		concurrency: *concurrency,
		outcomes:    outcomes,
		checkpoints: checkpoints,
		remover:     remover,
		evalLog:     evalLog,
		statsClient: gmgn.NewClient(
			gmgn.WithBaseURL(*gmgnBase),
			gmgn.WithLimiter(limiter),
			gmgn.WithHeaders(headersFromEnv("GMGN_COOKIE")),
		),
		holdersClient: bullx.NewClient(
			bullx.WithBaseURL(*bullxBase),
			bullx.WithHeaders(headersFromEnv("BULLX_COOKIE")),
			bullx.WithAddressFilter(solana.IsWalletAddress),
		),
		resolver: dexscreener.NewResolver(),
		hub:      feed.NewHub(nil),
		logger:   logger,
		started:  time.Now(),
	}
	defer server.hub.Close()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		server.stopRun()

		sig = <-sigCh
		logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
		os.Exit(1)
	}()

	logger.Printf("Starting HTTP server on %s", *addr)
	if err := http.ListenAndServe(*addr, server.routes()); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}
}

// createStores creates the stores and runs migrations where needed.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (
	storage.OutcomeStore,
	storage.CheckpointStore,
	storage.TargetRemover,
	storage.EvaluationLogStore,
	func(),
	error,
) {
	if useMemory {
		mem := memory.NewStore()
		return mem.Outcomes(), mem.Checkpoints(), mem, memory.NewEvaluationLogStore(), func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}
	cleanup := func() { pool.Close() }

	// ClickHouse run history is optional
	var evalLog storage.EvaluationLogStore
	if clickhouseDSN != "" {
		chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, nil, nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}
		evalLog = chstore.NewEvaluationLogStore(chConn)
		cleanup = func() {
			chConn.Close()
			pool.Close()
		}
	}

	return pgstore.NewOutcomeStore(pool), pgstore.NewCheckpointStore(pool),
		pgstore.NewMaintenance(pool), evalLog, cleanup, nil
}

// routes builds the HTTP mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status and stored results
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/passed", s.handlePassed)

	// Targets management
	mux.HandleFunc("/api/targets", s.handleTargets)

	// Run control
	mux.HandleFunc("/api/run", s.handleRun)
	mux.HandleFunc("/api/stop", s.handleStop)

	// Live progress feed
	mux.Handle("/api/feed", s.hub)

	return mux
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status      string     `json:"status"`
	Uptime      string     `json:"uptime"`
	Running     bool       `json:"running"`
	Runs        int        `json:"runs"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	LastRunID   string     `json:"last_run_id,omitempty"`
	Subscribers int        `json:"feed_subscribers"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:      "running",
		Uptime:      time.Since(s.started).String(),
		Running:     s.running,
		Runs:        s.runs,
		Subscribers: s.hub.SubscriberCount(),
	}
	if s.lastResult != nil {
		resp.LastRunID = s.lastResult.RunID
		t := s.lastRunAt
		resp.LastRunAt = &t
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// handleStats returns stored screening totals.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := storage.CollectDatabaseStats(r.Context(), s.outcomes, s.checkpoints)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("collect stats: %v", err))
		return
	}

	type recentTarget struct {
		TokenAddress string `json:"token_address"`
		TokenName    string `json:"token_name"`
		TokenSymbol  string `json:"token_symbol"`
		WalletCount  int64  `json:"wallet_count"`
		PassedCount  int64  `json:"passed_count"`
		ProcessedAt  int64  `json:"processed_at"`
	}
	resp := struct {
		TargetCount   int64          `json:"target_count"`
		WalletCount   int64          `json:"wallet_count"`
		PassedCount   int64          `json:"passed_count"`
		RecentTargets []recentTarget `json:"recent_targets"`
	}{
		TargetCount:   stats.TargetCount,
		WalletCount:   stats.WalletCount,
		PassedCount:   stats.PassedCount,
		RecentTargets: make([]recentTarget, 0, len(stats.RecentTargets)),
	}
	for _, cp := range stats.RecentTargets {
		resp.RecentTargets = append(resp.RecentTargets, recentTarget{
			TokenAddress: cp.TokenAddress,
			TokenName:    cp.TokenName,
			TokenSymbol:  cp.TokenSymbol,
			WalletCount:  cp.WalletCount,
			PassedCount:  cp.PassedCount,
			ProcessedAt:  cp.ProcessedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// handlePassed returns passed traders, best 30d PnL first.
func (s *Server) handlePassed(w http.ResponseWriter, r *http.Request) {
	passed, err := s.outcomes.ListPassed(r.Context(), 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("list passed: %v", err))
		return
	}

	type passedRow struct {
		WalletAddress string  `json:"wallet_address"`
		TokenAddress  string  `json:"token_address"`
		TokenSymbol   string  `json:"token_symbol"`
		PnLPct30d     float64 `json:"pnl_pct_30d"`
		WinRate       float64 `json:"win_rate"`
		RealizedUSD   float64 `json:"realized_profit_usd"`
		Ratio         string  `json:"realized_profit_ratio"`
	}
	rows := make([]passedRow, 0, len(passed))
	for _, o := range passed {
		rows = append(rows, passedRow{
			WalletAddress: o.WalletAddress,
			TokenAddress:  o.TokenAddress,
			TokenSymbol:   o.TokenSymbol,
			PnLPct30d:     o.Stats.PnLPct30d,
			WinRate:       o.Stats.WinRate,
			RealizedUSD:   o.Stats.RealizedProfitUSD,
			Ratio:         o.Stats.RealizedProfitRatio,
		})
	}

	writeJSON(w, http.StatusOK, rows)
}

// handleTargets dispatches targets management by method.
func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTargets(w, r)
	case http.MethodPost:
		s.addTarget(w, r)
	case http.MethodDelete:
		s.removeTarget(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// listTargets returns the targets file entries with checkpoint status.
func (s *Server) listTargets(w http.ResponseWriter, r *http.Request) {
	list, err := s.targetsFile.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("load targets: %v", err))
		return
	}

	type targetRow struct {
		Address   string `json:"address"`
		Name      string `json:"name"`
		Processed bool   `json:"processed"`
	}
	rows := make([]targetRow, 0, len(list))
	for _, target := range list {
		processed := true
		if _, err := s.checkpoints.Get(r.Context(), target.Address); err != nil {
			processed = false
		}
		rows = append(rows, targetRow{Address: target.Address, Name: target.Name, Processed: processed})
	}

	writeJSON(w, http.StatusOK, rows)
}

// addTarget validates the address, resolves its display name, and appends
// it to the targets file.
func (s *Server) addTarget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
		Name    string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Address = strings.TrimSpace(req.Address)
	if !solana.ValidateAddress(req.Address) {
		writeError(w, http.StatusBadRequest, "invalid token address")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = s.resolver.ResolveName(r.Context(), req.Address)
	}

	target := domain.EvaluationTarget{Address: req.Address, Name: name}
	if err := s.targetsFile.Append(r.Context(), target); err != nil {
		if errors.Is(err, targets.ErrDuplicateTarget) {
			writeError(w, http.StatusConflict, "target already listed")
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("append target: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"address": target.Address, "name": target.Name})
}

// removeTarget drops the target from the list and purges its stored
// results so a later re-add screens it fresh.
func (s *Server) removeTarget(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.URL.Query().Get("address"))
	if address == "" {
		writeError(w, http.StatusBadRequest, "address query parameter required")
		return
	}

	listed := true
	if err := s.targetsFile.Remove(r.Context(), address); err != nil {
		if !errors.Is(err, targets.ErrTargetNotListed) {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("remove target: %v", err))
			return
		}
		listed = false
	}

	purged := true
	if err := s.remover.RemoveTarget(r.Context(), address); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("purge target: %v", err))
			return
		}
		purged = false
	}

	if !listed && !purged {
		writeError(w, http.StatusNotFound, "target not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": listed, "purged": purged})
}

// handleRun starts a screening run in the background.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "a run is already in progress")
		return
	}

	orch := s.newOrchestrator()
	s.current = orch
	s.running = true
	s.mu.Unlock()

	go s.executeRun(orch)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// newOrchestrator wires a fresh orchestrator with feed broadcasting.
// Orchestrators are single-run: Stop is permanent, so every run gets its
// own instance.
func (s *Server) newOrchestrator() *orchestrator.Orchestrator {
	var currentTarget string
	var targetMu sync.Mutex

	return orchestrator.New(orchestrator.Options{
		Targets:     s.targetsFile,
		Traders:     s.holdersClient,
		Evaluator:   decision.NewEvaluator(s.statsClient, decision.DefaultConfig()),
		Outcomes:    s.outcomes,
		Checkpoints: s.checkpoints,
		EvalLog:     s.evalLog,
		Concurrency: s.concurrency,
		OnTargetStart: func(name string) {
			targetMu.Lock()
			currentTarget = name
			targetMu.Unlock()
			s.hub.Broadcast(feed.Event{Type: feed.EventTargetStarted, Target: name})
		},
		OnProgress: func(completed, total, passed int) {
			targetMu.Lock()
			name := currentTarget
			targetMu.Unlock()
			s.hub.Broadcast(feed.Event{
				Type:      feed.EventProgress,
				Target:    name,
				Completed: completed,
				Total:     total,
				Passed:    passed,
			})
		},
		OnFatal: func(message string) {
			s.hub.Broadcast(feed.Event{Type: feed.EventRunStopped, Message: message})
		},
		Logger: s.logger,
	})
}

// executeRun drives one run to completion and records its result.
func (s *Server) executeRun(orch *orchestrator.Orchestrator) {
	s.hub.Broadcast(feed.Event{Type: feed.EventRunStarted})

	result, err := orch.Run(context.Background())

	s.mu.Lock()
	s.running = false
	s.current = nil
	s.lastRunAt = time.Now()
	s.runs++
	if result != nil {
		s.lastResult = result
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Printf("Run error: %v", err)
		s.hub.Broadcast(feed.Event{Type: feed.EventRunStopped, Message: err.Error()})
		return
	}

	s.logger.Printf("Run %s finished: %d targets, %d wallets, %d passed",
		result.RunID[:8], result.TargetsProcessed, result.WalletsEvaluated, result.WalletsPassed)
	s.hub.Broadcast(feed.Event{
		Type:      feed.EventRunFinished,
		Completed: result.WalletsEvaluated,
		Total:     result.WalletsEvaluated,
		Passed:    result.WalletsPassed,
	})
}

// handleStop requests cooperative cancellation of the current run.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if !s.stopRun() {
		writeError(w, http.StatusConflict, "no run in progress")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopping"})
}

// stopRun stops the current run if one is active.
func (s *Server) stopRun() bool {
	s.mu.Lock()
	orch := s.current
	s.mu.Unlock()

	if orch == nil {
		return false
	}
	orch.Stop()
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
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
