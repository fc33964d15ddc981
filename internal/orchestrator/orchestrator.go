// Package orchestrator coordinates the screening run.
// It drives: target list → checkpoint filter → holders fetch → bounded
// wallet evaluation → outcome and checkpoint persistence.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"solana-trader-screener/internal/bullx"
	"solana-trader-screener/internal/domain"
	"solana-trader-screener/internal/idhash"
	"solana-trader-screener/internal/observability"
	"solana-trader-screener/internal/storage"
	"solana-trader-screener/internal/upstream"
)

// DefaultConcurrency is the wallet evaluation pool size per target.
const DefaultConcurrency = 7

// progressEvery is the completion cadence of OnProgress callbacks.
const progressEvery = 10

// TargetLoader supplies the ordered token list for a run.
type TargetLoader interface {
	Load(ctx context.Context) ([]domain.EvaluationTarget, error)
}

// HoldersAPI returns the top traders for a token.
// *bullx.Client satisfies it.
type HoldersAPI interface {
	TopTraders(ctx context.Context, tokenAddress string) ([]bullx.Trader, error)
}

// WalletEvaluator classifies one wallet. *decision.Evaluator satisfies it.
type WalletEvaluator interface {
	Evaluate(ctx context.Context, wallet string) (domain.ReasonCode, *domain.WalletStats, error)
}

// Orchestrator runs the screening pipeline over all pending targets.
type Orchestrator struct {
	targets     TargetLoader
	traders     HoldersAPI
	evaluator   WalletEvaluator
	outcomes    storage.OutcomeStore
	checkpoints storage.CheckpointStore
	evalLog     storage.EvaluationLogStore
	concurrency int

	onTargetStart func(name string)
	onProgress    func(completed, total, passed int)
	onFatal       func(message string)

	logger  *log.Logger
	verbose bool

	// stopCh is the single cooperative cancellation mechanism. Stop is
	// idempotent and callable before or during Run.
	stopCh   chan struct{}
	stopOnce sync.Once
	stopped  atomic.Bool

	// fatalFired guarantees OnFatal runs at most once per run even when
	// several workers hit throttling concurrently.
	fatalFired atomic.Bool
}

// Options for creating Orchestrator.
type Options struct {
	// Required collaborators
	Targets     TargetLoader
	Traders     HoldersAPI
	Evaluator   WalletEvaluator
	Outcomes    storage.OutcomeStore
	Checkpoints storage.CheckpointStore

	// Optional append-only run history
	EvalLog storage.EvaluationLogStore

	// Concurrency is the wallet pool size per target (default 7).
	Concurrency int

	// Callbacks (all optional)
	OnTargetStart func(name string)
	OnProgress    func(completed, total, passed int)
	OnFatal       func(message string)

	Logger  *log.Logger
	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		targets:       opts.Targets,
		traders:       opts.Traders,
		evaluator:     opts.Evaluator,
		outcomes:      opts.Outcomes,
		checkpoints:   opts.Checkpoints,
		evalLog:       opts.EvalLog,
		concurrency:   concurrency,
		onTargetStart: opts.OnTargetStart,
		onProgress:    opts.OnProgress,
		onFatal:       opts.OnFatal,
		logger:        logger,
		verbose:       opts.Verbose,
		stopCh:        make(chan struct{}),
	}
}

// RunResult contains results from one screening run.
type RunResult struct {
	RunID            string
	TargetsProcessed int
	WalletsEvaluated int
	WalletsPassed    int
	Stopped          bool
	Errors           []string
	Duration         time.Duration
}

// Stop requests cooperative cancellation. Idempotent, callable from any
// goroutine, before or during Run. In-flight sleeps and fetches abort at
// their next cancellation checkpoint; persistence still completes.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		o.stopped.Store(true)
		close(o.stopCh)
	})
}

// Run processes every target not yet checkpointed, in list order. A
// throttled upstream ends the run after the current target's checkpoint;
// any other per-target failure is recorded and the run proceeds.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-o.stopCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	result := &RunResult{}

	targets, err := o.targets.Load(runCtx)
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}

	pending, err := o.checkpoints.Unresolved(runCtx, targets)
	if err != nil {
		return nil, fmt.Errorf("filter checkpointed targets: %w", err)
	}
	result.RunID = idhash.ComputeRunID(start.UnixMilli(), len(pending))
	o.logf("run %s: %d targets pending (%d listed)", result.RunID[:8], len(pending), len(targets))

	for _, target := range pending {
		if o.stopped.Load() || runCtx.Err() != nil {
			break
		}

		fatal := o.processTarget(runCtx, target, result)
		if fatal {
			break
		}
	}

	result.Stopped = o.stopped.Load()
	result.Duration = time.Since(start)

	status := "completed"
	if result.Stopped {
		status = "stopped"
	}
	observability.RecordRun(status, result.Duration.Seconds())
	o.logf("run %s %s: %d targets, %d wallets, %d passed",
		result.RunID[:8], status, result.TargetsProcessed, result.WalletsEvaluated, result.WalletsPassed)

	return result, nil
}

// processTarget screens one token end to end and always finalizes it with
// a checkpoint, even when the run stops mid-way. Reports whether the
// failure was fatal for the whole run.
func (o *Orchestrator) processTarget(ctx context.Context, target domain.EvaluationTarget, result *RunResult) bool {
	if o.onTargetStart != nil {
		o.onTargetStart(target.Name)
	}
	o.logf("target %s (%s): fetching holders", target.Name, target.Address)

	// Outcome and checkpoint writes survive a stop: a cancelled run must
	// still land its partial counts.
	storeCtx := context.WithoutCancel(ctx)

	traders, err := o.traders.TopTraders(ctx, target.Address)
	if err != nil {
		fatal := upstream.IsThrottled(err)
		if fatal {
			o.fatal(fmt.Sprintf("holders API throttled for %s: %v", target.Name, err))
		} else {
			o.logger.Printf("target %s: holders fetch failed: %v", target.Name, err)
			result.Errors = append(result.Errors, fmt.Sprintf("target %s: %v", target.Name, err))
		}
		o.finalizeTarget(storeCtx, target, 0, 0, result)
		return fatal
	}

	deduped := dedupeTraders(traders)
	total := len(deduped)
	o.logf("target %s: %d wallets after dedupe (%d raw)", target.Name, total, len(traders))

	if total == 0 {
		o.finalizeTarget(storeCtx, target, 0, 0, result)
		return false
	}

	var (
		mu         sync.Mutex
		completed  int
		passed     int
		logEntries []*domain.EvaluationLogEntry
	)
	runID := result.RunID

	g := &errgroup.Group{}
	g.SetLimit(o.concurrency)
	for _, trader := range deduped {
		g.Go(func() error {
			// Worker start is a cancellation checkpoint: a stopped run
			// omits the wallet entirely, no ERROR row.
			if ctx.Err() != nil {
				return nil
			}

			outcome, fatalMsg := o.evaluateWallet(ctx, target, trader)
			if fatalMsg != "" {
				o.fatal(fatalMsg)
				return nil
			}
			if outcome == nil {
				return nil
			}

			wrotePass := false
			if err := o.outcomes.Upsert(storeCtx, outcome); err != nil {
				o.logger.Printf("target %s: record wallet %s: %v", target.Name, outcome.WalletAddress, err)
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Sprintf("record %s/%s: %v", outcome.WalletAddress, target.Address, err))
				mu.Unlock()
			} else {
				wrotePass = outcome.Reason == domain.ReasonPass
				observability.RecordWalletEvaluated(outcome.Reason.String())
			}

			mu.Lock()
			completed++
			if wrotePass {
				passed++
			}
			if o.evalLog != nil {
				logEntries = append(logEntries, &domain.EvaluationLogEntry{
					RunID:         runID,
					WalletAddress: outcome.WalletAddress,
					TokenAddress:  outcome.TokenAddress,
					TokenSymbol:   outcome.TokenSymbol,
					Reason:        outcome.Reason,
					PnLPct30d:     outcome.Stats.PnLPct30d,
					WinRate:       outcome.Stats.WinRate,
					EvaluatedAt:   outcome.EvaluatedAt,
				})
			}
			done, pass := completed, passed
			mu.Unlock()

			if o.onProgress != nil && done%progressEvery == 0 && done != total {
				o.onProgress(done, total, pass)
			}
			return nil
		})
	}
	g.Wait()

	if o.onProgress != nil {
		o.onProgress(completed, total, passed)
	}

	if o.evalLog != nil && len(logEntries) > 0 {
		if err := o.evalLog.Append(storeCtx, logEntries); err != nil {
			o.logger.Printf("target %s: append run history: %v", target.Name, err)
		}
	}

	result.WalletsEvaluated += completed
	result.WalletsPassed += passed
	o.finalizeTarget(storeCtx, target, int64(total), int64(passed), result)
	return false
}

// evaluateWallet classifies one wallet and builds its outcome row.
// Returns (nil, "") when the wallet is omitted (cancellation) and a
// non-empty message when throttling makes the run fatal.
func (o *Orchestrator) evaluateWallet(ctx context.Context, target domain.EvaluationTarget, trader bullx.Trader) (*domain.EvaluationOutcome, string) {
	reason, stats, err := o.evaluator.Evaluate(ctx, trader.WalletAddress)
	if err != nil {
		switch {
		case upstream.IsThrottled(err):
			return nil, fmt.Sprintf("stats API throttled for wallet %s: %v", trader.WalletAddress, err)
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return nil, ""
		default:
			o.logger.Printf("wallet %s: evaluation failed: %v", trader.WalletAddress, err)
			reason, stats = domain.ReasonError, &domain.WalletStats{}
		}
	} else {
		mergeTraderStats(stats, trader)
	}

	return &domain.EvaluationOutcome{
		WalletAddress: trader.WalletAddress,
		TokenAddress:  target.Address,
		TokenName:     target.Name,
		TokenSymbol:   target.Symbol(),
		Reason:        reason,
		Stats:         *stats,
		EvaluatedAt:   time.Now().UnixMilli(),
	}, ""
}

// finalizeTarget writes the checkpoint with whatever counts the target
// reached. Partial counts from a stopped run are valid and recorded.
func (o *Orchestrator) finalizeTarget(storeCtx context.Context, target domain.EvaluationTarget, walletCount, passedCount int64, result *RunResult) {
	cp := &domain.TargetCheckpoint{
		TokenAddress: target.Address,
		TokenName:    target.Name,
		TokenSymbol:  target.Symbol(),
		WalletCount:  walletCount,
		PassedCount:  passedCount,
		ProcessedAt:  time.Now().UnixMilli(),
	}
	if err := o.checkpoints.Upsert(storeCtx, cp); err != nil {
		o.logger.Printf("target %s: write checkpoint: %v", target.Name, err)
		result.Errors = append(result.Errors, fmt.Sprintf("checkpoint %s: %v", target.Address, err))
		return
	}
	observability.RecordTargetProcessed()
	result.TargetsProcessed++
	o.logf("target %s: checkpoint %d/%d", target.Name, passedCount, walletCount)
}

// fatal stops the run and fires OnFatal at most once.
func (o *Orchestrator) fatal(message string) {
	if o.fatalFired.CompareAndSwap(false, true) {
		o.logger.Printf("fatal: %s", message)
		observability.RecordThrottleStop()
		if o.onFatal != nil {
			o.onFatal(message)
		}
	}
	o.Stop()
}

// dedupeTraders drops entries with an empty wallet address and keeps the
// first occurrence of each address, preserving list order.
func dedupeTraders(traders []bullx.Trader) []bullx.Trader {
	seen := make(map[string]struct{}, len(traders))
	deduped := make([]bullx.Trader, 0, len(traders))
	for _, tr := range traders {
		if tr.WalletAddress == "" {
			continue
		}
		if _, dup := seen[tr.WalletAddress]; dup {
			continue
		}
		seen[tr.WalletAddress] = struct{}{}
		deduped = append(deduped, tr)
	}
	return deduped
}

// mergeTraderStats folds the holders-API trade figures into the stats
// record fetched from the stats API.
func mergeTraderStats(stats *domain.WalletStats, trader bullx.Trader) {
	stats.TotalBoughtUSD = trader.TotalBoughtUSD
	stats.TotalSoldUSD = trader.TotalSoldUSD
	stats.RealizedProfitUSD = trader.TotalSoldUSD - trader.TotalBoughtUSD
	stats.RealizedProfitRatio = profitRatio(trader.TotalBoughtUSD, trader.TotalSoldUSD)
	stats.HoldingAmount = trader.HoldingAmount
	stats.BuyTxCount = trader.BuyTransactions
	stats.SellTxCount = trader.SellTransactions
}

// profitRatio formats sold/bought as "1.25x"; "0.0x" when nothing bought.
func profitRatio(bought, sold float64) string {
	if bought == 0 {
		return "0.0x"
	}
	return fmt.Sprintf("%.2fx", sold/bought)
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.verbose {
		o.logger.Printf(format, args...)
	}
}
