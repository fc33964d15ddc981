// Package main provides the targets management CLI.
// Commands: list, add, remove, stats, passed, failed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"solana-trader-screener/internal/dexscreener"
	"solana-trader-screener/internal/domain"
	"solana-trader-screener/internal/solana"
	"solana-trader-screener/internal/storage"
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
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	ctx := context.Background()
	file := targets.NewFile(*targetsPath)

	var err error
	switch args[0] {
	case "list":
		err = runList(ctx, file)
	case "add":
		if len(args) < 2 {
			err = fmt.Errorf("usage: targets add <address> [name]")
			break
		}
		err = runAdd(ctx, file, args[1], strings.Join(args[2:], " "))
	case "remove":
		if len(args) != 2 {
			err = fmt.Errorf("usage: targets remove <address>")
			break
		}
		err = runRemove(ctx, file, *postgresDSN, args[1])
	case "stats":
		err = withStores(ctx, *postgresDSN, runStats)
	case "passed":
		err = withStores(ctx, *postgresDSN, runPassed)
	case "failed":
		err = withStores(ctx, *postgresDSN, runFailed)
	default:
		err = fmt.Errorf("unknown command: %s", args[0])
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: targets [flags] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  list                   List targets and their processing status")
	fmt.Fprintln(os.Stderr, "  add <address> [name]   Add a target (name resolved via DexScreener when omitted)")
	fmt.Fprintln(os.Stderr, "  remove <address>       Remove a target and purge its stored results")
	fmt.Fprintln(os.Stderr, "  stats                  Print stored screening totals")
	fmt.Fprintln(os.Stderr, "  passed                 List passed traders, best 30d PnL first")
	fmt.Fprintln(os.Stderr, "  failed                 Print rejection reason breakdown")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

// runList prints the targets file entries.
func runList(ctx context.Context, file *targets.File) error {
	list, err := file.Load(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Printf("No targets listed in %s\n", file.Path())
		return nil
	}

	for _, target := range list {
		fmt.Printf("%-46s %s\n", target.Address, target.Name)
	}
	fmt.Printf("\n%d targets\n", len(list))
	return nil
}

// runAdd validates the address and appends it to the targets file. When
// no name is given, DexScreener resolves the display name.
func runAdd(ctx context.Context, file *targets.File, address, name string) error {
	address = strings.TrimSpace(address)
	if !solana.ValidateAddress(address) {
		return fmt.Errorf("invalid token address: %s", address)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = dexscreener.NewResolver().ResolveName(ctx, address)
	}

	if err := file.Append(ctx, domain.EvaluationTarget{Address: address, Name: name}); err != nil {
		return err
	}

	fmt.Printf("Added %s (%s)\n", address, name)
	return nil
}

// runRemove drops the target from the list and, when a database is
// configured, purges its checkpoint and outcomes so a later re-add
// screens it fresh.
func runRemove(ctx context.Context, file *targets.File, postgresDSN, address string) error {
	address = strings.TrimSpace(address)

	listed := true
	if err := file.Remove(ctx, address); err != nil {
		if !errors.Is(err, targets.ErrTargetNotListed) {
			return err
		}
		listed = false
	}

	purged := false
	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		switch err := pgstore.NewMaintenance(pool).RemoveTarget(ctx, address); {
		case err == nil:
			purged = true
		case errors.Is(err, storage.ErrNotFound):
		default:
			return fmt.Errorf("purge target: %w", err)
		}
	}

	if !listed && !purged {
		return fmt.Errorf("target not found: %s", address)
	}

	fmt.Printf("Removed %s (listed=%v, purged=%v)\n", address, listed, purged)
	return nil
}

// withStores connects to PostgreSQL and runs fn with the stores.
func withStores(ctx context.Context, postgresDSN string, fn func(ctx context.Context, outcomes storage.OutcomeStore, checkpoints storage.CheckpointStore) error) error {
	if postgresDSN == "" {
		return fmt.Errorf("--postgres-dsn is required for this command")
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("run postgres migrations: %w", err)
	}

	return fn(ctx, pgstore.NewOutcomeStore(pool), pgstore.NewCheckpointStore(pool))
}

// runStats prints database totals and the most recent checkpoints.
func runStats(ctx context.Context, outcomes storage.OutcomeStore, checkpoints storage.CheckpointStore) error {
	stats, err := storage.CollectDatabaseStats(ctx, outcomes, checkpoints)
	if err != nil {
		return err
	}

	fmt.Printf("Targets processed: %d\n", stats.TargetCount)
	fmt.Printf("Wallets evaluated: %d\n", stats.WalletCount)
	fmt.Printf("Wallets passed:    %d\n", stats.PassedCount)

	if len(stats.RecentTargets) > 0 {
		fmt.Println("\nRecent targets:")
		for _, cp := range stats.RecentTargets {
			fmt.Printf("  %-46s %-20s %d/%d passed  %s\n",
				cp.TokenAddress, cp.TokenName, cp.PassedCount, cp.WalletCount,
				time.UnixMilli(cp.ProcessedAt).UTC().Format(time.RFC3339))
		}
	}
	return nil
}

// runPassed lists passed traders, best 30d PnL first.
func runPassed(ctx context.Context, outcomes storage.OutcomeStore, _ storage.CheckpointStore) error {
	passed, err := outcomes.ListPassed(ctx, 100)
	if err != nil {
		return err
	}
	if len(passed) == 0 {
		fmt.Println("No passed traders yet.")
		return nil
	}

	fmt.Printf("%-46s %-10s %10s %9s %12s %8s\n",
		"WALLET", "TOKEN", "PNL30D", "WINRATE", "REALIZED", "RATIO")
	for _, o := range passed {
		fmt.Printf("%-46s %-10s %10.4f %9.4f %12.2f %8s\n",
			o.WalletAddress, o.TokenSymbol,
			o.Stats.PnLPct30d, o.Stats.WinRate,
			o.Stats.RealizedProfitUSD, o.Stats.RealizedProfitRatio)
	}
	fmt.Printf("\n%d passed traders\n", len(passed))
	return nil
}

// runFailed prints the rejection reason breakdown, largest first.
func runFailed(ctx context.Context, outcomes storage.OutcomeStore, _ storage.CheckpointStore) error {
	counts, err := outcomes.CountByReason(ctx)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		fmt.Println("No rejections recorded.")
		return nil
	}

	type row struct {
		reason domain.ReasonCode
		count  int64
	}
	rows := make([]row, 0, len(counts))
	for reason, count := range counts {
		rows = append(rows, row{reason, count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].reason < rows[j].reason
	})

	for _, r := range rows {
		fmt.Printf("%-20s %d\n", r.reason, r.count)
	}
	return nil
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
