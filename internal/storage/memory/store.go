// Package memory provides in-memory storage implementations for tests and
// the --use-memory mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"solana-trader-screener/internal/domain"
	"solana-trader-screener/internal/storage"
)

// Store holds outcomes and checkpoints behind one lock so RemoveTarget can
// purge both atomically. The per-entity stores are views over it.
type Store struct {
	mu          sync.RWMutex
	outcomes    map[outcomeKey]*domain.EvaluationOutcome
	checkpoints map[string]*domain.TargetCheckpoint // keyed by token_address
}

type outcomeKey struct {
	wallet string
	token  string
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		outcomes:    make(map[outcomeKey]*domain.EvaluationOutcome),
		checkpoints: make(map[string]*domain.TargetCheckpoint),
	}
}

// Outcomes returns the storage.OutcomeStore view.
func (s *Store) Outcomes() *OutcomeStore {
	return &OutcomeStore{store: s}
}

// Checkpoints returns the storage.CheckpointStore view.
func (s *Store) Checkpoints() *CheckpointStore {
	return &CheckpointStore{store: s}
}

// RemoveTarget purges the checkpoint and all outcomes for the token under
// one lock. Returns ErrNotFound when the token had neither.
func (s *Store) RemoveTarget(_ context.Context, tokenAddress string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, hadCheckpoint := s.checkpoints[tokenAddress]
	delete(s.checkpoints, tokenAddress)

	hadOutcomes := false
	for key := range s.outcomes {
		if key.token == tokenAddress {
			delete(s.outcomes, key)
			hadOutcomes = true
		}
	}

	if !hadCheckpoint && !hadOutcomes {
		return storage.ErrNotFound
	}
	return nil
}

// OutcomeStore is the in-memory implementation of storage.OutcomeStore.
type OutcomeStore struct {
	store *Store
}

// CheckpointStore is the in-memory implementation of storage.CheckpointStore.
type CheckpointStore struct {
	store *Store
}

// Compile-time interface checks.
var (
	_ storage.OutcomeStore    = (*OutcomeStore)(nil)
	_ storage.CheckpointStore = (*CheckpointStore)(nil)
	_ storage.TargetRemover   = (*Store)(nil)
)

// Upsert inserts or replaces the outcome row for (wallet, token).
func (s *OutcomeStore) Upsert(_ context.Context, o *domain.EvaluationOutcome) error {
	if o == nil || o.WalletAddress == "" || o.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	outcomeCopy := *o
	s.store.outcomes[outcomeKey{o.WalletAddress, o.TokenAddress}] = &outcomeCopy
	return nil
}

// GetByKey retrieves one outcome. Returns ErrNotFound if not exists.
func (s *OutcomeStore) GetByKey(_ context.Context, walletAddress, tokenAddress string) (*domain.EvaluationOutcome, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	o, exists := s.store.outcomes[outcomeKey{walletAddress, tokenAddress}]
	if !exists {
		return nil, storage.ErrNotFound
	}

	outcomeCopy := *o
	return &outcomeCopy, nil
}

// ListByTarget retrieves all outcomes for a token, ordered by wallet ASC.
func (s *OutcomeStore) ListByTarget(_ context.Context, tokenAddress string) ([]*domain.EvaluationOutcome, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var result []*domain.EvaluationOutcome
	for key, o := range s.store.outcomes {
		if key.token == tokenAddress {
			outcomeCopy := *o
			result = append(result, &outcomeCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].WalletAddress < result[j].WalletAddress
	})

	return result, nil
}

// ListPassed retrieves PASS outcomes ordered by 30d PnL percent DESC.
func (s *OutcomeStore) ListPassed(_ context.Context, limit int) ([]*domain.EvaluationOutcome, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var result []*domain.EvaluationOutcome
	for _, o := range s.store.outcomes {
		if o.Reason == domain.ReasonPass {
			outcomeCopy := *o
			result = append(result, &outcomeCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Stats.PnLPct30d != result[j].Stats.PnLPct30d {
			return result[i].Stats.PnLPct30d > result[j].Stats.PnLPct30d
		}
		return result[i].WalletAddress < result[j].WalletAddress
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// CountByReason returns per-reason outcome counts, PASS excluded.
func (s *OutcomeStore) CountByReason(_ context.Context) (map[domain.ReasonCode]int64, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	counts := make(map[domain.ReasonCode]int64)
	for _, o := range s.store.outcomes {
		if o.Reason != domain.ReasonPass {
			counts[o.Reason]++
		}
	}
	return counts, nil
}

// Count returns the total number of stored outcomes.
func (s *OutcomeStore) Count(_ context.Context) (int64, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return int64(len(s.store.outcomes)), nil
}

// CountPassed returns the number of PASS outcomes.
func (s *OutcomeStore) CountPassed(_ context.Context) (int64, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var n int64
	for _, o := range s.store.outcomes {
		if o.Reason == domain.ReasonPass {
			n++
		}
	}
	return n, nil
}

// Upsert inserts or replaces the checkpoint row for the token.
func (s *CheckpointStore) Upsert(_ context.Context, cp *domain.TargetCheckpoint) error {
	if cp == nil || cp.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	cpCopy := *cp
	s.store.checkpoints[cp.TokenAddress] = &cpCopy
	return nil
}

// Get retrieves a checkpoint. Returns ErrNotFound if not exists.
func (s *CheckpointStore) Get(_ context.Context, tokenAddress string) (*domain.TargetCheckpoint, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	cp, exists := s.store.checkpoints[tokenAddress]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cpCopy := *cp
	return &cpCopy, nil
}

// Unresolved filters out already-checkpointed targets, preserving order.
func (s *CheckpointStore) Unresolved(_ context.Context, targets []domain.EvaluationTarget) ([]domain.EvaluationTarget, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	pending := make([]domain.EvaluationTarget, 0, len(targets))
	for _, t := range targets {
		if _, exists := s.store.checkpoints[t.Address]; !exists {
			pending = append(pending, t)
		}
	}
	return pending, nil
}

// Recent retrieves checkpoints newest first by processed_at.
func (s *CheckpointStore) Recent(_ context.Context, limit int) ([]*domain.TargetCheckpoint, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	result := make([]*domain.TargetCheckpoint, 0, len(s.store.checkpoints))
	for _, cp := range s.store.checkpoints {
		cpCopy := *cp
		result = append(result, &cpCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ProcessedAt != result[j].ProcessedAt {
			return result[i].ProcessedAt > result[j].ProcessedAt
		}
		return result[i].TokenAddress < result[j].TokenAddress
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Count returns the number of stored checkpoints.
func (s *CheckpointStore) Count(_ context.Context) (int64, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return int64(len(s.store.checkpoints)), nil
}
