package memory

import (
	"context"
	"sort"
	"sync"

	"solana-trader-screener/internal/domain"
	"solana-trader-screener/internal/storage"
)

// EvaluationLogStore is an in-memory implementation of
// storage.EvaluationLogStore.
type EvaluationLogStore struct {
	mu      sync.RWMutex
	entries []*domain.EvaluationLogEntry
}

// NewEvaluationLogStore creates an empty in-memory run history.
func NewEvaluationLogStore() *EvaluationLogStore {
	return &EvaluationLogStore{}
}

// Compile-time interface check.
var _ storage.EvaluationLogStore = (*EvaluationLogStore)(nil)

// Append adds log entries. Entries without a run ID are rejected.
func (s *EvaluationLogStore) Append(_ context.Context, entries []*domain.EvaluationLogEntry) error {
	for _, e := range entries {
		if e == nil || e.RunID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		entryCopy := *e
		s.entries = append(s.entries, &entryCopy)
	}
	return nil
}

// ListByRun retrieves all entries of a run, ordered by token then wallet.
func (s *EvaluationLogStore) ListByRun(_ context.Context, runID string) ([]*domain.EvaluationLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.EvaluationLogEntry
	for _, e := range s.entries {
		if e.RunID == runID {
			entryCopy := *e
			result = append(result, &entryCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TokenAddress != result[j].TokenAddress {
			return result[i].TokenAddress < result[j].TokenAddress
		}
		return result[i].WalletAddress < result[j].WalletAddress
	})

	return result, nil
}
