package memory

import (
	"context"
	"errors"
	"testing"

	"solana-trader-screener/internal/domain"
	"solana-trader-screener/internal/storage"
)

func logEntry(runID, token, wallet string) *domain.EvaluationLogEntry {
	return &domain.EvaluationLogEntry{
		RunID:         runID,
		WalletAddress: wallet,
		TokenAddress:  token,
		Reason:        domain.ReasonPass,
		EvaluatedAt:   1700000000000,
	}
}

func TestEvaluationLogAppendAndListByRun(t *testing.T) {
	ctx := context.Background()
	store := NewEvaluationLogStore()

	err := store.Append(ctx, []*domain.EvaluationLogEntry{
		logEntry("run-1", "t2", "w1"),
		logEntry("run-1", "t1", "w2"),
		logEntry("run-1", "t1", "w1"),
		logEntry("run-2", "t1", "w9"),
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := store.ListByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListByRun: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	// Ordered by token then wallet
	wantOrder := []struct{ token, wallet string }{
		{"t1", "w1"}, {"t1", "w2"}, {"t2", "w1"},
	}
	for i, want := range wantOrder {
		if got[i].TokenAddress != want.token || got[i].WalletAddress != want.wallet {
			t.Errorf("got[%d] = %s/%s, want %s/%s",
				i, got[i].TokenAddress, got[i].WalletAddress, want.token, want.wallet)
		}
	}

	other, _ := store.ListByRun(ctx, "run-2")
	if len(other) != 1 {
		t.Errorf("run-2 entries = %d, want 1", len(other))
	}
}

func TestEvaluationLogAppendIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	store := NewEvaluationLogStore()

	// Same key appended twice stays twice: runs never overwrite history
	store.Append(ctx, []*domain.EvaluationLogEntry{logEntry("run-1", "t1", "w1")})
	store.Append(ctx, []*domain.EvaluationLogEntry{logEntry("run-1", "t1", "w1")})

	got, err := store.ListByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListByRun: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestEvaluationLogRejectsMissingRunID(t *testing.T) {
	store := NewEvaluationLogStore()

	err := store.Append(context.Background(), []*domain.EvaluationLogEntry{
		logEntry("run-1", "t1", "w1"),
		logEntry("", "t1", "w2"),
	})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	// Rejected batch must not be partially applied
	got, _ := store.ListByRun(context.Background(), "run-1")
	if len(got) != 0 {
		t.Errorf("entries = %d, want 0 after rejected batch", len(got))
	}
}
