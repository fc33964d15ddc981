package targets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"solana-trader-screener/internal/domain"
)

func TestParse(t *testing.T) {
	content := `
# screening list
token-1,Token One

token-2,Token Two (TWO)
no-comma-line
token-3,
  token-4 , Token Four
,missing-address
`
	got := Parse(content)
	want := []domain.EvaluationTarget{
		{Address: "token-1", Name: "Token One"},
		{Address: "token-2", Name: "Token Two (TWO)"},
		{Address: "token-3", Name: domain.UnknownName},
		{Address: "token-4", Name: "Token Four"},
	}

	if len(got) != len(want) {
		t.Fatalf("parsed %d targets, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "absent.txt"))
	got, err := f.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("targets = %+v, want empty", got)
	}
}

func TestAppendAndLoad(t *testing.T) {
	ctx := context.Background()
	f := NewFile(filepath.Join(t.TempDir(), "targets.txt"))

	if err := f.Append(ctx, domain.EvaluationTarget{Address: "token-1", Name: "Token One"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := f.Append(ctx, domain.EvaluationTarget{Address: "token-2"}); err != nil {
		t.Fatalf("Append without name: %v", err)
	}

	got, err := f.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("targets = %+v, want 2", got)
	}
	if got[0].Address != "token-1" || got[0].Name != "Token One" {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Name != domain.UnknownName {
		t.Errorf("missing name stored as %q, want %q", got[1].Name, domain.UnknownName)
	}
}

func TestAppendDuplicate(t *testing.T) {
	ctx := context.Background()
	f := NewFile(filepath.Join(t.TempDir(), "targets.txt"))

	if err := f.Append(ctx, domain.EvaluationTarget{Address: "token-1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := f.Append(ctx, domain.EvaluationTarget{Address: "token-1", Name: "Again"}); !errors.Is(err, ErrDuplicateTarget) {
		t.Errorf("err = %v, want ErrDuplicateTarget", err)
	}
	if err := f.Append(ctx, domain.EvaluationTarget{}); err == nil {
		t.Error("empty address accepted")
	}
}

func TestRemoveKeepsCommentsAndOtherLines(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "targets.txt")
	content := "# keep this comment\ntoken-1,Token One\ntoken-2,Token Two\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewFile(path)
	if err := f.Remove(ctx, "token-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "# keep this comment") {
		t.Error("comment line lost on remove")
	}
	if strings.Contains(string(data), "token-1") {
		t.Error("removed target still present")
	}

	got, _ := f.Load(ctx)
	if len(got) != 1 || got[0].Address != "token-2" {
		t.Errorf("remaining targets = %+v, want token-2 only", got)
	}
}

func TestRemoveNotListed(t *testing.T) {
	ctx := context.Background()
	f := NewFile(filepath.Join(t.TempDir(), "targets.txt"))

	if err := f.Remove(ctx, "token-1"); !errors.Is(err, ErrTargetNotListed) {
		t.Errorf("missing file err = %v, want ErrTargetNotListed", err)
	}

	if err := f.Append(ctx, domain.EvaluationTarget{Address: "token-1"}); err != nil {
		t.Fatal(err)
	}
	if err := f.Remove(ctx, "token-9"); !errors.Is(err, ErrTargetNotListed) {
		t.Errorf("absent target err = %v, want ErrTargetNotListed", err)
	}
}
