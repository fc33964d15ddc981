// Package targets manages the plain-text token list that defines what a
// run screens. One "address,name" pair per line; blank lines and lines
// starting with # are ignored.
package targets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"solana-trader-screener/internal/domain"
)

// ErrDuplicateTarget is returned when adding an address already listed.
var ErrDuplicateTarget = errors.New("target already listed")

// ErrTargetNotListed is returned when removing an address that is absent.
var ErrTargetNotListed = errors.New("target not listed")

// File reads and edits a targets file.
type File struct {
	path string
}

// NewFile creates a targets file handle. The file does not need to exist
// yet; Load on a missing file returns an empty list.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the underlying file path.
func (f *File) Path() string {
	return f.path
}

// Load parses the file into targets, preserving line order. Lines without
// a comma are skipped. A missing file yields an empty list.
func (f *File) Load(_ context.Context) ([]domain.EvaluationTarget, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read targets file: %w", err)
	}
	return Parse(string(data)), nil
}

// Parse parses targets file content. Exposed for tests and for callers
// holding the content already.
func Parse(content string) []domain.EvaluationTarget {
	var targets []domain.EvaluationTarget
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addr, name, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		addr = strings.TrimSpace(addr)
		name = strings.TrimSpace(name)
		if addr == "" {
			continue
		}
		if name == "" {
			name = domain.UnknownName
		}
		targets = append(targets, domain.EvaluationTarget{Address: addr, Name: name})
	}
	return targets
}

// Append adds a target to the end of the file, creating it if needed.
// Returns ErrDuplicateTarget when the address is already listed.
func (f *File) Append(ctx context.Context, target domain.EvaluationTarget) error {
	if target.Address == "" {
		return errors.New("empty target address")
	}

	existing, err := f.Load(ctx)
	if err != nil {
		return err
	}
	for _, t := range existing {
		if t.Address == target.Address {
			return ErrDuplicateTarget
		}
	}

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open targets file: %w", err)
	}
	defer file.Close()

	name := target.Name
	if name == "" {
		name = domain.UnknownName
	}
	if _, err := fmt.Fprintf(file, "%s,%s\n", target.Address, name); err != nil {
		return fmt.Errorf("append target: %w", err)
	}
	return nil
}

// Remove deletes the target's line, keeping comments and other lines
// intact. Returns ErrTargetNotListed when the address is absent.
func (f *File) Remove(_ context.Context, address string) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrTargetNotListed
		}
		return fmt.Errorf("read targets file: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	kept := make([]string, 0, len(lines))
	removed := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			if addr, _, ok := strings.Cut(trimmed, ","); ok && strings.TrimSpace(addr) == address {
				removed = true
				continue
			}
		}
		kept = append(kept, line)
	}
	if !removed {
		return ErrTargetNotListed
	}

	if err := os.WriteFile(f.path, []byte(strings.Join(kept, "\n")), 0o644); err != nil {
		return fmt.Errorf("write targets file: %w", err)
	}
	return nil
}
