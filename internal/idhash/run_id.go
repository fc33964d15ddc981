package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeRunID computes a deterministic run identifier using SHA256.
// Formula: SHA256(started_at|target_count)
// Returns hex-encoded hash (64 characters).
func ComputeRunID(startedAt int64, targetCount int) string {
	data := fmt.Sprintf("%d|%d", startedAt, targetCount)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
