package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTaskID computes a deterministic task_id using SHA256.
// Formula: SHA256(session_id|round|network_id|seq)
// Returns hex-encoded hash (64 characters).
func ComputeTaskID(
	sessionID string,
	round int,
	networkID string,
	seq int,
) string {
	data := fmt.Sprintf("%s|%d|%s|%d",
		sessionID,
		round,
		networkID,
		seq,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
