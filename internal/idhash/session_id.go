package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeSessionID computes a deterministic session_id using SHA256.
// Formula: SHA256(seed|generation)
// generation counts resets within one process so every reset gets a fresh id.
// Returns the first 16 hex characters.
func ComputeSessionID(seed int64, generation int) string {
	data := fmt.Sprintf("%d|%d", seed, generation)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:16]
}
