// Package identity derives operator identities as ed25519 public keys,
// encoded in base58 the way Solana addresses are.
package identity

import (
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Identity errors
var (
	ErrEmptySeed         = errors.New("identity seed is empty")
	ErrInvalidOperatorID = errors.New("operator id is not a valid ed25519 public key")
)

// OperatorSeed returns the 32-byte key seed for the n-th operator of a session.
func OperatorSeed(sessionID string, n int) []byte {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|operator|%d", sessionID, n)))
	return hash[:]
}

// DeriveOperatorID derives the base58 public key for a key seed.
// Follows RFC 8032 key generation: SHA512(seed), clamp the low half,
// multiply the base point.
func DeriveOperatorID(seed []byte) (string, error) {
	if len(seed) == 0 {
		return "", ErrEmptySeed
	}

	digest := sha512.Sum512(seed)
	scalar, err := edwards25519.NewScalar().SetBytesWithClamping(digest[:32])
	if err != nil {
		return "", fmt.Errorf("derive scalar: %w", err)
	}

	pub := new(edwards25519.Point).ScalarBaseMult(scalar)
	return base58.Encode(pub.Bytes()), nil
}

// ValidateOperatorID checks that id decodes to a point on the ed25519 curve.
func ValidateOperatorID(id string) error {
	raw, err := base58.Decode(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOperatorID, err)
	}
	if len(raw) != 32 {
		return ErrInvalidOperatorID
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return ErrInvalidOperatorID
	}
	return nil
}
