package identity

import (
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
)

func TestDeriveOperatorID_MatchesStdlibEd25519(t *testing.T) {
	seed := OperatorSeed("session-1", 0)

	got, err := DeriveOperatorID(seed)
	if err != nil {
		t.Fatalf("DeriveOperatorID failed: %v", err)
	}

	pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	want := base58.Encode(pub)
	if got != want {
		t.Errorf("DeriveOperatorID() = %s, want %s", got, want)
	}
}

func TestDeriveOperatorID_Deterministic(t *testing.T) {
	a, err := DeriveOperatorID(OperatorSeed("s", 1))
	if err != nil {
		t.Fatalf("DeriveOperatorID failed: %v", err)
	}
	b, _ := DeriveOperatorID(OperatorSeed("s", 1))
	c, _ := DeriveOperatorID(OperatorSeed("s", 2))

	if a != b {
		t.Errorf("same seed produced %s and %s", a, b)
	}
	if a == c {
		t.Error("different seeds produced the same id")
	}
}

func TestDeriveOperatorID_EmptySeed(t *testing.T) {
	_, err := DeriveOperatorID(nil)
	if !errors.Is(err, ErrEmptySeed) {
		t.Errorf("expected ErrEmptySeed, got %v", err)
	}
}

func TestValidateOperatorID(t *testing.T) {
	id, err := DeriveOperatorID(OperatorSeed("session-2", 0))
	if err != nil {
		t.Fatalf("DeriveOperatorID failed: %v", err)
	}

	if err := ValidateOperatorID(id); err != nil {
		t.Errorf("derived id rejected: %v", err)
	}

	for _, bad := range []string{"player-op-123", "0OIl", base58.Encode([]byte("short"))} {
		if err := ValidateOperatorID(bad); !errors.Is(err, ErrInvalidOperatorID) {
			t.Errorf("ValidateOperatorID(%q) = %v, want ErrInvalidOperatorID", bad, err)
		}
	}
}
