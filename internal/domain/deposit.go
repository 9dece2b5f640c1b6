package domain

// Deposit represents the player's accumulated position in a vault.
// There is at most one Deposit per vault.
type Deposit struct {
	VaultID string  // FK to vault
	Amount  float64 // total deposited, > 0
}

// FindDeposit returns the deposit for the given vault, or nil.
func FindDeposit(deposits []*Deposit, vaultID string) *Deposit {
	for _, d := range deposits {
		if d.VaultID == vaultID {
			return d
		}
	}
	return nil
}
