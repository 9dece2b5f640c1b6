package domain

// VaultType represents how a vault is managed.
type VaultType string

const (
	VaultTypeCurated          VaultType = "Curated"
	VaultTypeOperatorSpecific VaultType = "OperatorSpecific"
)

// String returns the string representation of VaultType.
func (t VaultType) String() string {
	return string(t)
}

// IsValid checks if the vault type is a valid value.
func (t VaultType) IsValid() bool {
	return t == VaultTypeCurated || t == VaultTypeOperatorSpecific
}

// Allocation is one leg of a vault's delegation strategy.
type Allocation struct {
	NetworkID  string  `json:"network_id" yaml:"network_id"`
	Allocation float64 `json:"allocation" yaml:"allocation"` // fraction of TVL, legs sum to 1.0
}

// Vault represents a staking vault that pools deposits and delegates
// them across networks.
type Vault struct {
	ID                 string       // unique key
	Name               string       // display name
	Type               VaultType    // Curated | OperatorSpecific
	OperatorID         string       // managing operator label (OperatorSpecific only)
	Description        string       // free text
	TVL                float64      // sum of deposits directed to this vault
	RestakingRatio     float64      // leverage, > 3 is penalized
	DelegationStrategy []Allocation // ordered legs
}

// AllocationSum returns the sum of all allocation fractions.
func (v *Vault) AllocationSum() float64 {
	var sum float64
	for _, a := range v.DelegationStrategy {
		sum += a.Allocation
	}
	return sum
}

// FindVault returns the vault with the given ID, or nil.
func FindVault(vaults []*Vault, id string) *Vault {
	for _, v := range vaults {
		if v.ID == id {
			return v
		}
	}
	return nil
}
