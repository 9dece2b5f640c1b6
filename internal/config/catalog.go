// Package config loads the static game catalog and process configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/immortaldarkveil/Symulator/internal/delegation"
	"github.com/immortaldarkveil/Symulator/internal/domain"
)

// DefaultStartingCapital is the capital a new game starts with.
const DefaultStartingCapital = 10000

// ErrInvalidCatalog is returned when a catalog fails validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

// NetworkSpec is the catalog definition of a network.
type NetworkSpec struct {
	ID                       string  `yaml:"id"`
	Name                     string  `yaml:"name"`
	TrustScore               float64 `yaml:"trust_score"`
	APY                      float64 `yaml:"apy"`
	TargetStake              float64 `yaml:"target_stake"`
	DecentralizationScore    float64 `yaml:"decentralization_score"`
	MinOperatorTrustScore    float64 `yaml:"min_operator_trust_score"`
	MinDecentralizationScore float64 `yaml:"min_decentralization_score"`
}

// VaultSpec is the catalog definition of a vault.
type VaultSpec struct {
	ID                 string              `yaml:"id"`
	Name               string              `yaml:"name"`
	Type               domain.VaultType    `yaml:"type"`
	OperatorID         string              `yaml:"operator_id"`
	Description        string              `yaml:"description"`
	RestakingRatio     float64             `yaml:"restaking_ratio"`
	DelegationStrategy []domain.Allocation `yaml:"delegation_strategy"`
}

// RewardSpec tunes the reward formulas.
type RewardSpec struct {
	BalanceFactor       float64 `yaml:"balance_factor"`
	PenaltyExaggeration float64 `yaml:"penalty_exaggeration"`
	ClampPenalty        bool    `yaml:"clamp_penalty"`
}

// Catalog holds the static definitions a game is built from and reset to.
type Catalog struct {
	StartingCapital float64       `yaml:"starting_capital"`
	Rewards         RewardSpec    `yaml:"rewards"`
	Networks        []NetworkSpec `yaml:"networks"`
	Vaults          []VaultSpec   `yaml:"vaults"`
}

// LoadCatalog reads a YAML catalog, fills defaults and validates it.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog, fills defaults and validates it.
func ParseCatalog(data []byte) (*Catalog, error) {
	cat := &Catalog{}
	if err := yaml.Unmarshal(data, cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	// Defaults
	if cat.StartingCapital == 0 {
		cat.StartingCapital = DefaultStartingCapital
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// Validate checks network ranges, vault strategies and id uniqueness.
func (c *Catalog) Validate() error {
	if c.StartingCapital <= 0 {
		return fmt.Errorf("%w: starting_capital must be positive", ErrInvalidCatalog)
	}
	if len(c.Networks) == 0 {
		return fmt.Errorf("%w: at least one network is required", ErrInvalidCatalog)
	}

	seen := make(map[string]bool, len(c.Networks))
	for _, n := range c.Networks {
		if n.ID == "" {
			return fmt.Errorf("%w: network id is required", ErrInvalidCatalog)
		}
		if seen[n.ID] {
			return fmt.Errorf("%w: duplicate network %s", ErrInvalidCatalog, n.ID)
		}
		seen[n.ID] = true
		if n.TrustScore < 0 || n.TrustScore > 100 {
			return fmt.Errorf("%w: network %s trust_score out of range", ErrInvalidCatalog, n.ID)
		}
		if n.DecentralizationScore < 0 || n.DecentralizationScore > 1 {
			return fmt.Errorf("%w: network %s decentralization_score out of range", ErrInvalidCatalog, n.ID)
		}
		if n.TargetStake < 0 {
			return fmt.Errorf("%w: network %s target_stake is negative", ErrInvalidCatalog, n.ID)
		}
	}

	networks := c.BuildNetworks()
	vaultIDs := make(map[string]bool, len(c.Vaults))
	for _, v := range c.BuildVaults() {
		if v.ID == "" {
			return fmt.Errorf("%w: vault id is required", ErrInvalidCatalog)
		}
		if vaultIDs[v.ID] {
			return fmt.Errorf("%w: duplicate vault %s", ErrInvalidCatalog, v.ID)
		}
		vaultIDs[v.ID] = true
		if !v.Type.IsValid() {
			return fmt.Errorf("%w: vault %s has unknown type %q", ErrInvalidCatalog, v.ID, v.Type)
		}
		if v.RestakingRatio <= 0 {
			return fmt.Errorf("%w: vault %s restaking_ratio must be positive", ErrInvalidCatalog, v.ID)
		}
		if err := delegation.ValidateStrategy(v, networks); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}
	}
	return nil
}

// BuildNetworks returns fresh network records with zero current stake.
func (c *Catalog) BuildNetworks() []*domain.Network {
	out := make([]*domain.Network, 0, len(c.Networks))
	for _, n := range c.Networks {
		out = append(out, &domain.Network{
			ID:                       n.ID,
			Name:                     n.Name,
			TrustScore:               n.TrustScore,
			APY:                      n.APY,
			TargetStake:              n.TargetStake,
			DecentralizationScore:    n.DecentralizationScore,
			MinOperatorTrustScore:    n.MinOperatorTrustScore,
			MinDecentralizationScore: n.MinDecentralizationScore,
		})
	}
	return out
}

// BuildVaults returns fresh vault records with zero TVL.
func (c *Catalog) BuildVaults() []*domain.Vault {
	out := make([]*domain.Vault, 0, len(c.Vaults))
	for _, v := range c.Vaults {
		strategy := make([]domain.Allocation, len(v.DelegationStrategy))
		copy(strategy, v.DelegationStrategy)
		out = append(out, &domain.Vault{
			ID:                 v.ID,
			Name:               v.Name,
			Type:               v.Type,
			OperatorID:         v.OperatorID,
			Description:        v.Description,
			RestakingRatio:     v.RestakingRatio,
			DelegationStrategy: strategy,
		})
	}
	return out
}

// DefaultCatalog returns the built-in catalog: six networks, a curated vault
// and a high-yield operator vault.
func DefaultCatalog() *Catalog {
	return &Catalog{
		StartingCapital: DefaultStartingCapital,
		Rewards: RewardSpec{
			BalanceFactor:       0.1,
			PenaltyExaggeration: 5,
		},
		Networks: []NetworkSpec{
			{ID: "ethereum", Name: "Ethereum Network", TrustScore: 95, APY: 0.08, TargetStake: 20000, DecentralizationScore: 0.9, MinOperatorTrustScore: 70, MinDecentralizationScore: 0.7},
			{ID: "polygon", Name: "Polygon POS", TrustScore: 92, APY: 0.05, TargetStake: 15000, DecentralizationScore: 0.7, MinOperatorTrustScore: 60, MinDecentralizationScore: 0.6},
			{ID: "avalanche", Name: "Avalanche", TrustScore: 88, APY: 0.12, TargetStake: 10000, DecentralizationScore: 0.75, MinOperatorTrustScore: 60, MinDecentralizationScore: 0.6},
			{ID: "arbitrum", Name: "Arbitrum One", TrustScore: 90, APY: 0.07, TargetStake: 12000, DecentralizationScore: 0.6, MinOperatorTrustScore: 65, MinDecentralizationScore: 0.5},
			{ID: "solana", Name: "Solana", TrustScore: 85, APY: 0.15, TargetStake: 8000, DecentralizationScore: 0.65, MinOperatorTrustScore: 50, MinDecentralizationScore: 0.5},
			{ID: "chainlink", Name: "Chainlink", TrustScore: 98, APY: 0.06, TargetStake: 18000, DecentralizationScore: 0.85, MinOperatorTrustScore: 80, MinDecentralizationScore: 0.7},
		},
		Vaults: []VaultSpec{
			{
				ID:             "vault-01",
				Name:           "Symbiotic Shared Security Vault",
				Type:           domain.VaultTypeCurated,
				Description:    "A balanced portfolio of high-trust networks, curated by the Symbiotic Foundation.",
				RestakingRatio: 1.5,
				DelegationStrategy: []domain.Allocation{
					{NetworkID: "ethereum", Allocation: 0.5},
					{NetworkID: "chainlink", Allocation: 0.5},
				},
			},
			{
				ID:             "vault-02",
				Name:           "High-Yield Operator Vault",
				Type:           domain.VaultTypeOperatorSpecific,
				OperatorID:     "op-ai-1",
				Description:    "A high-risk, high-reward vault run by a single, aggressive operator.",
				RestakingRatio: 5,
				DelegationStrategy: []domain.Allocation{
					{NetworkID: "solana", Allocation: 0.5},
					{NetworkID: "avalanche", Allocation: 0.5},
				},
			},
		},
	}
}
