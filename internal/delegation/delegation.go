// Package delegation distributes vault TVL across networks.
package delegation

import (
	"errors"
	"fmt"
	"math"

	"github.com/immortaldarkveil/Symulator/internal/domain"
)

// AllocationEpsilon is the tolerance for allocation sums.
const AllocationEpsilon = 1e-9

// Strategy validation errors
var (
	ErrEmptyStrategy      = errors.New("delegation strategy has no allocations")
	ErrAllocationSum      = errors.New("delegation allocations must sum to 1.0")
	ErrNonPositiveLeg     = errors.New("delegation allocation must be positive")
	ErrUnknownNetwork     = errors.New("delegation references unknown network")
	ErrDuplicateNetworkID = errors.New("delegation references a network twice")
)

// RecomputeStakes resets every network's CurrentStake and rebuilds it from
// vault TVLs: each vault with TVL > 0 adds tvl*allocation to every network
// in its strategy. Legs pointing at unknown networks are skipped.
func RecomputeStakes(networks []*domain.Network, vaults []*domain.Vault) {
	byID := make(map[string]*domain.Network, len(networks))
	for _, n := range networks {
		n.CurrentStake = 0
		byID[n.ID] = n
	}

	for _, v := range vaults {
		if v.TVL <= 0 {
			continue
		}
		for _, leg := range v.DelegationStrategy {
			if n, ok := byID[leg.NetworkID]; ok {
				n.CurrentStake += v.TVL * leg.Allocation
			}
		}
	}
}

// ValidateStrategy checks that a vault's strategy is non-empty, has positive
// legs summing to 1.0 and references existing, distinct networks.
func ValidateStrategy(v *domain.Vault, networks []*domain.Network) error {
	if len(v.DelegationStrategy) == 0 {
		return fmt.Errorf("vault %s: %w", v.ID, ErrEmptyStrategy)
	}

	seen := make(map[string]struct{}, len(v.DelegationStrategy))
	for _, leg := range v.DelegationStrategy {
		if leg.Allocation <= 0 {
			return fmt.Errorf("vault %s leg %s: %w", v.ID, leg.NetworkID, ErrNonPositiveLeg)
		}
		if domain.FindNetwork(networks, leg.NetworkID) == nil {
			return fmt.Errorf("vault %s leg %s: %w", v.ID, leg.NetworkID, ErrUnknownNetwork)
		}
		if _, dup := seen[leg.NetworkID]; dup {
			return fmt.Errorf("vault %s leg %s: %w", v.ID, leg.NetworkID, ErrDuplicateNetworkID)
		}
		seen[leg.NetworkID] = struct{}{}
	}

	if sum := v.AllocationSum(); math.Abs(sum-1.0) > AllocationEpsilon {
		return fmt.Errorf("vault %s sums to %.6f: %w", v.ID, sum, ErrAllocationSum)
	}
	return nil
}
