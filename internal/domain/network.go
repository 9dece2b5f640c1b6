package domain

// Network represents a simulated blockchain network that vaults delegate to.
type Network struct {
	ID                       string  // unique key, e.g. "ethereum"
	Name                     string  // display name
	TrustScore               float64 // 0-100, drives slashing probability
	APY                      float64 // 0-1, nominal yield (informational)
	TargetStake              float64 // stake the network wants before diluting rewards
	CurrentStake             float64 // derived each round from vault TVLs
	DecentralizationScore    float64 // 0-1
	MinOperatorTrustScore    float64 // operator gating threshold
	MinDecentralizationScore float64 // 0-1, health threshold
}

// Risk category constants
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// RiskCategory maps the trust score to a coarse risk bucket.
func (n *Network) RiskCategory() string {
	switch {
	case n.TrustScore >= 95:
		return RiskLow
	case n.TrustScore >= 90:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// IsOverStaked reports whether current stake exceeds the target.
func (n *Network) IsOverStaked() bool {
	return n.CurrentStake > n.TargetStake
}

// MeetsDecentralization reports whether the network satisfies its own
// decentralization threshold.
func (n *Network) MeetsDecentralization() bool {
	return n.DecentralizationScore >= n.MinDecentralizationScore
}

// AcceptsOperator reports whether an operator with the given trust score
// may take on work for this network.
func (n *Network) AcceptsOperator(trustScore float64) bool {
	return trustScore >= n.MinOperatorTrustScore
}

// FindNetwork returns the network with the given ID, or nil.
func FindNetwork(networks []*Network, id string) *Network {
	for _, n := range networks {
		if n.ID == id {
			return n
		}
	}
	return nil
}
