// Package reward computes per-round vault rewards: demand-based dilution,
// restaking leverage penalty, decentralization weighting and stochastic
// slashing.
package reward

import (
	"fmt"
	"math"

	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/random"
)

// Formula constants.
const (
	// DefaultBalanceFactor scales overall yield magnitude.
	DefaultBalanceFactor = 0.1
	// DefaultPenaltyExaggeration multiplies slashing severity.
	DefaultPenaltyExaggeration = 5.0
	// RestakingRatioThreshold is the leverage above which rewards are scaled down.
	RestakingRatioThreshold = 3.0
)

// Options tunes the reward formulas.
type Options struct {
	BalanceFactor       float64
	PenaltyExaggeration float64
	// ClampPenalty floors the slashing multiplier at 0 so a slash can wipe
	// out a leg's reward but never turn it into a loss.
	ClampPenalty bool
}

// DefaultOptions returns the stock tuning. Penalties are not clamped.
func DefaultOptions() Options {
	return Options{
		BalanceFactor:       DefaultBalanceFactor,
		PenaltyExaggeration: DefaultPenaltyExaggeration,
	}
}

// Leg holds the intermediate values for one delegation leg.
type Leg struct {
	NetworkID         string
	Allocation        float64
	MiningRate        float64
	RestakingScore    float64
	SecurityRate      float64
	PointsRate        float64
	BaseReward        float64
	Slashed           bool
	PenaltyMultiplier float64 // 1 when not slashed
	Reward            float64
}

// VaultReward is the contribution of one deposit.
type VaultReward struct {
	VaultID string
	Reward  float64
	Legs    []Leg
	Slashes int
	Events  []domain.Event
}

// RoundRewards aggregates all deposits for a round.
type RoundRewards struct {
	Total   float64
	Vaults  []VaultReward
	Slashes int
	Events  []domain.Event
}

// Engine computes rewards using an injected random source.
type Engine struct {
	rng  random.Source
	opts Options
}

// NewEngine creates a reward engine.
func NewEngine(rng random.Source, opts Options) *Engine {
	if opts.BalanceFactor == 0 {
		opts.BalanceFactor = DefaultBalanceFactor
	}
	if opts.PenaltyExaggeration == 0 {
		opts.PenaltyExaggeration = DefaultPenaltyExaggeration
	}
	return &Engine{rng: rng, opts: opts}
}

// MiningRate returns target/current when the network is over-subscribed, else 1.
func MiningRate(n *domain.Network) float64 {
	if n.IsOverStaked() {
		return n.TargetStake / n.CurrentStake
	}
	return 1.0
}

// RestakingScore penalizes leverage above RestakingRatioThreshold.
func RestakingScore(restakingRatio float64) float64 {
	if restakingRatio > RestakingRatioThreshold {
		return RestakingRatioThreshold / restakingRatio
	}
	return 1.0
}

// SecurityRate blends restaking safety and decentralization 2:1.
func SecurityRate(restakingScore, decentralizationScore float64) float64 {
	return ((restakingScore * 2) + decentralizationScore) / 3
}

// ComputeVaultReward computes the reward for one deposit across its vault's
// delegation legs. Each leg consumes one draw for the slashing check and a
// second draw when slashed.
func (e *Engine) ComputeVaultReward(v *domain.Vault, d *domain.Deposit, networks []*domain.Network) VaultReward {
	result := VaultReward{
		VaultID: v.ID,
		Legs:    make([]Leg, 0, len(v.DelegationStrategy)),
	}

	restakingScore := RestakingScore(v.RestakingRatio)

	for _, alloc := range v.DelegationStrategy {
		n := domain.FindNetwork(networks, alloc.NetworkID)
		if n == nil {
			continue
		}

		leg := Leg{
			NetworkID:         n.ID,
			Allocation:        alloc.Allocation,
			MiningRate:        MiningRate(n),
			RestakingScore:    restakingScore,
			PenaltyMultiplier: 1.0,
		}
		if n.IsOverStaked() {
			msg := fmt.Sprintf("%s is over-staked! Reward rate reduced by %.0f%%.", n.Name, (1-leg.MiningRate)*100)
			result.Events = append(result.Events, domain.Event{Kind: domain.EventKindOverStaked, Message: msg})
		}

		leg.SecurityRate = SecurityRate(restakingScore, n.DecentralizationScore)
		leg.PointsRate = leg.MiningRate * leg.SecurityRate
		leg.BaseReward = d.Amount * alloc.Allocation * leg.PointsRate * e.opts.BalanceFactor
		leg.Reward = leg.BaseReward

		if e.rng.Float64() > n.TrustScore/100 {
			severity := (100 - n.TrustScore) / 100
			multiplier := 1 - (e.rng.Float64() * severity * e.opts.PenaltyExaggeration)
			if e.opts.ClampPenalty {
				multiplier = math.Max(0, multiplier)
			}
			leg.PenaltyMultiplier = multiplier
			leg.Reward *= multiplier

			if multiplier < 1 {
				leg.Slashed = true
				result.Slashes++
				msg := fmt.Sprintf("Slashing event in %s via %s! A %d%% penalty was applied.",
					v.Name, n.Name, int(math.Round((1-multiplier)*100)))
				result.Events = append(result.Events, domain.Event{Kind: domain.EventKindSlashing, Message: msg})
			}
		}

		result.Reward += leg.Reward
		result.Legs = append(result.Legs, leg)
	}

	return result
}

// ComputeRoundRewards sums vault rewards over all deposits in deposit order.
// Deposits pointing at unknown vaults contribute nothing.
func (e *Engine) ComputeRoundRewards(deposits []*domain.Deposit, vaults []*domain.Vault, networks []*domain.Network) RoundRewards {
	var out RoundRewards
	for _, d := range deposits {
		v := domain.FindVault(vaults, d.VaultID)
		if v == nil {
			continue
		}
		vr := e.ComputeVaultReward(v, d, networks)
		out.Total += vr.Reward
		out.Slashes += vr.Slashes
		out.Events = append(out.Events, vr.Events...)
		out.Vaults = append(out.Vaults, vr)
	}
	return out
}
