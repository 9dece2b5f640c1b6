package delegation

import (
	"errors"
	"math"
	"testing"

	"github.com/immortaldarkveil/Symulator/internal/domain"
)

func testNetworks() []*domain.Network {
	return []*domain.Network{
		{ID: "ethereum", TargetStake: 20000},
		{ID: "chainlink", TargetStake: 18000},
		{ID: "solana", TargetStake: 8000},
		{ID: "avalanche", TargetStake: 10000},
	}
}

func TestRecomputeStakes_CuratedScenario(t *testing.T) {
	networks := testNetworks()
	vaults := []*domain.Vault{
		{
			ID:   "vault-01",
			Type: domain.VaultTypeCurated,
			TVL:  1000,
			DelegationStrategy: []domain.Allocation{
				{NetworkID: "ethereum", Allocation: 0.5},
				{NetworkID: "chainlink", Allocation: 0.5},
			},
		},
	}

	RecomputeStakes(networks, vaults)

	if got := domain.FindNetwork(networks, "ethereum").CurrentStake; got != 500 {
		t.Errorf("ethereum stake = %f, want 500", got)
	}
	if got := domain.FindNetwork(networks, "chainlink").CurrentStake; got != 500 {
		t.Errorf("chainlink stake = %f, want 500", got)
	}
	if got := domain.FindNetwork(networks, "solana").CurrentStake; got != 0 {
		t.Errorf("solana stake = %f, want 0", got)
	}
}

func TestRecomputeStakes_ResetsPreviousStake(t *testing.T) {
	networks := testNetworks()
	for _, n := range networks {
		n.CurrentStake = 99999
	}

	vaults := []*domain.Vault{
		{ID: "empty", TVL: 0, DelegationStrategy: []domain.Allocation{{NetworkID: "ethereum", Allocation: 1}}},
	}

	RecomputeStakes(networks, vaults)

	for _, n := range networks {
		if n.CurrentStake != 0 {
			t.Errorf("%s stake = %f, want 0 after reset", n.ID, n.CurrentStake)
		}
	}
}

func TestRecomputeStakes_SumsAcrossVaults(t *testing.T) {
	networks := testNetworks()
	vaults := []*domain.Vault{
		{ID: "a", TVL: 1000, DelegationStrategy: []domain.Allocation{
			{NetworkID: "ethereum", Allocation: 0.25},
			{NetworkID: "solana", Allocation: 0.75},
		}},
		{ID: "b", TVL: 400, DelegationStrategy: []domain.Allocation{
			{NetworkID: "solana", Allocation: 0.5},
			{NetworkID: "avalanche", Allocation: 0.5},
		}},
		{ID: "c", TVL: 50, DelegationStrategy: []domain.Allocation{
			{NetworkID: "unknown", Allocation: 1},
		}},
	}

	// Run twice: no incremental drift
	RecomputeStakes(networks, vaults)
	RecomputeStakes(networks, vaults)

	want := map[string]float64{
		"ethereum":  250,
		"solana":    950,
		"avalanche": 200,
		"chainlink": 0,
	}
	for id, w := range want {
		got := domain.FindNetwork(networks, id).CurrentStake
		if math.Abs(got-w) > 1e-9 {
			t.Errorf("%s stake = %f, want %f", id, got, w)
		}
	}
}

func TestValidateStrategy(t *testing.T) {
	networks := testNetworks()

	tests := []struct {
		name    string
		legs    []domain.Allocation
		wantErr error
	}{
		{
			name: "valid",
			legs: []domain.Allocation{{NetworkID: "ethereum", Allocation: 0.5}, {NetworkID: "chainlink", Allocation: 0.5}},
		},
		{
			name: "thirds within epsilon",
			legs: []domain.Allocation{
				{NetworkID: "ethereum", Allocation: 1.0 / 3},
				{NetworkID: "chainlink", Allocation: 1.0 / 3},
				{NetworkID: "solana", Allocation: 1.0 / 3},
			},
		},
		{name: "empty", legs: nil, wantErr: ErrEmptyStrategy},
		{
			name:    "sum too low",
			legs:    []domain.Allocation{{NetworkID: "ethereum", Allocation: 0.5}},
			wantErr: ErrAllocationSum,
		},
		{
			name:    "unknown network",
			legs:    []domain.Allocation{{NetworkID: "dogechain", Allocation: 1}},
			wantErr: ErrUnknownNetwork,
		},
		{
			name:    "negative leg",
			legs:    []domain.Allocation{{NetworkID: "ethereum", Allocation: 1.5}, {NetworkID: "solana", Allocation: -0.5}},
			wantErr: ErrNonPositiveLeg,
		},
		{
			name:    "duplicate network",
			legs:    []domain.Allocation{{NetworkID: "ethereum", Allocation: 0.5}, {NetworkID: "ethereum", Allocation: 0.5}},
			wantErr: ErrDuplicateNetworkID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStrategy(&domain.Vault{ID: "v", DelegationStrategy: tt.legs}, networks)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
