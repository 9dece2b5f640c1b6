package game

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immortaldarkveil/Symulator/internal/config"
	"github.com/immortaldarkveil/Symulator/internal/delegation"
	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/identity"
	"github.com/immortaldarkveil/Symulator/internal/random"
)

func newTestController(t *testing.T, opts Options) *Controller {
	t.Helper()
	if opts.Source == nil {
		opts.Source = random.Constant(0.0)
	}
	c, err := NewController(opts)
	require.NoError(t, err)
	return c
}

// singleNetworkCatalog has one network and one vault fully delegated to it.
func singleNetworkCatalog(trust, decentralization, restakingRatio float64) *config.Catalog {
	return &config.Catalog{
		StartingCapital: 10000,
		Networks: []config.NetworkSpec{
			{ID: "net", Name: "Test Net", TrustScore: trust, TargetStake: 20000, DecentralizationScore: decentralization},
		},
		Vaults: []config.VaultSpec{
			{
				ID:             "vault",
				Name:           "Test Vault",
				Type:           domain.VaultTypeCurated,
				RestakingRatio: restakingRatio,
				DelegationStrategy: []domain.Allocation{
					{NetworkID: "net", Allocation: 1.0},
				},
			},
		},
	}
}

func findNetwork(t *testing.T, networks []*domain.Network, id string) *domain.Network {
	t.Helper()
	n := domain.FindNetwork(networks, id)
	require.NotNil(t, n, "network %s", id)
	return n
}

func TestNewController_InitialState(t *testing.T) {
	c := newTestController(t, Options{Seed: 7})
	s := c.Snapshot()

	assert.Equal(t, 1, s.Round)
	assert.Equal(t, 10000.0, s.Player.Capital)
	assert.True(t, s.Player.IsStaker)
	assert.False(t, s.Player.IsOperator)
	assert.Len(t, s.Networks, 6)
	assert.Len(t, s.Vaults, 2)
	assert.Empty(t, s.Deposits)
	assert.NotEmpty(t, s.SessionID)

	for _, v := range s.Vaults {
		assert.InDelta(t, 1.0, v.AllocationSum(), delegation.AllocationEpsilon)
	}
}

func TestNewController_InvalidCatalog(t *testing.T) {
	cat := singleNetworkCatalog(90, 0.5, 1)
	cat.Vaults[0].DelegationStrategy[0].Allocation = 0.5

	_, err := NewController(Options{Catalog: cat})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidCatalog)
}

func TestDeposit_Accumulates(t *testing.T) {
	c := newTestController(t, Options{})

	_, err := c.Deposit("vault-01", 300)
	require.NoError(t, err)
	rec, err := c.Deposit("vault-01", 200)
	require.NoError(t, err)

	assert.Equal(t, 500.0, rec.TotalAmount)
	assert.Equal(t, 500.0, rec.VaultTVL)
	assert.Equal(t, 9500.0, rec.CapitalAfter)

	s := c.Snapshot()
	require.Len(t, s.Deposits, 1)
	assert.Equal(t, 500.0, s.Deposits[0].Amount)
	assert.Equal(t, 500.0, domain.FindVault(s.Vaults, "vault-01").TVL)
}

func TestDeposit_InsufficientCapitalLeavesStateUnchanged(t *testing.T) {
	c := newTestController(t, Options{})
	_, err := c.Deposit("vault-01", 1000)
	require.NoError(t, err)

	before := c.Snapshot()
	_, err = c.Deposit("vault-02", 9001)
	require.ErrorIs(t, err, ErrInsufficientCapital)
	after := c.Snapshot()

	assert.Equal(t, before.Player, after.Player)
	assert.Equal(t, before.Deposits, after.Deposits)
	assert.Equal(t, before.Vaults, after.Vaults)
	assert.Equal(t, before.Round, after.Round)
	// the failure is reported in the journal
	assert.Equal(t, domain.EventKindNotice, after.Journal[len(after.Journal)-1].Kind)
}

func TestDeposit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		vaultID string
		amount  float64
		wantErr error
	}{
		{"zero", "vault-01", 0, ErrInvalidAmount},
		{"negative", "vault-01", -5, ErrInvalidAmount},
		{"nan", "vault-01", math.NaN(), ErrInvalidAmount},
		{"inf", "vault-01", math.Inf(1), ErrInvalidAmount},
		{"unknown vault", "vault-99", 100, ErrVaultNotFound},
		{"too much", "vault-01", 10000.01, ErrInsufficientCapital},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t, Options{})
			_, err := c.Deposit(tt.vaultID, tt.amount)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, c.Snapshot().Deposits)
		})
	}
}

func TestAdvanceRound_NoActivity(t *testing.T) {
	c := newTestController(t, Options{})

	_, err := c.AdvanceRound()
	require.ErrorIs(t, err, ErrNoActivity)
	assert.Equal(t, 1, c.Snapshot().Round)
}

func TestAdvanceRound_CuratedVaultStakes(t *testing.T) {
	c := newTestController(t, Options{})
	_, err := c.Deposit("vault-01", 1000)
	require.NoError(t, err)

	summary, err := c.AdvanceRound()
	require.NoError(t, err)

	assert.Equal(t, 500.0, findNetwork(t, summary.Networks, "ethereum").CurrentStake)
	assert.Equal(t, 500.0, findNetwork(t, summary.Networks, "chainlink").CurrentStake)
	assert.Equal(t, 0.0, findNetwork(t, summary.Networks, "solana").CurrentStake)
	assert.Equal(t, 1, summary.Round)
	assert.Equal(t, 2, c.Snapshot().Round)
}

func TestAdvanceRound_NoSlashReward(t *testing.T) {
	c := newTestController(t, Options{
		Catalog: singleNetworkCatalog(100, 0.9, 2),
		Source:  random.Constant(1.0),
	})
	_, err := c.Deposit("vault", 1000)
	require.NoError(t, err)

	summary, err := c.AdvanceRound()
	require.NoError(t, err)

	assert.InDelta(t, 96.67, summary.VaultRewards, 0.01)
	assert.Equal(t, 0, summary.Slashes)
	assert.InDelta(t, 9000+96.67, summary.CapitalAfter, 0.01)
	assert.InDelta(t, summary.TotalReward, summary.TotalEarnings, 1e-9)
	assert.False(t, summary.GameOver)

	last := summary.Events[len(summary.Events)-1]
	assert.Equal(t, domain.EventKindRoundCompleted, last.Kind)
	assert.Equal(t, 1, last.Round)
}

func TestAdvanceRound_GameOver(t *testing.T) {
	// trust 0 always slashes; a draw of 1.0 gives multiplier 1-5 = -4
	c := newTestController(t, Options{
		Catalog: singleNetworkCatalog(0, 0, 1),
		Source:  random.Constant(1.0),
	})
	_, err := c.Deposit("vault", 10000)
	require.NoError(t, err)

	summary, err := c.AdvanceRound()
	require.NoError(t, err)
	require.True(t, summary.GameOver)
	assert.Less(t, summary.TotalReward, 0.0)
	assert.LessOrEqual(t, summary.CapitalAfter, 0.0)
	assert.Equal(t, 1, summary.Slashes)

	before := c.Snapshot()
	for i := 0; i < 3; i++ {
		_, err := c.AdvanceRound()
		require.ErrorIs(t, err, ErrGameOver)
	}
	after := c.Snapshot()

	assert.Equal(t, before.Round, after.Round)
	assert.Equal(t, before.Player.Capital, after.Player.Capital)
	assert.Equal(t, before.TotalEarnings, after.TotalEarnings)
}

func TestAdvanceRound_ClampedPenaltyNeverLoses(t *testing.T) {
	c := newTestController(t, Options{
		Catalog:      singleNetworkCatalog(0, 0, 1),
		Source:       random.Constant(1.0),
		ClampPenalty: true,
	})
	_, err := c.Deposit("vault", 10000)
	require.NoError(t, err)

	summary, err := c.AdvanceRound()
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.TotalReward)
	// capital is untouched by a zero total, so the game ends on the empty purse
	assert.True(t, summary.GameOver)
}

func TestRegisterOperator_Twice(t *testing.T) {
	c := newTestController(t, Options{})

	op, err := c.RegisterOperator()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultOperatorName, op.Name)
	assert.Equal(t, 75.0, op.TrustScore)
	assert.Equal(t, 100.0, op.Liveness)
	assert.NoError(t, identity.ValidateOperatorID(op.ID))

	_, err = c.RegisterOperator()
	require.ErrorIs(t, err, ErrAlreadyOperator)

	s := c.Snapshot()
	assert.Len(t, s.Operators, 1)
	assert.True(t, s.Player.IsOperator)
	assert.Equal(t, op.ID, s.Player.OperatorID)
	assert.NotNil(t, s.PlayerOperator())
}

func lastEvent(t *testing.T, c *Controller) domain.Event {
	t.Helper()
	journal := c.Snapshot().Journal
	require.NotEmpty(t, journal)
	return journal[len(journal)-1]
}

func TestOperatorRounds_DecentralizationGate(t *testing.T) {
	cat := singleNetworkCatalog(50, 0.4, 1)
	cat.Networks[0].MinDecentralizationScore = 0.6
	c := newTestController(t, Options{Catalog: cat})
	_, err := c.RegisterOperator()
	require.NoError(t, err)

	summary, err := c.AdvanceRound()
	require.NoError(t, err)
	assert.Empty(t, summary.TasksGenerated)
	assert.Empty(t, c.Snapshot().AvailableTasks)
}

func TestAcceptTask_Errors(t *testing.T) {
	c := newTestController(t, Options{})

	_, err := c.AcceptTask("anything")
	require.ErrorIs(t, err, ErrNotAnOperator)

	_, err = c.RegisterOperator()
	require.NoError(t, err)
	_, err = c.AcceptTask("missing")
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestOperatorRounds(t *testing.T) {
	// every draw is 0: all networks issue a task (reward 50, penalty 1),
	// liveness never decays and no task fails
	c := newTestController(t, Options{})
	_, err := c.RegisterOperator()
	require.NoError(t, err)

	first, err := c.AdvanceRound()
	require.NoError(t, err)
	require.Len(t, first.TasksGenerated, 6)
	assert.Equal(t, 0.0, first.TotalReward)
	assert.InDelta(t, 75.05, first.Operator.TrustScore, 1e-9)

	s := c.Snapshot()
	require.Len(t, s.AvailableTasks, 6)

	var ethTask, linkTask string
	for _, task := range s.AvailableTasks {
		assert.Equal(t, 50.0, task.Reward)
		assert.Equal(t, 1.0, task.TrustPenalty)
		switch task.NetworkID {
		case "ethereum":
			ethTask = task.ID
		case "chainlink":
			linkTask = task.ID
		}
	}

	_, err = c.AcceptTask(linkTask)
	require.ErrorIs(t, err, ErrOperatorNotEligible)
	notice := lastEvent(t, c)
	assert.Equal(t, domain.EventKindNotice, notice.Kind)
	assert.Contains(t, notice.Message, "stays on offer until the next round")
	assert.Len(t, c.Snapshot().AvailableTasks, 6)

	accepted, err := c.AcceptTask(ethTask)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusAccepted, accepted.Status)
	assert.Len(t, c.Snapshot().AvailableTasks, 5)

	second, err := c.AdvanceRound()
	require.NoError(t, err)
	require.Len(t, second.TaskOutcomes, 1)
	assert.True(t, second.TaskOutcomes[0].Succeeded)
	assert.Equal(t, 1, second.TasksSucceeded())
	assert.Equal(t, 0, second.TasksFailed())
	assert.Equal(t, 50.0, second.TaskRewards)
	assert.Equal(t, 10050.0, second.CapitalAfter)
	assert.Equal(t, 1, second.Operator.TasksCompleted)
	assert.Empty(t, second.Operator.AcceptedTasks)
	assert.InDelta(t, 75.05+0.05+0.5, second.Operator.TrustScore, 1e-9)

	// previous offers expired and were replaced
	for _, task := range c.Snapshot().AvailableTasks {
		assert.NotEqual(t, ethTask, task.ID)
	}
}

func TestAdvanceRound_Cooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newTestController(t, Options{
		Cooldown: time.Second,
		Clock:    func() time.Time { return now },
	})
	_, err := c.Deposit("vault-01", 100)
	require.NoError(t, err)

	_, err = c.AdvanceRound()
	require.NoError(t, err)

	_, err = c.AdvanceRound()
	require.ErrorIs(t, err, ErrCooldown)
	assert.Equal(t, 2, c.Snapshot().Round)

	now = now.Add(time.Second)
	_, err = c.AdvanceRound()
	require.NoError(t, err)
	assert.Equal(t, 3, c.Snapshot().Round)
}

func TestAdvanceRound_RejectsOverlap(t *testing.T) {
	c := newTestController(t, Options{})
	_, err := c.Deposit("vault-01", 100)
	require.NoError(t, err)

	c.busy.Store(true)
	_, err = c.AdvanceRound()
	require.ErrorIs(t, err, ErrRoundInProgress)

	c.busy.Store(false)
	_, err = c.AdvanceRound()
	require.NoError(t, err)
}

func TestReset(t *testing.T) {
	c := newTestController(t, Options{Seed: 3})
	session := c.SessionID()

	_, err := c.Deposit("vault-01", 2500)
	require.NoError(t, err)
	_, err = c.RegisterOperator()
	require.NoError(t, err)
	_, err = c.AdvanceRound()
	require.NoError(t, err)

	c.Reset()
	s := c.Snapshot()

	assert.Equal(t, 1, s.Round)
	assert.Equal(t, 10000.0, s.Player.Capital)
	assert.Equal(t, 0.0, s.TotalEarnings)
	assert.False(t, s.Player.IsOperator)
	assert.Empty(t, s.Player.OperatorID)
	assert.Empty(t, s.Deposits)
	assert.Empty(t, s.Operators)
	assert.Empty(t, s.AvailableTasks)
	assert.False(t, s.GameOver)
	assert.NotEqual(t, session, s.SessionID)
	for _, v := range s.Vaults {
		assert.Equal(t, 0.0, v.TVL)
	}
	for _, n := range s.Networks {
		assert.Equal(t, 0.0, n.CurrentStake)
	}
	require.Len(t, s.Journal, 1)
	assert.Equal(t, domain.EventKindReset, s.Journal[0].Kind)
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	c := newTestController(t, Options{})
	_, err := c.Deposit("vault-01", 100)
	require.NoError(t, err)

	s := c.Snapshot()
	s.Player.Capital = 0
	s.Deposits[0].Amount = 1
	s.Vaults[0].DelegationStrategy[0].Allocation = 0
	s.Networks[0].TargetStake = 0

	fresh := c.Snapshot()
	assert.Equal(t, 9900.0, fresh.Player.Capital)
	assert.Equal(t, 100.0, fresh.Deposits[0].Amount)
	assert.Equal(t, 0.5, fresh.Vaults[0].DelegationStrategy[0].Allocation)
	assert.Equal(t, 20000.0, fresh.Networks[0].TargetStake)
}

func TestAdvanceRound_DeterministicForSeed(t *testing.T) {
	run := func() []float64 {
		c, err := NewController(Options{Seed: 42})
		require.NoError(t, err)
		_, err = c.Deposit("vault-02", 5000)
		require.NoError(t, err)
		_, err = c.RegisterOperator()
		require.NoError(t, err)

		var totals []float64
		for i := 0; i < 20; i++ {
			summary, err := c.AdvanceRound()
			if err != nil {
				break
			}
			totals = append(totals, summary.TotalReward)
		}
		return totals
	}

	assert.Equal(t, run(), run())
}

func TestJournal_Limit(t *testing.T) {
	c := newTestController(t, Options{JournalLimit: 5})
	for i := 0; i < 10; i++ {
		_, _ = c.Deposit("vault-01", 1)
	}
	assert.Len(t, c.Snapshot().Journal, 5)
}

func TestErrorKind(t *testing.T) {
	c := newTestController(t, Options{})
	_, err := c.Deposit("nope", 1)

	assert.Equal(t, "VaultNotFound", ErrorKind(err))
	assert.Equal(t, "GameOver", ErrorKind(ErrGameOver))
	assert.Equal(t, "TaskNotFound", ErrorKind(ErrTaskNotFound))
	assert.Equal(t, "Internal", ErrorKind(assert.AnError))
}
