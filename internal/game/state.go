package game

import (
	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/reward"
)

// State is the complete simulation state owned by a Controller.
type State struct {
	SessionID      string
	Round          int // current (unsettled) round, starts at 1
	TotalEarnings  float64
	GameOver       bool
	Player         domain.Player
	Networks       []*domain.Network
	Vaults         []*domain.Vault
	Deposits       []*domain.Deposit
	Operators      []*domain.Operator
	AvailableTasks []*domain.Task
	Journal        []domain.Event // most recent last
}

// PlayerOperator resolves the player's weak operator reference.
func (s *State) PlayerOperator() *domain.Operator {
	if !s.Player.IsOperator {
		return nil
	}
	return domain.FindOperator(s.Operators, s.Player.OperatorID)
}

// Clone returns a deep copy safe to hand to readers.
func (s *State) Clone() *State {
	out := &State{
		SessionID:     s.SessionID,
		Round:         s.Round,
		TotalEarnings: s.TotalEarnings,
		GameOver:      s.GameOver,
		Player:        s.Player,
		Networks:      cloneNetworks(s.Networks),
		Journal:       append([]domain.Event(nil), s.Journal...),
	}

	out.Vaults = make([]*domain.Vault, 0, len(s.Vaults))
	for _, v := range s.Vaults {
		vc := *v
		vc.DelegationStrategy = append([]domain.Allocation(nil), v.DelegationStrategy...)
		out.Vaults = append(out.Vaults, &vc)
	}

	out.Deposits = make([]*domain.Deposit, 0, len(s.Deposits))
	for _, d := range s.Deposits {
		dc := *d
		out.Deposits = append(out.Deposits, &dc)
	}

	out.Operators = make([]*domain.Operator, 0, len(s.Operators))
	for _, op := range s.Operators {
		out.Operators = append(out.Operators, cloneOperator(op))
	}

	out.AvailableTasks = cloneTasks(s.AvailableTasks)
	return out
}

func cloneNetworks(in []*domain.Network) []*domain.Network {
	out := make([]*domain.Network, 0, len(in))
	for _, n := range in {
		nc := *n
		out = append(out, &nc)
	}
	return out
}

func cloneTasks(in []*domain.Task) []*domain.Task {
	if in == nil {
		return nil
	}
	out := make([]*domain.Task, 0, len(in))
	for _, t := range in {
		tc := *t
		out = append(out, &tc)
	}
	return out
}

func cloneOperator(op *domain.Operator) *domain.Operator {
	if op == nil {
		return nil
	}
	oc := *op
	oc.AcceptedTasks = cloneTasks(op.AcceptedTasks)
	return &oc
}

// DepositRecord is the result of a successful deposit.
type DepositRecord struct {
	VaultID      string
	Amount       float64 // this deposit
	TotalAmount  float64 // accumulated deposit in the vault
	VaultTVL     float64
	CapitalAfter float64
}

// TaskOutcome is the settlement result of one accepted task.
type TaskOutcome struct {
	TaskID    string
	NetworkID string
	Reward    float64
	Penalty   float64
	Succeeded bool
}

// RoundSummary describes one settled round.
type RoundSummary struct {
	SessionID      string
	Round          int // the round that was settled
	VaultRewards   float64
	TaskRewards    float64
	TotalReward    float64
	CapitalAfter   float64
	TotalEarnings  float64
	Slashes        int
	Vaults         []reward.VaultReward
	TasksGenerated []*domain.Task
	TaskOutcomes   []TaskOutcome
	Operator       *domain.Operator  // copy after settlement, nil when not an operator
	Networks       []*domain.Network // copy after delegation refresh
	Events         []domain.Event
	GameOver       bool
}

// TasksSucceeded counts successful task outcomes.
func (s *RoundSummary) TasksSucceeded() int {
	n := 0
	for _, o := range s.TaskOutcomes {
		if o.Succeeded {
			n++
		}
	}
	return n
}

// TasksFailed counts failed task outcomes.
func (s *RoundSummary) TasksFailed() int {
	return len(s.TaskOutcomes) - s.TasksSucceeded()
}
