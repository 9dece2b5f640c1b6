package api

import (
	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/game"
	"github.com/immortaldarkveil/Symulator/internal/reward"
)

// NetworkView is the JSON form of a network.
type NetworkView struct {
	ID                       string  `json:"id"`
	Name                     string  `json:"name"`
	TrustScore               float64 `json:"trust_score"`
	APY                      float64 `json:"apy"`
	TargetStake              float64 `json:"target_stake"`
	CurrentStake             float64 `json:"current_stake"`
	MiningRate               float64 `json:"mining_rate"`
	RiskCategory             string  `json:"risk_category"`
	DecentralizationScore    float64 `json:"decentralization_score"`
	MinOperatorTrustScore    float64 `json:"min_operator_trust_score"`
	MinDecentralizationScore float64 `json:"min_decentralization_score"`
	OverStaked               bool    `json:"over_staked"`
	IssuesTasks              bool    `json:"issues_tasks"`
}

// VaultView is the JSON form of a vault.
type VaultView struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Type               string              `json:"type"`
	OperatorID         string              `json:"operator_id,omitempty"`
	Description        string              `json:"description,omitempty"`
	TVL                float64             `json:"tvl"`
	RestakingRatio     float64             `json:"restaking_ratio"`
	DelegationStrategy []domain.Allocation `json:"delegation_strategy"`
}

// DepositView is the JSON form of an accumulated deposit.
type DepositView struct {
	VaultID string  `json:"vault_id"`
	Amount  float64 `json:"amount"`
}

// TaskView is the JSON form of a task.
type TaskView struct {
	ID           string  `json:"id"`
	NetworkID    string  `json:"network_id"`
	Reward       float64 `json:"reward"`
	TrustPenalty float64 `json:"trust_penalty"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
}

// OperatorView is the JSON form of an operator.
type OperatorView struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	TrustScore     float64    `json:"trust_score"`
	Liveness       float64    `json:"liveness"`
	TasksCompleted int        `json:"tasks_completed"`
	AcceptedTasks  []TaskView `json:"accepted_tasks"`
}

// PlayerView is the JSON form of the player.
type PlayerView struct {
	Capital    float64 `json:"capital"`
	IsStaker   bool    `json:"is_staker"`
	IsOperator bool    `json:"is_operator"`
	OperatorID string  `json:"operator_id,omitempty"`
}

// StateView is the JSON form of the full game state.
type StateView struct {
	SessionID      string         `json:"session_id"`
	Round          int            `json:"round"`
	TotalEarnings  float64        `json:"total_earnings"`
	GameOver       bool           `json:"game_over"`
	Player         PlayerView     `json:"player"`
	Operator       *OperatorView  `json:"operator,omitempty"`
	Networks       []NetworkView  `json:"networks"`
	Vaults         []VaultView    `json:"vaults"`
	Deposits       []DepositView  `json:"deposits"`
	AvailableTasks []TaskView     `json:"available_tasks"`
	Journal        []domain.Event `json:"journal"`
}

// DepositResultView is the JSON form of a successful deposit.
type DepositResultView struct {
	VaultID      string  `json:"vault_id"`
	Amount       float64 `json:"amount"`
	TotalAmount  float64 `json:"total_amount"`
	VaultTVL     float64 `json:"vault_tvl"`
	CapitalAfter float64 `json:"capital_after"`
}

// VaultRewardView is one vault's contribution to a round.
type VaultRewardView struct {
	VaultID string  `json:"vault_id"`
	Reward  float64 `json:"reward"`
	Slashes int     `json:"slashes"`
}

// TaskOutcomeView is the settlement of one accepted task.
type TaskOutcomeView struct {
	TaskID    string  `json:"task_id"`
	NetworkID string  `json:"network_id"`
	Reward    float64 `json:"reward"`
	Penalty   float64 `json:"penalty"`
	Succeeded bool    `json:"succeeded"`
}

// RoundView is the JSON form of a round summary.
type RoundView struct {
	SessionID      string            `json:"session_id"`
	Round          int               `json:"round"`
	VaultRewards   float64           `json:"vault_rewards"`
	TaskRewards    float64           `json:"task_rewards"`
	TotalReward    float64           `json:"total_reward"`
	CapitalAfter   float64           `json:"capital_after"`
	TotalEarnings  float64           `json:"total_earnings"`
	Slashes        int               `json:"slashes"`
	Vaults         []VaultRewardView `json:"vaults"`
	TasksGenerated []TaskView        `json:"tasks_generated"`
	TaskOutcomes   []TaskOutcomeView `json:"task_outcomes"`
	Operator       *OperatorView     `json:"operator,omitempty"`
	Networks       []NetworkView     `json:"networks"`
	Events         []domain.Event    `json:"events"`
	GameOver       bool              `json:"game_over"`
}

// RoundRecordView is the JSON form of a ledger row.
type RoundRecordView struct {
	Round          int            `json:"round"`
	VaultRewards   float64        `json:"vault_rewards"`
	TaskRewards    float64        `json:"task_rewards"`
	TotalReward    float64        `json:"total_reward"`
	CapitalAfter   float64        `json:"capital_after"`
	TotalEarnings  float64        `json:"total_earnings"`
	SlashingEvents int            `json:"slashing_events"`
	TasksSucceeded int            `json:"tasks_succeeded"`
	TasksFailed    int            `json:"tasks_failed"`
	OperatorTrust  *float64       `json:"operator_trust,omitempty"`
	GameOver       bool           `json:"game_over"`
	Events         []domain.Event `json:"events"`
	CreatedAt      int64          `json:"created_at"`
}

func networkViews(in []*domain.Network) []NetworkView {
	out := make([]NetworkView, 0, len(in))
	for _, n := range in {
		out = append(out, NetworkView{
			ID:                       n.ID,
			Name:                     n.Name,
			TrustScore:               n.TrustScore,
			APY:                      n.APY,
			TargetStake:              n.TargetStake,
			CurrentStake:             n.CurrentStake,
			MiningRate:               reward.MiningRate(n),
			RiskCategory:             n.RiskCategory(),
			DecentralizationScore:    n.DecentralizationScore,
			MinOperatorTrustScore:    n.MinOperatorTrustScore,
			MinDecentralizationScore: n.MinDecentralizationScore,
			OverStaked:               n.IsOverStaked(),
			IssuesTasks:              n.MeetsDecentralization(),
		})
	}
	return out
}

func taskViews(in []*domain.Task) []TaskView {
	out := make([]TaskView, 0, len(in))
	for _, t := range in {
		out = append(out, taskView(t))
	}
	return out
}

func taskView(t *domain.Task) TaskView {
	return TaskView{
		ID:           t.ID,
		NetworkID:    t.NetworkID,
		Reward:       t.Reward,
		TrustPenalty: t.TrustPenalty,
		Description:  t.Description,
		Status:       string(t.Status),
	}
}

func operatorView(op *domain.Operator) *OperatorView {
	if op == nil {
		return nil
	}
	return &OperatorView{
		ID:             op.ID,
		Name:           op.Name,
		TrustScore:     op.TrustScore,
		Liveness:       op.Liveness,
		TasksCompleted: op.TasksCompleted,
		AcceptedTasks:  taskViews(op.AcceptedTasks),
	}
}

func stateView(s *game.State) StateView {
	v := StateView{
		SessionID:     s.SessionID,
		Round:         s.Round,
		TotalEarnings: s.TotalEarnings,
		GameOver:      s.GameOver,
		Player: PlayerView{
			Capital:    s.Player.Capital,
			IsStaker:   s.Player.IsStaker,
			IsOperator: s.Player.IsOperator,
			OperatorID: s.Player.OperatorID,
		},
		Operator:       operatorView(s.PlayerOperator()),
		Networks:       networkViews(s.Networks),
		Vaults:         make([]VaultView, 0, len(s.Vaults)),
		Deposits:       make([]DepositView, 0, len(s.Deposits)),
		AvailableTasks: taskViews(s.AvailableTasks),
		Journal:        append([]domain.Event{}, s.Journal...),
	}
	for _, vault := range s.Vaults {
		v.Vaults = append(v.Vaults, VaultView{
			ID:                 vault.ID,
			Name:               vault.Name,
			Type:               vault.Type.String(),
			OperatorID:         vault.OperatorID,
			Description:        vault.Description,
			TVL:                vault.TVL,
			RestakingRatio:     vault.RestakingRatio,
			DelegationStrategy: vault.DelegationStrategy,
		})
	}
	for _, d := range s.Deposits {
		v.Deposits = append(v.Deposits, DepositView{VaultID: d.VaultID, Amount: d.Amount})
	}
	return v
}

func depositResultView(r *game.DepositRecord) DepositResultView {
	return DepositResultView{
		VaultID:      r.VaultID,
		Amount:       r.Amount,
		TotalAmount:  r.TotalAmount,
		VaultTVL:     r.VaultTVL,
		CapitalAfter: r.CapitalAfter,
	}
}

func roundView(s *game.RoundSummary) RoundView {
	v := RoundView{
		SessionID:      s.SessionID,
		Round:          s.Round,
		VaultRewards:   s.VaultRewards,
		TaskRewards:    s.TaskRewards,
		TotalReward:    s.TotalReward,
		CapitalAfter:   s.CapitalAfter,
		TotalEarnings:  s.TotalEarnings,
		Slashes:        s.Slashes,
		Vaults:         vaultRewardViews(s.Vaults),
		TasksGenerated: taskViews(s.TasksGenerated),
		TaskOutcomes:   make([]TaskOutcomeView, 0, len(s.TaskOutcomes)),
		Operator:       operatorView(s.Operator),
		Networks:       networkViews(s.Networks),
		Events:         append([]domain.Event{}, s.Events...),
		GameOver:       s.GameOver,
	}
	for _, o := range s.TaskOutcomes {
		v.TaskOutcomes = append(v.TaskOutcomes, TaskOutcomeView{
			TaskID:    o.TaskID,
			NetworkID: o.NetworkID,
			Reward:    o.Reward,
			Penalty:   o.Penalty,
			Succeeded: o.Succeeded,
		})
	}
	return v
}

func vaultRewardViews(in []reward.VaultReward) []VaultRewardView {
	out := make([]VaultRewardView, 0, len(in))
	for _, vr := range in {
		out = append(out, VaultRewardView{VaultID: vr.VaultID, Reward: vr.Reward, Slashes: vr.Slashes})
	}
	return out
}

func roundRecordViews(in []*domain.RoundRecord) []RoundRecordView {
	out := make([]RoundRecordView, 0, len(in))
	for _, r := range in {
		out = append(out, RoundRecordView{
			Round:          r.Round,
			VaultRewards:   r.VaultRewards,
			TaskRewards:    r.TaskRewards,
			TotalReward:    r.TotalReward,
			CapitalAfter:   r.CapitalAfter,
			TotalEarnings:  r.TotalEarnings,
			SlashingEvents: r.SlashingEvents,
			TasksSucceeded: r.TasksSucceeded,
			TasksFailed:    r.TasksFailed,
			OperatorTrust:  r.OperatorTrust,
			GameOver:       r.GameOver,
			Events:         append([]domain.Event{}, r.Events...),
			CreatedAt:      r.CreatedAt,
		})
	}
	return out
}

// toView converts orchestrator payloads into their JSON form.
func toView(payload any) any {
	switch p := payload.(type) {
	case *game.State:
		return stateView(p)
	case *game.RoundSummary:
		return roundView(p)
	case *game.DepositRecord:
		return depositResultView(p)
	case *domain.Operator:
		return operatorView(p)
	case *domain.Task:
		return taskView(p)
	default:
		return payload
	}
}
