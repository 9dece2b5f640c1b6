// Package operator implements the operator lifecycle: liveness decay, trust
// drift, probabilistic task generation, acceptance and settlement.
package operator

import (
	"errors"
	"fmt"
	"math"

	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/random"
)

// Sentinel errors
var (
	ErrNotAnOperator       = errors.New("player is not an operator")
	ErrTaskNotFound        = errors.New("task not found")
	ErrOperatorNotEligible = errors.New("operator trust score below network minimum")
)

// Tuning constants.
const (
	MaxLivenessDecay     = 0.5
	LowLivenessMark      = 80.0
	HighLivenessMark     = 95.0
	FailureLivenessMark  = 90.0
	SuccessTrustGain     = 0.5
	BaseTaskChance       = 0.2
	MaxTaskChance        = 0.8
	OperatorChanceFactor = 0.1
	MinTaskReward        = 50
	MaxTaskReward        = 150
	MinTrustPenalty      = 1
	MaxTrustPenalty      = 5
)

// TaskIDFunc assigns an id to the seq-th task generated for a network.
type TaskIDFunc func(networkID string, seq int) string

// DecayLiveness subtracts a uniform draw in [0, 0.5) from liveness, floored at 0.
func DecayLiveness(op *domain.Operator, rng random.Source) {
	op.Liveness = math.Max(0, op.Liveness-rng.Float64()*MaxLivenessDecay)
}

// AdjustTrust drifts the trust score according to current liveness.
func AdjustTrust(op *domain.Operator) {
	switch {
	case op.Liveness < LowLivenessMark:
		op.TrustScore = math.Max(0, op.TrustScore-(LowLivenessMark-op.Liveness)/100)
	case op.Liveness > HighLivenessMark:
		op.TrustScore = math.Min(100, op.TrustScore+(op.Liveness-HighLivenessMark)/100)
	}
}

// TaskChance returns the per-round probability that a network issues a task.
func TaskChance(n *domain.Network, activeOperators int) float64 {
	base := BaseTaskChance + (100-n.TrustScore)/200
	return math.Min(MaxTaskChance, base*(1+float64(activeOperators)*OperatorChanceFactor))
}

// GenerateTasks draws once per network in registry order and returns the
// newly available tasks. A spawned task consumes two further draws for its
// reward and trust penalty. A network below its decentralization threshold
// still consumes its draw but issues no task.
func GenerateTasks(networks []*domain.Network, activeOperators int, rng random.Source, idFn TaskIDFunc) []*domain.Task {
	var tasks []*domain.Task
	seq := 0
	for _, n := range networks {
		draw := rng.Float64()
		if !n.MeetsDecentralization() || draw >= TaskChance(n, activeOperators) {
			continue
		}
		reward := random.IntRange(rng, MinTaskReward, MaxTaskReward)
		penalty := random.IntRange(rng, MinTrustPenalty, MaxTrustPenalty)
		tasks = append(tasks, &domain.Task{
			ID:           idFn(n.ID, seq),
			NetworkID:    n.ID,
			Reward:       float64(reward),
			TrustPenalty: float64(penalty),
			Description:  fmt.Sprintf("Validate a batch of %s transactions", n.Name),
			Status:       domain.TaskStatusAvailable,
		})
		seq++
	}
	return tasks
}

// AcceptTask moves the task with the given id from available into the
// operator's accepted list and returns the remaining available tasks.
// Networks may be nil, in which case eligibility is not checked.
func AcceptTask(op *domain.Operator, available []*domain.Task, taskID string, networks []*domain.Network) (*domain.Task, []*domain.Task, error) {
	if op == nil {
		return nil, available, ErrNotAnOperator
	}

	idx := -1
	for i, t := range available {
		if t.ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, available, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}

	task := available[idx]
	if n := domain.FindNetwork(networks, task.NetworkID); n != nil && !n.AcceptsOperator(op.TrustScore) {
		return nil, available, fmt.Errorf("%w: %s requires %.0f, have %.2f",
			ErrOperatorNotEligible, n.Name, n.MinOperatorTrustScore, op.TrustScore)
	}

	remaining := make([]*domain.Task, 0, len(available)-1)
	remaining = append(remaining, available[:idx]...)
	remaining = append(remaining, available[idx+1:]...)

	task.Status = domain.TaskStatusAccepted
	op.AcceptedTasks = append(op.AcceptedTasks, task)
	return task, remaining, nil
}

// Outcome is the settlement result of one accepted task.
type Outcome struct {
	Task      *domain.Task
	Succeeded bool
	Draw      float64
}

// Resolution summarizes a settlement pass.
type Resolution struct {
	Reward    float64
	Succeeded int
	Failed    int
	Outcomes  []Outcome
	Events    []domain.Event
}

// FailureChance returns the probability that a task fails at the given liveness.
func FailureChance(liveness float64) float64 {
	return math.Max(0, (FailureLivenessMark-liveness)/100)
}

// ResolveTasks settles every accepted task with one draw each and clears the
// accepted list regardless of outcome.
func ResolveTasks(op *domain.Operator, rng random.Source) Resolution {
	var res Resolution
	chance := FailureChance(op.Liveness)

	for _, task := range op.AcceptedTasks {
		u := rng.Float64()
		out := Outcome{Task: task, Draw: u, Succeeded: u >= chance}
		if out.Succeeded {
			res.Reward += task.Reward
			res.Succeeded++
			op.TasksCompleted++
			op.TrustScore = math.Min(100, op.TrustScore+SuccessTrustGain)
			msg := fmt.Sprintf("Task %s completed. Earned $%.2f.", shortID(task.ID), task.Reward)
			res.Events = append(res.Events, domain.Event{Kind: domain.EventKindTaskSucceeded, Message: msg})
		} else {
			res.Failed++
			op.TrustScore = math.Max(0, op.TrustScore-task.TrustPenalty)
			msg := fmt.Sprintf("Task %s failed. Trust score reduced by %.0f.", shortID(task.ID), task.TrustPenalty)
			res.Events = append(res.Events, domain.Event{Kind: domain.EventKindTaskFailed, Message: msg})
		}
		res.Outcomes = append(res.Outcomes, out)
	}

	op.AcceptedTasks = nil
	return res
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
