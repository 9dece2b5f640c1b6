package operator

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/random"
)

func newOperator() *domain.Operator {
	return &domain.Operator{
		ID:         "op-1",
		Name:       domain.DefaultOperatorName,
		TrustScore: domain.DefaultOperatorTrustScore,
		Liveness:   domain.DefaultOperatorLiveness,
	}
}

func seqID(networkID string, seq int) string {
	return fmt.Sprintf("%s-%d", networkID, seq)
}

func TestDecayLiveness(t *testing.T) {
	tests := []struct {
		name     string
		liveness float64
		draw     float64
		want     float64
	}{
		{"no decay", 100, 0, 100},
		{"half step", 100, 0.5, 99.75},
		{"floored at zero", 0.1, 0.9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := newOperator()
			op.Liveness = tt.liveness
			DecayLiveness(op, random.Constant(tt.draw))
			if math.Abs(op.Liveness-tt.want) > 1e-9 {
				t.Errorf("liveness = %f, want %f", op.Liveness, tt.want)
			}
		})
	}
}

func TestAdjustTrust(t *testing.T) {
	tests := []struct {
		name     string
		liveness float64
		trust    float64
		want     float64
	}{
		{"low liveness decays", 70, 75, 74.9},
		{"high liveness grows", 100, 75, 75.05},
		{"middle band unchanged", 90, 75, 75},
		{"capped at 100", 100, 99.99, 100},
		{"floored at 0", 0, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := newOperator()
			op.Liveness = tt.liveness
			op.TrustScore = tt.trust
			AdjustTrust(op)
			if math.Abs(op.TrustScore-tt.want) > 1e-9 {
				t.Errorf("trust = %f, want %f", op.TrustScore, tt.want)
			}
		})
	}
}

func TestTaskChance(t *testing.T) {
	tests := []struct {
		name   string
		trust  float64
		active int
		want   float64
	}{
		{"perfect trust no operators", 100, 0, 0.2},
		{"trust 90 one operator", 90, 1, 0.25 * 1.1},
		{"capped", 0, 5, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TaskChance(&domain.Network{TrustScore: tt.trust}, tt.active)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TaskChance() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestGenerateTasks(t *testing.T) {
	networks := []*domain.Network{
		{ID: "ethereum", Name: "Ethereum", TrustScore: 95},
		{ID: "solana", Name: "Solana", TrustScore: 85},
	}
	// ethereum: chance draw 0.9 misses
	// solana: chance draw 0.1 hits, reward draw 0.0 -> 50, penalty draw 0.99 -> 5
	rng := random.NewSequence(0.9, 0.1, 0.0, 0.99)

	tasks := GenerateTasks(networks, 1, rng, seqID)

	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.ID != "solana-0" || task.NetworkID != "solana" {
		t.Errorf("unexpected task identity: %+v", task)
	}
	if task.Reward != 50 || task.TrustPenalty != 5 {
		t.Errorf("reward/penalty = %f/%f, want 50/5", task.Reward, task.TrustPenalty)
	}
	if task.Status != domain.TaskStatusAvailable {
		t.Errorf("status = %s, want available", task.Status)
	}
	if rng.Drawn() != 4 {
		t.Errorf("drawn = %d, want 4", rng.Drawn())
	}
}

func TestGenerateTasks_SkipsNetworksBelowDecentralization(t *testing.T) {
	networks := []*domain.Network{
		{ID: "fragile", Name: "Fragile", TrustScore: 50, DecentralizationScore: 0.4, MinDecentralizationScore: 0.6},
		{ID: "healthy", Name: "Healthy", TrustScore: 50, DecentralizationScore: 0.8, MinDecentralizationScore: 0.6},
	}
	// both chance draws hit; only the healthy network spends reward/penalty draws
	rng := random.NewSequence(0.0, 0.0, 0.5, 0.5)

	tasks := GenerateTasks(networks, 1, rng, seqID)

	if len(tasks) != 1 || tasks[0].NetworkID != "healthy" {
		t.Fatalf("expected one task on healthy, got %+v", tasks)
	}
	if tasks[0].ID != "healthy-0" {
		t.Errorf("id = %s, want healthy-0", tasks[0].ID)
	}
	if rng.Drawn() != 4 {
		t.Errorf("drawn = %d, want 4", rng.Drawn())
	}
}

func TestGenerateTasks_RangesHold(t *testing.T) {
	networks := []*domain.Network{{ID: "n", Name: "N", TrustScore: 0}}
	rng := random.NewSeeded(7)

	for i := 0; i < 500; i++ {
		for _, task := range GenerateTasks(networks, 10, rng, seqID) {
			if task.Reward < MinTaskReward || task.Reward > MaxTaskReward {
				t.Fatalf("reward out of range: %f", task.Reward)
			}
			if task.TrustPenalty < MinTrustPenalty || task.TrustPenalty > MaxTrustPenalty {
				t.Fatalf("penalty out of range: %f", task.TrustPenalty)
			}
		}
	}
}

func TestAcceptTask(t *testing.T) {
	available := []*domain.Task{
		{ID: "a", NetworkID: "ethereum", Status: domain.TaskStatusAvailable},
		{ID: "b", NetworkID: "solana", Status: domain.TaskStatusAvailable},
	}

	t.Run("not an operator", func(t *testing.T) {
		_, rest, err := AcceptTask(nil, available, "a", nil)
		if !errors.Is(err, ErrNotAnOperator) {
			t.Errorf("err = %v, want ErrNotAnOperator", err)
		}
		if len(rest) != 2 {
			t.Errorf("available mutated: %d", len(rest))
		}
	})

	t.Run("unknown task", func(t *testing.T) {
		_, _, err := AcceptTask(newOperator(), available, "zzz", nil)
		if !errors.Is(err, ErrTaskNotFound) {
			t.Errorf("err = %v, want ErrTaskNotFound", err)
		}
	})

	t.Run("not eligible", func(t *testing.T) {
		networks := []*domain.Network{{ID: "ethereum", Name: "Ethereum", MinOperatorTrustScore: 90}}
		op := newOperator()
		_, _, err := AcceptTask(op, available, "a", networks)
		if !errors.Is(err, ErrOperatorNotEligible) {
			t.Errorf("err = %v, want ErrOperatorNotEligible", err)
		}
		if len(op.AcceptedTasks) != 0 {
			t.Errorf("accepted tasks = %d, want 0", len(op.AcceptedTasks))
		}
	})

	t.Run("accepted", func(t *testing.T) {
		local := []*domain.Task{
			{ID: "a", NetworkID: "ethereum", Status: domain.TaskStatusAvailable},
			{ID: "b", NetworkID: "solana", Status: domain.TaskStatusAvailable},
		}
		op := newOperator()
		task, rest, err := AcceptTask(op, local, "b", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.Status != domain.TaskStatusAccepted {
			t.Errorf("status = %s, want accepted", task.Status)
		}
		if len(rest) != 1 || rest[0].ID != "a" {
			t.Errorf("remaining = %v", rest)
		}
		if len(op.AcceptedTasks) != 1 || op.AcceptedTasks[0].ID != "b" {
			t.Errorf("accepted = %v", op.AcceptedTasks)
		}
	})
}

func TestResolveTasks(t *testing.T) {
	op := newOperator()
	op.Liveness = 80 // failure chance 0.1
	op.AcceptedTasks = []*domain.Task{
		{ID: "ok", Reward: 120, TrustPenalty: 3, Status: domain.TaskStatusAccepted},
		{ID: "bad", Reward: 80, TrustPenalty: 4, Status: domain.TaskStatusAccepted},
	}

	res := ResolveTasks(op, random.NewSequence(0.5, 0.05))

	if res.Reward != 120 {
		t.Errorf("reward = %f, want 120", res.Reward)
	}
	if res.Succeeded != 1 || res.Failed != 1 {
		t.Errorf("succeeded/failed = %d/%d, want 1/1", res.Succeeded, res.Failed)
	}
	if op.TasksCompleted != 1 {
		t.Errorf("tasks completed = %d, want 1", op.TasksCompleted)
	}
	// 75 + 0.5 - 4
	if math.Abs(op.TrustScore-71.5) > 1e-9 {
		t.Errorf("trust = %f, want 71.5", op.TrustScore)
	}
	if len(op.AcceptedTasks) != 0 {
		t.Errorf("accepted tasks not cleared: %d", len(op.AcceptedTasks))
	}
	if len(res.Events) != 2 {
		t.Errorf("events = %d, want 2", len(res.Events))
	}
}

func TestFailureChance(t *testing.T) {
	if got := FailureChance(100); got != 0 {
		t.Errorf("FailureChance(100) = %f, want 0", got)
	}
	if got := FailureChance(40); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("FailureChance(40) = %f, want 0.5", got)
	}
}
