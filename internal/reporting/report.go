package reporting

import "time"

// Report represents a session report built from the round ledger.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	SessionID   string

	Summary SessionSummary

	// Per-round rows, ordered by round
	Rounds []RoundRow

	// Per-network rows, ordered by network_id; empty without snapshots
	Networks []NetworkRow
}

// SessionSummary aggregates the whole session.
type SessionSummary struct {
	Rounds          int
	StartingCapital float64 // CapitalAfter of round 1 minus its TotalReward
	FinalCapital    float64
	TotalEarnings   float64
	BestRound       int
	BestReward      float64
	WorstRound      int
	WorstReward     float64
	LosingRounds    int
	SlashingEvents  int
	TasksSucceeded  int
	TasksFailed     int
	MaxDrawdown     float64 // largest peak-to-trough capital drop, as a fraction of the peak
	FinalTrust      *float64
	GameOver        bool
}

// RoundRow represents one row of the rounds table.
type RoundRow struct {
	Round          int
	VaultRewards   float64
	TaskRewards    float64
	TotalReward    float64
	CapitalAfter   float64
	SlashingEvents int
	TasksSucceeded int
	TasksFailed    int
	OperatorTrust  *float64
	GameOver       bool
}

// NetworkRow summarizes one network across the session.
type NetworkRow struct {
	NetworkID        string
	FinalStake       float64
	TargetStake      float64
	MeanMiningRate   float64
	OverStakedRounds int
	TrustScore       float64
}
