package domain

// RoundRecord represents one settled round in the append-only ledger.
// Corresponds to round_records table in PostgreSQL / SQLite.
type RoundRecord struct {
	SessionID      string  // game session (changes on reset)
	Round          int     // round number that was settled
	VaultRewards   float64 // sum of vault contributions (may be negative)
	TaskRewards    float64 // sum of successful task rewards
	TotalReward    float64 // VaultRewards + TaskRewards
	CapitalAfter   float64 // player capital after settlement
	TotalEarnings  float64 // cumulative earnings after settlement
	SlashingEvents int     // number of penalty multipliers applied
	TasksSucceeded int
	TasksFailed    int
	OperatorTrust  *float64 // nil when the player is not an operator
	GameOver       bool
	Events         []Event
	CreatedAt      int64 // record creation timestamp (ms)
}

// NetworkSnapshot represents the state of one network after a round.
// Corresponds to network_snapshots table in ClickHouse.
type NetworkSnapshot struct {
	SessionID    string
	Round        int
	NetworkID    string
	CurrentStake float64
	TargetStake  float64
	MiningRate   float64 // target/current when over-staked, else 1
	TrustScore   float64
	RecordedAt   int64 // Unix timestamp in milliseconds
}
