package domain

// EventKind classifies journal events.
type EventKind string

const (
	EventKindDeposit            EventKind = "DEPOSIT"
	EventKindOperatorRegistered EventKind = "OPERATOR_REGISTERED"
	EventKindTaskGenerated      EventKind = "TASK_GENERATED"
	EventKindTaskAccepted       EventKind = "TASK_ACCEPTED"
	EventKindTaskSucceeded      EventKind = "TASK_SUCCEEDED"
	EventKindTaskFailed         EventKind = "TASK_FAILED"
	EventKindOverStaked         EventKind = "OVER_STAKED"
	EventKindSlashing           EventKind = "SLASHING"
	EventKindRoundReward        EventKind = "ROUND_REWARD"
	EventKindRoundLoss          EventKind = "ROUND_LOSS"
	EventKindRoundCompleted     EventKind = "ROUND_COMPLETED"
	EventKindGameOver           EventKind = "GAME_OVER"
	EventKindReset              EventKind = "RESET"
	EventKindNotice             EventKind = "NOTICE"
)

// Event is a user-visible message produced by the simulation.
type Event struct {
	Round   int       `json:"round"`
	Kind    EventKind `json:"kind"`
	Message string    `json:"message"`
}
