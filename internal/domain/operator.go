package domain

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusAvailable TaskStatus = "available"
	TaskStatusAccepted  TaskStatus = "accepted"
)

// Task represents a unit of operator work offered by a network.
type Task struct {
	ID           string     // deterministic hash
	NetworkID    string     // network that issued the task
	Reward       float64    // paid on success, > 0
	TrustPenalty float64    // trust lost on failure, > 0
	Description  string     // free text
	Status       TaskStatus // available | accepted
}

// Operator represents a node operator profile.
type Operator struct {
	ID             string  // base58 public key
	Name           string  // display name
	TrustScore     float64 // 0-100
	Liveness       float64 // 0-100
	TasksCompleted int     // successful tasks
	AcceptedTasks  []*Task // tasks to resolve at the next settlement
}

// Operator defaults for a freshly registered profile.
const (
	DefaultOperatorName       = "Your Operator Service"
	DefaultOperatorTrustScore = 75
	DefaultOperatorLiveness   = 100
)

// FindOperator returns the operator with the given ID, or nil.
func FindOperator(operators []*Operator, id string) *Operator {
	for _, op := range operators {
		if op.ID == id {
			return op
		}
	}
	return nil
}
