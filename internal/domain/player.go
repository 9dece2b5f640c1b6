package domain

// Player represents the single human player.
type Player struct {
	Capital    float64 // signed; <= 0 ends the game
	IsStaker   bool
	IsOperator bool
	OperatorID string // weak reference into the operator registry
}
