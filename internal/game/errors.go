package game

import (
	"errors"

	"github.com/immortaldarkveil/Symulator/internal/operator"
)

// Command errors. All of them are recoverable; GameOver persists until Reset.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientCapital = errors.New("insufficient capital")
	ErrVaultNotFound       = errors.New("vault not found")
	ErrAlreadyOperator     = errors.New("already an operator")
	ErrNotAnOperator       = operator.ErrNotAnOperator
	ErrTaskNotFound        = operator.ErrTaskNotFound
	ErrOperatorNotEligible = operator.ErrOperatorNotEligible
	ErrNoActivity          = errors.New("no active deposits and not an operator")
	ErrGameOver            = errors.New("game over")
	ErrRoundInProgress     = errors.New("round already in progress")
	ErrCooldown            = errors.New("round cooldown has not elapsed")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrInsufficientCapital, "InsufficientCapital"},
	{ErrVaultNotFound, "VaultNotFound"},
	{ErrAlreadyOperator, "AlreadyOperator"},
	{ErrNotAnOperator, "NotAnOperator"},
	{ErrTaskNotFound, "TaskNotFound"},
	{ErrOperatorNotEligible, "OperatorNotEligible"},
	{ErrNoActivity, "NoActivity"},
	{ErrGameOver, "GameOver"},
	{ErrRoundInProgress, "RoundInProgress"},
	{ErrCooldown, "Cooldown"},
}

// ErrorKind returns the stable name of a command error, or "Internal" for
// anything else.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "Internal"
}
