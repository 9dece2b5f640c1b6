// Package orchestrator coordinates a game session with its collaborators:
// every settled round is recorded in the ledger and published to listeners.
// It also drives headless batch runs from a Plan.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/game"
	"github.com/immortaldarkveil/Symulator/internal/ledger"
	"github.com/immortaldarkveil/Symulator/internal/observability"
)

// Message kinds sent to publishers.
const (
	MessageRound    = "round"
	MessageDeposit  = "deposit"
	MessageOperator = "operator"
	MessageTask     = "task_accepted"
	MessageReset    = "reset"
	MessageNotice   = "notice"
)

// Publisher receives state changes, e.g. a websocket hub.
type Publisher interface {
	Publish(kind string, payload any)
}

// Orchestrator serializes commands through the game controller and fans the
// results out to the ledger and publisher.
type Orchestrator struct {
	controller *game.Controller
	recorder   *ledger.Recorder
	publisher  Publisher
	logger     *log.Logger
}

// Options for creating Orchestrator.
type Options struct {
	Controller *game.Controller // required
	Recorder   *ledger.Recorder // optional, rounds are not persisted without it
	Publisher  Publisher        // optional
	Logger     *log.Logger
}

// New creates a new Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Controller == nil {
		return nil, errors.New("orchestrator: controller is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Orchestrator{
		controller: opts.Controller,
		recorder:   opts.Recorder,
		publisher:  opts.Publisher,
		logger:     logger,
	}, nil
}

// Snapshot returns a deep copy of the game state.
func (o *Orchestrator) Snapshot() *game.State {
	return o.controller.Snapshot()
}

// Deposit forwards a deposit command.
func (o *Orchestrator) Deposit(vaultID string, amount float64) (*game.DepositRecord, error) {
	rec, err := o.controller.Deposit(vaultID, amount)
	if err != nil {
		return nil, o.fail("deposit", err)
	}
	observability.RecordDeposit(rec.CapitalAfter)
	o.publish(MessageDeposit, rec)
	return rec, nil
}

// RegisterOperator forwards an operator registration.
func (o *Orchestrator) RegisterOperator() (*domain.Operator, error) {
	op, err := o.controller.RegisterOperator()
	if err != nil {
		return nil, o.fail("register_operator", err)
	}
	o.publish(MessageOperator, op)
	return op, nil
}

// AcceptTask forwards a task acceptance.
func (o *Orchestrator) AcceptTask(taskID string) (*domain.Task, error) {
	task, err := o.controller.AcceptTask(taskID)
	if err != nil {
		return nil, o.fail("accept_task", err)
	}
	o.publish(MessageTask, task)
	return task, nil
}

// AdvanceRound settles a round, records it and publishes the summary.
// A ledger failure is logged but does not undo the round.
func (o *Orchestrator) AdvanceRound(ctx context.Context) (*game.RoundSummary, error) {
	summary, err := o.controller.AdvanceRound()
	if err != nil {
		return nil, o.fail("advance_round", err)
	}

	if o.recorder != nil {
		if err := o.recorder.Record(ctx, summary); err != nil {
			o.logger.Printf("ledger: %v", err)
		}
	}
	o.publish(MessageRound, summary)
	return summary, nil
}

// Reset starts a new session.
func (o *Orchestrator) Reset() *game.State {
	o.controller.Reset()
	s := o.controller.Snapshot()
	observability.RecordReset(s.Player.Capital)
	o.publish(MessageReset, s)
	return s
}

// History returns the recorded rounds of the running session.
func (o *Orchestrator) History(ctx context.Context) ([]*domain.RoundRecord, error) {
	if o.recorder == nil {
		return nil, nil
	}
	return o.recorder.History(ctx, o.controller.SessionID())
}

// Reject reports a command that failed before reaching the controller. The
// failure is journaled, counted and published like a rejected command.
func (o *Orchestrator) Reject(command, kind string, err error) error {
	o.controller.Notice("Request rejected: " + err.Error())
	return o.report(command, kind, err)
}

func (o *Orchestrator) fail(command string, err error) error {
	return o.report(command, game.ErrorKind(err), err)
}

func (o *Orchestrator) report(command, kind string, err error) error {
	observability.RecordCommandError(command, kind)
	o.publish(MessageNotice, map[string]string{"command": command, "kind": kind, "error": err.Error()})
	return err
}

func (o *Orchestrator) publish(kind string, payload any) {
	if o.publisher != nil {
		o.publisher.Publish(kind, payload)
	}
}

// PlannedDeposit is one deposit of a batch plan.
type PlannedDeposit struct {
	VaultID string
	Amount  float64
}

// Plan describes a headless batch run.
type Plan struct {
	Deposits    []PlannedDeposit
	Operator    bool // register as operator before the first round
	AcceptTasks bool // accept every eligible task offered between rounds
	Rounds      int
}

// RunResult contains results from a batch run.
type RunResult struct {
	SessionID     string
	RoundsPlayed  int
	FinalCapital  float64
	TotalEarnings float64
	GameOver      bool
	Summaries     []*game.RoundSummary
	Errors        []string
}

// Run executes a batch plan. Command errors that do not end the run are
// collected in RunResult.Errors.
func (o *Orchestrator) Run(ctx context.Context, plan Plan) (*RunResult, error) {
	if plan.Rounds <= 0 {
		return nil, fmt.Errorf("plan needs at least one round, got %d", plan.Rounds)
	}
	result := &RunResult{SessionID: o.controller.SessionID()}

	for _, d := range plan.Deposits {
		if _, err := o.Deposit(d.VaultID, d.Amount); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("deposit %s: %v", d.VaultID, err))
		}
	}
	if plan.Operator {
		if _, err := o.RegisterOperator(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("register operator: %v", err))
		}
	}

	for i := 0; i < plan.Rounds; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		summary, err := o.AdvanceRound(ctx)
		if err != nil {
			if errors.Is(err, game.ErrGameOver) || errors.Is(err, game.ErrNoActivity) {
				result.Errors = append(result.Errors, err.Error())
				break
			}
			return result, fmt.Errorf("round %d: %w", i+1, err)
		}
		result.Summaries = append(result.Summaries, summary)
		result.RoundsPlayed++
		if summary.GameOver {
			break
		}

		if plan.AcceptTasks {
			o.acceptEligible(result)
		}
	}

	s := o.controller.Snapshot()
	result.FinalCapital = s.Player.Capital
	result.TotalEarnings = s.TotalEarnings
	result.GameOver = s.GameOver
	return result, nil
}

// acceptEligible accepts every offered task the operator qualifies for.
func (o *Orchestrator) acceptEligible(result *RunResult) {
	s := o.controller.Snapshot()
	op := s.PlayerOperator()
	if op == nil {
		return
	}
	for _, t := range s.AvailableTasks {
		n := domain.FindNetwork(s.Networks, t.NetworkID)
		if n != nil && !n.AcceptsOperator(op.TrustScore) {
			continue
		}
		if _, err := o.AcceptTask(t.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("accept %s: %v", t.ID, err))
		}
	}
}
