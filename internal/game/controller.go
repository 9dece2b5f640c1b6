// Package game owns the simulation state and exposes the command interface:
// deposits, operator registration, task acceptance, round advancement and
// reset. Commands are serialized; every failure is returned to the caller and
// also recorded in the event journal.
package game

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/immortaldarkveil/Symulator/internal/config"
	"github.com/immortaldarkveil/Symulator/internal/delegation"
	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/identity"
	"github.com/immortaldarkveil/Symulator/internal/idhash"
	"github.com/immortaldarkveil/Symulator/internal/operator"
	"github.com/immortaldarkveil/Symulator/internal/random"
	"github.com/immortaldarkveil/Symulator/internal/reward"
)

// DefaultJournalLimit bounds the number of events kept in the journal.
const DefaultJournalLimit = 200

// Options contains configuration for creating a Controller.
type Options struct {
	Catalog      *config.Catalog // nil uses config.DefaultCatalog
	Source       random.Source   // nil seeds math/rand from Seed
	Seed         int64
	ClampPenalty bool
	Cooldown     time.Duration // minimum time between rounds, 0 disables
	Clock        func() time.Time
	JournalLimit int
	Logger       *log.Logger
}

// Controller runs the simulation. It is safe for concurrent use.
type Controller struct {
	mu   sync.Mutex
	busy atomic.Bool

	catalog  *config.Catalog
	rng      random.Source
	rewards  *reward.Engine
	seed     int64
	cooldown time.Duration
	now      func() time.Time
	limit    int
	logger   *log.Logger

	generation int
	lastRound  time.Time
	state      *State
}

// NewController validates the catalog and starts a fresh game.
func NewController(opts Options) (*Controller, error) {
	cat := opts.Catalog
	if cat == nil {
		cat = config.DefaultCatalog()
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}

	rng := opts.Source
	if rng == nil {
		rng = random.NewSeeded(opts.Seed)
	}

	rewardOpts := reward.Options{
		BalanceFactor:       cat.Rewards.BalanceFactor,
		PenaltyExaggeration: cat.Rewards.PenaltyExaggeration,
		ClampPenalty:        cat.Rewards.ClampPenalty || opts.ClampPenalty,
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	limit := opts.JournalLimit
	if limit <= 0 {
		limit = DefaultJournalLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	c := &Controller{
		catalog:  cat,
		rng:      rng,
		rewards:  reward.NewEngine(rng, rewardOpts),
		seed:     opts.Seed,
		cooldown: opts.Cooldown,
		now:      now,
		limit:    limit,
		logger:   logger,
	}
	c.state = c.newState()
	c.journal(domain.Event{Kind: domain.EventKindNotice, Message: "Welcome! Select a vault to deposit your capital."})
	return c, nil
}

func (c *Controller) newState() *State {
	return &State{
		SessionID: idhash.ComputeSessionID(c.seed, c.generation),
		Round:     1,
		Player: domain.Player{
			Capital:  c.catalog.StartingCapital,
			IsStaker: true,
		},
		Networks: c.catalog.BuildNetworks(),
		Vaults:   c.catalog.BuildVaults(),
	}
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() *State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// SessionID returns the id of the running session.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.SessionID
}

// Deposit moves amount from player capital into the vault.
func (c *Controller) Deposit(vaultID string, amount float64) (*DepositRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, c.reject(fmt.Errorf("%w: %v", ErrInvalidAmount, amount), "Please enter a valid amount.")
	}
	v := domain.FindVault(s.Vaults, vaultID)
	if v == nil {
		return nil, c.reject(fmt.Errorf("%w: %s", ErrVaultNotFound, vaultID), "Unknown vault "+vaultID+".")
	}
	if amount > s.Player.Capital {
		return nil, c.reject(fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientCapital, amount, s.Player.Capital), "Insufficient capital!")
	}

	s.Player.Capital -= amount
	v.TVL += amount

	d := domain.FindDeposit(s.Deposits, vaultID)
	if d == nil {
		d = &domain.Deposit{VaultID: vaultID}
		s.Deposits = append(s.Deposits, d)
	}
	d.Amount += amount

	c.journal(domain.Event{Kind: domain.EventKindDeposit, Message: fmt.Sprintf("Deposited $%.2f in %s", amount, v.Name)})
	c.logger.Printf("deposit vault=%s amount=%.2f capital=%.2f", vaultID, amount, s.Player.Capital)

	return &DepositRecord{
		VaultID:      vaultID,
		Amount:       amount,
		TotalAmount:  d.Amount,
		VaultTVL:     v.TVL,
		CapitalAfter: s.Player.Capital,
	}, nil
}

// RegisterOperator creates the player's operator profile.
func (c *Controller) RegisterOperator() (*domain.Operator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.Player.IsOperator {
		return nil, c.reject(ErrAlreadyOperator, "You are already an operator.")
	}

	id, err := identity.DeriveOperatorID(identity.OperatorSeed(s.SessionID, len(s.Operators)))
	if err != nil {
		return nil, fmt.Errorf("derive operator id: %w", err)
	}

	op := &domain.Operator{
		ID:         id,
		Name:       domain.DefaultOperatorName,
		TrustScore: domain.DefaultOperatorTrustScore,
		Liveness:   domain.DefaultOperatorLiveness,
	}
	s.Operators = append(s.Operators, op)
	s.Player.IsOperator = true
	s.Player.OperatorID = id

	msg := fmt.Sprintf("You are now a registered Operator. Your starting trust score is %.0f.", op.TrustScore)
	c.journal(domain.Event{Kind: domain.EventKindOperatorRegistered, Message: msg})
	c.logger.Printf("operator registered id=%s", id)

	return cloneOperator(op), nil
}

// AcceptTask moves an available task into the operator's queue.
func (c *Controller) AcceptTask(taskID string) (*domain.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	task, remaining, err := operator.AcceptTask(s.PlayerOperator(), s.AvailableTasks, taskID, s.Networks)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, ErrOperatorNotEligible) {
			msg += ". Trust rises with completed tasks and high liveness; the task stays on offer until the next round."
		}
		return nil, c.reject(err, msg)
	}
	s.AvailableTasks = remaining

	c.journal(domain.Event{Kind: domain.EventKindTaskAccepted, Message: fmt.Sprintf("Accepted task %s on %s.", task.ID, task.NetworkID)})
	tc := *task
	return &tc, nil
}

// AdvanceRound settles the current round. Overlapping calls fail with
// ErrRoundInProgress instead of queuing.
func (c *Controller) AdvanceRound() (*RoundSummary, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrRoundInProgress
	}
	defer c.busy.Store(false)

	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.GameOver {
		return nil, c.reject(ErrGameOver, "The game is over. Reset to play again.")
	}
	if len(s.Deposits) == 0 && !s.Player.IsOperator {
		return nil, c.reject(ErrNoActivity, "No active deposits! Place some deposits in vaults first.")
	}
	now := c.now()
	if c.cooldown > 0 && !c.lastRound.IsZero() && now.Sub(c.lastRound) < c.cooldown {
		return nil, c.reject(ErrCooldown, "Please wait before starting the next round.")
	}

	summary := c.settle()
	c.lastRound = now
	return summary, nil
}

// settle runs one round against the current state. Caller holds mu.
func (c *Controller) settle() *RoundSummary {
	s := c.state
	settled := s.Round
	summary := &RoundSummary{SessionID: s.SessionID, Round: settled}
	var events []domain.Event

	delegation.RecomputeStakes(s.Networks, s.Vaults)

	op := s.PlayerOperator()
	if op != nil {
		// Offers from the previous round that were not accepted expire.
		s.AvailableTasks = operator.GenerateTasks(s.Networks, len(s.Operators), c.rng, func(networkID string, seq int) string {
			return idhash.ComputeTaskID(s.SessionID, settled, networkID, seq)
		})
		summary.TasksGenerated = cloneTasks(s.AvailableTasks)
		for _, t := range s.AvailableTasks {
			msg := fmt.Sprintf("New task on %s: reward $%.0f, trust penalty %.0f.", t.NetworkID, t.Reward, t.TrustPenalty)
			events = append(events, domain.Event{Kind: domain.EventKindTaskGenerated, Message: msg})
		}
	}

	rr := c.rewards.ComputeRoundRewards(s.Deposits, s.Vaults, s.Networks)
	summary.VaultRewards = rr.Total
	summary.Slashes = rr.Slashes
	summary.Vaults = rr.Vaults
	events = append(events, rr.Events...)

	if op != nil {
		operator.DecayLiveness(op, c.rng)
		operator.AdjustTrust(op)
		res := operator.ResolveTasks(op, c.rng)
		summary.TaskRewards = res.Reward
		for _, o := range res.Outcomes {
			summary.TaskOutcomes = append(summary.TaskOutcomes, TaskOutcome{
				TaskID:    o.Task.ID,
				NetworkID: o.Task.NetworkID,
				Reward:    o.Task.Reward,
				Penalty:   o.Task.TrustPenalty,
				Succeeded: o.Succeeded,
			})
		}
		events = append(events, res.Events...)
		summary.Operator = cloneOperator(op)
	}

	total := summary.VaultRewards + summary.TaskRewards
	summary.TotalReward = total
	switch {
	case total > 0:
		s.Player.Capital += total
		s.TotalEarnings += total
		events = append(events, domain.Event{Kind: domain.EventKindRoundReward, Message: fmt.Sprintf("Round rewards: $%.2f", total)})
	case total < 0:
		s.Player.Capital += total
		s.TotalEarnings += total
		events = append(events, domain.Event{Kind: domain.EventKindRoundLoss, Message: fmt.Sprintf("Round resulted in a net loss of $%.2f due to penalties.", -total)})
	}

	s.Round++

	if s.Player.Capital <= 0 {
		s.GameOver = true
		events = append(events, domain.Event{Kind: domain.EventKindGameOver, Message: "Game Over! You've lost all your capital!"})
		c.logger.Printf("game over session=%s round=%d capital=%.2f", s.SessionID, settled, s.Player.Capital)
	} else {
		events = append(events, domain.Event{Kind: domain.EventKindRoundCompleted, Message: fmt.Sprintf("Round %d completed.", settled)})
	}

	for i := range events {
		events[i].Round = settled
	}
	c.journal(events...)

	summary.CapitalAfter = s.Player.Capital
	summary.TotalEarnings = s.TotalEarnings
	summary.Networks = cloneNetworks(s.Networks)
	summary.Events = events
	summary.GameOver = s.GameOver

	c.logger.Printf("round %d settled: vaults=%.2f tasks=%.2f capital=%.2f slashes=%d",
		settled, summary.VaultRewards, summary.TaskRewards, s.Player.Capital, summary.Slashes)
	return summary
}

// Reset restores the catalog, player, operators, deposits, round and
// earnings and starts a new session.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.lastRound = time.Time{}
	c.state = c.newState()
	msg := fmt.Sprintf("Game reset! Start with $%.0f and grow your capital through strategic staking.", c.catalog.StartingCapital)
	c.journal(domain.Event{Kind: domain.EventKindReset, Message: msg})
	c.logger.Printf("reset session=%s", c.state.SessionID)
}

// reject records a notice for a failed command and returns err.
// Notice appends a notice to the journal for failures detected outside the
// controller, such as an unreadable request.
func (c *Controller) Notice(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.journal(domain.Event{Kind: domain.EventKindNotice, Message: msg})
}

func (c *Controller) reject(err error, msg string) error {
	c.journal(domain.Event{Kind: domain.EventKindNotice, Message: msg})
	c.logger.Printf("command rejected: %v", err)
	return err
}

func (c *Controller) journal(events ...domain.Event) {
	s := c.state
	for _, e := range events {
		if e.Round == 0 {
			e.Round = s.Round
		}
		s.Journal = append(s.Journal, e)
	}
	if over := len(s.Journal) - c.limit; over > 0 {
		s.Journal = append([]domain.Event(nil), s.Journal[over:]...)
	}
}
