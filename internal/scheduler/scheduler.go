// Package scheduler advances rounds automatically on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/immortaldarkveil/Symulator/internal/game"
)

// RoundAdvancer settles one round.
type RoundAdvancer interface {
	AdvanceRound(ctx context.Context) (*game.RoundSummary, error)
}

// Scheduler manages the auto-round cron task.
type Scheduler struct {
	cron    *cron.Cron
	rounds  RoundAdvancer
	ctx     context.Context
	logger  *log.Logger
	settled atomic.Int64
	skipped atomic.Int64
}

// NewScheduler registers spec (six fields, seconds first) to advance rounds.
// Overlapping ticks are skipped rather than queued.
func NewScheduler(ctx context.Context, spec string, rounds RoundAdvancer, logger *log.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
		),
		rounds: rounds,
		ctx:    ctx,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(spec, s.Tick); err != nil {
		return nil, fmt.Errorf("register auto round %q: %w", spec, err)
	}
	return s, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Println("auto-round scheduler started")
}

// Stop stops the cron scheduler and waits for a running tick.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Println("auto-round scheduler stopped")
}

// Tick advances one round. Expected refusals (nothing to settle, cooldown,
// overlap) are counted as skips; a finished game is logged once per tick.
func (s *Scheduler) Tick() {
	summary, err := s.rounds.AdvanceRound(s.ctx)
	switch {
	case err == nil:
		s.settled.Add(1)
		s.logger.Printf("auto round %d settled: total=%.2f capital=%.2f",
			summary.Round, summary.TotalReward, summary.CapitalAfter)
	case errors.Is(err, game.ErrNoActivity), errors.Is(err, game.ErrCooldown), errors.Is(err, game.ErrRoundInProgress):
		s.skipped.Add(1)
	case errors.Is(err, game.ErrGameOver):
		s.skipped.Add(1)
		s.logger.Println("auto round skipped: game over")
	default:
		s.logger.Printf("auto round failed: %v", err)
	}
}

// Settled returns how many rounds the scheduler has settled.
func (s *Scheduler) Settled() int64 { return s.settled.Load() }

// Skipped returns how many ticks were refused by the controller.
func (s *Scheduler) Skipped() int64 { return s.skipped.Load() }
