// Package ledger persists settled rounds for later analysis and reporting.
// The running game never reads the ledger back.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/game"
	"github.com/immortaldarkveil/Symulator/internal/observability"
	"github.com/immortaldarkveil/Symulator/internal/reward"
	"github.com/immortaldarkveil/Symulator/internal/storage"
)

// ErrNoRoundStore is returned by NewRecorder when no round store is set.
var ErrNoRoundStore = errors.New("round record store is required")

// Recorder writes round summaries to the configured stores.
type Recorder struct {
	rounds    storage.RoundRecordStore
	snapshots storage.NetworkSnapshotStore
	metrics   *observability.Metrics
	backend   string
	now       func() time.Time
}

// RecorderOptions contains configuration for creating a Recorder.
type RecorderOptions struct {
	Rounds    storage.RoundRecordStore
	Snapshots storage.NetworkSnapshotStore // optional
	Metrics   *observability.Metrics       // nil uses observability.DefaultMetrics
	Backend   string                       // label for query metrics, e.g. "postgres"
	Clock     func() time.Time
}

// NewRecorder creates a ledger recorder.
func NewRecorder(opts RecorderOptions) (*Recorder, error) {
	if opts.Rounds == nil {
		return nil, ErrNoRoundStore
	}
	m := opts.Metrics
	if m == nil {
		m = observability.DefaultMetrics
	}
	backend := opts.Backend
	if backend == "" {
		backend = "memory"
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Recorder{
		rounds:    opts.Rounds,
		snapshots: opts.Snapshots,
		metrics:   m,
		backend:   backend,
		now:       now,
	}, nil
}

// Record observes round metrics and appends the round to the ledger.
func (r *Recorder) Record(ctx context.Context, s *game.RoundSummary) error {
	createdAt := r.now().UnixMilli()
	rec := BuildRoundRecord(s, createdAt)
	r.metrics.ObserveRound(roundStats(s))

	start := time.Now()
	err := r.rounds.Insert(ctx, rec)
	r.observeQuery(r.backend, "insert_round", start, err)
	if err != nil {
		return fmt.Errorf("record round %d: %w", s.Round, err)
	}

	if r.snapshots == nil || len(s.Networks) == 0 {
		return nil
	}
	start = time.Now()
	err = r.snapshots.InsertBulk(ctx, BuildNetworkSnapshots(s, createdAt))
	r.observeQuery("snapshots", "insert_snapshots", start, err)
	if err != nil {
		return fmt.Errorf("record network snapshots for round %d: %w", s.Round, err)
	}
	return nil
}

// History returns the recorded rounds of a session, ordered by round.
func (r *Recorder) History(ctx context.Context, sessionID string) ([]*domain.RoundRecord, error) {
	start := time.Now()
	records, err := r.rounds.GetBySession(ctx, sessionID)
	r.observeQuery(r.backend, "get_session", start, err)
	if err != nil {
		return nil, fmt.Errorf("load history for %s: %w", sessionID, err)
	}
	return records, nil
}

// Snapshots returns the recorded network snapshots of a session.
// It returns nil when no snapshot store is configured.
func (r *Recorder) Snapshots(ctx context.Context, sessionID string) ([]*domain.NetworkSnapshot, error) {
	if r.snapshots == nil {
		return nil, nil
	}
	start := time.Now()
	snaps, err := r.snapshots.GetBySession(ctx, sessionID)
	r.observeQuery("snapshots", "get_session", start, err)
	if err != nil {
		return nil, fmt.Errorf("load snapshots for %s: %w", sessionID, err)
	}
	return snaps, nil
}

func (r *Recorder) observeQuery(database, op string, start time.Time, err error) {
	r.metrics.DBQueryDuration.WithLabelValues(database, op).Observe(time.Since(start).Seconds())
	if err != nil {
		r.metrics.DBQueryErrors.WithLabelValues(database, op).Inc()
	}
}

// BuildRoundRecord converts a summary into a ledger row.
func BuildRoundRecord(s *game.RoundSummary, createdAt int64) *domain.RoundRecord {
	rec := &domain.RoundRecord{
		SessionID:      s.SessionID,
		Round:          s.Round,
		VaultRewards:   s.VaultRewards,
		TaskRewards:    s.TaskRewards,
		TotalReward:    s.TotalReward,
		CapitalAfter:   s.CapitalAfter,
		TotalEarnings:  s.TotalEarnings,
		SlashingEvents: s.Slashes,
		TasksSucceeded: s.TasksSucceeded(),
		TasksFailed:    s.TasksFailed(),
		GameOver:       s.GameOver,
		Events:         append([]domain.Event(nil), s.Events...),
		CreatedAt:      createdAt,
	}
	if s.Operator != nil {
		trust := s.Operator.TrustScore
		rec.OperatorTrust = &trust
	}
	return rec
}

// BuildNetworkSnapshots converts the post-round networks into snapshot rows.
func BuildNetworkSnapshots(s *game.RoundSummary, recordedAt int64) []*domain.NetworkSnapshot {
	out := make([]*domain.NetworkSnapshot, 0, len(s.Networks))
	for _, n := range s.Networks {
		out = append(out, &domain.NetworkSnapshot{
			SessionID:    s.SessionID,
			Round:        s.Round,
			NetworkID:    n.ID,
			CurrentStake: n.CurrentStake,
			TargetStake:  n.TargetStake,
			MiningRate:   reward.MiningRate(n),
			TrustScore:   n.TrustScore,
			RecordedAt:   recordedAt,
		})
	}
	return out
}

func roundStats(s *game.RoundSummary) observability.RoundStats {
	stats := observability.RoundStats{
		VaultRewards:   s.VaultRewards,
		TaskRewards:    s.TaskRewards,
		TotalReward:    s.TotalReward,
		Slashes:        s.Slashes,
		TasksGenerated: len(s.TasksGenerated),
		TasksSucceeded: s.TasksSucceeded(),
		TasksFailed:    s.TasksFailed(),
		Capital:        s.CapitalAfter,
		TotalEarnings:  s.TotalEarnings,
		NextRound:      s.Round + 1,
		GameOver:       s.GameOver,
		Stakes:         make(map[string]float64, len(s.Networks)),
	}
	if s.Operator != nil {
		trust := s.Operator.TrustScore
		stats.OperatorTrust = &trust
	}
	for _, n := range s.Networks {
		stats.Stakes[n.ID] = n.CurrentStake
	}
	return stats
}
