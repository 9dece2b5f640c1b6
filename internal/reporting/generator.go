package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/storage"
)

// ErrEmptySession is returned when a session has no recorded rounds.
var ErrEmptySession = errors.New("session has no recorded rounds")

// Generator produces reports from stored data.
type Generator struct {
	roundStore    storage.RoundRecordStore
	snapshotStore storage.NetworkSnapshotStore // optional
	now           func() time.Time             // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. snapshotStore may be nil.
func NewGenerator(roundStore storage.RoundRecordStore, snapshotStore storage.NetworkSnapshotStore) *Generator {
	return &Generator{
		roundStore:    roundStore,
		snapshotStore: snapshotStore,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces the report of one session.
func (g *Generator) Generate(ctx context.Context, sessionID string) (*Report, error) {
	records, err := g.roundStore.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load rounds: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySession, sessionID)
	}

	var networks []NetworkRow
	if g.snapshotStore != nil {
		snaps, err := g.snapshotStore.GetBySession(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("load network snapshots: %w", err)
		}
		networks = generateNetworkRows(snaps)
	}

	return &Report{
		GeneratedAt: g.now(),
		SessionID:   sessionID,
		Summary:     summarize(records),
		Rounds:      generateRoundRows(records),
		Networks:    networks,
	}, nil
}

// summarize folds ordered round records into a session summary.
func summarize(records []*domain.RoundRecord) SessionSummary {
	first := records[0]
	last := records[len(records)-1]

	s := SessionSummary{
		Rounds:          len(records),
		StartingCapital: first.CapitalAfter - first.TotalReward,
		FinalCapital:    last.CapitalAfter,
		TotalEarnings:   last.TotalEarnings,
		BestRound:       first.Round,
		BestReward:      first.TotalReward,
		WorstRound:      first.Round,
		WorstReward:     first.TotalReward,
		FinalTrust:      last.OperatorTrust,
		GameOver:        last.GameOver,
	}

	peak := s.StartingCapital
	for _, r := range records {
		if r.TotalReward > s.BestReward {
			s.BestRound, s.BestReward = r.Round, r.TotalReward
		}
		if r.TotalReward < s.WorstReward {
			s.WorstRound, s.WorstReward = r.Round, r.TotalReward
		}
		if r.TotalReward < 0 {
			s.LosingRounds++
		}
		s.SlashingEvents += r.SlashingEvents
		s.TasksSucceeded += r.TasksSucceeded
		s.TasksFailed += r.TasksFailed

		if r.CapitalAfter > peak {
			peak = r.CapitalAfter
		}
		if peak > 0 {
			if dd := (peak - r.CapitalAfter) / peak; dd > s.MaxDrawdown {
				s.MaxDrawdown = dd
			}
		}
	}
	return s
}

func generateRoundRows(records []*domain.RoundRecord) []RoundRow {
	rows := make([]RoundRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, RoundRow{
			Round:          r.Round,
			VaultRewards:   r.VaultRewards,
			TaskRewards:    r.TaskRewards,
			TotalReward:    r.TotalReward,
			CapitalAfter:   r.CapitalAfter,
			SlashingEvents: r.SlashingEvents,
			TasksSucceeded: r.TasksSucceeded,
			TasksFailed:    r.TasksFailed,
			OperatorTrust:  r.OperatorTrust,
			GameOver:       r.GameOver,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Round < rows[j].Round })
	return rows
}

// generateNetworkRows expects snapshots ordered by round.
func generateNetworkRows(snaps []*domain.NetworkSnapshot) []NetworkRow {
	type acc struct {
		row     NetworkRow
		rateSum float64
		count   int
	}
	byNetwork := make(map[string]*acc)

	for _, s := range snaps {
		a, ok := byNetwork[s.NetworkID]
		if !ok {
			a = &acc{row: NetworkRow{NetworkID: s.NetworkID}}
			byNetwork[s.NetworkID] = a
		}
		a.row.FinalStake = s.CurrentStake
		a.row.TargetStake = s.TargetStake
		a.row.TrustScore = s.TrustScore
		if s.CurrentStake > s.TargetStake {
			a.row.OverStakedRounds++
		}
		a.rateSum += s.MiningRate
		a.count++
	}

	rows := make([]NetworkRow, 0, len(byNetwork))
	for _, a := range byNetwork {
		a.row.MeanMiningRate = a.rateSum / float64(a.count)
		rows = append(rows, a.row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].NetworkID < rows[j].NetworkID })
	return rows
}
