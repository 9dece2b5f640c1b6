package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/storage"
)

// RoundRecordStore implements storage.RoundRecordStore using SQLite.
type RoundRecordStore struct {
	db *DB
}

// NewRoundRecordStore creates a new RoundRecordStore.
func NewRoundRecordStore(db *DB) *RoundRecordStore {
	return &RoundRecordStore{db: db}
}

var _ storage.RoundRecordStore = (*RoundRecordStore)(nil)

const roundRecordColumns = `
	session_id, round,
	vault_rewards, task_rewards, total_reward, capital_after, total_earnings,
	slashing_events, tasks_succeeded, tasks_failed,
	operator_trust, game_over, events, created_at
`

// Insert adds a settled round. Returns ErrDuplicateKey if (session_id, round) exists.
func (s *RoundRecordStore) Insert(ctx context.Context, r *domain.RoundRecord) error {
	if r == nil || r.SessionID == "" || r.Round <= 0 {
		return storage.ErrInvalidInput
	}

	events := r.Events
	if events == nil {
		events = []domain.Event{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO round_records (`+roundRecordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.Round,
		r.VaultRewards, r.TaskRewards, r.TotalReward, r.CapitalAfter, r.TotalEarnings,
		r.SlashingEvents, r.TasksSucceeded, r.TasksFailed,
		r.OperatorTrust, r.GameOver, string(data), r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert round record: %w", err)
	}
	return nil
}

// GetByRound retrieves one round of a session. Returns ErrNotFound if not exists.
func (s *RoundRecordStore) GetByRound(ctx context.Context, sessionID string, round int) (*domain.RoundRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+roundRecordColumns+` FROM round_records WHERE session_id = ? AND round = ?`,
		sessionID, round,
	)
	r, err := scanRoundRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get round record: %w", err)
	}
	return r, nil
}

// GetBySession retrieves all rounds of a session, ordered by round ASC.
func (s *RoundRecordStore) GetBySession(ctx context.Context, sessionID string) ([]*domain.RoundRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+roundRecordColumns+` FROM round_records WHERE session_id = ? ORDER BY round ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("get round records by session: %w", err)
	}
	defer rows.Close()

	var records []*domain.RoundRecord
	for rows.Next() {
		r, err := scanRoundRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan round record row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate round record rows: %w", err)
	}
	return records, nil
}

// ListSessions returns the distinct session ids, ordered by first record time.
func (s *RoundRecordStore) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id FROM round_records GROUP BY session_id ORDER BY MIN(created_at) ASC, session_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions = append(sessions, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoundRecord(row rowScanner) (*domain.RoundRecord, error) {
	var r domain.RoundRecord
	var trust sql.NullFloat64
	var events string

	err := row.Scan(
		&r.SessionID, &r.Round,
		&r.VaultRewards, &r.TaskRewards, &r.TotalReward, &r.CapitalAfter, &r.TotalEarnings,
		&r.SlashingEvents, &r.TasksSucceeded, &r.TasksFailed,
		&trust, &r.GameOver, &events, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if trust.Valid {
		v := trust.Float64
		r.OperatorTrust = &v
	}
	if err := json.Unmarshal([]byte(events), &r.Events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return &r, nil
}
