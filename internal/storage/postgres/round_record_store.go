package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/storage"
)

// RoundRecordStore implements storage.RoundRecordStore using PostgreSQL.
type RoundRecordStore struct {
	pool *Pool
}

// NewRoundRecordStore creates a new RoundRecordStore.
func NewRoundRecordStore(pool *Pool) *RoundRecordStore {
	return &RoundRecordStore{pool: pool}
}

// Compile-time interface check.
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

	events, err := marshalEvents(r.Events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}

	query := `
		INSERT INTO round_records (` + roundRecordColumns + `) VALUES (
			$1, $2,
			$3, $4, $5, $6, $7,
			$8, $9, $10,
			$11, $12, $13, $14
		)
	`

	_, err = s.pool.Exec(ctx, query,
		r.SessionID, r.Round,
		r.VaultRewards, r.TaskRewards, r.TotalReward, r.CapitalAfter, r.TotalEarnings,
		r.SlashingEvents, r.TasksSucceeded, r.TasksFailed,
		r.OperatorTrust, r.GameOver, events, r.CreatedAt,
	)
	return mapError("insert round record", err)
}

// GetByRound retrieves one round of a session. Returns ErrNotFound if not exists.
func (s *RoundRecordStore) GetByRound(ctx context.Context, sessionID string, round int) (*domain.RoundRecord, error) {
	query := `
		SELECT ` + roundRecordColumns + `
		FROM round_records
		WHERE session_id = $1 AND round = $2
	`

	row := s.pool.QueryRow(ctx, query, sessionID, round)
	r, err := scanRoundRecord(row)
	if err != nil {
		return nil, mapError("get round record", err)
	}
	return r, nil
}

// GetBySession retrieves all rounds of a session, ordered by round ASC.
func (s *RoundRecordStore) GetBySession(ctx context.Context, sessionID string) ([]*domain.RoundRecord, error) {
	query := `
		SELECT ` + roundRecordColumns + `
		FROM round_records
		WHERE session_id = $1
		ORDER BY round ASC
	`

	rows, err := s.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, mapError("get round records by session", err)
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
	query := `
		SELECT session_id
		FROM round_records
		GROUP BY session_id
		ORDER BY MIN(created_at) ASC, session_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, mapError("list sessions", err)
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

// scanRoundRecord scans a single row into a RoundRecord.
func scanRoundRecord(row pgx.Row) (*domain.RoundRecord, error) {
	var r domain.RoundRecord
	var events []byte

	err := row.Scan(
		&r.SessionID, &r.Round,
		&r.VaultRewards, &r.TaskRewards, &r.TotalReward, &r.CapitalAfter, &r.TotalEarnings,
		&r.SlashingEvents, &r.TasksSucceeded, &r.TasksFailed,
		&r.OperatorTrust, &r.GameOver, &events, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(events, &r.Events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	return &r, nil
}

// marshalEvents encodes events as a JSON array, never null.
func marshalEvents(events []domain.Event) ([]byte, error) {
	if events == nil {
		events = []domain.Event{}
	}
	return json.Marshal(events)
}
