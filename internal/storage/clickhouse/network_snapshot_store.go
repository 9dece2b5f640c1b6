package clickhouse

import (
	"context"
	"fmt"

	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/storage"
)

// NetworkSnapshotStore implements storage.NetworkSnapshotStore using ClickHouse.
type NetworkSnapshotStore struct {
	conn *Conn
}

// NewNetworkSnapshotStore creates a new NetworkSnapshotStore.
func NewNetworkSnapshotStore(conn *Conn) *NetworkSnapshotStore {
	return &NetworkSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.NetworkSnapshotStore = (*NetworkSnapshotStore)(nil)

// InsertBulk adds snapshots. Fails entire batch on duplicate (session_id, round, network_id).
func (s *NetworkSnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.NetworkSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		sessionID string
		round     int
		networkID string
	}
	seen := make(map[key]struct{})
	for _, snap := range snapshots {
		if snap == nil || snap.SessionID == "" || snap.NetworkID == "" || snap.Round < 0 {
			return storage.ErrInvalidInput
		}
		k := key{snap.SessionID, snap.Round, snap.NetworkID}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// MergeTree does not enforce uniqueness, check existing rows first
	for _, snap := range snapshots {
		exists, err := s.exists(ctx, snap.SessionID, snap.Round, snap.NetworkID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO network_snapshots (
			session_id, round, network_id, current_stake, target_stake,
			mining_rate, trust_score, recorded_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			snap.SessionID, uint32(snap.Round), snap.NetworkID,
			snap.CurrentStake, snap.TargetStake,
			snap.MiningRate, snap.TrustScore, uint64(snap.RecordedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySession retrieves all snapshots of a session, ordered by round, network_id ASC.
func (s *NetworkSnapshotStore) GetBySession(ctx context.Context, sessionID string) ([]*domain.NetworkSnapshot, error) {
	query := `
		SELECT session_id, round, network_id, current_stake, target_stake,
		       mining_rate, trust_score, recorded_at
		FROM network_snapshots
		WHERE session_id = ?
		ORDER BY round ASC, network_id ASC
	`

	rows, err := s.conn.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query by session: %w", err)
	}
	defer rows.Close()

	return scanNetworkSnapshots(rows)
}

// GetByNetwork retrieves one network's snapshots in a session, ordered by round ASC.
func (s *NetworkSnapshotStore) GetByNetwork(ctx context.Context, sessionID, networkID string) ([]*domain.NetworkSnapshot, error) {
	query := `
		SELECT session_id, round, network_id, current_stake, target_stake,
		       mining_rate, trust_score, recorded_at
		FROM network_snapshots
		WHERE session_id = ? AND network_id = ?
		ORDER BY round ASC
	`

	rows, err := s.conn.Query(ctx, query, sessionID, networkID)
	if err != nil {
		return nil, fmt.Errorf("query by network: %w", err)
	}
	defer rows.Close()

	return scanNetworkSnapshots(rows)
}

// exists checks if a snapshot with the given key exists.
func (s *NetworkSnapshotStore) exists(ctx context.Context, sessionID string, round int, networkID string) (bool, error) {
	query := `
		SELECT count(*) FROM network_snapshots
		WHERE session_id = ? AND round = ? AND network_id = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, sessionID, uint32(round), networkID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanNetworkSnapshots scans multiple rows.
func scanNetworkSnapshots(rows chRows) ([]*domain.NetworkSnapshot, error) {
	var snapshots []*domain.NetworkSnapshot

	for rows.Next() {
		var snap domain.NetworkSnapshot
		var round uint32
		var recordedAt uint64

		err := rows.Scan(
			&snap.SessionID, &round, &snap.NetworkID,
			&snap.CurrentStake, &snap.TargetStake,
			&snap.MiningRate, &snap.TrustScore, &recordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		snap.Round = int(round)
		snap.RecordedAt = int64(recordedAt)
		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return snapshots, nil
}
