package storage

import (
	"context"

	"github.com/immortaldarkveil/Symulator/internal/domain"
)

// RoundRecordStore provides access to round_records storage.
type RoundRecordStore interface {
	// Insert adds a settled round. Returns ErrDuplicateKey if (session_id, round) exists.
	Insert(ctx context.Context, r *domain.RoundRecord) error

	// GetByRound retrieves one round of a session. Returns ErrNotFound if not exists.
	GetByRound(ctx context.Context, sessionID string, round int) (*domain.RoundRecord, error)

	// GetBySession retrieves all rounds of a session, ordered by round ASC.
	GetBySession(ctx context.Context, sessionID string) ([]*domain.RoundRecord, error)

	// ListSessions returns the distinct session ids, ordered by first record time.
	ListSessions(ctx context.Context) ([]string, error)
}

// NetworkSnapshotStore provides access to network_snapshots storage.
type NetworkSnapshotStore interface {
	// InsertBulk adds snapshots. Fails entire batch on duplicate (session_id, round, network_id).
	InsertBulk(ctx context.Context, snapshots []*domain.NetworkSnapshot) error

	// GetBySession retrieves all snapshots of a session, ordered by round, network_id ASC.
	GetBySession(ctx context.Context, sessionID string) ([]*domain.NetworkSnapshot, error)

	// GetByNetwork retrieves one network's snapshots in a session, ordered by round ASC.
	GetByNetwork(ctx context.Context, sessionID, networkID string) ([]*domain.NetworkSnapshot, error)
}
