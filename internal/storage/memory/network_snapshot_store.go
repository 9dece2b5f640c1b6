package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/storage"
)

type snapshotKey struct {
	sessionID string
	round     int
	networkID string
}

// NetworkSnapshotStore is an in-memory implementation of storage.NetworkSnapshotStore.
type NetworkSnapshotStore struct {
	mu   sync.RWMutex
	data map[snapshotKey]*domain.NetworkSnapshot
}

// NewNetworkSnapshotStore creates a new in-memory network snapshot store.
func NewNetworkSnapshotStore() *NetworkSnapshotStore {
	return &NetworkSnapshotStore{
		data: make(map[snapshotKey]*domain.NetworkSnapshot),
	}
}

// InsertBulk adds snapshots atomically. Fails entire batch on any duplicate.
func (s *NetworkSnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.NetworkSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[snapshotKey]struct{}, len(snapshots))

	// First pass: check for duplicates (existing + intra-batch)
	for _, snap := range snapshots {
		if snap == nil || snap.SessionID == "" || snap.NetworkID == "" {
			return storage.ErrInvalidInput
		}
		k := snapshotKey{snap.SessionID, snap.Round, snap.NetworkID}
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	// Second pass: insert all
	for _, snap := range snapshots {
		copy := *snap
		s.data[snapshotKey{snap.SessionID, snap.Round, snap.NetworkID}] = &copy
	}

	return nil
}

// GetBySession retrieves all snapshots of a session, ordered by round, network_id ASC.
func (s *NetworkSnapshotStore) GetBySession(_ context.Context, sessionID string) ([]*domain.NetworkSnapshot, error) {
	return s.filter(func(k snapshotKey) bool {
		return k.sessionID == sessionID
	}), nil
}

// GetByNetwork retrieves one network's snapshots in a session, ordered by round ASC.
func (s *NetworkSnapshotStore) GetByNetwork(_ context.Context, sessionID, networkID string) ([]*domain.NetworkSnapshot, error) {
	return s.filter(func(k snapshotKey) bool {
		return k.sessionID == sessionID && k.networkID == networkID
	}), nil
}

func (s *NetworkSnapshotStore) filter(match func(snapshotKey) bool) []*domain.NetworkSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.NetworkSnapshot
	for k, snap := range s.data {
		if match(k) {
			copy := *snap
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Round != result[j].Round {
			return result[i].Round < result[j].Round
		}
		return result[i].NetworkID < result[j].NetworkID
	})

	return result
}

var _ storage.NetworkSnapshotStore = (*NetworkSnapshotStore)(nil)
