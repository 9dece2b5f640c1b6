package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/storage"
)

type roundKey struct {
	sessionID string
	round     int
}

// RoundRecordStore is an in-memory implementation of storage.RoundRecordStore.
type RoundRecordStore struct {
	mu       sync.RWMutex
	data     map[roundKey]*domain.RoundRecord
	sessions []string // insertion order of first record
}

// NewRoundRecordStore creates a new in-memory round record store.
func NewRoundRecordStore() *RoundRecordStore {
	return &RoundRecordStore{
		data: make(map[roundKey]*domain.RoundRecord),
	}
}

// Insert adds a settled round. Returns ErrDuplicateKey if (session_id, round) exists.
func (s *RoundRecordStore) Insert(_ context.Context, r *domain.RoundRecord) error {
	if r == nil || r.SessionID == "" || r.Round <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := roundKey{r.SessionID, r.Round}
	if _, exists := s.data[k]; exists {
		return storage.ErrDuplicateKey
	}

	if !s.hasSession(r.SessionID) {
		s.sessions = append(s.sessions, r.SessionID)
	}
	s.data[k] = cloneRecord(r)
	return nil
}

// GetByRound retrieves one round of a session. Returns ErrNotFound if not exists.
func (s *RoundRecordStore) GetByRound(_ context.Context, sessionID string, round int) (*domain.RoundRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[roundKey{sessionID, round}]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneRecord(r), nil
}

// GetBySession retrieves all rounds of a session, ordered by round ASC.
func (s *RoundRecordStore) GetBySession(_ context.Context, sessionID string) ([]*domain.RoundRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RoundRecord
	for k, r := range s.data {
		if k.sessionID == sessionID {
			result = append(result, cloneRecord(r))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Round < result[j].Round
	})

	return result, nil
}

// ListSessions returns the distinct session ids in insertion order.
func (s *RoundRecordStore) ListSessions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.sessions...), nil
}

func (s *RoundRecordStore) hasSession(id string) bool {
	for _, existing := range s.sessions {
		if existing == id {
			return true
		}
	}
	return false
}

func cloneRecord(r *domain.RoundRecord) *domain.RoundRecord {
	c := *r
	if r.OperatorTrust != nil {
		trust := *r.OperatorTrust
		c.OperatorTrust = &trust
	}
	c.Events = append([]domain.Event(nil), r.Events...)
	return &c
}

var _ storage.RoundRecordStore = (*RoundRecordStore)(nil)
