package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immortaldarkveil/Symulator/internal/domain"
	"github.com/immortaldarkveil/Symulator/internal/storage"
)

func TestRoundRecordStore_InsertAndGet(t *testing.T) {
	pool := newTestPool(t)

	store := NewRoundRecordStore(pool)
	ctx := context.Background()

	rec := &domain.RoundRecord{
		SessionID:      "sess1",
		Round:          1,
		VaultRewards:   96.67,
		TaskRewards:    50,
		TotalReward:    146.67,
		CapitalAfter:   9146.67,
		TotalEarnings:  146.67,
		SlashingEvents: 1,
		TasksSucceeded: 1,
		OperatorTrust:  ptr(75.55),
		Events: []domain.Event{
			{Round: 1, Kind: domain.EventKindSlashing, Message: "Slashing event"},
			{Round: 1, Kind: domain.EventKindRoundCompleted, Message: "Round 1 completed."},
		},
		CreatedAt: 1700000000000,
	}

	require.NoError(t, store.Insert(ctx, rec))

	got, err := store.GetByRound(ctx, "sess1", 1)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestRoundRecordStore_NilOperatorTrustAndEvents(t *testing.T) {
	pool := newTestPool(t)

	store := NewRoundRecordStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &domain.RoundRecord{SessionID: "s", Round: 1, CreatedAt: 1}))

	got, err := store.GetByRound(ctx, "s", 1)
	require.NoError(t, err)
	assert.Nil(t, got.OperatorTrust)
	assert.Empty(t, got.Events)
}

func TestRoundRecordStore_DuplicateKey(t *testing.T) {
	pool := newTestPool(t)

	store := NewRoundRecordStore(pool)
	ctx := context.Background()

	rec := &domain.RoundRecord{SessionID: "s", Round: 1, CreatedAt: 1}
	require.NoError(t, store.Insert(ctx, rec))

	err := store.Insert(ctx, rec)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestRoundRecordStore_NotFound(t *testing.T) {
	pool := newTestPool(t)

	store := NewRoundRecordStore(pool)

	_, err := store.GetByRound(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRoundRecordStore_SessionQueries(t *testing.T) {
	pool := newTestPool(t)

	store := NewRoundRecordStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &domain.RoundRecord{SessionID: "a", Round: 2, CreatedAt: 20}))
	require.NoError(t, store.Insert(ctx, &domain.RoundRecord{SessionID: "a", Round: 1, CreatedAt: 10}))
	require.NoError(t, store.Insert(ctx, &domain.RoundRecord{SessionID: "b", Round: 1, CreatedAt: 30}))

	records, err := store.GetBySession(ctx, "a")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Round)
	assert.Equal(t, 2, records[1].Round)

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, sessions)
}
