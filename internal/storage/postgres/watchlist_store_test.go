package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/storage"
)

func TestWatchlistStore_UpsertAndGetByMint(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewWatchlistStore(pool)

	token := &domain.WatchedToken{
		Mint:         "WatchMint1",
		Label:        "test token",
		Band:         domain.BandHigh,
		LastScore:    82,
		LastVolume:   125000,
		LastScoredAt: 1700000000000,
		NextDueAt:    1700003600000,
		CreatedAt:    1700000000000,
	}

	err := store.Upsert(ctx, token)
	require.NoError(t, err)

	retrieved, err := store.GetByMint(ctx, "WatchMint1")
	require.NoError(t, err)

	assert.Equal(t, token.Label, retrieved.Label)
	assert.Equal(t, domain.BandHigh, retrieved.Band)
	assert.Equal(t, 82, retrieved.LastScore)
	assert.InDelta(t, 125000.0, retrieved.LastVolume, 0.0001)
	assert.Equal(t, token.NextDueAt, retrieved.NextDueAt)
}

func TestWatchlistStore_UpsertReplacesExisting(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewWatchlistStore(pool)

	token := &domain.WatchedToken{
		Mint:      "WatchMint2",
		Band:      domain.BandMedium,
		LastScore: 55,
		NextDueAt: 1700010800000,
		CreatedAt: 1700000000000,
	}
	require.NoError(t, store.Upsert(ctx, token))

	token.Band = domain.BandHigh
	token.LastScore = 78
	token.NextDueAt = 1700003600000
	require.NoError(t, store.Upsert(ctx, token))

	retrieved, err := store.GetByMint(ctx, "WatchMint2")
	require.NoError(t, err)

	assert.Equal(t, domain.BandHigh, retrieved.Band)
	assert.Equal(t, 78, retrieved.LastScore)
	assert.Equal(t, int64(1700003600000), retrieved.NextDueAt)
}

func TestWatchlistStore_GetDue(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewWatchlistStore(pool)

	now := int64(1700000000000)

	// Due earlier than the other due token, should come first.
	require.NoError(t, store.Upsert(ctx, &domain.WatchedToken{
		Mint: "DueMintB", Band: domain.BandHigh, NextDueAt: now - 5000,
	}))
	require.NoError(t, store.Upsert(ctx, &domain.WatchedToken{
		Mint: "DueMintA", Band: domain.BandMedium, NextDueAt: now - 1000,
	}))
	// Not due yet.
	require.NoError(t, store.Upsert(ctx, &domain.WatchedToken{
		Mint: "FutureMint", Band: domain.BandHigh, NextDueAt: now + 60000,
	}))
	// Dead tokens are never due.
	require.NoError(t, store.Upsert(ctx, &domain.WatchedToken{
		Mint: "DeadMint", Band: domain.BandDead, NextDueAt: now - 99999,
	}))

	due, err := store.GetDue(ctx, now)
	require.NoError(t, err)

	require.Len(t, due, 2)
	assert.Equal(t, "DueMintB", due[0].Mint)
	assert.Equal(t, "DueMintA", due[1].Mint)
}

func TestWatchlistStore_GetDueBoundaryInclusive(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewWatchlistStore(pool)

	now := int64(1700000000000)
	require.NoError(t, store.Upsert(ctx, &domain.WatchedToken{
		Mint: "ExactMint", Band: domain.BandLow, NextDueAt: now,
	}))

	due, err := store.GetDue(ctx, now)
	require.NoError(t, err)

	require.Len(t, due, 1)
	assert.Equal(t, "ExactMint", due[0].Mint)
}

func TestWatchlistStore_MarkDead(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewWatchlistStore(pool)

	require.NoError(t, store.Upsert(ctx, &domain.WatchedToken{
		Mint: "SoonDeadMint", Band: domain.BandLow, NextDueAt: 1700000000000,
	}))

	err := store.MarkDead(ctx, "SoonDeadMint")
	require.NoError(t, err)

	retrieved, err := store.GetByMint(ctx, "SoonDeadMint")
	require.NoError(t, err)
	assert.Equal(t, domain.BandDead, retrieved.Band)

	due, err := store.GetDue(ctx, 1700099999999)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestWatchlistStore_MarkDeadNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewWatchlistStore(pool)

	err := store.MarkDead(ctx, "nonexistent-mint")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWatchlistStore_GetByMintNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewWatchlistStore(pool)

	_, err := store.GetByMint(ctx, "nonexistent-mint")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
