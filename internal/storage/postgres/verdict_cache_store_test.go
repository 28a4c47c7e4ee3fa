package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/storage"
)

func testVerdict(mint string, score int) *domain.Verdict {
	return &domain.Verdict{
		Mint:           mint,
		Name:           "Test Token",
		Symbol:         "TST",
		Score:          score,
		Tier:           domain.TierForScore(score),
		Recommendation: domain.RecommendationForTier(domain.TierForScore(score)),
		Warnings:       []string{"low market cap ($50.0K)"},
		Sources:        []string{"dexscreener"},
		EvaluatedAt:    1700000000000,
	}
}

func TestVerdictCacheStore_PutAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewVerdictCacheStore(pool)

	v := testVerdict("CacheMint1", 75)
	err := store.Put(ctx, v.Mint, v, 1700000000000)
	require.NoError(t, err)

	cached, err := store.Get(ctx, v.Mint)
	require.NoError(t, err)

	assert.Equal(t, int64(1700000000000), cached.UpdatedAt)
	assert.Equal(t, v.Mint, cached.Verdict.Mint)
	assert.Equal(t, v.Score, cached.Verdict.Score)
	assert.Equal(t, v.Tier, cached.Verdict.Tier)
	assert.Equal(t, v.Recommendation, cached.Verdict.Recommendation)
	assert.Equal(t, v.Warnings, cached.Verdict.Warnings)
	assert.Equal(t, v.Sources, cached.Verdict.Sources)
}

func TestVerdictCacheStore_PutReplacesExisting(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewVerdictCacheStore(pool)

	err := store.Put(ctx, "CacheMint2", testVerdict("CacheMint2", 90), 1700000000000)
	require.NoError(t, err)

	// Second put for the same mint replaces, never duplicates.
	err = store.Put(ctx, "CacheMint2", testVerdict("CacheMint2", 35), 1700000600000)
	require.NoError(t, err)

	cached, err := store.Get(ctx, "CacheMint2")
	require.NoError(t, err)

	assert.Equal(t, 35, cached.Verdict.Score)
	assert.Equal(t, int64(1700000600000), cached.UpdatedAt)
}

func TestVerdictCacheStore_GetNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewVerdictCacheStore(pool)

	_, err := store.Get(ctx, "nonexistent-mint")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestVerdictCacheStore_PreservesAIJudgment(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewVerdictCacheStore(pool)

	v := testVerdict("CacheMint3", 45)
	v.AI = &domain.AIJudgment{
		RiskLevel:      domain.RiskLevelHigh,
		Confidence:     85,
		PrimaryConcern: "mint authority retained",
		Recommendation: domain.RecommendAvoid,
	}
	v.HoneypotOverride = true

	err := store.Put(ctx, v.Mint, v, 1700000000000)
	require.NoError(t, err)

	cached, err := store.Get(ctx, v.Mint)
	require.NoError(t, err)

	require.NotNil(t, cached.Verdict.AI)
	assert.Equal(t, domain.RiskLevelHigh, cached.Verdict.AI.RiskLevel)
	assert.Equal(t, 85, cached.Verdict.AI.Confidence)
	assert.True(t, cached.Verdict.HoneypotOverride)
}

func TestVerdictCacheStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewVerdictCacheStore(pool)

	err := store.Put(ctx, "", testVerdict("x", 50), 1700000000000)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Put(ctx, "SomeMint", nil, 1700000000000)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
