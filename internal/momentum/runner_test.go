package momentum

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-sentinel/internal/collector"
	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/engine"
	"solana-token-sentinel/internal/storage/memory"
)

const testMint = "So11111111111111111111111111111111111111112"

// scriptedMarket serves a configurable snapshot.
type scriptedMarket struct {
	mcap   float64
	volume float64
}

func (m *scriptedMarket) Name() string { return "scripted" }

func (m *scriptedMarket) Fetch(_ context.Context, _ string) (*collector.MarketSnapshot, error) {
	mcap := m.mcap
	vol := m.volume
	change := 1.0
	rank := 100
	return &collector.MarketSnapshot{
		Name:              "Scripted",
		Symbol:            "SCR",
		MarketCap:         &mcap,
		Volume24h:         &vol,
		PriceChange24hPct: &change,
		WebsiteURL:        "https://example.com",
		Rank:              &rank,
	}, nil
}

func newTestRunner(t *testing.T, market *scriptedMarket) (*Runner, *memory.WatchlistStore) {
	t.Helper()

	coll := collector.New(collector.Options{
		Markets: []collector.MarketDataSource{market},
	})
	eng, err := engine.New(engine.Options{Collector: coll})
	require.NoError(t, err)

	watchlist := memory.NewWatchlistStore()
	runner := NewRunner(RunnerOptions{
		Watchlist: watchlist,
		Engine:    eng,
		Interval:  time.Minute,
	})
	return runner, watchlist
}

func TestRunner_TrackAndRescore(t *testing.T) {
	market := &scriptedMarket{mcap: 5_000_000, volume: 250_000}
	runner, watchlist := newTestRunner(t, market)
	ctx := context.Background()

	require.NoError(t, runner.Track(ctx, testMint, "sol"))

	runner.RunCycle(ctx)

	token, err := watchlist.GetByMint(ctx, testMint)
	require.NoError(t, err)

	// Healthy signals score 100: fast cadence.
	assert.Equal(t, 100, token.LastScore)
	assert.Equal(t, domain.BandHigh, token.Band)
	assert.InDelta(t, 250_000.0, token.LastVolume, 0.0001)
	assert.Greater(t, token.NextDueAt, time.Now().UnixMilli())
}

func TestRunner_SkipsTokensNotDue(t *testing.T) {
	market := &scriptedMarket{mcap: 5_000_000, volume: 250_000}
	runner, watchlist := newTestRunner(t, market)
	ctx := context.Background()

	require.NoError(t, watchlist.Upsert(ctx, &domain.WatchedToken{
		Mint:      testMint,
		Band:      domain.BandHigh,
		LastScore: 90,
		NextDueAt: time.Now().Add(time.Hour).UnixMilli(),
	}))

	runner.RunCycle(ctx)

	token, err := watchlist.GetByMint(ctx, testMint)
	require.NoError(t, err)
	assert.Equal(t, 90, token.LastScore, "token not due must be untouched")
}

func TestRunner_MarksDeadAfterSustainedZeroVolume(t *testing.T) {
	market := &scriptedMarket{mcap: 5_000_000, volume: 0}
	runner, watchlist := newTestRunner(t, market)
	ctx := context.Background()

	require.NoError(t, watchlist.Upsert(ctx, &domain.WatchedToken{
		Mint:         testMint,
		Band:         domain.BandLow,
		NextDueAt:    time.Now().Add(-time.Minute).UnixMilli(),
		ZeroVolSince: time.Now().Add(-25 * time.Hour).UnixMilli(),
	}))

	runner.RunCycle(ctx)

	token, err := watchlist.GetByMint(ctx, testMint)
	require.NoError(t, err)
	assert.Equal(t, domain.BandDead, token.Band)

	// Dead tokens never come due again.
	due, err := watchlist.GetDue(ctx, time.Now().Add(48*time.Hour).UnixMilli())
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestRunner_InvalidMintDoesNotAbortCycle(t *testing.T) {
	market := &scriptedMarket{mcap: 5_000_000, volume: 250_000}
	runner, watchlist := newTestRunner(t, market)
	ctx := context.Background()

	// A bad entry alongside a good one.
	require.NoError(t, watchlist.Upsert(ctx, &domain.WatchedToken{
		Mint:      "bad0mint",
		Band:      domain.BandLow,
		NextDueAt: 0,
	}))
	require.NoError(t, runner.Track(ctx, testMint, ""))

	runner.RunCycle(ctx)

	token, err := watchlist.GetByMint(ctx, testMint)
	require.NoError(t, err)
	assert.Equal(t, 100, token.LastScore, "valid token still rescored")
}
