// Package collector fans out to the configured signal providers and merges
// whatever succeeded into one best-effort SignalBundle. No provider failure
// is fatal: a timeout, transport error or malformed payload only leaves that
// provider's fields unknown.
package collector

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/observability"
)

// DefaultFetchTimeout bounds each individual provider fetch.
// One slow provider must never block the others from completing.
const DefaultFetchTimeout = 4 * time.Second

// Collector issues concurrent, independently-failable provider fetches.
type Collector struct {
	markets  []MarketDataSource // priority order: index 0 wins field conflicts
	security SecuritySource     // optional
	timeout  time.Duration
	logger   *log.Logger
}

// Options configures a Collector.
type Options struct {
	// Markets are the market-data providers in priority order. The
	// first provider's value wins when present; fallbacks fill only
	// fields the primary left empty.
	Markets []MarketDataSource

	// Security is the on-chain security scanner, may be nil.
	Security SecuritySource

	// FetchTimeout bounds each provider fetch. Zero means
	// DefaultFetchTimeout.
	FetchTimeout time.Duration

	Logger *log.Logger
}

// New creates a Collector.
func New(opts Options) *Collector {
	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Collector{
		markets:  opts.Markets,
		security: opts.Security,
		timeout:  timeout,
		logger:   logger,
	}
}

// Collect fetches from all providers concurrently and merges the results.
// It never returns an error: an all-providers-failed bundle with every field
// unknown is valid input to the scorer.
func (c *Collector) Collect(ctx context.Context, mint string) *domain.SignalBundle {
	marketResults := make([]*MarketSnapshot, len(c.markets))
	var securityResult *domain.SecurityReport

	var wg sync.WaitGroup
	for i, src := range c.markets {
		wg.Add(1)
		go func(i int, src MarketDataSource) {
			defer wg.Done()
			marketResults[i] = c.fetchMarket(ctx, src, mint)
		}(i, src)
	}
	if c.security != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			securityResult = c.fetchSecurity(ctx, c.security, mint)
		}()
	}
	wg.Wait()

	bundle := &domain.SignalBundle{
		Mint:      mint,
		Security:  securityResult,
		FetchedAt: time.Now().UnixMilli(),
	}
	for i, snap := range marketResults {
		if snap == nil {
			continue
		}
		mergeSnapshot(bundle, snap)
		bundle.Sources = append(bundle.Sources, c.markets[i].Name())
	}
	if securityResult != nil {
		bundle.Sources = append(bundle.Sources, c.security.Name())
	}
	return bundle
}

func (c *Collector) fetchMarket(ctx context.Context, src MarketDataSource, mint string) *MarketSnapshot {
	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	snap, err := src.Fetch(fetchCtx, mint)
	observability.RecordProviderFetch(src.Name(), err == nil, time.Since(start).Seconds())
	if err != nil {
		c.logger.Printf("market provider %s failed for %s: %v", src.Name(), mint, err)
		return nil
	}
	return snap
}

func (c *Collector) fetchSecurity(ctx context.Context, src SecuritySource, mint string) *domain.SecurityReport {
	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	report, err := src.Scan(fetchCtx, mint)
	observability.RecordProviderFetch(src.Name(), err == nil, time.Since(start).Seconds())
	if err != nil {
		c.logger.Printf("security provider %s failed for %s: %v", src.Name(), mint, err)
		return nil
	}
	return report
}

// mergeSnapshot fills only the bundle fields that are still unknown.
// Callers iterate snapshots in provider-priority order.
func mergeSnapshot(b *domain.SignalBundle, s *MarketSnapshot) {
	if b.Name == "" {
		b.Name = s.Name
	}
	if b.Symbol == "" {
		b.Symbol = s.Symbol
	}
	if b.PriceUSD == nil {
		b.PriceUSD = s.PriceUSD
	}
	if b.MarketCap == nil {
		b.MarketCap = s.MarketCap
	}
	if b.Volume24h == nil {
		b.Volume24h = s.Volume24h
	}
	if b.PriceChange24hPct == nil {
		b.PriceChange24hPct = s.PriceChange24hPct
	}
	if b.WebsiteURL == "" {
		b.WebsiteURL = s.WebsiteURL
	}
	if b.TwitterURL == "" {
		b.TwitterURL = s.TwitterURL
	}
	if b.Rank == nil {
		b.Rank = s.Rank
	}
	if b.CirculatingSupply == nil {
		b.CirculatingSupply = s.CirculatingSupply
	}
	if b.TotalSupply == nil {
		b.TotalSupply = s.TotalSupply
	}
}
