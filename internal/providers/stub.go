package providers

import (
	"context"

	"solana-token-sentinel/internal/collector"
	"solana-token-sentinel/internal/domain"
)

// StubMarketSource returns a fixed healthy snapshot for every mint.
// Used by the offline/dev mode so the full pipeline runs without
// network access.
type StubMarketSource struct{}

// NewStubMarketSource creates a stub market source.
func NewStubMarketSource() *StubMarketSource {
	return &StubMarketSource{}
}

// Compile-time interface check.
var _ collector.MarketDataSource = (*StubMarketSource)(nil)

// Name identifies the provider for provenance and logging.
func (s *StubMarketSource) Name() string { return "stub-market" }

// Fetch returns a fixed snapshot.
func (s *StubMarketSource) Fetch(_ context.Context, mint string) (*collector.MarketSnapshot, error) {
	price := 1.25
	mcap := 5_000_000.0
	volume := 250_000.0
	change := 2.5
	rank := 500

	return &collector.MarketSnapshot{
		Name:              "Stub Token " + shortMint(mint),
		Symbol:            "STUB",
		PriceUSD:          &price,
		MarketCap:         &mcap,
		Volume24h:         &volume,
		PriceChange24hPct: &change,
		WebsiteURL:        "https://example.com",
		Rank:              &rank,
	}, nil
}

// StubSecuritySource returns a clean security report for every mint.
type StubSecuritySource struct{}

// NewStubSecuritySource creates a stub security source.
func NewStubSecuritySource() *StubSecuritySource {
	return &StubSecuritySource{}
}

// Compile-time interface check.
var _ collector.SecuritySource = (*StubSecuritySource)(nil)

// Name identifies the provider for provenance and logging.
func (s *StubSecuritySource) Name() string { return "stub-security" }

// Scan returns a clean report.
func (s *StubSecuritySource) Scan(_ context.Context, _ string) (*domain.SecurityReport, error) {
	return &domain.SecurityReport{}, nil
}

func shortMint(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return mint[:4] + ".." + mint[len(mint)-4:]
}
