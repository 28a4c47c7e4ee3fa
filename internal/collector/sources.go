package collector

import (
	"context"

	"solana-token-sentinel/internal/domain"
)

// MarketSnapshot is the raw market-data result from one provider.
// Fields a provider does not supply stay nil/empty and may be filled
// by lower-priority providers during the merge.
type MarketSnapshot struct {
	Name   string
	Symbol string

	PriceUSD          *float64
	MarketCap         *float64
	Volume24h         *float64
	PriceChange24hPct *float64

	WebsiteURL string
	TwitterURL string

	Rank *int

	CirculatingSupply *float64
	TotalSupply       *float64
}

// MarketDataSource provides market stats for a token from one provider.
type MarketDataSource interface {
	// Name identifies the provider for provenance and logging.
	Name() string

	// Fetch returns market stats for a mint. A nil snapshot with nil
	// error means the provider has no data for this token.
	Fetch(ctx context.Context, mint string) (*MarketSnapshot, error)
}

// SecuritySource provides an on-chain security scan from one provider.
type SecuritySource interface {
	// Name identifies the provider for provenance and logging.
	Name() string

	// Scan returns the security report for a mint. A nil report with
	// nil error means the scan is unavailable for this token.
	Scan(ctx context.Context, mint string) (*domain.SecurityReport, error)
}
