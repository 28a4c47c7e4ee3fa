// Package providers implements the external signal sources the collector
// fans out to: market-data APIs and on-chain security scanners. Every
// provider degrades to (nil, error) on failure and never panics; the
// collector decides what a missing signal means.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"solana-token-sentinel/internal/collector"
)

// DefaultDexScreenerEndpoint is the public token-pairs API.
const DefaultDexScreenerEndpoint = "https://api.dexscreener.com/latest/dex/tokens"

// DexScreenerTimeout bounds one fetch; the collector applies its own
// per-provider deadline on top.
const DexScreenerTimeout = 5 * time.Second

// DexScreenerSource fetches market stats from DexScreener. It is the
// primary market source: fresh DEX data, but no popularity rank.
type DexScreenerSource struct {
	endpoint string
	client   *http.Client
}

// DexScreenerOption configures DexScreenerSource.
type DexScreenerOption func(*DexScreenerSource)

// WithDexScreenerEndpoint overrides the API endpoint.
func WithDexScreenerEndpoint(endpoint string) DexScreenerOption {
	return func(s *DexScreenerSource) {
		s.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithDexScreenerHTTPClient sets a custom http.Client.
func WithDexScreenerHTTPClient(client *http.Client) DexScreenerOption {
	return func(s *DexScreenerSource) {
		s.client = client
	}
}

// NewDexScreenerSource creates a DexScreener market source.
func NewDexScreenerSource(opts ...DexScreenerOption) *DexScreenerSource {
	s := &DexScreenerSource{
		endpoint: DefaultDexScreenerEndpoint,
		client:   &http.Client{Timeout: DexScreenerTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile-time interface check.
var _ collector.MarketDataSource = (*DexScreenerSource)(nil)

// Name identifies the provider for provenance and logging.
func (s *DexScreenerSource) Name() string { return "dexscreener" }

// Fetch returns market stats for a mint, taken from the most liquid
// trading pair. A token with no pairs yields (nil, nil).
func (s *DexScreenerSource) Fetch(ctx context.Context, mint string) (*collector.MarketSnapshot, error) {
	url := s.endpoint + "/" + mint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var payload dexScreenerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	pair := bestPair(payload.Pairs)
	if pair == nil {
		return nil, nil
	}

	snap := &collector.MarketSnapshot{
		Name:   pair.BaseToken.Name,
		Symbol: pair.BaseToken.Symbol,
	}

	if pair.PriceUSD != "" {
		if price, err := strconv.ParseFloat(pair.PriceUSD, 64); err == nil {
			snap.PriceUSD = &price
		}
	}
	if pair.MarketCap != nil {
		snap.MarketCap = pair.MarketCap
	} else if pair.FDV != nil {
		// Fully diluted valuation as a fallback for missing market cap.
		snap.MarketCap = pair.FDV
	}
	if pair.Volume.H24 != nil {
		snap.Volume24h = pair.Volume.H24
	}
	if pair.PriceChange.H24 != nil {
		snap.PriceChange24hPct = pair.PriceChange.H24
	}

	if pair.Info != nil {
		if len(pair.Info.Websites) > 0 {
			snap.WebsiteURL = pair.Info.Websites[0].URL
		}
		for _, social := range pair.Info.Socials {
			if strings.EqualFold(social.Type, "twitter") {
				snap.TwitterURL = social.URL
				break
			}
		}
	}

	return snap, nil
}

// bestPair picks the pair with the highest USD liquidity.
func bestPair(pairs []dexScreenerPair) *dexScreenerPair {
	var best *dexScreenerPair
	bestLiq := -1.0
	for i := range pairs {
		liq := 0.0
		if pairs[i].Liquidity != nil && pairs[i].Liquidity.USD != nil {
			liq = *pairs[i].Liquidity.USD
		}
		if liq > bestLiq {
			best = &pairs[i]
			bestLiq = liq
		}
	}
	return best
}

// dexScreenerResponse is the raw API response for the token-pairs endpoint.
type dexScreenerResponse struct {
	Pairs []dexScreenerPair `json:"pairs"`
}

type dexScreenerPair struct {
	BaseToken struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"baseToken"`
	PriceUSD  string   `json:"priceUsd"`
	FDV       *float64 `json:"fdv"`
	MarketCap *float64 `json:"marketCap"`
	Volume    struct {
		H24 *float64 `json:"h24"`
	} `json:"volume"`
	PriceChange struct {
		H24 *float64 `json:"h24"`
	} `json:"priceChange"`
	Liquidity *struct {
		USD *float64 `json:"usd"`
	} `json:"liquidity"`
	Info *struct {
		Websites []struct {
			URL string `json:"url"`
		} `json:"websites"`
		Socials []struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"socials"`
	} `json:"info"`
}
