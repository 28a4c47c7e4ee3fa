package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"solana-token-sentinel/internal/collector"
)

// DefaultCoinGeckoEndpoint is the public coins API root.
const DefaultCoinGeckoEndpoint = "https://api.coingecko.com/api/v3"

// CoinGeckoTimeout bounds one fetch.
const CoinGeckoTimeout = 5 * time.Second

// CoinGeckoSource fetches market stats from CoinGecko by Solana contract
// address. It is the fallback market source: slower and only listed
// tokens, but it carries the popularity rank DexScreener lacks.
type CoinGeckoSource struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// CoinGeckoOption configures CoinGeckoSource.
type CoinGeckoOption func(*CoinGeckoSource)

// WithCoinGeckoEndpoint overrides the API endpoint.
func WithCoinGeckoEndpoint(endpoint string) CoinGeckoOption {
	return func(s *CoinGeckoSource) {
		s.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithCoinGeckoAPIKey sets the demo/pro API key header.
func WithCoinGeckoAPIKey(key string) CoinGeckoOption {
	return func(s *CoinGeckoSource) {
		s.apiKey = key
	}
}

// WithCoinGeckoHTTPClient sets a custom http.Client.
func WithCoinGeckoHTTPClient(client *http.Client) CoinGeckoOption {
	return func(s *CoinGeckoSource) {
		s.client = client
	}
}

// NewCoinGeckoSource creates a CoinGecko market source.
func NewCoinGeckoSource(opts ...CoinGeckoOption) *CoinGeckoSource {
	s := &CoinGeckoSource{
		endpoint: DefaultCoinGeckoEndpoint,
		client:   &http.Client{Timeout: CoinGeckoTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile-time interface check.
var _ collector.MarketDataSource = (*CoinGeckoSource)(nil)

// Name identifies the provider for provenance and logging.
func (s *CoinGeckoSource) Name() string { return "coingecko" }

// Fetch returns market stats for a mint. Unlisted tokens yield (nil, nil).
func (s *CoinGeckoSource) Fetch(ctx context.Context, mint string) (*collector.MarketSnapshot, error) {
	url := s.endpoint + "/coins/solana/contract/" + mint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", s.apiKey)
	}

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

	var payload coinGeckoCoin
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	snap := &collector.MarketSnapshot{
		Name:   payload.Name,
		Symbol: strings.ToUpper(payload.Symbol),
	}

	if payload.MarketCapRank != nil && *payload.MarketCapRank > 0 {
		rank := *payload.MarketCapRank
		snap.Rank = &rank
	}

	md := payload.MarketData
	if md != nil {
		if v, ok := md.CurrentPrice["usd"]; ok {
			price := v
			snap.PriceUSD = &price
		}
		if v, ok := md.MarketCap["usd"]; ok {
			mcap := v
			snap.MarketCap = &mcap
		}
		if v, ok := md.TotalVolume["usd"]; ok {
			vol := v
			snap.Volume24h = &vol
		}
		if md.PriceChangePct24h != nil {
			change := *md.PriceChangePct24h
			snap.PriceChange24hPct = &change
		}
		snap.CirculatingSupply = md.CirculatingSupply
		snap.TotalSupply = md.TotalSupply
	}

	if len(payload.Links.Homepage) > 0 && payload.Links.Homepage[0] != "" {
		snap.WebsiteURL = payload.Links.Homepage[0]
	}
	if payload.Links.TwitterScreenName != "" {
		snap.TwitterURL = "https://twitter.com/" + payload.Links.TwitterScreenName
	}

	return snap, nil
}

// coinGeckoCoin is the raw API response for the contract endpoint,
// reduced to the fields we read.
type coinGeckoCoin struct {
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int   `json:"market_cap_rank"`
	Links         struct {
		Homepage          []string `json:"homepage"`
		TwitterScreenName string   `json:"twitter_screen_name"`
	} `json:"links"`
	MarketData *struct {
		CurrentPrice      map[string]float64 `json:"current_price"`
		MarketCap         map[string]float64 `json:"market_cap"`
		TotalVolume       map[string]float64 `json:"total_volume"`
		PriceChangePct24h *float64           `json:"price_change_percentage_24h"`
		CirculatingSupply *float64           `json:"circulating_supply"`
		TotalSupply       *float64           `json:"total_supply"`
	} `json:"market_data"`
}
