package domain

// SignalBundle aggregates best-effort facts about one token at one point in
// time. Fields are independently nullable when their source failed or lacks
// data; nil means "unknown", not "zero".
type SignalBundle struct {
	Mint   string
	Name   string
	Symbol string

	PriceUSD          *float64 // last trade price in USD
	MarketCap         *float64 // market capitalization in USD
	Volume24h         *float64 // 24h trading volume in USD
	PriceChange24hPct *float64 // 24h price change, percent

	WebsiteURL string
	TwitterURL string

	Rank *int // provider-assigned popularity rank

	CirculatingSupply *float64
	TotalSupply       *float64

	// Security is the on-chain security scan, nil when the scanner
	// was unavailable or failed.
	Security *SecurityReport

	// Sources lists the providers that contributed at least one field,
	// in priority order.
	Sources []string

	FetchedAt int64 // Unix timestamp in milliseconds
}

// HasMarketCap reports whether a non-zero market cap is known.
// A provider-reported literal zero is treated the same as unknown.
func (b *SignalBundle) HasMarketCap() bool {
	return b.MarketCap != nil && *b.MarketCap > 0
}

// HasVolume reports whether a non-zero 24h volume is known.
func (b *SignalBundle) HasVolume() bool {
	return b.Volume24h != nil && *b.Volume24h > 0
}

// HasLinks reports whether any website or social-media link is present.
func (b *SignalBundle) HasLinks() bool {
	return b.WebsiteURL != "" || b.TwitterURL != ""
}

// SecurityReport is the result of an on-chain security scan.
type SecurityReport struct {
	Honeypot      HoneypotCheck       `json:"honeypot"`
	MintAuthority MintAuthorityCheck  `json:"mint_authority"`
	Risks         []RiskFinding       `json:"risks,omitempty"`
	ScorePenalty  int                 `json:"score_penalty"` // provider-assigned total penalty
}

// HoneypotCheck flags a contract engineered to block sellers.
type HoneypotCheck struct {
	Detected   bool     `json:"detected"`
	Confidence int      `json:"confidence"` // 0-100
	Risks      []string `json:"risks,omitempty"`
}

// MintAuthorityCheck flags a retained privilege to mint new supply.
type MintAuthorityCheck struct {
	Present   bool   `json:"present"`
	Malicious bool   `json:"malicious"`
	Warning   string `json:"warning,omitempty"`
}

// RiskFinding is a single typed risk reported by the security scanner.
type RiskFinding struct {
	Name        string `json:"name"`
	Severity    string `json:"severity"` // info | warn | danger
	Description string `json:"description,omitempty"`
}
