// Package scoring implements the deterministic penalty scorer.
// It is a pure function of the signal bundle: no I/O, no randomness,
// no hidden state. The penalty table and tier thresholds are the
// behavioral contract; changing them is a versioned change.
package scoring

import (
	"fmt"
	"math"

	"solana-token-sentinel/internal/domain"
)

// Penalty values. Rules are additive; within each group exactly one
// case fires, evaluated in the order written.
const (
	PenaltyMarketCapUnknown = 30 // market cap unknown or zero
	PenaltyMarketCapTiny    = 40 // known and < $10K
	PenaltyMarketCapLow     = 20 // known and < $100K

	PenaltyVolumeZero = 20 // 24h volume zero or unknown
	PenaltyVolumeLow  = 15 // known, non-zero and < $1K

	PenaltyChangeExtreme = 25 // |24h change| > 50%
	PenaltyChangeHigh    = 10 // |24h change| > 20%

	PenaltyNoLinks = 20 // no website and no social link
	PenaltyNoRank  = 10 // no popularity rank from any provider
)

// Threshold values for the penalty groups.
const (
	marketCapTiny = 10_000
	marketCapLow  = 100_000
	volumeLow     = 1_000
	changeExtreme = 50.0
	changeHigh    = 20.0
)

// Scorer evaluates the fixed penalty rules.
type Scorer struct{}

// NewScorer creates a new deterministic scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score maps a signal bundle to a clamped [0, 100] score and the list of
// triggered warnings. An all-unknown bundle is valid input and produces a
// conservative score from the compounding unknown-data penalties.
func (s *Scorer) Score(bundle *domain.SignalBundle) domain.ScoreResult {
	score := 100
	warnings := []string{}

	// Market capitalization: unknown/zero first, then the known ladder.
	switch {
	case !bundle.HasMarketCap():
		score -= PenaltyMarketCapUnknown
		warnings = append(warnings, "market cap unknown or zero")
	case *bundle.MarketCap < marketCapTiny:
		score -= PenaltyMarketCapTiny
		warnings = append(warnings, fmt.Sprintf("very low market cap (%s)", domain.FormatUSD(*bundle.MarketCap)))
	case *bundle.MarketCap < marketCapLow:
		score -= PenaltyMarketCapLow
		warnings = append(warnings, fmt.Sprintf("low market cap (%s)", domain.FormatUSD(*bundle.MarketCap)))
	}

	// 24h volume: the zero/unknown case and the low case are mutually
	// exclusive by construction.
	switch {
	case !bundle.HasVolume():
		score -= PenaltyVolumeZero
		warnings = append(warnings, "no trading volume in last 24h")
	case *bundle.Volume24h < volumeLow:
		score -= PenaltyVolumeLow
		warnings = append(warnings, fmt.Sprintf("low 24h volume (%s)", domain.FormatUSD(*bundle.Volume24h)))
	}

	// 24h price change: largest threshold first.
	if bundle.PriceChange24hPct != nil {
		change := math.Abs(*bundle.PriceChange24hPct)
		switch {
		case change > changeExtreme:
			score -= PenaltyChangeExtreme
			warnings = append(warnings, fmt.Sprintf("extreme price volatility (%.2f%% in 24h)", *bundle.PriceChange24hPct))
		case change > changeHigh:
			score -= PenaltyChangeHigh
			warnings = append(warnings, fmt.Sprintf("high price volatility (%.2f%% in 24h)", *bundle.PriceChange24hPct))
		}
	}

	if !bundle.HasLinks() {
		score -= PenaltyNoLinks
		warnings = append(warnings, "no website or social media presence")
	}

	if bundle.Rank == nil {
		score -= PenaltyNoRank
		warnings = append(warnings, "not ranked by any provider")
	}

	return domain.ScoreResult{
		Score:    clamp(score),
		Warnings: warnings,
	}
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
