// Package momentum schedules watchlist rescores on a sliding cadence:
// tokens that score well are checked often, weak tokens rarely, and
// tokens with no trading activity for a day are retired entirely.
package momentum

import (
	"time"

	"solana-token-sentinel/internal/domain"
)

// Rescore cadence and liveness thresholds.
const (
	// IntervalHigh is the cadence for tokens scoring 70 or above.
	IntervalHigh = 1 * time.Hour

	// IntervalMedium is the cadence for tokens scoring 40-69.
	IntervalMedium = 3 * time.Hour

	// IntervalLow is the cadence for tokens scoring below 40.
	IntervalLow = 12 * time.Hour

	// DeadAfter retires a token once its zero-volume streak reaches
	// this long.
	DeadAfter = 24 * time.Hour

	// MinVolume is the 24h volume below which a token counts as not
	// trading for the dead-streak clock.
	MinVolume = 100.0

	// PromotionGain is the score improvement that promotes a
	// medium-band token to the fast cadence before its band would.
	PromotionGain = 10
)

// Outcome is the rescheduling decision for one rescored token.
type Outcome struct {
	Token *domain.WatchedToken

	// Dead is set when the zero-volume streak crossed DeadAfter.
	Dead bool

	// Promoted is set when a momentum gain moved a medium-band token
	// to the fast cadence.
	Promoted bool
}

// IntervalForBand maps a rescore band to its cadence.
func IntervalForBand(band domain.RescoreBand) time.Duration {
	switch band {
	case domain.BandHigh:
		return IntervalHigh
	case domain.BandMedium:
		return IntervalMedium
	default:
		return IntervalLow
	}
}

// Reschedule computes the next watchlist state for a token that was
// just rescored. prev may be zero-valued except for Mint on the first
// scoring.
func Reschedule(prev *domain.WatchedToken, score int, volume float64, now time.Time) Outcome {
	nowMs := now.UnixMilli()

	next := *prev
	next.LastScore = score
	next.LastVolume = volume
	next.LastScoredAt = nowMs
	if next.CreatedAt == 0 {
		next.CreatedAt = nowMs
	}

	// Zero-volume streak tracking. Volume under MinVolume counts as
	// not trading.
	if volume < MinVolume {
		if next.ZeroVolSince == 0 {
			next.ZeroVolSince = nowMs
		}
		if nowMs-next.ZeroVolSince >= DeadAfter.Milliseconds() {
			next.Band = domain.BandDead
			return Outcome{Token: &next, Dead: true}
		}
	} else {
		next.ZeroVolSince = 0
	}

	band := domain.BandForScore(score)

	promoted := false
	if prev.Band == domain.BandMedium && band == domain.BandMedium &&
		score >= prev.LastScore+PromotionGain {
		// Improving inside the medium band earns the fast cadence
		// before the score itself would.
		band = domain.BandHigh
		promoted = true
	}

	next.Band = band
	next.NextDueAt = nowMs + IntervalForBand(band).Milliseconds()

	return Outcome{Token: &next, Promoted: promoted}
}
