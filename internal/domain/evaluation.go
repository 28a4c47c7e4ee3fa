package domain

// EvaluationRecord is one row of append-only score history.
// Corresponds to the evaluations table in ClickHouse.
type EvaluationRecord struct {
	Mint           string
	Score          int
	Tier           RiskTier
	Recommendation Recommendation
	WarningCount   int
	AIAvailable    bool
	Volume24h      float64 // 0 when unknown
	EvaluatedAt    int64   // Unix timestamp in milliseconds
}

// Rescore bands derived from the last deterministic score.
type RescoreBand string

const (
	BandHigh   RescoreBand = "HIGH"   // score >= 70
	BandMedium RescoreBand = "MEDIUM" // score 40-69
	BandLow    RescoreBand = "LOW"    // score < 40
	BandDead   RescoreBand = "DEAD"   // skipped entirely
)

// BandForScore maps a score to its rescore band.
func BandForScore(score int) RescoreBand {
	switch {
	case score >= 70:
		return BandHigh
	case score >= 40:
		return BandMedium
	default:
		return BandLow
	}
}

// WatchedToken is a tracked token with its rescore state.
// Corresponds to the watchlist table in PostgreSQL.
type WatchedToken struct {
	Mint         string
	Label        string // optional human label from the watchlist file
	Band         RescoreBand
	LastScore    int
	LastVolume   float64 // last known 24h volume, 0 when unknown
	LastScoredAt int64   // Unix timestamp in milliseconds, 0 if never scored
	NextDueAt    int64   // next rescore time (ms)
	ZeroVolSince int64   // start of the current zero-volume streak (ms), 0 if none
	CreatedAt    int64   // record creation timestamp (ms)
}
