package domain

// RiskTier is the deterministic risk category derived from score thresholds.
type RiskTier string

const (
	TierSafe          RiskTier = "SAFE"           // score >= 80
	TierCaution       RiskTier = "CAUTION"        // score >= 60
	TierDanger        RiskTier = "DANGER"         // score >= 40
	TierExtremeDanger RiskTier = "EXTREME_DANGER" // score < 40
)

// TierForScore maps a clamped score to its risk tier.
func TierForScore(score int) RiskTier {
	switch {
	case score >= 80:
		return TierSafe
	case score >= 60:
		return TierCaution
	case score >= 40:
		return TierDanger
	default:
		return TierExtremeDanger
	}
}

// Recommendation is the final go/no-go category exposed to callers.
type Recommendation string

const (
	RecommendSafe          Recommendation = "SAFE"
	RecommendAcceptable    Recommendation = "ACCEPTABLE"
	RecommendCaution       Recommendation = "CAUTION"
	RecommendAvoid         Recommendation = "AVOID"
	RecommendExtremeDanger Recommendation = "EXTREME_DANGER"
)

// Severity ranks recommendations for reconciliation.
// SAFE < ACCEPTABLE/CAUTION < AVOID < EXTREME_DANGER.
func (r Recommendation) Severity() int {
	switch r {
	case RecommendSafe:
		return 0
	case RecommendAcceptable, RecommendCaution:
		return 1
	case RecommendAvoid:
		return 2
	case RecommendExtremeDanger:
		return 3
	default:
		// Unknown values sort between CAUTION and AVOID so a garbled
		// AI recommendation can never read as fully safe.
		return 1
	}
}

// RecommendationForTier maps a deterministic tier to its recommendation.
func RecommendationForTier(tier RiskTier) Recommendation {
	switch tier {
	case TierSafe:
		return RecommendSafe
	case TierCaution:
		return RecommendCaution
	case TierDanger:
		return RecommendAvoid
	default:
		return RecommendExtremeDanger
	}
}

// MoreSevere returns the more severe of two recommendations.
func MoreSevere(a, b Recommendation) Recommendation {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// ScoreResult is the output of the deterministic scorer.
type ScoreResult struct {
	Score    int      `json:"score"` // clamped to [0, 100]
	Warnings []string `json:"warnings"`
}

// Tier derives the risk tier for this score.
func (r ScoreResult) Tier() RiskTier {
	return TierForScore(r.Score)
}

// RiskLevel is the qualitative risk level reported by the AI interpreter.
type RiskLevel string

const (
	RiskLevelSafe     RiskLevel = "safe"
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// AIJudgment is the qualitative assessment from the AI risk interpreter.
// Absence of a judgment is a valid, expected state, not an error.
type AIJudgment struct {
	RiskLevel        RiskLevel      `json:"risk_level"`
	Confidence       int            `json:"confidence"` // 0-100
	PrimaryConcern   string         `json:"primary_concern"`
	DetectedPatterns []string       `json:"detected_patterns"`
	KeyFindings      []string       `json:"key_findings"`
	Recommendation   Recommendation `json:"recommendation"`
	Reasoning        string         `json:"reasoning"`
}

// Verdict is the externally visible result of one evaluation.
// Constructed fresh per request and never mutated after construction.
type Verdict struct {
	Mint           string         `json:"mint"`
	Name           string         `json:"name,omitempty"`
	Symbol         string         `json:"symbol,omitempty"`
	Score          int            `json:"score"`
	Tier           RiskTier       `json:"tier"`
	Recommendation Recommendation `json:"recommendation"`
	Warnings       []string       `json:"warnings"`

	// AI is nil when the interpreter was disabled, failed, or was skipped
	// to preserve the deadline.
	AI *AIJudgment `json:"ai,omitempty"`

	// HoneypotOverride records that a high-confidence honeypot signal
	// forced the recommendation regardless of score or AI output.
	HoneypotOverride bool `json:"honeypot_override,omitempty"`

	// Sources lists the providers that contributed signals.
	Sources []string `json:"sources"`

	// Volume24h echoes the observed 24h volume, nil when unknown. The
	// rescore scheduler reads it to track liveness.
	Volume24h *float64 `json:"volume_24h,omitempty"`

	EvaluatedAt int64 `json:"evaluated_at"` // Unix timestamp in milliseconds
	ElapsedMs   int64 `json:"elapsed_ms"`
	FromCache   bool  `json:"from_cache,omitempty"`
}
