// Package reconcile merges the deterministic score and the optional AI
// judgment into one final verdict. Hard override rules make specific
// danger signals non-negotiable: an optimistic AI narrative can never
// dilute a high-confidence honeypot detection or downgrade a
// deterministic DANGER tier.
package reconcile

import (
	"fmt"

	"solana-token-sentinel/internal/domain"
)

// HoneypotOverrideConfidence is the high-confidence threshold above
// which a honeypot detection forces the most severe recommendation.
const HoneypotOverrideConfidence = 70

// Reconcile builds the final verdict from the signal bundle, the
// deterministic score and the optional AI judgment (nil when the
// interpreter was unavailable).
//
// Precedence:
//  1. honeypot with confidence > HoneypotOverrideConfidence forces
//     EXTREME_DANGER regardless of score or AI output;
//  2. otherwise the more severe of deterministic tier and AI
//     recommendation wins; AI can only raise severity, never lower it.
func Reconcile(bundle *domain.SignalBundle, score domain.ScoreResult, ai *domain.AIJudgment) *domain.Verdict {
	tier := score.Tier()
	recommendation := domain.RecommendationForTier(tier)

	if ai != nil {
		recommendation = domain.MoreSevere(recommendation, ai.Recommendation)
	}

	warnings := append([]string{}, score.Warnings...)
	if ai != nil {
		warnings = mergeDedupe(warnings, ai.KeyFindings)
	}

	override := false
	if sec := bundle.Security; sec != nil && sec.Honeypot.Detected && sec.Honeypot.Confidence > HoneypotOverrideConfidence {
		override = true
		recommendation = domain.RecommendExtremeDanger
		warnings = mergeDedupe(warnings, []string{
			fmt.Sprintf("honeypot detected with %d%% confidence", sec.Honeypot.Confidence),
		})
	}

	return &domain.Verdict{
		Mint:             bundle.Mint,
		Name:             bundle.Name,
		Symbol:           bundle.Symbol,
		Score:            score.Score,
		Tier:             tier,
		Recommendation:   recommendation,
		Warnings:         warnings,
		AI:               ai,
		HoneypotOverride: override,
		Sources:          bundle.Sources,
		Volume24h:        bundle.Volume24h,
	}
}

// mergeDedupe appends extras to base, dropping literal-string duplicates
// while preserving order.
func mergeDedupe(base, extras []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, s := range base {
		seen[s] = struct{}{}
	}
	for _, s := range extras {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		base = append(base, s)
	}
	return base
}
