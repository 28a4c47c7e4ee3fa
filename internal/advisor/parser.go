package advisor

import (
	"encoding/json"
	"errors"
	"strings"

	"solana-token-sentinel/internal/domain"
)

// ErrNoJSON is returned when no JSON object can be located in the model
// output.
var ErrNoJSON = errors.New("no JSON object found in model output")

// Defaults applied when the model omits or garbles a field. They are
// deliberately conservative: a partially-malformed response yields a
// usable middle-of-the-road judgment instead of being discarded.
const (
	DefaultRiskLevel      = domain.RiskLevelMedium
	DefaultConfidence     = 50
	DefaultRecommendation = domain.RecommendCaution
)

// rawJudgment mirrors the requested schema with loose types so that a
// partially-valid payload still unmarshals.
type rawJudgment struct {
	RiskLevel        *string  `json:"risk_level"`
	Confidence       *float64 `json:"confidence"`
	PrimaryConcern   *string  `json:"primary_concern"`
	DetectedPatterns []string `json:"detected_patterns"`
	KeyFindings      []string `json:"key_findings"`
	Recommendation   *string  `json:"recommendation"`
	Reasoning        *string  `json:"reasoning"`
}

// ParseJudgment extracts the structured judgment from raw model output.
// Models habitually wrap their payload in prose or markdown fences, so
// extraction scans for a fenced block first and falls back to the first
// balanced top-level JSON object in the text. Missing fields take the
// documented defaults.
func ParseJudgment(raw string) (*domain.AIJudgment, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, ErrNoJSON
	}

	var parsed rawJudgment
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, err
	}

	judgment := &domain.AIJudgment{
		RiskLevel:        DefaultRiskLevel,
		Confidence:       DefaultConfidence,
		Recommendation:   DefaultRecommendation,
		DetectedPatterns: []string{},
		KeyFindings:      []string{},
	}

	if parsed.RiskLevel != nil {
		if lvl, ok := normalizeRiskLevel(*parsed.RiskLevel); ok {
			judgment.RiskLevel = lvl
		}
	}
	if parsed.Confidence != nil {
		judgment.Confidence = clampConfidence(int(*parsed.Confidence))
	}
	if parsed.PrimaryConcern != nil {
		judgment.PrimaryConcern = strings.TrimSpace(*parsed.PrimaryConcern)
	}
	if parsed.DetectedPatterns != nil {
		judgment.DetectedPatterns = parsed.DetectedPatterns
	}
	if parsed.KeyFindings != nil {
		judgment.KeyFindings = parsed.KeyFindings
	}
	if parsed.Recommendation != nil {
		if rec, ok := normalizeRecommendation(*parsed.Recommendation); ok {
			judgment.Recommendation = rec
		}
	}
	if parsed.Reasoning != nil {
		judgment.Reasoning = strings.TrimSpace(*parsed.Reasoning)
	}

	return judgment, nil
}

// extractJSON returns the JSON payload embedded in text, or "".
func extractJSON(text string) string {
	// Fenced block first: ```json ... ``` or plain ``` ... ```.
	for _, fence := range []string{"```json", "```"} {
		start := strings.Index(text, fence)
		if start < 0 {
			continue
		}
		rest := text[start+len(fence):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		candidate := strings.TrimSpace(rest[:end])
		if strings.HasPrefix(candidate, "{") {
			return candidate
		}
	}

	// Fall back to the first balanced top-level object, respecting
	// strings so braces inside values do not break the scan.
	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func normalizeRiskLevel(s string) (domain.RiskLevel, bool) {
	switch domain.RiskLevel(strings.ToLower(strings.TrimSpace(s))) {
	case domain.RiskLevelSafe:
		return domain.RiskLevelSafe, true
	case domain.RiskLevelLow:
		return domain.RiskLevelLow, true
	case domain.RiskLevelMedium:
		return domain.RiskLevelMedium, true
	case domain.RiskLevelHigh:
		return domain.RiskLevelHigh, true
	case domain.RiskLevelCritical:
		return domain.RiskLevelCritical, true
	}
	return "", false
}

func normalizeRecommendation(s string) (domain.Recommendation, bool) {
	switch domain.Recommendation(strings.ToUpper(strings.TrimSpace(s))) {
	case domain.RecommendSafe:
		return domain.RecommendSafe, true
	case domain.RecommendAcceptable:
		return domain.RecommendAcceptable, true
	case domain.RecommendCaution:
		return domain.RecommendCaution, true
	case domain.RecommendAvoid:
		return domain.RecommendAvoid, true
	case domain.RecommendExtremeDanger:
		return domain.RecommendExtremeDanger, true
	}
	return "", false
}

func clampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
