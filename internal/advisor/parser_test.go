package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-sentinel/internal/domain"
)

func TestParseJudgment_FencedBlock(t *testing.T) {
	raw := "Here is my assessment:\n```json\n" +
		`{"risk_level":"high","confidence":85,"primary_concern":"mint authority retained",` +
		`"detected_patterns":["rug_setup"],"key_findings":["authority can mint"],` +
		`"recommendation":"AVOID","reasoning":"Supply can be inflated at will."}` +
		"\n```\nLet me know if you need more detail."

	judgment, err := ParseJudgment(raw)
	require.NoError(t, err)

	assert.Equal(t, domain.RiskLevelHigh, judgment.RiskLevel)
	assert.Equal(t, 85, judgment.Confidence)
	assert.Equal(t, "mint authority retained", judgment.PrimaryConcern)
	assert.Equal(t, []string{"rug_setup"}, judgment.DetectedPatterns)
	assert.Equal(t, domain.RecommendAvoid, judgment.Recommendation)
}

func TestParseJudgment_BareObjectInProse(t *testing.T) {
	raw := `Based on the data {"risk_level":"low","confidence":70,"recommendation":"ACCEPTABLE"} is my conclusion.`

	judgment, err := ParseJudgment(raw)
	require.NoError(t, err)

	assert.Equal(t, domain.RiskLevelLow, judgment.RiskLevel)
	assert.Equal(t, domain.RecommendAcceptable, judgment.Recommendation)
}

func TestParseJudgment_MissingFieldsTakeDefaults(t *testing.T) {
	judgment, err := ParseJudgment(`{"primary_concern":"thin liquidity"}`)
	require.NoError(t, err)

	assert.Equal(t, DefaultRiskLevel, judgment.RiskLevel)
	assert.Equal(t, DefaultConfidence, judgment.Confidence)
	assert.Equal(t, DefaultRecommendation, judgment.Recommendation)
	assert.Equal(t, "thin liquidity", judgment.PrimaryConcern)
	assert.NotNil(t, judgment.DetectedPatterns)
	assert.NotNil(t, judgment.KeyFindings)
	assert.Empty(t, judgment.DetectedPatterns)
}

func TestParseJudgment_GarbledEnumsFallBack(t *testing.T) {
	judgment, err := ParseJudgment(`{"risk_level":"catastrophic","recommendation":"RUN","confidence":250}`)
	require.NoError(t, err)

	assert.Equal(t, DefaultRiskLevel, judgment.RiskLevel)
	assert.Equal(t, DefaultRecommendation, judgment.Recommendation)
	assert.Equal(t, 100, judgment.Confidence, "confidence clamped to 100")
}

func TestParseJudgment_CaseInsensitiveEnums(t *testing.T) {
	judgment, err := ParseJudgment(`{"risk_level":"CRITICAL","recommendation":"extreme_danger"}`)
	require.NoError(t, err)

	assert.Equal(t, domain.RiskLevelCritical, judgment.RiskLevel)
	assert.Equal(t, domain.RecommendExtremeDanger, judgment.Recommendation)
}

func TestParseJudgment_BracesInsideStrings(t *testing.T) {
	judgment, err := ParseJudgment(`{"risk_level":"medium","reasoning":"the pattern {mint -> burn} repeats"}`)
	require.NoError(t, err)

	assert.Equal(t, "the pattern {mint -> burn} repeats", judgment.Reasoning)
}

func TestParseJudgment_NoJSON(t *testing.T) {
	_, err := ParseJudgment("I cannot assess this token, sorry.")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestParseJudgment_MalformedJSON(t *testing.T) {
	_, err := ParseJudgment(`{"risk_level": high}`)
	assert.Error(t, err)
}
