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
	"solana-token-sentinel/internal/domain"
)

// DefaultRugCheckEndpoint is the public token-report API.
const DefaultRugCheckEndpoint = "https://api.rugcheck.xyz/v1"

// RugCheckTimeout bounds one scan.
const RugCheckTimeout = 5 * time.Second

// honeypotRiskNames are RugCheck risk names that indicate sellers are
// blocked or taxed into losses.
var honeypotRiskNames = []string{
	"honeypot",
	"freeze authority",
	"transfer fee",
}

// RugCheckSource scans a token's on-chain risk profile via RugCheck.
type RugCheckSource struct {
	endpoint string
	client   *http.Client
}

// RugCheckOption configures RugCheckSource.
type RugCheckOption func(*RugCheckSource)

// WithRugCheckEndpoint overrides the API endpoint.
func WithRugCheckEndpoint(endpoint string) RugCheckOption {
	return func(s *RugCheckSource) {
		s.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithRugCheckHTTPClient sets a custom http.Client.
func WithRugCheckHTTPClient(client *http.Client) RugCheckOption {
	return func(s *RugCheckSource) {
		s.client = client
	}
}

// NewRugCheckSource creates a RugCheck security source.
func NewRugCheckSource(opts ...RugCheckOption) *RugCheckSource {
	s := &RugCheckSource{
		endpoint: DefaultRugCheckEndpoint,
		client:   &http.Client{Timeout: RugCheckTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile-time interface check.
var _ collector.SecuritySource = (*RugCheckSource)(nil)

// Name identifies the provider for provenance and logging.
func (s *RugCheckSource) Name() string { return "rugcheck" }

// Scan returns the security report for a mint. Unknown tokens yield
// (nil, nil).
func (s *RugCheckSource) Scan(ctx context.Context, mint string) (*domain.SecurityReport, error) {
	url := s.endpoint + "/tokens/" + mint + "/report/summary"

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

	var payload rugCheckReport
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return buildSecurityReport(&payload), nil
}

// buildSecurityReport maps the provider's risk list onto our report.
func buildSecurityReport(payload *rugCheckReport) *domain.SecurityReport {
	report := &domain.SecurityReport{
		ScorePenalty: payload.Score,
	}

	var honeypotRisks []string
	maxHoneypotScore := 0

	for _, risk := range payload.Risks {
		report.Risks = append(report.Risks, domain.RiskFinding{
			Name:        risk.Name,
			Severity:    normalizeSeverity(risk.Level),
			Description: risk.Description,
		})

		lower := strings.ToLower(risk.Name)

		for _, needle := range honeypotRiskNames {
			if strings.Contains(lower, needle) {
				honeypotRisks = append(honeypotRisks, risk.Name)
				if risk.Score > maxHoneypotScore {
					maxHoneypotScore = risk.Score
				}
				break
			}
		}

		if strings.Contains(lower, "mint authority") {
			report.MintAuthority.Present = true
			report.MintAuthority.Warning = risk.Description
			if normalizeSeverity(risk.Level) == "danger" {
				report.MintAuthority.Malicious = true
			}
		}
	}

	if len(honeypotRisks) > 0 {
		report.Honeypot = domain.HoneypotCheck{
			Detected:   true,
			Confidence: honeypotConfidence(maxHoneypotScore),
			Risks:      honeypotRisks,
		}
	}

	return report
}

// honeypotConfidence maps the provider's per-risk score (observed range
// roughly 0-20000) to a 0-100 confidence.
func honeypotConfidence(score int) int {
	conf := score / 100
	if conf > 100 {
		conf = 100
	}
	if conf < 50 {
		// A named honeypot risk is never low confidence.
		conf = 50
	}
	return conf
}

// normalizeSeverity maps provider levels to info | warn | danger.
func normalizeSeverity(level string) string {
	switch strings.ToLower(level) {
	case "danger", "critical", "high":
		return "danger"
	case "warn", "warning", "medium":
		return "warn"
	default:
		return "info"
	}
}

// rugCheckReport is the raw API response for the report summary endpoint.
type rugCheckReport struct {
	Score int `json:"score"`
	Risks []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Level       string `json:"level"`
		Score       int    `json:"score"`
	} `json:"risks"`
}
