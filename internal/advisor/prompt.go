package advisor

import (
	"fmt"
	"strings"

	"solana-token-sentinel/internal/domain"
)

// BuildPrompt renders the signal bundle and deterministic score into a
// structured natural-language prompt. All numeric facts are embedded,
// large amounts abbreviated with K/M/B suffixes, and the decision
// guidance makes the hard rules explicit so the model cannot talk
// itself out of them.
func BuildPrompt(bundle *domain.SignalBundle, score domain.ScoreResult) string {
	var b strings.Builder

	b.WriteString("You are a blockchain token safety analyst. Assess the following Solana token.\n\n")

	b.WriteString("TOKEN FACTS:\n")
	fmt.Fprintf(&b, "- Mint: %s\n", bundle.Mint)
	fmt.Fprintf(&b, "- Name: %s (%s)\n", orUnknown(bundle.Name), orUnknown(bundle.Symbol))
	fmt.Fprintf(&b, "- Price: %s\n", usdOrUnknown(bundle.PriceUSD))
	fmt.Fprintf(&b, "- Market cap: %s\n", usdOrUnknown(bundle.MarketCap))
	fmt.Fprintf(&b, "- 24h volume: %s\n", usdOrUnknown(bundle.Volume24h))
	if bundle.PriceChange24hPct != nil {
		fmt.Fprintf(&b, "- 24h price change: %.2f%%\n", *bundle.PriceChange24hPct)
	} else {
		b.WriteString("- 24h price change: unknown\n")
	}
	fmt.Fprintf(&b, "- Website: %s\n", orNone(bundle.WebsiteURL))
	fmt.Fprintf(&b, "- Twitter: %s\n", orNone(bundle.TwitterURL))
	if bundle.Rank != nil {
		fmt.Fprintf(&b, "- Popularity rank: #%d\n", *bundle.Rank)
	} else {
		b.WriteString("- Popularity rank: unranked\n")
	}
	if bundle.CirculatingSupply != nil && bundle.TotalSupply != nil {
		fmt.Fprintf(&b, "- Supply: %s circulating of %s total\n",
			abbrev(*bundle.CirculatingSupply), abbrev(*bundle.TotalSupply))
	}

	b.WriteString("\nSECURITY SCAN:\n")
	if sec := bundle.Security; sec != nil {
		fmt.Fprintf(&b, "- Honeypot detected: %t (confidence %d%%)\n", sec.Honeypot.Detected, sec.Honeypot.Confidence)
		for _, r := range sec.Honeypot.Risks {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
		fmt.Fprintf(&b, "- Mint authority present: %t, malicious: %t\n", sec.MintAuthority.Present, sec.MintAuthority.Malicious)
		if sec.MintAuthority.Warning != "" {
			fmt.Fprintf(&b, "  - %s\n", sec.MintAuthority.Warning)
		}
		for _, r := range sec.Risks {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", r.Severity, r.Name, r.Description)
		}
	} else {
		b.WriteString("- not available\n")
	}

	fmt.Fprintf(&b, "\nDETERMINISTIC SCORE: %d/100 (tier %s)\n", score.Score, score.Tier())
	if len(score.Warnings) > 0 {
		b.WriteString("WARNINGS:\n")
		for _, w := range score.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	b.WriteString(`
DECISION GUIDANCE (non-negotiable):
- A detected honeypot with confidence above 70% forces risk_level=critical and recommendation=EXTREME_DANGER.
- A malicious mint authority forces risk_level of at least high.
- Unknown market cap plus zero volume is a strong rug-pull indicator.
- Never report a risk_level better than the deterministic tier suggests.

Respond with ONLY a JSON object in this exact schema:
{
  "risk_level": "safe|low|medium|high|critical",
  "confidence": 0-100,
  "primary_concern": "one sentence",
  "detected_patterns": ["pattern", ...],
  "key_findings": ["finding", ...],
  "recommendation": "SAFE|ACCEPTABLE|CAUTION|AVOID|EXTREME_DANGER",
  "reasoning": "2-3 sentences"
}
`)

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func usdOrUnknown(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return domain.FormatUSD(*v)
}

// abbrev formats a plain count with K/M/B suffixes.
func abbrev(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
