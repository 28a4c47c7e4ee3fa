package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"valid mint", "So11111111111111111111111111111111111111112", false},
		{"valid 32-char", strings.Repeat("a", 32), false},
		{"valid 44-char", strings.Repeat("a", 44), false},
		{"too short", strings.Repeat("a", 31), true},
		{"too long", strings.Repeat("a", 45), true},
		{"empty", "", true},
		{"contains zero", "0o11111111111111111111111111111111111111112", true},
		{"contains capital O", "SO11111111111111111111111111111111111111O12", true},
		{"contains capital I", "II11111111111111111111111111111111111111112", true},
		{"contains lowercase l", "ll11111111111111111111111111111111111111112", true},
		{"contains plus", "So1111111111111111111111111111111111111111+2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.addr)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateAddress(%q) = nil, want error", tt.addr)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateAddress(%q) = %v, want nil", tt.addr, err)
			}
			if tt.wantErr && err != nil && !errors.Is(err, ErrInvalidAddress) {
				t.Errorf("error %v is not ErrInvalidAddress", err)
			}
		})
	}
}

func TestValidateAddressStrict_OffCurve(t *testing.T) {
	// Wrapped SOL mint is a valid base58 key; strict validation additionally
	// requires an on-curve point, so it must at least pass the format stage.
	if err := ValidateAddress("So11111111111111111111111111111111111111112"); err != nil {
		t.Fatalf("format validation failed: %v", err)
	}

	// Short base58 payloads decode to fewer than 32 bytes and must be rejected.
	err := ValidateAddressStrict(strings.Repeat("a", 32))
	if !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress for short payload, got %v", err)
	}
}

func TestRecommendationSeverity(t *testing.T) {
	order := []Recommendation{RecommendSafe, RecommendCaution, RecommendAvoid, RecommendExtremeDanger}
	for i := 1; i < len(order); i++ {
		if order[i].Severity() <= order[i-1].Severity() {
			t.Errorf("%s should be more severe than %s", order[i], order[i-1])
		}
	}

	if RecommendAcceptable.Severity() != RecommendCaution.Severity() {
		t.Errorf("ACCEPTABLE and CAUTION should share a severity band")
	}

	// Garbage from the AI must never rank as fully safe.
	if Recommendation("YOLO").Severity() <= RecommendSafe.Severity() {
		t.Errorf("unknown recommendation must rank above SAFE")
	}
}

func TestTierForScore(t *testing.T) {
	tests := []struct {
		score int
		want  RiskTier
	}{
		{100, TierSafe},
		{80, TierSafe},
		{79, TierCaution},
		{60, TierCaution},
		{59, TierDanger},
		{40, TierDanger},
		{39, TierExtremeDanger},
		{0, TierExtremeDanger},
	}
	for _, tt := range tests {
		if got := TierForScore(tt.score); got != tt.want {
			t.Errorf("TierForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
