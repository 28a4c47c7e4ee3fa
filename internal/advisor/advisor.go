// Package advisor provides the AI risk interpreter: a best-effort
// qualitative judgment layered on top of the deterministic score.
// The generative model is treated as an untrusted, possibly-malformed,
// possibly-absent oracle; every failure degrades to "no judgment"
// rather than failing the evaluation.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/observability"
)

// ErrUnavailable is returned when no judgment can be produced
// (missing credential, transport failure, unparsable output).
var ErrUnavailable = errors.New("ai judgment unavailable")

// QualitativeRiskSource produces an optional qualitative judgment for a
// token. Implementations must treat absence as a valid state: callers
// continue with the deterministic verdict when Judge fails.
type QualitativeRiskSource interface {
	// Judge returns a qualitative assessment of the bundle given the
	// deterministic score. Returns ErrUnavailable (possibly wrapped)
	// when no usable judgment exists.
	Judge(ctx context.Context, bundle *domain.SignalBundle, score domain.ScoreResult) (*domain.AIJudgment, error)
}

// Sampling defaults. Low temperature: this is a safety judgment,
// not creative text.
const (
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 1024
)

// CompletionClient is the narrow generative-model contract the
// interpreter consumes.
type CompletionClient interface {
	// Complete sends a prompt and returns the raw model text.
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// CompletionOptions control model sampling.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// Interpreter implements QualitativeRiskSource over a CompletionClient.
type Interpreter struct {
	client CompletionClient
	logger *log.Logger
}

// NewInterpreter creates an Interpreter. client must not be nil; use
// NewNoopSource for environments without a generative-model capability.
func NewInterpreter(client CompletionClient, logger *log.Logger) *Interpreter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Interpreter{client: client, logger: logger}
}

var _ QualitativeRiskSource = (*Interpreter)(nil)

// Judge builds the structured prompt, calls the model with
// determinism-biased sampling and parses the response tolerantly.
func (i *Interpreter) Judge(ctx context.Context, bundle *domain.SignalBundle, score domain.ScoreResult) (*domain.AIJudgment, error) {
	prompt := BuildPrompt(bundle, score)

	start := time.Now()
	raw, err := i.client.Complete(ctx, prompt, CompletionOptions{
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	})
	if err != nil {
		observability.RecordAICall("transport_error", time.Since(start).Seconds())
		i.logger.Printf("ai completion failed for %s: %v", bundle.Mint, err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	judgment, err := ParseJudgment(raw)
	if err != nil {
		observability.RecordAICall("parse_error", time.Since(start).Seconds())
		i.logger.Printf("ai response unparsable for %s: %v", bundle.Mint, err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	observability.RecordAICall("success", time.Since(start).Seconds())
	return judgment, nil
}

// NoopSource is the null implementation for environments without a
// generative-model capability. Judge always reports unavailability.
type NoopSource struct{}

// NewNoopSource creates a NoopSource.
func NewNoopSource() *NoopSource {
	return &NoopSource{}
}

var _ QualitativeRiskSource = (*NoopSource)(nil)

// Judge always returns ErrUnavailable.
func (*NoopSource) Judge(context.Context, *domain.SignalBundle, domain.ScoreResult) (*domain.AIJudgment, error) {
	return nil, ErrUnavailable
}
