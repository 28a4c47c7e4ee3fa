// Package engine orchestrates one token evaluation end to end: cache
// lookup, signal collection, deterministic scoring, optional AI
// enrichment, reconciliation, and persistence. It owns the latency
// budget; every downstream stage inherits its deadline from here.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"solana-token-sentinel/internal/advisor"
	"solana-token-sentinel/internal/collector"
	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/observability"
	"solana-token-sentinel/internal/reconcile"
	"solana-token-sentinel/internal/scoring"
	"solana-token-sentinel/internal/storage"
)

// Default configuration values.
const (
	// DefaultBudget bounds one evaluation end to end.
	DefaultBudget = 4500 * time.Millisecond

	// DefaultCacheTTL is how long a cached verdict stays fresh.
	DefaultCacheTTL = 10 * time.Minute

	// DefaultAIMinRemaining is the minimum budget that must remain for
	// the AI interpreter to be attempted at all.
	DefaultAIMinRemaining = 1500 * time.Millisecond
)

// Publisher receives every fresh verdict, e.g. for a realtime feed.
type Publisher interface {
	Publish(v *domain.Verdict)
}

// Options configures an Engine. Collector is required; everything else
// degrades gracefully when absent.
type Options struct {
	Collector *collector.Collector
	Scorer    *scoring.Scorer

	// Advisor is the optional AI risk interpreter. Nil disables
	// enrichment entirely.
	Advisor advisor.QualitativeRiskSource

	// Cache is the short-TTL verdict cache. Nil disables caching.
	Cache storage.VerdictCache

	// History receives one append-only record per evaluation. Nil
	// disables history.
	History storage.EvaluationStore

	// Publisher receives every fresh verdict. Nil disables publishing.
	Publisher Publisher

	Budget         time.Duration
	CacheTTL       time.Duration
	AIMinRemaining time.Duration

	// StrictValidation additionally requires the mint to decode to a
	// 32-byte on-curve ed25519 point.
	StrictValidation bool

	Logger *log.Logger
}

// Engine evaluates tokens.
type Engine struct {
	collector *collector.Collector
	scorer    *scoring.Scorer
	advisor   advisor.QualitativeRiskSource
	cache     storage.VerdictCache
	history   storage.EvaluationStore
	publisher Publisher

	budget         time.Duration
	cacheTTL       time.Duration
	aiMinRemaining time.Duration
	strict         bool

	logger *log.Logger
	now    func() time.Time
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Collector == nil {
		return nil, fmt.Errorf("collector is required")
	}

	scorer := opts.Scorer
	if scorer == nil {
		scorer = scoring.NewScorer()
	}

	budget := opts.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	aiMinRemaining := opts.AIMinRemaining
	if aiMinRemaining <= 0 {
		aiMinRemaining = DefaultAIMinRemaining
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Engine{
		collector:      opts.Collector,
		scorer:         scorer,
		advisor:        opts.Advisor,
		cache:          opts.Cache,
		history:        opts.History,
		publisher:      opts.Publisher,
		budget:         budget,
		cacheTTL:       cacheTTL,
		aiMinRemaining: aiMinRemaining,
		strict:         opts.StrictValidation,
		logger:         logger,
		now:            time.Now,
	}, nil
}

// EvaluateOptions modify one evaluation.
type EvaluateOptions struct {
	// Refresh bypasses the cache read. The fresh verdict still replaces
	// the cached entry.
	Refresh bool
}

// Evaluate produces a verdict for one mint address.
//
// The only error condition is an invalid address; provider failures, AI
// unavailability and storage trouble all degrade into a verdict built
// from whatever signals were available.
func (e *Engine) Evaluate(ctx context.Context, mint string, opts EvaluateOptions) (*domain.Verdict, error) {
	if err := e.validate(mint); err != nil {
		return nil, err
	}

	if e.cache != nil && !opts.Refresh {
		if v := e.cachedVerdict(ctx, mint); v != nil {
			return v, nil
		}
	}

	start := e.now()
	ctx, cancel := context.WithDeadline(ctx, start.Add(e.budget))
	defer cancel()

	bundle := e.collector.Collect(ctx, mint)
	score := e.scorer.Score(bundle)

	ai := e.judge(ctx, bundle, score)

	verdict := reconcile.Reconcile(bundle, score, ai)
	verdict.EvaluatedAt = start.UnixMilli()
	verdict.ElapsedMs = e.now().Sub(start).Milliseconds()

	if verdict.HoneypotOverride {
		observability.RecordHoneypotOverride()
	}
	observability.RecordEvaluation(string(verdict.Tier), "ok", e.now().Sub(start).Seconds())

	e.persist(ctx, bundle, verdict)

	if e.publisher != nil {
		e.publisher.Publish(verdict)
	}

	e.logger.Printf("evaluated %s: score=%d tier=%s rec=%s ai=%t elapsed=%dms",
		mint, verdict.Score, verdict.Tier, verdict.Recommendation, ai != nil, verdict.ElapsedMs)

	return verdict, nil
}

func (e *Engine) validate(mint string) error {
	if e.strict {
		return domain.ValidateAddressStrict(mint)
	}
	return domain.ValidateAddress(mint)
}

// cachedVerdict returns a fresh cached verdict or nil. Cache errors are
// logged and treated as misses.
func (e *Engine) cachedVerdict(ctx context.Context, mint string) *domain.Verdict {
	cached, err := e.cache.Get(ctx, mint)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			e.logger.Printf("cache get %s: %v", mint, err)
		}
		observability.RecordCacheMiss()
		return nil
	}

	age := e.now().UnixMilli() - cached.UpdatedAt
	if age > e.cacheTTL.Milliseconds() {
		observability.RecordCacheMiss()
		return nil
	}

	observability.RecordCacheHit()
	v := *cached.Verdict
	v.FromCache = true
	return &v
}

// judge runs the AI interpreter if one is configured and enough of the
// budget remains. Any failure degrades to nil.
func (e *Engine) judge(ctx context.Context, bundle *domain.SignalBundle, score domain.ScoreResult) *domain.AIJudgment {
	if e.advisor == nil {
		return nil
	}

	deadline, ok := ctx.Deadline()
	if ok && time.Until(deadline) < e.aiMinRemaining {
		observability.RecordAISkipped()
		e.logger.Printf("skipping ai enrichment for %s, budget nearly exhausted", bundle.Mint)
		return nil
	}

	judgment, err := e.advisor.Judge(ctx, bundle, score)
	if err != nil {
		if !errors.Is(err, advisor.ErrUnavailable) {
			e.logger.Printf("ai judgment %s: %v", bundle.Mint, err)
		}
		return nil
	}
	return judgment
}

// persist best-effort writes the verdict to the cache and history.
// Storage failures never fail the evaluation.
func (e *Engine) persist(ctx context.Context, bundle *domain.SignalBundle, v *domain.Verdict) {
	if e.cache != nil {
		start := e.now()
		err := e.cache.Put(ctx, v.Mint, v, v.EvaluatedAt)
		observability.RecordDBQuery("postgres", "cache_put", e.now().Sub(start).Seconds(), err)
		if err != nil {
			e.logger.Printf("cache put %s: %v", v.Mint, err)
		}
	}

	if e.history != nil {
		volume := 0.0
		if bundle.Volume24h != nil {
			volume = *bundle.Volume24h
		}
		rec := &domain.EvaluationRecord{
			Mint:           v.Mint,
			Score:          v.Score,
			Tier:           v.Tier,
			Recommendation: v.Recommendation,
			WarningCount:   len(v.Warnings),
			AIAvailable:    v.AI != nil,
			Volume24h:      volume,
			EvaluatedAt:    v.EvaluatedAt,
		}
		start := e.now()
		err := e.history.Append(ctx, rec)
		observability.RecordDBQuery("clickhouse", "history_append", e.now().Sub(start).Seconds(), err)
		if err != nil {
			e.logger.Printf("history append %s: %v", v.Mint, err)
		}
	}
}

// History returns recent evaluation records for a mint, newest first.
// Returns nil when no history store is configured.
func (e *Engine) History(ctx context.Context, mint string, limit int) ([]*domain.EvaluationRecord, error) {
	if e.history == nil {
		return nil, nil
	}
	if err := e.validate(mint); err != nil {
		return nil, err
	}
	return e.history.GetByMint(ctx, mint, limit)
}
