package momentum

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/engine"
	"solana-token-sentinel/internal/observability"
	"solana-token-sentinel/internal/storage"
)

// DefaultInterval is how often the scheduler polls for due tokens.
const DefaultInterval = 1 * time.Minute

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Watchlist storage.WatchlistStore
	Engine    *engine.Engine

	// Interval between due-token polls.
	Interval time.Duration

	Logger *log.Logger
}

// Runner rescans the watchlist on a fixed tick and rescores whatever
// is due. Cycles never overlap; a tick that arrives while a cycle is
// running is dropped.
type Runner struct {
	watchlist storage.WatchlistStore
	engine    *engine.Engine
	interval  time.Duration
	logger    *log.Logger

	mu      sync.Mutex
	running bool

	now func() time.Time
}

// NewRunner creates a Runner.
func NewRunner(opts RunnerOptions) *Runner {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{
		watchlist: opts.Watchlist,
		engine:    opts.Engine,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// Run blocks until ctx is cancelled, rescoring due tokens every tick.
func (r *Runner) Run(ctx context.Context) {
	r.logger.Printf("rescore scheduler started, interval=%s", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Printf("rescore scheduler stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick runs one rescore cycle unless one is already in flight.
func (r *Runner) tick(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		r.logger.Printf("rescore cycle still running, skipping tick")
		return
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	r.RunCycle(ctx)
}

// RunCycle rescores every due token once. Exposed for one-shot use and
// tests; Run calls it on each tick.
func (r *Runner) RunCycle(ctx context.Context) {
	now := r.now()

	due, err := r.watchlist.GetDue(ctx, now.UnixMilli())
	if err != nil {
		r.logger.Printf("get due tokens: %v", err)
		observability.RecordRescoreRun("error", 0)
		return
	}
	if len(due) == 0 {
		observability.RecordRescoreRun("ok", 0)
		return
	}

	r.logger.Printf("rescoring %d due tokens", len(due))

	for _, token := range due {
		if ctx.Err() != nil {
			return
		}
		r.rescore(ctx, token)
	}

	observability.RecordRescoreRun("ok", len(due))
}

func (r *Runner) rescore(ctx context.Context, token *domain.WatchedToken) {
	verdict, err := r.engine.Evaluate(ctx, token.Mint, engine.EvaluateOptions{Refresh: true})
	if err != nil {
		r.logger.Printf("rescore %s: %v", token.Mint, err)
		return
	}

	volume := 0.0
	if verdict.Volume24h != nil {
		volume = *verdict.Volume24h
	}

	outcome := Reschedule(token, verdict.Score, volume, r.now())

	if outcome.Dead {
		if err := r.watchlist.MarkDead(ctx, token.Mint); err != nil {
			r.logger.Printf("mark dead %s: %v", token.Mint, err)
			return
		}
		observability.DefaultMetrics.TokensMarkedDead.Inc()
		r.logger.Printf("token %s marked dead after %s of no trading", token.Mint, DeadAfter)
		return
	}

	if outcome.Promoted {
		observability.DefaultMetrics.MomentumPromotion.Inc()
		r.logger.Printf("token %s promoted to fast cadence, score %d -> %d",
			token.Mint, token.LastScore, verdict.Score)
	}

	if err := r.watchlist.Upsert(ctx, outcome.Token); err != nil {
		r.logger.Printf("update watchlist %s: %v", token.Mint, err)
	}
}

// Track adds a token to the watchlist for scheduled rescoring, due
// immediately.
func (r *Runner) Track(ctx context.Context, mint, label string) error {
	nowMs := r.now().UnixMilli()
	return r.watchlist.Upsert(ctx, &domain.WatchedToken{
		Mint:      mint,
		Label:     label,
		Band:      domain.BandMedium,
		NextDueAt: nowMs,
		CreatedAt: nowMs,
	})
}
