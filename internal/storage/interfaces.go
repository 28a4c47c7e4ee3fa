package storage

import (
	"context"

	"solana-token-sentinel/internal/domain"
)

// CachedVerdict is a verdict together with its cache timestamp.
// Freshness policy (TTL) belongs to the engine, not the store.
type CachedVerdict struct {
	Verdict   *domain.Verdict
	UpdatedAt int64 // Unix timestamp in milliseconds
}

// VerdictCache provides the short-TTL result cache keyed by mint address.
type VerdictCache interface {
	// Get retrieves the cached verdict for a mint. Returns ErrNotFound
	// if no entry exists.
	Get(ctx context.Context, mint string) (*CachedVerdict, error)

	// Put stores or replaces the cached verdict for a mint.
	Put(ctx context.Context, mint string, v *domain.Verdict, updatedAt int64) error
}

// EvaluationStore provides append-only score history.
type EvaluationStore interface {
	// Append adds one evaluation record.
	Append(ctx context.Context, rec *domain.EvaluationRecord) error

	// GetByMint retrieves up to limit records for a mint, newest first.
	GetByMint(ctx context.Context, mint string, limit int) ([]*domain.EvaluationRecord, error)
}

// WatchlistStore provides access to tracked tokens and their rescore state.
type WatchlistStore interface {
	// Upsert inserts or replaces a watched token keyed by mint.
	Upsert(ctx context.Context, t *domain.WatchedToken) error

	// GetByMint retrieves a watched token. Returns ErrNotFound if not tracked.
	GetByMint(ctx context.Context, mint string) (*domain.WatchedToken, error)

	// GetDue retrieves tokens whose next rescore time is at or before now
	// (ms), excluding dead tokens, ordered by next_due_at ASC.
	GetDue(ctx context.Context, now int64) ([]*domain.WatchedToken, error)

	// MarkDead moves a token to the DEAD band so it is never rescored.
	MarkDead(ctx context.Context, mint string) error
}
