package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/storage"
)

// VerdictCacheStore implements storage.VerdictCache using PostgreSQL.
// The verdict itself is stored as a jsonb blob; only the mint and the
// cache timestamp are relational, which is all the freshness check and
// the upsert need.
type VerdictCacheStore struct {
	pool *Pool
}

// NewVerdictCacheStore creates a new VerdictCacheStore.
func NewVerdictCacheStore(pool *Pool) *VerdictCacheStore {
	return &VerdictCacheStore{pool: pool}
}

// Compile-time interface check.
var _ storage.VerdictCache = (*VerdictCacheStore)(nil)

// Get retrieves the cached verdict for a mint. Returns ErrNotFound if
// no entry exists.
func (s *VerdictCacheStore) Get(ctx context.Context, mint string) (*storage.CachedVerdict, error) {
	query := `
		SELECT verdict, updated_at
		FROM verdict_cache
		WHERE mint = $1
	`

	var payload []byte
	var updatedAt int64

	err := s.pool.QueryRow(ctx, query, mint).Scan(&payload, &updatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get cached verdict: %w", err)
	}

	var v domain.Verdict
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("decode cached verdict: %w", err)
	}

	return &storage.CachedVerdict{Verdict: &v, UpdatedAt: updatedAt}, nil
}

// Put stores or replaces the cached verdict for a mint.
func (s *VerdictCacheStore) Put(ctx context.Context, mint string, v *domain.Verdict, updatedAt int64) error {
	if mint == "" || v == nil {
		return storage.ErrInvalidInput
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}

	query := `
		INSERT INTO verdict_cache (mint, verdict, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (mint) DO UPDATE
		SET verdict = EXCLUDED.verdict, updated_at = EXCLUDED.updated_at
	`

	_, err = s.pool.Exec(ctx, query, mint, payload, updatedAt)
	if err != nil {
		return fmt.Errorf("put cached verdict: %w", err)
	}
	return nil
}
