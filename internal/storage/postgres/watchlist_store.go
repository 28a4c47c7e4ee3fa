package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/storage"
)

// WatchlistStore implements storage.WatchlistStore using PostgreSQL.
type WatchlistStore struct {
	pool *Pool
}

// NewWatchlistStore creates a new WatchlistStore.
func NewWatchlistStore(pool *Pool) *WatchlistStore {
	return &WatchlistStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WatchlistStore = (*WatchlistStore)(nil)

// Upsert inserts or replaces a watched token keyed by mint.
func (s *WatchlistStore) Upsert(ctx context.Context, t *domain.WatchedToken) error {
	if t == nil || t.Mint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO watchlist (
			mint, label, band, last_score, last_volume, last_scored_at,
			next_due_at, zero_vol_since, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (mint) DO UPDATE SET
			label = EXCLUDED.label,
			band = EXCLUDED.band,
			last_score = EXCLUDED.last_score,
			last_volume = EXCLUDED.last_volume,
			last_scored_at = EXCLUDED.last_scored_at,
			next_due_at = EXCLUDED.next_due_at,
			zero_vol_since = EXCLUDED.zero_vol_since
	`

	_, err := s.pool.Exec(ctx, query,
		t.Mint,
		t.Label,
		string(t.Band),
		t.LastScore,
		t.LastVolume,
		t.LastScoredAt,
		t.NextDueAt,
		t.ZeroVolSince,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert watched token: %w", err)
	}
	return nil
}

// GetByMint retrieves a watched token. Returns ErrNotFound if not tracked.
func (s *WatchlistStore) GetByMint(ctx context.Context, mint string) (*domain.WatchedToken, error) {
	query := `
		SELECT mint, label, band, last_score, last_volume, last_scored_at,
		       next_due_at, zero_vol_since, created_at
		FROM watchlist
		WHERE mint = $1
	`

	row := s.pool.QueryRow(ctx, query, mint)
	t, err := scanWatchedToken(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get watched token by mint: %w", err)
	}
	return t, nil
}

// GetDue retrieves tokens whose next rescore time is at or before now
// (ms), excluding dead tokens, ordered by next_due_at ASC.
func (s *WatchlistStore) GetDue(ctx context.Context, now int64) ([]*domain.WatchedToken, error) {
	query := `
		SELECT mint, label, band, last_score, last_volume, last_scored_at,
		       next_due_at, zero_vol_since, created_at
		FROM watchlist
		WHERE next_due_at <= $1 AND band != $2
		ORDER BY next_due_at ASC, mint ASC
	`

	rows, err := s.pool.Query(ctx, query, now, string(domain.BandDead))
	if err != nil {
		return nil, fmt.Errorf("get due watched tokens: %w", err)
	}
	defer rows.Close()

	return scanWatchedTokens(rows)
}

// MarkDead moves a token to the DEAD band so it is never rescored.
func (s *WatchlistStore) MarkDead(ctx context.Context, mint string) error {
	query := `
		UPDATE watchlist
		SET band = $2
		WHERE mint = $1
	`

	tag, err := s.pool.Exec(ctx, query, mint, string(domain.BandDead))
	if err != nil {
		return fmt.Errorf("mark watched token dead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanWatchedToken scans a single row into a WatchedToken.
func scanWatchedToken(row pgx.Row) (*domain.WatchedToken, error) {
	var t domain.WatchedToken
	var bandStr string

	err := row.Scan(
		&t.Mint,
		&t.Label,
		&bandStr,
		&t.LastScore,
		&t.LastVolume,
		&t.LastScoredAt,
		&t.NextDueAt,
		&t.ZeroVolSince,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Band = domain.RescoreBand(bandStr)
	return &t, nil
}

// scanWatchedTokens scans multiple rows into a slice of WatchedToken.
func scanWatchedTokens(rows pgx.Rows) ([]*domain.WatchedToken, error) {
	var tokens []*domain.WatchedToken

	for rows.Next() {
		var t domain.WatchedToken
		var bandStr string

		err := rows.Scan(
			&t.Mint,
			&t.Label,
			&bandStr,
			&t.LastScore,
			&t.LastVolume,
			&t.LastScoredAt,
			&t.NextDueAt,
			&t.ZeroVolSince,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan watchlist row: %w", err)
		}

		t.Band = domain.RescoreBand(bandStr)
		tokens = append(tokens, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist rows: %w", err)
	}

	return tokens, nil
}
