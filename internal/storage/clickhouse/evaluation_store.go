package clickhouse

import (
	"context"
	"fmt"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/storage"
)

// EvaluationStore implements storage.EvaluationStore using ClickHouse.
// History is append-only; MergeTree does not enforce uniqueness and the
// engine never rewrites rows.
type EvaluationStore struct {
	conn *Conn
}

// NewEvaluationStore creates a new EvaluationStore.
func NewEvaluationStore(conn *Conn) *EvaluationStore {
	return &EvaluationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EvaluationStore = (*EvaluationStore)(nil)

// Append adds one evaluation record.
func (s *EvaluationStore) Append(ctx context.Context, rec *domain.EvaluationRecord) error {
	if rec == nil || rec.Mint == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO evaluations (
			mint, score, tier, recommendation, warning_count, ai_available, volume_24h, evaluated_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		rec.Mint,
		int32(rec.Score),
		string(rec.Tier),
		string(rec.Recommendation),
		uint32(rec.WarningCount),
		rec.AIAvailable,
		rec.Volume24h,
		uint64(rec.EvaluatedAt),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByMint retrieves up to limit records for a mint, newest first.
func (s *EvaluationStore) GetByMint(ctx context.Context, mint string, limit int) ([]*domain.EvaluationRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT mint, score, tier, recommendation, warning_count, ai_available, volume_24h, evaluated_at
		FROM evaluations
		WHERE mint = ?
		ORDER BY evaluated_at DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, mint, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("query evaluations by mint: %w", err)
	}
	defer rows.Close()

	return scanEvaluations(rows)
}

// chRows abstracts driver.Rows for scanning helpers.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanEvaluations scans multiple rows.
func scanEvaluations(rows chRows) ([]*domain.EvaluationRecord, error) {
	var records []*domain.EvaluationRecord

	for rows.Next() {
		var rec domain.EvaluationRecord
		var score int32
		var tier, recommendation string
		var warningCount uint32
		var evaluatedAt uint64

		err := rows.Scan(
			&rec.Mint, &score, &tier, &recommendation,
			&warningCount, &rec.AIAvailable, &rec.Volume24h, &evaluatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation row: %w", err)
		}

		rec.Score = int(score)
		rec.Tier = domain.RiskTier(tier)
		rec.Recommendation = domain.Recommendation(recommendation)
		rec.WarningCount = int(warningCount)
		rec.EvaluatedAt = int64(evaluatedAt)
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluation rows: %w", err)
	}

	return records, nil
}
