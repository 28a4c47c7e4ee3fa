package memory

import (
	"context"
	"errors"
	"testing"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/storage"
)

func TestEvaluationStore_AppendAndGetByMint(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	rec := &domain.EvaluationRecord{
		Mint:        "mint1",
		Score:       65,
		Tier:        domain.TierCaution,
		EvaluatedAt: 1000,
	}

	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	records, err := store.GetByMint(ctx, "mint1", 10)
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Score != 65 {
		t.Errorf("Score mismatch: got %d, want 65", records[0].Score)
	}
}

func TestEvaluationStore_NewestFirstWithLimit(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	for i, at := range []int64{1000, 2000, 3000} {
		err := store.Append(ctx, &domain.EvaluationRecord{
			Mint:        "mint1",
			Score:       50 + i,
			EvaluatedAt: at,
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	records, err := store.GetByMint(ctx, "mint1", 2)
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].EvaluatedAt != 3000 || records[1].EvaluatedAt != 2000 {
		t.Errorf("Expected newest first, got %d then %d", records[0].EvaluatedAt, records[1].EvaluatedAt)
	}
}

func TestEvaluationStore_EmptyMint(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	records, err := store.GetByMint(ctx, "nonexistent", 10)
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestEvaluationStore_InvalidInput(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	if err := store.Append(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Append(ctx, &domain.EvaluationRecord{Mint: ""}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty mint, got %v", err)
	}
	if _, err := store.GetByMint(ctx, "mint1", 0); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for zero limit, got %v", err)
	}
}
