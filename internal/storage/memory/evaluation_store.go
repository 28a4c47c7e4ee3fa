package memory

import (
	"context"
	"sync"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/storage"
)

// EvaluationStore is an in-memory implementation of storage.EvaluationStore.
type EvaluationStore struct {
	mu     sync.RWMutex
	byMint map[string][]*domain.EvaluationRecord // append order per mint
}

// NewEvaluationStore creates a new in-memory evaluation store.
func NewEvaluationStore() *EvaluationStore {
	return &EvaluationStore{
		byMint: make(map[string][]*domain.EvaluationRecord),
	}
}

// Append adds one evaluation record.
func (s *EvaluationStore) Append(_ context.Context, rec *domain.EvaluationRecord) error {
	if rec == nil || rec.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recCopy := *rec
	s.byMint[rec.Mint] = append(s.byMint[rec.Mint], &recCopy)
	return nil
}

// GetByMint retrieves up to limit records for a mint, newest first.
func (s *EvaluationStore) GetByMint(_ context.Context, mint string, limit int) ([]*domain.EvaluationRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.byMint[mint]

	var result []*domain.EvaluationRecord
	for i := len(records) - 1; i >= 0 && len(result) < limit; i-- {
		recCopy := *records[i]
		result = append(result, &recCopy)
	}
	return result, nil
}

var _ storage.EvaluationStore = (*EvaluationStore)(nil)
