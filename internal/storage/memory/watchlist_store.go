package memory

import (
	"context"
	"sort"
	"sync"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/storage"
)

// WatchlistStore is an in-memory implementation of storage.WatchlistStore.
type WatchlistStore struct {
	mu     sync.RWMutex
	byMint map[string]*domain.WatchedToken
}

// NewWatchlistStore creates a new in-memory watchlist store.
func NewWatchlistStore() *WatchlistStore {
	return &WatchlistStore{
		byMint: make(map[string]*domain.WatchedToken),
	}
}

// Upsert inserts or replaces a watched token keyed by mint.
func (s *WatchlistStore) Upsert(_ context.Context, t *domain.WatchedToken) error {
	if t == nil || t.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tokenCopy := *t
	if existing, exists := s.byMint[t.Mint]; exists && tokenCopy.CreatedAt == 0 {
		tokenCopy.CreatedAt = existing.CreatedAt
	}
	s.byMint[t.Mint] = &tokenCopy
	return nil
}

// GetByMint retrieves a watched token. Returns ErrNotFound if not tracked.
func (s *WatchlistStore) GetByMint(_ context.Context, mint string) (*domain.WatchedToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.byMint[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}

	tokenCopy := *t
	return &tokenCopy, nil
}

// GetDue retrieves tokens whose next rescore time is at or before now
// (ms), excluding dead tokens, ordered by next_due_at ASC.
func (s *WatchlistStore) GetDue(_ context.Context, now int64) ([]*domain.WatchedToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*domain.WatchedToken
	for _, t := range s.byMint {
		if t.Band == domain.BandDead {
			continue
		}
		if t.NextDueAt > now {
			continue
		}
		tokenCopy := *t
		due = append(due, &tokenCopy)
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].NextDueAt != due[j].NextDueAt {
			return due[i].NextDueAt < due[j].NextDueAt
		}
		return due[i].Mint < due[j].Mint
	})
	return due, nil
}

// MarkDead moves a token to the DEAD band so it is never rescored.
func (s *WatchlistStore) MarkDead(_ context.Context, mint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.byMint[mint]
	if !exists {
		return storage.ErrNotFound
	}

	t.Band = domain.BandDead
	return nil
}

var _ storage.WatchlistStore = (*WatchlistStore)(nil)
