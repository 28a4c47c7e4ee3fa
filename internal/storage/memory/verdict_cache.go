package memory

import (
	"context"
	"sync"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/storage"
)

// VerdictCache is an in-memory implementation of storage.VerdictCache.
type VerdictCache struct {
	mu      sync.RWMutex
	entries map[string]*storage.CachedVerdict // keyed by mint
}

// NewVerdictCache creates a new in-memory verdict cache.
func NewVerdictCache() *VerdictCache {
	return &VerdictCache{
		entries: make(map[string]*storage.CachedVerdict),
	}
}

// Get retrieves the cached verdict for a mint. Returns ErrNotFound if
// no entry exists.
func (c *VerdictCache) Get(_ context.Context, mint string) (*storage.CachedVerdict, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}

	verdictCopy := *entry.Verdict
	return &storage.CachedVerdict{Verdict: &verdictCopy, UpdatedAt: entry.UpdatedAt}, nil
}

// Put stores or replaces the cached verdict for a mint.
func (c *VerdictCache) Put(_ context.Context, mint string, v *domain.Verdict, updatedAt int64) error {
	if mint == "" || v == nil {
		return storage.ErrInvalidInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	verdictCopy := *v
	c.entries[mint] = &storage.CachedVerdict{Verdict: &verdictCopy, UpdatedAt: updatedAt}
	return nil
}

var _ storage.VerdictCache = (*VerdictCache)(nil)
