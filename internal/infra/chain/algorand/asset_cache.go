package algorand

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/algowatch/internal/core/domain"
)

// AssetFetcher loads asset parameters from the backend.
type AssetFetcher func(ctx context.Context, id uint64) (*domain.Asset, error)

// AssetCache caches asset parameters to avoid a lookup per history row.
// Asset decimals and unit names practically never change, so entries only
// expire to pick up renames eventually.
type AssetCache struct {
	fetch AssetFetcher
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[uint64]assetEntry
}

type assetEntry struct {
	asset    domain.Asset
	cachedAt time.Time
}

// NewAssetCache creates a new asset cache with the given TTL.
func NewAssetCache(fetch AssetFetcher, ttl time.Duration) *AssetCache {
	return &AssetCache{
		fetch:   fetch,
		ttl:     ttl,
		entries: make(map[uint64]assetEntry),
	}
}

// Get returns the cached asset if within TTL, otherwise fetches fresh.
func (c *AssetCache) Get(ctx context.Context, id uint64) (*domain.Asset, error) {
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	if ok && time.Since(e.cachedAt) < c.ttl {
		asset := e.asset
		return &asset, nil
	}

	asset, err := c.fetch(ctx, id)
	if err != nil {
		if ok {
			// Serve stale data rather than failing a whole history page.
			stale := e.asset
			return &stale, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.entries[id] = assetEntry{asset: *asset, cachedAt: time.Now()}
	c.mu.Unlock()

	return asset, nil
}

// Invalidate drops one entry, forcing the next call to fetch fresh data.
func (c *AssetCache) Invalidate(id uint64) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}
