package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

type cacheEntry struct {
	data     map[string]interface{}
	loadedAt time.Time
}

// CachedData wraps a DataLoader with a per-reference TTL cache.
// A zero TTL disables caching; every Load goes to the loader.
type CachedData struct {
	loader DataLoader
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCachedData creates a new data cache
func NewCachedData(loader DataLoader, ttl time.Duration, logger *zap.Logger) *CachedData {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedData{
		loader:  loader,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// LoadData returns the cached context for ref while it is fresh, loading it
// otherwise
func (c *CachedData) LoadData(ctx context.Context, ref string) (map[string]interface{}, error) {
	if c.ttl > 0 {
		c.mu.Lock()
		entry, ok := c.entries[ref]
		c.mu.Unlock()

		if ok && c.now().Sub(entry.loadedAt) < c.ttl {
			c.logger.Debug("data cache hit", zap.String("ref", ref))
			return entry.data, nil
		}
	}
	return c.Refresh(ctx, ref)
}

// Refresh reloads ref regardless of its age. A failed reload keeps the
// previous entry.
func (c *CachedData) Refresh(ctx context.Context, ref string) (map[string]interface{}, error) {
	data, err := c.loader.LoadData(ctx, ref)
	if err != nil {
		return nil, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.entries[ref] = cacheEntry{data: data, loadedAt: c.now()}
		c.mu.Unlock()
	}

	c.logger.Debug("data loaded", zap.String("ref", ref), zap.Bool("cached", c.ttl > 0))
	return data, nil
}

// Invalidate drops ref from the cache
func (c *CachedData) Invalidate(ref string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ref)
}

// Watch refreshes ref every interval and hands each result to fn until ctx is
// done. Failed refreshes are passed to fn as well; watching continues.
func (c *CachedData) Watch(ctx context.Context, ref string, interval time.Duration, fn func(map[string]interface{}, error)) error {
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Debug("watching data source",
		zap.String("ref", ref),
		zap.Duration("interval", interval),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			data, err := c.Refresh(ctx, ref)
			if err != nil {
				c.logger.Warn("data refresh failed", zap.String("ref", ref), zap.Error(err))
			}
			fn(data, err)
		}
	}
}
