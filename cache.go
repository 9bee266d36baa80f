package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"

	"slidestr/internal/cache"
	"slidestr/internal/types"
)

// cacheBackendType records which backend is active, for /metrics
var cacheBackendType = "memory"

// DeckCache stores built slide decks keyed by resolved root event id,
// so refreshes and exports of the same thread skip the network pipeline.
type DeckCache struct {
	backend cache.Backend
	ttl     time.Duration
}

var deckCache *DeckCache

// InitDeckCache selects the cache backend from the environment:
// CACHE_BACKEND=redis with REDIS_URL for Redis, in-memory otherwise.
func InitDeckCache() {
	cfg := cache.DefaultConfig()

	var backend cache.Backend
	if os.Getenv("CACHE_BACKEND") == "redis" {
		redisURL := os.Getenv("REDIS_URL")
		redisCache, err := cache.NewRedisCache(redisURL, "slidestr:")
		if err != nil {
			slog.Warn("redis cache unavailable, falling back to memory", "error", err)
		} else {
			backend = redisCache
			cacheBackendType = "redis"
		}
	}
	if backend == nil {
		backend = cache.NewMemoryCache(cfg.MaxEntries, cfg.CleanupInterval)
	}

	deckCache = &DeckCache{backend: backend, ttl: cfg.DeckTTL}
	slog.Info("deck cache initialized", "backend", cacheBackendType, "ttl", cfg.DeckTTL.String())
}

// deckCacheKey hashes the root id into a fixed-width cache key
func deckCacheKey(rootID string) string {
	return fmt.Sprintf("deck:%016x", xxhash.Sum64String(rootID))
}

// Get returns the cached deck for a root id, if present and fresh
func (c *DeckCache) Get(ctx context.Context, rootID string) ([]types.Slide, bool) {
	data, found, err := c.backend.Get(ctx, deckCacheKey(rootID))
	if err != nil {
		slog.Warn("deck cache get failed", "error", err)
		return nil, false
	}
	if !found {
		cacheMissesTotal.Add(1)
		return nil, false
	}

	var slides []types.Slide
	if err := json.Unmarshal(data, &slides); err != nil {
		slog.Warn("deck cache entry corrupt, dropping", "error", err)
		c.backend.Delete(ctx, deckCacheKey(rootID))
		return nil, false
	}

	cacheHitsTotal.Add(1)
	return slides, true
}

// Set stores a built deck for a root id
func (c *DeckCache) Set(ctx context.Context, rootID string, slides []types.Slide) {
	data, err := json.Marshal(slides)
	if err != nil {
		return
	}
	if err := c.backend.Set(ctx, deckCacheKey(rootID), data, c.ttl); err != nil {
		slog.Warn("deck cache set failed", "error", err)
	}
}
