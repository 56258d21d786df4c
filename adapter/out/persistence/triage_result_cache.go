package persistence

import (
	"context"
	"fmt"
	"time"

	"triage_server/core/domain"
	"triage_server/pkg/cache"

	"github.com/google/uuid"
)

// DefaultResultTTL keeps a cached classification for one hour; after that the
// record counts as stale and the worker re-classifies it.
const DefaultResultTTL = time.Hour

// ResultCache holds recent classification results in Redis so the batch
// worker and the API can skip re-scoring fresh mail. Cache failures are
// reported but callers treat them as misses.
type ResultCache struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewResultCache creates a ResultCache with the given TTL; zero means the
// default one-hour window.
func NewResultCache(redisCache *cache.RedisCache, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &ResultCache{cache: redisCache, ttl: ttl}
}

func resultCacheKey(userID uuid.UUID, emailID string) string {
	return fmt.Sprintf("triage:result:%s:%s", userID.String(), emailID)
}

// Get returns a cached result, or nil on a miss.
func (c *ResultCache) Get(ctx context.Context, userID uuid.UUID, emailID string) (*domain.ClassificationResult, error) {
	var result domain.ClassificationResult
	found, err := c.cache.GetJSON(ctx, resultCacheKey(userID, emailID), &result)
	if err != nil || !found {
		return nil, err
	}
	return &result, nil
}

// Set stores a result under the staleness TTL.
func (c *ResultCache) Set(ctx context.Context, userID uuid.UUID, emailID string, result *domain.ClassificationResult) error {
	return c.cache.SetJSON(ctx, resultCacheKey(userID, emailID), result, c.ttl)
}

// Invalidate drops a cached result, e.g. after a settings change.
func (c *ResultCache) Invalidate(ctx context.Context, userID uuid.UUID, emailID string) error {
	return c.cache.Delete(ctx, resultCacheKey(userID, emailID))
}
