package reconcile

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader fetches raw reference identifiers from the catalog.
type Loader func(ctx context.Context) ([]string, error)

// ReferenceCache holds a built reference set and its expiry.
type ReferenceCache struct {
	// Set is the reference set.
	Set *ReferenceSet

	// Built is the timestamp when this cache was built.
	Built time.Time

	// TTL is the time-to-live for this cache.
	TTL time.Duration
}

// IsExpired returns true if this cache has expired based on its TTL.
func (c *ReferenceCache) IsExpired() bool {
	if c.TTL == 0 {
		return true // No caching
	}
	return time.Since(c.Built) > c.TTL
}

// cacheStore holds all reference caches keyed by source and fold mode.
type cacheStore struct {
	mu     sync.RWMutex
	caches map[string]*ReferenceCache
	sf     singleflight.Group
}

var globalCacheStore = &cacheStore{
	caches: make(map[string]*ReferenceCache),
}

func cacheKey(source string, caseInsensitive bool) string {
	return source + "|" + strconv.FormatBool(caseInsensitive)
}

// BuildReferences loads identifiers and builds a reference set without caching it.
func BuildReferences(ctx context.Context, caseInsensitive bool, load Loader) (*ReferenceSet, error) {
	ids, err := load(ctx)
	if err != nil {
		return nil, err
	}
	return NewReferenceSet(ids, caseInsensitive), nil
}

// GetOrBuildReferences returns the cached reference set for source, or loads
// a new one when missing or expired. Concurrent callers share a single load.
// A zero ttl disables caching.
func GetOrBuildReferences(ctx context.Context, source string, ttl time.Duration, caseInsensitive bool, load Loader) (*ReferenceSet, error) {
	if ttl <= 0 {
		return BuildReferences(ctx, caseInsensitive, load)
	}

	key := cacheKey(source, caseInsensitive)

	// Fast path: check if cache exists and is fresh
	globalCacheStore.mu.RLock()
	cache, exists := globalCacheStore.caches[key]
	globalCacheStore.mu.RUnlock()

	if exists && !cache.IsExpired() {
		return cache.Set, nil
	}

	result, err, _ := globalCacheStore.sf.Do(key, func() (interface{}, error) {
		globalCacheStore.mu.RLock()
		cache, exists := globalCacheStore.caches[key]
		globalCacheStore.mu.RUnlock()

		if exists && !cache.IsExpired() {
			return cache.Set, nil
		}

		set, err := BuildReferences(ctx, caseInsensitive, load)
		if err != nil {
			return nil, err
		}

		globalCacheStore.mu.Lock()
		globalCacheStore.caches[key] = &ReferenceCache{Set: set, Built: time.Now(), TTL: ttl}
		globalCacheStore.mu.Unlock()

		return set, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*ReferenceSet), nil
}

// InvalidateReferences drops both cached fold variants for source.
func InvalidateReferences(source string) {
	globalCacheStore.mu.Lock()
	delete(globalCacheStore.caches, cacheKey(source, false))
	delete(globalCacheStore.caches, cacheKey(source, true))
	globalCacheStore.mu.Unlock()
}
