package httpcache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/librovore/librovore/internal/domain"
)

// ProbeCache caches existence checks (HEAD/stat) keyed by URL, bounded
// by entry count with LRU eviction (spec §4.1).
type ProbeCache struct {
	mu        sync.Mutex
	lru       *lru.Cache[string, domain.CacheEntry[bool]]
	successTTL time.Duration
	errorTTL   time.Duration
	networkTTL time.Duration
}

// NewProbeCache builds a ProbeCache bounded at maxEntries.
func NewProbeCache(maxEntries int, successTTL, errorTTL, networkTTL time.Duration) *ProbeCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	c, err := lru.New[string, domain.CacheEntry[bool]](maxEntries)
	if err != nil {
		// Only possible if maxEntries <= 0, guarded above.
		panic(err)
	}
	return &ProbeCache{lru: c, successTTL: successTTL, errorTTL: errorTTL, networkTTL: networkTTL}
}

// Get returns the cached entry for url if present and not expired.
func (c *ProbeCache) Get(url string, now time.Time) (domain.CacheEntry[bool], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lru.Get(url)
	if !ok || entry.Expired(now) {
		return domain.CacheEntry[bool]{}, false
	}
	return entry, true
}

// PutSuccess records a successful probe result.
func (c *ProbeCache) PutSuccess(url string, exists bool, now time.Time) {
	c.put(url, domain.CacheEntry[bool]{
		Result:   domain.CacheEntryResult[bool]{Value: exists},
		StoredAt: now,
		TTL:      c.successTTL,
	})
}

// PutFailure records a failed probe, caching the error itself so repeat
// callers within the TTL window don't retrigger a network request
// (retry-storm defense, spec §4.1).
func (c *ProbeCache) PutFailure(url string, err error, network bool, now time.Time) {
	ttl := c.errorTTL
	if network {
		ttl = c.networkTTL
	}
	c.put(url, domain.CacheEntry[bool]{
		Result:   domain.CacheEntryResult[bool]{Err: err, Failure: true},
		StoredAt: now,
		TTL:      ttl,
	})
}

func (c *ProbeCache) put(url string, entry domain.CacheEntry[bool]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(url, entry)
}

// Len reports the current entry count (test/diagnostic hook).
func (c *ProbeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
