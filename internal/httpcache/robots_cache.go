package httpcache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/librovore/librovore/internal/domain"
	"github.com/temoto/robotstxt"
)

// robotsEntry bundles a parsed robots.txt with the per-origin crawl-delay
// bookkeeping spec §4.1 requires.
type robotsEntry struct {
	data       *robotstxt.RobotData
	lastAccess time.Time
}

// RobotsCache holds one parsed robots.txt per origin (spec §4.1),
// independent from ProbeCache/ContentCache, TTL default 24h.
type RobotsCache struct {
	mu        sync.Mutex
	lru       *lru.Cache[string, domain.CacheEntry[robotsEntry]]
	ttl       time.Duration
	userAgent string
}

// NewRobotsCache builds a RobotsCache bounded at maxEntries origins.
func NewRobotsCache(maxEntries int, ttl time.Duration, userAgent string) *RobotsCache {
	if maxEntries <= 0 {
		maxEntries = 500
	}
	c, err := lru.New[string, domain.CacheEntry[robotsEntry]](maxEntries)
	if err != nil {
		panic(err)
	}
	return &RobotsCache{lru: c, ttl: ttl, userAgent: userAgent}
}

// lookup returns the cached parsed robots data for origin, if fresh.
func (c *RobotsCache) lookup(origin string, now time.Time) (robotsEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lru.Get(origin)
	if !ok || entry.Expired(now) || entry.Result.Failure {
		return robotsEntry{}, false
	}
	return entry.Result.Value, true
}

// store caches parsed robots data (or a parse failure, treated as
// allow-all per robotstxt convention) for origin.
func (c *RobotsCache) store(origin string, data *robotstxt.RobotData, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(origin, domain.CacheEntry[robotsEntry]{
		Result:   domain.CacheEntryResult[robotsEntry]{Value: robotsEntry{data: data, lastAccess: now}},
		StoredAt: now,
		TTL:      c.ttl,
	})
}

// touch updates lastAccess for crawl-delay tracking without disturbing
// the entry's original StoredAt/TTL.
func (c *RobotsCache) touch(origin string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lru.Get(origin)
	if !ok {
		return
	}
	entry.Result.Value.lastAccess = now
	c.lru.Add(origin, entry)
}
