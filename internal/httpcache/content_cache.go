package httpcache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/librovore/librovore/internal/domain"
)

// ContentPayload is the cached value shape for a retrieved resource.
type ContentPayload struct {
	Bytes       []byte
	ContentType string
}

// unboundedCapacity is large enough that the underlying LRU never evicts
// by entry count; ContentCache enforces its own byte-size budget instead
// (spec §4.1: ContentCache is "bounded by total byte size", not count).
const unboundedCapacity = 1 << 20

// ContentCache caches retrieved bodies keyed by URL, bounded by total
// byte size with LRU eviction (spec §4.1).
type ContentCache struct {
	mu           sync.Mutex
	lru          *lru.Cache[string, domain.CacheEntry[ContentPayload]]
	totalBytes   int
	maxBytes     int
	successTTL   time.Duration
	errorTTL     time.Duration
	networkTTL   time.Duration
}

// NewContentCache builds a ContentCache bounded at maxBytes total.
func NewContentCache(maxBytes int, successTTL, errorTTL, networkTTL time.Duration) *ContentCache {
	if maxBytes <= 0 {
		maxBytes = 32 * 1024 * 1024
	}
	c, err := lru.New[string, domain.CacheEntry[ContentPayload]](unboundedCapacity)
	if err != nil {
		panic(err)
	}
	return &ContentCache{
		lru: c, maxBytes: maxBytes,
		successTTL: successTTL, errorTTL: errorTTL, networkTTL: networkTTL,
	}
}

// Get returns the cached entry for url if present and not expired.
func (c *ContentCache) Get(url string, now time.Time) (domain.CacheEntry[ContentPayload], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lru.Get(url)
	if !ok || entry.Expired(now) {
		return domain.CacheEntry[ContentPayload]{}, false
	}
	return entry, true
}

// PutSuccess stores a retrieved payload, evicting least-recently-used
// entries until the byte-size budget is satisfied.
func (c *ContentCache) PutSuccess(url string, payload ContentPayload, now time.Time) {
	size := len(payload.Bytes)
	c.put(url, domain.CacheEntry[ContentPayload]{
		Result:    domain.CacheEntryResult[ContentPayload]{Value: payload},
		StoredAt:  now,
		TTL:       c.successTTL,
		SizeBytes: size,
	})
}

// PutFailure records a failed retrieve.
func (c *ContentCache) PutFailure(url string, err error, network bool, now time.Time) {
	ttl := c.errorTTL
	if network {
		ttl = c.networkTTL
	}
	c.put(url, domain.CacheEntry[ContentPayload]{
		Result:   domain.CacheEntryResult[ContentPayload]{Err: err, Failure: true},
		StoredAt: now,
		TTL:      ttl,
	})
}

func (c *ContentCache) put(url string, entry domain.CacheEntry[ContentPayload]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.lru.Peek(url); ok {
		c.totalBytes -= old.SizeBytes
	}
	c.lru.Add(url, entry)
	c.totalBytes += entry.SizeBytes

	for c.totalBytes > c.maxBytes {
		_, evicted, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		c.totalBytes -= evicted.SizeBytes
	}
}

// TotalBytes reports the current tracked byte total (test/diagnostic hook).
func (c *ContentCache) TotalBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalBytes
}

// Len reports the current entry count (test/diagnostic hook).
func (c *ContentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
