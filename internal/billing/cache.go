package billing

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const invalidationChannel = "billing:entitlement:invalidate"

type cacheEntry struct {
	snap      Snapshot
	found     bool
	expiresAt time.Time
}

// SnapshotCache is a TTL-bounded in-process cache of subscription
// snapshots. The TTL must stay shorter than any trial window; entitlement
// itself is recomputed on every check, only the snapshot row is cached.
// The clock is injected so tests control expiry.
type SnapshotCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

func NewSnapshotCache(ttl time.Duration, now func() time.Time) *SnapshotCache {
	if now == nil {
		now = time.Now
	}
	return &SnapshotCache{
		ttl:     ttl,
		now:     now,
		entries: map[string]cacheEntry{},
	}
}

// Get returns the cached snapshot and whether a row existed for the user.
// The second return mirrors the store's found flag; the third reports a
// cache hit.
func (c *SnapshotCache) Get(userID string) (Snapshot, bool, bool) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return Snapshot{}, false, false
	}
	return entry.snap, entry.found, true
}

// Set caches a store read, including "no row" results.
func (c *SnapshotCache) Set(userID string, snap Snapshot, found bool) {
	c.mu.Lock()
	c.entries[userID] = cacheEntry{
		snap:      snap,
		found:     found,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

func (c *SnapshotCache) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

// ListenInvalidations drops cached entries named on the invalidation
// channel, so a subscription transition applied on one instance evicts
// every instance's cache. Blocks until ctx is done or the channel closes.
func (c *SnapshotCache) ListenInvalidations(ctx context.Context, redisClient *redis.Client) {
	if redisClient == nil {
		return
	}
	pubsub := redisClient.Subscribe(ctx, invalidationChannel)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			c.Invalidate(msg.Payload)
		}
	}
}

func publishInvalidation(ctx context.Context, redisClient *redis.Client, userID string) error {
	if redisClient == nil {
		return nil
	}
	return redisClient.Publish(ctx, invalidationChannel, userID).Err()
}
