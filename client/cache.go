package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Producer performs the actual transport work for one cache key. The
// context it receives belongs to the shared in-flight call, not to any
// single caller: it is cancelled only when every waiter has walked away.
type Producer func(ctx context.Context) ([]byte, error)

type cacheEntry struct {
	payload  []byte
	storedAt time.Time
	ttl      time.Duration
}

// pendingSlot is one shared in-flight call. waiters counts the callers
// blocked on its outcome; payload and err are written once, before done
// is closed, and never touched again.
type pendingSlot struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	waiters int
	payload []byte
	err     error
}

// Cache coalesces identical in-flight calls and keeps their results for
// a per-call TTL. It also retains the last good payload per key past
// expiry, so callers can fall back to stale data when the network is
// down. All methods are safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	stale   map[string][]byte
	pending map[string]*pendingSlot

	now func() time.Time
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		stale:   make(map[string][]byte),
		pending: make(map[string]*pendingSlot),
		now:     time.Now,
	}
}

// Get returns the cached payload for key if present and fresh. An entry
// whose age has reached its TTL exactly is already expired; it is evicted
// on the spot so every caller sees the same boundary.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= e.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.payload, true
}

// Set stores payload under key for ttl and records it as the last good
// payload for fallback.
func (c *Cache) Set(key string, payload []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{payload: payload, storedAt: c.now(), ttl: ttl}
	c.stale[key] = payload
}

// Fallback returns the last good payload stored for key, regardless of
// TTL. It only disappears when the key is invalidated or the cache is
// cleared.
func (c *Cache) Fallback(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.stale[key]
	return payload, ok
}

// Invalidate removes every cache entry whose key contains pattern and
// returns how many entries were dropped. Matching fallback payloads are
// dropped too: after a mutation they describe state that no longer exists.
func (c *Cache) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)
			removed++
		}
	}
	for key := range c.stale {
		if strings.Contains(key, pattern) {
			delete(c.stale, key)
		}
	}
	if removed > 0 {
		log.Debug().Str("pattern", pattern).Int("removed", removed).Msg("Cache entries invalidated")
	}
	return removed
}

// Clear drops all entries, fallback payloads, and pending flights. Any
// in-flight producers are cancelled; their waiters receive the resulting
// error.
func (c *Cache) Clear() {
	c.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(c.pending))
	for _, slot := range c.pending {
		cancels = append(cancels, slot.cancel)
	}
	c.entries = make(map[string]cacheEntry)
	c.stale = make(map[string][]byte)
	c.pending = make(map[string]*pendingSlot)
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Len reports the number of entries currently held, fresh or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Do returns the payload for key, producing it at most once no matter how
// many callers arrive concurrently. A fresh cached payload short-circuits
// the call entirely when cacheable is true. Otherwise the caller joins the
// in-flight call for key, or starts one.
//
// Each caller waits under its own ctx: cancelling it abandons only that
// caller. The shared producer keeps running for the remaining waiters and
// is aborted only when the last one leaves, in which case nothing is
// cached and the next identical call performs a fresh transport call.
func (c *Cache) Do(ctx context.Context, key string, ttl time.Duration, cacheable bool, producer Producer) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cacheable {
		if payload, ok := c.Get(key); ok {
			log.Debug().Str("key", key).Msg("Cache hit")
			return payload, nil
		}
	}

	c.mu.Lock()
	slot, ok := c.pending[key]
	if !ok {
		prodCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		slot = &pendingSlot{ctx: prodCtx, cancel: cancel, done: make(chan struct{})}
		c.pending[key] = slot
		go c.runFlight(key, slot, ttl, cacheable, producer)
	}
	slot.waiters++
	c.mu.Unlock()

	select {
	case <-slot.done:
		c.release(key, slot)
		if slot.err != nil {
			return nil, slot.err
		}
		return slot.payload, nil
	case <-ctx.Done():
		c.release(key, slot)
		return nil, ctx.Err()
	}
}

// runFlight executes the producer for one slot and broadcasts the outcome.
// The cache is populated only on success, only for cacheable calls, and
// only if at least one waiter is still interested in the result.
func (c *Cache) runFlight(key string, slot *pendingSlot, ttl time.Duration, cacheable bool, producer Producer) {
	payload, err := producer(slot.ctx)

	c.mu.Lock()
	abandoned := slot.waiters == 0
	if c.pending[key] == slot {
		delete(c.pending, key)
	}
	slot.payload, slot.err = payload, err
	c.mu.Unlock()

	slot.cancel()
	if err == nil && cacheable && !abandoned {
		c.Set(key, payload, ttl)
	}
	close(slot.done)
}

// release drops one waiter from slot. The last waiter to abandon a
// still-pending flight cancels its producer.
func (c *Cache) release(key string, slot *pendingSlot) {
	c.mu.Lock()
	slot.waiters--
	last := slot.waiters == 0 && c.pending[key] == slot
	if last {
		delete(c.pending, key)
	}
	c.mu.Unlock()

	if last {
		slot.cancel()
	}
}
