package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// pinnedSweepInterval bounds how often expired pinned entries are pruned.
const pinnedSweepInterval = time.Minute

type lruEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e lruEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// LRUCache is an in-process fallback used when no Redis server is configured.
// Values are stored encoded so callers never share mutable state.
//
// Token blacklist entries are pinned: they live outside the LRU and are only
// dropped once their TTL has passed, so a logout cannot be undone by churn.
type LRUCache struct {
	cache *lru.Cache
	now   func() time.Time

	mu        sync.Mutex
	pinned    map[string]lruEntry
	lastSweep time.Time
}

func NewLRUCache(size int) (*LRUCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &LRUCache{
		cache:  c,
		now:    time.Now,
		pinned: make(map[string]lruEntry),
	}, nil
}

func isPinned(key string) bool {
	return strings.HasPrefix(key, tokenBlacklistPrefix)
}

func (l *LRUCache) lookup(key string) (lruEntry, bool) {
	if isPinned(key) {
		l.mu.Lock()
		defer l.mu.Unlock()
		entry, ok := l.pinned[key]
		return entry, ok
	}
	v, ok := l.cache.Get(key)
	if !ok {
		return lruEntry{}, false
	}
	return v.(lruEntry), true
}

func (l *LRUCache) remove(key string) {
	if isPinned(key) {
		l.mu.Lock()
		delete(l.pinned, key)
		l.mu.Unlock()
		return
	}
	l.cache.Remove(key)
}

func (l *LRUCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	entry, ok := l.lookup(key)
	if !ok {
		return false, nil
	}
	if entry.expired(l.now()) {
		l.remove(key)
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (l *LRUCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	now := l.now()
	entry := lruEntry{data: raw}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}

	if !isPinned(key) {
		l.cache.Add(key, entry)
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.pinned[key] = entry
	if now.Sub(l.lastSweep) >= pinnedSweepInterval {
		l.sweepLocked(now)
	}
	return nil
}

// sweepLocked drops expired pinned entries. l.mu must be held.
func (l *LRUCache) sweepLocked(now time.Time) {
	for key, entry := range l.pinned {
		if entry.expired(now) {
			delete(l.pinned, key)
		}
	}
	l.lastSweep = now
}

func (l *LRUCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		l.remove(key)
	}
	return nil
}
