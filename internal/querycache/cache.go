package querycache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	defaultStaleAfter      = 5 * time.Minute
	defaultCleanupInterval = 10 * time.Minute
)

// Cache is the process-wide store of previously fetched server resources,
// keyed by resource type + identifying params. It is constructed once at
// application startup and passed by reference to everything that needs it,
// never held as a package-level singleton.
//
// Values are treated copy-on-write: a speculative edit must install a new
// value rather than mutate the stored one, so a Snapshot taken before the
// edit restores the exact prior state.
type Cache struct {
	store *gocache.Cache

	mu sync.Mutex
	// dependents maps child key -> parent keys whose cached value embeds the
	// child (e.g. coin:17 embeds provenance:17). Invalidating the child also
	// invalidates those parents.
	dependents map[Key]map[Key]struct{}
}

func New(staleAfter time.Duration) *Cache {
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	return &Cache{
		store:      gocache.New(staleAfter, defaultCleanupInterval),
		dependents: map[Key]map[Key]struct{}{},
	}
}

// Get returns the cached value for key. A stale (expired) entry is a miss.
func (c *Cache) Get(key Key) (any, bool) {
	return c.store.Get(string(key))
}

// Set installs value at key, restarting its staleness clock.
func (c *Cache) Set(key Key, value any) {
	c.store.Set(string(key), value, gocache.DefaultExpiration)
}

// DependsOn records that parent's cached value embeds child's, so
// invalidating child must also invalidate parent. Registering twice is a
// no-op.
func (c *Cache) DependsOn(parent, child Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.dependents[child]
	if !ok {
		m = map[Key]struct{}{}
		c.dependents[child] = m
	}
	m[parent] = struct{}{}
}

// Invalidate drops the named keys and their registered dependents
// (transitively) so the next read refetches from the server. Only named keys
// and declared dependents are touched, never the whole cache.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	seen := map[Key]struct{}{}
	queue := append([]Key(nil), keys...)
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		for parent := range c.dependents[k] {
			queue = append(queue, parent)
		}
	}
	c.mu.Unlock()

	for k := range seen {
		c.store.Delete(string(k))
	}
}

// Flush drops every entry. Used on logout/exit; normal invalidation must go
// through Invalidate.
func (c *Cache) Flush() {
	c.store.Flush()
}

// Snapshot captures the current value at key (or its absence). It is owned
// by the in-flight mutation that took it: discarded on success, Restored on
// failure.
type Snapshot struct {
	cache   *Cache
	key     Key
	value   any
	present bool
}

func (c *Cache) Snapshot(key Key) Snapshot {
	v, ok := c.Get(key)
	return Snapshot{cache: c, key: key, value: v, present: ok}
}

// Restore reinstates the captured state exactly: the prior value if one
// existed, otherwise removal of whatever the optimistic edit installed.
func (s Snapshot) Restore() {
	if s.cache == nil {
		return
	}
	if s.present {
		s.cache.Set(s.key, s.value)
		return
	}
	s.cache.store.Delete(string(s.key))
}

func (s Snapshot) Key() Key { return s.key }

// Value returns the captured value (nil, false when the key was absent).
func (s Snapshot) Value() (any, bool) { return s.value, s.present }

// GetOr returns the cached value at key, fetching and caching it on a miss.
// Concurrent callers may race to fetch; last write wins, which is harmless
// since both fetched the same server state.
func (c *Cache) GetOr(ctx context.Context, key Key, fetch func(context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.Set(key, v)
	return v, nil
}
