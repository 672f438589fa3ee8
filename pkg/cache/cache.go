// Package cache provides the process-wide keyed query cache that collection
// reads go through and that optimistic mutations write predictions into.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Entity names a cached collection type
type Entity string

const (
	EntityShifts      Entity = "shifts"
	EntityMembers     Entity = "members"
	EntityInvitations Entity = "invitations"
	EntityWorkers     Entity = "workers"
	EntityLocations   Entity = "locations"
)

// Key identifies one cached collection for one provider
type Key struct {
	Entity     Entity
	ProviderID string
}

// NewKey builds a key for the given entity and provider
func NewKey(entity Entity, providerID string) Key {
	return Key{Entity: entity, ProviderID: providerID}
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Entity, k.ProviderID)
}

// Store is the keyed cache contract the optimistic controller depends on
type Store interface {
	Get(key Key) (any, bool)
	Set(key Key, value any)
	// Cancel aborts any in-flight background refresh for key; its result is discarded
	Cancel(key Key)
	// Invalidate forces an authoritative refetch of key
	Invalidate(ctx context.Context, key Key) error
}

// Fetcher loads the authoritative value of a key
type Fetcher func(ctx context.Context, key Key) (any, error)

type entry struct {
	value     any
	hasValue  bool
	fetchedAt time.Time
	// gen moves on every write or cancel, version only on writes
	gen     uint64
	version uint64
	refresh   *refresh // set while a background refresh is running
}

type refresh struct {
	cancel context.CancelFunc
}

// QueryCache is an in-memory Store with per-entity fetchers
type QueryCache struct {
	mu         sync.Mutex
	entries    map[Key]*entry
	fetchers   map[Entity]Fetcher
	staleTime  time.Duration
	serveStale bool
	logger     *zap.Logger
	now        func() time.Time
}

// NewQueryCache creates an empty cache. Entries older than staleTime are
// refetched by Fetch; a zero staleTime refetches on every Fetch.
func NewQueryCache(staleTime time.Duration, logger *zap.Logger) *QueryCache {
	return &QueryCache{
		entries:   make(map[Key]*entry),
		fetchers:  make(map[Entity]Fetcher),
		staleTime: staleTime,
		logger:    logger,
		now:       time.Now,
	}
}

// Register sets the fetcher used to load every key of the given entity
func (c *QueryCache) Register(entity Entity, fetcher Fetcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchers[entity] = fetcher
}

// ServeStale makes Fetch return a stale value immediately and refresh it in
// the background instead of reloading before returning.
func (c *QueryCache) ServeStale(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serveStale = enabled
}

// entryLocked returns the entry for key, creating it. c.mu must be held.
func (c *QueryCache) entryLocked(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// Get returns the cached value for key without fetching
func (c *QueryCache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !e.hasValue {
		recordRequest(key.Entity, false)
		return nil, false
	}
	recordRequest(key.Entity, true)
	return e.value, true
}

// Set replaces the cached value for key. Any refresh already running for the
// key can no longer overwrite it.
func (c *QueryCache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

func (c *QueryCache) setLocked(key Key, value any) {
	e := c.entryLocked(key)
	e.value = value
	e.hasValue = true
	e.fetchedAt = c.now()
	e.gen++
	e.version++
}

// Cancel aborts an in-flight background refresh for key
func (c *QueryCache) Cancel(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked(key)
}

func (c *QueryCache) cancelLocked(key Key) {
	e, ok := c.entries[key]
	if !ok || e.refresh == nil {
		return
	}
	e.refresh.cancel()
	e.refresh = nil
	// bump so the cancelled refresh fails its generation check
	e.gen++
	c.logger.Debug("Cancelled background refresh", zap.Stringer("key", key))
}

// Invalidate cancels any background refresh and refetches key synchronously.
// Keys without a registered fetcher are dropped so the next read misses.
func (c *QueryCache) Invalidate(ctx context.Context, key Key) error {
	c.mu.Lock()
	c.cancelLocked(key)
	fetcher, ok := c.fetchers[key.Entity]
	if !ok {
		delete(c.entries, key)
		c.mu.Unlock()
		recordInvalidate(key.Entity, "dropped")
		return nil
	}
	version := c.entryLocked(key).version
	c.mu.Unlock()

	recordInvalidate(key.Entity, "refetch")
	value, err := fetcher(ctx, key)

	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(key)
	if err != nil {
		// keep serving the old value but make the next Fetch reload it
		if e.version == version {
			e.fetchedAt = time.Time{}
		}
		return fmt.Errorf("failed to refetch %s: %w", key, err)
	}
	if e.version == version {
		c.setLocked(key, value)
	}
	return nil
}

// Fetch returns the cached value for key, loading it when missing or stale.
// With ServeStale enabled a stale value is returned as is and refreshed in
// the background.
func (c *QueryCache) Fetch(ctx context.Context, key Key) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.hasValue {
		fresh := c.now().Sub(e.fetchedAt) < c.staleTime
		if fresh || c.serveStale {
			value := e.value
			refreshing := e.refresh != nil
			c.mu.Unlock()
			recordRequest(key.Entity, true)
			if !fresh && !refreshing {
				c.Refresh(key)
			}
			return value, nil
		}
	}
	fetcher, ok := c.fetchers[key.Entity]
	version := c.entryLocked(key).version
	c.mu.Unlock()

	recordRequest(key.Entity, false)
	if !ok {
		return nil, fmt.Errorf("no fetcher registered for %s", key.Entity)
	}

	value, err := fetcher(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(key)
	if e.version != version && e.hasValue {
		// written while we were fetching; the newer value wins
		return e.value, nil
	}
	c.setLocked(key, value)
	return value, nil
}

// Refresh refetches key in the background. The returned channel is closed
// when the refresh finishes, whether it stored, was cancelled, or failed.
func (c *QueryCache) Refresh(key Key) <-chan struct{} {
	done := make(chan struct{})

	c.mu.Lock()
	fetcher, ok := c.fetchers[key.Entity]
	if !ok {
		c.mu.Unlock()
		close(done)
		return done
	}
	c.cancelLocked(key)
	ctx, cancel := context.WithCancel(context.Background())
	r := &refresh{cancel: cancel}
	e := c.entryLocked(key)
	e.refresh = r
	gen := e.gen
	c.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		value, err := fetcher(ctx, key)

		c.mu.Lock()
		defer c.mu.Unlock()
		e := c.entryLocked(key)
		if e.refresh == r {
			e.refresh = nil
		}
		if e.gen != gen || ctx.Err() != nil {
			c.logger.Debug("Discarding superseded refresh", zap.Stringer("key", key))
			return
		}
		if err != nil {
			c.logger.Warn("Background refresh failed", zap.Stringer("key", key), zap.Error(err))
			return
		}
		c.setLocked(key, value)
	}()

	return done
}
