package session

import (
	"context"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-openstack/core"
	"github.com/goliatone/go-openstack/transport"
)

const sessionCacheShards = 8
const sessionEvictionPercentage = 10

// Cache amortizes authentication and socket-pool setup across repeated calls
// with the same credentials. Keys are the stable fingerprint over the full
// credential tuple; entries expire on idle time. The cache never triggers
// re-authentication itself; that stays the session's responsibility.
type Cache struct {
	sessions *sturdyc.Client[*Session]
	pools    *transport.PoolCache
	config   core.Config
	observer core.Observer
	extra    []Option
}

type CacheOption func(*Cache)

// WithSessionOptions appends options applied to every session the cache
// constructs; tests use this to inject a fake transport adapter.
func WithSessionOptions(opts ...Option) CacheOption {
	return func(c *Cache) {
		c.extra = append(c.extra, opts...)
	}
}

// WithPools overrides the connection pool cache the sessions share.
func WithPools(pools *transport.PoolCache) CacheOption {
	return func(c *Cache) {
		c.pools = pools
	}
}

func NewCache(cfg core.Config, observer core.Observer, opts ...CacheOption) *Cache {
	capacity := cfg.SessionCache.Capacity
	if capacity <= 0 {
		capacity = core.DefaultConfig().SessionCache.Capacity
	}
	idleTTL := cfg.SessionCache.IdleTTL
	if idleTTL <= 0 {
		idleTTL = core.DefaultConfig().SessionCache.IdleTTL
	}
	cache := &Cache{
		sessions: sturdyc.New[*Session](capacity, sessionCacheShards, idleTTL, sessionEvictionPercentage),
		config:   cfg,
		observer: observer,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(cache)
	}
	if cache.pools == nil {
		cache.pools = transport.NewPoolCache(cfg, observer)
	}
	return cache
}

// Get returns the live session for a credential tuple, constructing it once.
// Concurrent first access for an identical tuple produces exactly one
// session; in-flight construction is deduplicated by the cache.
func (c *Cache) Get(ctx context.Context, creds core.Credentials) (*Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	key := creds.Fingerprint()
	sess, err := c.sessions.GetOrFetch(ctx, key, func(fetchCtx context.Context) (*Session, error) {
		return c.build(fetchCtx, creds)
	})
	if err != nil {
		return nil, err
	}
	// Re-set on access so idle time, not insertion time, drives eviction.
	c.sessions.Set(key, sess)
	return sess, nil
}

// Pools exposes the shared connection pool cache.
func (c *Cache) Pools() *transport.PoolCache {
	return c.pools
}

// Size reports the number of live cached sessions.
func (c *Cache) Size() int {
	return c.sessions.Size()
}

func (c *Cache) build(ctx context.Context, creds core.Credentials) (*Session, error) {
	client, err := c.pools.Get(ctx, creds.AuthURL)
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithConfig(c.config),
		WithObserver(c.observer),
		WithAdapter(transport.NewRESTAdapter(client)),
		WithPoolCache(c.pools),
	}
	opts = append(opts, c.extra...)
	sess, err := New(creds, opts...)
	if err != nil {
		return nil, err
	}
	c.observer.LogInfo(ctx, "session constructed", map[string]any{
		"session_id": sess.ID(),
		"auth_url":   creds.AuthURL,
		"region":     creds.RegionName,
		"protocol":   sess.Protocol(),
	})
	return sess, nil
}
