package transport

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-openstack/core"
)

// poolTTL keeps pool entries alive effectively forever; the cache is bounded
// by capacity, not idle time, because pools are shared across many credential
// tuples that target the same endpoint and are expensive to recreate.
const poolTTL = 8760 * time.Hour

const poolCacheShards = 8
const poolEvictionPercentage = 10

// PoolCache amortizes socket-pool setup by sharing one *http.Client per
// authentication URL. Oldest entries are evicted once capacity is reached.
type PoolCache struct {
	clients  *sturdyc.Client[*http.Client]
	config   core.TransportConfig
	observer core.Observer
}

func NewPoolCache(cfg core.Config, observer core.Observer) *PoolCache {
	capacity := cfg.PoolCache.Capacity
	if capacity <= 0 {
		capacity = core.DefaultConfig().PoolCache.Capacity
	}
	return &PoolCache{
		clients:  sturdyc.New[*http.Client](capacity, poolCacheShards, poolTTL, poolEvictionPercentage),
		config:   cfg.Transport,
		observer: observer,
	}
}

// Get returns the shared client for an authentication URL, building and
// caching it on first use. Concurrent first use yields one constructed pool.
func (p *PoolCache) Get(ctx context.Context, authURL string) (*http.Client, error) {
	key := normalizePoolKey(authURL)
	if key == "" {
		return nil, badRequestError(nil, "transport: pool cache requires an auth url", nil)
	}
	return p.clients.GetOrFetch(ctx, key, func(context.Context) (*http.Client, error) {
		p.observer.LogDebug(ctx, "building connection pool", map[string]any{"auth_url": key})
		return p.buildClient(), nil
	})
}

// FlushIdle proactively closes idle pooled connections for the pool serving
// authURL so a later attempt does not reuse a possibly-broken connection.
func (p *PoolCache) FlushIdle(ctx context.Context, authURL string) {
	key := normalizePoolKey(authURL)
	if key == "" {
		return
	}
	client, ok := p.clients.Get(key)
	if !ok || client == nil {
		return
	}
	p.observer.LogWarn(ctx, "flushing idle connections after transport failure", map[string]any{"auth_url": key})
	client.CloseIdleConnections()
}

// Size reports the number of live pool entries.
func (p *PoolCache) Size() int {
	return p.clients.Size()
}

func (p *PoolCache) buildClient() *http.Client {
	connectTimeout := p.config.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = core.DefaultConfig().Transport.ConnectTimeout
	}
	idleTimeout := p.config.IdleConnTimeout
	if idleTimeout <= 0 {
		idleTimeout = core.DefaultConfig().Transport.IdleConnTimeout
	}
	maxIdle := p.config.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = core.DefaultConfig().Transport.MaxIdleConns
	}
	dialer := &net.Dialer{Timeout: connectTimeout}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			MaxIdleConns:        maxIdle,
			MaxIdleConnsPerHost: maxIdle,
			IdleConnTimeout:     idleTimeout,
		},
	}
}

func normalizePoolKey(authURL string) string {
	return strings.TrimRight(strings.TrimSpace(authURL), "/")
}
