// Package openstack is the composition root for the private-cloud agent
// runtime. An Agent owns the credential-keyed session cache, the shared
// connection pools, and the named resource lock manager, and hands out typed
// service callers bound to live sessions.
package openstack

import (
	"context"

	"github.com/goliatone/go-openstack/compute"
	"github.com/goliatone/go-openstack/core"
	"github.com/goliatone/go-openstack/image"
	"github.com/goliatone/go-openstack/locks"
	"github.com/goliatone/go-openstack/network"
	"github.com/goliatone/go-openstack/session"
	"github.com/goliatone/go-openstack/telemetry"
	"github.com/goliatone/go-openstack/volume"
)

// Lock domains used by the compound orchestration operations.
const (
	LockDomainServer  = "server"
	LockDomainNetwork = "network"
	LockDomainVolume  = "volume"
)

type Agent struct {
	config   core.Config
	observer core.Observer
	provider core.LoggerProvider
	sessions *session.Cache
	locks    *locks.Manager
}

// New assembles the agent: defaults, loaded configuration, and runtime
// overrides are merged in that order, then the session cache and lock manager
// are built from the result.
func New(runtime core.Config, options ...Option) (*Agent, error) {
	builder := defaultAgentBuilder(runtime)
	for _, option := range options {
		if option == nil {
			continue
		}
		option(&builder)
	}

	defaults := core.DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, core.NewConfigError("config", "openstack: config load failed: "+err.Error())
	}
	resolved, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, core.NewConfigError("config", "openstack: config resolution failed: "+err.Error())
	}

	observer := core.Observer{
		Logger:  builder.logger,
		Metrics: builder.metricsRecorder,
		Now:     builder.now,
	}

	cacheOptions := []session.CacheOption{}
	if len(builder.sessionOptions) > 0 {
		cacheOptions = append(cacheOptions, session.WithSessionOptions(builder.sessionOptions...))
	}

	agent := &Agent{
		config:   resolved,
		observer: observer,
		provider: builder.loggerProvider,
		sessions: session.NewCache(resolved, observer, cacheOptions...),
		locks:    locks.NewManager(resolved, observer),
	}
	observer.LogInfo(context.Background(), "agent initialized", map[string]any{
		"service_name":       resolved.ServiceName,
		"token_renew_window": resolved.TokenRenewWindow.String(),
		"session_capacity":   resolved.SessionCache.Capacity,
	})
	return agent, nil
}

// Config returns the fully resolved configuration.
func (a *Agent) Config() core.Config {
	return a.config
}

// Session returns the cached session for a credential tuple, constructing and
// caching it on first use.
func (a *Agent) Session(ctx context.Context, creds core.Credentials) (*session.Session, error) {
	return a.sessions.Get(ctx, creds)
}

// Locks exposes the shared lock manager.
func (a *Agent) Locks() *locks.Manager {
	return a.locks
}

// WithLock runs op under the named resource lock.
func (a *Agent) WithLock(ctx context.Context, lockDomain string, resourceKey string, op func(ctx context.Context) error) error {
	return a.locks.WithLock(ctx, lockDomain, resourceKey, op)
}

func (a *Agent) Compute(sess *session.Session) *compute.Service {
	return compute.New(sess, a.observer)
}

func (a *Agent) Network(sess *session.Session) *network.Service {
	return network.New(sess)
}

func (a *Agent) Image(sess *session.Session) *image.Service {
	return image.New(sess)
}

func (a *Agent) Volume(sess *session.Session) *volume.Service {
	return volume.New(sess)
}

func (a *Agent) Telemetry(sess *session.Session) *telemetry.Service {
	return telemetry.New(sess)
}

// AuthorizeSession forces authentication for a credential tuple and returns
// the granted token snapshot.
func (a *Agent) AuthorizeSession(ctx context.Context, creds core.Credentials) (core.Token, error) {
	sess, err := a.Session(ctx, creds)
	if err != nil {
		return core.Token{}, err
	}
	if err := sess.EnsureAuthorized(ctx); err != nil {
		return core.Token{}, err
	}
	return sess.Token(), nil
}

// BootServer provisions a server under the per-tenant server lock so that
// concurrent boots for the same tenant serialize their quota checks.
func (a *Agent) BootServer(ctx context.Context, creds core.Credentials, req compute.BootRequest) (compute.Server, error) {
	sess, err := a.Session(ctx, creds)
	if err != nil {
		return compute.Server{}, err
	}
	return locks.WithLockResult(ctx, a.locks, LockDomainServer, creds.TenantName, func(ctx context.Context) (compute.Server, error) {
		servers, err := a.Compute(sess).Servers(ctx)
		if err != nil {
			return compute.Server{}, err
		}
		return servers.Boot(ctx, req)
	})
}

// CreateNetwork provisions a network under the per-tenant network lock.
func (a *Agent) CreateNetwork(ctx context.Context, creds core.Credentials, req network.CreateNetworkRequest) (network.Network, error) {
	sess, err := a.Session(ctx, creds)
	if err != nil {
		return network.Network{}, err
	}
	return locks.WithLockResult(ctx, a.locks, LockDomainNetwork, creds.TenantName, func(ctx context.Context) (network.Network, error) {
		return a.Network(sess).CreateNetwork(ctx, req)
	})
}

// CreateVolume provisions a volume under the per-tenant volume lock.
func (a *Agent) CreateVolume(ctx context.Context, creds core.Credentials, req volume.CreateVolumeRequest) (volume.Volume, error) {
	sess, err := a.Session(ctx, creds)
	if err != nil {
		return volume.Volume{}, err
	}
	return locks.WithLockResult(ctx, a.locks, LockDomainVolume, creds.TenantName, func(ctx context.Context) (volume.Volume, error) {
		return a.Volume(sess).Create(ctx, req)
	})
}
