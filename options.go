package openstack

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"

	"github.com/goliatone/go-openstack/core"
	"github.com/goliatone/go-openstack/session"
)

// ConfigProvider loads configuration from an external source on top of the
// compiled defaults.
type ConfigProvider interface {
	Load(ctx context.Context, defaults core.Config) (core.Config, error)
}

// RawConfigLoader supplies raw key/value configuration for the cfgx pipeline.
type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

// OptionsResolver merges the defaults, loaded, and runtime configuration
// layers into the final config.
type OptionsResolver interface {
	Resolve(defaults core.Config, loaded core.Config, runtime core.Config) (core.Config, error)
}

type agentBuilder struct {
	runtimeConfig   core.Config
	logger          core.Logger
	loggerProvider  core.LoggerProvider
	metricsRecorder core.MetricsRecorder
	now             func() time.Time
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	sessionOptions  []session.Option
}

type Option func(*agentBuilder)

func WithLogger(logger core.Logger) Option {
	return func(b *agentBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(b *agentBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(b *agentBuilder) {
		b.metricsRecorder = recorder
	}
}

// WithClock injects a deterministic clock, used by tests to control token
// expiry windows.
func WithClock(now func() time.Time) Option {
	return func(b *agentBuilder) {
		b.now = now
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *agentBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *agentBuilder) {
		b.optionsResolver = resolver
	}
}

// WithSessionOptions forwards options to every session the agent constructs.
func WithSessionOptions(options ...session.Option) Option {
	return func(b *agentBuilder) {
		b.sessionOptions = append(b.sessionOptions, options...)
	}
}

func defaultAgentBuilder(runtime core.Config) agentBuilder {
	loggerProvider, logger := glog.Resolve("openstack", nil, nil)
	return agentBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: core.NopMetricsRecorder{},
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// CfgxConfigProvider builds the loaded config layer through cfgx with the
// compiled defaults and validation applied.
type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults core.Config) (core.Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return core.Config{}, err
	}
	cfg, err := cfgx.Build[core.Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[core.Config]((*core.Config).Validate),
	)
	if err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}

// GoOptionsResolver layers defaults, loaded config, and runtime overrides
// with deterministic precedence.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults core.Config, loaded core.Config, runtime core.Config) (core.Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return core.Config{}, fmt.Errorf("openstack: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return core.Config{}, fmt.Errorf("openstack: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[core.Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[core.Config]((*core.Config).Validate),
	)
	if err != nil {
		return core.Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return core.Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg core.Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || cfg.TokenRenewWindow > 0 {
		layer["token_renew_window"] = cfg.TokenRenewWindow
	}

	transportLayer := map[string]any{}
	if includeZero || cfg.Transport.ConnectTimeout > 0 {
		transportLayer["connect_timeout"] = cfg.Transport.ConnectTimeout
	}
	if includeZero || cfg.Transport.RequestTimeout > 0 {
		transportLayer["request_timeout"] = cfg.Transport.RequestTimeout
	}
	if includeZero || cfg.Transport.MaxIdleConns > 0 {
		transportLayer["max_idle_conns"] = cfg.Transport.MaxIdleConns
	}
	if includeZero || cfg.Transport.IdleConnTimeout > 0 {
		transportLayer["idle_conn_timeout"] = cfg.Transport.IdleConnTimeout
	}
	if includeZero || cfg.Transport.MaxResponseBodyBytes > 0 {
		transportLayer["max_response_body_bytes"] = cfg.Transport.MaxResponseBodyBytes
	}
	if len(transportLayer) > 0 {
		layer["transport"] = transportLayer
	}

	sessionLayer := map[string]any{}
	if includeZero || cfg.SessionCache.IdleTTL > 0 {
		sessionLayer["idle_ttl"] = cfg.SessionCache.IdleTTL
	}
	if includeZero || cfg.SessionCache.Capacity > 0 {
		sessionLayer["capacity"] = cfg.SessionCache.Capacity
	}
	if len(sessionLayer) > 0 {
		layer["session_cache"] = sessionLayer
	}

	if includeZero || cfg.PoolCache.Capacity > 0 {
		layer["pool_cache"] = map[string]any{"capacity": cfg.PoolCache.Capacity}
	}

	locksLayer := map[string]any{}
	if includeZero || cfg.Locks.Attempts > 0 {
		locksLayer["attempts"] = cfg.Locks.Attempts
	}
	if includeZero || cfg.Locks.AttemptTimeout > 0 {
		locksLayer["attempt_timeout"] = cfg.Locks.AttemptTimeout
	}
	if includeZero || cfg.Locks.IdleTTL > 0 {
		locksLayer["idle_ttl"] = cfg.Locks.IdleTTL
	}
	if includeZero || cfg.Locks.Capacity > 0 {
		locksLayer["capacity"] = cfg.Locks.Capacity
	}
	if len(locksLayer) > 0 {
		layer["locks"] = locksLayer
	}

	return layer
}
