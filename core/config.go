package core

import (
	"fmt"
	"strings"
	"time"
)

// TransportConfig tunes the shared HTTP layer.
type TransportConfig struct {
	ConnectTimeout       time.Duration `koanf:"connect_timeout" mapstructure:"connect_timeout"`
	RequestTimeout       time.Duration `koanf:"request_timeout" mapstructure:"request_timeout"`
	MaxIdleConns         int           `koanf:"max_idle_conns" mapstructure:"max_idle_conns"`
	IdleConnTimeout      time.Duration `koanf:"idle_conn_timeout" mapstructure:"idle_conn_timeout"`
	MaxResponseBodyBytes int64         `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
}

// SessionCacheConfig bounds the credential-keyed session cache. Entries
// expire on idle time.
type SessionCacheConfig struct {
	IdleTTL  time.Duration `koanf:"idle_ttl" mapstructure:"idle_ttl"`
	Capacity int           `koanf:"capacity" mapstructure:"capacity"`
}

// PoolCacheConfig bounds the auth-URL-keyed connection pool cache. Pools are
// evicted by capacity, not idle time; they are shared across many credential
// tuples and expensive to rebuild.
type PoolCacheConfig struct {
	Capacity int `koanf:"capacity" mapstructure:"capacity"`
}

// LockConfig tunes the named resource lock manager.
type LockConfig struct {
	Attempts       int           `koanf:"attempts" mapstructure:"attempts"`
	AttemptTimeout time.Duration `koanf:"attempt_timeout" mapstructure:"attempt_timeout"`
	IdleTTL        time.Duration `koanf:"idle_ttl" mapstructure:"idle_ttl"`
	Capacity       int           `koanf:"capacity" mapstructure:"capacity"`
}

// Config is the agent-wide runtime configuration.
type Config struct {
	ServiceName      string             `koanf:"service_name" mapstructure:"service_name"`
	TokenRenewWindow time.Duration      `koanf:"token_renew_window" mapstructure:"token_renew_window"`
	Transport        TransportConfig    `koanf:"transport" mapstructure:"transport"`
	SessionCache     SessionCacheConfig `koanf:"session_cache" mapstructure:"session_cache"`
	PoolCache        PoolCacheConfig    `koanf:"pool_cache" mapstructure:"pool_cache"`
	Locks            LockConfig         `koanf:"locks" mapstructure:"locks"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:      "openstack-agent",
		TokenRenewWindow: 2 * time.Minute,
		Transport: TransportConfig{
			ConnectTimeout:       10 * time.Second,
			RequestTimeout:       30 * time.Second,
			MaxIdleConns:         32,
			IdleConnTimeout:      90 * time.Second,
			MaxResponseBodyBytes: 10 << 20,
		},
		SessionCache: SessionCacheConfig{
			IdleTTL:  30 * time.Minute,
			Capacity: 256,
		},
		PoolCache: PoolCacheConfig{
			Capacity: 16,
		},
		Locks: LockConfig{
			Attempts:       3,
			AttemptTimeout: 2 * time.Second,
			IdleTTL:        10 * time.Minute,
			Capacity:       512,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.TokenRenewWindow <= 0 {
		return fmt.Errorf("core: token_renew_window must be positive")
	}
	if c.Transport.RequestTimeout <= 0 {
		return fmt.Errorf("core: transport.request_timeout must be positive")
	}
	if c.SessionCache.Capacity <= 0 {
		return fmt.Errorf("core: session_cache.capacity must be positive")
	}
	if c.PoolCache.Capacity <= 0 {
		return fmt.Errorf("core: pool_cache.capacity must be positive")
	}
	if c.Locks.Attempts <= 0 {
		return fmt.Errorf("core: locks.attempts must be positive")
	}
	if c.Locks.AttemptTimeout <= 0 {
		return fmt.Errorf("core: locks.attempt_timeout must be positive")
	}
	return nil
}
