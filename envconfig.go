package openstack

import (
	"context"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// EnvConfigLoader reads agent configuration from OPENSTACK_AGENT_* environment
// variables. Unset variables fall back to the compiled defaults, so the loader
// always yields a complete layer.
type EnvConfigLoader struct{}

type envSettings struct {
	ServiceName          string        `env:"OPENSTACK_AGENT_SERVICE_NAME,default=openstack-agent"`
	TokenRenewWindow     time.Duration `env:"OPENSTACK_AGENT_TOKEN_RENEW_WINDOW,default=2m"`
	ConnectTimeout       time.Duration `env:"OPENSTACK_AGENT_CONNECT_TIMEOUT,default=10s"`
	RequestTimeout       time.Duration `env:"OPENSTACK_AGENT_REQUEST_TIMEOUT,default=30s"`
	MaxIdleConns         int           `env:"OPENSTACK_AGENT_MAX_IDLE_CONNS,default=32"`
	IdleConnTimeout      time.Duration `env:"OPENSTACK_AGENT_IDLE_CONN_TIMEOUT,default=90s"`
	MaxResponseBodyBytes int64         `env:"OPENSTACK_AGENT_MAX_RESPONSE_BODY_BYTES,default=10485760"`
	SessionIdleTTL       time.Duration `env:"OPENSTACK_AGENT_SESSION_IDLE_TTL,default=30m"`
	SessionCapacity      int           `env:"OPENSTACK_AGENT_SESSION_CAPACITY,default=256"`
	PoolCapacity         int           `env:"OPENSTACK_AGENT_POOL_CAPACITY,default=16"`
	LockAttempts         int           `env:"OPENSTACK_AGENT_LOCK_ATTEMPTS,default=3"`
	LockAttemptTimeout   time.Duration `env:"OPENSTACK_AGENT_LOCK_ATTEMPT_TIMEOUT,default=2s"`
	LockIdleTTL          time.Duration `env:"OPENSTACK_AGENT_LOCK_IDLE_TTL,default=10m"`
	LockCapacity         int           `env:"OPENSTACK_AGENT_LOCK_CAPACITY,default=512"`
}

func (EnvConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	var settings envSettings
	if err := envdecode.Decode(&settings); err != nil {
		return nil, fmt.Errorf("openstack: env config decode failed: %w", err)
	}
	return map[string]any{
		"service_name":       settings.ServiceName,
		"token_renew_window": settings.TokenRenewWindow,
		"transport": map[string]any{
			"connect_timeout":         settings.ConnectTimeout,
			"request_timeout":         settings.RequestTimeout,
			"max_idle_conns":          settings.MaxIdleConns,
			"idle_conn_timeout":       settings.IdleConnTimeout,
			"max_response_body_bytes": settings.MaxResponseBodyBytes,
		},
		"session_cache": map[string]any{
			"idle_ttl": settings.SessionIdleTTL,
			"capacity": settings.SessionCapacity,
		},
		"pool_cache": map[string]any{
			"capacity": settings.PoolCapacity,
		},
		"locks": map[string]any{
			"attempts":        settings.LockAttempts,
			"attempt_timeout": settings.LockAttemptTimeout,
			"idle_ttl":        settings.LockIdleTTL,
			"capacity":        settings.LockCapacity,
		},
	}, nil
}
