// Package locks provides best-effort per-key mutual exclusion for multi-step
// orchestration operations. Acquisition is always bounded in time: after
// exhausting its attempts the manager runs the wrapped operation unlocked
// with a warning, deliberately favoring forward progress over strict mutual
// exclusion under contention.
package locks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-openstack/core"
)

const lockCacheShards = 8
const lockEvictionPercentage = 10
const acquirePollInterval = 25 * time.Millisecond

// Manager hands out one mutex per compound "<domain>-<key>" name from an
// idle-evicting cache. Distinct logical resources may intentionally collapse
// onto the same compound key for coarse-grained locking by type and owner.
type Manager struct {
	locks    *sturdyc.Client[*sync.Mutex]
	attempts int
	timeout  time.Duration
	observer core.Observer
}

func NewManager(cfg core.Config, observer core.Observer) *Manager {
	defaults := core.DefaultConfig().Locks
	attempts := cfg.Locks.Attempts
	if attempts <= 0 {
		attempts = defaults.Attempts
	}
	timeout := cfg.Locks.AttemptTimeout
	if timeout <= 0 {
		timeout = defaults.AttemptTimeout
	}
	capacity := cfg.Locks.Capacity
	if capacity <= 0 {
		capacity = defaults.Capacity
	}
	idleTTL := cfg.Locks.IdleTTL
	if idleTTL <= 0 {
		idleTTL = defaults.IdleTTL
	}
	return &Manager{
		locks:    sturdyc.New[*sync.Mutex](capacity, lockCacheShards, idleTTL, lockEvictionPercentage),
		attempts: attempts,
		timeout:  timeout,
		observer: observer,
	}
}

// Key forms the compound lock key from a domain and a resource key.
func Key(lockDomain string, resourceKey string) string {
	return strings.TrimSpace(lockDomain) + "-" + strings.TrimSpace(resourceKey)
}

// WithLock runs op under the mutex named by domain and key. Whatever typed
// failure op produces propagates unmodified. If the mutex cannot be loaded
// or acquisition exhausts all attempts, op still runs, unlocked.
func (m *Manager) WithLock(ctx context.Context, lockDomain string, resourceKey string, op func(ctx context.Context) error) error {
	release := m.acquire(ctx, lockDomain, resourceKey)
	defer release()
	return op(ctx)
}

// WithLockResult is the value-returning form of WithLock.
func WithLockResult[T any](ctx context.Context, m *Manager, lockDomain string, resourceKey string, op func(ctx context.Context) (T, error)) (T, error) {
	release := m.acquire(ctx, lockDomain, resourceKey)
	defer release()
	return op(ctx)
}

// acquire returns the release function for the compound key's mutex. The
// release is a no-op unless this call actually acquired the lock.
func (m *Manager) acquire(ctx context.Context, lockDomain string, resourceKey string) func() {
	noop := func() {}
	key := Key(lockDomain, resourceKey)

	mutex, err := m.locks.GetOrFetch(ctx, key, func(context.Context) (*sync.Mutex, error) {
		return &sync.Mutex{}, nil
	})
	if err != nil || mutex == nil {
		m.observer.LogWarn(ctx, "lock unavailable, proceeding unlocked", map[string]any{
			"lock_key": key,
			"error":    errorText(err),
		})
		m.observer.Counter(ctx, "openstack.lock.degraded.total", 1, map[string]string{"reason": "load_failed"})
		return noop
	}

	for attempt := 1; attempt <= m.attempts; attempt++ {
		if m.tryAcquire(ctx, mutex) {
			return mutex.Unlock
		}
		m.observer.LogDebug(ctx, "lock attempt timed out", map[string]any{
			"lock_key": key,
			"attempt":  attempt,
		})
	}

	m.observer.LogWarn(ctx, "lock attempts exhausted, proceeding unlocked", map[string]any{
		"lock_key": key,
		"attempts": m.attempts,
	})
	m.observer.Counter(ctx, "openstack.lock.degraded.total", 1, map[string]string{"reason": "contended"})
	return noop
}

// tryAcquire polls TryLock until the attempt timeout elapses. Polling keeps
// an abandoned attempt from grabbing the mutex later with nobody left to
// release it.
func (m *Manager) tryAcquire(ctx context.Context, mutex *sync.Mutex) bool {
	deadline := time.Now().Add(m.timeout)
	for {
		if mutex.TryLock() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(acquirePollInterval):
		}
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
