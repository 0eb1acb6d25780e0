package session

import "sync"

// Delegates memoizes protocol-version-specific service implementations for
// one session. The discriminant key is resolved once; construction under
// concurrent first use still yields exactly one instance per key: the fast
// path reads unsynchronized, then re-checks inside the critical section
// before constructing.
type Delegates struct {
	mu     sync.RWMutex
	values map[string]any
}

// Resolve returns the memoized value for key, building it once on first use.
// The build function runs inside the critical section; keep it cheap and
// side-effect free beyond construction.
func Resolve[T any](d *Delegates, key string, build func() (T, error)) (T, error) {
	d.mu.RLock()
	existing, ok := d.values[key]
	d.mu.RUnlock()
	if ok {
		return existing.(T), nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if existing, ok := d.values[key]; ok {
		return existing.(T), nil
	}
	built, err := build()
	if err != nil {
		var zero T
		return zero, err
	}
	if d.values == nil {
		d.values = map[string]any{}
	}
	d.values[key] = built
	return built, nil
}
