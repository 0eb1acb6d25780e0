package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestDelegatesResolveMemoizes(t *testing.T) {
	var delegates Delegates
	var builds int64

	build := func() (string, error) {
		atomic.AddInt64(&builds, 1)
		return "servers-v2.1", nil
	}

	first, err := Resolve(&delegates, "compute.servers", build)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := Resolve(&delegates, "compute.servers", build)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first != second {
		t.Fatalf("expected memoized value")
	}
	if got := atomic.LoadInt64(&builds); got != 1 {
		t.Fatalf("expected one build, got %d", got)
	}
}

func TestDelegatesResolveConcurrentFirstUse(t *testing.T) {
	var delegates Delegates
	var builds int64

	const callers = 16
	results := make([]*struct{ name string }, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			value, err := Resolve(&delegates, "compute.servers", func() (*struct{ name string }, error) {
				atomic.AddInt64(&builds, 1)
				return &struct{ name string }{name: "v2"}, nil
			})
			if err != nil {
				t.Errorf("resolve: %v", err)
				return
			}
			results[slot] = value
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt64(&builds); got != 1 {
		t.Fatalf("concurrent first use must build once, got %d", got)
	}
	for i := 1; i < callers; i++ {
		if results[i] != results[0] {
			t.Fatalf("expected one shared instance")
		}
	}
}

func TestDelegatesResolveErrorIsNotCached(t *testing.T) {
	var delegates Delegates
	attempts := 0

	_, err := Resolve(&delegates, "key", func() (string, error) {
		attempts++
		return "", errors.New("catalog unavailable")
	})
	if err == nil {
		t.Fatalf("expected build error")
	}

	value, err := Resolve(&delegates, "key", func() (string, error) {
		attempts++
		return "ready", nil
	})
	if err != nil {
		t.Fatalf("resolve after failure: %v", err)
	}
	if value != "ready" || attempts != 2 {
		t.Fatalf("failed build must not be cached: value=%q attempts=%d", value, attempts)
	}
}

func TestDelegatesKeysAreIndependent(t *testing.T) {
	var delegates Delegates
	a, _ := Resolve(&delegates, "a", func() (int, error) { return 1, nil })
	b, _ := Resolve(&delegates, "b", func() (int, error) { return 2, nil })
	if a == b {
		t.Fatalf("keys must resolve independently")
	}
}
