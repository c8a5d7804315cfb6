package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Counter names used across the storefront.
const (
	CartMutations       = "cart_mutations"
	PromoRequests       = "promo_requests"
	PromoStaleDiscarded = "promo_stale_discarded"
	OrdersPlaced        = "orders_placed"
	OrdersFailed        = "orders_failed"
	StorageErrors       = "storage_errors"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Registry hands out named counters. The zero value is not usable; use NewRegistry.
type Registry struct {
	mu       sync.Mutex
	counters map[string]*Counter
}

func NewRegistry() *Registry {
	return &Registry{counters: make(map[string]*Counter)}
}

// Counter returns the counter registered under name, creating it on first use.
// A nil registry returns a throwaway counter so callers need no nil checks.
func (r *Registry) Counter(name string) *Counter {
	if r == nil {
		return &Counter{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.counters[name]
	if !ok {
		c = &Counter{}
		r.counters[name] = c
	}
	return c
}

type Sample struct {
	Name  string
	Value uint64
}

// Snapshot returns all counters sorted by name.
func (r *Registry) Snapshot() []Sample {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Sample, 0, len(r.counters))
	for name, c := range r.counters {
		out = append(out, Sample{Name: name, Value: c.Load()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
