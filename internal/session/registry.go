package session

import (
	"context"
	"sort"
	"sync"
)

// Registry hands out one Store per key so every view of a key shares the
// same state and subscriber list.
type Registry struct {
	storage Storage
	opts    []Option

	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry creates a Registry whose stores use storage and opts.
func NewRegistry(storage Storage, opts ...Option) *Registry {
	return &Registry{storage: storage, opts: opts, stores: make(map[string]*Store)}
}

// Get returns the store for key, opening it on first use.
func (r *Registry) Get(ctx context.Context, key string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[key]; ok {
		return s, nil
	}
	s, err := Open(ctx, r.storage, key, r.opts...)
	if err != nil {
		return nil, err
	}
	r.stores[key] = s
	return s, nil
}

// Keys lists the keys of the stores opened so far.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.stores))
	for k := range r.stores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
