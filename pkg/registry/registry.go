package registry

import (
	"fmt"
	"slices"
	"sync"
)

// Registry is a concurrency-safe name index.
// Entries are held strongly; they live until Unregister is called.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

// New creates a new empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]T),
	}
}

// Register adds an entry to the registry.
// If an entry with the same name exists, it is overwritten and returned.
func (r *Registry[T]) Register(name string, v T) (prev T, replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, replaced = r.entries[name]
	r.entries[name] = v
	return prev, replaced
}

// Lookup returns the entry registered under name.
func (r *Registry[T]) Lookup(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[name]
	return v, ok
}

// MustLookup is like Lookup but returns an error when name is unknown.
func (r *Registry[T]) MustLookup(name string) (T, error) {
	v, ok := r.Lookup(name)
	if !ok {
		return v, fmt.Errorf("not registered: %s", name)
	}
	return v, nil
}

// Unregister removes name from the registry and reports whether it was present.
func (r *Registry[T]) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[name]
	delete(r.entries, name)
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered entries.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
