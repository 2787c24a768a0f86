package shell

import (
	"sort"
	"sync"
)

// registry is a small priority-ordered factory registry shared by the device
// backends. Registration typically happens from init() functions in backend
// packages, selection at startup; both paths are mutex-guarded.
type registry[F any] struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry[F]
}

type registryEntry[F any] struct {
	name      string
	priority  int
	factory   F
	available func() bool
}

func newRegistry[F any]() *registry[F] {
	return &registry[F]{entries: make(map[string]*registryEntry[F])}
}

// register adds or replaces an entry. A nil available probe means always
// available.
func (r *registry[F]) register(name string, priority int, factory F, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = &registryEntry[F]{
		name:      name,
		priority:  priority,
		factory:   factory,
		available: available,
	}
}

func (r *registry[F]) unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

func (r *registry[F]) get(name string) (F, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		var zero F
		return zero, false
	}
	return e.factory, true
}

// getAvailable returns the factory only if the entry's availability probe
// passes.
func (r *registry[F]) getAvailable(name string) (F, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok || (e.available != nil && !e.available()) {
		var zero F
		return zero, false
	}
	return e.factory, true
}

// names returns all entry names sorted by priority, highest first.
// Ties break alphabetically for stable selection.
func (r *registry[F]) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*registryEntry[F], 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority > out[j].priority
		}
		return out[i].name < out[j].name
	})
	names := make([]string, len(out))
	for i, e := range out {
		names[i] = e.name
	}
	return names
}
