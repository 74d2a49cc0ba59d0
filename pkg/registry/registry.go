package registry

import (
	"fmt"
	"sync"

	"pecron-mqtt-bridge/pkg/coordinator"
)

// Registry maps bridge instance identifiers (account emails) to their
// coordinators. It is owned by the application lifecycle, passed explicitly
// to whoever needs it — deliberately not process-global state.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*coordinator.Coordinator
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		entries: make(map[string]*coordinator.Coordinator),
	}
}

// Add registers a coordinator under an instance id; duplicate ids are
// rejected
func (r *Registry) Add(id string, coord *coordinator.Coordinator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("instance %q already registered", id)
	}
	r.entries[id] = coord
	return nil
}

// Get returns the coordinator for an instance id
func (r *Registry) Get(id string) (*coordinator.Coordinator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	coord, ok := r.entries[id]
	return coord, ok
}

// Remove unregisters and shuts down one instance
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	coord, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()

	if ok {
		coord.Shutdown()
	}
	return ok
}

// List returns the registered instance ids (unordered)
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}

// Each calls fn for every registered coordinator
func (r *Registry) Each(fn func(id string, coord *coordinator.Coordinator)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, coord := range r.entries {
		fn(id, coord)
	}
}

// ShutdownAll releases every instance's session. Part of the teardown
// contract: after this returns, no session is left open.
func (r *Registry) ShutdownAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, coord := range r.entries {
		coord.Shutdown()
	}
	r.entries = make(map[string]*coordinator.Coordinator)
}
