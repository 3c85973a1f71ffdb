package task

import "sync"

// Registry maps task ids to their Handles so cancellation can look a task up
// in O(1). An entry exists if and only if the task is Pending or Running: the
// completion path removes its own entry synchronously, and the Janitor sweeps
// defensively for anything that slipped through.
//
// The Registry never keeps a finished task alive on its own; it holds the
// same *Handle the worker holds, and drops it on removal.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Handle),
	}
}

// Add records the handle under its id.
func (r *Registry) Add(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[h.ID()] = h
}

// Get returns the handle registered under id, if any.
func (r *Registry) Get(id string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.entries[id]
	return h, ok
}

// Remove deletes the entry for id and reports whether it was present.
// Removal is idempotent, so the completion path and a concurrent sweep
// cannot double-remove.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// Len returns the number of registered tasks. The invariant is
// Len() == count of Pending+Running tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Handles returns a snapshot of the currently registered handles.
func (r *Registry) Handles() []*Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Handle, 0, len(r.entries))
	for _, h := range r.entries {
		out = append(out, h)
	}
	return out
}

// Sweep removes entries whose handle has already reached a terminal state.
// Such entries indicate a missed synchronous removal, so each one is reported
// through the callback before deletion. Returns the number of entries
// removed; zero means the registry is consistent.
func (r *Registry) Sweep(report func(h *Handle)) int {
	r.mu.Lock()
	var stale []*Handle
	for id, h := range r.entries {
		if h.State().Terminal() {
			stale = append(stale, h)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	// Report outside the lock: the callback typically logs.
	for _, h := range stale {
		if report != nil {
			report(h)
		}
	}
	return len(stale)
}
