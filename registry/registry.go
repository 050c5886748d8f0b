// Package registry holds the set of registered agents, indexed by id and
// by declared capability, for lookup during scheduling. The registry is
// written at registration time and read concurrently while generations
// execute, so all access goes through a read-write mutex.
package registry

import (
	"sync"

	"github.com/agenthive/hive/core"
)

// Registry indexes agents by id and by capability. Construct via New and
// pass by reference; there is no package-level instance.
type Registry struct {
	mu           sync.RWMutex
	agents       map[string]core.Agent
	order        []string
	byCapability map[core.Capability][]string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		agents:       make(map[string]core.Agent),
		byCapability: make(map[core.Capability][]string),
	}
}

// Register inserts the agent under its id and every declared capability.
// Re-registering an id replaces the previous entry without duplicating any
// capability-index entries.
func (r *Registry) Register(a core.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := a.ID()
	if _, exists := r.agents[id]; exists {
		r.removeFromIndexesLocked(id)
	} else {
		r.order = append(r.order, id)
	}
	r.agents[id] = a

	for _, c := range a.Capabilities() {
		r.byCapability[c] = append(r.byCapability[c], id)
	}
}

// removeFromIndexesLocked strips an id from every capability bucket.
// Caller must hold the write lock.
func (r *Registry) removeFromIndexesLocked(id string) {
	for c, ids := range r.byCapability {
		kept := ids[:0]
		for _, existing := range ids {
			if existing != id {
				kept = append(kept, existing)
			}
		}
		if len(kept) == 0 {
			delete(r.byCapability, c)
		} else {
			r.byCapability[c] = kept
		}
	}
}

// Get returns the agent registered under id.
func (r *Registry) Get(id string) (core.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	return a, ok
}

// FindByCapability returns every agent matching the capability and
// requirements, in registration order so selection is deterministic.
// An empty slice means no match; there is no implicit fallback.
func (r *Registry) FindByCapability(capability core.Capability, req core.Requirements) []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []core.Agent
	for _, id := range r.byCapability[capability] {
		a := r.agents[id]
		if a.CanHandle(capability, req) {
			matches = append(matches, a)
		}
	}
	return matches
}

// All enumerates every registered agent in registration order. Used for
// housekeeping and health sweeps.
func (r *Registry) All() []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agents := make([]core.Agent, 0, len(r.order))
	for _, id := range r.order {
		agents = append(agents, r.agents[id])
	}
	return agents
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
