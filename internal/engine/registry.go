// Package engine converts raw counter reads into rates and bounded
// per-interface history. It owns all mutable monitoring state; the
// rendering layer only ever sees copies.
package engine

import (
	"sync"

	"github.com/nozo-moto/nbmon/pkg/types"
)

// Registry tracks the known interface set across enumerations. The
// set is diffable: interfaces appear and vanish between calls. A
// vanished interface is kept for exactly one reconcile round so the
// display can show it as removed before it is dropped.
type Registry struct {
	mu      sync.RWMutex
	current map[types.InterfaceID]types.InterfaceDescriptor
	order   []types.InterfaceID
	removed map[types.InterfaceID]types.InterfaceDescriptor
}

func NewRegistry() *Registry {
	return &Registry{
		current: make(map[types.InterfaceID]types.InterfaceDescriptor),
		removed: make(map[types.InterfaceID]types.InterfaceDescriptor),
	}
}

// Reconcile replaces the known set with a fresh enumeration and
// reports the difference. IDs returned in dropped left the grace
// period this round; their per-interface state can be discarded.
func (r *Registry) Reconcile(descs []types.InterfaceDescriptor) (appeared, vanished, dropped []types.InterfaceID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[types.InterfaceID]types.InterfaceDescriptor, len(descs))
	order := make([]types.InterfaceID, 0, len(descs))
	for _, d := range descs {
		next[d.ID] = d
		order = append(order, d.ID)
	}

	for id := range next {
		if _, ok := r.current[id]; !ok {
			appeared = append(appeared, id)
		}
	}

	nowRemoved := make(map[types.InterfaceID]types.InterfaceDescriptor)
	for id, d := range r.current {
		if _, ok := next[id]; !ok {
			vanished = append(vanished, id)
			nowRemoved[id] = d
		}
	}

	// Whatever survived the previous grace round is gone for good,
	// unless the platform brought it back in this enumeration.
	for id := range r.removed {
		if _, ok := next[id]; !ok {
			dropped = append(dropped, id)
		}
	}

	r.current = next
	r.order = order
	r.removed = nowRemoved
	return appeared, vanished, dropped
}

// IDs returns the current interface ids in enumeration order.
func (r *Registry) IDs() []types.InterfaceID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]types.InterfaceID(nil), r.order...)
}

// Snapshot returns copies of the current descriptors in enumeration
// order.
func (r *Registry) Snapshot() []types.InterfaceDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descs := make([]types.InterfaceDescriptor, 0, len(r.order))
	for _, id := range r.order {
		descs = append(descs, r.current[id])
	}
	return descs
}

// Removed returns the interfaces currently in their grace round.
func (r *Registry) Removed() []types.InterfaceDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descs := make([]types.InterfaceDescriptor, 0, len(r.removed))
	for _, d := range r.removed {
		descs = append(descs, d)
	}
	return descs
}

// Lookup returns the descriptor for id if it is currently known.
func (r *Registry) Lookup(id types.InterfaceID) (types.InterfaceDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.current[id]
	return d, ok
}
