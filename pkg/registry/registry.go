// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry tracks the capability fleet available to workflows.
package registry

import (
	"fmt"
	"sync"

	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

// Registry holds at most one capability per kind. Lookup is O(1). When two
// capabilities of the same kind are registered, the first one wins; the
// fleet is expected to be assembled once at startup.
type Registry struct {
	mu    sync.RWMutex
	caps  map[swarm.CapabilityKind]swarm.Capability
	order []swarm.CapabilityKind
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{caps: make(map[swarm.CapabilityKind]swarm.Capability)}
}

// Register adds a capability to the fleet. Registering a second capability
// of an already covered kind keeps the first and reports no error.
func (r *Registry) Register(c swarm.Capability) error {
	if c == nil {
		return fmt.Errorf("capability is nil")
	}
	kind := c.Kind()
	if !kind.Valid() {
		return fmt.Errorf("unknown capability kind %q", kind)
	}
	if c.ID() == "" {
		return fmt.Errorf("capability id is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.caps[kind]; exists {
		return nil
	}
	r.caps[kind] = c
	r.order = append(r.order, kind)
	return nil
}

// ByKind returns the capability registered for kind.
func (r *Registry) ByKind(kind swarm.CapabilityKind) (swarm.Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[kind]
	return c, ok
}

// List returns the registered capabilities in registration order.
func (r *Registry) List() []swarm.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]swarm.Capability, 0, len(r.order))
	for _, kind := range r.order {
		out = append(out, r.caps[kind])
	}
	return out
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.caps)
}

// Reset clears the registry and registers the given capabilities. It
// returns the first registration error encountered.
func (r *Registry) Reset(caps ...swarm.Capability) error {
	r.mu.Lock()
	r.caps = make(map[swarm.CapabilityKind]swarm.Capability, len(caps))
	r.order = r.order[:0]
	r.mu.Unlock()

	for _, c := range caps {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}
