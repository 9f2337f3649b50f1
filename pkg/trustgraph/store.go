// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package trustgraph

import (
	"context"
	"sync"

	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

// Filter limits ledger queries.
type Filter struct {
	// Kind restricts entries to actions of one capability kind.
	Kind swarm.CapabilityKind

	// Limit returns only the most recent matching entries. Results stay in
	// write order regardless.
	Limit int
}

// Store persists ledger entries. Implementations are safe for concurrent
// use, but Append stores exactly what it is given: chaining an entry onto
// the current head is the Ledger's job, and callers must go through it.
type Store interface {
	// Head returns the hash of the most recent entry. ok is false when the
	// store is empty. A read failure is reported as an error and must never
	// be mistaken for an empty chain.
	Head(ctx context.Context) (hash string, ok bool, err error)

	// Append persists one entry at the end of the chain.
	Append(ctx context.Context, e Entry) error

	// List returns entries matching the filter in write order.
	List(ctx context.Context, f Filter) ([]Entry, error)

	// Count returns the total number of entries, ignoring filters.
	Count(ctx context.Context) (int, error)

	Close() error
}

// MemoryStore keeps ledger entries in memory. Used by tests and ephemeral
// runs.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Head returns the hash of the last appended entry.
func (s *MemoryStore) Head(_ context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return "", false, nil
	}
	return s.entries[len(s.entries)-1].Hash, true, nil
}

// Append stores one entry.
func (s *MemoryStore) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

// List returns filtered entries in write order.
func (s *MemoryStore) List(_ context.Context, f Filter) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if f.Kind != "" && e.Action.Kind != f.Kind {
			continue
		}
		out = append(out, e)
	}
	return tailLimit(out, f.Limit), nil
}

// Count returns the number of stored entries.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// tailLimit keeps the last limit entries of a write-ordered slice.
func tailLimit(entries []Entry, limit int) []Entry {
	if limit > 0 && len(entries) > limit {
		return entries[len(entries)-limit:]
	}
	return entries
}
