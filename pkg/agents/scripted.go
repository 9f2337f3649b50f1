// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"errors"
	"sync"

	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

// Scripted is a capability that replays a pre-defined sequence of outcomes.
// Useful for testing orchestration paths without the real fleet.
type Scripted struct {
	mu       sync.Mutex
	id       string
	kind     swarm.CapabilityKind
	Outcomes []*swarm.Outcome
	Err      error
	// CallCount tracks how many times Invoke has been called
	CallCount int
}

// NewScripted creates a Scripted capability with the given identity.
func NewScripted(id string, kind swarm.CapabilityKind, outcomes ...*swarm.Outcome) *Scripted {
	return &Scripted{
		id:       id,
		kind:     kind,
		Outcomes: outcomes,
	}
}

// ID implements swarm.Capability.
func (s *Scripted) ID() string {
	return s.id
}

// Kind implements swarm.Capability.
func (s *Scripted) Kind() swarm.CapabilityKind {
	return s.kind
}

// Invoke pops the next scripted outcome or returns the configured error.
func (s *Scripted) Invoke(ctx context.Context, shared map[string]any) (*swarm.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CallCount++

	if s.Err != nil {
		return nil, s.Err
	}

	if len(s.Outcomes) == 0 {
		return nil, errors.New("scripted capability: no more outcomes available")
	}

	// Pop the first outcome
	out := s.Outcomes[0]
	s.Outcomes = s.Outcomes[1:]
	return out, nil
}

// AddOutcome appends an outcome to the queue.
func (s *Scripted) AddOutcome(out *swarm.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Outcomes = append(s.Outcomes, out)
}

// Calls returns how many times Invoke has run.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CallCount
}
