// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"testing"

	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

type fakeCapability struct {
	id   string
	kind swarm.CapabilityKind
}

func (f fakeCapability) ID() string                 { return f.id }
func (f fakeCapability) Kind() swarm.CapabilityKind { return f.kind }
func (f fakeCapability) Invoke(context.Context, map[string]any) (*swarm.Outcome, error) {
	return &swarm.Outcome{Confidence: 1, Summary: "noop"}, nil
}

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	if err := r.Register(fakeCapability{id: "builder-1", kind: swarm.KindBuilder}); err != nil {
		t.Fatalf("register: %v", err)
	}

	c, ok := r.ByKind(swarm.KindBuilder)
	if !ok {
		t.Fatalf("expected builder registered")
	}
	if c.ID() != "builder-1" {
		t.Fatalf("expected builder-1, got %s", c.ID())
	}
	if _, ok := r.ByKind(swarm.KindSignal); ok {
		t.Fatalf("signal should be absent")
	}
}

func TestRegisterFirstWinsPerKind(t *testing.T) {
	r := New()
	if err := r.Register(fakeCapability{id: "builder-1", kind: swarm.KindBuilder}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(fakeCapability{id: "builder-2", kind: swarm.KindBuilder}); err != nil {
		t.Fatalf("duplicate kind must not error: %v", err)
	}

	c, _ := r.ByKind(swarm.KindBuilder)
	if c.ID() != "builder-1" {
		t.Fatalf("first registration must win, got %s", c.ID())
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 capability, got %d", r.Len())
	}
}

func TestRegisterRejectsInvalid(t *testing.T) {
	r := New()
	if err := r.Register(nil); err == nil {
		t.Fatalf("expected error for nil capability")
	}
	if err := r.Register(fakeCapability{id: "x", kind: "GhostAgent"}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	if err := r.Register(fakeCapability{id: "", kind: swarm.KindBuilder}); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestListKeepsRegistrationOrder(t *testing.T) {
	r := New()
	fleet := []fakeCapability{
		{id: "permit-1", kind: swarm.KindPermit},
		{id: "builder-1", kind: swarm.KindBuilder},
		{id: "signal-1", kind: swarm.KindSignal},
	}
	for _, c := range fleet {
		if err := r.Register(c); err != nil {
			t.Fatalf("register %s: %v", c.id, err)
		}
	}

	got := r.List()
	if len(got) != 3 {
		t.Fatalf("expected 3 capabilities, got %d", len(got))
	}
	for i, c := range fleet {
		if got[i].ID() != c.id {
			t.Fatalf("position %d: expected %s, got %s", i, c.id, got[i].ID())
		}
	}
}

func TestReset(t *testing.T) {
	r := New()
	if err := r.Register(fakeCapability{id: "builder-1", kind: swarm.KindBuilder}); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := r.Reset(
		fakeCapability{id: "signal-1", kind: swarm.KindSignal},
		fakeCapability{id: "permit-1", kind: swarm.KindPermit},
	)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok := r.ByKind(swarm.KindBuilder); ok {
		t.Fatalf("reset must clear previous registrations")
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 capabilities after reset, got %d", r.Len())
	}
}
