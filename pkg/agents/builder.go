// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"

	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

// Builder proposes capital allocations for infrastructure projects.
type Builder struct {
	Base
}

// NewBuilder creates the default builder capability.
func NewBuilder(opts ...Option) *Builder {
	a := &Builder{}
	a.init("builder_agent_001", swarm.KindBuilder, opts...)
	return a
}

// Invoke allocates 80% of the available budget to the named proposal and
// reserves the remainder.
func (a *Builder) Invoke(ctx context.Context, shared map[string]any) (*swarm.Outcome, error) {
	proposal := stringValue(shared, "proposal", "solar_farm_optimization")
	budget := floatValue(shared, "budget", 1000000)

	allocated := budget * 0.8
	out := &swarm.Outcome{
		Confidence: 0.85,
		Summary:    fmt.Sprintf("Proposed %s with $%.0f allocation", proposal, allocated),
		ContextUpdates: map[string]any{
			"proposal_status":  "submitted",
			"budget_remaining": budget * 0.2,
		},
		Details: map[string]any{
			"proposal_id":      a.stamp("BUILD"),
			"type":             "capital_allocation",
			"target":           proposal,
			"budget_allocated": allocated,
			"roi_estimate":     0.15,
			"timeline":         "6 months",
		},
	}
	a.ShareContext(ctx, out.ContextUpdates)
	return out, nil
}
