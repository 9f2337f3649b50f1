// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"

	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

// Permit checks infrastructure compliance before work is green-lit.
type Permit struct {
	Base
	provider ComplianceProvider
}

// NewPermit creates the permit capability. A nil provider approves
// everything at the default score.
func NewPermit(provider ComplianceProvider, opts ...Option) *Permit {
	a := &Permit{provider: provider}
	a.init("permit_agent_001", swarm.KindPermit, opts...)
	return a
}

// Invoke assesses the proposal against environmental, zoning and safety
// rules. Approval requires all three.
func (a *Permit) Invoke(ctx context.Context, shared map[string]any) (*swarm.Outcome, error) {
	proposal := stringValue(shared, "proposal", "solar_farm_optimization")
	assessment := assessOrDefault(ctx, a.provider, shared, a.logger, a.id)

	status := "approved"
	if !assessment.EnvironmentalApproved || !assessment.ZoningApproved || !assessment.SafetyApproved {
		status = "rejected"
	}

	out := &swarm.Outcome{
		Confidence: 0.85,
		Summary:    fmt.Sprintf("Compliance %s with score %.2f", status, assessment.Overall),
		ContextUpdates: map[string]any{
			"compliance_status": status,
			"compliance_score":  assessment.Overall,
		},
		Details: map[string]any{
			"compliance_id":          a.stamp("PERMIT"),
			"type":                   "infrastructure_compliance",
			"target":                 proposal,
			"environmental_approved": assessment.EnvironmentalApproved,
			"zoning_approved":        assessment.ZoningApproved,
			"safety_approved":        assessment.SafetyApproved,
			"overall_compliance":     assessment.Overall,
		},
	}
	a.ShareContext(ctx, out.ContextUpdates)
	return out, nil
}
