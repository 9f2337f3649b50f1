// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"

	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

// Compliance assesses the regulatory posture of an operational target.
type Compliance struct {
	Base
	provider ComplianceProvider
}

// NewCompliance creates the regulatory compliance capability. A nil
// provider approves everything at the default score.
func NewCompliance(provider ComplianceProvider, opts ...Option) *Compliance {
	a := &Compliance{provider: provider}
	a.init("compliance_agent_001", swarm.KindCompliance, opts...)
	return a
}

// Invoke scores the target's regulatory posture. A score of 0.7 or better
// reads approved, and 0.8 or better lowers the risk level.
func (a *Compliance) Invoke(ctx context.Context, shared map[string]any) (*swarm.Outcome, error) {
	target := stringValue(shared, "target", "trading_operations")
	assessment := assessOrDefault(ctx, a.provider, shared, a.logger, a.id)

	risk := "medium"
	if assessment.Overall >= 0.8 {
		risk = "low"
	}
	status := "review"
	if assessment.Overall >= 0.7 {
		status = "approved"
	}

	out := &swarm.Outcome{
		Confidence: 0.9,
		Summary:    fmt.Sprintf("Regulatory status score %.2f", assessment.Overall),
		ContextUpdates: map[string]any{
			"regulatory_status": status,
			"risk_level":        risk,
		},
		Details: map[string]any{
			"compliance_id":      a.stamp("COMP"),
			"type":               "regulatory_compliance",
			"target":             target,
			"overall_compliance": assessment.Overall,
			"risk_assessment":    risk,
		},
	}
	a.ShareContext(ctx, out.ContextUpdates)
	return out, nil
}
