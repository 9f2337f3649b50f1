// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"

	"github.com/cuttlefish-labs/swarm/pkg/policy"
	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

// Auditor applies the ESG policy to a finished workflow result. It is the
// closing capability of every audited workflow.
type Auditor struct {
	Base
	doc policy.Document
}

// NewAuditor creates the meta-audit capability over the given policy.
func NewAuditor(doc policy.Document, opts ...Option) *Auditor {
	a := &Auditor{doc: doc}
	a.init("meta_auditor_001", swarm.KindMetaAuditor, opts...)
	return a
}

// Invoke scores the workflow result under the "result" context key against
// the ESG policy. The pass verdict and score travel in the outcome details
// for the executor to act on.
func (a *Auditor) Invoke(_ context.Context, shared map[string]any) (*swarm.Outcome, error) {
	result, _ := shared["result"].(map[string]any)
	target := stringValue(shared, "task_title", "workflow")

	eval := a.doc.Evaluate(result)

	verdict := "failed"
	if eval.Passed {
		verdict = "passed"
	}

	return &swarm.Outcome{
		Confidence: eval.Score,
		Summary:    fmt.Sprintf("ESG compliance audit %s with score %.2f", verdict, eval.Score),
		Details: map[string]any{
			"audit_id":          a.stamp("AUDIT"),
			"type":              "meta_audit",
			"target":            target,
			"esg_score":         eval.Score,
			"compliance_score":  eval.Score,
			"passed":            eval.Passed,
			"pillars_addressed": eval.Pillars,
			"recommendations":   eval.Recommendations,
		},
	}, nil
}
