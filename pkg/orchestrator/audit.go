// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/cuttlefish-labs/swarm/pkg/swarm"
	"github.com/cuttlefish-labs/swarm/pkg/telemetry"
)

// auditReport is the audit phase's verdict on a finished workflow.
type auditReport struct {
	Passed  bool
	Score   float64
	Message string

	// Skipped is set when no meta-auditor was registered. The task then
	// lands on completed instead of audited.
	Skipped bool
}

// audit runs the meta-audit phase over the aggregate result. With no
// auditor registered the phase passes trivially. An auditor that fails to
// run is a rejection, not an orchestration error; only a ledger write
// failure is returned as an error.
func (e *Executor) audit(ctx context.Context, task *swarm.Task, result *swarm.Result) (auditReport, error) {
	auditor, ok := e.registry.ByKind(swarm.KindMetaAuditor)
	if !ok {
		return auditReport{
			Passed:  true,
			Score:   1.0,
			Skipped: true,
			Message: "no auditor registered; audit skipped",
		}, nil
	}

	auditCtx := map[string]any{
		"task": map[string]any{
			"task_id":     task.ID,
			"title":       task.Title,
			"description": task.Description,
			"strategy":    string(task.Strategy),
			"priority":    task.Priority,
		},
		"task_title":   task.Title,
		"result":       resultPayload(result),
		"esg_criteria": e.pol.Criteria(),
	}

	out := e.invoke(ctx, auditor, auditCtx)

	report := auditReport{}
	if out.Failed() {
		report.Message = "audit failed: " + out.Err
	} else {
		report.Passed = boolDetail(out, "passed", true)
		report.Score = floatDetail(out, "compliance_score", out.Confidence)
		report.Message = out.Summary
		if report.Message == "" {
			report.Message = "audit completed"
		}
	}

	act := swarm.NewAction(auditor.ID(), swarm.KindMetaAuditor, swarm.VerbAudit, "meta_audit")
	act.Proposal = task.Title
	act.Score = swarm.Float64(report.Score)
	act.Comment = report.Message
	act.Context = map[string]any{"task_id": task.ID}

	entry, err := e.ledger.Append(ctx, act)
	if err != nil {
		return auditReport{}, err
	}
	e.metrics.RecordAppend(ctx, string(swarm.KindMetaAuditor))

	threshold := e.pol.PassThreshold
	trace.SpanFromContext(ctx).AddEvent("orchestrator.audit",
		trace.WithAttributes(telemetry.AuditAttributes(report.Score, threshold, report.Passed)...))
	e.logger.Info("orchestrator.audit",
		"task_id", task.ID,
		"entry_id", entry.EntryID,
		"score", report.Score,
		"passed", report.Passed)
	return report, nil
}

// boolDetail reads a boolean from the outcome details.
func boolDetail(out *swarm.Outcome, key string, fallback bool) bool {
	if v, ok := out.Details[key].(bool); ok {
		return v
	}
	return fallback
}

// floatDetail reads a number from the outcome details. JSON decoding hands
// back float64; scripted outcomes may carry ints.
func floatDetail(out *swarm.Outcome, key string, fallback float64) float64 {
	switch v := out.Details[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return fallback
}
