// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides OpenTelemetry integration with rich attributes
// for workflow and ledger observability.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for swarm telemetry.
// These follow OpenTelemetry naming conventions where applicable.
const (
	// Task attributes
	AttrTaskID       = "swarm.task.id"
	AttrTaskTitle    = "swarm.task.title"
	AttrTaskStrategy = "swarm.task.strategy"
	AttrTaskStatus   = "swarm.task.status"
	AttrTaskPriority = "swarm.task.priority"

	// Run attributes
	AttrRunID = "swarm.run.id"

	// Capability attributes
	AttrCapabilityID         = "swarm.capability.id"
	AttrCapabilityKind       = "swarm.capability.kind"
	AttrCapabilityConfidence = "swarm.capability.confidence"
	AttrCapabilityDurationMs = "swarm.capability.duration_ms"
	AttrCapabilitySuccess    = "swarm.capability.success"

	// Ledger attributes
	AttrEntryID       = "swarm.entry.id"
	AttrEntryVerb     = "swarm.entry.verb"
	AttrEntryHash     = "swarm.entry.hash"
	AttrLedgerBackend = "swarm.ledger.backend"
	AttrLedgerLength  = "swarm.ledger.length"

	// Audit attributes
	AttrAuditScore     = "swarm.audit.score"
	AttrAuditThreshold = "swarm.audit.threshold"
	AttrAuditPassed    = "swarm.audit.passed"

	// Workflow attributes
	AttrWorkflowStrategy = "swarm.workflow.strategy"
	AttrWorkflowStatus   = "swarm.workflow.status"
	AttrWorkflowKinds    = "swarm.workflow.kinds"
)

// TaskAttributes returns attributes for task tracking.
func TaskAttributes(taskID, title, strategy, status string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{}
	if taskID != "" {
		attrs = append(attrs, attribute.String(AttrTaskID, taskID))
	}
	if title != "" {
		// Truncate long titles
		if len(title) > 200 {
			title = title[:200] + "..."
		}
		attrs = append(attrs, attribute.String(AttrTaskTitle, title))
	}
	if strategy != "" {
		attrs = append(attrs, attribute.String(AttrTaskStrategy, strategy))
	}
	if status != "" {
		attrs = append(attrs, attribute.String(AttrTaskStatus, status))
	}
	return attrs
}

// CapabilityAttributes returns attributes for a capability invocation span.
func CapabilityAttributes(kind, id string, durationMs float64, success bool) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrCapabilityKind, kind),
		attribute.Float64(AttrCapabilityDurationMs, durationMs),
		attribute.Bool(AttrCapabilitySuccess, success),
	}
	if id != "" {
		attrs = append(attrs, attribute.String(AttrCapabilityID, id))
	}
	return attrs
}

// EntryAttributes returns attributes for a ledger append span.
func EntryAttributes(entryID, verb, hash string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrEntryID, entryID),
	}
	if verb != "" {
		attrs = append(attrs, attribute.String(AttrEntryVerb, verb))
	}
	if hash != "" {
		attrs = append(attrs, attribute.String(AttrEntryHash, hash))
	}
	return attrs
}

// AuditAttributes returns attributes for the audit phase.
func AuditAttributes(score, threshold float64, passed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64(AttrAuditScore, score),
		attribute.Float64(AttrAuditThreshold, threshold),
		attribute.Bool(AttrAuditPassed, passed),
	}
}

// WorkflowAttributes returns attributes for a workflow execution span.
func WorkflowAttributes(taskID, strategy, status string, kinds []string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{}
	if taskID != "" {
		attrs = append(attrs, attribute.String(AttrTaskID, taskID))
	}
	if strategy != "" {
		attrs = append(attrs, attribute.String(AttrWorkflowStrategy, strategy))
	}
	if status != "" {
		attrs = append(attrs, attribute.String(AttrWorkflowStatus, status))
	}
	if len(kinds) > 0 {
		attrs = append(attrs, attribute.StringSlice(AttrWorkflowKinds, kinds))
	}
	return attrs
}
