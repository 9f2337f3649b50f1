// Package swarm defines the domain model shared by the registry, the
// workflow orchestrator and the TrustGraph ledger: capability kinds,
// execution strategies, task lifecycle states and the capability contract.
package swarm

import "fmt"

// CapabilityKind identifies the functional role a capability plays in a
// workflow. The values are part of the persisted ledger format and must not
// change.
type CapabilityKind string

const (
	KindBuilder     CapabilityKind = "BuilderAgent"
	KindSignal      CapabilityKind = "SignalAgent"
	KindPermit      CapabilityKind = "PermitAgent"
	KindRefactor    CapabilityKind = "RefactorAgent"
	KindPredictive  CapabilityKind = "PredictiveAgent"
	KindCompliance  CapabilityKind = "ComplianceAgent"
	KindMetaAuditor CapabilityKind = "MetaAuditor"
)

// Kinds returns all capability kinds in a stable order.
func Kinds() []CapabilityKind {
	return []CapabilityKind{
		KindBuilder,
		KindSignal,
		KindPermit,
		KindRefactor,
		KindPredictive,
		KindCompliance,
		KindMetaAuditor,
	}
}

// Valid reports whether k is one of the known capability kinds.
func (k CapabilityKind) Valid() bool {
	switch k {
	case KindBuilder, KindSignal, KindPermit, KindRefactor,
		KindPredictive, KindCompliance, KindMetaAuditor:
		return true
	}
	return false
}

// ParseKind converts a wire value into a CapabilityKind.
func ParseKind(s string) (CapabilityKind, error) {
	k := CapabilityKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown capability kind %q", s)
	}
	return k, nil
}

// Strategy selects how a workflow dispatches its capabilities.
type Strategy string

const (
	// StrategySequential invokes capabilities one at a time in task order,
	// threading context updates from each into the next.
	StrategySequential Strategy = "sequential"

	// StrategyParallel invokes all capabilities concurrently against the
	// same initial context. Siblings never observe each other's updates.
	StrategyParallel Strategy = "parallel"

	// StrategyHybrid runs the priority capabilities sequentially first,
	// then fans the remainder out in parallel over the sequential phase's
	// final context.
	StrategyHybrid Strategy = "hybrid"
)

// ParseStrategy converts a wire value into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(s); st {
	case StrategySequential, StrategyParallel, StrategyHybrid:
		return st, nil
	}
	return "", fmt.Errorf("unknown workflow strategy %q", s)
}

// Status describes the lifecycle state of a workflow task.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"

	// StatusCompleted marks a task that finished without an audit because
	// no meta-auditor was registered.
	StatusCompleted Status = "completed"

	// StatusAudited marks a task whose aggregate result passed the
	// meta-audit.
	StatusAudited Status = "audited"

	StatusFailed Status = "failed"
)

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusAudited, StatusFailed:
		return true
	}
	return false
}

// Verbs recorded in ledger actions.
const (
	VerbExecute          = "execute"
	VerbAudit            = "audit"
	VerbWorkflowComplete = "workflow_complete"
)
