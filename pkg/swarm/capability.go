package swarm

import "context"

// Capability is the contract every swarm member implements. Invoke receives
// the workflow's shared context and must treat it as read-only; changes are
// proposed through Outcome.ContextUpdates and merged by the orchestrator.
//
// A failed invocation may be reported either as a non-nil error or as an
// Outcome with Err set. The orchestrator treats both identically.
type Capability interface {
	// ID returns the stable identifier used to attribute ledger actions.
	ID() string

	// Kind returns the functional role of this capability.
	Kind() CapabilityKind

	// Invoke performs the capability's work against the shared context.
	Invoke(ctx context.Context, shared map[string]any) (*Outcome, error)
}

// Outcome is the structured result of a single capability invocation.
type Outcome struct {
	// Confidence is the capability's self-reported confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Summary is a human-readable one-line description of what was done.
	Summary string `json:"summary"`

	// ContextUpdates are merged into the shared context by strategies that
	// thread context between invocations.
	ContextUpdates map[string]any `json:"context_updates,omitempty"`

	// Err carries a structured failure reported by the capability itself.
	Err string `json:"error,omitempty"`

	// Details holds capability-specific result fields.
	Details map[string]any `json:"details,omitempty"`
}

// Failed reports whether the invocation ended in a capability failure.
func (o *Outcome) Failed() bool {
	return o == nil || o.Err != ""
}
