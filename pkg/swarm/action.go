package swarm

import "time"

// Action is one attributable event emitted by an actor. Actions are the only
// payload the TrustGraph ledger records; once appended they are immutable.
type Action struct {
	ActorID   string         `json:"actor_id"`
	Kind      CapabilityKind `json:"kind"`
	Verb      string         `json:"verb"`
	Tool      string         `json:"tool"`
	Vault     string         `json:"vault,omitempty"`
	Proposal  string         `json:"proposal,omitempty"`
	Score     *float64       `json:"score,omitempty"`
	Comment   string         `json:"comment,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Context   map[string]any `json:"context,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewAction builds an Action stamped with the current UTC time. Optional
// fields are set on the returned value before it is handed to the ledger.
func NewAction(actorID string, kind CapabilityKind, verb, tool string) Action {
	return Action{
		ActorID:   actorID,
		Kind:      kind,
		Verb:      verb,
		Tool:      tool,
		Timestamp: time.Now().UTC(),
	}
}

// Float64 returns a pointer to v. Convenience for optional scores.
func Float64(v float64) *float64 { return &v }
