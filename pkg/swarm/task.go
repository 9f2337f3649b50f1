package swarm

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultPriority is assigned when a task is created without one.
const DefaultPriority = 5

// Task is one unit of orchestrated work: a set of capabilities executed
// under a strategy against a shared context.
type Task struct {
	ID           string           `json:"task_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	Strategy     Strategy         `json:"strategy"`
	Capabilities []CapabilityKind `json:"capabilities"`
	Context      map[string]any   `json:"context,omitempty"`
	Priority     int              `json:"priority"`
	CreatedAt    time.Time        `json:"created_at"`
	Status       Status           `json:"status"`
	Result       *Result          `json:"result,omitempty"`

	// AuditLog collects human-readable lines describing audit decisions.
	// Lines are only ever appended.
	AuditLog []string `json:"audit_log,omitempty"`
}

// NewTask creates a pending task with a generated ID.
func NewTask(title, description string, strategy Strategy, kinds []CapabilityKind, taskCtx map[string]any) *Task {
	if taskCtx == nil {
		taskCtx = map[string]any{}
	}
	return &Task{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  description,
		Strategy:     strategy,
		Capabilities: kinds,
		Context:      taskCtx,
		Priority:     DefaultPriority,
		CreatedAt:    time.Now().UTC(),
		Status:       StatusPending,
	}
}

// Validate checks the task is well formed before execution.
func (t *Task) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("task title is required")
	}
	if _, err := ParseStrategy(string(t.Strategy)); err != nil {
		return err
	}
	if len(t.Capabilities) == 0 {
		return fmt.Errorf("task requires at least one capability")
	}
	for _, k := range t.Capabilities {
		if !k.Valid() {
			return fmt.Errorf("unknown capability kind %q", k)
		}
	}
	if t.Priority < 1 || t.Priority > 10 {
		return fmt.Errorf("priority %d out of range [1, 10]", t.Priority)
	}
	return nil
}

// Result aggregates the outcome of one workflow run. For sequential and
// parallel runs only Results and FinalContext are populated. Hybrid runs
// additionally carry the two phase results and the combined view.
type Result struct {
	Strategy     Strategy                    `json:"strategy"`
	Results      map[CapabilityKind]*Outcome `json:"results,omitempty"`
	FinalContext map[string]any              `json:"final_context,omitempty"`
	Sequential   map[CapabilityKind]*Outcome `json:"sequential_results,omitempty"`
	Parallel     map[CapabilityKind]*Outcome `json:"parallel_results,omitempty"`
}

// Failures returns the kinds whose invocation failed, in no particular
// order.
func (r *Result) Failures() []CapabilityKind {
	if r == nil {
		return nil
	}
	var out []CapabilityKind
	for kind, o := range r.Results {
		if o.Failed() {
			out = append(out, kind)
		}
	}
	return out
}
