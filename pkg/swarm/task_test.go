package swarm

import "testing"

func TestNewTaskDefaults(t *testing.T) {
	task := NewTask("deploy", "", StrategySequential, []CapabilityKind{KindBuilder}, nil)
	if task.ID == "" {
		t.Fatalf("expected generated id")
	}
	if task.Status != StatusPending {
		t.Fatalf("expected pending status, got %s", task.Status)
	}
	if task.Priority != DefaultPriority {
		t.Fatalf("expected default priority, got %d", task.Priority)
	}
	if task.Context == nil {
		t.Fatalf("expected non-nil context")
	}
	if task.CreatedAt.IsZero() {
		t.Fatalf("expected creation time")
	}
}

func TestTaskValidate(t *testing.T) {
	valid := func() *Task {
		return NewTask("t", "", StrategyParallel, []CapabilityKind{KindBuilder, KindPermit}, nil)
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid task rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Task)
	}{
		{"empty title", func(task *Task) { task.Title = "" }},
		{"bad strategy", func(task *Task) { task.Strategy = "round-robin" }},
		{"no capabilities", func(task *Task) { task.Capabilities = nil }},
		{"unknown kind", func(task *Task) { task.Capabilities = []CapabilityKind{"GhostAgent"} }},
		{"priority too low", func(task *Task) { task.Priority = 0 }},
		{"priority too high", func(task *Task) { task.Priority = 11 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := valid()
			tc.mutate(task)
			if err := task.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestResultFailures(t *testing.T) {
	r := &Result{
		Strategy: StrategySequential,
		Results: map[CapabilityKind]*Outcome{
			KindBuilder: {Confidence: 0.8, Summary: "ok"},
			KindSignal:  {Err: "feed unavailable"},
			KindPermit:  nil,
		},
	}
	failed := r.Failures()
	if len(failed) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(failed))
	}
	var nilResult *Result
	if got := nilResult.Failures(); got != nil {
		t.Fatalf("expected nil failures on nil result")
	}
}

func TestOutcomeFailed(t *testing.T) {
	if (&Outcome{Summary: "ok"}).Failed() {
		t.Fatalf("healthy outcome reported failed")
	}
	if !(&Outcome{Err: "boom"}).Failed() {
		t.Fatalf("expected failure when Err set")
	}
	var o *Outcome
	if !o.Failed() {
		t.Fatalf("nil outcome should count as failed")
	}
}
