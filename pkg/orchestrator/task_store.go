// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

// DefaultRetention is the number of tasks kept in memory when no capacity
// is configured.
const DefaultRetention = 1024

// TaskStore retains finished and in-flight tasks for status lookup. It is
// bounded: once capacity is reached the least recently read task is
// evicted. Reads return clones so callers never observe a task mid-run.
type TaskStore struct {
	tasks *lru.Cache[string, *swarm.Task]
}

// NewTaskStore creates a store bounded to capacity tasks. Non-positive
// capacities fall back to DefaultRetention.
func NewTaskStore(capacity int) (*TaskStore, error) {
	if capacity <= 0 {
		capacity = DefaultRetention
	}
	cache, err := lru.New[string, *swarm.Task](capacity)
	if err != nil {
		return nil, fmt.Errorf("task store: %w", err)
	}
	return &TaskStore{tasks: cache}, nil
}

// Put stores a snapshot of the task, replacing any previous snapshot.
func (s *TaskStore) Put(task *swarm.Task) {
	if task == nil || task.ID == "" {
		return
	}
	s.tasks.Add(task.ID, cloneTask(task))
}

// Get returns a clone of the stored task.
func (s *TaskStore) Get(taskID string) (*swarm.Task, bool) {
	task, ok := s.tasks.Get(taskID)
	if !ok {
		return nil, false
	}
	return cloneTask(task), true
}

// SetStatus updates the status of a stored task, if present.
func (s *TaskStore) SetStatus(taskID string, status swarm.Status) {
	task, ok := s.tasks.Get(taskID)
	if !ok {
		return
	}
	clone := cloneTask(task)
	clone.Status = status
	s.tasks.Add(taskID, clone)
}

// Len returns the number of retained tasks.
func (s *TaskStore) Len() int {
	return s.tasks.Len()
}

// cloneTask copies a task deep enough that concurrent mutation of the
// original cannot be observed through the copy. Outcome values are treated
// as immutable once produced.
func cloneTask(t *swarm.Task) *swarm.Task {
	clone := *t
	clone.Capabilities = append([]swarm.CapabilityKind(nil), t.Capabilities...)
	clone.Context = cloneContext(t.Context)
	clone.AuditLog = append([]string(nil), t.AuditLog...)
	if t.Result != nil {
		clone.Result = cloneResult(t.Result)
	}
	return &clone
}

func cloneResult(r *swarm.Result) *swarm.Result {
	clone := *r
	clone.Results = cloneOutcomes(r.Results)
	clone.Sequential = cloneOutcomes(r.Sequential)
	clone.Parallel = cloneOutcomes(r.Parallel)
	clone.FinalContext = cloneContext(r.FinalContext)
	return &clone
}

func cloneOutcomes(src map[swarm.CapabilityKind]*swarm.Outcome) map[swarm.CapabilityKind]*swarm.Outcome {
	if src == nil {
		return nil
	}
	dst := make(map[swarm.CapabilityKind]*swarm.Outcome, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
