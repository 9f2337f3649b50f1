// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cuttlefish-labs/swarm/pkg/errors"
	"github.com/cuttlefish-labs/swarm/pkg/registry"
	"github.com/cuttlefish-labs/swarm/pkg/swarm"
	"github.com/cuttlefish-labs/swarm/pkg/trustgraph"
)

// Manager is the process-facing entry point to the swarm: it creates
// tasks, executes workflows, answers status queries and fronts the ledger.
// It is constructed explicitly with its dependencies; there is no
// package-level instance.
type Manager struct {
	registry *registry.Registry
	ledger   *trustgraph.Ledger
	executor *Executor
	tasks    *TaskStore
	logger   *slog.Logger

	// fleet builds the default capabilities on first use. Guarded by
	// initOnce so concurrent first callers register the fleet exactly once.
	fleet    func() []swarm.Capability
	initOnce sync.Once
	initErr  error
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithFleet sets the factory that lazily builds and registers the default
// capability fleet before first use.
func WithFleet(fleet func() []swarm.Capability) ManagerOption {
	return func(m *Manager) { m.fleet = fleet }
}

// WithManagerLogger sets the logger for task lifecycle events.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// NewManager wires the orchestration façade. retention bounds the number of
// tasks kept for status lookup; non-positive values use DefaultRetention.
func NewManager(reg *registry.Registry, ledger *trustgraph.Ledger, exec *Executor, retention int, opts ...ManagerOption) (*Manager, error) {
	tasks, err := NewTaskStore(retention)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "create task store", err)
	}
	m := &Manager{
		registry: reg,
		ledger:   ledger,
		executor: exec,
		tasks:    tasks,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// ensureInitialized registers the default fleet exactly once. A failed
// initialization is sticky: the fleet is never partially re-registered.
func (m *Manager) ensureInitialized() error {
	m.initOnce.Do(func() {
		if m.fleet == nil {
			return
		}
		caps := m.fleet()
		if err := m.registry.Reset(caps...); err != nil {
			m.initErr = errors.New(errors.CodeRegistryError, "initialize fleet", err)
			return
		}
		m.logger.Info("orchestrator.fleet.initialized", "capabilities", len(caps))
	})
	return m.initErr
}

// CreateTask builds and retains a pending task.
func (m *Manager) CreateTask(ctx context.Context, title, description string, strategy swarm.Strategy, kinds []swarm.CapabilityKind, taskCtx map[string]any) (*swarm.Task, error) {
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	task := swarm.NewTask(title, description, strategy, kinds, taskCtx)
	if err := task.Validate(); err != nil {
		return nil, errors.New(errors.CodeInvalidInput, "invalid task", err)
	}
	m.tasks.Put(task)
	m.logger.Info("orchestrator.task.created",
		"task_id", task.ID,
		"title", task.Title,
		"strategy", task.Strategy)
	return task, nil
}

// Execute runs the task and retains its final state for status lookup.
func (m *Manager) Execute(ctx context.Context, task *swarm.Task) (*swarm.Result, error) {
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errors.New(errors.CodeInvalidInput, "task is nil", nil)
	}

	m.tasks.SetStatus(task.ID, swarm.StatusRunning)
	result, err := m.executor.Execute(ctx, task)
	m.tasks.Put(task)
	return result, err
}

// Run creates and immediately executes a workflow. The task is returned in
// its terminal state together with the execution error, if any.
func (m *Manager) Run(ctx context.Context, title, description string, strategy swarm.Strategy, kinds []swarm.CapabilityKind, taskCtx map[string]any) (*swarm.Task, *swarm.Result, error) {
	task, err := m.CreateTask(ctx, title, description, strategy, kinds, taskCtx)
	if err != nil {
		return nil, nil, err
	}
	result, err := m.Execute(ctx, task)
	return task, result, err
}

// StatusSnapshot is the externally visible view of a task.
type StatusSnapshot struct {
	TaskID       string                 `json:"task_id"`
	Title        string                 `json:"title"`
	Status       swarm.Status           `json:"status"`
	Strategy     swarm.Strategy         `json:"strategy"`
	Capabilities []swarm.CapabilityKind `json:"capabilities"`
	CreatedAt    time.Time              `json:"created_at"`
	Result       *swarm.Result          `json:"result,omitempty"`
	AuditLog     []string               `json:"audit_log,omitempty"`
}

// Status returns a snapshot of the task, or a NOT_FOUND error for unknown
// or evicted task ids.
func (m *Manager) Status(taskID string) (StatusSnapshot, error) {
	task, ok := m.tasks.Get(taskID)
	if !ok {
		return StatusSnapshot{}, errors.New(errors.CodeNotFound, "workflow not found", nil).
			WithContext("task_id", taskID)
	}
	return StatusSnapshot{
		TaskID:       task.ID,
		Title:        task.Title,
		Status:       task.Status,
		Strategy:     task.Strategy,
		Capabilities: task.Capabilities,
		CreatedAt:    task.CreatedAt,
		Result:       task.Result,
		AuditLog:     task.AuditLog,
	}, nil
}

// Trace appends one externally supplied action to the ledger.
func (m *Manager) Trace(ctx context.Context, action swarm.Action) (trustgraph.Entry, error) {
	if !action.Kind.Valid() {
		return trustgraph.Entry{}, errors.New(errors.CodeInvalidInput, "unknown capability kind", nil).
			WithContext("kind", string(action.Kind))
	}
	if action.ActorID == "" {
		return trustgraph.Entry{}, errors.New(errors.CodeInvalidInput, "actor id is required", nil)
	}
	if action.Timestamp.IsZero() {
		action.Timestamp = time.Now().UTC()
	}
	return m.ledger.Append(ctx, action)
}

// Entries returns ledger entries matching the filter in write order.
func (m *Manager) Entries(ctx context.Context, f trustgraph.Filter) ([]trustgraph.Entry, error) {
	return m.ledger.Entries(ctx, f)
}

// Head returns the current ledger head hash. ok is false when the ledger
// is empty.
func (m *Manager) Head(ctx context.Context) (string, bool, error) {
	return m.ledger.Head(ctx)
}

// Verify re-validates the whole hash chain.
func (m *Manager) Verify(ctx context.Context) (trustgraph.VerifyReport, error) {
	return m.ledger.Verify(ctx)
}

// AgentInfo describes one registered fleet member.
type AgentInfo struct {
	AgentID string               `json:"agent_id"`
	Kind    swarm.CapabilityKind `json:"agent_type"`
	Status  string               `json:"status"`
}

// Agents lists the registered fleet. Initialization is triggered if it has
// not happened yet.
func (m *Manager) Agents() ([]AgentInfo, error) {
	if err := m.ensureInitialized(); err != nil {
		return nil, err
	}
	caps := m.registry.List()
	infos := make([]AgentInfo, 0, len(caps))
	for _, c := range caps {
		infos = append(infos, AgentInfo{
			AgentID: c.ID(),
			Kind:    c.Kind(),
			Status:  "active",
		})
	}
	return infos, nil
}
