// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package orchestrator runs workflows across the capability fleet. The
// Executor dispatches a task's capabilities under one of three strategies,
// records every invocation in the TrustGraph ledger, and closes each run
// with the meta-audit phase. The Manager wraps the executor with task
// creation, retention and status lookup.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/cuttlefish-labs/swarm/pkg/errors"
	"github.com/cuttlefish-labs/swarm/pkg/policy"
	"github.com/cuttlefish-labs/swarm/pkg/registry"
	"github.com/cuttlefish-labs/swarm/pkg/resilience"
	"github.com/cuttlefish-labs/swarm/pkg/swarm"
	"github.com/cuttlefish-labs/swarm/pkg/telemetry"
	"github.com/cuttlefish-labs/swarm/pkg/trustgraph"
)

// DefaultWorkers caps concurrent capability invocations. Invocations block
// on external services, so the pool is a safety valve against scheduler
// starvation, not a correctness mechanism.
const DefaultWorkers = 10

// CompletionActor identifies the orchestrator itself in workflow_complete
// ledger entries.
const CompletionActor = "swarm-orchestrator"

// hybridPriority lists the kinds the hybrid strategy runs sequentially
// before fanning the rest out in parallel.
var hybridPriority = map[swarm.CapabilityKind]bool{
	swarm.KindBuilder: true,
	swarm.KindPermit:  true,
}

// Executor drives a task through its strategy and the closing audit phase.
type Executor struct {
	registry *registry.Registry
	ledger   *trustgraph.Ledger
	pol      policy.Document
	metrics  *telemetry.Metrics
	tracer   trace.Tracer
	logger   *slog.Logger
	sem      chan struct{}
	timeout  time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithWorkers bounds the number of concurrent capability invocations.
func WithWorkers(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.sem = make(chan struct{}, n)
		}
	}
}

// WithInvocationTimeout bounds each capability invocation. Zero disables
// the bound. A timed-out invocation is recorded as a per-kind failure; the
// capability's goroutine is left to drain.
func WithInvocationTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = d }
}

// WithPolicy sets the audit policy bundled into the meta-audit context.
func WithPolicy(doc policy.Document) ExecutorOption {
	return func(e *Executor) { e.pol = doc }
}

// WithMetrics attaches metric instruments. Nil metrics are safe; recording
// becomes a no-op.
func WithMetrics(m *telemetry.Metrics) ExecutorOption {
	return func(e *Executor) { e.metrics = m }
}

// WithExecutorLogger sets the logger used for workflow progress events.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = logger }
}

// NewExecutor creates an executor over the given fleet and ledger.
func NewExecutor(reg *registry.Registry, ledger *trustgraph.Ledger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry: reg,
		ledger:   ledger,
		pol:      policy.Default(),
		tracer:   otel.Tracer("swarm/orchestrator"),
		logger:   slog.Default(),
		sem:      make(chan struct{}, DefaultWorkers),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the task to a terminal status and returns its aggregate
// result.
//
// Capability failures never escape: each is recorded as an error outcome
// for its kind and the run continues. Ledger failures and strategy-dispatch
// failures abort the run, mark the task failed and skip the audit phase.
func (e *Executor) Execute(ctx context.Context, task *swarm.Task) (*swarm.Result, error) {
	if task == nil {
		return nil, errors.New(errors.CodeInvalidInput, "task is nil", nil)
	}
	if err := task.Validate(); err != nil {
		return nil, errors.New(errors.CodeInvalidInput, "invalid task", err).
			WithContext("task_id", task.ID)
	}
	if task.Status.Terminal() {
		return nil, errors.New(errors.CodeInvalidInput, "task already finished", nil).
			WithContext("task_id", task.ID).
			WithContext("status", string(task.Status))
	}

	ctx, runID := swarm.EnsureRunID(ctx)
	kinds := make([]string, len(task.Capabilities))
	for i, k := range task.Capabilities {
		kinds[i] = string(k)
	}
	ctx, span := e.tracer.Start(ctx, "Orchestrator.Execute",
		trace.WithAttributes(telemetry.WorkflowAttributes(task.ID, string(task.Strategy), "", kinds)...))
	defer span.End()

	task.Status = swarm.StatusRunning
	e.logger.Info("orchestrator.execute.start",
		"task_id", task.ID,
		"run_id", runID,
		"title", task.Title,
		"strategy", task.Strategy)

	var (
		result *swarm.Result
		err    error
	)
	switch task.Strategy {
	case swarm.StrategySequential:
		result, err = e.runSequential(ctx, task.Title, task.Capabilities, cloneContext(task.Context))
	case swarm.StrategyParallel:
		result, err = e.runParallel(ctx, task.Title, task.Capabilities, cloneContext(task.Context))
	case swarm.StrategyHybrid:
		result, err = e.runHybrid(ctx, task)
	default:
		err = errors.New(errors.CodeInvalidInput, fmt.Sprintf("unknown strategy %q", task.Strategy), nil)
	}
	if err != nil {
		task.Status = swarm.StatusFailed
		e.metrics.RecordError(ctx, err, "orchestrator")
		e.metrics.RecordWorkflow(ctx, string(task.Strategy), string(task.Status))
		e.logger.Error("orchestrator.execute.failed",
			"task_id", task.ID,
			"error", err)
		return nil, err
	}

	report, err := e.audit(ctx, task, result)
	if err != nil {
		task.Status = swarm.StatusFailed
		e.metrics.RecordError(ctx, err, "orchestrator")
		e.metrics.RecordWorkflow(ctx, string(task.Strategy), string(task.Status))
		return nil, err
	}

	task.Result = result
	task.AuditLog = append(task.AuditLog, report.Message)
	switch {
	case !report.Passed:
		task.Status = swarm.StatusFailed
	case report.Skipped:
		task.Status = swarm.StatusCompleted
	default:
		task.Status = swarm.StatusAudited
	}

	if err := e.logCompletion(ctx, task, runID, report); err != nil {
		task.Status = swarm.StatusFailed
		e.metrics.RecordError(ctx, err, "orchestrator")
		e.metrics.RecordWorkflow(ctx, string(task.Strategy), string(task.Status))
		return nil, err
	}

	e.metrics.RecordWorkflow(ctx, string(task.Strategy), string(task.Status))
	e.logger.Info("orchestrator.execute.done",
		"task_id", task.ID,
		"run_id", runID,
		"status", task.Status,
		"audit_score", report.Score)
	return result, nil
}

// runSequential invokes kinds in task order, threading each successful
// invocation's context updates into the next. Failures are recorded per
// kind and the walk continues.
func (e *Executor) runSequential(ctx context.Context, title string, kinds []swarm.CapabilityKind, shared map[string]any) (*swarm.Result, error) {
	results := make(map[swarm.CapabilityKind]*swarm.Outcome, len(kinds))

	for _, kind := range kinds {
		c, ok := e.registry.ByKind(kind)
		if !ok {
			results[kind] = &swarm.Outcome{Err: fmt.Sprintf("no capability registered for kind %s", kind)}
			continue
		}

		out := e.invoke(ctx, c, shared)
		results[kind] = out
		if !out.Failed() {
			for k, v := range out.ContextUpdates {
				shared[k] = v
			}
		}

		if err := e.logInvocation(ctx, c, title, out, shared); err != nil {
			return nil, err
		}
	}

	return &swarm.Result{
		Strategy:     swarm.StrategySequential,
		Results:      results,
		FinalContext: shared,
	}, nil
}

// runParallel fans all kinds out concurrently against the same base
// context. Siblings never observe each other's updates; updates are merged
// after the join, in task order.
func (e *Executor) runParallel(ctx context.Context, title string, kinds []swarm.CapabilityKind, base map[string]any) (*swarm.Result, error) {
	type branch struct {
		out       *swarm.Outcome
		ledgerErr error
	}
	branches := make([]branch, len(kinds))

	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(i int, kind swarm.CapabilityKind) {
			defer wg.Done()

			c, ok := e.registry.ByKind(kind)
			if !ok {
				branches[i].out = &swarm.Outcome{Err: fmt.Sprintf("no capability registered for kind %s", kind)}
				return
			}
			out := e.invoke(ctx, c, base)
			branches[i].out = out
			branches[i].ledgerErr = e.logInvocation(ctx, c, title, out, base)
		}(i, kind)
	}
	wg.Wait()

	// A sibling's ledger failure aborts the workflow, but only after every
	// branch has drained.
	results := make(map[swarm.CapabilityKind]*swarm.Outcome, len(kinds))
	var ledgerErr error
	for i, kind := range kinds {
		results[kind] = branches[i].out
		if branches[i].ledgerErr != nil && ledgerErr == nil {
			ledgerErr = branches[i].ledgerErr
		}
	}
	if ledgerErr != nil {
		return nil, ledgerErr
	}

	final := cloneContext(base)
	for _, kind := range kinds {
		if out := results[kind]; !out.Failed() {
			for k, v := range out.ContextUpdates {
				final[k] = v
			}
		}
	}

	return &swarm.Result{
		Strategy:     swarm.StrategyParallel,
		Results:      results,
		FinalContext: final,
	}, nil
}

// runHybrid runs the priority kinds sequentially, then the remainder in
// parallel over the sequential phase's final context.
func (e *Executor) runHybrid(ctx context.Context, task *swarm.Task) (*swarm.Result, error) {
	var priority, rest []swarm.CapabilityKind
	for _, kind := range task.Capabilities {
		if hybridPriority[kind] {
			priority = append(priority, kind)
		} else {
			rest = append(rest, kind)
		}
	}

	seq, err := e.runSequential(ctx, task.Title, priority, cloneContext(task.Context))
	if err != nil {
		return nil, err
	}
	if len(rest) == 0 {
		return &swarm.Result{
			Strategy:     swarm.StrategyHybrid,
			Results:      seq.Results,
			Sequential:   seq.Results,
			FinalContext: seq.FinalContext,
		}, nil
	}

	par, err := e.runParallel(ctx, task.Title, rest, cloneContext(seq.FinalContext))
	if err != nil {
		return nil, err
	}

	combined := make(map[swarm.CapabilityKind]*swarm.Outcome, len(seq.Results)+len(par.Results))
	for kind, out := range seq.Results {
		combined[kind] = out
	}
	for kind, out := range par.Results {
		combined[kind] = out
	}

	return &swarm.Result{
		Strategy:     swarm.StrategyHybrid,
		Results:      combined,
		Sequential:   seq.Results,
		Parallel:     par.Results,
		FinalContext: par.FinalContext,
	}, nil
}

// invoke runs one capability under the worker pool and the optional
// per-invocation timeout. It never returns nil and never panics: a thrown
// panic, a returned error and an explicit Outcome.Err all collapse into a
// failed outcome.
func (e *Executor) invoke(ctx context.Context, c swarm.Capability, shared map[string]any) *swarm.Outcome {
	select {
	case e.sem <- struct{}{}:
		defer func() { <-e.sem }()
	case <-ctx.Done():
		return &swarm.Outcome{Err: ctx.Err().Error()}
	}

	ctx, span := e.tracer.Start(ctx, "Orchestrator.Invoke",
		trace.WithAttributes(telemetry.CapabilityAttributes(string(c.Kind()), c.ID(), 0, false)...))
	defer span.End()

	start := time.Now()
	raw, err := resilience.WithTimeoutResult(ctx,
		resilience.TimeoutConfig{Duration: e.timeout, ErrorOnTimeout: true},
		func() (out any, ferr error) {
			defer func() {
				if r := recover(); r != nil {
					ferr = fmt.Errorf("capability panicked: %v\n%s", r, debug.Stack())
				}
			}()
			return c.Invoke(ctx, shared)
		})
	durationMs := float64(time.Since(start)) / float64(time.Millisecond)

	var out *swarm.Outcome
	if err != nil {
		out = &swarm.Outcome{Err: err.Error()}
	} else if o, ok := raw.(*swarm.Outcome); ok && o != nil {
		out = o
	} else {
		out = &swarm.Outcome{Err: "capability returned no outcome"}
	}

	span.SetAttributes(telemetry.CapabilityAttributes(string(c.Kind()), c.ID(), durationMs, !out.Failed())...)
	e.metrics.RecordInvocation(ctx, string(c.Kind()), !out.Failed(), durationMs)
	if out.Failed() {
		e.logger.Warn("orchestrator.invoke.failed",
			"capability", c.ID(),
			"kind", c.Kind(),
			"error", out.Err)
	}
	return out
}

// logInvocation appends one execute action to the ledger. Failed
// invocations are recorded too; only a ledger write failure is an error.
func (e *Executor) logInvocation(ctx context.Context, c swarm.Capability, title string, out *swarm.Outcome, shared map[string]any) error {
	act := swarm.NewAction(c.ID(), c.Kind(), swarm.VerbExecute, "workflow")
	act.Proposal = title
	act.Context = cloneContext(shared)
	if out.Failed() {
		act.Score = swarm.Float64(0)
		act.Comment = out.Err
	} else {
		act.Score = swarm.Float64(out.Confidence)
		act.Comment = out.Summary
	}

	entry, err := e.ledger.Append(ctx, act)
	if err != nil {
		return err
	}
	e.metrics.RecordAppend(ctx, string(c.Kind()))
	trace.SpanFromContext(ctx).AddEvent("trustgraph.append",
		trace.WithAttributes(telemetry.EntryAttributes(entry.EntryID, act.Verb, entry.Hash)...))
	return nil
}

// logCompletion appends the closing workflow_complete entry. The builder
// kind is carried for wire compatibility with existing ledgers; the actor
// field identifies the orchestrator.
func (e *Executor) logCompletion(ctx context.Context, task *swarm.Task, runID string, report auditReport) error {
	act := swarm.NewAction(CompletionActor, swarm.KindBuilder, swarm.VerbWorkflowComplete, "orchestrator")
	act.Proposal = task.Title
	act.Score = swarm.Float64(report.Score)
	act.Comment = fmt.Sprintf("workflow %s completed with status %s", task.Strategy, task.Status)
	act.Context = map[string]any{
		"task_id": task.ID,
		"run_id":  runID,
	}

	if _, err := e.ledger.Append(ctx, act); err != nil {
		return err
	}
	e.metrics.RecordAppend(ctx, string(swarm.KindBuilder))
	return nil
}

// cloneContext shallow-copies a shared context map.
func cloneContext(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// resultPayload converts a workflow result into the generic map shape the
// auditor scores.
func resultPayload(result *swarm.Result) map[string]any {
	raw, err := json.Marshal(result)
	if err != nil {
		return map[string]any{}
	}
	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return map[string]any{}
	}
	return payload
}
