// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cuttlefish-labs/swarm/pkg/errors"
)

// Metrics tracks workflow execution and ledger activity for production
// monitoring.
type Metrics struct {
	// appendCounter tracks ledger entries appended, by capability kind
	appendCounter metric.Int64Counter

	// invocationCounter tracks capability invocations by kind and outcome
	invocationCounter metric.Int64Counter

	// invocationDuration tracks capability invocation latency
	invocationDuration metric.Float64Histogram

	// workflowCounter tracks workflow completions by strategy and status
	workflowCounter metric.Int64Counter

	// errorCounter tracks errors by code and component
	errorCounter metric.Int64Counter

	mu sync.RWMutex
}

// NewMetrics creates a new metrics tracker with OTEL meters.
func NewMetrics(ctx context.Context) (*Metrics, error) {
	meter := otel.Meter("swarm/orchestrator")

	appendCounter, err := meter.Int64Counter(
		"swarm.trustgraph.appends",
		metric.WithDescription("Ledger entries appended by capability kind"),
	)
	if err != nil {
		return nil, err
	}

	invocationCounter, err := meter.Int64Counter(
		"swarm.capability.invocations",
		metric.WithDescription("Capability invocations by kind and outcome"),
	)
	if err != nil {
		return nil, err
	}

	invocationDuration, err := meter.Float64Histogram(
		"swarm.capability.duration",
		metric.WithDescription("Capability invocation latency"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	workflowCounter, err := meter.Int64Counter(
		"swarm.workflow.completions",
		metric.WithDescription("Workflow completions by strategy and status"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"swarm.errors.total",
		metric.WithDescription("Total errors by code and component"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		appendCounter:      appendCounter,
		invocationCounter:  invocationCounter,
		invocationDuration: invocationDuration,
		workflowCounter:    workflowCounter,
		errorCounter:       errorCounter,
	}, nil
}

// RecordAppend increments the ledger append counter for the given kind.
func (m *Metrics) RecordAppend(ctx context.Context, kind string) {
	if m == nil {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	m.appendCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("capability.kind", kind),
		),
	)
}

// RecordInvocation records one capability invocation with its outcome and
// latency.
func (m *Metrics) RecordInvocation(ctx context.Context, kind string, success bool, durationMs float64) {
	if m == nil {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	outcome := "success"
	if !success {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("capability.kind", kind),
		attribute.String("outcome", outcome),
	)
	m.invocationCounter.Add(ctx, 1, attrs)
	m.invocationDuration.Record(ctx, durationMs, attrs)
}

// RecordWorkflow increments the workflow completion counter.
func (m *Metrics) RecordWorkflow(ctx context.Context, strategy, status string) {
	if m == nil {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	m.workflowCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("workflow.strategy", strategy),
			attribute.String("workflow.status", status),
		),
	)
}

// RecordError increments the error counter for the given error and component.
func (m *Metrics) RecordError(ctx context.Context, err error, component string) {
	if m == nil || err == nil {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if se, ok := err.(*errors.SwarmError); ok {
		m.errorCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("error.code", string(se.Code)),
				attribute.String("component", component),
				attribute.String("recoverable", se.RecoverableString()),
			),
		)
	} else {
		// Generic error
		m.errorCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("error.code", "UNKNOWN"),
				attribute.String("component", component),
				attribute.String("recoverable", "unknown"),
			),
		)
	}
}
