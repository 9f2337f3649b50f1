// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the swarm over HTTP: tracing actions into the
// TrustGraph, running workflows, querying the ledger and looking up
// workflow status.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	serrors "github.com/cuttlefish-labs/swarm/pkg/errors"
	"github.com/cuttlefish-labs/swarm/pkg/orchestrator"
	"github.com/cuttlefish-labs/swarm/pkg/swarm"
	"github.com/cuttlefish-labs/swarm/pkg/trustgraph"
)

// Config for the HTTP API handler.
type Config struct {
	Manager *orchestrator.Manager

	// Health checkers run by GET /healthz. Optional.
	Health []swarm.HealthChecker
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"workflow not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope returned by every operation.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the swarm API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Manager == nil {
		return nil, serrors.New(serrors.CodeInvalidInput, "server requires a manager", nil)
	}

	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	hcfg := huma.DefaultConfig("Swarm Protocol API", "1.0.0")
	api := humachi.New(router, hcfg)

	registerHealth(api, cfg.Health)
	registerTrace(api, cfg.Manager)
	registerWorkflow(api, cfg.Manager)
	registerTrustGraph(api, cfg.Manager)
	registerAgents(api, cfg.Manager)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// handleError converts internal errors into the API envelope. SwarmError
// codes carry their own HTTP status mapping.
func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	se := serrors.AsSwarmError(err)
	return newAPIError(se.StatusCode, strings.ToLower(string(se.Code)), se.Message, se.Context)
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerHealth(api huma.API, checkers []swarm.HealthChecker) {
	type componentHealth struct {
		Component string `json:"component"`
		Status    string `json:"status"`
		Message   string `json:"message,omitempty"`
	}
	type healthBody struct {
		Status     string            `json:"status"`
		Components []componentHealth `json:"components,omitempty"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/healthz",
		Summary:     "Component health",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body healthBody `json:"body"`
	}, error) {
		body := healthBody{Status: string(swarm.HealthHealthy)}
		for _, checker := range checkers {
			res := checker.Check(ctx)
			body.Components = append(body.Components, componentHealth{
				Component: res.Component,
				Status:    string(res.Status),
				Message:   res.Message,
			})
			if res.Status == swarm.HealthUnhealthy {
				body.Status = string(swarm.HealthUnhealthy)
			} else if res.Status == swarm.HealthDegraded && body.Status == string(swarm.HealthHealthy) {
				body.Status = string(swarm.HealthDegraded)
			}
		}
		return &struct {
			Body healthBody `json:"body"`
		}{Body: body}, nil
	})
}

// TraceRequest logs one externally observed action into the TrustGraph.
type TraceRequest struct {
	Agent    string   `json:"agent" example:"builder_agent_001" doc:"Actor identifier"`
	Kind     string   `json:"agent_type,omitempty" example:"BuilderAgent" doc:"Capability kind; defaults to BuilderAgent"`
	Action   string   `json:"action" example:"execute"`
	Tool     string   `json:"tool" example:"vault_dashboard"`
	Vault    string   `json:"vault,omitempty"`
	Proposal string   `json:"proposal,omitempty"`
	Score    *float64 `json:"score,omitempty"`
	Comment  string   `json:"comment,omitempty"`
}

func registerTrace(api huma.API, m *orchestrator.Manager) {
	type traceBody struct {
		Status string           `json:"status"`
		Entry  trustgraph.Entry `json:"entry"`
	}
	huma.Register(api, huma.Operation{
		OperationID:   "swarm-trace",
		Method:        http.MethodPost,
		Path:          "/swarm/trace",
		Summary:       "Log an action to the TrustGraph",
		DefaultStatus: http.StatusOK,
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Body TraceRequest `json:"body"`
	}) (*struct {
		Body traceBody `json:"body"`
	}, error) {
		kind := swarm.KindBuilder
		if input.Body.Kind != "" {
			parsed, err := swarm.ParseKind(input.Body.Kind)
			if err != nil {
				return nil, handleError(serrors.New(serrors.CodeInvalidInput, err.Error(), nil))
			}
			kind = parsed
		}

		act := swarm.NewAction(input.Body.Agent, kind, input.Body.Action, input.Body.Tool)
		act.Vault = input.Body.Vault
		act.Proposal = input.Body.Proposal
		act.Score = input.Body.Score
		act.Comment = input.Body.Comment

		entry, err := m.Trace(ctx, act)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body traceBody `json:"body"`
		}{Body: traceBody{Status: "logged", Entry: entry}}, nil
	})
}

// WorkflowRequest creates and runs one workflow.
type WorkflowRequest struct {
	Title       string         `json:"title" minLength:"1"`
	Description string         `json:"description,omitempty"`
	Strategy    string         `json:"workflow_type" example:"sequential" doc:"sequential, parallel or hybrid"`
	Agents      []string       `json:"agents" minItems:"1" doc:"Capability kinds in invocation order"`
	Context     map[string]any `json:"context,omitempty"`
}

func registerWorkflow(api huma.API, m *orchestrator.Manager) {
	type workflowBody struct {
		TaskID   string        `json:"task_id"`
		Status   swarm.Status  `json:"status"`
		Result   *swarm.Result `json:"result,omitempty"`
		AuditLog []string      `json:"audit_log,omitempty"`
	}
	huma.Register(api, huma.Operation{
		OperationID:   "swarm-workflow",
		Method:        http.MethodPost,
		Path:          "/swarm/workflow",
		Summary:       "Create and execute a workflow",
		DefaultStatus: http.StatusOK,
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Body WorkflowRequest `json:"body"`
	}) (*struct {
		Body workflowBody `json:"body"`
	}, error) {
		strategy, err := swarm.ParseStrategy(input.Body.Strategy)
		if err != nil {
			return nil, handleError(serrors.New(serrors.CodeInvalidInput, err.Error(), nil))
		}
		kinds := make([]swarm.CapabilityKind, 0, len(input.Body.Agents))
		for _, raw := range input.Body.Agents {
			kind, err := swarm.ParseKind(raw)
			if err != nil {
				return nil, handleError(serrors.New(serrors.CodeInvalidInput, err.Error(), nil))
			}
			kinds = append(kinds, kind)
		}

		task, result, err := m.Run(ctx, input.Body.Title, input.Body.Description, strategy, kinds, input.Body.Context)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body workflowBody `json:"body"`
		}{Body: workflowBody{
			TaskID:   task.ID,
			Status:   task.Status,
			Result:   result,
			AuditLog: task.AuditLog,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "swarm-workflow-status",
		Method:      http.MethodGet,
		Path:        "/swarm/workflow/{task_id}",
		Summary:     "Workflow status by task id",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		TaskID string `path:"task_id"`
	}) (*struct {
		Body orchestrator.StatusSnapshot `json:"body"`
	}, error) {
		snap, err := m.Status(input.TaskID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body orchestrator.StatusSnapshot `json:"body"`
		}{Body: snap}, nil
	})
}

func registerTrustGraph(api huma.API, m *orchestrator.Manager) {
	type trustGraphBody struct {
		Entries    []trustgraph.Entry `json:"entries"`
		TotalCount int                `json:"total_count"`
		LatestHash string             `json:"latest_hash,omitempty"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "swarm-trustgraph",
		Method:      http.MethodGet,
		Path:        "/swarm/trustgraph",
		Summary:     "Read TrustGraph entries",
		Errors:      []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Kind  string `query:"kind" doc:"Filter by capability kind"`
		Limit int    `query:"limit" default:"100" maximum:"1000" doc:"Most recent entries to return"`
	}) (*struct {
		Body trustGraphBody `json:"body"`
	}, error) {
		filter := trustgraph.Filter{Limit: input.Limit}
		if input.Kind != "" {
			kind, err := swarm.ParseKind(input.Kind)
			if err != nil {
				return nil, handleError(serrors.New(serrors.CodeInvalidInput, err.Error(), nil))
			}
			filter.Kind = kind
		}

		entries, err := m.Entries(ctx, filter)
		if err != nil {
			return nil, handleError(err)
		}
		body := trustGraphBody{
			Entries:    entries,
			TotalCount: len(entries),
		}
		if head, ok, err := m.Head(ctx); err == nil && ok {
			body.LatestHash = head
		}
		return &struct {
			Body trustGraphBody `json:"body"`
		}{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "swarm-trustgraph-verify",
		Method:      http.MethodGet,
		Path:        "/swarm/trustgraph/verify",
		Summary:     "Verify TrustGraph chain integrity",
		Errors:      []int{http.StatusInternalServerError},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body trustgraph.VerifyReport `json:"body"`
	}, error) {
		report, err := m.Verify(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body trustgraph.VerifyReport `json:"body"`
		}{Body: report}, nil
	})
}

func registerAgents(api huma.API, m *orchestrator.Manager) {
	type agentsBody struct {
		Agents []orchestrator.AgentInfo `json:"agents"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "swarm-agents",
		Method:      http.MethodGet,
		Path:        "/swarm/agents",
		Summary:     "List registered agents",
		Errors:      []int{http.StatusInternalServerError},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body agentsBody `json:"body"`
	}, error) {
		infos, err := m.Agents()
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body agentsBody `json:"body"`
		}{Body: agentsBody{Agents: infos}}, nil
	})
}

// LedgerHealth adapts the ledger into a health checker for /healthz.
type LedgerHealth struct {
	Ledger interface {
		Head(ctx context.Context) (string, bool, error)
	}
}

// Check reports whether the ledger head is readable.
func (h LedgerHealth) Check(ctx context.Context) swarm.HealthResult {
	res := swarm.HealthResult{Component: "trustgraph", LastCheck: time.Now().UTC()}
	if _, _, err := h.Ledger.Head(ctx); err != nil {
		res.Status = swarm.HealthUnhealthy
		res.Message = err.Error()
		res.Error = err
		return res
	}
	res.Status = swarm.HealthHealthy
	return res
}
