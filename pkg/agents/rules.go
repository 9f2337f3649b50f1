// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules is the declarative rule set the compliance provider evaluates.
// Zero values disable the corresponding rule.
type Rules struct {
	MaxBudget            float64  `json:"max_budget" yaml:"max_budget"`
	AllowedJurisdictions []string `json:"allowed_jurisdictions" yaml:"allowed_jurisdictions"`
	MinSafetyScore       float64  `json:"min_safety_score" yaml:"min_safety_score"`
}

// LoadRules reads a rule set from a YAML or JSON file.
func LoadRules(path string) (Rules, error) {
	var r Rules
	raw, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("read rules: %w", err)
	}
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return r, fmt.Errorf("parse rules: %w", err)
	}
	return r, nil
}

// ComplianceAssessment is the provider verdict consumed by the permit and
// compliance capabilities.
type ComplianceAssessment struct {
	EnvironmentalApproved bool    `json:"environmental_approved"`
	ZoningApproved        bool    `json:"zoning_approved"`
	SafetyApproved        bool    `json:"safety_approved"`
	Overall               float64 `json:"overall_compliance"`
}

// ComplianceProvider produces a compliance assessment for a shared context.
type ComplianceProvider interface {
	Assess(ctx context.Context, shared map[string]any) (ComplianceAssessment, error)
}

// RulesProvider evaluates the static rule set against the context,
// deducting from a perfect score per violated rule.
type RulesProvider struct {
	rules Rules
}

// NewRulesProvider creates a provider over the given rule set.
func NewRulesProvider(rules Rules) *RulesProvider {
	return &RulesProvider{rules: rules}
}

// Assess implements ComplianceProvider.
func (p *RulesProvider) Assess(_ context.Context, shared map[string]any) (ComplianceAssessment, error) {
	a := ComplianceAssessment{
		EnvironmentalApproved: true,
		ZoningApproved:        true,
		SafetyApproved:        true,
		Overall:               1.0,
	}

	if p.rules.MaxBudget > 0 && floatValue(shared, "budget", 0) > p.rules.MaxBudget {
		a.ZoningApproved = false
		a.Overall -= 0.2
	}

	if len(p.rules.AllowedJurisdictions) > 0 {
		jurisdiction := strings.ToLower(stringValue(shared, "jurisdiction", ""))
		if jurisdiction != "" && !containsFold(p.rules.AllowedJurisdictions, jurisdiction) {
			a.EnvironmentalApproved = false
			a.Overall -= 0.3
		}
	}

	if floatValue(shared, "safety_score", 1.0) < p.rules.MinSafetyScore {
		a.SafetyApproved = false
		a.Overall -= 0.3
	}

	if a.Overall < 0 {
		a.Overall = 0
	}
	return a, nil
}

func containsFold(list []string, want string) bool {
	for _, item := range list {
		if strings.ToLower(item) == want {
			return true
		}
	}
	return false
}

// assessOrDefault consults the provider, keeping the permissive default
// posture when the provider is absent or fails. Provider trouble never
// fails the capability.
func assessOrDefault(ctx context.Context, provider ComplianceProvider, shared map[string]any, logger *slog.Logger, agentID string) ComplianceAssessment {
	if provider == nil {
		return defaultAssessment()
	}
	a, err := provider.Assess(ctx, shared)
	if err != nil {
		logger.Warn("compliance provider failed, using default posture",
			"agent", agentID,
			"error", err)
		return defaultAssessment()
	}
	return a
}

func defaultAssessment() ComplianceAssessment {
	return ComplianceAssessment{
		EnvironmentalApproved: true,
		ZoningApproved:        true,
		SafetyApproved:        true,
		Overall:               0.8,
	}
}
