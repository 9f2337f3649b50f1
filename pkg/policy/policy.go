// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package policy defines the ESG policy document applied during the
// meta-audit phase and the scoring that turns a workflow result into a
// compliance decision.
package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPassThreshold is the compliance floor a result must reach to be
// audited successfully.
const DefaultPassThreshold = 0.7

// Scoring starts from a neutral base and rewards results that address the
// policy pillars.
const (
	baseScore          = 0.8
	environmentalBoost = 0.10
	socialBoost        = 0.05
	governanceBoost    = 0.05
)

// Document describes the audit policy. PassThreshold is always taken from
// here, never hard-coded at audit sites, so operators can tune it per
// deployment.
type Document struct {
	PassThreshold float64        `json:"pass_threshold" yaml:"pass_threshold" koanf:"pass_threshold"`
	Environmental map[string]any `json:"environmental" yaml:"environmental" koanf:"environmental"`
	Social        map[string]any `json:"social" yaml:"social" koanf:"social"`
	Governance    map[string]any `json:"governance" yaml:"governance" koanf:"governance"`
}

// Default returns the stock ESG policy.
func Default() Document {
	return Document{
		PassThreshold: DefaultPassThreshold,
		Environmental: map[string]any{
			"carbon_impact":        "positive",
			"renewable_energy":     "required",
			"sustainability_score": 0.7,
		},
		Social: map[string]any{
			"community_benefit": "required",
			"job_creation":      "positive",
			"accessibility":     "inclusive",
		},
		Governance: map[string]any{
			"transparency":           "required",
			"compliance":             "required",
			"stakeholder_engagement": "positive",
		},
	}
}

// Load reads a policy document from a YAML file. Fields absent from the
// file keep their defaults.
func Load(path string) (Document, error) {
	doc := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read policy: %w", err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("parse policy: %w", err)
	}
	if doc.PassThreshold <= 0 || doc.PassThreshold > 1 {
		return Document{}, fmt.Errorf("pass_threshold %v out of range (0, 1]", doc.PassThreshold)
	}
	return doc, nil
}

// Criteria returns the pillar criteria in the shape handed to auditors.
func (d Document) Criteria() map[string]any {
	return map[string]any{
		"environmental": d.Environmental,
		"social":        d.Social,
		"governance":    d.Governance,
	}
}

// Evaluation is the outcome of scoring a workflow result against the
// policy.
type Evaluation struct {
	Score           float64  `json:"compliance_score"`
	Passed          bool     `json:"passed"`
	Pillars         []string `json:"pillars,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Evaluate scores a workflow result. The result payload is searched for
// pillar signals; each addressed pillar raises the score above the base,
// and the threshold decides the pass.
func (d Document) Evaluate(result map[string]any) Evaluation {
	text := ""
	if raw, err := json.Marshal(result); err == nil {
		text = strings.ToLower(string(raw))
	}

	score := baseScore
	var pillars, missing []string
	for _, pillar := range []struct {
		name  string
		boost float64
	}{
		{"environmental", environmentalBoost},
		{"social", socialBoost},
		{"governance", governanceBoost},
	} {
		if strings.Contains(text, pillar.name) {
			score += pillar.boost
			pillars = append(pillars, pillar.name)
		} else {
			missing = append(missing, pillar.name)
		}
	}
	if score > 1.0 {
		score = 1.0
	}

	eval := Evaluation{
		Score:   score,
		Passed:  score >= d.PassThreshold,
		Pillars: pillars,
	}
	sort.Strings(missing)
	for _, name := range missing {
		eval.Recommendations = append(eval.Recommendations, "address "+name+" criteria in the proposal")
	}
	return eval
}
