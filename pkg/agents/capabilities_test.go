// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/cuttlefish-labs/swarm/pkg/policy"
)

func TestBuilderInvoke(t *testing.T) {
	builder := NewBuilder(WithClock(fixedClock()))
	out, err := builder.Invoke(context.Background(), map[string]any{
		"proposal": "wind_farm",
		"budget":   2000000.0,
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if out.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85", out.Confidence)
	}
	if out.Summary != "Proposed wind_farm with $1600000 allocation" {
		t.Errorf("Summary = %q", out.Summary)
	}
	if got := out.ContextUpdates["budget_remaining"].(float64); math.Abs(got-400000) > 1e-6 {
		t.Errorf("budget_remaining = %v, want 400000", got)
	}
	if out.Details["proposal_id"] != "BUILD_1712345678" {
		t.Errorf("proposal_id = %v", out.Details["proposal_id"])
	}
	if out.Details["type"] != "capital_allocation" {
		t.Errorf("type = %v", out.Details["type"])
	}
	if got := out.Details["budget_allocated"].(float64); math.Abs(got-1600000) > 1e-6 {
		t.Errorf("budget_allocated = %v, want 1600000", got)
	}
}

func TestBuilderDefaults(t *testing.T) {
	out, err := NewBuilder().Invoke(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if !strings.Contains(out.Summary, "solar_farm_optimization") {
		t.Errorf("expected default proposal in summary, got %q", out.Summary)
	}
	if got := out.Details["budget_allocated"].(float64); math.Abs(got-800000) > 1e-6 {
		t.Errorf("default budget_allocated = %v, want 800000", got)
	}
}

func TestPermitInvoke(t *testing.T) {
	t.Run("approved", func(t *testing.T) {
		provider := stubCompliance{assessment: ComplianceAssessment{
			EnvironmentalApproved: true,
			ZoningApproved:        true,
			SafetyApproved:        true,
			Overall:               0.95,
		}}
		out, err := NewPermit(provider).Invoke(context.Background(), map[string]any{})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if out.Summary != "Compliance approved with score 0.95" {
			t.Errorf("Summary = %q", out.Summary)
		}
		if out.ContextUpdates["compliance_status"] != "approved" {
			t.Errorf("compliance_status = %v", out.ContextUpdates["compliance_status"])
		}
	})

	t.Run("rejected on any failed check", func(t *testing.T) {
		provider := stubCompliance{assessment: ComplianceAssessment{
			EnvironmentalApproved: true,
			ZoningApproved:        false,
			SafetyApproved:        true,
			Overall:               0.8,
		}}
		out, err := NewPermit(provider).Invoke(context.Background(), map[string]any{})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if out.ContextUpdates["compliance_status"] != "rejected" {
			t.Errorf("expected rejected, got %v", out.ContextUpdates["compliance_status"])
		}
		if out.Details["zoning_approved"] != false {
			t.Errorf("zoning_approved = %v", out.Details["zoning_approved"])
		}
	})

	t.Run("provider failure approves at default score", func(t *testing.T) {
		provider := stubCompliance{err: errors.New("rules service down")}
		out, err := NewPermit(provider).Invoke(context.Background(), map[string]any{})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if out.ContextUpdates["compliance_status"] != "approved" {
			t.Errorf("expected default approval, got %v", out.ContextUpdates["compliance_status"])
		}
		if got := out.ContextUpdates["compliance_score"].(float64); got != 0.8 {
			t.Errorf("compliance_score = %v, want 0.8", got)
		}
	})
}

type stubMarket struct {
	sig MarketSignal
	err error
}

func (s stubMarket) Signal(context.Context, map[string]any) (MarketSignal, error) {
	return s.sig, s.err
}

func TestSignalInvoke(t *testing.T) {
	t.Run("provider signal", func(t *testing.T) {
		provider := stubMarket{sig: MarketSignal{Source: "series", Signal: SignalSell, Confidence: 0.7}}
		out, err := NewSignal(provider).Invoke(context.Background(), map[string]any{"symbol": "ETH/USDT"})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if out.Summary != "Signal SELL (0.70) via series" {
			t.Errorf("Summary = %q", out.Summary)
		}
		if out.ContextUpdates["trading_signal"] != SignalSell {
			t.Errorf("trading_signal = %v", out.ContextUpdates["trading_signal"])
		}
		if out.Details["asset"] != "ETH/USDT" {
			t.Errorf("asset = %v", out.Details["asset"])
		}
	})

	t.Run("nil provider uses mock", func(t *testing.T) {
		out, err := NewSignal(nil).Invoke(context.Background(), map[string]any{})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if out.ContextUpdates["trading_signal"] != SignalBuy || out.Confidence != 0.78 {
			t.Errorf("expected mock BUY 0.78, got %+v", out)
		}
	})

	t.Run("provider failure holds", func(t *testing.T) {
		provider := stubMarket{err: errors.New("exchange down")}
		out, err := NewSignal(provider).Invoke(context.Background(), map[string]any{})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if out.ContextUpdates["trading_signal"] != SignalHold || out.Confidence != 0.5 {
			t.Errorf("expected HOLD 0.5 on failure, got %+v", out)
		}
	})
}

type stubForecast struct {
	f   Forecast
	err error
}

func (s stubForecast) Forecast(context.Context, map[string]any) (Forecast, error) {
	return s.f, s.err
}

func TestPredictiveInvoke(t *testing.T) {
	t.Run("provider forecast", func(t *testing.T) {
		price := 120.5
		provider := stubForecast{f: Forecast{PredictedPrice: &price, Trend: "bearish", Confidence: 0.65}}
		out, err := NewPredictive(provider).Invoke(context.Background(), map[string]any{
			"symbol":  "ETH/USDT",
			"horizon": "7d",
		})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if out.Summary != "Forecast bearish (0.65)" {
			t.Errorf("Summary = %q", out.Summary)
		}
		if out.Details["timeframe"] != "7d" {
			t.Errorf("timeframe = %v", out.Details["timeframe"])
		}
		if out.Details["predicted_price"] != 120.5 {
			t.Errorf("predicted_price = %v", out.Details["predicted_price"])
		}
	})

	t.Run("provider failure calls sideways", func(t *testing.T) {
		provider := stubForecast{err: errors.New("model offline")}
		out, err := NewPredictive(provider).Invoke(context.Background(), map[string]any{})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if out.ContextUpdates["forecast_trend"] != "sideways" {
			t.Errorf("forecast_trend = %v", out.ContextUpdates["forecast_trend"])
		}
		if _, ok := out.Details["predicted_price"]; ok {
			t.Error("sideways call should not carry a predicted price")
		}
	})
}

func TestComplianceInvoke(t *testing.T) {
	tests := []struct {
		name       string
		overall    float64
		wantStatus string
		wantRisk   string
	}{
		{"strong posture", 0.85, "approved", "low"},
		{"acceptable posture", 0.75, "approved", "medium"},
		{"weak posture", 0.5, "review", "medium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := stubCompliance{assessment: ComplianceAssessment{Overall: tt.overall}}
			out, err := NewCompliance(provider).Invoke(context.Background(), map[string]any{"target": "exchange_ops"})
			if err != nil {
				t.Fatalf("Invoke failed: %v", err)
			}
			if out.ContextUpdates["regulatory_status"] != tt.wantStatus {
				t.Errorf("regulatory_status = %v, want %v", out.ContextUpdates["regulatory_status"], tt.wantStatus)
			}
			if out.ContextUpdates["risk_level"] != tt.wantRisk {
				t.Errorf("risk_level = %v, want %v", out.ContextUpdates["risk_level"], tt.wantRisk)
			}
			if out.Details["target"] != "exchange_ops" {
				t.Errorf("target = %v", out.Details["target"])
			}
			if out.Confidence != 0.9 {
				t.Errorf("Confidence = %v, want 0.9", out.Confidence)
			}
		})
	}
}

func TestRefactorInvoke(t *testing.T) {
	tests := []struct {
		name      string
		issues    int
		wantScore float64
	}{
		{"clean tree", 0, 1.0},
		{"moderate debt", 30, 0.7},
		{"heavy debt floors at half", 120, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &StaticLintProvider{Result: LintSummary{Issues: tt.issues}}
			out, err := NewRefactor(provider).Invoke(context.Background(), map[string]any{})
			if err != nil {
				t.Fatalf("Invoke failed: %v", err)
			}
			got := out.Details["optimization_score"].(float64)
			if math.Abs(got-tt.wantScore) > 1e-9 {
				t.Errorf("optimization_score = %v, want %v", got, tt.wantScore)
			}
			if out.ContextUpdates["lint_issues"] != tt.issues {
				t.Errorf("lint_issues = %v, want %d", out.ContextUpdates["lint_issues"], tt.issues)
			}
		})
	}

	t.Run("failing provider reads clean", func(t *testing.T) {
		provider := failingLint{}
		out, err := NewRefactor(provider).Invoke(context.Background(), map[string]any{})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if out.Summary != "Refactor analysis complete; lint issues: 0" {
			t.Errorf("Summary = %q", out.Summary)
		}
	})
}

type failingLint struct{}

func (failingLint) Analyze(context.Context, string) (LintSummary, error) {
	return LintSummary{}, errors.New("scanner crashed")
}

func TestAuditorInvoke(t *testing.T) {
	t.Run("pillar mentions raise the score", func(t *testing.T) {
		auditor := NewAuditor(policy.Default())
		out, err := auditor.Invoke(context.Background(), map[string]any{
			"task_title": "Quarterly review",
			"result": map[string]any{
				"environmental": "solar offsets",
				"social":        "local hiring",
				"governance":    "board oversight",
			},
		})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if out.Details["passed"] != true {
			t.Errorf("expected audit to pass, got %+v", out.Details)
		}
		if got := out.Details["compliance_score"].(float64); math.Abs(got-1.0) > 1e-9 {
			t.Errorf("compliance_score = %v, want 1.0", got)
		}
		if out.Details["target"] != "Quarterly review" {
			t.Errorf("target = %v", out.Details["target"])
		}
		if !strings.HasPrefix(out.Summary, "ESG compliance audit passed") {
			t.Errorf("Summary = %q", out.Summary)
		}
	})

	t.Run("base score passes the default threshold", func(t *testing.T) {
		auditor := NewAuditor(policy.Default())
		out, err := auditor.Invoke(context.Background(), map[string]any{})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if out.Details["passed"] != true {
			t.Errorf("expected pass at base score, got %+v", out.Details)
		}
	})

	t.Run("strict threshold fails the base score", func(t *testing.T) {
		auditor := NewAuditor(policy.Document{PassThreshold: 0.9})
		out, err := auditor.Invoke(context.Background(), map[string]any{})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if out.Details["passed"] != false {
			t.Errorf("expected fail under strict threshold, got %+v", out.Details)
		}
		if !strings.HasPrefix(out.Summary, "ESG compliance audit failed") {
			t.Errorf("Summary = %q", out.Summary)
		}
	})
}
