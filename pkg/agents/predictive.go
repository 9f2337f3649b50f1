// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"

	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

// Predictive forecasts price direction from its forecast provider.
type Predictive struct {
	Base
	provider ForecastProvider
}

// NewPredictive creates the predictive capability. A nil provider falls
// back to the static mock forecast.
func NewPredictive(provider ForecastProvider, opts ...Option) *Predictive {
	a := &Predictive{provider: provider}
	a.init("predictive_agent_001", swarm.KindPredictive, opts...)
	return a
}

// Invoke asks the provider for a forecast on the context's symbol and
// horizon. Provider failures degrade to a sideways call.
func (a *Predictive) Invoke(ctx context.Context, shared map[string]any) (*swarm.Outcome, error) {
	symbol := stringValue(shared, "symbol", "BTC/USDT")
	horizon := stringValue(shared, "horizon", "30d")

	var forecast Forecast
	if a.provider == nil {
		price := 1.35
		forecast = Forecast{PredictedPrice: &price, Trend: "bullish", Confidence: 0.72}
	} else {
		var err error
		forecast, err = a.provider.Forecast(ctx, shared)
		if err != nil {
			a.logger.Warn("forecast provider failed, calling sideways",
				"agent", a.id,
				"symbol", symbol,
				"error", err)
			forecast = Forecast{Trend: "sideways", Confidence: 0.5}
		}
	}

	details := map[string]any{
		"prediction_id":   a.stamp("PRED"),
		"type":            "market_forecast",
		"asset":           symbol,
		"timeframe":       horizon,
		"trend_direction": forecast.Trend,
	}
	if forecast.PredictedPrice != nil {
		details["predicted_price"] = *forecast.PredictedPrice
	}

	out := &swarm.Outcome{
		Confidence: forecast.Confidence,
		Summary:    fmt.Sprintf("Forecast %s (%.2f)", forecast.Trend, forecast.Confidence),
		ContextUpdates: map[string]any{
			"prediction_confidence": forecast.Confidence,
			"forecast_trend":        forecast.Trend,
		},
		Details: details,
	}
	a.ShareContext(ctx, out.ContextUpdates)
	return out, nil
}
