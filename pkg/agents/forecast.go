// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import "context"

// Forecast is a provider's projection for an asset. PredictedPrice is nil
// when the provider has too little history to commit to a number.
type Forecast struct {
	PredictedPrice *float64 `json:"predicted_price"`
	Trend          string   `json:"trend"`
	Confidence     float64  `json:"confidence"`
}

// ForecastProvider produces a price forecast from the shared context.
type ForecastProvider interface {
	Forecast(ctx context.Context, shared map[string]any) (Forecast, error)
}

// StaticForecastProvider always returns the same forecast. The zero-config
// default mirrors the protocol's mock feed.
type StaticForecastProvider struct {
	Result Forecast
}

// NewStaticForecastProvider returns the stock mock provider.
func NewStaticForecastProvider() *StaticForecastProvider {
	price := 1.35
	return &StaticForecastProvider{
		Result: Forecast{PredictedPrice: &price, Trend: "bullish", Confidence: 0.72},
	}
}

// Forecast implements ForecastProvider.
func (p *StaticForecastProvider) Forecast(context.Context, map[string]any) (Forecast, error) {
	return p.Result, nil
}

// SeriesForecastProvider projects the next move from exponential moving
// averages over closes fetched from its source.
type SeriesForecastProvider struct {
	Source SeriesSource
}

// Forecast implements ForecastProvider.
func (p *SeriesForecastProvider) Forecast(ctx context.Context, shared map[string]any) (Forecast, error) {
	symbol := stringValue(shared, "symbol", "BTC/USDT")
	closes, err := p.Source.Closes(ctx, symbol)
	if err != nil {
		return Forecast{}, err
	}
	return TrendForecast(closes), nil
}

// TrendForecast compares a 10-span EMA of the last 20 closes against a
// 30-span EMA of the last 60, over at most 100 closes. A short EMA above
// the long one projects a 2% rise, below it a 2% fall. Fewer than 10
// closes yields a sideways call with no price.
func TrendForecast(closes []float64) Forecast {
	closes = tail(closes, 100)
	if len(closes) < 10 {
		return Forecast{Trend: "sideways", Confidence: 0.5}
	}

	short := ema(tail(closes, 20), 10)
	long := ema(tail(closes, 60), 30)
	last := closes[len(closes)-1]

	trend := "bearish"
	predicted := last * 0.98
	if short > long {
		trend = "bullish"
		predicted = last * 1.02
	}
	return Forecast{PredictedPrice: &predicted, Trend: trend, Confidence: 0.65}
}

// ema computes an exponential moving average seeded with the first value.
func ema(values []float64, span int) float64 {
	k := 2.0 / (float64(span) + 1.0)
	avg := values[0]
	for _, v := range values[1:] {
		avg = v*k + avg*(1-k)
	}
	return avg
}
