// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestTrendForecast(t *testing.T) {
	t.Run("insufficient history", func(t *testing.T) {
		got := TrendForecast(flat(5, 100))
		if got.Trend != "sideways" || got.Confidence != 0.5 {
			t.Errorf("expected sideways 0.5, got %+v", got)
		}
		if got.PredictedPrice != nil {
			t.Errorf("expected nil price, got %v", *got.PredictedPrice)
		}
	})

	t.Run("uptrend", func(t *testing.T) {
		got := TrendForecast(ascending(60, 1))
		if got.Trend != "bullish" {
			t.Fatalf("expected bullish, got %+v", got)
		}
		if got.PredictedPrice == nil {
			t.Fatal("expected a predicted price")
		}
		want := 60.0 * 1.02
		if math.Abs(*got.PredictedPrice-want) > 1e-9 {
			t.Errorf("PredictedPrice = %v, want %v", *got.PredictedPrice, want)
		}
		if got.Confidence != 0.65 {
			t.Errorf("Confidence = %v, want 0.65", got.Confidence)
		}
	})

	t.Run("downtrend", func(t *testing.T) {
		got := TrendForecast(descending(60, 60))
		if got.Trend != "bearish" {
			t.Fatalf("expected bearish, got %+v", got)
		}
		want := 1.0 * 0.98
		if got.PredictedPrice == nil || math.Abs(*got.PredictedPrice-want) > 1e-9 {
			t.Errorf("PredictedPrice = %v, want %v", got.PredictedPrice, want)
		}
	})
}

func TestEMA(t *testing.T) {
	if got := ema(flat(30, 42), 10); math.Abs(got-42) > 1e-9 {
		t.Errorf("ema of constant series = %v, want 42", got)
	}
	// A rising series keeps the EMA below the latest value.
	if got := ema(ascending(30, 1), 10); got >= 30 {
		t.Errorf("ema should lag a rising series, got %v", got)
	}
}

func TestStaticForecastProvider(t *testing.T) {
	got, err := NewStaticForecastProvider().Forecast(context.Background(), nil)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if got.Trend != "bullish" || got.Confidence != 0.72 {
		t.Errorf("unexpected mock forecast %+v", got)
	}
	if got.PredictedPrice == nil || *got.PredictedPrice != 1.35 {
		t.Errorf("PredictedPrice = %v, want 1.35", got.PredictedPrice)
	}
}

func TestSeriesForecastProvider(t *testing.T) {
	provider := &SeriesForecastProvider{Source: stubSeries{closes: ascending(60, 1)}}
	got, err := provider.Forecast(context.Background(), map[string]any{"symbol": "ETH/USDT"})
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}
	if got.Trend != "bullish" {
		t.Errorf("expected bullish on uptrend, got %+v", got)
	}

	failing := &SeriesForecastProvider{Source: stubSeries{err: errors.New("feed down")}}
	if _, err := failing.Forecast(context.Background(), nil); err == nil {
		t.Fatal("expected error from failing source")
	}
}
