// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"

	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

// Signal produces trading signals from its market provider.
type Signal struct {
	Base
	provider MarketProvider
}

// NewSignal creates the signal capability. A nil provider falls back to
// the static mock feed.
func NewSignal(provider MarketProvider, opts ...Option) *Signal {
	a := &Signal{provider: provider}
	a.init("signal_agent_001", swarm.KindSignal, opts...)
	return a
}

// Invoke asks the provider for a signal on the context's symbol. Provider
// failures degrade to a neutral HOLD rather than failing the invocation.
func (a *Signal) Invoke(ctx context.Context, shared map[string]any) (*swarm.Outcome, error) {
	symbol := stringValue(shared, "symbol", "BTC/USDT")

	var sig MarketSignal
	if a.provider == nil {
		sig = MarketSignal{Source: "mock", Signal: SignalBuy, Confidence: 0.78}
	} else {
		var err error
		sig, err = a.provider.Signal(ctx, shared)
		if err != nil {
			a.logger.Warn("market provider failed, holding",
				"agent", a.id,
				"symbol", symbol,
				"error", err)
			sig = MarketSignal{Source: "provider", Signal: SignalHold, Confidence: 0.5}
		}
	}
	if sig.Source == "" {
		sig.Source = "provider"
	}

	out := &swarm.Outcome{
		Confidence: sig.Confidence,
		Summary:    fmt.Sprintf("Signal %s (%.2f) via %s", sig.Signal, sig.Confidence, sig.Source),
		ContextUpdates: map[string]any{
			"trading_signal":    sig.Signal,
			"signal_confidence": sig.Confidence,
		},
		Details: map[string]any{
			"signal_id": a.stamp("SIGNAL"),
			"type":      "market_signal",
			"asset":     symbol,
			"signal":    sig.Signal,
			"source":    sig.Source,
		},
	}
	a.ShareContext(ctx, out.ContextUpdates)
	return out, nil
}
