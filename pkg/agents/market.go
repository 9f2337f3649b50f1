// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cuttlefish-labs/swarm/pkg/connectors"
	"github.com/cuttlefish-labs/swarm/pkg/resilience"
)

// Trading signals emitted by market providers.
const (
	SignalBuy   = "BUY"
	SignalSell  = "SELL"
	SignalHold  = "HOLD"
	SignalLPAdd = "LP_ADD"
)

// MarketSignal is a provider verdict on an asset.
type MarketSignal struct {
	Source     string  `json:"source"`
	Signal     string  `json:"signal"`
	Confidence float64 `json:"confidence"`
	Note       string  `json:"note,omitempty"`
}

// MarketProvider produces a trading signal from the shared context.
type MarketProvider interface {
	Signal(ctx context.Context, shared map[string]any) (MarketSignal, error)
}

// StaticSignalProvider always returns the same signal. The zero-config
// default mirrors the protocol's mock market feed.
type StaticSignalProvider struct {
	Result MarketSignal
}

// NewStaticSignalProvider returns the stock mock provider.
func NewStaticSignalProvider() *StaticSignalProvider {
	return &StaticSignalProvider{
		Result: MarketSignal{Source: "mock", Signal: SignalBuy, Confidence: 0.78},
	}
}

// Signal implements MarketProvider.
func (p *StaticSignalProvider) Signal(context.Context, map[string]any) (MarketSignal, error) {
	return p.Result, nil
}

// SeriesSource supplies recent closing prices for a symbol, most recent
// last.
type SeriesSource interface {
	Closes(ctx context.Context, symbol string) ([]float64, error)
}

// SeriesProvider derives a signal from a moving-average crossover over
// closes fetched from its source.
type SeriesProvider struct {
	Source SeriesSource
}

// Signal implements MarketProvider.
func (p *SeriesProvider) Signal(ctx context.Context, shared map[string]any) (MarketSignal, error) {
	symbol := stringValue(shared, "symbol", "BTC/USDT")
	closes, err := p.Source.Closes(ctx, symbol)
	if err != nil {
		return MarketSignal{}, err
	}
	sig := CrossoverSignal(closes)
	sig.Source = "series"
	return sig, nil
}

// CrossoverSignal compares the 5-period and 20-period simple moving
// averages over the last 50 closes. A short average more than 0.2% above
// the long average reads BUY, more than 0.2% below reads SELL, anything in
// between HOLD. Fewer than 10 closes is not enough signal to act on.
func CrossoverSignal(closes []float64) MarketSignal {
	closes = tail(closes, 50)
	if len(closes) < 10 {
		return MarketSignal{Signal: SignalHold, Confidence: 0.5, Note: "insufficient price history"}
	}

	short := mean(tail(closes, 5))
	long := mean(tail(closes, 20))
	switch {
	case short > long*1.002:
		return MarketSignal{Signal: SignalBuy, Confidence: 0.7}
	case short < long*0.998:
		return MarketSignal{Signal: SignalSell, Confidence: 0.7}
	}
	return MarketSignal{Signal: SignalHold, Confidence: 0.55}
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// DefaultPool is the Uniswap v3 USDC/WETH 0.3% pool, inspected when the
// context names no pool.
const DefaultPool = "0x8ad599c3a0ff1de082011efddc58f1908eb6e6d8"

// feesThresholdUSD is the daily fee level above which LP provision beats
// holding.
const feesThresholdUSD = 10000.0

const poolQuery = `query ($pool: ID!) {
  pool(id: $pool) {
    id
    volumeUSD
    feesUSD
    liquidity
  }
}`

// SubgraphProvider reads pool economics from a Uniswap v3 subgraph and
// prefers LP provision when fees run hot. Queries are retried once on
// transient failure and run behind a circuit breaker; an unreachable
// subgraph degrades to a neutral HOLD instead of failing the signal
// capability.
type SubgraphProvider struct {
	client  *connectors.GraphQLClient
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
}

// NewSubgraphProvider creates a provider against the given subgraph
// endpoint.
func NewSubgraphProvider(endpoint string, opts ...connectors.GraphQLOption) *SubgraphProvider {
	return &SubgraphProvider{
		client: connectors.NewGraphQLClient(endpoint, opts...),
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name: "subgraph",
		}),
		retry: resilience.RetryConfig{
			MaxAttempts:  2,
			InitialDelay: 100 * time.Millisecond,
			Multiplier:   2,
			Jitter:       0.2,
		},
	}
}

// Signal implements MarketProvider.
func (p *SubgraphProvider) Signal(ctx context.Context, shared map[string]any) (MarketSignal, error) {
	pool := stringValue(shared, "pool", DefaultPool)

	value, err := resilience.WithFallback(ctx, func() (interface{}, error) {
		var sig MarketSignal
		callErr := p.breaker.Call(ctx, func() error {
			return p.retry.Do(ctx, func() error {
				var qerr error
				sig, qerr = p.poolSignal(ctx, pool)
				return qerr
			})
		})
		if callErr != nil {
			return nil, callErr
		}
		return sig, nil
	}, &resilience.StaticFallback{
		Value: MarketSignal{Source: "subgraph", Signal: SignalHold, Confidence: 0.5, Note: "subgraph unavailable"},
	})
	if err != nil {
		return MarketSignal{}, err
	}
	return value.(MarketSignal), nil
}

func (p *SubgraphProvider) poolSignal(ctx context.Context, pool string) (MarketSignal, error) {
	var out struct {
		Pool *struct {
			ID        string `json:"id"`
			VolumeUSD string `json:"volumeUSD"`
			FeesUSD   string `json:"feesUSD"`
			Liquidity string `json:"liquidity"`
		} `json:"pool"`
	}
	if err := p.client.Query(ctx, poolQuery, map[string]interface{}{"pool": pool}, &out); err != nil {
		return MarketSignal{}, err
	}
	if out.Pool == nil {
		return MarketSignal{}, fmt.Errorf("pool %s not found", pool)
	}

	// The Graph encodes numerics as strings.
	fees, err := strconv.ParseFloat(out.Pool.FeesUSD, 64)
	if err != nil {
		return MarketSignal{}, fmt.Errorf("parse feesUSD: %w", err)
	}

	if fees > feesThresholdUSD {
		return MarketSignal{
			Source:     "subgraph",
			Signal:     SignalLPAdd,
			Confidence: 0.65,
			Note:       fmt.Sprintf("pool fees $%.0f favor LP provision", fees),
		}, nil
	}
	return MarketSignal{
		Source:     "subgraph",
		Signal:     SignalHold,
		Confidence: 0.55,
		Note:       fmt.Sprintf("pool fees $%.0f", fees),
	}, nil
}
