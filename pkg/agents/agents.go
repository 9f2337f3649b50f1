// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

// Package agents provides the default capability fleet: seven capabilities
// covering capital allocation, permitting, market signals, forecasting,
// regulatory posture, code health and the closing ESG audit, plus the
// providers they consult and an optional shared-context mirror.
package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cuttlefish-labs/swarm/pkg/policy"
	"github.com/cuttlefish-labs/swarm/pkg/swarm"
)

// Option configures an agent at construction time.
type Option func(*Base)

// WithLogger sets the logger used for provider and mirror warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Base) {
		b.logger = logger
	}
}

// WithContextStore attaches a shared-context mirror.
func WithContextStore(store ContextStore) Option {
	return func(b *Base) {
		b.store = store
	}
}

// WithClock overrides the time source used for generated identifiers.
func WithClock(now func() time.Time) Option {
	return func(b *Base) {
		b.now = now
	}
}

// Base carries the identity and plumbing common to every fleet member.
type Base struct {
	id     string
	kind   swarm.CapabilityKind
	logger *slog.Logger
	store  ContextStore
	now    func() time.Time

	mu     sync.Mutex
	shared map[string]any
}

func (b *Base) init(id string, kind swarm.CapabilityKind, opts ...Option) {
	b.id = id
	b.kind = kind
	b.logger = slog.Default()
	b.now = time.Now
	b.shared = make(map[string]any)
	for _, opt := range opts {
		opt(b)
	}
}

// ID returns the stable actor identifier attributed in ledger actions.
func (b *Base) ID() string {
	return b.id
}

// Kind returns the capability kind.
func (b *Base) Kind() swarm.CapabilityKind {
	return b.kind
}

// ShareContext merges updates into the agent's running view and mirrors
// the merged snapshot to the context store when one is attached. Mirror
// failures are logged, never returned: sharing is best effort.
func (b *Base) ShareContext(ctx context.Context, updates map[string]any) {
	b.mu.Lock()
	for k, v := range updates {
		b.shared[k] = v
	}
	snapshot := make(map[string]any, len(b.shared))
	for k, v := range b.shared {
		snapshot[k] = v
	}
	b.mu.Unlock()

	if b.store == nil {
		return
	}
	if err := b.store.Share(ctx, b.id, snapshot); err != nil {
		b.logger.Warn("shared context mirror failed",
			"agent", b.id,
			"error", err)
	}
}

// SharedContext returns the agent's running view merged with whatever the
// mirror holds for it. Mirror failures fall back to the local view.
func (b *Base) SharedContext(ctx context.Context) map[string]any {
	b.mu.Lock()
	merged := make(map[string]any, len(b.shared))
	for k, v := range b.shared {
		merged[k] = v
	}
	b.mu.Unlock()

	if b.store == nil {
		return merged
	}
	mirrored, err := b.store.Shared(ctx, b.id)
	if err != nil {
		b.logger.Warn("shared context read failed",
			"agent", b.id,
			"error", err)
		return merged
	}
	for k, v := range mirrored {
		merged[k] = v
	}
	return merged
}

// stamp produces the protocol's timestamped identifiers (BUILD_1712345678).
func (b *Base) stamp(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, b.now().Unix())
}

// FleetConfig assembles the provider wiring for the default fleet. Nil
// providers leave the corresponding capability on its built-in posture:
// static market data, an empty lint report and full compliance approval.
type FleetConfig struct {
	Compliance ComplianceProvider
	Market     MarketProvider
	Forecast   ForecastProvider
	Lint       LintProvider
	Policy     policy.Document
	Store      ContextStore
	Logger     *slog.Logger
	Clock      func() time.Time
}

// Fleet constructs the seven default capabilities in protocol order.
func Fleet(cfg FleetConfig) []swarm.Capability {
	var opts []Option
	if cfg.Logger != nil {
		opts = append(opts, WithLogger(cfg.Logger))
	}
	if cfg.Store != nil {
		opts = append(opts, WithContextStore(cfg.Store))
	}
	if cfg.Clock != nil {
		opts = append(opts, WithClock(cfg.Clock))
	}

	pol := cfg.Policy
	if pol.PassThreshold == 0 {
		pol = policy.Default()
	}

	return []swarm.Capability{
		NewBuilder(opts...),
		NewPermit(cfg.Compliance, opts...),
		NewSignal(cfg.Market, opts...),
		NewPredictive(cfg.Forecast, opts...),
		NewCompliance(cfg.Compliance, opts...),
		NewRefactor(cfg.Lint, opts...),
		NewAuditor(pol, opts...),
	}
}

// stringValue reads a string from the shared context, falling back when the
// key is absent, empty or not a string.
func stringValue(shared map[string]any, key, fallback string) string {
	if v, ok := shared[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// floatValue reads a number from the shared context. JSON decoding hands us
// float64, but callers also pass ints and numeric strings.
func floatValue(shared map[string]any, key string, fallback float64) float64 {
	switch v := shared[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// tail returns the last n values, or all of them when fewer exist.
func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
