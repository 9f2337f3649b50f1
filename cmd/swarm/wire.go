// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cuttlefish-labs/swarm/pkg/agents"
	"github.com/cuttlefish-labs/swarm/pkg/config"
	"github.com/cuttlefish-labs/swarm/pkg/orchestrator"
	"github.com/cuttlefish-labs/swarm/pkg/policy"
	"github.com/cuttlefish-labs/swarm/pkg/registry"
	"github.com/cuttlefish-labs/swarm/pkg/swarm"
	"github.com/cuttlefish-labs/swarm/pkg/telemetry"
	"github.com/cuttlefish-labs/swarm/pkg/trustgraph"
)

// deps holds the wired components a subcommand needs.
type deps struct {
	cfg     *config.Config
	logger  *slog.Logger
	ledger  *trustgraph.Ledger
	manager *orchestrator.Manager

	shutdowns []func(context.Context) error
}

// Close releases components in reverse wiring order.
func (d *deps) Close(ctx context.Context) error {
	var first error
	for i := len(d.shutdowns) - 1; i >= 0; i-- {
		if err := d.shutdowns[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// buildDeps wires config, telemetry, the ledger and the manager. Every
// subcommand runs against the same wiring, so direct CLI workflow runs and
// the HTTP server share one ledger layout.
func buildDeps(ctx context.Context, global globalFlags) (*deps, error) {
	cfg, err := config.LoadWithProfile(global.ConfigPath, global.Profile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	d := &deps{cfg: cfg}
	d.logger = telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	var metrics *telemetry.Metrics
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitWithConfig("swarm", Version, telemetry.Config{
			Exporter:     cfg.Telemetry.Exporter,
			OTLPEndpoint: cfg.Telemetry.Endpoint,
			OTLPInsecure: cfg.Telemetry.Insecure,
		})
		if err != nil {
			return nil, fmt.Errorf("init telemetry: %w", err)
		}
		d.shutdowns = append(d.shutdowns, shutdown)

		metrics, err = telemetry.NewMetrics(ctx)
		if err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
	}

	store, err := openStore(cfg.Ledger)
	if err != nil {
		return nil, err
	}
	d.ledger = trustgraph.NewLedger(store)
	d.shutdowns = append(d.shutdowns, func(context.Context) error { return d.ledger.Close() })

	doc, err := loadPolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	exec := orchestrator.NewExecutor(reg, d.ledger,
		orchestrator.WithWorkers(cfg.Orchestrator.Workers),
		orchestrator.WithInvocationTimeout(cfg.Orchestrator.Timeout),
		orchestrator.WithPolicy(doc),
		orchestrator.WithMetrics(metrics),
		orchestrator.WithExecutorLogger(d.logger),
	)

	fleet := fleetFactory(ctx, cfg.Agents, doc, d.logger)
	d.manager, err = orchestrator.NewManager(reg, d.ledger, exec, cfg.Orchestrator.Retention,
		orchestrator.WithFleet(fleet),
		orchestrator.WithManagerLogger(d.logger),
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func openStore(cfg config.LedgerConfig) (trustgraph.Store, error) {
	switch cfg.Backend {
	case "file", "":
		return trustgraph.NewFileStore(cfg.Path)
	case "sqlite":
		return trustgraph.OpenSQLiteStore(cfg.Path)
	case "memory":
		return trustgraph.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
}

func loadPolicy(cfg config.PolicyConfig) (policy.Document, error) {
	doc := policy.Default()
	if cfg.File != "" {
		loaded, err := policy.Load(cfg.File)
		if err != nil {
			return policy.Document{}, err
		}
		doc = loaded
	}
	if cfg.Threshold > 0 {
		doc.PassThreshold = cfg.Threshold
	}
	return doc, nil
}

// fleetFactory builds the default capability fleet from config. Provider
// wiring is best effort: a missing rules file or unreachable Redis falls
// back to built-in behavior with a warning instead of refusing to start.
func fleetFactory(ctx context.Context, cfg config.AgentsConfig, doc policy.Document, logger *slog.Logger) func() []swarm.Capability {
	return func() []swarm.Capability {
		fc := agents.FleetConfig{
			Policy: doc,
			Logger: logger,
		}

		if cfg.Rules != "" {
			rules, err := agents.LoadRules(cfg.Rules)
			if err != nil {
				logger.Warn("compliance rules unavailable, using defaults",
					"path", cfg.Rules,
					"error", err)
			} else {
				provider := agents.NewRulesProvider(rules)
				fc.Compliance = provider
			}
		}

		if cfg.Subgraph != "" {
			fc.Market = agents.NewSubgraphProvider(cfg.Subgraph)
		}

		if cfg.Redis != "" {
			store, err := agents.NewRedisContextStore(ctx, cfg.Redis)
			if err != nil {
				logger.Warn("redis context mirror unavailable, using memory",
					"error", err)
				fc.Store = agents.NewMemoryContextStore()
			} else {
				fc.Store = store
			}
		} else {
			fc.Store = agents.NewMemoryContextStore()
		}

		return agents.Fleet(fc)
	}
}
