// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuttlefish-labs/swarm/pkg/config"
	"github.com/cuttlefish-labs/swarm/pkg/server"
	"github.com/cuttlefish-labs/swarm/pkg/swarm"
	"github.com/cuttlefish-labs/swarm/pkg/telemetry"
)

const shutdownGrace = 10 * time.Second

func runServe(ctx context.Context, global globalFlags, args []string) error {
	if len(args) > 0 {
		return errors.New("serve takes no arguments")
	}

	d, err := buildDeps(ctx, global)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if cerr := d.Close(shutdownCtx); cerr != nil {
			d.logger.Error("shutdown", "error", cerr)
		}
	}()

	if global.ConfigPath != "" {
		watcher, _, werr := config.WatchConfig(ctx, global.ConfigPath,
			config.WithWatchLogger(d.logger))
		if werr != nil {
			d.logger.Warn("config watch unavailable", "error", werr)
		} else {
			watcher.OnChange(func(cfg *config.Config) {
				applyConfigChange(d.logger, cfg)
			})
			defer watcher.Stop()
		}
	}

	handler, err := server.New(server.Config{
		Manager: d.manager,
		Health:  []swarm.HealthChecker{server.LedgerHealth{Ledger: d.ledger}},
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              d.cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		d.logger.Info("server.listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		d.logger.Info("server.shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// applyConfigChange applies the reloadable subset of a changed config.
// Only the log level adjusts at runtime; backends keep their original
// wiring until restart.
func applyConfigChange(logger *slog.Logger, cfg *config.Config) {
	telemetry.SetLevel(cfg.Log.Level)
	logger.Info("config.reloaded", "log_level", cfg.Log.Level)
}
