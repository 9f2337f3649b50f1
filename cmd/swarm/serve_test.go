// Copyright 2026 © The Swarm Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cuttlefish-labs/swarm/pkg/config"
	"github.com/cuttlefish-labs/swarm/pkg/telemetry"
)

func TestApplyConfigChangeAdjustsLogLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := telemetry.ConfigureSlog(&buf, "info", "text")
	defer telemetry.SetLevel("info")

	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should start disabled at info level")
	}

	applyConfigChange(logger, &config.Config{Log: config.LogConfig{Level: "debug"}})

	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be enabled after the change is applied")
	}
}

func TestConfigWatchAdjustsLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeLevel := func(level string) {
		t.Helper()
		content := fmt.Sprintf("log:\n  level: %s\n", level)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	writeLevel("info")

	var buf bytes.Buffer
	logger := telemetry.ConfigureSlog(&buf, "info", "text")
	defer telemetry.SetLevel("info")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher, _, err := config.WatchConfig(ctx, path,
		config.WithWatchInterval(10*time.Millisecond),
		config.WithWatchLogger(logger))
	if err != nil {
		t.Fatalf("watch config: %v", err)
	}
	defer watcher.Stop()

	changed := make(chan *config.Config, 1)
	watcher.OnChange(func(cfg *config.Config) {
		applyConfigChange(logger, cfg)
		select {
		case changed <- cfg:
		default:
		}
	})

	writeLevel("debug")
	// Force the mod time forward in case the filesystem clock is coarse.
	bumped := time.Now().Add(time.Second)
	if err := os.Chtimes(path, bumped, bumped); err != nil {
		t.Fatalf("bump mod time: %v", err)
	}

	select {
	case cfg := <-changed:
		if cfg.Log.Level != "debug" {
			t.Errorf("reloaded level = %q, want debug", cfg.Log.Level)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("config change was not observed")
	}

	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("log level was not adjusted after reload")
	}
}
