package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Log.Level)
	}
	if cfg.Ledger.Backend != "file" {
		t.Errorf("expected default ledger backend file, got %s", cfg.Ledger.Backend)
	}
	if cfg.Ledger.Path != "trust_graph.jsonl" {
		t.Errorf("expected default ledger path trust_graph.jsonl, got %s", cfg.Ledger.Path)
	}
	if cfg.Orchestrator.Workers != 10 {
		t.Errorf("expected default workers 10, got %d", cfg.Orchestrator.Workers)
	}
	if cfg.Orchestrator.Timeout != 0 {
		t.Errorf("expected default timeout 0, got %s", cfg.Orchestrator.Timeout)
	}
	if cfg.Orchestrator.Retention != 1024 {
		t.Errorf("expected default retention 1024, got %d", cfg.Orchestrator.Retention)
	}
	if cfg.Policy.Threshold != 0.7 {
		t.Errorf("expected default threshold 0.7, got %v", cfg.Policy.Threshold)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Telemetry.Enabled {
		t.Error("expected telemetry disabled by default")
	}
}

func TestLoadEnv(t *testing.T) {
	os.Setenv("SWARM_LEDGER_BACKEND", "memory")
	defer os.Unsetenv("SWARM_LEDGER_BACKEND")
	os.Setenv("SWARM_POLICY_THRESHOLD", "0.85")
	defer os.Unsetenv("SWARM_POLICY_THRESHOLD")
	os.Setenv("SWARM_ORCHESTRATOR_TIMEOUT", "45s")
	defer os.Unsetenv("SWARM_ORCHESTRATOR_TIMEOUT")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Ledger.Backend != "memory" {
		t.Errorf("expected backend memory from env, got %s", cfg.Ledger.Backend)
	}
	if cfg.Policy.Threshold != 0.85 {
		t.Errorf("expected threshold 0.85 from env, got %v", cfg.Policy.Threshold)
	}
	if cfg.Orchestrator.Timeout != 45*time.Second {
		t.Errorf("expected timeout 45s from env, got %s", cfg.Orchestrator.Timeout)
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()

	content := `
ledger:
  backend: "sqlite"
  path: "ledger.db"
orchestrator:
  workers: 4
  timeout: "30s"
policy:
  threshold: 0.9
server:
  addr: ":9090"
`
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Ledger.Backend != "sqlite" {
		t.Errorf("backend: got %s, want sqlite", cfg.Ledger.Backend)
	}
	if cfg.Ledger.Path != "ledger.db" {
		t.Errorf("path: got %s, want ledger.db", cfg.Ledger.Path)
	}
	if cfg.Orchestrator.Workers != 4 {
		t.Errorf("workers: got %d, want 4", cfg.Orchestrator.Workers)
	}
	if cfg.Orchestrator.Timeout != 30*time.Second {
		t.Errorf("timeout: got %s, want 30s", cfg.Orchestrator.Timeout)
	}
	if cfg.Policy.Threshold != 0.9 {
		t.Errorf("threshold: got %v, want 0.9", cfg.Policy.Threshold)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr: got %s, want :9090", cfg.Server.Addr)
	}
	// Untouched keys keep their defaults
	if cfg.Orchestrator.Retention != 1024 {
		t.Errorf("retention: got %d, want default 1024", cfg.Orchestrator.Retention)
	}
}

func TestLoadWithProfile(t *testing.T) {
	tmpDir := t.TempDir()

	baseConfig := `
ledger:
  backend: "file"
  path: "base.jsonl"
log:
  level: "info"
`
	basePath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(basePath, []byte(baseConfig), 0644); err != nil {
		t.Fatalf("failed to write base config: %v", err)
	}

	devConfig := `
ledger:
  backend: "memory"
log:
  level: "debug"
`
	devPath := filepath.Join(tmpDir, "config.dev.yaml")
	if err := os.WriteFile(devPath, []byte(devConfig), 0644); err != nil {
		t.Fatalf("failed to write dev config: %v", err)
	}

	prodConfig := `
ledger:
  backend: "sqlite"
log:
  level: "warn"
`
	prodPath := filepath.Join(tmpDir, "config.prod.yaml")
	if err := os.WriteFile(prodPath, []byte(prodConfig), 0644); err != nil {
		t.Fatalf("failed to write prod config: %v", err)
	}

	tests := []struct {
		name         string
		profile      string
		wantBackend  string
		wantLogLevel string
		wantPath     string // inherited from base when not overridden
	}{
		{
			name:         "no profile - base only",
			profile:      "",
			wantBackend:  "file",
			wantLogLevel: "info",
			wantPath:     "base.jsonl",
		},
		{
			name:         "dev profile",
			profile:      "dev",
			wantBackend:  "memory",
			wantLogLevel: "debug",
			wantPath:     "base.jsonl",
		},
		{
			name:         "prod profile",
			profile:      "prod",
			wantBackend:  "sqlite",
			wantLogLevel: "warn",
			wantPath:     "base.jsonl",
		},
		{
			name:         "nonexistent profile - falls back to base",
			profile:      "staging",
			wantBackend:  "file",
			wantLogLevel: "info",
			wantPath:     "base.jsonl",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadWithProfile(basePath, tc.profile)
			if err != nil {
				t.Fatalf("LoadWithProfile failed: %v", err)
			}

			if cfg.Ledger.Backend != tc.wantBackend {
				t.Errorf("backend: got %s, want %s", cfg.Ledger.Backend, tc.wantBackend)
			}
			if cfg.Log.Level != tc.wantLogLevel {
				t.Errorf("log level: got %s, want %s", cfg.Log.Level, tc.wantLogLevel)
			}
			if cfg.Ledger.Path != tc.wantPath {
				t.Errorf("ledger path: got %s, want %s", cfg.Ledger.Path, tc.wantPath)
			}
		})
	}
}

func TestProfileConfigPath(t *testing.T) {
	tmpDir := t.TempDir()

	devPath := filepath.Join(tmpDir, "config.dev.yaml")
	if err := os.WriteFile(devPath, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create dev config: %v", err)
	}

	basePath := filepath.Join(tmpDir, "config.yaml")

	tests := []struct {
		name     string
		base     string
		profile  string
		wantPath string
	}{
		{
			name:     "existing profile",
			base:     basePath,
			profile:  "dev",
			wantPath: devPath,
		},
		{
			name:     "nonexistent profile",
			base:     basePath,
			profile:  "prod",
			wantPath: "",
		},
		{
			name:     "empty profile",
			base:     basePath,
			profile:  "",
			wantPath: "",
		},
		{
			name:     "empty base",
			base:     "",
			profile:  "dev",
			wantPath: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := profileConfigPath(tc.base, tc.profile)
			if got != tc.wantPath {
				t.Errorf("profileConfigPath(%q, %q) = %q, want %q", tc.base, tc.profile, got, tc.wantPath)
			}
		})
	}
}
