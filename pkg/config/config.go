package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log          LogConfig          `koanf:"log"`
	Telemetry    TelemetryConfig    `koanf:"telemetry"`
	Ledger       LedgerConfig       `koanf:"ledger"`
	Orchestrator OrchestratorConfig `koanf:"orchestrator"`
	Policy       PolicyConfig       `koanf:"policy"`
	Agents       AgentsConfig       `koanf:"agents"`
	Server       ServerConfig       `koanf:"server"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Exporter string `koanf:"exporter"` // stdout, otlp
	Endpoint string `koanf:"endpoint"` // OTLP gRPC collector address
	Insecure bool   `koanf:"insecure"` // plaintext OTLP transport
}

type LedgerConfig struct {
	Backend string `koanf:"backend"` // file, sqlite, memory
	Path    string `koanf:"path"`
}

type OrchestratorConfig struct {
	Workers   int           `koanf:"workers"`   // max concurrent capability invocations
	Timeout   time.Duration `koanf:"timeout"`   // per-invocation budget, 0 disables
	Retention int           `koanf:"retention"` // max tasks kept in memory
}

type PolicyConfig struct {
	Threshold float64 `koanf:"threshold"` // audit pass threshold
	File      string  `koanf:"file"`      // optional policy document (YAML)
}

type AgentsConfig struct {
	Redis    string `koanf:"redis"`    // redis URL for the shared context mirror
	Rules    string `koanf:"rules"`    // compliance rules file (YAML)
	Subgraph string `koanf:"subgraph"` // GraphQL endpoint for market signals
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// Load builds the configuration from defaults, then an optional YAML file,
// then SWARM_ environment variables.
func Load(path string) (*Config, error) {
	return load(path)
}

// LoadWithProfile loads the base file and overlays its profile variant
// (config.dev.yaml for profile "dev") when one exists next to it.
func LoadWithProfile(path, profile string) (*Config, error) {
	return load(path, profileConfigPath(path, profile))
}

func load(paths ...string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")

	k.Set("telemetry.enabled", false)
	k.Set("telemetry.exporter", "stdout")
	k.Set("telemetry.endpoint", "localhost:4317")
	k.Set("telemetry.insecure", true)

	k.Set("ledger.backend", "file")
	k.Set("ledger.path", "trust_graph.jsonl")

	k.Set("orchestrator.workers", 10)
	k.Set("orchestrator.timeout", "0s")
	k.Set("orchestrator.retention", 1024)

	k.Set("policy.threshold", 0.7)
	k.Set("policy.file", "")

	k.Set("agents.redis", "")
	k.Set("agents.rules", "")
	k.Set("agents.subgraph", "")

	k.Set("server.addr", ":8080")

	// 1. Load from file(s), later files overriding earlier ones
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := k.Load(file.Provider(p), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (SWARM_LEDGER_PATH -> ledger.path)
	if err := k.Load(env.Provider("SWARM_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "SWARM_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// profileConfigPath returns the profile variant of a config path when the
// file exists, or "" when it does not.
func profileConfigPath(path, profile string) string {
	if path == "" || profile == "" {
		return ""
	}
	ext := filepath.Ext(path)
	candidate := strings.TrimSuffix(path, ext) + "." + profile + ext
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}
