package telemetry

import (
	"context"
	"os"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func TestOTLPSmoke(t *testing.T) {
	if os.Getenv("SWARM_OTLP_SMOKE_TEST") != "1" {
		t.Skip("set SWARM_OTLP_SMOKE_TEST=1 to run")
	}

	endpoint := os.Getenv("SWARM_TELEMETRY_ENDPOINT")
	if endpoint == "" {
		t.Skip("set SWARM_TELEMETRY_ENDPOINT for OTLP smoke test")
	}

	cfg := Config{
		Exporter:     "otlp",
		OTLPEndpoint: endpoint,
	}
	if os.Getenv("SWARM_TELEMETRY_INSECURE") == "true" {
		cfg.OTLPInsecure = true
	}

	shutdown, err := InitWithConfig("telemetry-smoke-test", "v0.1.0", cfg)
	if err != nil {
		t.Fatalf("failed to init telemetry: %v", err)
	}

	tracer := otel.Tracer("swarm/telemetry-smoke")
	ctx, span := tracer.Start(context.Background(), "smoke.span")
	span.SetAttributes(attribute.String("smoke.test", "otlp"))
	span.End()

	meter := otel.Meter("swarm/telemetry-smoke")
	counter, err := meter.Int64Counter("swarm.telemetry.smoke.counter")
	if err == nil {
		counter.Add(ctx, 1, metric.WithAttributes(attribute.String("smoke.test", "otlp")))
	}

	time.Sleep(2 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("telemetry shutdown failed: %v", err)
	}
}
