// SPDX-License-Identifier: Apache-2.0
package swarm

import (
	"context"
	"time"
)

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	// HealthHealthy indicates the component is fully operational.
	HealthHealthy HealthStatus = "HEALTHY"

	// HealthDegraded indicates the component is operational but with reduced capacity.
	HealthDegraded HealthStatus = "DEGRADED"

	// HealthUnhealthy indicates the component is not operational.
	HealthUnhealthy HealthStatus = "UNHEALTHY"
)

// HealthResult represents the result of a health check.
type HealthResult struct {
	Status    HealthStatus
	Component string
	Message   string
	LastCheck time.Time
	Error     error
}

// HealthChecker checks the health of a component.
type HealthChecker interface {
	// Check returns the current health status of the component.
	// The context can be used to implement timeouts.
	Check(ctx context.Context) HealthResult
}
