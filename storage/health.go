package storage

import (
	"context"

	"github.com/OptimalGrowthPartner/Chiro-backend/observability"
)

// HealthCheck reports object-store reachability by probing a fixed key.
// The key never exists; a clean not-found answer still proves the backend
// is reachable.
type HealthCheck struct {
	Store Storage
}

const healthProbeKey = "healthcheck"

// CheckHealth implements observability.HealthChecker.
func (h HealthCheck) CheckHealth(ctx context.Context) observability.Health {
	if _, err := h.Store.Exists(ctx, healthProbeKey); err != nil {
		return observability.Health{
			Name:    "storage",
			Status:  observability.HealthStatusDown,
			Message: err.Error(),
		}
	}
	return observability.Health{Name: "storage", Status: observability.HealthStatusUp}
}

var _ observability.HealthChecker = HealthCheck{}
