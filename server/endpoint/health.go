package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OptimalGrowthPartner/Chiro-backend/observability"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []observability.Health

// Checks adapts individual component checkers into a HealthChecker that
// runs them in order.
func Checks(checkers ...observability.HealthChecker) HealthChecker {
	return func(ctx context.Context) []observability.Health {
		out := make([]observability.Health, 0, len(checkers))
		for _, checker := range checkers {
			out = append(out, checker.CheckHealth(ctx))
		}
		return out
	}
}

// Health returns a handler that reports service health including component
// statuses. The service is unhealthy when any component is down.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := observability.NewServiceHealth(serviceName, "")

		if checker != nil {
			for _, ch := range checker(c.Request.Context()) {
				health.AddComponent(ch)
			}
		}

		httpStatus := http.StatusOK
		if health.Status == observability.HealthStatusDown {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":     health.Status,
			"service":    serviceName,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": health.Components,
		})
	}
}
