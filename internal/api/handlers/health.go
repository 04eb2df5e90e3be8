package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"realestate-agent/internal/cache"
	"realestate-agent/internal/config"
	"realestate-agent/internal/logging"
	"realestate-agent/pkg/models"
)

// Version is reported by the health endpoints
const Version = "1.0.0"

var startTime = time.Now()

// HealthHandler answers the basic health check. It never fails.
func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}

// LivenessHandler answers liveness checks
func LivenessHandler(c echo.Context) error {
	logging.GetGlobalLogger().Debug("Liveness check requested", map[string]interface{}{"request_id": requestID(c)})

	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(startTime),
	})
}

// HealthReporter is satisfied by the root logger
type HealthReporter interface {
	Health() error
}

// ReadinessHandler reports whether both credentials are configured and how the scrape cache
// and log adapters are doing. A missing credential makes the service not ready; cache or
// logging trouble only degrades it.
func ReadinessHandler(credentials config.Credentials, scrapeCache cache.Cache, logs HealthReporter) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger()
		logger.Debug("Readiness check requested", map[string]interface{}{"request_id": requestID(c)})

		checks := map[string]string{
			"api":         "ok",
			"credentials": "configured",
		}
		status, code := "ready", http.StatusOK

		var missing []string
		if !credentials.HasScrapingKey() {
			missing = append(missing, "FIRECRAWL_API_KEY")
		}
		if !credentials.HasLLMKey() {
			missing = append(missing, "LLM_API_KEY")
		}
		if len(missing) > 0 {
			checks["credentials"] = "missing " + strings.Join(missing, ", ")
			status, code = "not_ready", http.StatusServiceUnavailable
		}

		checks["cache"] = cacheStatus(c.Request().Context(), scrapeCache)
		checks["logging"] = "ok"
		if err := logs.Health(); err != nil {
			checks["logging"] = "error: " + err.Error()
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   Version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

func cacheStatus(ctx context.Context, scrapeCache cache.Cache) string {
	if scrapeCache == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := scrapeCache.Ping(ctx)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, cache.ErrDisabled):
		return "disabled"
	default:
		return "error: " + err.Error()
	}
}
