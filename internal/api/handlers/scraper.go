package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"realestate-agent/internal/scraper/ratelimit"
)

// DomainStatsProvider exposes per-domain rate limiter and circuit breaker state
type DomainStatsProvider interface {
	GetAllStats() map[string]ratelimit.DomainStats
}

// ScraperStatsHandler reports the limiter state of every listing domain seen so far
func ScraperStatsHandler(stats DomainStatsProvider) echo.HandlerFunc {
	return func(c echo.Context) error {
		domains := map[string]ratelimit.DomainStats{}
		if stats != nil {
			domains = stats.GetAllStats()
		}

		open := 0
		for _, s := range domains {
			if s.CircuitState == ratelimit.CircuitOpen.String() {
				open++
			}
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"timestamp":     time.Now(),
			"domains":       domains,
			"open_circuits": open,
		})
	}
}
