package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"realestate-agent/internal/agent"
	"realestate-agent/internal/api/handlers"
	"realestate-agent/internal/api/middleware"
	"realestate-agent/internal/cache"
	"realestate-agent/internal/config"
	"realestate-agent/internal/logging"
	"realestate-agent/internal/metrics"
	"realestate-agent/internal/service"
)

// SetupRoutes configures all API routes.
// /analyze runs without a request timeout: the analysis takes as long as it takes.
func SetupRoutes(e *echo.Echo, cfg *config.Config, svc *service.AnalysisService, scrapeCache cache.Cache, limiter handlers.DomainStatsProvider, registry *prometheus.Registry) {
	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestValidation(cfg.Server.BodyLimit))
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics())
	e.Use(middleware.CORSConfig())

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/live", handlers.LivenessHandler)
		health.GET("/ready", handlers.ReadinessHandler(svc.Credentials(), scrapeCache, logging.GetGlobalLogger()))
		health.GET("/scraper", handlers.ScraperStatsHandler(limiter))
	}

	e.POST("/analyze", handlers.AnalyzeHandler(svc))

	if registry != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(registry)))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"service": "Real Estate Analysis Agent",
			"version": handlers.Version,
			"status":  "running",
			"sources": agent.SupportedSources(),
		})
	})
}
