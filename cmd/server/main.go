package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"realestate-agent/internal/agent"
	"realestate-agent/internal/api/routes"
	"realestate-agent/internal/cache"
	"realestate-agent/internal/config"
	"realestate-agent/internal/llm"
	"realestate-agent/internal/logging"
	"realestate-agent/internal/metrics"
	"realestate-agent/internal/scraper"
	"realestate-agent/internal/scraper/ratelimit"
	"realestate-agent/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(config.ResolveConfigPath())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting Real Estate Analysis Agent")

	credentials := cfg.Credentials()
	if !credentials.HasScrapingKey() || !credentials.HasLLMKey() {
		// surfaced per request, the server still starts
		logger.Warn("API credentials incomplete", map[string]interface{}{
			"firecrawl_key": credentials.HasScrapingKey(),
			"llm_key":       credentials.HasLLMKey(),
		})
	}

	scrapeCache, err := cache.New(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create scrape cache")
	}
	defer scrapeCache.Close()

	limiter := ratelimit.NewRateLimiter(cfg)
	defer limiter.Stop()

	analyzer := agent.NewSequentialAnalyzer(cfg, scraper.NewScraperFactory(cfg), llm.NewLLMFactory(cfg), scrapeCache, limiter)
	svc := service.NewAnalysisService(credentials, analyzer)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	routes.SetupRoutes(e, cfg, svc, scrapeCache, limiter, metrics.InitRegistry())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logger.WithField("address", address).Info("Server starting")

		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Server stopped with error")
		return
	}
	logger.Info("Server shutdown complete")
}
