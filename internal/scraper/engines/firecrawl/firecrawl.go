package firecrawl

import (
	"context"
	"fmt"
	"time"

	"github.com/mendableai/firecrawl-go"

	"realestate-agent/internal/config"
	"realestate-agent/internal/logging"
	"realestate-agent/internal/metrics"
)

// FirecrawlScraper scrapes listing pages through the Firecrawl API
type FirecrawlScraper struct {
	config *config.Config
	apiKey string
	app    *firecrawl.FirecrawlApp
	logger logging.Logger
}

// NewFirecrawlScraper creates a scraper authenticated with apiKey
func NewFirecrawlScraper(cfg *config.Config, apiKey string) (*FirecrawlScraper, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("firecrawl API key is required")
	}

	app, err := firecrawl.NewFirecrawlApp(apiKey, cfg.Firecrawl.APIURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firecrawl: %w", err)
	}

	return &FirecrawlScraper{
		config: cfg,
		apiKey: apiKey,
		app:    app,
		logger: logging.GetGlobalLogger().WithField("component", "firecrawl"),
	}, nil
}

// ScrapeListings scrapes url, retrying with a linear backoff
func (f *FirecrawlScraper) ScrapeListings(ctx context.Context, url string) (string, error) {
	scrapeParams := &firecrawl.ScrapeParams{
		Formats: f.config.Firecrawl.Formats,
	}

	maxRetries := f.config.Firecrawl.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var doc *firecrawl.FirecrawlDocument
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		f.logger.Debug("Firecrawl scrape attempt", map[string]interface{}{
			"attempt":     attempt,
			"max_retries": maxRetries,
			"url":         url,
		})

		start := time.Now()
		doc, err = f.app.ScrapeURL(url, scrapeParams)
		metrics.ObserveExternal("firecrawl", err, time.Since(start))
		if err == nil {
			break
		}

		f.logger.Warn("Firecrawl scrape attempt failed", map[string]interface{}{
			"attempt": attempt,
			"url":     url,
			"error":   err.Error(),
		})

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	if err != nil {
		return "", fmt.Errorf("firecrawl scraping failed after %d attempts: %w", maxRetries, err)
	}

	return documentContent(doc)
}

// documentContent prefers markdown, falling back to HTML
func documentContent(doc *firecrawl.FirecrawlDocument) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("no result returned from Firecrawl")
	}

	switch {
	case doc.Markdown != "":
		return doc.Markdown, nil
	case doc.HTML != "":
		return doc.HTML, nil
	default:
		return "", fmt.Errorf("no content found in Firecrawl response")
	}
}

// Cleanup is a no-op; the Firecrawl SDK holds no resources
func (f *FirecrawlScraper) Cleanup() {}

func (f *FirecrawlScraper) IsHealthy() bool {
	return f.app != nil && f.apiKey != ""
}
